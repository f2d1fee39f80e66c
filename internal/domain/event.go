package domain

import "strings"

// EventKind is the issue lifecycle event that triggered a run.
type EventKind string

// Event kinds that trigger propagation.
const (
	EventOpened EventKind = "opened"
	EventEdited EventKind = "edited"
)

// Triggers reports whether the event kind should start a propagation.
func (k EventKind) Triggers() bool {
	return k == EventOpened || k == EventEdited
}

// ParseEventKind normalizes an event kind string.
// An empty string is treated as "edited", which is what a manual run means.
// Unknown kinds are returned as-is; Triggers decides whether they matter.
func ParseEventKind(s string) EventKind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EventEdited
	}
	return EventKind(s)
}

// Trigger is the input handed over by the trigger adapter.
type Trigger struct {
	IssueID IssueID
	Kind    EventKind
}
