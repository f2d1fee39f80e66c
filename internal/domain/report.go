package domain

import "fmt"

// SkipReason explains why a propagation run ended without fanning out.
type SkipReason string

// Skip reasons. An empty reason means the run fanned out.
const (
	SkipNone       SkipReason = ""
	SkipNoProject  SkipReason = "no_project"
	SkipNoChildren SkipReason = "no_children"
)

// Stage marks how far a propagation run progressed.
type Stage string

// Stages of a propagation run, in order.
const (
	StageStart              Stage = "start"
	StageProjectResolved    Stage = "project_resolved"
	StageChildrenResolved   Stage = "children_resolved"
	StageFieldValueResolved Stage = "field_value_resolved"
	StageFanOutComplete     Stage = "fan_out_complete"
)

// ChildFailure records why one child update failed.
type ChildFailure struct {
	Err     error
	IssueID IssueID
}

// Error implements error.
func (f ChildFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.IssueID, f.Err)
}

// Unwrap returns the underlying cause.
func (f ChildFailure) Unwrap() error {
	return f.Err
}

// PropagationReport summarizes one propagation run.
// Fields are ordered to minimize memory padding.
type PropagationReport struct {
	IssueID       IssueID
	ProjectID     ProjectID
	FieldName     string
	Value         string
	Skip          SkipReason
	Stage         Stage
	Updated       []IssueID
	Failures      []ChildFailure
	TotalChildren int
	Succeeded     int
	Failed        int
	Truncated     bool
	DryRun        bool
}

// Skipped reports whether the run ended before the fan-out.
func (r *PropagationReport) Skipped() bool {
	return r.Skip != SkipNone
}

// Summary returns a one-line operator summary.
func (r *PropagationReport) Summary() string {
	switch r.Skip {
	case SkipNoProject:
		return fmt.Sprintf("issue %s is not in any project, nothing to propagate", r.IssueID)
	case SkipNoChildren:
		return fmt.Sprintf("issue %s tracks no issues, nothing to propagate", r.IssueID)
	}
	verb := "updated"
	if r.DryRun {
		verb = "would update"
	}
	return fmt.Sprintf("%s %d/%d child issues with %s=%q (%d failed)",
		verb, r.Succeeded, r.TotalChildren, r.FieldName, r.Value, r.Failed)
}
