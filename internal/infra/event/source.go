// Package event reads the issue event that triggered a run, either from a
// GitHub Actions event payload or from plain environment variables.
package event

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// Environment variables consulted by Source.
const (
	EnvEventPath = "GITHUB_EVENT_PATH"
	EnvIssueID   = "ISSUE_ID"
	EnvEventKind = "EVENT_KIND"
)

// Ensure Source implements domain.TriggerSource interface.
var _ domain.TriggerSource = (*Source)(nil)

// Source reads a trigger from an event payload file or the environment.
type Source struct {
	getenv    func(string) string
	eventPath string
}

// NewSource creates a Source. eventPath overrides GITHUB_EVENT_PATH; getenv
// defaults to os.Getenv.
func NewSource(eventPath string, getenv func(string) string) *Source {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Source{getenv: getenv, eventPath: eventPath}
}

// payload is the subset of the GitHub "issues" webhook payload we need.
type payload struct {
	Issue *struct {
		NodeID string `json:"node_id"`
	} `json:"issue"`
	Action string `json:"action"`
}

// Read returns the trigger.
// The payload file wins when present; ISSUE_ID and EVENT_KIND fill the gaps.
func (s *Source) Read() (*domain.Trigger, error) {
	var issueID, kind string

	path := s.eventPath
	if path == "" {
		path = s.getenv(EnvEventPath)
	}
	if path != "" {
		p, err := readPayload(path)
		if err != nil {
			return nil, err
		}
		if p.Issue != nil {
			issueID = p.Issue.NodeID
		}
		kind = p.Action
	}

	if issueID == "" {
		issueID = s.getenv(EnvIssueID)
	}
	if kind == "" {
		kind = s.getenv(EnvEventKind)
	}
	if issueID == "" {
		return nil, domain.ErrMissingIssueID
	}

	return &domain.Trigger{
		IssueID: domain.IssueID(issueID),
		Kind:    domain.ParseEventKind(kind),
	}, nil
}

func readPayload(path string) (*payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event payload: %w", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse event payload %s: %w", path, err)
	}
	return &p, nil
}
