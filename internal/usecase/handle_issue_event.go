package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// HandleIssueEventInput contains the parameters for handling a trigger event.
type HandleIssueEventInput struct {
	FieldName string
	DryRun    bool
}

// HandleIssueEventOutput contains the result of handling a trigger event.
type HandleIssueEventOutput struct {
	Trigger *domain.Trigger
	Report  *domain.PropagationReport // nil when the event was ignored
	Ignored bool                      // Event kind does not trigger propagation
}

// HandleIssueEvent turns an issue lifecycle event into a propagation run.
type HandleIssueEvent struct {
	source    domain.TriggerSource
	propagate *PropagateField
	logger    domain.Logger
}

// NewHandleIssueEvent creates a new HandleIssueEvent use case.
func NewHandleIssueEvent(source domain.TriggerSource, propagate *PropagateField, logger domain.Logger) *HandleIssueEvent {
	return &HandleIssueEvent{
		source:    source,
		propagate: propagate,
		logger:    logger,
	}
}

// Execute reads the trigger and propagates for opened and edited events.
// Other event kinds are logged and ignored.
func (uc *HandleIssueEvent) Execute(ctx context.Context, in HandleIssueEventInput) (*HandleIssueEventOutput, error) {
	trigger, err := uc.source.Read()
	if err != nil {
		return nil, fmt.Errorf("read trigger: %w", err)
	}

	out := &HandleIssueEventOutput{Trigger: trigger}
	if !trigger.Kind.Triggers() {
		uc.logger.Info(trigger.IssueID, "trigger", fmt.Sprintf("ignoring %q event", trigger.Kind))
		out.Ignored = true
		return out, nil
	}
	uc.logger.Info(trigger.IssueID, "trigger", fmt.Sprintf("issue %s", trigger.Kind))

	res, err := uc.propagate.Execute(ctx, PropagateFieldInput{
		IssueID:   trigger.IssueID,
		FieldName: in.FieldName,
		DryRun:    in.DryRun,
	})
	if err != nil {
		return nil, err
	}
	out.Report = res.Report
	return out, nil
}
