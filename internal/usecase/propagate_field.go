// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gh-field-sync/internal/domain"
	"golang.org/x/sync/errgroup"
)

const logCategory = "propagate"

// PropagateFieldInput contains the parameters for one propagation run.
type PropagateFieldInput struct {
	IssueID   domain.IssueID // Parent issue
	FieldName string         // Text field to copy
	DryRun    bool           // Resolve everything but skip writes
}

// PropagateFieldOutput contains the result of a propagation run.
type PropagateFieldOutput struct {
	Report *domain.PropagationReport
}

// PropagateFieldOptions tunes the fan-out.
type PropagateFieldOptions struct {
	MaxConcurrency  int  // 0 = unbounded
	AddMissingItems bool // Add children that are not on the parent's board
}

// PropagateField copies a text field from a parent issue to every issue it
// tracks within the parent's project.
type PropagateField struct {
	api    domain.ProjectAPI
	logger domain.Logger
	opts   PropagateFieldOptions
}

// NewPropagateField creates a new PropagateField use case.
func NewPropagateField(api domain.ProjectAPI, logger domain.Logger, opts PropagateFieldOptions) *PropagateField {
	return &PropagateField{
		api:    api,
		logger: logger,
		opts:   opts,
	}
}

// Execute runs one propagation pass.
//
// Reads are sequential and any read failure aborts the run. Missing project
// or children end the run with a skipped report and no error. A parent
// without a value for the field fails with domain.ErrMissingFieldValue before
// any write. Child updates run concurrently and every one of them settles
// before the report is built; a failed child never affects its siblings.
func (uc *PropagateField) Execute(ctx context.Context, in PropagateFieldInput) (*PropagateFieldOutput, error) {
	if in.IssueID == "" {
		return nil, domain.ErrMissingIssueID
	}
	if in.FieldName == "" {
		return nil, domain.ErrEmptyFieldName
	}

	report := &domain.PropagationReport{
		IssueID:   in.IssueID,
		FieldName: in.FieldName,
		Stage:     domain.StageStart,
		DryRun:    in.DryRun,
	}
	out := &PropagateFieldOutput{Report: report}

	project, ok, err := uc.api.FirstProject(ctx, in.IssueID)
	if err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}
	if !ok {
		report.Skip = domain.SkipNoProject
		uc.logger.Info(in.IssueID, logCategory, report.Summary())
		return out, nil
	}
	report.ProjectID = project
	report.Stage = domain.StageProjectResolved
	uc.logger.Debug(in.IssueID, logCategory, fmt.Sprintf("project %s", project))

	tracked, err := uc.api.TrackedIssues(ctx, in.IssueID)
	if err != nil {
		return nil, fmt.Errorf("resolve children: %w", err)
	}
	if tracked.HasMore {
		report.Truncated = true
		uc.logger.Warn(in.IssueID, logCategory,
			fmt.Sprintf("tracked issue list truncated to the first %d", domain.TrackedIssuesPageSize))
	}
	children := distinctChildren(in.IssueID, tracked.IDs)
	report.TotalChildren = len(children)
	if len(children) == 0 {
		report.Skip = domain.SkipNoChildren
		uc.logger.Info(in.IssueID, logCategory, report.Summary())
		return out, nil
	}
	report.Stage = domain.StageChildrenResolved

	field, ok, err := uc.parentField(ctx, in.IssueID, project, in.FieldName)
	if err != nil {
		return nil, fmt.Errorf("read field value: %w", err)
	}
	if !ok {
		err := fmt.Errorf("%w %q", domain.ErrMissingFieldValue, in.FieldName)
		uc.logger.Error(in.IssueID, logCategory, err.Error())
		return nil, err
	}
	report.Value = field.Value
	report.Stage = domain.StageFieldValueResolved

	results := uc.fanOut(ctx, project, field, children, in.DryRun)

	for i, child := range children {
		if results[i] == nil {
			report.Succeeded++
			report.Updated = append(report.Updated, child)
			continue
		}
		report.Failed++
		report.Failures = append(report.Failures, domain.ChildFailure{IssueID: child, Err: results[i]})
		uc.logger.Warn(child, logCategory, fmt.Sprintf("update failed: %v", results[i]))
	}
	report.Stage = domain.StageFanOutComplete

	if report.Failed > 0 {
		uc.logger.Warn(in.IssueID, logCategory, report.Summary())
	} else {
		uc.logger.Info(in.IssueID, logCategory, report.Summary())
	}
	return out, nil
}

// parentField looks up the named field on the parent's item in project.
func (uc *PropagateField) parentField(ctx context.Context, issueID domain.IssueID, project domain.ProjectID, name string) (domain.TextField, bool, error) {
	items, err := uc.api.ProjectItems(ctx, issueID)
	if err != nil {
		return domain.TextField{}, false, err
	}
	item, ok := domain.FindItem(items, project)
	if !ok {
		return domain.TextField{}, false, nil
	}
	field, ok := item.Field(name)
	return field, ok, nil
}

// fanOut updates every child and returns one outcome per child, in order.
// Tasks never return an error to the group, so no child cancels another.
func (uc *PropagateField) fanOut(ctx context.Context, project domain.ProjectID, field domain.TextField, children []domain.IssueID, dryRun bool) []error {
	results := make([]error, len(children))

	var g errgroup.Group
	if uc.opts.MaxConcurrency > 0 {
		g.SetLimit(uc.opts.MaxConcurrency)
	}
	for i, child := range children {
		g.Go(func() error {
			results[i] = uc.updateChild(ctx, project, field, child, dryRun)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (uc *PropagateField) updateChild(ctx context.Context, project domain.ProjectID, field domain.TextField, child domain.IssueID, dryRun bool) error {
	items, err := uc.api.ProjectItems(ctx, child)
	if err != nil {
		return fmt.Errorf("read project items: %w", err)
	}

	item, ok := domain.FindItem(items, project)
	itemID := item.ID
	if !ok {
		if !uc.opts.AddMissingItems {
			return domain.ErrChildNotInProject
		}
		if dryRun {
			uc.logger.Debug(child, logCategory, "would add to project")
			return nil
		}
		itemID, err = uc.api.AddToProject(ctx, project, child)
		if err != nil {
			return fmt.Errorf("add to project: %w", err)
		}
		uc.logger.Info(child, logCategory, fmt.Sprintf("added to project as item %s", itemID))
	}

	if dryRun {
		uc.logger.Debug(child, logCategory, fmt.Sprintf("would set %s=%q", field.Name, field.Value))
		return nil
	}

	if _, err := uc.api.UpdateTextField(ctx, domain.UpdateTextFieldInput{
		ProjectID: project,
		ItemID:    itemID,
		FieldID:   field.ID,
		Value:     field.Value,
	}); err != nil {
		return fmt.Errorf("update field: %w", err)
	}
	uc.logger.Debug(child, logCategory, fmt.Sprintf("set %s=%q", field.Name, field.Value))
	return nil
}

// distinctChildren drops duplicates and the parent itself, keeping order.
func distinctChildren(parent domain.IssueID, ids []domain.IssueID) []domain.IssueID {
	seen := make(map[domain.IssueID]struct{}, len(ids))
	children := make([]domain.IssueID, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == parent {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		children = append(children, id)
	}
	return children
}
