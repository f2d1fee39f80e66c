package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/runoshun/gh-field-sync/internal/domain"
	"github.com/runoshun/gh-field-sync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	parentID  domain.IssueID   = "I_parent"
	projectP1 domain.ProjectID = "P1"
	fieldID   domain.FieldID   = "F_initiative"
)

// newPropagationFixture sets up a parent in P1 with Initiative=Q3-Growth
// tracking the given children, all of which are on the board.
func newPropagationFixture(children ...domain.IssueID) *testutil.MockProjectAPI {
	api := testutil.NewMockProjectAPI()
	api.Projects[parentID] = projectP1
	api.AddIssue(parentID, projectP1,
		domain.TextField{ID: "F_status", Name: "Status", Value: "Todo"},
		domain.TextField{ID: fieldID, Name: "Initiative", Value: "Q3-Growth"},
	)
	api.Tracked[parentID] = children
	for _, c := range children {
		api.AddIssue(c, projectP1)
	}
	return api
}

func TestPropagateField_Execute_NoProject(t *testing.T) {
	// Setup
	api := testutil.NewMockProjectAPI()
	api.Tracked[parentID] = []domain.IssueID{"C1"}
	logger := &testutil.MockLogger{}
	uc := NewPropagateField(api, logger, PropagateFieldOptions{})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	report := out.Report
	assert.Equal(t, domain.SkipNoProject, report.Skip)
	assert.Equal(t, domain.StageStart, report.Stage)
	assert.Zero(t, report.TotalChildren)
	assert.Zero(t, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Zero(t, api.UpdateCount())
	assert.Equal(t, 1, logger.Count("INFO"))
	assert.Equal(t, []string{"FirstProject:" + string(parentID)}, api.Calls, "no further reads after a missing project")
}

func TestPropagateField_Execute_NoChildren(t *testing.T) {
	// Setup
	api := newPropagationFixture()
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.SkipNoChildren, out.Report.Skip)
	assert.Equal(t, projectP1, out.Report.ProjectID)
	assert.Zero(t, out.Report.TotalChildren)
	assert.Zero(t, api.UpdateCount())
}

func TestPropagateField_Execute_NoChildrenWithoutValue(t *testing.T) {
	// A parent with no children is skipped even when it has no field value.
	api := testutil.NewMockProjectAPI()
	api.Projects[parentID] = projectP1
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SkipNoChildren, out.Report.Skip)
}

func TestPropagateField_Execute_MissingFieldValue(t *testing.T) {
	tests := []struct {
		name  string
		setup func(api *testutil.MockProjectAPI)
	}{
		{
			name: "no field entry with that name",
			setup: func(api *testutil.MockProjectAPI) {
				api.AddIssue(parentID, projectP1, domain.TextField{ID: "F_status", Name: "Status", Value: "Todo"})
			},
		},
		{
			name: "name differs in case",
			setup: func(api *testutil.MockProjectAPI) {
				api.AddIssue(parentID, projectP1, domain.TextField{ID: fieldID, Name: "initiative", Value: "Q3-Growth"})
			},
		},
		{
			name: "parent item belongs to another project",
			setup: func(api *testutil.MockProjectAPI) {
				api.AddIssue(parentID, "P2", domain.TextField{ID: fieldID, Name: "Initiative", Value: "Q3-Growth"})
			},
		},
		{
			name:  "parent has no project items",
			setup: func(_ *testutil.MockProjectAPI) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			api := testutil.NewMockProjectAPI()
			api.Projects[parentID] = projectP1
			api.Tracked[parentID] = []domain.IssueID{"C1", "C2"}
			api.AddIssue("C1", projectP1)
			api.AddIssue("C2", projectP1)
			tt.setup(api)
			logger := &testutil.MockLogger{}
			uc := NewPropagateField(api, logger, PropagateFieldOptions{})

			// Execute
			out, err := uc.Execute(context.Background(), PropagateFieldInput{
				IssueID:   parentID,
				FieldName: "Initiative",
			})

			// Assert
			require.ErrorIs(t, err, domain.ErrMissingFieldValue)
			assert.Contains(t, err.Error(), `"Initiative"`)
			assert.Nil(t, out)
			assert.Zero(t, api.UpdateCount(), "no writes when the value is missing")
			assert.Equal(t, 1, logger.Count("ERROR"))
		})
	}
}

func TestPropagateField_Execute_FullSuccess(t *testing.T) {
	// Setup
	api := newPropagationFixture("C1", "C2", "C3")
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	report := out.Report
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, report.TotalChildren)
	assert.Equal(t, "Q3-Growth", report.Value)
	assert.Equal(t, domain.StageFanOutComplete, report.Stage)
	assert.Equal(t, []domain.IssueID{"C1", "C2", "C3"}, report.Updated)
	assert.Empty(t, report.Failures)

	require.Len(t, api.Updates, 3)
	items := make([]domain.ItemID, 0, 3)
	for _, u := range api.Updates {
		assert.Equal(t, projectP1, u.ProjectID)
		assert.Equal(t, "Q3-Growth", u.Value)
		assert.Equal(t, fieldID, u.FieldID)
		items = append(items, u.ItemID)
	}
	assert.ElementsMatch(t, []domain.ItemID{
		testutil.ItemIDFor("C1"),
		testutil.ItemIDFor("C2"),
		testutil.ItemIDFor("C3"),
	}, items)

	for _, c := range []domain.IssueID{"C1", "C2", "C3"} {
		v, ok := api.FieldValue(c, projectP1, fieldID)
		assert.True(t, ok)
		assert.Equal(t, "Q3-Growth", v)
	}
}

func TestPropagateField_Execute_PartialFailure(t *testing.T) {
	// Setup
	api := newPropagationFixture("C1", "C2", "C3")
	api.UpdateErrs[testutil.ItemIDFor("C2")] = errors.New("connection reset by peer")
	logger := &testutil.MockLogger{}
	uc := NewPropagateField(api, logger, PropagateFieldOptions{})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err, "child failures do not fail the run")
	report := out.Report
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 3, report.TotalChildren)
	assert.Equal(t, []domain.IssueID{"C1", "C3"}, report.Updated)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, domain.IssueID("C2"), report.Failures[0].IssueID)
	assert.Contains(t, report.Failures[0].Error(), "connection reset by peer")

	assert.Equal(t, 3, api.UpdateCount(), "every child write is attempted")
	for _, c := range []domain.IssueID{"C1", "C3"} {
		v, _ := api.FieldValue(c, projectP1, fieldID)
		assert.Equal(t, "Q3-Growth", v)
	}
	_, ok := api.FieldValue("C2", projectP1, fieldID)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, logger.Count("WARN"), 2, "failed child and summary are logged")
}

func TestPropagateField_Execute_Idempotent(t *testing.T) {
	// Setup
	api := newPropagationFixture("C1", "C2", "C3")
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})
	in := PropagateFieldInput{IssueID: parentID, FieldName: "Initiative"}

	// Execute twice
	first, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	snapshot := map[domain.IssueID]string{}
	for _, c := range []domain.IssueID{"C1", "C2", "C3"} {
		snapshot[c], _ = api.FieldValue(c, projectP1, fieldID)
	}

	second, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// Assert: same end state, writes issued both times
	assert.Equal(t, first.Report.Succeeded, second.Report.Succeeded)
	assert.Equal(t, 6, api.UpdateCount())
	for c, want := range snapshot {
		got, _ := api.FieldValue(c, projectP1, fieldID)
		assert.Equal(t, want, got)
		assert.Equal(t, "Q3-Growth", got)
	}
}

func TestPropagateField_Execute_ReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(api *testutil.MockProjectAPI)
		wantMsg string
	}{
		{
			name:    "project lookup fails",
			setup:   func(api *testutil.MockProjectAPI) { api.FirstProjectErr = assert.AnError },
			wantMsg: "resolve project",
		},
		{
			name:    "children lookup fails",
			setup:   func(api *testutil.MockProjectAPI) { api.TrackedIssuesErr = assert.AnError },
			wantMsg: "resolve children",
		},
		{
			name:    "parent field lookup fails",
			setup:   func(api *testutil.MockProjectAPI) { api.ItemsErrs[parentID] = assert.AnError },
			wantMsg: "read field value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			api := newPropagationFixture("C1")
			tt.setup(api)
			uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

			// Execute
			_, err := uc.Execute(context.Background(), PropagateFieldInput{
				IssueID:   parentID,
				FieldName: "Initiative",
			})

			// Assert
			require.ErrorIs(t, err, assert.AnError)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Zero(t, api.UpdateCount())
		})
	}
}

func TestPropagateField_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		in      PropagateFieldInput
		wantErr error
	}{
		{"empty issue id", PropagateFieldInput{FieldName: "Initiative"}, domain.ErrMissingIssueID},
		{"empty field name", PropagateFieldInput{IssueID: parentID}, domain.ErrEmptyFieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newPropagationFixture("C1")
			uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

			_, err := uc.Execute(context.Background(), tt.in)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Empty(t, api.Calls, "no API calls on invalid input")
		})
	}
}

func TestPropagateField_Execute_ChildNotInProject(t *testing.T) {
	// Setup: C3 is tracked but not on the board
	api := newPropagationFixture("C1", "C2")
	api.Tracked[parentID] = []domain.IssueID{"C1", "C2", "C3"}
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.Succeeded)
	assert.Equal(t, 1, out.Report.Failed)
	require.Len(t, out.Report.Failures, 1)
	assert.ErrorIs(t, out.Report.Failures[0], domain.ErrChildNotInProject)
	assert.Empty(t, api.Added)
}

func TestPropagateField_Execute_AddMissingItems(t *testing.T) {
	// Setup
	api := newPropagationFixture("C1")
	api.Tracked[parentID] = []domain.IssueID{"C1", "C2"}
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{AddMissingItems: true})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.Succeeded)
	assert.Equal(t, []domain.IssueID{"C2"}, api.Added)
	v, ok := api.FieldValue("C2", projectP1, fieldID)
	assert.True(t, ok)
	assert.Equal(t, "Q3-Growth", v)
}

func TestPropagateField_Execute_AddMissingItemsFails(t *testing.T) {
	api := newPropagationFixture("C1")
	api.Tracked[parentID] = []domain.IssueID{"C1", "C2"}
	api.AddErr = assert.AnError
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{AddMissingItems: true})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Report.Succeeded)
	require.Len(t, out.Report.Failures, 1)
	assert.Contains(t, out.Report.Failures[0].Error(), "add to project")
}

func TestPropagateField_Execute_ChildReadFailure(t *testing.T) {
	api := newPropagationFixture("C1", "C2")
	api.ItemsErrs["C1"] = assert.AnError
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err, "a failed child read is a child failure, not a run failure")
	assert.Equal(t, 1, out.Report.Succeeded)
	assert.Equal(t, 1, out.Report.Failed)
	assert.ErrorIs(t, out.Report.Failures[0], assert.AnError)
}

func TestPropagateField_Execute_DryRun(t *testing.T) {
	// Setup
	api := newPropagationFixture("C1", "C2")
	api.Tracked[parentID] = []domain.IssueID{"C1", "C2", "C3"}
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{AddMissingItems: true})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
		DryRun:    true,
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, out.Report.DryRun)
	assert.Equal(t, 3, out.Report.Succeeded)
	assert.Zero(t, api.UpdateCount())
	assert.Empty(t, api.Added)
	assert.Contains(t, out.Report.Summary(), "would update 3/3")
}

func TestPropagateField_Execute_DistinctChildren(t *testing.T) {
	api := newPropagationFixture("C1", "C2")
	api.Tracked[parentID] = []domain.IssueID{"C1", "C1", parentID, "", "C2"}
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.TotalChildren)
	assert.Equal(t, 2, api.UpdateCount())
}

func TestPropagateField_Execute_TruncatedChildren(t *testing.T) {
	api := newPropagationFixture("C1")
	api.TrackedHasMore = true
	logger := &testutil.MockLogger{}
	uc := NewPropagateField(api, logger, PropagateFieldOptions{})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err)
	assert.True(t, out.Report.Truncated)
	assert.Equal(t, 1, logger.Count("WARN"))
}

func TestPropagateField_Execute_ConcurrencyLimit(t *testing.T) {
	// Setup
	children := []domain.IssueID{"C1", "C2", "C3", "C4", "C5", "C6"}
	api := newPropagationFixture(children...)
	api.UpdateDelay = 20 * time.Millisecond
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{MaxConcurrency: 2})

	// Execute
	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 6, out.Report.Succeeded)
	assert.LessOrEqual(t, api.MaxInFlight, 2)
}

func TestPropagateField_Execute_UnboundedFanOut(t *testing.T) {
	children := []domain.IssueID{"C1", "C2", "C3", "C4", "C5"}
	api := newPropagationFixture(children...)
	api.UpdateDelay = 50 * time.Millisecond
	uc := NewPropagateField(api, &testutil.MockLogger{}, PropagateFieldOptions{})

	out, err := uc.Execute(context.Background(), PropagateFieldInput{
		IssueID:   parentID,
		FieldName: "Initiative",
	})

	require.NoError(t, err)
	assert.Equal(t, 5, out.Report.Succeeded)
	assert.Greater(t, api.MaxInFlight, 1, "child updates run concurrently")
}

func TestDistinctChildren(t *testing.T) {
	got := distinctChildren("P", []domain.IssueID{"A", "B", "A", "P", "", "C"})
	assert.Equal(t, []domain.IssueID{"A", "B", "C"}, got)
	assert.Empty(t, distinctChildren("P", nil))
}
