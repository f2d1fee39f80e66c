package domain

// IssueID is the opaque node id of an issue.
type IssueID string

// ProjectID is the opaque node id of a project board.
type ProjectID string

// ItemID is the node id of a project item, the record binding an issue to a
// project. It is never interchangeable with an IssueID.
type ItemID string

// FieldID is the node id of a custom field definition on a project.
type FieldID string

// TextField is a text-valued custom field entry on a project item.
type TextField struct {
	ID    FieldID
	Name  string
	Value string
}

// ProjectItem is an issue's membership in one project, carrying that
// project's field values for the issue.
type ProjectItem struct {
	ID        ItemID
	ProjectID ProjectID
	Fields    []TextField
}

// Field returns the field entry whose name matches name exactly.
func (p ProjectItem) Field(name string) (TextField, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return TextField{}, false
}

// FindItem returns the item belonging to the given project.
func FindItem(items []ProjectItem, project ProjectID) (ProjectItem, bool) {
	for _, it := range items {
		if it.ProjectID == project {
			return it, true
		}
	}
	return ProjectItem{}, false
}

// TrackedIssues is the first page of issues tracked by a parent issue.
type TrackedIssues struct {
	IDs []IssueID
	// HasMore reports that the remote API truncated the list.
	HasMore bool
}

// UpdateTextFieldInput addresses exactly one (project item, field) pair.
type UpdateTextFieldInput struct {
	ProjectID ProjectID
	ItemID    ItemID
	FieldID   FieldID
	Value     string
}
