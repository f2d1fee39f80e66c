package domain

import (
	"context"
)

// ProjectAPI is the remote project-tracking API consumed by propagation.
// Implementations hold the credential; a fresh value is built per run.
type ProjectAPI interface {
	// TrackedIssues returns the first page of issues tracked by issueID.
	TrackedIssues(ctx context.Context, issueID IssueID) (*TrackedIssues, error)

	// FirstProject returns the first project issueID belongs to.
	// ok is false when the issue is not in any project.
	FirstProject(ctx context.Context, issueID IssueID) (project ProjectID, ok bool, err error)

	// ProjectItems returns the first page of issueID's project memberships
	// with their text field values.
	ProjectItems(ctx context.Context, issueID IssueID) ([]ProjectItem, error)

	// UpdateTextField sets a text field on a project item and returns the
	// updated item's id.
	UpdateTextField(ctx context.Context, in UpdateTextFieldInput) (ItemID, error)

	// AddToProject adds issueID to a project and returns the item id.
	// Adding an issue that is already in the project returns its existing item.
	AddToProject(ctx context.Context, project ProjectID, issueID IssueID) (ItemID, error)
}

// TriggerSource reads the event that started a run.
type TriggerSource interface {
	// Read returns the trigger. It fails with ErrMissingIssueID when the
	// event carries no issue.
	Read() (*Trigger, error)
}

// Logger writes operator-visible log lines scoped to an issue.
// An empty issue id logs under the global scope.
type Logger interface {
	Info(issueID IssueID, category, msg string)
	Debug(issueID IssueID, category, msg string)
	Warn(issueID IssueID, category, msg string)
	Error(issueID IssueID, category, msg string)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults, global, repository).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig writes the config template into the working directory.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig writes the config template into the global config directory.
	InitGlobalConfig(cfg *Config) error
}
