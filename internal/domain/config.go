package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	GitHub    GitHubConfig    `toml:"github"`
	Log       LogConfig       `toml:"log"`
	Propagate PropagateConfig `toml:"propagate"`
}

// GitHubConfig holds API settings from the [github] section.
type GitHubConfig struct {
	APIURL   string        `toml:"api_url,omitempty"`   // GraphQL endpoint
	TokenEnv string        `toml:"token_env,omitempty"` // Environment variable holding the token
	Timeout  time.Duration `toml:"timeout,omitempty"`   // Per-request timeout (0 = none)
}

// PropagateConfig holds propagation settings from the [propagate] section.
type PropagateConfig struct {
	Field           string `toml:"field,omitempty"`             // Name of the text field to copy
	MaxConcurrency  int    `toml:"max_concurrency,omitempty"`   // Ceiling on in-flight child updates (0 = unbounded)
	AddMissingItems bool   `toml:"add_missing_items,omitempty"` // Add children missing from the project
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
	File  string `toml:"file,omitempty"`  // Optional file to append log lines to
}

// Default configuration values.
const (
	DefaultAPIURL    = "https://api.github.com/graphql"
	DefaultTokenEnv  = "GITHUB_TOKEN"
	DefaultFieldName = "Initiative"
	DefaultLogLevel  = "info"
	DefaultTimeout   = 30 * time.Second
)

// Page sizes of the remote queries. Larger results are truncated.
const (
	TrackedIssuesPageSize = 100
	ProjectItemsPageSize  = 10
	FieldValuesPageSize   = 10
)

// Directory and file names.
const (
	AppDirName         = "gh-field-sync"   // Directory name under the user config home
	ConfigFileName     = "config.toml"     // Global config file name
	RepoConfigFileName = ".fieldsync.toml" // Config file name in the working directory
)

// Environment variables that override configuration.
const (
	EnvField    = "FIELDSYNC_FIELD"
	EnvLogLevel = "FIELDSYNC_LOG_LEVEL"
	EnvAPIURL   = "FIELDSYNC_API_URL"
)

// RepoConfigPath returns the config path inside a working directory.
func RepoConfigPath(dir string) string {
	return filepath.Join(dir, RepoConfigFileName)
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			APIURL:   DefaultAPIURL,
			TokenEnv: DefaultTokenEnv,
			Timeout:  DefaultTimeout,
		},
		Propagate: PropagateConfig{
			Field: DefaultFieldName,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// RenderConfigTemplate renders the commented config template with the
// values of cfg filled in.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
