package domain

import (
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestRepoConfigPath(t *testing.T) {
	got := RepoConfigPath("/home/user/project")
	want := "/home/user/project/.fieldsync.toml"
	if got != want {
		t.Errorf("RepoConfigPath() = %q, want %q", got, want)
	}
}

func TestGlobalConfigDir(t *testing.T) {
	got := GlobalConfigDir("/home/user/.config")
	want := "/home/user/.config/gh-field-sync"
	if got != want {
		t.Errorf("GlobalConfigDir() = %q, want %q", got, want)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Propagate.Field != DefaultFieldName {
		t.Errorf("Propagate.Field = %q, want %q", cfg.Propagate.Field, DefaultFieldName)
	}
	if cfg.GitHub.APIURL != DefaultAPIURL {
		t.Errorf("GitHub.APIURL = %q, want %q", cfg.GitHub.APIURL, DefaultAPIURL)
	}
	if cfg.GitHub.TokenEnv != DefaultTokenEnv {
		t.Errorf("GitHub.TokenEnv = %q, want %q", cfg.GitHub.TokenEnv, DefaultTokenEnv)
	}
	if cfg.Propagate.MaxConcurrency != 0 {
		t.Errorf("Propagate.MaxConcurrency = %d, want unbounded", cfg.Propagate.MaxConcurrency)
	}
}

func TestRenderConfigTemplate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Propagate.Field = "Team"

	content := RenderConfigTemplate(cfg)

	for _, want := range []string{`field = "Team"`, `level = "info"`, `timeout = "30s"`, DefaultAPIURL} {
		if !strings.Contains(content, want) {
			t.Errorf("template should contain %q", want)
		}
	}

	// The rendered template must itself be valid TOML.
	var raw map[string]any
	if err := toml.Unmarshal([]byte(content), &raw); err != nil {
		t.Fatalf("rendered template is not valid TOML: %v", err)
	}
}
