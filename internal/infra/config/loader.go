// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/gh-field-sync/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	getenv        func(string) string
	workDir       string // Directory holding .fieldsync.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/gh-field-sync)
}

// NewLoader creates a new Loader.
func NewLoader(workDir string) *Loader {
	return &Loader{
		getenv:        os.Getenv,
		workDir:       workDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config
// directory and environment lookup. This is useful for testing.
func NewLoaderWithGlobalDir(workDir, globalConfDir string, getenv func(string) string) *Loader {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Loader{
		getenv:        getenv,
		workDir:       workDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Precedence (later wins): defaults, global file, working directory file,
// environment. A key set in a file always wins over earlier sources, even
// when it sets the zero value.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.loadGlobalOverlay()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.loadFile(domain.RepoConfigPath(l.workDir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := domain.NewDefaultConfig()
	global.applyTo(cfg)
	repo.applyTo(cfg)
	l.applyEnv(cfg)

	return cfg, nil
}

// LoadGlobal returns only the keys set in the global configuration file.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	overlay, err := l.loadGlobalOverlay()
	if err != nil {
		return nil, err
	}
	cfg := &domain.Config{}
	overlay.applyTo(cfg)
	return cfg, nil
}

func (l *Loader) loadGlobalOverlay() (*fileConfig, error) {
	path := globalConfigPath(l.globalConfDir)
	if path == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(path)
}

// globalConfigPath returns the global config file inside dir, or "" when
// there is no global config directory.
func globalConfigPath(dir string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, domain.ConfigFileName)
}

// applyEnv overrides cfg with FIELDSYNC_* environment variables.
func (l *Loader) applyEnv(cfg *domain.Config) {
	if v := l.getenv(domain.EnvField); v != "" {
		cfg.Propagate.Field = v
	}
	if v := l.getenv(domain.EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := l.getenv(domain.EnvAPIURL); v != "" {
		cfg.GitHub.APIURL = v
	}
}

// fileConfig holds the keys one config file sets. A nil field was absent.
type fileConfig struct {
	apiURL          *string
	tokenEnv        *string
	timeout         *time.Duration
	field           *string
	maxConcurrency  *int
	addMissingItems *bool
	logLevel        *string
	logFile         *string
	warnings        []string
}

// applyTo copies every key present in f onto cfg. A nil f is a no-op.
func (f *fileConfig) applyTo(cfg *domain.Config) {
	if f == nil {
		return
	}
	cfg.Warnings = append(cfg.Warnings, f.warnings...)
	set(&cfg.GitHub.APIURL, f.apiURL)
	set(&cfg.GitHub.TokenEnv, f.tokenEnv)
	set(&cfg.GitHub.Timeout, f.timeout)
	set(&cfg.Propagate.Field, f.field)
	set(&cfg.Propagate.MaxConcurrency, f.maxConcurrency)
	set(&cfg.Propagate.AddMissingItems, f.addMissingItems)
	set(&cfg.Log.Level, f.logLevel)
	set(&cfg.Log.File, f.logFile)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// loadFile loads the keys set in a config file.
func (l *Loader) loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToFileConfig(raw)
}

// convertRawToFileConfig records the keys present in the raw map and collects
// warnings for unknown sections and keys.
func convertRawToFileConfig(raw map[string]any) (*fileConfig, error) {
	res := &fileConfig{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		switch section {
		case "github":
			for k, v := range m {
				switch k {
				case "api_url":
					res.apiURL = asString(v)
				case "token_env":
					res.tokenEnv = asString(v)
				case "timeout":
					s := asString(v)
					if s == nil {
						continue
					}
					d, err := time.ParseDuration(*s)
					if err != nil {
						return nil, fmt.Errorf("invalid [github].timeout %q: %w", *s, err)
					}
					res.timeout = &d
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [github]: %s", k))
				}
			}
		case "propagate":
			for k, v := range m {
				switch k {
				case "field":
					res.field = asString(v)
				case "max_concurrency":
					if n, ok := v.(int64); ok {
						if n < 0 {
							return nil, fmt.Errorf("invalid [propagate].max_concurrency %d: must not be negative", n)
						}
						c := int(n)
						res.maxConcurrency = &c
					}
				case "add_missing_items":
					if b, ok := v.(bool); ok {
						res.addMissingItems = &b
					}
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [propagate]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					res.logLevel = asString(v)
				case "file":
					res.logFile = asString(v)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.warnings = warnings
	return res, nil
}

func asString(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}
