package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager inspects and creates the two config files fieldsync reads:
// .fieldsync.toml in the working directory and the global config.toml.
type Manager struct {
	repoPath   string
	globalPath string // Empty when no global config directory is available
}

// NewManager creates a new Manager.
func NewManager(workDir string) *Manager {
	return NewManagerWithGlobalDir(workDir, defaultGlobalConfigDir())
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
func NewManagerWithGlobalDir(workDir, globalConfDir string) *Manager {
	return &Manager{
		repoPath:   domain.RepoConfigPath(workDir),
		globalPath: globalConfigPath(globalConfDir),
	}
}

// GetRepoConfigInfo returns information about the working directory config file.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return readConfigInfo(m.repoPath)
}

// GetGlobalConfigInfo returns information about the global config file.
// The zero ConfigInfo means there is no global config directory.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalPath == "" {
		return domain.ConfigInfo{}
	}
	return readConfigInfo(m.globalPath)
}

// InitRepoConfig creates .fieldsync.toml in the working directory.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	return createConfigFile(m.repoPath, cfg)
}

// InitGlobalConfig creates the global config file and its directory.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalPath == "" {
		return errors.New("global config directory not available (set $XDG_CONFIG_HOME or $HOME)")
	}
	if err := os.MkdirAll(filepath.Dir(m.globalPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return createConfigFile(m.globalPath, cfg)
}

func readConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{Path: path, Content: string(content), Exists: true}
}

// createConfigFile writes the rendered template to a file that must not
// exist yet. The check and the create are a single exclusive open.
func createConfigFile(path string, cfg *domain.Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", domain.ErrConfigExists, path)
	}
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.WriteString(domain.RenderConfigTemplate(cfg)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}
