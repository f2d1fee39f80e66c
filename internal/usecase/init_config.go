package usecase

import (
	"context"

	"github.com/runoshun/gh-field-sync/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct {
	Config *domain.Config // Values rendered into the template (nil = defaults)
	Global bool           // Write the global config instead of .fieldsync.toml
}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Created file

	// MissingTokenEnv names the token variable from the written config when
	// it is unset in the current environment, so the next run would fail.
	MissingTokenEnv string
}

// InitConfig writes a commented config file and checks that the token the
// file points at is available.
type InitConfig struct {
	configManager domain.ConfigManager
	getenv        func(string) string
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(configManager domain.ConfigManager, getenv func(string) string) *InitConfig {
	return &InitConfig{
		configManager: configManager,
		getenv:        getenv,
	}
}

// Execute creates the config file. An existing file is never overwritten
// (domain.ErrConfigExists).
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}

	write, info := uc.configManager.InitRepoConfig, uc.configManager.GetRepoConfigInfo
	if in.Global {
		write, info = uc.configManager.InitGlobalConfig, uc.configManager.GetGlobalConfigInfo
	}
	if err := write(cfg); err != nil {
		return nil, err
	}

	out := &InitConfigOutput{Path: info().Path}

	tokenEnv := cfg.GitHub.TokenEnv
	if tokenEnv == "" {
		tokenEnv = domain.DefaultTokenEnv
	}
	if uc.getenv == nil || uc.getenv(tokenEnv) == "" {
		out.MissingTokenEnv = tokenEnv
	}
	return out, nil
}
