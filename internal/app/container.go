// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"os"

	"github.com/runoshun/gh-field-sync/internal/domain"
	"github.com/runoshun/gh-field-sync/internal/infra/config"
	"github.com/runoshun/gh-field-sync/internal/infra/event"
	"github.com/runoshun/gh-field-sync/internal/infra/github"
	"github.com/runoshun/gh-field-sync/internal/infra/logging"
	"github.com/runoshun/gh-field-sync/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	WorkDir string // Directory searched for .fieldsync.toml
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// Fields are ordered to minimize memory padding.
type Container struct {
	// Ports (interfaces bound to implementations)
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	Logger        domain.Logger

	// NewProjectAPI builds a remote API client for one run. The token is
	// never stored on the container.
	NewProjectAPI func(token string) domain.ProjectAPI

	// Getenv looks up environment variables (token, trigger inputs).
	Getenv func(string) string

	// AppConfig is the merged configuration loaded at startup.
	AppConfig *domain.Config

	closeLogger func() error

	// Configuration
	Config Config
}

// New creates a new Container rooted at dir.
// A malformed config file is a configuration error.
func New(dir string) (*Container, error) {
	cfg := Config{WorkDir: dir}

	configLoader := config.NewLoader(cfg.WorkDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: load config: %w", domain.ErrConfiguration, err)
	}

	logger := logging.New(os.Stderr, appConfig.Log.File, logging.ParseLevel(appConfig.Log.Level))

	gh := appConfig.GitHub
	newAPI := func(token string) domain.ProjectAPI {
		return github.NewClient(github.Options{
			APIURL:  gh.APIURL,
			Token:   token,
			Timeout: gh.Timeout,
		})
	}

	return &Container{
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(cfg.WorkDir),
		Logger:        logger,
		NewProjectAPI: newAPI,
		Getenv:        os.Getenv,
		AppConfig:     appConfig,
		closeLogger:   logger.Close,
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
// Every run receives api regardless of the token.
func NewWithDeps(cfg Config, appConfig *domain.Config, api domain.ProjectAPI, logger domain.Logger, getenv func(string) string) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Container{
		Logger:        logger,
		NewProjectAPI: func(string) domain.ProjectAPI { return api },
		Getenv:        getenv,
		AppConfig:     appConfig,
		Config:        cfg,
	}
}

// Close releases resources held by the container (the log file).
func (c *Container) Close() error {
	if c.closeLogger == nil {
		return nil
	}
	return c.closeLogger()
}

// ResolveToken returns flagToken when set, otherwise the value of the
// environment variable named by github.token_env.
func (c *Container) ResolveToken(flagToken string) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	name := c.AppConfig.GitHub.TokenEnv
	if name == "" {
		name = domain.DefaultTokenEnv
	}
	if token := c.Getenv(name); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%w (set $%s or pass --token)", domain.ErrMissingToken, name)
}

// TriggerSource returns the trigger adapter. eventPath overrides
// GITHUB_EVENT_PATH when non-empty.
func (c *Container) TriggerSource(eventPath string) domain.TriggerSource {
	return event.NewSource(eventPath, c.Getenv)
}

// UseCase factory methods

// PropagateFieldUseCase returns a new PropagateField use case bound to api.
func (c *Container) PropagateFieldUseCase(api domain.ProjectAPI) *usecase.PropagateField {
	p := c.AppConfig.Propagate
	return usecase.NewPropagateField(api, c.Logger, usecase.PropagateFieldOptions{
		MaxConcurrency:  p.MaxConcurrency,
		AddMissingItems: p.AddMissingItems,
	})
}

// HandleIssueEventUseCase returns a new HandleIssueEvent use case.
func (c *Container) HandleIssueEventUseCase(source domain.TriggerSource, api domain.ProjectAPI) *usecase.HandleIssueEvent {
	return usecase.NewHandleIssueEvent(source, c.PropagateFieldUseCase(api), c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager, c.Getenv)
}
