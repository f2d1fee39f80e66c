// Package cli provides the command-line interface for fieldsync.
package cli

import (
	"fmt"

	"github.com/runoshun/gh-field-sync/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSync  = "sync"
	groupSetup = "setup"
)

// NewRootCommand creates the root command for fieldsync.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldsync",
		Short: "Propagate a GitHub project field from an issue to the issues it tracks",
		Long: `fieldsync keeps a text field on a GitHub Projects board consistent
between a parent issue and the issues it tracks.

When the parent is opened or edited, the parent's value for the field
(default "Initiative") is written to every tracked issue's item in the
parent's first project. Child updates run concurrently; a failed child
is reported without affecting its siblings.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Skip if container is nil (config failed to load)
			if c == nil || c.AppConfig == nil {
				return
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSync, Title: "Sync Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	propagateCmd := newPropagateCommand(c)
	propagateCmd.GroupID = groupSync

	triggerCmd := newTriggerCommand(c)
	triggerCmd.GroupID = groupSync

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		propagateCmd,
		triggerCmd,
		configCmd,
	)

	return root
}
