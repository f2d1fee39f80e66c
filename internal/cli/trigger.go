package cli

import (
	"fmt"

	"github.com/runoshun/gh-field-sync/internal/app"
	"github.com/runoshun/gh-field-sync/internal/usecase"
	"github.com/spf13/cobra"
)

// newTriggerCommand creates the trigger command used from GitHub Actions.
func newTriggerCommand(c *app.Container) *cobra.Command {
	var flags runFlags
	var eventPath string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Propagate for the issue event that started this run",
		Long: `Read an issue event and propagate the field for opened and edited issues.

The event is read from the GitHub Actions payload at $GITHUB_EVENT_PATH
(issue.node_id and action). Outside Actions, set ISSUE_ID and optionally
EVENT_KIND (opened or edited, default edited). Other event kinds are
ignored and the command succeeds.

Example workflow step:

  on:
    issues:
      types: [opened, edited]
  ...
      - run: fieldsync trigger
        env:
          GITHUB_TOKEN: ${{ secrets.PROJECT_TOKEN }}

Error conditions:
- Missing token or issue id: configuration error
- Parent has no value for the field: error, nothing is written
- GitHub API error while reading the parent, its project or its tracked
  issues: error (exit 1), nothing is written
- Tracked issues that fail to update are reported; the command succeeds`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := flags.projectAPI(c)
			if err != nil {
				return err
			}

			uc := c.HandleIssueEventUseCase(c.TriggerSource(eventPath), api)
			out, err := uc.Execute(cmd.Context(), usecase.HandleIssueEventInput{
				FieldName: flags.fieldName(c),
				DryRun:    flags.dryRun,
			})
			if err != nil {
				return err
			}

			if out.Ignored {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Ignored %q event for issue %s\n", out.Trigger.Kind, out.Trigger.IssueID)
				return nil
			}
			return writeReport(cmd.OutOrStdout(), flags.output, out.Report)
		},
	}

	cmd.Flags().StringVar(&eventPath, "event-path", "", "Event payload file (default $GITHUB_EVENT_PATH)")
	flags.register(cmd)

	return cmd
}
