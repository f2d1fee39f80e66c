package cli

import (
	"github.com/runoshun/gh-field-sync/internal/app"
	"github.com/runoshun/gh-field-sync/internal/domain"
	"github.com/runoshun/gh-field-sync/internal/usecase"
	"github.com/spf13/cobra"
)

// runFlags are shared by the commands that talk to GitHub.
type runFlags struct {
	field  string
	token  string
	output string
	dryRun bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.field, "field", "f", "", "Text field to propagate (default from config)")
	cmd.Flags().StringVar(&f.token, "token", "", "GitHub token (default from $GITHUB_TOKEN or github.token_env)")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Resolve everything but do not write")
}

// fieldName returns the flag value or the configured field.
func (f *runFlags) fieldName(c *app.Container) string {
	if f.field != "" {
		return f.field
	}
	return c.AppConfig.Propagate.Field
}

// projectAPI validates the output format and token, then builds the client.
// Nothing talks to GitHub until both checks pass.
func (f *runFlags) projectAPI(c *app.Container) (domain.ProjectAPI, error) {
	if err := validateOutputFormat(f.output); err != nil {
		return nil, err
	}
	token, err := c.ResolveToken(f.token)
	if err != nil {
		return nil, err
	}
	return c.NewProjectAPI(token), nil
}

// newPropagateCommand creates the propagate command.
func newPropagateCommand(c *app.Container) *cobra.Command {
	var flags runFlags
	var issue string

	cmd := &cobra.Command{
		Use:   "propagate [issue-node-id]",
		Short: "Copy a field from an issue to the issues it tracks",
		Long: `Copy a project text field from a parent issue to every issue it tracks.

The parent is identified by its GraphQL node id (for example I_kwDOA1b2c3).
The parent's first project is used. Tracked issues that fail to update are
listed in the report; the command still succeeds.

Error conditions:
- Missing token or issue id: configuration error
- Parent has no value for the field: error, nothing is written
- GitHub API error while reading the parent, its project or its tracked
  issues: error (exit 1), nothing is written`,
		Example: `  fieldsync propagate I_kwDOA1b2c3
  fieldsync propagate --issue I_kwDOA1b2c3 --field Team --dry-run
  fieldsync propagate I_kwDOA1b2c3 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && issue == "" {
				issue = args[0]
			}
			if issue == "" {
				return domain.ErrMissingIssueID
			}

			api, err := flags.projectAPI(c)
			if err != nil {
				return err
			}

			uc := c.PropagateFieldUseCase(api)
			out, err := uc.Execute(cmd.Context(), usecase.PropagateFieldInput{
				IssueID:   domain.IssueID(issue),
				FieldName: flags.fieldName(c),
				DryRun:    flags.dryRun,
			})
			if err != nil {
				return err
			}

			return writeReport(cmd.OutOrStdout(), flags.output, out.Report)
		},
	}

	cmd.Flags().StringVarP(&issue, "issue", "i", "", "Parent issue node id")
	flags.register(cmd)

	return cmd
}
