package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/gh-field-sync/internal/domain"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	styleFail    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleLabel   = lipgloss.NewStyle().Width(10)
	styleDryRun  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	styleSkipped = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
)

// validateOutputFormat rejects unknown --output values.
func validateOutputFormat(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("%w: invalid output format %q (text, json, yaml)", domain.ErrConfiguration, format)
	}
}

// reportView is the serialized form of a propagation report.
type reportView struct {
	IssueID   string        `json:"issue_id" yaml:"issue_id"`
	ProjectID string        `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Field     string        `json:"field" yaml:"field"`
	Value     string        `json:"value,omitempty" yaml:"value,omitempty"`
	Skipped   string        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Stage     string        `json:"stage" yaml:"stage"`
	Summary   string        `json:"summary" yaml:"summary"`
	Updated   []string      `json:"updated" yaml:"updated"`
	Failures  []failureView `json:"failures" yaml:"failures"`
	Total     int           `json:"total" yaml:"total"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Truncated bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	DryRun    bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

type failureView struct {
	IssueID string `json:"issue_id" yaml:"issue_id"`
	Error   string `json:"error" yaml:"error"`
}

func newReportView(r *domain.PropagationReport) reportView {
	v := reportView{
		IssueID:   string(r.IssueID),
		ProjectID: string(r.ProjectID),
		Field:     r.FieldName,
		Value:     r.Value,
		Skipped:   string(r.Skip),
		Stage:     string(r.Stage),
		Summary:   r.Summary(),
		Updated:   make([]string, 0, len(r.Updated)),
		Failures:  make([]failureView, 0, len(r.Failures)),
		Total:     r.TotalChildren,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Truncated: r.Truncated,
		DryRun:    r.DryRun,
	}
	for _, id := range r.Updated {
		v.Updated = append(v.Updated, string(id))
	}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, failureView{IssueID: string(f.IssueID), Error: f.Err.Error()})
	}
	return v
}

// writeReport renders a report in the requested format.
func writeReport(w io.Writer, format string, r *domain.PropagationReport) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newReportView(r))
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newReportView(r)); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return enc.Close()
	default:
		writeReportText(w, r)
		return nil
	}
}

func writeReportText(w io.Writer, r *domain.PropagationReport) {
	var header string
	switch {
	case r.Skipped():
		header = styleSkipped.Render("- ") + r.Summary()
	case r.Failed > 0:
		header = styleWarn.Render("! ") + r.Summary()
	default:
		header = styleOK.Render("✓ ") + r.Summary()
	}
	if r.DryRun {
		header = styleDryRun.Render("[dry-run] ") + header
	}
	_, _ = fmt.Fprintln(w, header)

	if r.Skipped() {
		return
	}

	row := func(label, value string) {
		_, _ = fmt.Fprintf(w, "  %s%s\n", styleLabel.Render(label), value)
	}
	row("project", string(r.ProjectID))
	if len(r.Updated) > 0 {
		ids := make([]string, 0, len(r.Updated))
		for _, id := range r.Updated {
			ids = append(ids, string(id))
		}
		row("updated", strings.Join(ids, ", "))
	}
	for _, f := range r.Failures {
		row("failed", styleFail.Render(f.Error()))
	}
	if r.Truncated {
		row("note", styleMuted.Render(fmt.Sprintf("only the first %d tracked issues were read", domain.TrackedIssuesPageSize)))
	}
}
