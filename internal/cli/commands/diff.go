package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/snowdrift/internal/cli/output"
	"github.com/leapstack-labs/snowdrift/internal/state"
	"github.com/leapstack-labs/snowdrift/pkg/relation"

	// Registers the dynamic_table kind.
	_ "github.com/leapstack-labs/snowdrift/pkg/relation/dynamictable"
)

// Drift status of one model.
const (
	StatusUnchanged = "unchanged"
	StatusAlter     = "alter"
	StatusRebuild   = "rebuild"
	StatusError     = "error"
)

// DiffResult is the comparison outcome for one declared model.
type DiffResult struct {
	Relation  string             `json:"relation"`
	Kind      string             `json:"kind"`
	Source    string             `json:"source"`
	Status    string             `json:"status"`
	Changeset relation.Changeset `json:"changeset,omitempty"`
	Error     string             `json:"error,omitempty"`

	path relation.Path
}

// DiffSummary counts results by status.
type DiffSummary struct {
	Total     int `json:"total"`
	Unchanged int `json:"unchanged"`
	Alter     int `json:"alter"`
	Rebuild   int `json:"rebuild"`
	Failed    int `json:"failed"`
}

// DiffReport is the JSON document written by diff.
type DiffReport struct {
	Results []DiffResult `json:"results"`
	Summary DiffSummary  `json:"summary"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <model.yaml>...",
		Short: "Compare declared models against observed warehouse state",
		Long: `Compare each declared model against the observed state of its relation
and report the changes needed to bring the relation in line.

Changes to target_lag or warehouse can be applied with ALTER. Any other
change needs the relation to be recreated with a full refresh.

Observed state read from the catalog always carries transient, so declare
transient: false on permanent tables to avoid a needless rebuild.

Observed state is read from the file given by --observed (or "observed"
in snowdrift.yaml), keyed by fully qualified relation name:

  relations:
    analytics.marts.orders_dt:
      dynamic_table:
        rows:
          - name: ORDERS_DT
            target_lag: 5 minutes
            warehouse: TRANSFORMING
            refresh_mode: INCREMENTAL
            text: create dynamic table ... as (select ...)`,
		Example: `  # Compare two model files
  snowdrift diff models/orders.yaml models/customers.yaml --observed observed.yaml

  # Record the plans and emit JSON
  snowdrift diff models/*.yaml --record -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDiff,
	}

	cmd.Flags().String("observed", "", "Observed state file (YAML or JSON)")
	cmd.Flags().Bool("record", false, "Record each plan in the state database")
	cmd.Flags().Int("concurrency", 0, "Number of models compared in parallel")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg
	pol := cfg.Policies()

	if cfg.Observed == "" {
		return fmt.Errorf("no observed state: pass --observed or set observed in snowdrift.yaml")
	}
	observed, err := loadObserved(cfg.Observed, pol)
	if err != nil {
		return err
	}

	var models []declaredModel
	for _, path := range args {
		loaded, err := loadModels(path)
		if err != nil {
			return err
		}
		models = append(models, loaded...)
	}
	cc.Logger.Debug("loaded models", slog.Int("models", len(models)), slog.Int("observed", len(observed)))

	results := make([]DiffResult, len(models))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Concurrency)
	for i, m := range models {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = diffModel(m, observed, pol, cc.Logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Record {
		if err := recordPlans(cmd, cc, results); err != nil {
			return err
		}
	}

	report := DiffReport{Results: results, Summary: summarize(results)}
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(report); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderDiffMarkdown(r, report)
	default:
		renderDiffText(r, report)
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d models failed", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

// diffModel compares one declared model against its observed state.
func diffModel(m declaredModel, observed map[string]relation.Results, pol relation.Policies, logger *slog.Logger) DiffResult {
	path := m.Config.Path(pol)
	res := DiffResult{
		Relation: path.String(),
		Kind:     strings.ToLower(m.Config.Materialized),
		Source:   m.Source,
		path:     path,
	}

	results, ok := observed[path.AsCaseSensitive(pol).String()]
	if !ok {
		res.Status = StatusError
		res.Error = fmt.Sprintf("no observed state for %s", res.Relation)
		return res
	}

	cs, err := relation.Compare(results, m.Config, pol)
	if err != nil {
		logger.Debug("compare failed", slog.String("relation", res.Relation), slog.String("error", err.Error()))
		res.Status = StatusError
		res.Error = err.Error()
		return res
	}

	res.Changeset = cs
	switch {
	case cs == nil || !cs.HasChanges():
		res.Status = StatusUnchanged
	case cs.RequiresFullRefresh():
		res.Status = StatusRebuild
	default:
		res.Status = StatusAlter
	}
	logger.Debug("compared relation",
		slog.String("relation", res.Relation),
		slog.String("status", res.Status))
	return res
}

func recordPlans(cmd *cobra.Command, cc *CommandContext, results []DiffResult) error {
	ctx := cmd.Context()
	store, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	for _, res := range results {
		if res.Status == StatusError {
			continue
		}
		plan, err := state.NewPlan(res.path, res.Kind, res.Changeset)
		if err != nil {
			return err
		}
		if err := store.RecordPlan(ctx, plan); err != nil {
			return err
		}
		cc.Logger.Debug("recorded plan", slog.String("relation", plan.Relation), slog.String("id", plan.ID))
	}
	return nil
}

func summarize(results []DiffResult) DiffSummary {
	s := DiffSummary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case StatusUnchanged:
			s.Unchanged++
		case StatusAlter:
			s.Alter++
		case StatusRebuild:
			s.Rebuild++
		case StatusError:
			s.Failed++
		}
	}
	return s
}

func renderDiffText(r *output.Renderer, report DiffReport) {
	styles := r.Styles()
	r.Header(1, "Drift Report")
	r.Println()

	for _, res := range report.Results {
		switch res.Status {
		case StatusUnchanged:
			r.Success(res.Relation + " is up to date")
		case StatusAlter:
			r.Warning(fmt.Sprintf("%s: %s, alter in place", res.Relation, plural(len(res.Changeset.Changes()), "change")))
		case StatusRebuild:
			r.Println(styles.StatusFailed.String() + " " +
				styles.Error.Render(fmt.Sprintf("%s: %s, full refresh required", res.Relation, plural(len(res.Changeset.Changes()), "change"))))
		case StatusError:
			r.Println(styles.StatusFailed.String() + " " + styles.Error.Render(res.Relation+": "+res.Error))
		}

		if res.Changeset != nil && res.Changeset.HasChanges() {
			t := changeTable(res.Changeset)
			t.SetStyle(table.StyleLight)
			r.Println(t.Render())
		}
	}

	r.Println()
	s := report.Summary
	r.Println(styles.Bold.Render("Summary: ") + fmt.Sprintf("%d unchanged, %d alter, %d rebuild, %d failed",
		s.Unchanged, s.Alter, s.Rebuild, s.Failed))
}

func renderDiffMarkdown(r *output.Renderer, report DiffReport) {
	r.Println(output.FormatHeader(1, "Drift Report"))
	r.Println()

	for _, res := range report.Results {
		r.Println(output.FormatHeader(2, res.Relation))
		r.Println()
		r.Println(output.FormatKeyValue("Kind", res.Kind))
		r.Println(output.FormatKeyValue("Status", res.Status))
		r.Println(output.FormatKeyValue("Source", res.Source))
		if res.Error != "" {
			r.Println(output.FormatKeyValue("Error", res.Error))
		}
		r.Println()

		if res.Changeset != nil && res.Changeset.HasChanges() {
			r.Println(changeTable(res.Changeset).RenderMarkdown())
			r.Println()
		}
	}

	s := report.Summary
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println()
	r.Println(output.FormatKeyValue("Unchanged", fmt.Sprint(s.Unchanged)))
	r.Println(output.FormatKeyValue("Alter", fmt.Sprint(s.Alter)))
	r.Println(output.FormatKeyValue("Rebuild", fmt.Sprint(s.Rebuild)))
	r.Println(output.FormatKeyValue("Failed", fmt.Sprint(s.Failed)))
}

var titleCaser = cases.Title(language.English)

// changeTable lists the changes in a changeset, one row per property.
func changeTable(cs relation.Changeset) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Property", "Action", "Full Refresh", "Desired"})
	for _, ch := range cs.Changes() {
		t.AppendRow(table.Row{
			titleCaser.String(strings.ReplaceAll(ch.Property(), "_", " ")),
			string(ch.Action()),
			yesNo(ch.RequiresFullRefresh()),
			formatContext(ch.Context()),
		})
	}
	return t
}

const maxContextWidth = 60

// formatContext renders a desired value on a single line.
func formatContext(v any) string {
	if v == nil {
		return "(unset)"
	}
	s := strings.Join(strings.Fields(fmt.Sprint(v)), " ")
	if len(s) > maxContextWidth {
		s = s[:maxContextWidth-3] + "..."
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
