package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowdrift/internal/cli/output"
	"github.com/leapstack-labs/snowdrift/internal/state"
	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

const defaultHistoryLimit = 20

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <database.schema.name>",
		Short: "Show recorded plans for a relation",
		Long: `Show the plans recorded by "snowdrift diff --record" for a relation,
newest first.`,
		Example: `  snowdrift history analytics.marts.orders_dt
  snowdrift history analytics.marts.orders_dt --limit 5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", defaultHistoryLimit, "Maximum number of plans to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	limit, _ := cmd.Flags().GetInt("limit")
	pol := cc.Cfg.Policies()

	p, err := relation.ParsePath(args[0])
	if err != nil {
		return err
	}
	name := p.AsCaseSensitive(pol).String()

	ctx := cmd.Context()
	store, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	plans, err := store.ListPlans(ctx, name, limit)
	if err != nil {
		return err
	}

	r := cc.Renderer
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		if plans == nil {
			plans = []*state.Plan{}
		}
		return r.JSON(plans)
	}

	r.Header(1, "History: "+name)
	r.Println()
	if len(plans) == 0 {
		r.Muted("No plans recorded.")
		return nil
	}

	t := historyTable(plans)
	if mode == output.ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return nil
	}
	t.SetStyle(table.StyleLight)
	r.Println(t.Render())
	return nil
}

func historyTable(plans []*state.Plan) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Recorded", "Status", "Properties", "Plan"})
	for _, plan := range plans {
		t.AppendRow(table.Row{
			plan.CreatedAt.Local().Format(time.DateTime),
			planStatus(plan),
			strings.Join(planProperties(plan), ", "),
			shortID(plan.ID),
		})
	}
	return t
}

func planStatus(plan *state.Plan) string {
	switch {
	case !plan.HasChanges:
		return StatusUnchanged
	case plan.RequiresFullRefresh:
		return StatusRebuild
	default:
		return StatusAlter
	}
}

// planProperties lists the changed properties stored with a plan.
func planProperties(plan *state.Plan) []string {
	var changes []struct {
		Property string `json:"property"`
	}
	if err := json.Unmarshal(plan.Changes, &changes); err != nil {
		return []string{fmt.Sprintf("(unreadable: %v)", err)}
	}
	props := make([]string, 0, len(changes))
	for _, ch := range changes {
		props = append(props, ch.Property)
	}
	if len(props) == 0 {
		return []string{"-"}
	}
	return props
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
