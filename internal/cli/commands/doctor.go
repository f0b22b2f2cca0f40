package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowdrift/internal/cli/output"
	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// Health check status.
const (
	CheckPass  = "pass"
	CheckWarn  = "warn"
	CheckError = "error"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that snowdrift can read its inputs",
		Long: `Check the configured observed state file, the plan history database
and the relation kinds this build can compare.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  snowdrift doctor
  snowdrift doctor -o json`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
}

// HealthCheck is the result of one doctor check.
type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Checks []HealthCheck `json:"checks"`
	Errors int           `json:"errors"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	checks := []HealthCheck{
		checkObserved(cc),
		checkStateDatabase(cmd, cc),
		checkKinds(),
		checkPolicies(cc.Cfg.Policies()),
	}

	out := DoctorOutput{Checks: checks}
	for _, c := range checks {
		if c.Status == CheckError {
			out.Errors++
		}
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Snowdrift Doctor"))
		r.Println()
		r.Println(doctorTable(checks).RenderMarkdown())
	default:
		renderDoctorText(r, checks)
	}

	if out.Errors > 0 {
		return fmt.Errorf("%d check(s) failed", out.Errors)
	}
	return nil
}

func checkObserved(cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "observed state"}
	path := cc.Cfg.Observed
	if path == "" {
		c.Status = CheckWarn
		c.Detail = "not configured; diff needs --observed"
		return c
	}
	observed, err := loadObserved(path, cc.Cfg.Policies())
	if err != nil {
		c.Status = CheckError
		c.Detail = err.Error()
		return c
	}
	c.Status = CheckPass
	c.Detail = fmt.Sprintf("%s (%d relations)", path, len(observed))
	return c
}

func checkStateDatabase(cmd *cobra.Command, cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "state database"}
	path := cc.Cfg.StatePath
	if path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			c.Status = CheckPass
			c.Detail = path + " (created on first --record)"
			return c
		}
	}

	store, err := cc.OpenStore(cmd.Context())
	if err != nil {
		c.Status = CheckError
		c.Detail = err.Error()
		return c
	}
	defer func() { _ = store.Close() }()

	version, err := store.MigrationVersion(cmd.Context())
	if err != nil {
		c.Status = CheckError
		c.Detail = err.Error()
		return c
	}
	c.Status = CheckPass
	c.Detail = fmt.Sprintf("%s (schema version %d)", path, version)
	return c
}

func checkKinds() HealthCheck {
	kinds := relation.Kinds()
	if len(kinds) == 0 {
		return HealthCheck{Name: "relation kinds", Status: CheckError, Detail: "none registered"}
	}
	return HealthCheck{Name: "relation kinds", Status: CheckPass, Detail: strings.Join(kinds, ", ")}
}

func checkPolicies(pol relation.Policies) HealthCheck {
	var quoted []string
	for _, c := range relation.ComponentNames {
		if pol.Quote.Get(c) {
			quoted = append(quoted, string(c))
		}
	}
	detail := "unquoted names resolve upper-case"
	if len(quoted) > 0 {
		detail = "quoted: " + strings.Join(quoted, ", ")
	}
	return HealthCheck{Name: "identifier policy", Status: CheckPass, Detail: detail}
}

func doctorTable(checks []HealthCheck) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, c := range checks {
		t.AppendRow(table.Row{c.Name, c.Status, c.Detail})
	}
	return t
}

func renderDoctorText(r *output.Renderer, checks []HealthCheck) {
	styles := r.Styles()
	r.Header(1, "Snowdrift Doctor")
	r.Println()
	for _, c := range checks {
		line := fmt.Sprintf("%-18s %s", c.Name, c.Detail)
		switch c.Status {
		case CheckPass:
			r.Success(line)
		case CheckWarn:
			r.Warning(line)
		default:
			r.Println(styles.StatusFailed.String() + " " + styles.Error.Render(line))
		}
	}
}
