// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/snowdrift/internal/cli/output"
)

// OrdersModel declares analytics.marts.orders_dt with a 5 minute lag.
const OrdersModel = `database: analytics
schema: marts
identifier: orders_dt
materialized: dynamic_table
compiled_code: |
  select id, amount from raw.orders
config:
  target_lag: 5 minutes
  snowflake_warehouse: transforming
  refresh_mode: incremental
`

// CustomersModel declares analytics.marts.customers_dt, read from a SQL file.
const CustomersModel = `database: analytics
schema: marts
identifier: customers_dt
materialized: dynamic_table
sql_file: customers.sql
config:
  target_lag: downstream
  snowflake_warehouse: transforming
`

// CustomersSQL is the compiled SQL of CustomersModel.
const CustomersSQL = "SELECT id, name FROM raw.customers\n"

// Observed is observed state in which orders_dt has drifted (target lag
// and query) and customers_dt matches its declaration.
const Observed = `relations:
  analytics.marts.orders_dt:
    dynamic_table:
      rows:
        - name: ORDERS_DT
          schema_name: MARTS
          database_name: ANALYTICS
          text: |
            create or replace dynamic table ANALYTICS.MARTS.ORDERS_DT
              target_lag = '1 hour' warehouse = TRANSFORMING
            as (select id from raw.orders)
          target_lag: 1 hour
          warehouse: TRANSFORMING
          refresh_mode: INCREMENTAL
  ANALYTICS.MARTS.CUSTOMERS_DT:
    dynamic_table:
      rows:
        - name: CUSTOMERS_DT
          schema_name: MARTS
          database_name: ANALYTICS
          text: "create dynamic table customers_dt target_lag = 'DOWNSTREAM' warehouse = TRANSFORMING as (select id, name from raw.customers)"
          target_lag: DOWNSTREAM
          warehouse: TRANSFORMING
          refresh_mode: INCREMENTAL
`

// SetupTestProject creates a temporary project with two dynamic table
// models and an observed state file. It returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	modelsDir := filepath.Join(tmpDir, "models")
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", modelsDir, err)
	}

	files := map[string]string{
		filepath.Join(modelsDir, "orders.yaml"):    OrdersModel,
		filepath.Join(modelsDir, "customers.yaml"): CustomersModel,
		filepath.Join(modelsDir, "customers.sql"):  CustomersSQL,
		filepath.Join(tmpDir, "observed.yaml"):     Observed,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", path, err)
		}
	}

	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
