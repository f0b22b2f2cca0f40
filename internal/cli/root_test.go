package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowdrift/internal/cli/testutil"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"version", "diff", "normalize", "history", "doctor", "completion"}
	for _, name := range want {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	for _, flag := range []string{"config", "state", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestDiffWithConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snowdrift.yaml"),
		[]byte("observed: observed.yaml\nstate_path: .snowdrift/state.db\noutput: json\n"), 0o644))
	t.Chdir(dir)

	out, _, err := runRoot(t, "diff", "models/orders.yaml", "models/customers.yaml", "--record")
	require.NoError(t, err)

	var report struct {
		Summary struct {
			Total   int `json:"total"`
			Rebuild int `json:"rebuild"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Rebuild)

	assert.FileExists(t, filepath.Join(dir, ".snowdrift", "state.db"))

	out, _, err = runRoot(t, "history", "analytics.marts.orders_dt")
	require.NoError(t, err)
	assert.Contains(t, out, `"requires_full_refresh": true`)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snowdrift.yaml"),
		[]byte("observed: missing.yaml\noutput: json\n"), 0o644))
	t.Chdir(dir)

	out, _, err := runRoot(t, "diff", "models/customers.yaml", "--observed", "observed.yaml", "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Drift Report")
	assert.Contains(t, out, "- **Status:** unchanged")
}

func TestVerboseLogsToStderr(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	_, errOut, err := runRoot(t, "diff", "models/orders.yaml", "--observed", "observed.yaml", "-o", "json", "-v")
	require.NoError(t, err)
	assert.Contains(t, errOut, "compared relation")
	assert.Contains(t, errOut, "status=rebuild")
}

func TestInvalidOutputFormat(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := runRoot(t, "doctor", "-o", "yaml")
	require.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "snowdrift")
}
