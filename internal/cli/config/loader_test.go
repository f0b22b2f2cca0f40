package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowdrift/internal/testutil"
	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("observed", "", "")
	fs.String("state", "", "")
	fs.Bool("record", false, "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	fs.Int("concurrency", 0, "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, used, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, used)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, relation.DefaultPolicies, cfg.Policies())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `observed: observed.yaml
output: json
concurrency: 2
quote_policy:
  schema: true
include_policy:
  database: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snowdrift.yaml"), []byte(content), 0o600))

	t.Setenv("SNOWDRIFT_CONCURRENCY", "6")
	t.Setenv("SNOWDRIFT_QUOTE_POLICY_IDENTIFIER", "true")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--output", "markdown", "--state", "custom.db"}))

	cfg, used, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "snowdrift.yaml", used)
	assert.Equal(t, "markdown", cfg.OutputFormat, "flag beats file")
	assert.Equal(t, 6, cfg.Concurrency, "env beats file")
	assert.Equal(t, "custom.db", cfg.StatePath, "--state maps to state_path")
	assert.Equal(t, "observed.yaml", cfg.Observed)

	pol := cfg.Policies()
	assert.True(t, pol.Quote.Schema)
	assert.True(t, pol.Quote.Identifier)
	assert.False(t, pol.Quote.Database)
	assert.False(t, pol.Include.Database)
	assert.True(t, pol.Include.Schema)
}

func TestLoadConfig_ExplicitFileResolvesPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yml")
	require.NoError(t, os.WriteFile(path, []byte("state_path: state/plans.db\nobserved: snap.json\n"), 0o600))

	cfg, used, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, used)
	assert.Equal(t, filepath.Join(dir, "state", "plans.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(dir, "snap.json"), cfg.Observed)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "unknown output", args: []string{"--output", "html"}, errMsg: "invalid output format"},
		{name: "zero concurrency", args: []string{"--concurrency", "0"}, errMsg: "concurrency must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			flags := newFlags()
			require.NoError(t, flags.Parse(tt.args))

			_, _, err := LoadConfig("", flags)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{OutputFormat: "json", Concurrency: 1}
	logger := testutil.NewTestLogger(t)
	ctx = WithLogger(WithConfig(ctx, cfg), logger)

	assert.Same(t, cfg, FromContext(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "state_path", envKey("SNOWDRIFT_STATE_PATH"))
	assert.Equal(t, "quote_policy.schema", envKey("SNOWDRIFT_QUOTE_POLICY_SCHEMA"))
	assert.Equal(t, "include_policy.database", envKey("SNOWDRIFT_INCLUDE_POLICY_DATABASE"))
}
