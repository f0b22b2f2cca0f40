package relation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	path  Path
	value string
}

func (m fakeModel) Kind() string { return "test_kind" }
func (m fakeModel) Path() Path   { return m.path }

type fakeChange struct{ value string }

func (c fakeChange) Property() string          { return "value" }
func (c fakeChange) Action() ChangeAction      { return ActionAlter }
func (c fakeChange) Context() any              { return c.value }
func (c fakeChange) RequiresFullRefresh() bool { return false }

type fakeChangeset struct{ changes []ConfigChange }

func (c fakeChangeset) HasChanges() bool          { return len(c.changes) > 0 }
func (c fakeChangeset) RequiresFullRefresh() bool { return false }
func (c fakeChangeset) Changes() []ConfigChange   { return c.changes }

func init() {
	Register("Test_Kind", Factory{
		FromConfig: func(cfg Config, p Policies) (Model, error) {
			v, _ := cfg.Option("value")
			s, _ := v.(string)
			return fakeModel{path: cfg.Path(p), value: s}, nil
		},
		FromResults: func(r Results, p Policies) (Model, error) {
			row, err := r.FirstRow("test_kind")
			if err != nil {
				return nil, err
			}
			s, _ := row.String("value")
			return fakeModel{value: s}, nil
		},
		Diff: func(existing, desired Model) (Changeset, error) {
			e, d := existing.(fakeModel), desired.(fakeModel)
			if e.value == d.value {
				return nil, nil
			}
			return fakeChangeset{changes: []ConfigChange{fakeChange{d.value}}}, nil
		},
	})
}

func TestRegistry_Lookup(t *testing.T) {
	f, ok := Get("TEST_KIND")
	assert.True(t, ok, "lookup should be case-insensitive")
	assert.NotNil(t, f.Diff)
	assert.Contains(t, Kinds(), "test_kind")
}

func TestRegister_Validation(t *testing.T) {
	assert.Panics(t, func() { Register("", Factory{}) })
	assert.Panics(t, func() { Register("half_kind", Factory{FromConfig: func(Config, Policies) (Model, error) { return nil, nil }}) })

	f, _ := Get("test_kind")
	assert.Panics(t, func() { Register("test_kind", f) }, "duplicate registration should panic")
}

func TestFromConfig_UnsupportedKind(t *testing.T) {
	_, err := FromConfig(Config{Materialized: "materialized_view"}, DefaultPolicies)
	require.Error(t, err)

	var unsupported *UnsupportedKindError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "materialized_view", unsupported.Kind)
	assert.Contains(t, unsupported.Available, "test_kind")
	assert.Contains(t, err.Error(), "materialized_view")

	_, err = FromResults("materialized_view", nil, DefaultPolicies)
	assert.True(t, errors.As(err, &unsupported))
}

func TestCompare(t *testing.T) {
	results := Results{"test_kind": {Rows: []Row{{"value": "a"}}}}

	cs, err := Compare(results, Config{Materialized: "test_kind", Extra: map[string]any{"value": "a"}}, DefaultPolicies)
	require.NoError(t, err)
	assert.Nil(t, cs)

	cs, err = Compare(results, Config{Materialized: "test_kind", Extra: map[string]any{"value": "b"}}, DefaultPolicies)
	require.NoError(t, err)
	require.NotNil(t, cs)
	assert.True(t, cs.HasChanges())
	assert.Equal(t, "b", cs.Changes()[0].Context())

	_, err = Compare(Results{}, Config{Materialized: "test_kind"}, DefaultPolicies)
	var missing *MissingResultError
	assert.True(t, errors.As(err, &missing))
}

func TestReplaceableAndRenameable(t *testing.T) {
	assert.True(t, IsReplaceable("dynamic_table"))
	assert.True(t, IsReplaceable("VIEW"))
	assert.False(t, IsRenameable("dynamic_table"))
	assert.True(t, IsRenameable("table"))
}
