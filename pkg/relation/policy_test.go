package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicies_RenderPart(t *testing.T) {
	tests := []struct {
		name      string
		policies  Policies
		component ComponentName
		value     string
		want      string
		included  bool
	}{
		{
			name:      "unquoted part is upper-cased",
			policies:  DefaultPolicies,
			component: Identifier,
			value:     "orders_dt",
			want:      "ORDERS_DT",
			included:  true,
		},
		{
			name: "quoted part keeps case",
			policies: Policies{
				Include: DefaultPolicies.Include,
				Quote:   Policy{Schema: true},
			},
			component: Schema,
			value:     "Marts",
			want:      "Marts",
			included:  true,
		},
		{
			name: "excluded part is omitted",
			policies: Policies{
				Include: Policy{Schema: true, Identifier: true},
			},
			component: Database,
			value:     "analytics",
			want:      "",
			included:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policies.RenderPart(tt.component, tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.included, ok)
		})
	}
}

func TestPath_AsCaseSensitive(t *testing.T) {
	p := Path{Database: "analytics", Schema: "Marts", Identifier: "orders_dt"}

	pol := Policies{
		Include: Policy{Schema: true, Identifier: true},
		Quote:   Policy{Schema: true},
	}

	got := p.AsCaseSensitive(pol)
	assert.Equal(t, Path{Schema: "Marts", Identifier: "ORDERS_DT"}, got)

	got = p.AsCaseSensitive(DefaultPolicies)
	assert.Equal(t, Path{Database: "ANALYTICS", Schema: "MARTS", Identifier: "ORDERS_DT"}, got)
}

func TestPath_RenderAndString(t *testing.T) {
	p := NewPath("analytics", `we"ird`, "orders", Policies{
		Include: DefaultPolicies.Include,
		Quote:   Policy{Schema: true},
	})

	assert.Equal(t, `ANALYTICS.we"ird.ORDERS`, p.String())
	assert.Equal(t, `ANALYTICS."we""ird".ORDERS`, p.Render(Policies{
		Include: DefaultPolicies.Include,
		Quote:   Policy{Schema: true},
	}))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		ref     string
		want    Path
		wantErr string
	}{
		{ref: "orders", want: Path{Identifier: "orders"}},
		{ref: "marts.orders", want: Path{Schema: "marts", Identifier: "orders"}},
		{ref: "db.marts.orders", want: Path{Database: "db", Schema: "marts", Identifier: "orders"}},
		{ref: `db."my.schema".orders`, want: Path{Database: "db", Schema: "my.schema", Identifier: "orders"}},
		{ref: `db.s."a""b"`, want: Path{Database: "db", Schema: "s", Identifier: `a"b`}},
		{ref: "a.b.c.d", wantErr: "at most 3 components"},
		{ref: "db..orders", wantErr: "empty component"},
		{ref: `db."open`, wantErr: "unterminated quote"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParsePath(tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
