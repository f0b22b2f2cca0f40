package sqlnorm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "simple select",
			input: "select a, b from t",
			expected: `SELECT A, B
FROM T
`,
		},
		{
			name: "layout and comments are dropped",
			input: `SELECT a,
    b -- trailing
FROM t /* block */`,
			expected: `SELECT A, B
FROM T
`,
		},
		{
			name:  "where clause",
			input: "select a from t where x = 1 and y <> 'z'",
			expected: `SELECT A
FROM T
WHERE X = 1 AND Y != 'z'
`,
		},
		{
			name:  "function call and cast",
			input: "select count(*) , id::varchar from t",
			expected: `SELECT COUNT(*), ID::VARCHAR
FROM T
`,
		},
		{
			name:  "subquery",
			input: "select a from t where a in (select b from u)",
			expected: `SELECT A
FROM T
WHERE A IN (
  SELECT B
  FROM U)
`,
		},
		{
			name:  "common table expression",
			input: "with x as (select 1 as n) select n from x",
			expected: `WITH X AS (
  SELECT 1 AS N)
SELECT N
FROM X
`,
		},
		{
			name:  "join",
			input: "select * from a left join b on a.id = b.id",
			expected: `SELECT *
FROM A
LEFT JOIN B ON A.ID = B.ID
`,
		},
		{
			name:  "grouping and ordering",
			input: "select a, count(*) from t group by a order by a",
			expected: `SELECT A, COUNT(*)
FROM T
GROUP BY A
ORDER BY A
`,
		},
		{
			name:  "redundant quotes dropped",
			input: `select "ID" from "Orders"`,
			expected: `SELECT ID
FROM "Orders"
`,
		},
		{
			name:     "trailing semicolon",
			input:    "select 1;",
			expected: "SELECT 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Formatter{}.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		equal bool
	}{
		{"whitespace", "select   a,  b  from t", "select a, b\nfrom t", true},
		{"no-break space", "select a from t\u00a0where b", "select a from t where b", true},
		{"keyword case", "SELECT a FROM t", "select a from t", true},
		{"unquoted identifier case", "select Amount from Orders", "select AMOUNT from ORDERS", true},
		{"comment placement", "select a -- x\nfrom t", "select /* y */ a from t", true},
		{"string escape styles", "select $$it's$$", `select 'it\'s'`, true},
		{"not equal operators", "select 1 where a <> b", "select 1 where a != b", true},
		{"reordered columns", "select a, b from t", "select b, a from t", false},
		{"changed predicate", "select a from t where x = 1", "select a from t where x = 2", false},
		{"added clause", "select a from t", "select a from t where a > 0", false},
		{"string case matters", "select 'Abc'", "select 'abc'", false},
		{"quoted identifier case matters", `select "abc" from t`, "select abc from t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Equivalent(Default, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.equal, got)
		})
	}
}

func TestEquivalent_WindowLayout(t *testing.T) {
	a := "select row_number() over (partition by a order by b) as rn from t"
	b := `select
  row_number() over (
    partition by a
    order by b
  ) as rn
from t`

	got, err := Equivalent(Formatter{}, a, b)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestNormalize_Deterministic(t *testing.T) {
	sql := "with x as (select a, sum(b) from t group by a) select * from x qualify row_number() over (order by a) = 1"

	first, err := Normalize(sql)
	require.NoError(t, err)
	second, err := Normalize(first)
	require.NoError(t, err)

	assert.Equal(t, first, second, "normalizing canonical text must be a fixed point")
}

func TestNormalize_LexError(t *testing.T) {
	_, err := Normalize("select 'abc")
	require.Error(t, err)

	var lexErr *LexError
	assert.True(t, errors.As(err, &lexErr))
}

func TestNormalizerFunc(t *testing.T) {
	n := NormalizerFunc(func(sql string) (string, error) { return sql, nil })

	got, err := Equivalent(n, "a", "A")
	require.NoError(t, err)
	assert.False(t, got)
}
