package sqlnorm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenExpect struct {
	kind Kind
	text string
}

func collect(t *testing.T, input string) []tokenExpect {
	t.Helper()
	tokens, err := Tokenize(input)
	require.NoError(t, err)
	out := make([]tokenExpect, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenExpect{tok.Kind, tok.Text}
	}
	return out
}

func TestTokenize_Basic(t *testing.T) {
	got := collect(t, `select a, "B" from t -- note
where x <> 'it''s'`)

	assert.Equal(t, []tokenExpect{
		{Word, "select"},
		{Word, "a"},
		{Punct, ","},
		{QuotedIdent, `"B"`},
		{Word, "from"},
		{Word, "t"},
		{Word, "where"},
		{Word, "x"},
		{Operator, "<>"},
		{String, `'it''s'`},
	}, got)
}

func TestTokenize_NoBreakSpace(t *testing.T) {
	got := collect(t, "select\u00a0a from t\u00a0where b\u00a0")

	assert.Equal(t, []tokenExpect{
		{Word, "select"},
		{Word, "a"},
		{Word, "from"},
		{Word, "t"},
		{Word, "where"},
		{Word, "b"},
	}, got)

	// Other non-ASCII letters still belong to the word.
	assert.Equal(t, []tokenExpect{{Word, "café"}}, collect(t, "café"))
}

func TestTokenize_SnowflakeSyntax(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenExpect
	}{
		{
			name:  "cast operator",
			input: "id::varchar",
			want:  []tokenExpect{{Word, "id"}, {Punct, "::"}, {Word, "varchar"}},
		},
		{
			name:  "named argument",
			input: "flatten(input => v)",
			want: []tokenExpect{
				{Word, "flatten"}, {Punct, "("}, {Word, "input"}, {Operator, "=>"}, {Word, "v"}, {Punct, ")"},
			},
		},
		{
			name:  "dollar quoted string",
			input: "$$it's$$",
			want:  []tokenExpect{{String, "$$it's$$"}},
		},
		{
			name:  "positional column and bind",
			input: "$1 = ?",
			want:  []tokenExpect{{Variable, "$1"}, {Operator, "="}, {Variable, "?"}},
		},
		{
			name:  "slash comment",
			input: "a // gone\nb",
			want:  []tokenExpect{{Word, "a"}, {Word, "b"}},
		},
		{
			name:  "block comment",
			input: "a /* gone */ b",
			want:  []tokenExpect{{Word, "a"}, {Word, "b"}},
		},
		{
			name:  "dollar inside identifier",
			input: "col$1",
			want:  []tokenExpect{{Word, "col$1"}},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5 1e10 3E-2",
			want: []tokenExpect{
				{Number, "1"}, {Number, "2.5"}, {Number, ".5"}, {Number, "1e10"}, {Number, "3E-2"},
			},
		},
		{
			name:  "backslash escaped quote",
			input: `'it\'s'`,
			want:  []tokenExpect{{String, `'it\'s'`}},
		},
		{
			name:  "doubled quote in identifier",
			input: `"a""b"`,
			want:  []tokenExpect{{QuotedIdent, `"a""b"`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(t, tt.input))
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := Tokenize("select\n  a")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, Position{Line: 1, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, Position{Line: 2, Column: 3, Offset: 9}, tokens[1].Pos)
	assert.Equal(t, 10, tokens[1].End)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unterminated string", "select 'abc", errUnterminatedString},
		{"unterminated dollar string", "select $$abc", errUnterminatedString},
		{"unterminated identifier", `select "abc`, errUnterminatedQuoted},
		{"unterminated comment", "select /* abc", errUnterminatedComment},
		{"illegal character", "select #", `illegal character '#'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr))
			assert.Equal(t, tt.message, lexErr.Message)
			assert.Equal(t, 1, lexErr.Pos.Line)
			assert.Equal(t, 8, lexErr.Pos.Column)
		})
	}
}

func TestTokenIsWord(t *testing.T) {
	tok := Token{Kind: Word, Text: "Select"}
	assert.True(t, tok.IsWord("SELECT"))
	assert.False(t, tok.IsWord("WITH"))
	assert.False(t, Token{Kind: QuotedIdent, Text: `"SELECT"`}.IsWord("SELECT"))
}
