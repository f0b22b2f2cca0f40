// Package sqlnorm tokenizes Snowflake SQL text and renders it in a canonical
// form so that two statements can be compared for drift without caring about
// whitespace, comments or keyword case.
package sqlnorm

import "fmt"

// Kind classifies a lexical token.
type Kind int

// Token kinds.
const (
	EOF         Kind = iota
	Word             // unquoted identifier or keyword
	QuotedIdent      // "Name"
	String           // 'text' or $$text$$
	Number           // 123, 4.5, 1e10
	Variable         // $1, ?, :bind
	Operator         // + - * / % || = != < > <= >= => ->
	Punct            // . , ( ) [ ] { } : :: ;
)

var kindNames = map[Kind]string{
	EOF:         "EOF",
	Word:        "WORD",
	QuotedIdent: "QUOTED_IDENT",
	String:      "STRING",
	Number:      "NUMBER",
	Variable:    "VARIABLE",
	Operator:    "OPERATOR",
	Punct:       "PUNCT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// Token is a single lexical unit. Text is the raw source slice.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
	End  int // byte offset just past the token
}

// Is reports whether the token is the given punctuation or operator.
func (t Token) Is(text string) bool {
	return (t.Kind == Punct || t.Kind == Operator) && t.Text == text
}

// IsWord reports whether the token is an unquoted word matching kw
// case-insensitively.
func (t Token) IsWord(kw string) bool {
	return t.Kind == Word && equalFoldASCII(t.Text, kw)
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
