package sqlnorm

import (
	"strings"
)

// Normalizer renders SQL text into a canonical form suitable for structural
// comparison. Implementations must be stateless.
type Normalizer interface {
	Normalize(sql string) (string, error)
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(sql string) (string, error)

// Normalize calls f(sql).
func (f NormalizerFunc) Normalize(sql string) (string, error) {
	return f(sql)
}

// Default is the normalizer used when none is configured.
var Default Normalizer = Formatter{}

// Normalize renders sql with the Default normalizer.
func Normalize(sql string) (string, error) {
	return Default.Normalize(sql)
}

// Equivalent reports whether a and b normalize to the same text.
func Equivalent(n Normalizer, a, b string) (bool, error) {
	na, err := n.Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := n.Normalize(b)
	if err != nil {
		return false, err
	}
	return na == nb, nil
}

// Formatter is a deterministic formatter over the token stream. Comments and
// layout are discarded, unquoted words are upper-cased the way Snowflake
// resolves them, and tokens are re-joined with fixed spacing and line breaks.
type Formatter struct{}

// Normalize implements Normalizer.
func (Formatter) Normalize(sql string) (string, error) {
	tokens, err := Tokenize(sql)
	if err != nil {
		return "", err
	}
	tokens = trimTrailingSemicolons(tokens)

	canon := make([]Token, len(tokens))
	for i, tok := range tokens {
		tok.Text = canonicalText(tok)
		canon[i] = tok
	}

	p := newPrinter()
	p.print(canon)
	return p.String(), nil
}

func trimTrailingSemicolons(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[len(tokens)-1].Is(";") {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// canonicalText returns the comparison form of a single token.
func canonicalText(tok Token) string {
	switch tok.Kind {
	case Word, Number:
		return strings.ToUpper(tok.Text)
	case QuotedIdent:
		return canonicalQuotedIdent(tok.Text)
	case String:
		return canonicalString(tok.Text)
	case Operator:
		if tok.Text == "<>" {
			return "!="
		}
	}
	return tok.Text
}

// canonicalQuotedIdent drops quotes from identifiers that Snowflake would
// resolve identically unquoted ("ORDERS" is ORDERS).
func canonicalQuotedIdent(text string) string {
	inner := strings.ReplaceAll(text[1:len(text)-1], `""`, `"`)
	if isPlainUpperIdent(inner) {
		return inner
	}
	return text
}

func isPlainUpperIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'A' <= c && c <= 'Z', c == '_':
		case i > 0 && (isDigit(c) || c == '$'):
		default:
			return false
		}
	}
	return true
}

// canonicalString re-encodes a string literal as single-quoted text with
// quotes escaped by doubling.
func canonicalString(text string) string {
	var b strings.Builder
	b.WriteByte('\'')

	if strings.HasPrefix(text, "$$") {
		body := text[2 : len(text)-2]
		body = strings.ReplaceAll(body, `\`, `\\`)
		body = strings.ReplaceAll(body, `'`, `''`)
		b.WriteString(body)
		b.WriteByte('\'')
		return b.String()
	}

	body := text[1 : len(text)-1]
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteString(`''`)
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
