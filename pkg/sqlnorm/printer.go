package sqlnorm

import (
	"bytes"
	"strings"
)

const indentSize = 2

// clauseKeywords start a new line wherever they appear.
var clauseKeywords = map[string]bool{
	"SELECT":    true,
	"FROM":      true,
	"WHERE":     true,
	"HAVING":    true,
	"QUALIFY":   true,
	"WINDOW":    true,
	"LIMIT":     true,
	"OFFSET":    true,
	"UNION":     true,
	"INTERSECT": true,
	"EXCEPT":    true,
	"MINUS":     true,
}

// joinKeywords start a new line unless they continue a join phrase.
var joinKeywords = map[string]bool{
	"JOIN":    true,
	"LEFT":    true,
	"RIGHT":   true,
	"INNER":   true,
	"FULL":    true,
	"CROSS":   true,
	"NATURAL": true,
	"OUTER":   true,
}

// spacedKeywords keep a space before a following "(", unlike function names.
var spacedKeywords = map[string]bool{
	"AND":    true,
	"AS":     true,
	"BY":     true,
	"EXISTS": true,
	"FROM":   true,
	"IN":     true,
	"JOIN":   true,
	"NOT":    true,
	"ON":     true,
	"OR":     true,
	"OVER":   true,
	"SELECT": true,
	"THEN":   true,
	"UNION":  true,
	"USING":  true,
	"VALUES": true,
	"WHEN":   true,
	"WHERE":  true,
	"WITH":   true,
}

// printer lays out canonical tokens.
type printer struct {
	output *bytes.Buffer
	depth  int
}

func newPrinter() *printer {
	return &printer{output: &bytes.Buffer{}}
}

// String returns the formatted output.
func (p *printer) String() string {
	return strings.TrimRight(p.output.String(), "\n ") + "\n"
}

func (p *printer) print(tokens []Token) {
	for i, tok := range tokens {
		if i > 0 {
			switch {
			case startsLine(tokens, i):
				p.newline()
			case !spaceBetween(tokens[i-1], tok):
			default:
				p.output.WriteByte(' ')
			}
		}
		p.output.WriteString(tok.Text)

		switch {
		case tok.Is("(") || tok.Is("[") || tok.Is("{"):
			p.depth++
		case (tok.Is(")") || tok.Is("]") || tok.Is("}")) && p.depth > 0:
			p.depth--
		}
	}
}

func (p *printer) newline() {
	p.output.WriteByte('\n')
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
}

// startsLine reports whether tokens[i] opens a new clause line.
func startsLine(tokens []Token, i int) bool {
	tok := tokens[i]
	if tok.Kind != Word {
		return false
	}
	prev := tokens[i-1]
	switch {
	case clauseKeywords[tok.Text]:
		return !prev.Is(".")
	case tok.Text == "GROUP" || tok.Text == "ORDER":
		return i+1 < len(tokens) && tokens[i+1].Kind == Word && tokens[i+1].Text == "BY" &&
			!(prev.Kind == Word && prev.Text == "WITHIN")
	case joinKeywords[tok.Text]:
		return !(prev.Kind == Word && joinKeywords[prev.Text])
	}
	return false
}

// spaceBetween reports whether a space separates prev and next.
func spaceBetween(prev, next Token) bool {
	switch {
	case next.Is(",") || next.Is(")") || next.Is("]") || next.Is("}") ||
		next.Is(".") || next.Is("::") || next.Is(":") || next.Is(";"):
		return false
	case prev.Is("(") || prev.Is("[") || prev.Is("{") ||
		prev.Is(".") || prev.Is("::") || prev.Is(":"):
		return false
	case next.Is("(") || next.Is("["):
		if prev.Kind == Word {
			return spacedKeywords[prev.Text]
		}
		return prev.Kind != QuotedIdent && !prev.Is(")") && !prev.Is("]")
	}
	return true
}
