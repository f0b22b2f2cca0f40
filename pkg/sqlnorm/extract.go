package sqlnorm

import (
	"fmt"
	"strings"
)

// ExtractInnerStatement isolates the SELECT or WITH statement inside a stored
// object definition such as
//
//	create or replace dynamic table T target_lag = '1 hour' warehouse = WH as (
//	  select ...
//	)
//
// The statement may also follow AS without a wrapping parenthesis. Only an AS
// at the top nesting level is considered, so column lists and string
// literals in the DDL header are skipped.
func ExtractInnerStatement(definition string) (string, error) {
	tokens, err := Tokenize(definition)
	if err != nil {
		return "", &ExtractionError{Reason: "definition could not be tokenized", Err: err}
	}

	depth := 0
	for i, tok := range tokens {
		switch {
		case tok.Is("(") || tok.Is("[") || tok.Is("{"):
			depth++
		case tok.Is(")") || tok.Is("]") || tok.Is("}"):
			depth--
		case depth == 0 && tok.IsWord("AS") && i+1 < len(tokens):
			next := tokens[i+1]
			if next.Is("(") {
				end := matchingParen(tokens, i+1)
				if end < 0 {
					return "", &ExtractionError{Reason: "unbalanced parenthesis after AS", Err: ErrNoInnerStatement}
				}
				// The parentheses wrap the statement only when nothing follows them.
				if len(trimTrailingSemicolons(tokens[end+1:])) == 0 {
					return innerStatement(definition, tokens[i+2:end])
				}
				return innerStatement(definition, trimTrailingSemicolons(tokens[i+1:]))
			}
			if next.IsWord("SELECT") || next.IsWord("WITH") {
				return innerStatement(definition, trimTrailingSemicolons(tokens[i+1:]))
			}
		}
	}

	return "", &ExtractionError{Reason: "no AS clause introducing a statement", Err: ErrNoInnerStatement}
}

// matchingParen returns the index of the token closing the parenthesis at
// open, or -1.
func matchingParen(tokens []Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch {
		case tokens[i].Is("("):
			depth++
		case tokens[i].Is(")"):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func innerStatement(definition string, body []Token) (string, error) {
	if len(body) == 0 {
		return "", &ExtractionError{Reason: "empty statement body", Err: ErrNoInnerStatement}
	}
	if !body[0].IsWord("SELECT") && !body[0].IsWord("WITH") {
		return "", &ExtractionError{
			Reason: fmt.Sprintf("statement body starts with %q", body[0].Text),
			Err:    ErrNoInnerStatement,
		}
	}
	return strings.TrimSpace(definition[body[0].Pos.Offset:body[len(body)-1].End]), nil
}
