package sqlnorm

import (
	"errors"
	"fmt"
)

// ErrNoInnerStatement is wrapped by ExtractionError when a stored definition
// has no isolable SELECT or WITH body.
var ErrNoInnerStatement = errors.New("no select or with statement found")

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ExtractionError is returned when the inner statement of a stored object
// definition cannot be isolated.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to extract inner statement from definition: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to extract inner statement from definition: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Common error messages
const (
	errUnterminatedString  = "unterminated string literal"
	errUnterminatedQuoted  = "unterminated quoted identifier"
	errUnterminatedComment = "unterminated block comment"
	errIllegalChar         = "illegal character %q"
)
