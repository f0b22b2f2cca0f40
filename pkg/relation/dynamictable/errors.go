package dynamictable

import "fmt"

// OptionError is returned when a declared option or observed column cannot
// be decoded into its typed field.
type OptionError struct {
	Relation string
	Err      error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid dynamic table configuration for %s: %v", e.Relation, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}
