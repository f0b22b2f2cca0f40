package relation

import "fmt"

// UnsupportedKindError is returned when no config model is registered for a
// materialization kind.
type UnsupportedKindError struct {
	Kind      string
	Available []string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("relation config is not supported for materialization %q\nSupported kinds: %v", e.Kind, e.Available)
}

// MissingResultError is returned when the observed results lack the keyed
// result set, or it has no rows.
type MissingResultError struct {
	Key   string
	Empty bool
}

func (e *MissingResultError) Error() string {
	if e.Empty {
		return fmt.Sprintf("result set %q has no rows", e.Key)
	}
	return fmt.Sprintf("result set %q not found", e.Key)
}
