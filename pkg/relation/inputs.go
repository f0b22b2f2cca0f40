package relation

import (
	"fmt"
	"strings"
)

// Config is the declared side of a comparison: a model's identity, its
// compiled SQL and the open-ended options the user configured.
type Config struct {
	Database     string         `yaml:"database" json:"database"`
	Schema       string         `yaml:"schema" json:"schema"`
	Identifier   string         `yaml:"identifier" json:"identifier"`
	Materialized string         `yaml:"materialized" json:"materialized"`
	CompiledCode string         `yaml:"compiled_code" json:"compiled_code"`
	Extra        map[string]any `yaml:"config" json:"config"`
}

// Path returns the declared path rendered through the policies.
func (c Config) Path(p Policies) Path {
	return NewPath(c.Database, c.Schema, c.Identifier, p)
}

// Option returns an extension option by key.
func (c Config) Option(key string) (any, bool) {
	v, ok := c.Extra[key]
	return v, ok
}

// Row is one result row keyed by column name.
type Row map[string]any

// Get returns a column value, matching the column name case-insensitively.
func (r Row) Get(column string) any {
	if v, ok := r[column]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return nil
}

// String returns a column value as text. The second result is false when the
// column is absent or null.
func (r Row) String(column string) (string, bool) {
	switch v := r.Get(column).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// ResultSet is one keyed query result.
type ResultSet struct {
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	Rows    []Row    `yaml:"rows" json:"rows"`
}

// Results is the observed side of a comparison: result sets keyed by the
// kind of object they describe (for example "dynamic_table").
type Results map[string]*ResultSet

// FirstRow returns the first row of the named result set.
func (r Results) FirstRow(key string) (Row, error) {
	rs, ok := r[key]
	if !ok || rs == nil {
		return nil, &MissingResultError{Key: key}
	}
	if len(rs.Rows) == 0 {
		return nil, &MissingResultError{Key: key, Empty: true}
	}
	return rs.Rows[0], nil
}
