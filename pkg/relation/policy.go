package relation

import (
	"fmt"
	"strings"
)

// ComponentName identifies one part of a relation path.
type ComponentName string

// Path components, outermost first.
const (
	Database   ComponentName = "database"
	Schema     ComponentName = "schema"
	Identifier ComponentName = "identifier"
)

// ComponentNames lists every component in path order.
var ComponentNames = []ComponentName{Database, Schema, Identifier}

// Policy holds one boolean per path component.
type Policy struct {
	Database   bool `koanf:"database"`
	Schema     bool `koanf:"schema"`
	Identifier bool `koanf:"identifier"`
}

// Get returns the policy value for a component.
func (p Policy) Get(c ComponentName) bool {
	switch c {
	case Database:
		return p.Database
	case Schema:
		return p.Schema
	case Identifier:
		return p.Identifier
	}
	return false
}

// Policies pairs the include policy (is the part present at all) with the
// quote policy (is the part quoted and therefore case-sensitive).
type Policies struct {
	Include Policy `koanf:"include"`
	Quote   Policy `koanf:"quote"`
}

// DefaultPolicies includes every component and quotes none, so unquoted
// parts resolve upper-case the way Snowflake does.
var DefaultPolicies = Policies{
	Include: Policy{Database: true, Schema: true, Identifier: true},
	Quote:   Policy{},
}

// RenderPart returns the canonical form of value for component c. The second
// result is false when the include policy omits the component.
func (p Policies) RenderPart(c ComponentName, value string) (string, bool) {
	if !p.Include.Get(c) {
		return "", false
	}
	if p.Quote.Get(c) {
		return value, true
	}
	return strings.ToUpper(value), true
}

// renderPart is RenderPart without the presence flag.
func (p Policies) renderPart(c ComponentName, value string) string {
	part, _ := p.RenderPart(c, value)
	return part
}

// Path is a fully qualified relation name.
type Path struct {
	Database   string `json:"database,omitempty"`
	Schema     string `json:"schema,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// NewPath renders raw parts through the policies.
func NewPath(database, schema, identifier string, p Policies) Path {
	return Path{
		Database:   p.renderPart(Database, database),
		Schema:     p.renderPart(Schema, schema),
		Identifier: p.renderPart(Identifier, identifier),
	}
}

// Get returns the part for a component.
func (p Path) Get(c ComponentName) string {
	switch c {
	case Database:
		return p.Database
	case Schema:
		return p.Schema
	case Identifier:
		return p.Identifier
	}
	return ""
}

func (p Path) with(c ComponentName, value string) Path {
	switch c {
	case Database:
		p.Database = value
	case Schema:
		p.Schema = value
	case Identifier:
		p.Identifier = value
	}
	return p
}

// AsCaseSensitive returns the path as the warehouse resolves it: included,
// unquoted parts upper-cased, quoted parts kept, excluded parts dropped.
func (p Path) AsCaseSensitive(pol Policies) Path {
	var out Path
	for _, c := range ComponentNames {
		part := p.Get(c)
		if part == "" {
			continue
		}
		if rendered, ok := pol.RenderPart(c, part); ok {
			out = out.with(c, rendered)
		}
	}
	return out
}

// Render returns the dotted SQL reference, quoting components the quote
// policy marks as quoted.
func (p Path) Render(pol Policies) string {
	var parts []string
	for _, c := range ComponentNames {
		part := p.Get(c)
		if part == "" || !pol.Include.Get(c) {
			continue
		}
		if pol.Quote.Get(c) {
			part = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}

// String returns the unquoted dotted path.
func (p Path) String() string {
	var parts []string
	for _, c := range ComponentNames {
		if part := p.Get(c); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".")
}

// ParsePath splits a dotted reference into its components. Double-quoted
// parts may contain dots. One part is an identifier, two are schema and
// identifier.
func ParsePath(ref string) (Path, error) {
	var parts []string
	var cur strings.Builder
	quoted := false

	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c == '"' && quoted && i+1 < len(ref) && ref[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			quoted = !quoted
		case c == '.' && !quoted:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if quoted {
		return Path{}, fmt.Errorf("invalid relation reference %q: unterminated quote", ref)
	}
	parts = append(parts, cur.String())

	for _, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("invalid relation reference %q: empty component", ref)
		}
	}

	switch len(parts) {
	case 1:
		return Path{Identifier: parts[0]}, nil
	case 2:
		return Path{Schema: parts[0], Identifier: parts[1]}, nil
	case 3:
		return Path{Database: parts[0], Schema: parts[1], Identifier: parts[2]}, nil
	}
	return Path{}, fmt.Errorf("invalid relation reference %q: expected at most 3 components, got %d", ref, len(parts))
}
