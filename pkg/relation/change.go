package relation

// ChangeAction is the kind of operation a change needs.
type ChangeAction string

// Change actions. ActionCreate means the object must be recreated.
const (
	ActionAlter  ChangeAction = "alter"
	ActionCreate ChangeAction = "create"
)

// ConfigChange is a single detected property difference.
type ConfigChange interface {
	// Property names the changed property.
	Property() string
	// Action is the operation needed to apply the change.
	Action() ChangeAction
	// Context is the desired value, forwarded untouched to the executor.
	Context() any
	// RequiresFullRefresh reports whether applying the change forces a rebuild.
	RequiresFullRefresh() bool
}

// Changeset is the set of changes found by one comparison.
type Changeset interface {
	HasChanges() bool
	RequiresFullRefresh() bool
	// Changes returns the present changes in a fixed property order.
	Changes() []ConfigChange
}
