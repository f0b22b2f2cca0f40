package dynamictable

import (
	"encoding/json"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// Property names a mutable dynamic table property.
type Property string

// Mutable properties, in the order changes are reported.
const (
	PropertyTargetLag   Property = "target_lag"
	PropertyWarehouse   Property = "snowflake_warehouse"
	PropertyRefreshMode Property = "refresh_mode"
	PropertyTransient   Property = "transient"
	PropertyQuery       Property = "query"
	PropertyTimeTravel  Property = "time_travel"
	PropertyClusterBy   Property = "cluster_by"
)

// Properties lists every mutable property in report order.
var Properties = []Property{
	PropertyTargetLag,
	PropertyWarehouse,
	PropertyRefreshMode,
	PropertyTransient,
	PropertyQuery,
	PropertyTimeTravel,
	PropertyClusterBy,
}

type changeRule struct {
	action      relation.ChangeAction
	fullRefresh bool
}

// Only target lag and warehouse can be altered in place.
var changeRules = map[Property]changeRule{
	PropertyTargetLag:   {action: relation.ActionAlter},
	PropertyWarehouse:   {action: relation.ActionAlter},
	PropertyRefreshMode: {action: relation.ActionCreate, fullRefresh: true},
	PropertyTransient:   {action: relation.ActionCreate, fullRefresh: true},
	PropertyQuery:       {action: relation.ActionCreate, fullRefresh: true},
	PropertyTimeTravel:  {action: relation.ActionCreate, fullRefresh: true},
	PropertyClusterBy:   {action: relation.ActionCreate, fullRefresh: true},
}

// Action returns the operation a change to p needs.
func (p Property) Action() relation.ChangeAction {
	return changeRules[p].action
}

// RequiresFullRefresh reports whether a change to p forces a rebuild.
func (p Property) RequiresFullRefresh() bool {
	return changeRules[p].fullRefresh
}

// Change records one differing property and its desired value.
type Change struct {
	property Property
	context  any
}

var _ relation.ConfigChange = (*Change)(nil)

// TargetLagChange records a new target lag.
func TargetLagChange(lag string) *Change {
	return &Change{property: PropertyTargetLag, context: lag}
}

// WarehouseChange records a new refresh warehouse.
func WarehouseChange(warehouse string) *Change {
	return &Change{property: PropertyWarehouse, context: warehouse}
}

// RefreshModeChange records a new refresh mode.
func RefreshModeChange(mode RefreshMode) *Change {
	return &Change{property: PropertyRefreshMode, context: mode}
}

// TransientChange records a new transient flag. A nil flag means unset.
func TransientChange(transient *bool) *Change {
	return &Change{property: PropertyTransient, context: deref(transient)}
}

// QueryChange records a new defining query.
func QueryChange(query string) *Change {
	return &Change{property: PropertyQuery, context: query}
}

// TimeTravelChange records a new retention period in days.
func TimeTravelChange(days *int) *Change {
	return &Change{property: PropertyTimeTravel, context: deref(days)}
}

// ClusterByChange records a new clustering column list.
func ClusterByChange(columns *string) *Change {
	return &Change{property: PropertyClusterBy, context: deref(columns)}
}

func deref[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

// Kind returns the changed property.
func (c *Change) Kind() Property { return c.property }

// Property implements relation.ConfigChange.
func (c *Change) Property() string { return string(c.property) }

// Action implements relation.ConfigChange.
func (c *Change) Action() relation.ChangeAction { return c.property.Action() }

// Context returns the desired value.
func (c *Change) Context() any { return c.context }

// RequiresFullRefresh implements relation.ConfigChange.
func (c *Change) RequiresFullRefresh() bool { return c.property.RequiresFullRefresh() }

// MarshalJSON encodes the change for plan output and history.
func (c *Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Property            Property              `json:"property"`
		Action              relation.ChangeAction `json:"action"`
		Context             any                   `json:"context"`
		RequiresFullRefresh bool                  `json:"requires_full_refresh"`
	}{c.property, c.Action(), c.context, c.RequiresFullRefresh()})
}
