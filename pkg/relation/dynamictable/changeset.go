package dynamictable

import (
	"encoding/json"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// Changeset holds at most one change per property. A nil *Changeset means
// the dynamic table already matches its declaration.
type Changeset struct {
	TargetLag   *Change
	Warehouse   *Change
	RefreshMode *Change
	Transient   *Change
	Query       *Change
	TimeTravel  *Change
	ClusterBy   *Change
}

var _ relation.Changeset = (*Changeset)(nil)

// Get returns the change recorded for p, or nil.
func (c *Changeset) Get(p Property) *Change {
	if c == nil {
		return nil
	}
	switch p {
	case PropertyTargetLag:
		return c.TargetLag
	case PropertyWarehouse:
		return c.Warehouse
	case PropertyRefreshMode:
		return c.RefreshMode
	case PropertyTransient:
		return c.Transient
	case PropertyQuery:
		return c.Query
	case PropertyTimeTravel:
		return c.TimeTravel
	case PropertyClusterBy:
		return c.ClusterBy
	}
	return nil
}

func (c *Changeset) set(ch *Change) {
	switch ch.property {
	case PropertyTargetLag:
		c.TargetLag = ch
	case PropertyWarehouse:
		c.Warehouse = ch
	case PropertyRefreshMode:
		c.RefreshMode = ch
	case PropertyTransient:
		c.Transient = ch
	case PropertyQuery:
		c.Query = ch
	case PropertyTimeTravel:
		c.TimeTravel = ch
	case PropertyClusterBy:
		c.ClusterBy = ch
	}
}

// Changes returns the recorded changes in property order.
func (c *Changeset) Changes() []relation.ConfigChange {
	var out []relation.ConfigChange
	for _, p := range Properties {
		if ch := c.Get(p); ch != nil {
			out = append(out, ch)
		}
	}
	return out
}

// HasChanges reports whether any change is recorded.
func (c *Changeset) HasChanges() bool {
	for _, p := range Properties {
		if c.Get(p) != nil {
			return true
		}
	}
	return false
}

// RequiresFullRefresh reports whether any recorded change forces a rebuild.
func (c *Changeset) RequiresFullRefresh() bool {
	for _, p := range Properties {
		if ch := c.Get(p); ch != nil && ch.RequiresFullRefresh() {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the changeset with its derived flags.
func (c *Changeset) MarshalJSON() ([]byte, error) {
	changes := c.Changes()
	if changes == nil {
		changes = []relation.ConfigChange{}
	}
	return json.Marshal(struct {
		HasChanges          bool                    `json:"has_changes"`
		RequiresFullRefresh bool                    `json:"requires_full_refresh"`
		Changes             []relation.ConfigChange `json:"changes"`
	}{c.HasChanges(), c.RequiresFullRefresh(), changes})
}
