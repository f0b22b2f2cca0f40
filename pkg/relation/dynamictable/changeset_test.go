package dynamictable

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

func TestChangeRules(t *testing.T) {
	for _, p := range Properties {
		t.Run(string(p), func(t *testing.T) {
			alterable := p == PropertyTargetLag || p == PropertyWarehouse
			assert.Equal(t, !alterable, p.RequiresFullRefresh())
			if alterable {
				assert.Equal(t, relation.ActionAlter, p.Action())
			} else {
				assert.Equal(t, relation.ActionCreate, p.Action())
			}
		})
	}
}

func TestChangeset_Derived(t *testing.T) {
	var empty *Changeset
	assert.False(t, empty.HasChanges())
	assert.False(t, empty.RequiresFullRefresh())
	assert.Empty(t, empty.Changes())

	cs := &Changeset{}
	assert.False(t, cs.HasChanges())

	cs.set(WarehouseChange("WH"))
	cs.set(TargetLagChange("DOWNSTREAM"))
	assert.True(t, cs.HasChanges())
	assert.False(t, cs.RequiresFullRefresh())

	cs.set(TransientChange(nil))
	assert.True(t, cs.RequiresFullRefresh())
	assert.Nil(t, cs.Transient.Context())

	var order []string
	for _, ch := range cs.Changes() {
		order = append(order, ch.Property())
	}
	assert.Equal(t, []string{"target_lag", "snowflake_warehouse", "transient"}, order)
	assert.Same(t, cs.Warehouse, cs.Get(PropertyWarehouse))
}

func TestChangeset_MarshalJSON(t *testing.T) {
	cs := &Changeset{}
	cs.set(TimeTravelChange(ptr(7)))
	cs.set(TargetLagChange("1 hour"))

	data, err := json.Marshal(cs)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"has_changes": true,
		"requires_full_refresh": true,
		"changes": [
			{"property": "target_lag", "action": "alter", "context": "1 hour", "requires_full_refresh": false},
			{"property": "time_travel", "action": "create", "context": 7, "requires_full_refresh": true}
		]
	}`, string(data))
}
