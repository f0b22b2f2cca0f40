// Package state records the changesets computed for each relation so that
// drift can be reviewed over time.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// ErrPlanNotFound is returned when a relation has no recorded plan.
var ErrPlanNotFound = errors.New("plan not found")

// Plan is one recorded comparison result.
type Plan struct {
	ID                  string          `json:"id"`
	Relation            string          `json:"relation"`
	Kind                string          `json:"kind"`
	HasChanges          bool            `json:"has_changes"`
	RequiresFullRefresh bool            `json:"requires_full_refresh"`
	Changes             json.RawMessage `json:"changes"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Store persists plans.
type Store interface {
	RecordPlan(ctx context.Context, plan *Plan) error
	ListPlans(ctx context.Context, relation string, limit int) ([]*Plan, error)
	LatestPlan(ctx context.Context, relation string) (*Plan, error)
	Close() error
}

// NewPlan builds a plan for path from a changeset. A nil changeset records
// that the relation matched its declaration.
func NewPlan(path relation.Path, kind string, cs relation.Changeset) (*Plan, error) {
	plan := &Plan{
		Relation: path.String(),
		Kind:     kind,
		Changes:  json.RawMessage("[]"),
	}
	if cs == nil {
		return plan, nil
	}

	plan.HasChanges = cs.HasChanges()
	plan.RequiresFullRefresh = cs.RequiresFullRefresh()
	if changes := cs.Changes(); len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode changes for %s: %w", plan.Relation, err)
		}
		plan.Changes = data
	}
	return plan, nil
}
