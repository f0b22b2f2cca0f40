package dynamictable

import (
	"fmt"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

func init() {
	relation.Register(Kind, relation.Factory{
		FromConfig: func(cfg relation.Config, pol relation.Policies) (relation.Model, error) {
			c, err := FromRelationConfig(cfg, pol)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		FromResults: func(results relation.Results, pol relation.Policies) (relation.Model, error) {
			c, err := FromRelationResults(results, pol)
			if err != nil {
				return nil, err
			}
			return c, nil
		},
		Diff: diffModels,
	})
}

func diffModels(existing, desired relation.Model) (relation.Changeset, error) {
	e, ok := existing.(Config)
	if !ok {
		return nil, fmt.Errorf("expected existing %s model, got %T", Kind, existing)
	}
	d, ok := desired.(Config)
	if !ok {
		return nil, fmt.Errorf("expected desired %s model, got %T", Kind, desired)
	}

	cs, err := Diff(e, d)
	if err != nil || cs == nil {
		return nil, err
	}
	return cs, nil
}
