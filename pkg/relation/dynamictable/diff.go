package dynamictable

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
	"github.com/leapstack-labs/snowdrift/pkg/sqlnorm"
)

// Differ compares an existing dynamic table against its declaration.
// A Differ holds no state between calls and is safe for concurrent use.
type Differ struct {
	normalizer sqlnorm.Normalizer
	logger     *slog.Logger
}

// DifferOption configures a Differ.
type DifferOption func(*Differ)

// WithNormalizer sets the SQL normalizer used for the query and cluster_by
// comparisons.
func WithNormalizer(n sqlnorm.Normalizer) DifferOption {
	return func(d *Differ) {
		if n != nil {
			d.normalizer = n
		}
	}
}

// WithLogger sets the logger detected changes are reported to.
func WithLogger(logger *slog.Logger) DifferOption {
	return func(d *Differ) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDiffer creates a Differ using sqlnorm.Default and a discard logger
// unless overridden.
func NewDiffer(opts ...DifferOption) *Differ {
	d := &Differ{
		normalizer: sqlnorm.Default,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diff checks every property of desired against existing and returns the
// resulting changeset, or nil when nothing differs. An error aborts the
// comparison and no changeset is returned.
func (d *Differ) Diff(existing, desired Config) (*Changeset, error) {
	cs := &Changeset{}

	if !strings.EqualFold(desired.TargetLag, existing.TargetLag) {
		cs.set(TargetLagChange(desired.TargetLag))
	}

	if !strings.EqualFold(desired.Warehouse, existing.Warehouse) {
		cs.set(WarehouseChange(desired.Warehouse))
	}

	// AUTO on the declared side never forces a mode change.
	if !strings.EqualFold(string(desired.RefreshMode), string(existing.RefreshMode)) &&
		!strings.EqualFold(string(desired.RefreshMode), string(RefreshAuto)) {
		cs.set(RefreshModeChange(desired.RefreshMode))
	}

	if !equalPtr(desired.Transient, existing.Transient) {
		cs.set(TransientChange(desired.Transient))
	}

	queryChanged, err := d.queryChanged(existing.Query, desired.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to compare query of %s: %w", desired.Path(), err)
	}
	if queryChanged {
		cs.set(QueryChange(desired.Query))
	}

	if desired.TimeTravel != nil && !equalPtr(desired.TimeTravel, existing.TimeTravel) {
		cs.set(TimeTravelChange(desired.TimeTravel))
	}

	if desired.ClusterBy != nil {
		clusterChanged, err := d.clusterByChanged(existing.ClusterBy, *desired.ClusterBy)
		if err != nil {
			return nil, fmt.Errorf("failed to compare cluster_by of %s: %w", desired.Path(), err)
		}
		if clusterChanged {
			cs.set(ClusterByChange(desired.ClusterBy))
		}
	}

	if !cs.HasChanges() {
		return nil, nil
	}

	for _, ch := range cs.Changes() {
		d.logger.Debug("dynamic table property changed",
			slog.String("relation", desired.Path().String()),
			slog.String("property", ch.Property()),
			slog.String("action", string(ch.Action())),
			slog.Bool("requires_full_refresh", ch.RequiresFullRefresh()))
	}
	return cs, nil
}

// queryChanged isolates the statement inside the stored definition and
// compares it with the declared query after normalization.
func (d *Differ) queryChanged(existingDefinition, desiredQuery string) (bool, error) {
	inner, err := sqlnorm.ExtractInnerStatement(existingDefinition)
	if err != nil {
		return false, err
	}
	same, err := sqlnorm.Equivalent(d.normalizer, inner, desiredQuery)
	if err != nil {
		return false, err
	}
	return !same, nil
}

func (d *Differ) clusterByChanged(existing *string, desired string) (bool, error) {
	if existing == nil {
		return true, nil
	}
	same, err := sqlnorm.Equivalent(d.normalizer, *existing, desired)
	if err != nil {
		return false, err
	}
	return !same, nil
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

var defaultDiffer = NewDiffer()

// Diff compares existing against desired with the default Differ.
func Diff(existing, desired Config) (*Changeset, error) {
	return defaultDiffer.Diff(existing, desired)
}

// ConfigChangeset builds both sides from their sources and diffs them.
func ConfigChangeset(results relation.Results, cfg relation.Config, pol relation.Policies) (*Changeset, error) {
	existing, err := FromRelationResults(results, pol)
	if err != nil {
		return nil, err
	}
	desired, err := FromRelationConfig(cfg, pol)
	if err != nil {
		return nil, err
	}
	return Diff(existing, desired)
}
