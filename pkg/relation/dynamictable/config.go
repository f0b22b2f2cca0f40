// Package dynamictable models Snowflake dynamic tables: their normalized
// configuration, the per-property change records and the differencer that
// decides between in-place ALTERs and a full rebuild.
package dynamictable

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// Kind is the materialization name and the key of the observed result set.
const Kind = "dynamic_table"

// RefreshMode is the strategy used to recompute a dynamic table.
type RefreshMode string

// Refresh modes. RefreshAuto lets the warehouse choose.
const (
	RefreshAuto        RefreshMode = "AUTO"
	RefreshFull        RefreshMode = "FULL"
	RefreshIncremental RefreshMode = "INCREMENTAL"
)

// RefreshModes lists the accepted refresh modes.
var RefreshModes = []RefreshMode{RefreshAuto, RefreshFull, RefreshIncremental}

// Initialize controls when the first refresh runs.
type Initialize string

// Initialize values.
const (
	InitializeOnCreate   Initialize = "ON_CREATE"
	InitializeOnSchedule Initialize = "ON_SCHEDULE"
)

// Initializes lists the accepted initialize values.
var Initializes = []Initialize{InitializeOnCreate, InitializeOnSchedule}

// Config is the normalized description of one dynamic table. Values are
// compared by field; a Config is never modified after construction.
type Config struct {
	Name         string      `json:"name"`
	SchemaName   string      `json:"schema_name"`
	DatabaseName string      `json:"database_name"`
	Query        string      `json:"query"`
	TargetLag    string      `json:"target_lag"`
	Warehouse    string      `json:"snowflake_warehouse"`
	RefreshMode  RefreshMode `json:"refresh_mode"`
	// Initialize is write-only and never read back from the catalog.
	Initialize Initialize `json:"initialize,omitempty"`
	Transient  *bool      `json:"transient,omitempty"`
	TimeTravel *int       `json:"time_travel,omitempty"`
	ClusterBy  *string    `json:"cluster_by,omitempty"`
}

// Kind implements relation.Model.
func (c Config) Kind() string { return Kind }

// Path implements relation.Model.
func (c Config) Path() relation.Path {
	return relation.Path{Database: c.DatabaseName, Schema: c.SchemaName, Identifier: c.Name}
}

// declaredOptions mirrors the extension options a model may set.
type declaredOptions struct {
	TargetLag   string `mapstructure:"target_lag"`
	Warehouse   string `mapstructure:"snowflake_warehouse"`
	RefreshMode string `mapstructure:"refresh_mode"`
	Initialize  string `mapstructure:"initialize"`
	Transient   *bool  `mapstructure:"transient"`
	TimeTravel  *int   `mapstructure:"time_travel"`
	ClusterBy   any    `mapstructure:"cluster_by"`
}

// observedRow mirrors the columns of a dynamic_table result row.
type observedRow struct {
	Name         string `mapstructure:"name"`
	SchemaName   string `mapstructure:"schema_name"`
	DatabaseName string `mapstructure:"database_name"`
	Text         string `mapstructure:"text"`
	TargetLag    string `mapstructure:"target_lag"`
	Warehouse    string `mapstructure:"warehouse"`
	RefreshMode  string `mapstructure:"refresh_mode"`
	Transient    *bool  `mapstructure:"transient"`
	TimeTravel   *int   `mapstructure:"time_travel"`
	ClusterBy    string `mapstructure:"cluster_by"`
}

// FromRelationConfig builds the desired dynamic table from declared
// configuration. Unset options keep their defaults.
func FromRelationConfig(cfg relation.Config, pol relation.Policies) (Config, error) {
	name := cfg.Path(pol).String()

	var opts declaredOptions
	if err := decode(cfg.Extra, &opts); err != nil {
		return Config{}, &OptionError{Relation: name, Err: err}
	}

	out := Config{
		Name:         renderPart(pol, relation.Identifier, cfg.Identifier),
		SchemaName:   renderPart(pol, relation.Schema, cfg.Schema),
		DatabaseName: renderPart(pol, relation.Database, cfg.Database),
		Query:        cfg.CompiledCode,
		TargetLag:    opts.TargetLag,
		Warehouse:    opts.Warehouse,
		RefreshMode:  RefreshAuto,
		Initialize:   InitializeOnCreate,
		Transient:    opts.Transient,
		TimeTravel:   opts.TimeTravel,
	}

	if strings.EqualFold(out.TargetLag, "downstream") {
		out.TargetLag = strings.ToUpper(out.TargetLag)
	}

	if opts.RefreshMode != "" {
		mode := RefreshMode(strings.ToUpper(opts.RefreshMode))
		if !validRefreshMode(mode) {
			return Config{}, &OptionError{
				Relation: name,
				Err:      fmt.Errorf("refresh_mode %q must be one of %v", opts.RefreshMode, RefreshModes),
			}
		}
		out.RefreshMode = mode
	}

	if opts.Initialize != "" {
		initialize := Initialize(strings.ToUpper(opts.Initialize))
		if !validInitialize(initialize) {
			return Config{}, &OptionError{
				Relation: name,
				Err:      fmt.Errorf("initialize %q must be one of %v", opts.Initialize, Initializes),
			}
		}
		out.Initialize = initialize
	}

	clusterBy, err := clusterByOption(opts.ClusterBy)
	if err != nil {
		return Config{}, &OptionError{Relation: name, Err: err}
	}
	out.ClusterBy = clusterBy

	return out, nil
}

// FromRelationResults builds the existing dynamic table from the first row
// of the "dynamic_table" result set. Initialize is left unset.
func FromRelationResults(results relation.Results, pol relation.Policies) (Config, error) {
	row, err := results.FirstRow(Kind)
	if err != nil {
		return Config{}, err
	}

	var obs observedRow
	if err := decode(row, &obs); err != nil {
		return Config{}, &OptionError{Relation: "observed " + Kind, Err: err}
	}

	out := Config{
		Name:         renderPart(pol, relation.Identifier, obs.Name),
		SchemaName:   renderPart(pol, relation.Schema, obs.SchemaName),
		DatabaseName: renderPart(pol, relation.Database, obs.DatabaseName),
		Query:        obs.Text,
		TargetLag:    obs.TargetLag,
		Warehouse:    obs.Warehouse,
		RefreshMode:  RefreshMode(obs.RefreshMode),
		Transient:    obs.Transient,
		TimeTravel:   obs.TimeTravel,
	}
	if cols := unwrapClusterBy(obs.ClusterBy); cols != "" {
		out.ClusterBy = &cols
	}
	return out, nil
}

func renderPart(pol relation.Policies, c relation.ComponentName, value string) string {
	part, _ := pol.RenderPart(c, value)
	return part
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func validRefreshMode(m RefreshMode) bool {
	for _, v := range RefreshModes {
		if m == v {
			return true
		}
	}
	return false
}

func validInitialize(i Initialize) bool {
	for _, v := range Initializes {
		if i == v {
			return true
		}
	}
	return false
}

// clusterByOption accepts a column list as a string or a list of names.
func clusterByOption(v any) (*string, error) {
	var cols string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		cols = val
	case []string:
		cols = strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("cluster_by entries must be strings, got %T", p)
			}
			parts = append(parts, s)
		}
		cols = strings.Join(parts, ", ")
	default:
		return nil, fmt.Errorf("cluster_by must be a string or a list of strings, got %T", v)
	}
	cols = strings.TrimSpace(cols)
	if cols == "" {
		return nil, nil
	}
	return &cols, nil
}

// unwrapClusterBy strips the LINEAR(...) wrapper the catalog reports
// clustering keys in.
func unwrapClusterBy(raw string) string {
	s := strings.TrimSpace(raw)
	const wrapper = "LINEAR("
	if len(s) > len(wrapper) && strings.EqualFold(s[:len(wrapper)], wrapper) && strings.HasSuffix(s, ")") {
		s = s[len(wrapper) : len(s)-1]
	}
	return strings.TrimSpace(s)
}
