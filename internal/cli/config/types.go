// Package config provides configuration management for the snowdrift CLI.
package config

import (
	"github.com/leapstack-labs/snowdrift/pkg/relation"
)

// Default configuration values.
const (
	DefaultStateFile   = ".snowdrift/state.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultConcurrency = 4
)

// Config holds all CLI configuration options.
type Config struct {
	Observed      string          `koanf:"observed"`
	StatePath     string          `koanf:"state_path"`
	Record        bool            `koanf:"record"`
	Verbose       bool            `koanf:"verbose"`
	OutputFormat  string          `koanf:"output"`
	Concurrency   int             `koanf:"concurrency"`
	IncludePolicy relation.Policy `koanf:"include_policy"`
	QuotePolicy   relation.Policy `koanf:"quote_policy"`
}

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		StatePath:     DefaultStateFile,
		OutputFormat:  DefaultOutput,
		Concurrency:   DefaultConcurrency,
		IncludePolicy: relation.DefaultPolicies.Include,
		QuotePolicy:   relation.DefaultPolicies.Quote,
	}
}

// Policies returns the identifier policies relation names are rendered with.
func (c *Config) Policies() relation.Policies {
	return relation.Policies{Include: c.IncludePolicy, Quote: c.QuotePolicy}
}
