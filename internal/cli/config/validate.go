package config

import (
	"fmt"
	"slices"
)

var outputFormats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(outputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (expected one of %v)", c.OutputFormat, outputFormats)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Record && c.StatePath == "" {
		return fmt.Errorf("state_path is required when record is enabled")
	}
	if !c.IncludePolicy.Identifier {
		return fmt.Errorf("include_policy.identifier cannot be disabled")
	}
	return nil
}
