// Package main provides the snowdrift CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/snowdrift/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
