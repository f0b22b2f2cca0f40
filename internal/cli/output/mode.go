// Package output renders command results for terminals, markdown consumers
// and machines.
package output

import "fmt"

// Mode selects how results are rendered.
type Mode string

// Output modes. ModeAuto renders text on a terminal and markdown otherwise.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ParseMode converts a config value to a Mode. An empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText, ModeMarkdown, ModeJSON:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown output mode %q", s)
}
