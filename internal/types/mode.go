// Package types provides type definitions for structured data used throughout the candidate-matcher system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Mode is the platform operating mode for a tenant
type Mode string

// Operating modes
const (
	ModePilot      Mode = "pilot"
	ModeProduction Mode = "production"
	ModeSandbox    Mode = "sandbox"
	ModeFireDrill  Mode = "fire_drill"
)

// ParseMode parses an operating mode name. Empty input resolves to production.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeProduction, nil
	case ModePilot, ModeProduction, ModeSandbox, ModeFireDrill:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected pilot, production, sandbox or fire_drill)", s)
	}
}
