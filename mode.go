package excerpt

import "strings"

// ContextMode selects a token budget preset for excerpts.
type ContextMode string

// Context mode presets.
const (
	ModeEconomic ContextMode = "economic"
	ModeStandard ContextMode = "standard"
	ModePrecise  ContextMode = "precise"
)

var modeBudgets = map[ContextMode]int{
	ModeEconomic: 2000,
	ModeStandard: 6000,
	ModePrecise:  12000,
}

// ParseContextMode returns the mode named s. Unknown names map to
// ModeStandard.
func ParseContextMode(s string) ContextMode {
	m := ContextMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeBudgets[m]; ok {
		return m
	}
	return ModeStandard
}

// MaxTokens returns the token budget of the mode.
func (m ContextMode) MaxTokens() int {
	if n, ok := modeBudgets[m]; ok {
		return n
	}
	return modeBudgets[ModeStandard]
}
