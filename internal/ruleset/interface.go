// Package ruleset defines the per-day rule collections and the registry
// that maps a day number to its rules.
package ruleset

import "appeal-engine/internal/validator"

// Ruleset installs a day's rules into a validator.
type Ruleset interface {
	// Day returns the day number this ruleset applies to. Zero means any.
	Day() int

	// Name returns a short display name, e.g. "day1".
	Name() string

	// AddRules registers every rule of the day, in display order.
	AddRules(v *validator.Validator)
}

// Apply builds a fresh validator populated with rs.
func Apply(rs Ruleset) *validator.Validator {
	v := validator.New()
	rs.AddRules(v)
	return v
}
