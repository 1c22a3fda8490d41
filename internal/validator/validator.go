// Package validator judges user records against a day's rules.
package validator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/model"
)

// Predicate reports whether a record obeys a rule. False means a violation.
type Predicate func(model.UserRecord) bool

// Rule is a numbered, described predicate.
type Rule struct {
	Ordinal     int // 0 when the description has no "N." prefix
	Description string
	Predicate   Predicate
}

var ordinalPattern = regexp.MustCompile(`^([0-9]*)\.`)

// ParseOrdinal extracts the leading "N." number from a rule description.
func ParseOrdinal(description string) (int, bool) {
	m := ordinalPattern.FindStringSubmatch(description)
	if m == nil || m[1] == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validator holds the rules of one day, keyed by description and kept in
// insertion order.
type Validator struct {
	rules []Rule
	index map[string]int
}

// New creates an empty validator.
func New() *Validator {
	return &Validator{index: make(map[string]int)}
}

// AddRule registers a rule. A rule with the same description is replaced
// in place and a warning is logged; replaced reports whether that happened.
func (v *Validator) AddRule(description string, predicate Predicate) (replaced bool) {
	ordinal, _ := ParseOrdinal(description)
	rule := Rule{Ordinal: ordinal, Description: description, Predicate: predicate}

	if i, ok := v.index[description]; ok {
		log.Warn().Str("rule", description).Msg("Duplicate rule description, overwriting")
		v.rules[i] = rule
		return true
	}
	v.index[description] = len(v.rules)
	v.rules = append(v.rules, rule)
	return false
}

// Remove deletes the rule with the given description.
func (v *Validator) Remove(description string) bool {
	i, ok := v.index[description]
	if !ok {
		return false
	}
	v.rules = append(v.rules[:i], v.rules[i+1:]...)
	delete(v.index, description)
	for j := i; j < len(v.rules); j++ {
		v.index[v.rules[j].Description] = j
	}
	return true
}

// Len returns the number of rules.
func (v *Validator) Len() int {
	return len(v.rules)
}

// Rules returns a copy of the rules in insertion order.
func (v *Validator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

// RuleText joins the rule descriptions for display.
func (v *Validator) RuleText() string {
	descriptions := make([]string, len(v.rules))
	for i, r := range v.rules {
		descriptions[i] = r.Description
	}
	return strings.Join(descriptions, "\n\n")
}

// Validate returns the ground truth for a record: true means the ban should
// be overturned. A stale ban always passes; otherwise every rule must hold.
func (v *Validator) Validate(record model.UserRecord, today string) bool {
	if v.Stale(record, today) {
		return true
	}
	for _, r := range v.rules {
		if !r.Predicate(record) {
			return false
		}
	}
	return true
}

// Stale applies the ban-duration override. Unparseable dates are logged and
// treated as a recent ban.
func (v *Validator) Stale(record model.UserRecord, today string) bool {
	stale, err := IsStale(record.BanDate, today)
	if err != nil {
		log.Error().Err(err).
			Str("user", record.Name).
			Str("ban_date", record.BanDate).
			Str("today", today).
			Msg("Ban date check failed, treating ban as recent")
		return false
	}
	return stale
}

// BrokenRules evaluates every rule, ignoring the ban-duration override, and
// returns the ordinals of those that fail in insertion order. Rules without
// a numeric prefix are not reported.
func (v *Validator) BrokenRules(record model.UserRecord, today string) []int {
	return v.evaluateRules(record).broken
}

// Verdict is the full evaluation of one record.
type Verdict struct {
	Valid  bool  // ground truth: true means the ban should be overturned
	Stale  bool  // the ban-duration override applied
	Broken []int // ordinals of failing rules, regardless of Stale
}

// Evaluate runs every predicate once and reports the ground truth together
// with the override flag and the broken rule ordinals.
func (v *Validator) Evaluate(record model.UserRecord, today string) Verdict {
	stale := v.Stale(record, today)
	res := v.evaluateRules(record)
	return Verdict{
		Valid:  stale || res.allPass,
		Stale:  stale,
		Broken: res.broken,
	}
}

type ruleResult struct {
	allPass bool
	broken  []int
}

func (v *Validator) evaluateRules(record model.UserRecord) ruleResult {
	res := ruleResult{allPass: true, broken: make([]int, 0)}
	for _, r := range v.rules {
		if r.Predicate(record) {
			continue
		}
		res.allPass = false
		if r.Ordinal == 0 {
			log.Debug().Str("rule", r.Description).Msg("Broken rule has no ordinal")
			continue
		}
		res.broken = append(res.broken, r.Ordinal)
	}
	return res
}
