package ruleset

import (
	"appeal-engine/internal/model"
	"appeal-engine/internal/validator"
)

// Day1 is the opening ruleset: swearing, empty appeals, long messages and
// shouting.
type Day1 struct{}

func (Day1) Day() int { return 1 }
func (Day1) Name() string { return "day1" }

func (Day1) AddRules(v *validator.Validator) {
	v.AddRule("1. NO swearing allowed in chat!", noSwearing)
	v.AddRule("2. ban appeal MUST exist!", appealExists)
	v.AddRule("3. MAXIMUM 15 words in each chat message!", func(r model.UserRecord) bool {
		return validator.WordsPerMessage(r, validator.LE, 15)
	})
	v.AddRule("4. no individual messages sent in ALL CAPS!", func(r model.UserRecord) bool {
		return validator.NoMessageMatches(r, allCaps)
	})
	v.AddRule("5. "+unbanRule, alwaysPasses)
}
