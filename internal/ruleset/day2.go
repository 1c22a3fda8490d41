package ruleset

import (
	"appeal-engine/internal/model"
	"appeal-engine/internal/validator"
)

// Day2 keeps the swearing and appeal rules and adds message shape, personal
// information and bio links.
type Day2 struct{}

func (Day2) Day() int { return 2 }
func (Day2) Name() string { return "day2" }

func (Day2) AddRules(v *validator.Validator) {
	v.AddRule("1. NO swearing allowed in chat!", noSwearing)
	v.AddRule("2. ban appeal MUST exist!", appealExists)
	v.AddRule("3. MINIMUM 3 words in each chat message!", func(r model.UserRecord) bool {
		return validator.WordsPerMessage(r, validator.GE, 3)
	})
	v.AddRule("4. no full chat logs in ENTIRELY lowercase!", func(r model.UserRecord) bool {
		return validator.AnyMessageMatches(r, capital)
	})
	v.AddRule("5. do NOT share personal information!", noPersonalInfo)
	v.AddRule("6. NO links in user bios!", func(r model.UserRecord) bool {
		return !validator.StringMatches(r.Bio, link)
	})
	v.AddRule("7. "+unbanRule, alwaysPasses)
}
