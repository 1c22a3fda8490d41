package ruleset

import (
	"appeal-engine/internal/model"
	"appeal-engine/internal/validator"
)

// Day3 is the strictest day. Rule 9 flags records written only in a
// placeholder script (dots, dashes and slashes).
type Day3 struct{}

func (Day3) Day() int { return 3 }
func (Day3) Name() string { return "day3" }

func (Day3) AddRules(v *validator.Validator) {
	v.AddRule("1. NO discussion or mention of cats or cat-related references in any semblance!", noCats)
	v.AddRule("2. ban appeal MUST exist!", appealExists)
	v.AddRule("3. NO more than 3 messages!", func(r model.UserRecord) bool {
		return validator.MessageCount(r, validator.LE, 3)
	})
	v.AddRule("4. NO more than 5 capital letters per message!", func(r model.UserRecord) bool {
		return validator.MatchesPerMessage(r, capital, validator.LE, 5)
	})
	v.AddRule("5. do NOT share personal information!", noPersonalInfo)
	v.AddRule("6. NO links in user bios or chat!", func(r model.UserRecord) bool {
		return !validator.StringMatches(r.Bio, link) && validator.NoMessageMatches(r, link)
	})
	v.AddRule("7. NO dog avatars!", func(r model.UserRecord) bool {
		return r.AvatarIndex != dogAvatar
	})
	v.AddRule("8. NO emoticons in chat messages!", func(r model.UserRecord) bool {
		return validator.NoMessageMatches(r, emoticon)
	})
	v.AddRule("9. rules must apply in EVERY LANGUAGE!", placeholderScript)
	v.AddRule("10. do NOT ask the mouser questions in chat!", func(r model.UserRecord) bool {
		return validator.NoMessageMatches(r, question)
	})
	v.AddRule("11. "+unbanRule, alwaysPasses)
}

// noCats checks every text field of the record.
func noCats(r model.UserRecord) bool {
	return validator.NoMessageMatches(r, catReference) &&
		!validator.StringMatches(r.Bio, catReference) &&
		!validator.StringMatches(r.Name, catReference) &&
		!validator.StringMatches(r.AppealMessage, catReference)
}

func placeholderScript(r model.UserRecord) bool {
	runes := validator.DistinctRunes(r)
	if len(runes) > 5 {
		return true
	}
	for _, c := range []rune{'.', '-', '/'} {
		if _, ok := runes[c]; !ok {
			return true
		}
	}
	return false
}
