package ruleset

import (
	"regexp"

	"appeal-engine/internal/model"
	"appeal-engine/internal/validator"
)

// Patterns shared by several days.
var (
	allCaps      = regexp.MustCompile(`^[^a-z]*$`)
	capital      = regexp.MustCompile(`[A-Z]`)
	threeDigits  = regexp.MustCompile(`[0-9]{3}`)
	link         = regexp.MustCompile(`https?://`)
	catReference = regexp.MustCompile(`(?im)(cat)|(meow)|(purr)|(nyah)|(claw)`)
	emoticon     = regexp.MustCompile(`(?::)|(?:XD)|(?:;)`)
	question     = regexp.MustCompile(`\?`)
)

const (
	censoredSwear = `\*`
	dogAvatar     = 35
)

const unbanRule = "pls unban ALL users that have been banned for over a month!"

// alwaysPasses backs the rule that only restates the ban-duration override.
func alwaysPasses(model.UserRecord) bool { return true }

func noSwearing(r model.UserRecord) bool {
	return validator.MessagesRepeatPattern(r, censoredSwear, 2)
}

func appealExists(r model.UserRecord) bool {
	return validator.StringLength(r.AppealMessage, validator.GT, 0)
}

func noPersonalInfo(r model.UserRecord) bool {
	for _, msg := range r.Messages {
		if validator.StringMatches(msg, threeDigits) {
			return false
		}
	}
	return true
}
