package judge

import (
	"strconv"
	"strings"

	"appeal-engine/internal/model"
	"appeal-engine/internal/validator"
)

// Mistake explanations.
const (
	MistakeStale         = "User had been banned for a month already..."
	MistakeNoRulesBroken = "No Rules Broken"
	mistakeBrokenPrefix  = "Rules Broken: #"
)

// The day-three record drawn with this avatar is explained by a fixed text.
const (
	specialAvatar  = 39
	specialMistake = "Rules Broken: #1,9"
)

// MistakeText explains why the opposite decision was expected.
func MistakeText(rec model.UserRecord, verdict validator.Verdict) string {
	if verdict.Valid {
		if verdict.Stale {
			return MistakeStale
		}
		return MistakeNoRulesBroken
	}
	if rec.AvatarIndex == specialAvatar {
		return specialMistake
	}
	return FormatBroken(verdict.Broken)
}

// FormatBroken renders ordinals as "Rules Broken: #2, 4", or "Rules Broken:"
// when there are none.
func FormatBroken(ordinals []int) string {
	if len(ordinals) == 0 {
		return strings.TrimSuffix(mistakeBrokenPrefix, " #")
	}
	parts := make([]string, len(ordinals))
	for i, n := range ordinals {
		parts[i] = strconv.Itoa(n)
	}
	return mistakeBrokenPrefix + strings.Join(parts, ", ")
}
