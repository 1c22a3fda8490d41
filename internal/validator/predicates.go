package validator

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog/log"

	"appeal-engine/internal/model"
)

// Comparison is a threshold operator used by the length and count checks.
type Comparison string

// Supported comparisons.
const (
	LE Comparison = "<="
	LT Comparison = "<"
	GE Comparison = ">="
	GT Comparison = ">"
	EQ Comparison = "=="
)

// Compare applies op to value and threshold. Unknown operators pass.
func Compare(op Comparison, value, threshold int) bool {
	switch op {
	case LE:
		return value <= threshold
	case LT:
		return value < threshold
	case GE:
		return value >= threshold
	case GT:
		return value > threshold
	case EQ:
		return value == threshold
	default:
		return true
	}
}

// NoMessageMatches passes when no chat message matches re.
func NoMessageMatches(r model.UserRecord, re *regexp.Regexp) bool {
	return !AnyMessageMatches(r, re)
}

// AnyMessageMatches reports whether at least one chat message matches re.
func AnyMessageMatches(r model.UserRecord, re *regexp.Regexp) bool {
	for _, msg := range r.Messages {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

// StringMatches reports whether the lower-cased s matches re.
func StringMatches(s string, re *regexp.Regexp) bool {
	return re.MatchString(strings.ToLower(s))
}

// MessageLengths passes when every message length (in characters) satisfies op.
func MessageLengths(r model.UserRecord, op Comparison, length int) bool {
	for _, msg := range r.Messages {
		if !Compare(op, utf8.RuneCountInString(msg), length) {
			return false
		}
	}
	return true
}

// WordsPerMessage passes when every message's space-separated word count
// satisfies op.
func WordsPerMessage(r model.UserRecord, op Comparison, words int) bool {
	for _, msg := range r.Messages {
		if !Compare(op, len(strings.Split(msg, " ")), words) {
			return false
		}
	}
	return true
}

// MessageCount passes when the number of messages satisfies op.
func MessageCount(r model.UserRecord, op Comparison, n int) bool {
	return Compare(op, len(r.Messages), n)
}

// StringLength passes when the character length of s satisfies op.
func StringLength(s string, op Comparison, length int) bool {
	return Compare(op, utf8.RuneCountInString(s), length)
}

// MatchesPerMessage passes when the number of re matches in every message
// satisfies op.
func MatchesPerMessage(r model.UserRecord, re *regexp.Regexp, op Comparison, n int) bool {
	for _, msg := range r.Messages {
		if !Compare(op, len(re.FindAllStringIndex(msg, -1)), n) {
			return false
		}
	}
	return true
}

// DistinctRunes collects every character used in the messages, bio and appeal.
func DistinctRunes(r model.UserRecord) map[rune]struct{} {
	set := make(map[rune]struct{})
	add := func(s string) {
		for _, c := range s {
			set[c] = struct{}{}
		}
	}
	for _, msg := range r.Messages {
		add(msg)
	}
	add(r.Bio)
	add(r.AppealMessage)
	return set
}

// Repeat detection needs backreferences, which RE2 does not support.
var repeatCache sync.Map // map[string]*regexp2.Regexp

func repeatPattern(fragment string, reps int) (*regexp2.Regexp, error) {
	if reps < 1 {
		reps = 1
	}
	expr := fmt.Sprintf(`(%s)\1{%d,}`, fragment, reps-1)
	if cached, ok := repeatCache.Load(expr); ok {
		return cached.(*regexp2.Regexp), nil
	}
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile repeat pattern %q: %w", expr, err)
	}
	actual, _ := repeatCache.LoadOrStore(expr, re)
	return actual.(*regexp2.Regexp), nil
}

// RepeatsPattern reports whether fragment (a regular expression) matches
// the same text at least reps times in a row in the lower-cased s.
func RepeatsPattern(s, fragment string, reps int) bool {
	re, err := repeatPattern(fragment, reps)
	if err != nil {
		log.Error().Err(err).Msg("Invalid repeat pattern")
		return false
	}
	ok, err := re.MatchString(strings.ToLower(s))
	if err != nil {
		log.Error().Err(err).Str("pattern", fragment).Msg("Repeat match failed")
		return false
	}
	return ok
}

// RepeatsRun reports whether any single character appears at least reps
// times consecutively in the lower-cased s.
func RepeatsRun(s string, reps int) bool {
	return RepeatsPattern(s, ".", reps)
}

// MessagesRepeatPattern passes when no message repeats fragment reps times in a row.
func MessagesRepeatPattern(r model.UserRecord, fragment string, reps int) bool {
	for _, msg := range r.Messages {
		if RepeatsPattern(msg, fragment, reps) {
			return false
		}
	}
	return true
}

// MessagesRepeatRun passes when no message has a character repeated reps times in a row.
func MessagesRepeatRun(r model.UserRecord, reps int) bool {
	return MessagesRepeatPattern(r, ".", reps)
}
