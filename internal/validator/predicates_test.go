package validator

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"appeal-engine/internal/model"
)

func withMessages(msgs ...string) model.UserRecord {
	return model.UserRecord{Messages: msgs}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op        Comparison
		value     int
		threshold int
		expected  bool
	}{
		{LE, 3, 3, true},
		{LE, 4, 3, false},
		{LT, 3, 3, false},
		{LT, 2, 3, true},
		{GE, 3, 3, true},
		{GE, 2, 3, false},
		{GT, 3, 3, false},
		{GT, 4, 3, true},
		{EQ, 3, 3, true},
		{EQ, 2, 3, false},
		{Comparison("!="), 2, 3, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.op, tt.value, tt.threshold))
		})
	}
}

func TestMessageMatching(t *testing.T) {
	question := regexp.MustCompile(`\?`)
	r := withMessages("hello", "why?")

	assert.True(t, AnyMessageMatches(r, question))
	assert.False(t, NoMessageMatches(r, question))
	assert.True(t, NoMessageMatches(withMessages("hi", "bye"), question))
	assert.True(t, NoMessageMatches(withMessages(), question))
}

func TestStringMatchesLowercases(t *testing.T) {
	link := regexp.MustCompile(`https?://`)
	assert.True(t, StringMatches("Visit HTTPS://example.com", link))
	assert.False(t, StringMatches("no links", link))
}

func TestWordsPerMessage(t *testing.T) {
	r := withMessages("one two three", "four five")
	assert.True(t, WordsPerMessage(r, LE, 3))
	assert.False(t, WordsPerMessage(r, GE, 3))
	// An empty message still counts as one word.
	assert.True(t, WordsPerMessage(withMessages(""), EQ, 1))
}

func TestMessageLengthsAndCount(t *testing.T) {
	r := withMessages("héllo", "abc")
	assert.True(t, MessageLengths(r, LE, 5))
	assert.False(t, MessageLengths(r, LT, 5))
	assert.True(t, MessageCount(r, EQ, 2))
	assert.False(t, MessageCount(r, GT, 2))
	assert.True(t, StringLength("appeal", GT, 0))
	assert.False(t, StringLength("", GT, 0))
}

func TestMatchesPerMessage(t *testing.T) {
	capitals := regexp.MustCompile(`[A-Z]`)
	assert.True(t, MatchesPerMessage(withMessages("ABCDE fine"), capitals, LE, 5))
	assert.False(t, MatchesPerMessage(withMessages("ok", "ABCDEF"), capitals, LE, 5))
}

func TestRepeats(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		fragment string
		reps     int
		expected bool
	}{
		{"censored swear", "what the f**k", `\*`, 2, true},
		{"single asterisk", "a * b", `\*`, 2, false},
		{"any char run", "noooo", ".", 4, true},
		{"short run", "noo", ".", 3, false},
		{"case folded", "NOOoo", ".", 4, true},
		{"word repeat", "catcatcat", "cat", 3, true},
		{"word twice", "catcat", "cat", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RepeatsPattern(tt.s, tt.fragment, tt.reps))
		})
	}

	assert.True(t, RepeatsRun("zzz", 3))
	assert.False(t, MessagesRepeatRun(withMessages("fine", "heyyyy"), 4))
	assert.True(t, MessagesRepeatPattern(withMessages("clean"), `\*`, 2))
}

func TestRepeatsPattern_InvalidFragmentDoesNotPanic(t *testing.T) {
	assert.False(t, RepeatsPattern("anything", "(", 2))
}

func TestDistinctRunes(t *testing.T) {
	r := model.UserRecord{Messages: []string{"..--"}, Bio: "//", AppealMessage: "."}
	set := DistinctRunes(r)
	assert.Len(t, set, 3)
	assert.Contains(t, set, '.')
	assert.Contains(t, set, '-')
	assert.Contains(t, set, '/')
}
