// Package model defines the data models for the appeal engine.
package model

// UserRecord is a simulated user's profile, chat history and ban appeal.
// Records are immutable once loaded.
type UserRecord struct {
	Name          string   `json:"name"`
	BanDate       string   `json:"date"`
	Bio           string   `json:"bio"`
	AvatarIndex   int      `json:"image_index"`
	Messages      []string `json:"messages"`
	AppealMessage string   `json:"appeal_message"`
}

// Equal compares two records on every field except Messages.
func (u UserRecord) Equal(other UserRecord) bool {
	return u.AvatarIndex == other.AvatarIndex &&
		u.Name == other.Name &&
		u.BanDate == other.BanDate &&
		u.Bio == other.Bio &&
		u.AppealMessage == other.AppealMessage
}

// IsZero reports whether the record is the empty sentinel published at day end.
func (u UserRecord) IsZero() bool {
	return u.Equal(UserRecord{}) && len(u.Messages) == 0
}

// FeedMessage is a single direct message delivered by the feed engine.
type FeedMessage struct {
	Message string `json:"message"`
	Source  string `json:"-"` // "pool" or "sequence", set on delivery
}

// Decision is the player's verdict on an appeal.
type Decision int

const (
	// Approved overturns the ban.
	Approved Decision = iota
	// Denied upholds the ban.
	Denied
)

// DecisionFromBool maps an approve flag to a Decision.
func DecisionFromBool(approve bool) Decision {
	if approve {
		return Approved
	}
	return Denied
}

// Approves reports whether the decision overturns the ban.
func (d Decision) Approves() bool {
	return d == Approved
}

func (d Decision) String() string {
	switch d {
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Judgment is the outcome of resolving one appeal.
type Judgment struct {
	Correct     bool     // Decision matched the ground truth
	Decision    Decision // What the player chose
	BrokenRules []int    // Ordinals of failing rules, in authored order
	Stale       bool     // Ban-duration override applied
	Mistake     string   // Explanation, empty when Correct
}

// DaySummary accumulates the scores of one day.
type DaySummary struct {
	DayIndex  int
	Scores    []int
	Completed int
	Correct   int
}

// NewDaySummary creates an empty summary for the given day.
func NewDaySummary(day int) DaySummary {
	return DaySummary{DayIndex: day, Scores: make([]int, 0)}
}

// TotalScore sums the day's scores.
func (s DaySummary) TotalScore() int {
	total := 0
	for _, v := range s.Scores {
		total += v
	}
	return total
}

// DayReport is the end-of-day summary shown to the player.
type DayReport struct {
	Summary      DaySummary
	Quota        int
	Passed       bool
	SessionTotal int
}

// AppealRecord is one reviewed appeal, reconstructed at day end.
type AppealRecord struct {
	Index    int
	User     UserRecord
	Decision Decision
	Correct  bool
	Mistake  string
	Score    int
	Streak   int
}

// Solidified announces that the day's appeal records are ready for review.
type Solidified struct {
	RecordCount int
	RuleText    string
}
