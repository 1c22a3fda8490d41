// Package record reconstructs the day's reviewed appeals for the end-of-day
// review screen.
package record

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
)

const noRules = "No rules loaded..."

// Keeper collects the parallel streams of a day (records shown, decisions,
// judgments, scores) and joins them into AppealRecords on Solidify.
type Keeper struct {
	mu sync.Mutex

	ruleText  string
	users     []model.UserRecord
	decisions []model.Decision
	correct   []bool
	mistakes  []string
	scores    []int

	solid   bool
	records []model.AppealRecord

	onSolidified func(model.Solidified)
}

// NewKeeper creates an empty keeper.
func NewKeeper() *Keeper {
	k := &Keeper{}
	k.resetLocked()
	return k
}

func (k *Keeper) resetLocked() {
	k.ruleText = noRules
	k.users = nil
	k.decisions = nil
	k.correct = nil
	k.mistakes = nil
	k.scores = nil
}

// SetRules stores the rule text shown alongside the review.
func (k *Keeper) SetRules(text string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ruleText = text
	k.solid = false
}

// AddUser records a presented user. Repeats and the empty end-of-day
// record are ignored.
func (k *Keeper) AddUser(u model.UserRecord) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.solid = false

	if u.IsZero() {
		return
	}
	if slices.ContainsFunc(k.users, u.Equal) {
		return
	}
	k.users = append(k.users, u)
}

// AddDecision records the player's decision.
func (k *Keeper) AddDecision(d model.Decision) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.solid = false
	k.decisions = append(k.decisions, d)
}

// AddJudgment records correctness and the mistake text, empty when correct.
func (k *Keeper) AddJudgment(j model.Judgment) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.solid = false

	k.correct = append(k.correct, j.Correct)
	mistake := j.Mistake
	if j.Correct {
		mistake = ""
	}
	k.mistakes = append(k.mistakes, mistake)
}

// SetScores replaces the per-appeal scores with the latest summary's.
func (k *Keeper) SetScores(scores []int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.solid = false
	k.scores = append([]int(nil), scores...)
}

// Solidify joins the collected streams, truncating to the shortest, and
// starts a fresh collection. Calling it again without new input does
// nothing.
func (k *Keeper) Solidify() (model.Solidified, bool) {
	k.mu.Lock()
	if k.solid {
		k.mu.Unlock()
		return model.Solidified{}, false
	}

	n := min(len(k.users), len(k.decisions), len(k.correct), len(k.mistakes), len(k.scores))
	records := make([]model.AppealRecord, 0, n)
	streak := 0
	for i := 0; i < n; i++ {
		if k.correct[i] {
			streak++
		} else {
			streak = 0
		}
		records = append(records, model.AppealRecord{
			Index:    i,
			User:     k.users[i],
			Decision: k.decisions[i],
			Correct:  k.correct[i],
			Mistake:  k.mistakes[i],
			Score:    k.scores[i],
			Streak:   streak,
		})
	}

	out := model.Solidified{RecordCount: len(records), RuleText: k.ruleText}
	k.records = records
	k.solid = true
	k.resetLocked()
	notify := k.onSolidified
	k.mu.Unlock()

	log.Debug().Int("records", out.RecordCount).Msg("Records solidified")
	if notify != nil {
		notify(out)
	}
	return out, true
}

// Record returns the i-th solidified record.
func (k *Keeper) Record(i int) (model.AppealRecord, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.solid || i < 0 || i >= len(k.records) {
		return model.AppealRecord{}, false
	}
	return k.records[i], true
}

// Records returns every solidified record, or nil if new input arrived
// since the last Solidify.
func (k *Keeper) Records() []model.AppealRecord {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.solid {
		return nil
	}
	return slices.Clone(k.records)
}

// Attach subscribes the keeper to the event set and publishes
// RecordsSolidified.
func (k *Keeper) Attach(events *event.Set) {
	k.mu.Lock()
	k.onSolidified = func(s model.Solidified) { events.RecordsSolidified.Emit(s) }
	k.mu.Unlock()

	events.RulesLoaded.Subscribe(k.SetRules)
	events.RecordLoaded.Subscribe(k.AddUser)
	events.Decision.Subscribe(k.AddDecision)
	events.Judgment.Subscribe(k.AddJudgment)
	events.SummaryReady.Subscribe(func(r model.DayReport) { k.SetScores(r.Summary.Scores) })
	events.Solidify.Subscribe(func(event.Unit) { k.Solidify() })
}
