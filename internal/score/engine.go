// Package score turns judgments into points, streak bonuses and day quotas.
package score

import (
	"math"
	"sync"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
)

// Config holds the scoring constants.
type Config struct {
	SuccessScore          int     `mapstructure:"success_score"`
	QuotaRatio            float64 `mapstructure:"quota_ratio"`
	StreakStart           int     `mapstructure:"streak_start"`
	StreakStartMultiplier float64 `mapstructure:"streak_start_multiplier"`
	StreakEnd             int     `mapstructure:"streak_end"`
	StreakEndMultiplier   float64 `mapstructure:"streak_end_multiplier"`
}

// DefaultConfig returns the standard scoring constants.
func DefaultConfig() Config {
	return Config{
		SuccessScore:          100,
		QuotaRatio:            0.75,
		StreakStart:           3,
		StreakStartMultiplier: 1.05,
		StreakEnd:             5,
		StreakEndMultiplier:   1.35,
	}
}

// Engine tracks the current day's scores and the session's finished days.
type Engine struct {
	cfg Config

	mu       sync.Mutex
	streak   int
	current  *model.DaySummary
	archived bool
	history  []model.DaySummary
}

// New creates an engine. A nil config uses DefaultConfig.
func New(cfg *Config) *Engine {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.SuccessScore <= 0 {
		c.SuccessScore = 100
	}
	return &Engine{cfg: c}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Multiplier returns the bonus applied at the given streak length. Below
// StreakStart there is no bonus; above StreakEnd the bonus is flat; in
// between it ramps linearly from the start to the end multiplier.
func (e *Engine) Multiplier(streak int) float64 {
	c := e.cfg
	switch {
	case streak < c.StreakStart:
		return 1.0
	case streak > c.StreakEnd, c.StreakEnd <= c.StreakStart:
		return c.StreakEndMultiplier
	}
	ratio := float64(streak-c.StreakStart) / float64(c.StreakEnd-c.StreakStart)
	return (1-ratio)*c.StreakStartMultiplier + ratio*c.StreakEndMultiplier
}

// ScoreFor updates the streak for one judgment and returns its points.
func (e *Engine) ScoreFor(correct bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scoreLocked(correct)
}

func (e *Engine) scoreLocked(correct bool) int {
	if !correct {
		e.streak = 0
		return 0
	}
	e.streak++
	return int(math.Round(float64(e.cfg.SuccessScore) * e.Multiplier(e.streak)))
}

// Quota is the score needed to pass a day with the given number of
// completed appeals.
func (e *Engine) Quota(completed int) int {
	return int(float64(completed*e.cfg.SuccessScore) * e.cfg.QuotaRatio)
}

// Streak returns the current run of correct judgments.
func (e *Engine) Streak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streak
}

// StartDay opens a fresh summary and resets the streak.
func (e *Engine) StartDay(day int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := model.NewDaySummary(day)
	e.current = &s
	e.archived = false
	e.streak = 0
}

// Record scores a judgment on the current day. Without an open day the
// judgment is ignored.
func (e *Engine) Record(correct bool) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		log.Warn().Bool("correct", correct).Msg("Judgment recorded before day start, ignoring")
		return 0
	}
	points := e.scoreLocked(correct)
	e.current.Scores = append(e.current.Scores, points)
	e.current.Completed++
	if correct {
		e.current.Correct++
	}
	return points
}

// FinishDay moves the current summary into the session history. Calling it
// again for the same day does nothing.
func (e *Engine) FinishDay() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.archived {
		return
	}
	e.history = append(e.history, cloneSummary(*e.current))
	e.archived = true
	log.Info().
		Int("day", e.current.DayIndex).
		Int("score", e.current.TotalScore()).
		Int("completed", e.current.Completed).
		Int("correct", e.current.Correct).
		Msg("Day scored")
}

// Report summarises the current day. The session total covers every
// finished day plus the current one.
func (e *Engine) Report() (model.DayReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return model.DayReport{}, false
	}
	total := 0
	for _, s := range e.history {
		total += s.TotalScore()
	}
	if !e.archived {
		total += e.current.TotalScore()
	}

	summary := cloneSummary(*e.current)
	quota := e.Quota(summary.Completed)
	return model.DayReport{
		Summary:      summary,
		Quota:        quota,
		Passed:       summary.TotalScore() >= quota,
		SessionTotal: total,
	}, true
}

// History returns the finished days in order.
func (e *Engine) History() []model.DaySummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.DaySummary, len(e.history))
	for i, s := range e.history {
		out[i] = cloneSummary(s)
	}
	return out
}

// Reset forgets the whole session.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.streak = 0
	e.current = nil
	e.archived = false
	e.history = nil
}

// Attach wires the engine to the day lifecycle and answers summary
// requests on SummaryReady.
func (e *Engine) Attach(events *event.Set) {
	events.DayStarted.Subscribe(e.StartDay)
	events.Judgment.Subscribe(func(j model.Judgment) {
		e.Record(j.Correct)
	})
	events.DayFinished.Subscribe(func(event.Unit) {
		e.FinishDay()
	})
	events.SummaryRequest.Subscribe(func(event.Unit) {
		if report, ok := e.Report(); ok {
			events.SummaryReady.Emit(report)
		}
	})
}

func cloneSummary(s model.DaySummary) model.DaySummary {
	s.Scores = append([]int(nil), s.Scores...)
	if s.Scores == nil {
		s.Scores = make([]int, 0)
	}
	return s
}
