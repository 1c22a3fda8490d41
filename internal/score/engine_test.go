package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
)

func TestEngine_StreakRamp(t *testing.T) {
	e := New(nil)
	var got []int
	for i := 0; i < 7; i++ {
		got = append(got, e.ScoreFor(true))
	}
	assert.Equal(t, []int{100, 100, 105, 120, 135, 135, 135}, got)
	assert.Equal(t, 7, e.Streak())
}

func TestEngine_WrongAnswerResetsStreak(t *testing.T) {
	e := New(nil)
	e.ScoreFor(true)
	e.ScoreFor(true)
	e.ScoreFor(true)

	assert.Equal(t, 0, e.ScoreFor(false))
	assert.Equal(t, 0, e.Streak())
	assert.Equal(t, 100, e.ScoreFor(true))
}

func TestEngine_Multiplier(t *testing.T) {
	e := New(nil)
	tests := []struct {
		streak   int
		expected float64
	}{
		{0, 1.0},
		{2, 1.0},
		{3, 1.05},
		{4, 1.2},
		{5, 1.35},
		{9, 1.35},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, e.Multiplier(tt.streak), 1e-9, "streak %d", tt.streak)
	}
}

func TestEngine_DegenerateRamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StreakEnd = cfg.StreakStart
	e := New(&cfg)
	assert.Equal(t, 1.0, e.Multiplier(2))
	assert.Equal(t, cfg.StreakEndMultiplier, e.Multiplier(3))
}

func TestEngine_Quota(t *testing.T) {
	e := New(nil)
	assert.Equal(t, 750, e.Quota(10))
	assert.Equal(t, 0, e.Quota(0))
	assert.Equal(t, 225, e.Quota(3))
}

func TestEngine_QuotaBoundary(t *testing.T) {
	tests := []struct {
		name   string
		scores []int
		passed bool
	}{
		{"exactly quota", []int{750}, true},
		{"one short", []int{749}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil)
			e.StartDay(1)
			for i := 0; i < 10; i++ {
				e.Record(false)
			}
			e.mu.Lock()
			e.current.Scores = tt.scores
			e.mu.Unlock()

			report, ok := e.Report()
			require.True(t, ok)
			assert.Equal(t, 750, report.Quota)
			assert.Equal(t, tt.passed, report.Passed)
		})
	}
}

func TestEngine_RecordWithoutDayIsIgnored(t *testing.T) {
	e := New(nil)
	assert.Equal(t, 0, e.Record(true))
	assert.Equal(t, 0, e.Streak())
	_, ok := e.Report()
	assert.False(t, ok)
}

func TestEngine_SessionTotal(t *testing.T) {
	e := New(nil)

	e.StartDay(1)
	e.Record(true)
	e.Record(true)
	e.FinishDay()
	e.FinishDay()

	report, ok := e.Report()
	require.True(t, ok)
	assert.Equal(t, 200, report.SessionTotal)

	e.StartDay(2)
	assert.Equal(t, 0, e.Streak())
	e.Record(true)
	e.Record(false)

	report, ok = e.Report()
	require.True(t, ok)
	assert.Equal(t, 2, report.Summary.DayIndex)
	assert.Equal(t, 2, report.Summary.Completed)
	assert.Equal(t, 1, report.Summary.Correct)
	assert.Equal(t, []int{100, 0}, report.Summary.Scores)
	assert.Equal(t, 150, report.Quota)
	assert.False(t, report.Passed)
	assert.Equal(t, 300, report.SessionTotal)

	e.FinishDay()
	report, _ = e.Report()
	assert.Equal(t, 300, report.SessionTotal)
	assert.Len(t, e.History(), 2)

	e.Reset()
	assert.Empty(t, e.History())
}

func TestEngine_Attach(t *testing.T) {
	events := event.NewSet()
	defer events.Close()

	e := New(nil)
	e.Attach(events)

	var reports []model.DayReport
	events.SummaryReady.Subscribe(func(r model.DayReport) { reports = append(reports, r) })

	events.SummaryRequest.Emit(event.Unit{})
	assert.Empty(t, reports)

	events.DayStarted.Emit(3)
	events.Judgment.Emit(model.Judgment{Correct: true})
	events.Judgment.Emit(model.Judgment{Correct: true})
	events.DayFinished.Emit(event.Unit{})
	events.SummaryRequest.Emit(event.Unit{})

	require.Len(t, reports, 1)
	assert.Equal(t, 3, reports[0].Summary.DayIndex)
	assert.Equal(t, 200, reports[0].SessionTotal)
	assert.True(t, reports[0].Passed)
}

// TestScoresNonDecreasingProperty checks that within a run of correct
// judgments each score is at least the previous one, and that scores stay
// between the base and the capped maximum.
func TestScoresNonDecreasingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := DefaultConfig()
		cfg.StreakStart = rapid.IntRange(1, 6).Draw(t, "start")
		cfg.StreakEnd = rapid.IntRange(cfg.StreakStart+1, 12).Draw(t, "end")
		e := New(&cfg)

		outcomes := rapid.SliceOfN(rapid.Bool(), 1, 40).Draw(t, "outcomes")
		prev := 0
		for _, correct := range outcomes {
			s := e.ScoreFor(correct)
			if !correct {
				if s != 0 || e.Streak() != 0 {
					t.Fatalf("wrong answer scored %d with streak %d", s, e.Streak())
				}
				prev = 0
				continue
			}
			if s < prev {
				t.Fatalf("score decreased from %d to %d", prev, s)
			}
			if s < cfg.SuccessScore || s > 135 {
				t.Fatalf("score %d outside [%d, 135]", s, cfg.SuccessScore)
			}
			prev = s
		}
	})
}
