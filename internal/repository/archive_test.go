package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appeal-engine/internal/model"
)

func report(day int, scores []int, total int) model.DayReport {
	s := model.DaySummary{DayIndex: day, Scores: scores, Completed: len(scores)}
	for _, v := range scores {
		if v > 0 {
			s.Correct++
		}
	}
	return model.DayReport{Summary: s, Quota: len(scores) * 75, Passed: s.TotalScore() >= len(scores)*75, SessionTotal: total}
}

func TestArchiveRepository_SaveDay(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewArchiveRepository(pool)
	ctx := context.Background()
	session := uuid.New()

	require.NoError(t, repo.SaveDay(ctx, session, report(1, []int{100, 100, 105}, 305)))
	require.NoError(t, repo.SaveDay(ctx, session, report(2, []int{0, 100}, 405)))
	// Saving again replaces the row.
	require.NoError(t, repo.SaveDay(ctx, session, report(2, []int{100, 100}, 505)))

	days, err := repo.DayReports(ctx, session)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Report.Summary.DayIndex)
	assert.Equal(t, []int{100, 100, 105}, days[0].Report.Summary.Scores)
	assert.Equal(t, 3, days[0].Report.Summary.Completed)
	assert.Equal(t, 225, days[0].Report.Quota)
	assert.True(t, days[0].Report.Passed)
	assert.Equal(t, 505, days[1].Report.SessionTotal)
	assert.False(t, days[1].CreatedAt.IsZero())
}

func TestArchiveRepository_SaveAppeals(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewArchiveRepository(pool)
	ctx := context.Background()
	session := uuid.New()

	records := []model.AppealRecord{
		{
			Index:    0,
			User:     model.UserRecord{Name: "alice", BanDate: "2024-02-01", Messages: []string{"hi"}, AvatarIndex: 3},
			Decision: model.Approved,
			Correct:  true,
			Score:    100,
			Streak:   1,
		},
		{
			Index:    1,
			User:     model.UserRecord{Name: "bob", BanDate: "2024-02-20", Messages: []string{}},
			Decision: model.Denied,
			Correct:  false,
			Mistake:  "No Rules Broken",
			Score:    0,
			Streak:   0,
		},
	}

	require.NoError(t, repo.SaveAppeals(ctx, session, 1, records))
	require.NoError(t, repo.SaveAppeals(ctx, session, 1, records))
	require.NoError(t, repo.SaveAppeals(ctx, session, 1, nil))

	got, err := repo.AppealRecords(ctx, session, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].User.Messages, got[0].User.Messages)
	assert.Equal(t, 3, got[0].User.AvatarIndex)
	assert.Equal(t, model.Approved, got[0].Decision)
	assert.Equal(t, model.Denied, got[1].Decision)
	assert.Equal(t, "No Rules Broken", got[1].Mistake)

	none, err := repo.AppealRecords(ctx, session, 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArchiveRepository_TopSessions(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewArchiveRepository(pool)
	ctx := context.Background()

	low, high := uuid.New(), uuid.New()
	require.NoError(t, repo.SaveDay(ctx, low, report(1, []int{100}, 100)))
	require.NoError(t, repo.SaveDay(ctx, high, report(1, []int{100, 100}, 200)))
	require.NoError(t, repo.SaveDay(ctx, high, report(2, []int{135}, 335)))

	top, err := repo.TopSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, high, top[0].SessionID)
	assert.Equal(t, 2, top[0].Days)
	assert.Equal(t, 335, top[0].Total)
	assert.Equal(t, low, top[1].SessionID)

	top, err = repo.TopSessions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
