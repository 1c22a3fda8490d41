package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"appeal-engine/internal/model"
)

type fakeRanker struct {
	totals    []model.SessionTotal
	lastLimit int
}

func (f *fakeRanker) TopSessions(_ context.Context, limit int) ([]model.SessionTotal, error) {
	f.lastLimit = limit
	return rankTotals(f.totals, limit), nil
}

func (f *fakeRanker) DayReports(_ context.Context, id uuid.UUID) ([]model.ArchivedDay, error) {
	return []model.ArchivedDay{{SessionID: id}}, nil
}

func TestRankingService_TopSessionsClampsLimit(t *testing.T) {
	ranker := &fakeRanker{}
	svc := NewRankingService(ranker)
	ctx := context.Background()

	tests := []struct {
		limit    int
		expected int
	}{
		{0, defaultLeaderboardSize},
		{-3, defaultLeaderboardSize},
		{5, 5},
		{1000, maxLeaderboardSize},
	}
	for _, tt := range tests {
		_, err := svc.TopSessions(ctx, tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, ranker.lastLimit)
	}
}

func TestRankingService_StandingsReplacesArchivedLiveSession(t *testing.T) {
	now := time.Now()
	live := uuid.New()
	other := uuid.New()
	ranker := &fakeRanker{totals: []model.SessionTotal{
		{SessionID: other, Days: 3, Total: 900, LastPlayed: now.Add(-time.Hour)},
		{SessionID: live, Days: 1, Total: 300, LastPlayed: now.Add(-time.Minute)},
	}}
	svc := NewRankingService(ranker)

	got, err := svc.Standings(context.Background(), model.SessionTotal{SessionID: live, Days: 2, Total: 1200, LastPlayed: now}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, live, got[0].SessionID)
	assert.Equal(t, 1200, got[0].Total)
	assert.Equal(t, other, got[1].SessionID)
}

func TestRankingService_History(t *testing.T) {
	svc := NewRankingService(&fakeRanker{})
	id := uuid.New()
	days, err := svc.History(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, id, days[0].SessionID)
}

func TestSession_LiveTotal(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, 0, s.LiveTotal().Total)

	_, err := s.PlayDay(context.Background(), 1, AutoplayConfig{Strategy: StrategyOracle})
	require.NoError(t, err)

	total := s.LiveTotal()
	assert.Equal(t, s.ID, total.SessionID)
	assert.Equal(t, 1, total.Days)
	assert.Equal(t, 305, total.Total)
}

// TestRankTotalsOrderingProperty checks that ranked sessions are sorted by
// total descending and never drop a higher total than one they keep.
func TestRankTotalsOrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		totals := make([]model.SessionTotal, n)
		for i := range totals {
			totals[i] = model.SessionTotal{
				SessionID:  uuid.New(),
				Total:      rapid.IntRange(0, 5000).Draw(t, "total"),
				LastPlayed: base.Add(time.Duration(rapid.IntRange(0, 1000).Draw(t, "minutes")) * time.Minute),
			}
		}
		limit := rapid.IntRange(1, n+5).Draw(t, "limit")

		got := rankTotals(totals, limit)

		if len(got) != min(limit, n) {
			t.Fatalf("expected %d sessions, got %d", min(limit, n), len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].Total < got[i].Total {
				t.Fatalf("not sorted at %d: %d < %d", i, got[i-1].Total, got[i].Total)
			}
			if got[i-1].Total == got[i].Total && got[i-1].LastPlayed.Before(got[i].LastPlayed) {
				t.Fatalf("tie at %d not ordered by recency", i)
			}
		}
		if len(got) == 0 {
			return
		}
		lowest := got[len(got)-1].Total
		kept := 0
		for _, tt := range totals {
			if tt.Total > lowest {
				kept++
			}
		}
		if kept > len(got) {
			t.Fatalf("%d sessions beat the lowest ranked total %d but only %d kept", kept, lowest, len(got))
		}
	})
}
