package service

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"appeal-engine/internal/model"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// Ranker reads finished sessions back from the archive.
type Ranker interface {
	TopSessions(ctx context.Context, limit int) ([]model.SessionTotal, error)
	DayReports(ctx context.Context, sessionID uuid.UUID) ([]model.ArchivedDay, error)
}

// RankingService handles leaderboard operations.
type RankingService struct {
	ranker Ranker
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(ranker Ranker) *RankingService {
	return &RankingService{ranker: ranker}
}

// TopSessions retrieves the best sessions by running total.
func (s *RankingService) TopSessions(ctx context.Context, limit int) ([]model.SessionTotal, error) {
	return s.ranker.TopSessions(ctx, clampLimit(limit))
}

// Standings ranks the live session against the archived ones. A live
// session that is already archived replaces its stored row.
func (s *RankingService) Standings(ctx context.Context, live model.SessionTotal, limit int) ([]model.SessionTotal, error) {
	limit = clampLimit(limit)
	stored, err := s.ranker.TopSessions(ctx, limit+1)
	if err != nil {
		return nil, err
	}
	stored = slices.DeleteFunc(stored, func(t model.SessionTotal) bool {
		return t.SessionID == live.SessionID
	})
	return rankTotals(append(stored, live), limit), nil
}

// History retrieves every archived day of a session.
func (s *RankingService) History(ctx context.Context, sessionID uuid.UUID) ([]model.ArchivedDay, error) {
	return s.ranker.DayReports(ctx, sessionID)
}

// LiveTotal describes the running session in leaderboard form.
func (s *Session) LiveTotal() model.SessionTotal {
	t := model.SessionTotal{
		SessionID:  s.ID,
		Days:       len(s.score.History()),
		LastPlayed: time.Now(),
	}
	if report, ok := s.score.Report(); ok {
		t.Total = report.SessionTotal
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLeaderboardSize
	}
	return min(limit, maxLeaderboardSize)
}

// rankTotals orders totals by score, most recent first on ties, and keeps
// the first limit entries.
func rankTotals(totals []model.SessionTotal, limit int) []model.SessionTotal {
	out := slices.Clone(totals)
	slices.SortStableFunc(out, func(a, b model.SessionTotal) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}
		return b.LastPlayed.Compare(a.LastPlayed)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
