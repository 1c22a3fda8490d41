package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionTotal is one row of the archive leaderboard.
type SessionTotal struct {
	SessionID  uuid.UUID
	Days       int
	Total      int
	LastPlayed time.Time
}

// ArchivedDay is a stored end-of-day report.
type ArchivedDay struct {
	SessionID uuid.UUID
	Report    DayReport
	CreatedAt time.Time
}
