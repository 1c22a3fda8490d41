// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appeal-engine/internal/model"
)

// ArchiveRepository stores finished days for later analysis. Sessions
// never read their own state back from it.
type ArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository creates a new ArchiveRepository instance.
func NewArchiveRepository(pool *pgxpool.Pool) *ArchiveRepository {
	return &ArchiveRepository{pool: pool}
}

// Migrate creates the archive tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS day_reports (
			id BIGSERIAL PRIMARY KEY,
			session_id UUID NOT NULL,
			day_index INT NOT NULL,
			scores INT[] NOT NULL DEFAULT '{}',
			completed INT NOT NULL,
			correct INT NOT NULL,
			quota INT NOT NULL,
			passed BOOLEAN NOT NULL,
			session_total INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, day_index)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create day_reports: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS appeal_records (
			id BIGSERIAL PRIMARY KEY,
			session_id UUID NOT NULL,
			day_index INT NOT NULL,
			idx INT NOT NULL,
			user_name VARCHAR(255) NOT NULL,
			user_record JSONB NOT NULL,
			decision VARCHAR(16) NOT NULL,
			correct BOOLEAN NOT NULL,
			mistake TEXT NOT NULL DEFAULT '',
			score INT NOT NULL,
			streak INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (session_id, day_index, idx)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create appeal_records: %w", err)
	}
	return nil
}

// SaveDay stores an end-of-day report. Saving the same day twice replaces
// the earlier report.
func (r *ArchiveRepository) SaveDay(ctx context.Context, sessionID uuid.UUID, report model.DayReport) error {
	const query = `
		INSERT INTO day_reports (session_id, day_index, scores, completed, correct, quota, passed, session_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, day_index) DO UPDATE SET
			scores = EXCLUDED.scores,
			completed = EXCLUDED.completed,
			correct = EXCLUDED.correct,
			quota = EXCLUDED.quota,
			passed = EXCLUDED.passed,
			session_total = EXCLUDED.session_total,
			created_at = NOW()
	`

	s := report.Summary
	scores := s.Scores
	if scores == nil {
		scores = []int{}
	}
	_, err := r.pool.Exec(ctx, query,
		sessionID, s.DayIndex, scores, s.Completed, s.Correct,
		report.Quota, report.Passed, report.SessionTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to save day report: %w", err)
	}
	return nil
}

// SaveAppeals stores the reviewed appeals of a day in one transaction.
func (r *ArchiveRepository) SaveAppeals(ctx context.Context, sessionID uuid.UUID, day int, records []model.AppealRecord) error {
	if len(records) == 0 {
		return nil
	}

	const query = `
		INSERT INTO appeal_records (session_id, day_index, idx, user_name, user_record, decision, correct, mistake, score, streak)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id, day_index, idx) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, rec := range records {
		user, err := json.Marshal(rec.User)
		if err != nil {
			return fmt.Errorf("failed to encode user %q: %w", rec.User.Name, err)
		}
		batch.Queue(query,
			sessionID, day, rec.Index, rec.User.Name, user,
			rec.Decision.String(), rec.Correct, rec.Mistake, rec.Score, rec.Streak,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save appeal records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit appeal records: %w", err)
	}
	return nil
}

// DayReports returns the stored reports of a session, oldest day first.
func (r *ArchiveRepository) DayReports(ctx context.Context, sessionID uuid.UUID) ([]model.ArchivedDay, error) {
	const query = `
		SELECT day_index, scores, completed, correct, quota, passed, session_total, created_at
		FROM day_reports
		WHERE session_id = $1
		ORDER BY day_index
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query day reports: %w", err)
	}
	defer rows.Close()

	var days []model.ArchivedDay
	for rows.Next() {
		d := model.ArchivedDay{SessionID: sessionID}
		s := &d.Report.Summary
		if err := rows.Scan(
			&s.DayIndex, &s.Scores, &s.Completed, &s.Correct,
			&d.Report.Quota, &d.Report.Passed, &d.Report.SessionTotal, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan day report: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read day reports: %w", err)
	}
	return days, nil
}

// AppealRecords returns the stored appeals of one day of a session.
func (r *ArchiveRepository) AppealRecords(ctx context.Context, sessionID uuid.UUID, day int) ([]model.AppealRecord, error) {
	const query = `
		SELECT idx, user_record, decision, correct, mistake, score, streak
		FROM appeal_records
		WHERE session_id = $1 AND day_index = $2
		ORDER BY idx
	`

	rows, err := r.pool.Query(ctx, query, sessionID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query appeal records: %w", err)
	}
	defer rows.Close()

	var records []model.AppealRecord
	for rows.Next() {
		var (
			rec      model.AppealRecord
			user     []byte
			decision string
		)
		if err := rows.Scan(&rec.Index, &user, &decision, &rec.Correct, &rec.Mistake, &rec.Score, &rec.Streak); err != nil {
			return nil, fmt.Errorf("failed to scan appeal record: %w", err)
		}
		if err := json.Unmarshal(user, &rec.User); err != nil {
			return nil, fmt.Errorf("failed to decode user record: %w", err)
		}
		rec.Decision = model.DecisionFromBool(decision == model.Approved.String())
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read appeal records: %w", err)
	}
	return records, nil
}

// TopSessions ranks sessions by their best running total.
func (r *ArchiveRepository) TopSessions(ctx context.Context, limit int) ([]model.SessionTotal, error) {
	const query = `
		SELECT session_id, COUNT(*), MAX(session_total), MAX(created_at)
		FROM day_reports
		GROUP BY session_id
		ORDER BY MAX(session_total) DESC, MAX(created_at) DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top sessions: %w", err)
	}
	defer rows.Close()

	var totals []model.SessionTotal
	for rows.Next() {
		var t model.SessionTotal
		if err := rows.Scan(&t.SessionID, &t.Days, &t.Total, &t.LastPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan session total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read top sessions: %w", err)
	}
	return totals, nil
}
