// Package service wires the game engines into a playable session.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"appeal-engine/internal/content"
	"appeal-engine/internal/event"
	"appeal-engine/internal/feed"
	"appeal-engine/internal/judge"
	"appeal-engine/internal/metrics"
	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/random"
	"appeal-engine/internal/record"
	"appeal-engine/internal/ruleset"
	"appeal-engine/internal/schedule"
	"appeal-engine/internal/score"
)

// Common errors for session operations.
var (
	ErrDayInProgress = errors.New("day still has records to judge")
	ErrNoDay         = errors.New("no day started")
)

// Content supplies days, records and direct messages.
type Content interface {
	judge.RecordLoader
	LoadDay(index int) model.DayDefinition
	LoadFeed() content.FeedDefinition
	LoadFeedContent(ctx context.Context, def content.FeedDefinition) content.FeedContent
}

// Archive receives finished days. It is write-only from the session's
// point of view.
type Archive interface {
	SaveDay(ctx context.Context, sessionID uuid.UUID, report model.DayReport) error
	SaveAppeals(ctx context.Context, sessionID uuid.UUID, day int, records []model.AppealRecord) error
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	rules    *ruleset.Registry
	score    *score.Config
	feedback *feed.Config
	archive  Archive
	metrics  *metrics.Metrics
	seed     *uint64
}

// WithRules replaces the default rulesets.
func WithRules(r *ruleset.Registry) Option {
	return func(o *sessionOptions) { o.rules = r }
}

// WithScore sets the scoring constants.
func WithScore(cfg score.Config) Option {
	return func(o *sessionOptions) { o.score = &cfg }
}

// WithFeedback sets the feedback settings.
func WithFeedback(cfg feed.Config) Option {
	return func(o *sessionOptions) { o.feedback = &cfg }
}

// WithArchive stores every finished day.
func WithArchive(a Archive) Option {
	return func(o *sessionOptions) { o.archive = a }
}

// WithMetrics reports to m instead of a private registry.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *sessionOptions) { o.metrics = m }
}

// WithSeed makes record order and feedback draws reproducible.
func WithSeed(seed uint64) Option {
	return func(o *sessionOptions) { o.seed = &seed }
}

// Session owns one player's run: the event set and every engine attached
// to it. Drive it from a single goroutine.
type Session struct {
	ID uuid.UUID

	events     *event.Set
	content    Content
	controller *judge.Controller
	score      *score.Engine
	feed       *feed.Engine
	keeper     *record.Keeper
	metrics    *metrics.Metrics
	archive    Archive
	seed       *uint64

	feedContent *content.FeedContent
	day         int
}

// NewSession creates a session and attaches its engines.
func NewSession(c Content, opts ...Option) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rules == nil {
		o.rules = ruleset.Default()
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}

	var judgeOpts []judge.Option
	var feedOpts []feed.Option
	if o.seed != nil {
		judgeOpts = append(judgeOpts, judge.WithScheduleOptions(schedule.WithRand(random.Seeded(*o.seed))))
		feedOpts = append(feedOpts, feed.WithRand(random.Seeded(*o.seed+1)))
	}

	events := event.NewSet()
	s := &Session{
		ID:         uuid.New(),
		events:     events,
		content:    c,
		controller: judge.New(c, o.rules, events, judgeOpts...),
		score:      score.New(o.score),
		feed:       feed.New(o.feedback, feedOpts...),
		keeper:     record.NewKeeper(),
		metrics:    o.metrics,
		archive:    o.archive,
		seed:       o.seed,
	}

	// The score engine must see a judgment before the streak gauge is read.
	s.score.Attach(events)
	s.keeper.Attach(events)
	s.feed.Attach(events)
	s.metrics.Attach(events)
	events.Judgment.Subscribe(func(j model.Judgment) {
		s.metrics.ObserveJudgment(j.Correct, s.score.Streak())
	})

	log.Info().Str("session", s.ID.String()).Msg("Session created")
	return s
}

// Events exposes the session's event set for presentation layers.
func (s *Session) Events() *event.Set {
	return s.events
}

// Controller returns the day controller.
func (s *Session) Controller() *judge.Controller {
	return s.controller
}

// Score returns the score engine.
func (s *Session) Score() *score.Engine {
	return s.score
}

// Feed returns the direct message engine.
func (s *Session) Feed() *feed.Engine {
	return s.feed
}

// Metrics returns the session's collectors.
func (s *Session) Metrics() *metrics.Metrics {
	return s.metrics
}

// StartDay loads a day and presents its first record.
func (s *Session) StartDay(ctx context.Context, day int) error {
	s.feed.Reset()
	s.loadFeed(ctx)

	def := s.content.LoadDay(day)
	if err := s.controller.LoadDay(ctx, def); err != nil {
		return fmt.Errorf("failed to start day %d: %w", day, err)
	}
	s.day = day
	return nil
}

// loadFeed installs the feedback pools once per session and registers the
// scripted sequences for the coming day.
func (s *Session) loadFeed(ctx context.Context) {
	if s.feedContent == nil {
		fc := s.content.LoadFeedContent(ctx, s.content.LoadFeed())
		s.feedContent = &fc
		for _, name := range feed.PoolNames {
			msgs, ok := fc.Pools[string(name)]
			if !ok {
				log.Warn().Str("pool", string(name)).Msg("Feedback pool missing from content")
				continue
			}
			s.feed.LoadPool(name, msgs)
		}
	}
	for trigger, msgs := range s.feedContent.Sequences {
		s.feed.RegisterSequence(trigger)
		s.feed.LoadSequence(trigger, msgs)
	}
}

// Decide resolves the current appeal.
func (s *Session) Decide(approve bool) (model.Judgment, error) {
	return s.controller.Resolve(model.DecisionFromBool(approve))
}

// FinishDay summarises the finished day, builds its review records and
// stores both in the archive when one is configured. The report and
// records are returned even if archiving fails.
func (s *Session) FinishDay(ctx context.Context) (model.DayReport, []model.AppealRecord, error) {
	if s.day == 0 {
		return model.DayReport{}, nil, ErrNoDay
	}
	if !s.controller.Finished() {
		return model.DayReport{}, nil, ErrDayInProgress
	}

	s.events.SummaryRequest.Emit(event.Unit{})
	report, ok := s.score.Report()
	if !ok {
		return model.DayReport{}, nil, ErrNoDay
	}
	s.events.Solidify.Emit(event.Unit{})
	records := s.keeper.Records()
	s.metrics.ObserveDay(report)

	log.Info().
		Str("session", s.ID.String()).
		Int("day", s.day).
		Int("score", report.Summary.TotalScore()).
		Int("quota", report.Quota).
		Bool("passed", report.Passed).
		Int("session_total", report.SessionTotal).
		Msg("Day finished")

	if s.archive != nil {
		if err := s.archive.SaveDay(ctx, s.ID, report); err != nil {
			return report, records, fmt.Errorf("failed to archive day %d: %w", s.day, err)
		}
		if err := s.archive.SaveAppeals(ctx, s.ID, s.day, records); err != nil {
			return report, records, fmt.Errorf("failed to archive appeals of day %d: %w", s.day, err)
		}
	}
	return report, records, nil
}

// Close stops feed delivery and drops every subscription.
func (s *Session) Close() {
	s.feed.Close()
	s.events.Close()
	log.Info().Str("session", s.ID.String()).Msg("Session closed")
}
