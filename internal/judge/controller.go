// Package judge runs a day: it draws records from the scheduler, checks the
// player's decisions against the day's rules and announces the results.
package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
	"appeal-engine/internal/ruleset"
	"appeal-engine/internal/schedule"
	"appeal-engine/internal/validator"
)

var (
	ErrNoActiveRecord = errors.New("no active record")
	ErrDayNotLoaded   = errors.New("day not loaded")
)

// RecordLoader fetches the records of a day. Identifiers that could not be
// loaded are absent from the result.
type RecordLoader interface {
	LoadRecords(ctx context.Context, dir string, ids []string) map[string]model.UserRecord
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduleOptions passes options to every day's scheduler.
func WithScheduleOptions(opts ...schedule.Option) Option {
	return func(c *Controller) {
		c.scheduleOpts = append(c.scheduleOpts, opts...)
	}
}

// Controller owns the active record of the current day. It is driven from a
// single goroutine; events are emitted synchronously.
type Controller struct {
	loader       RecordLoader
	rules        *ruleset.Registry
	events       *event.Set
	scheduleOpts []schedule.Option

	day       model.DayDefinition
	session   *schedule.Session
	validator *validator.Validator
	records   map[string]model.UserRecord

	current  model.UserRecord
	active   bool
	loaded   bool
	finished bool
}

// New creates a controller.
func New(loader RecordLoader, rules *ruleset.Registry, events *event.Set, opts ...Option) *Controller {
	c := &Controller{
		loader:    loader,
		rules:     rules,
		events:    events,
		validator: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadDay prepares a day and presents its first record. No rule is
// evaluated until every record has been loaded. If ctx is cancelled while
// loading, the day is left unloaded and the context error is returned.
func (c *Controller) LoadDay(ctx context.Context, def model.DayDefinition) error {
	c.day = def.Clone()
	c.loaded = false
	c.active = false
	c.finished = false
	c.current = model.UserRecord{}
	c.records = nil

	opts := append([]schedule.Option{schedule.WithHooks(func(h string) {
		c.events.Hook.Emit(h)
	})}, c.scheduleOpts...)
	c.session = schedule.New(c.day, opts...)

	c.validator = ruleset.Apply(c.rules.Resolve(c.day.Index))

	c.events.DayDate.Emit(c.day.Date)
	c.events.RulesLoaded.Emit(c.validator.RuleText())

	ids := c.session.UserFiles()
	records := c.loader.LoadRecords(ctx, c.day.Directory, ids)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to load day %d: %w", c.day.Index, err)
	}
	c.records = records
	c.loaded = true

	log.Info().
		Int("day", c.day.Index).
		Str("date", c.day.Date).
		Int("records", len(records)).
		Int("requested", len(ids)).
		Int("rules", c.validator.Len()).
		Msg("Day loaded")

	c.events.DayStarted.Emit(c.day.Index)
	c.events.RecordCount.Emit(c.session.Total())
	c.advance()
	c.events.LoadComplete.Emit(event.Unit{})
	return nil
}

// Resolve judges the player's decision on the current record and moves on
// to the next one.
func (c *Controller) Resolve(decision model.Decision) (model.Judgment, error) {
	if !c.loaded || !c.active {
		return model.Judgment{}, ErrNoActiveRecord
	}

	rec := c.current
	verdict := c.validator.Evaluate(rec, c.day.Date)
	j := model.Judgment{
		Correct:     verdict.Valid == decision.Approves(),
		Decision:    decision,
		BrokenRules: verdict.Broken,
		Stale:       verdict.Stale,
	}
	if !j.Correct {
		j.Mistake = MistakeText(rec, verdict)
	}

	log.Debug().
		Str("user", rec.Name).
		Str("decision", decision.String()).
		Bool("correct", j.Correct).
		Ints("broken", verdict.Broken).
		Msg("Appeal resolved")

	c.events.Decision.Emit(decision)
	if !j.Correct {
		c.events.Mistake.Emit(j.Mistake)
	}
	c.events.Judgment.Emit(j)

	c.advance()
	return j, nil
}

// advance presents the next loadable record or finishes the day.
func (c *Controller) advance() {
	for {
		id, ok := c.session.PopNext()
		if !ok {
			c.finish()
			return
		}
		rec, found := c.records[id]
		if !found {
			log.Warn().Str("record", id).Str("day", c.day.Directory).Msg("Record not loaded, skipping")
			continue
		}
		c.current = rec
		c.active = true
		c.events.RecordLoaded.Emit(rec)
		return
	}
}

func (c *Controller) finish() {
	c.active = false
	c.current = model.UserRecord{}
	if c.finished {
		return
	}
	c.finished = true
	log.Info().Int("day", c.day.Index).Msg("Day finished")
	c.events.DayFinished.Emit(event.Unit{})
	c.events.RecordLoaded.Emit(model.UserRecord{Messages: []string{}})
}

// Current returns the record awaiting a decision.
func (c *Controller) Current() (model.UserRecord, bool) {
	return c.current, c.active
}

// Expected returns the ground truth for the current record: true means the
// ban should be overturned.
func (c *Controller) Expected() (bool, error) {
	if !c.loaded {
		return false, ErrDayNotLoaded
	}
	if !c.active {
		return false, ErrNoActiveRecord
	}
	return c.validator.Validate(c.current, c.day.Date), nil
}

// Finished reports whether the day's records are exhausted.
func (c *Controller) Finished() bool {
	return c.finished
}

// Validator returns the validator of the current day.
func (c *Controller) Validator() *validator.Validator {
	return c.validator
}

// Day returns the definition of the current day.
func (c *Controller) Day() model.DayDefinition {
	return c.day
}
