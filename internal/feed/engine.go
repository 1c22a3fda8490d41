// Package feed delivers the direct messages that react to the player's
// performance and to scripted story beats.
package feed

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"appeal-engine/internal/event"
	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/random"
)

// Config controls when feedback is given and how delivery is paced.
type Config struct {
	// Points are the judgment counts at which feedback is sent.
	Points []int `mapstructure:"points"`
	// RatioForGood is the accuracy at or above which feedback is positive.
	RatioForGood float64 `mapstructure:"ratio_for_good"`
	// PerChar and Base give the pause before a message:
	// (len(message)*PerChar + Base) * Scale.
	PerChar time.Duration `mapstructure:"per_char"`
	Base    time.Duration `mapstructure:"base"`
	Scale   float64       `mapstructure:"scale"`
}

// DefaultConfig returns the standard feedback settings.
func DefaultConfig() Config {
	return Config{
		Points:       []int{3, 6, 10},
		RatioForGood: 0.75,
		PerChar:      1900 * time.Microsecond,
		Base:         500 * time.Millisecond,
		Scale:        1,
	}
}

// Message sources.
const (
	SourcePool     = "pool"
	SourceSequence = "sequence"
)

type feedbackState int

const (
	stateNeutral feedbackState = iota
	stateGood
	stateBad
)

type queued struct {
	source string
	msg    model.FeedMessage
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes every pool draw from rnd.
func WithRand(rnd *rand.Rand) Option {
	return func(e *Engine) {
		e.rnd = rnd
	}
}

// WithDeliver sets the receiver of delivered messages.
func WithDeliver(fn func(model.FeedMessage)) Option {
	return func(e *Engine) {
		e.deliver = fn
	}
}

// WithTimestamp sets the receiver of timestamp markers, sent when delivery
// switches between feedback and scripted messages.
func WithTimestamp(fn func()) Option {
	return func(e *Engine) {
		e.timestamp = fn
	}
}

// Engine queues feedback and sequence messages and delivers them one at a
// time from a single background loop once the day is ready.
type Engine struct {
	cfg Config
	rnd *rand.Rand

	mu        sync.Mutex
	deliver   func(model.FeedMessage)
	timestamp func()

	pools    map[PoolName]*Pool
	buffered []bool
	state    feedbackState
	total    int
	correct  int

	sequences map[string]*sequence

	queue      []queued
	ready      bool
	delivering bool
	last       string
	cancel     context.CancelFunc

	wg sync.WaitGroup
}

// New creates an engine. A nil config uses DefaultConfig.
func New(cfg *Config, opts ...Option) *Engine {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.Scale < 0 {
		c.Scale = 0
	}
	e := &Engine{
		cfg:       c,
		pools:     make(map[PoolName]*Pool),
		sequences: make(map[string]*sequence),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Delay is the pause before msg is delivered.
func (e *Engine) Delay(msg model.FeedMessage) time.Duration {
	d := time.Duration(utf8.RuneCountInString(msg.Message))*e.cfg.PerChar + e.cfg.Base
	return time.Duration(float64(d) * e.cfg.Scale)
}

// LoadPool installs one feedback pool. Once all six are present, judgments
// received earlier are replayed in order. Pools survive Reset.
func (e *Engine) LoadPool(name PoolName, msgs []model.FeedMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rnd := e.rnd
	if rnd == nil {
		rnd = random.New()
	}
	e.pools[name] = NewPool(name, msgs, rnd)
	log.Debug().Str("pool", string(name)).Int("messages", len(msgs)).Msg("Feedback pool loaded")

	if !e.poolsLoadedLocked() || len(e.buffered) == 0 {
		return
	}
	buffered := e.buffered
	e.buffered = nil
	for _, correct := range buffered {
		e.judgeLocked(correct)
	}
}

// LoadPools installs several pools.
func (e *Engine) LoadPools(pools map[PoolName][]model.FeedMessage) {
	for _, name := range PoolNames {
		if msgs, ok := pools[name]; ok {
			e.LoadPool(name, msgs)
		}
	}
}

// PoolsLoaded reports whether every feedback pool has been installed.
func (e *Engine) PoolsLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poolsLoadedLocked()
}

func (e *Engine) poolsLoadedLocked() bool {
	for _, name := range PoolNames {
		if _, ok := e.pools[name]; !ok {
			return false
		}
	}
	return true
}

// Judge records one judgment and queues feedback when a feedback point is
// reached.
func (e *Engine) Judge(correct bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.poolsLoadedLocked() {
		e.buffered = append(e.buffered, correct)
		return
	}
	e.judgeLocked(correct)
}

func (e *Engine) judgeLocked(correct bool) {
	e.total++
	if correct {
		e.correct++
	}
	if !slices.Contains(e.cfg.Points, e.total) {
		return
	}

	var good, bad PoolName
	switch e.state {
	case stateGood:
		good, bad = StayingGood, GettingBad
	case stateBad:
		good, bad = GettingGood, StayingBad
	default:
		good, bad = StartingGood, StartingBad
	}

	name := bad
	e.state = stateBad
	if float64(e.correct)/float64(e.total) >= e.cfg.RatioForGood {
		name = good
		e.state = stateGood
	}

	pool, ok := e.pools[name]
	if !ok {
		log.Warn().Err(ErrPoolNotLoaded).Str("pool", string(name)).Msg("Feedback skipped")
		return
	}
	msg, err := pool.Draw()
	if err != nil {
		log.Warn().Err(err).Str("pool", string(name)).Int("judgments", e.total).Msg("Feedback skipped")
		return
	}
	e.enqueueLocked(SourcePool, msg)
}

// RegisterSequence declares a sequence fired by trigger. Registering the
// same trigger twice returns the existing sequence's id.
func (e *Engine) RegisterSequence(trigger string) uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registerLocked(trigger).id
}

func (e *Engine) registerLocked(trigger string) *sequence {
	if seq, ok := e.sequences[trigger]; ok {
		return seq
	}
	seq := newSequence(trigger)
	e.sequences[trigger] = seq
	return seq
}

// LoadSequence supplies the messages of a sequence and replays any triggers
// that fired before it was loaded.
func (e *Engine) LoadSequence(trigger string, msgs []model.FeedMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq := e.registerLocked(trigger)
	seq.messages = append([]model.FeedMessage(nil), msgs...)
	seq.loaded = true

	pending := seq.pending
	seq.pending = 0
	for i := 0; i < pending; i++ {
		e.enqueueSequenceLocked(seq)
	}
	log.Debug().
		Str("trigger", trigger).
		Str("sequence", seq.id.String()).
		Int("messages", len(msgs)).
		Int("replayed", pending).
		Msg("Sequence loaded")
}

// Trigger fires the sequence registered for name. Unknown names are ignored.
func (e *Engine) Trigger(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seq, ok := e.sequences[name]
	if !ok {
		return
	}
	if !seq.loaded {
		seq.pending++
		return
	}
	e.enqueueSequenceLocked(seq)
}

func (e *Engine) enqueueSequenceLocked(seq *sequence) {
	for _, msg := range seq.messages {
		e.enqueueLocked(SourceSequence, msg)
	}
}

func (e *Engine) enqueueLocked(source string, msg model.FeedMessage) {
	e.queue = append(e.queue, queued{source: source, msg: msg})
	e.startLocked()
}

// Ready opens the gate; queued messages start flowing.
func (e *Engine) Ready() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready {
		return
	}
	e.ready = true
	e.startLocked()
}

// Pending returns the number of queued, undelivered messages.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) startLocked() {
	if !e.ready || e.delivering || len(e.queue) == 0 {
		return
	}
	e.delivering = true
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(ctx)
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	for {
		e.mu.Lock()
		if ctx.Err() != nil {
			e.mu.Unlock()
			return
		}
		if len(e.queue) == 0 {
			e.delivering = false
			e.mu.Unlock()
			return
		}
		item := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		if !pause(ctx, e.Delay(item.msg)) {
			return
		}

		e.mu.Lock()
		if ctx.Err() != nil {
			e.mu.Unlock()
			return
		}
		stamp := e.last != "" && e.last != item.source
		e.last = item.source
		deliver, timestamp := e.deliver, e.timestamp
		e.mu.Unlock()

		if stamp && timestamp != nil {
			timestamp()
		}
		item.msg.Source = item.source
		if deliver != nil {
			deliver(item.msg)
		}
	}
}

// pause waits for d unless ctx is cancelled first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Reset prepares the engine for a new day. The pending delivery is
// cancelled and the queue, counters, feedback state, readiness and sequence
// registrations are cleared. Loaded pools are kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.queue = nil
	e.delivering = false
	e.ready = false
	e.last = ""
	e.buffered = nil
	e.state = stateNeutral
	e.total = 0
	e.correct = 0
	e.sequences = make(map[string]*sequence)
}

// Wait blocks until the delivery loop is idle.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close cancels delivery and waits for the loop to exit.
func (e *Engine) Close() {
	e.Reset()
	e.Wait()
}

// Attach wires the engine to the event set: judgments feed the feedback
// state, LoadComplete opens the gate and hooks fire sequences. Deliveries
// are published on FeedDelivered and FeedTimestamp.
func (e *Engine) Attach(events *event.Set) {
	e.mu.Lock()
	e.deliver = func(m model.FeedMessage) { events.FeedDelivered.Emit(m) }
	e.timestamp = func() { events.FeedTimestamp.Emit(event.Unit{}) }
	e.mu.Unlock()

	events.Judgment.Subscribe(func(j model.Judgment) { e.Judge(j.Correct) })
	events.LoadComplete.Subscribe(func(event.Unit) { e.Ready() })
	events.Hook.Subscribe(e.Trigger)
}
