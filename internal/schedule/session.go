// Package schedule draws a day's record identifiers from its pools in the
// configured order, firing hooks at pool boundaries.
package schedule

import (
	"math/rand/v2"
	"sort"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/random"
)

// HookFunc receives the name of a hook when a pool boundary is crossed.
type HookFunc func(hook string)

// Option configures a Session.
type Option func(*Session)

// WithHooks sets the hook receiver. Without it hooks are only logged.
func WithHooks(fn HookFunc) Option {
	return func(s *Session) {
		s.onHook = fn
	}
}

// WithRand makes every pool draw from rnd. Used for reproducible runs.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) {
		s.shared = rnd
	}
}

type pool struct {
	remaining []string
	rnd       *rand.Rand
}

// draw removes and returns a uniformly chosen identifier.
func (p *pool) draw() (string, bool) {
	n := len(p.remaining)
	if n == 0 {
		return "", false
	}
	i := p.rnd.IntN(n)
	id := p.remaining[i]
	p.remaining[i] = p.remaining[n-1]
	p.remaining = p.remaining[:n-1]
	return id, true
}

// Session is the per-day draw state. It consumes a private copy of the
// definition, so exhausted pools stay exhausted for the rest of the day.
type Session struct {
	def    model.DayDefinition
	pools  []*pool
	order  int
	drawn  int
	onHook HookFunc
	shared *rand.Rand
}

// New starts a session and fires the before hooks of the first entry.
func New(def model.DayDefinition, opts ...Option) *Session {
	s := &Session{def: def.Clone()}
	for _, opt := range opts {
		opt(s)
	}

	s.pools = make([]*pool, len(s.def.Pools))
	for i, p := range s.def.Pools {
		rnd := s.shared
		if rnd == nil {
			rnd = random.New()
		}
		s.pools[i] = &pool{remaining: append([]string(nil), p.UserFiles...), rnd: rnd}
	}

	if len(s.def.Order) > 0 {
		s.fire(s.def.Order[0].Before)
	}
	return s
}

// PopNext returns the next record identifier, or false once the day is
// exhausted or the current entry's pool cannot supply one.
func (s *Session) PopNext() (string, bool) {
	if s.order >= len(s.def.Order) {
		return "", false
	}

	s.drawn++
	if s.drawn > s.def.Order[s.order].Count {
		s.fire(s.def.Order[s.order].After)
		s.drawn = 1
		s.order++
		if s.order >= len(s.def.Order) {
			return "", false
		}
		s.fire(s.def.Order[s.order].Before)
	}

	idx := s.def.Order[s.order].Pool
	if idx < 0 || idx >= len(s.pools) {
		log.Warn().
			Int("pool", idx).
			Int("pools", len(s.pools)).
			Str("day", s.def.Directory).
			Msg("Pool order references missing pool")
		return "", false
	}

	id, ok := s.pools[idx].draw()
	if !ok {
		log.Warn().Int("pool", idx).Str("day", s.def.Directory).Msg("Pool exhausted")
	}
	return id, ok
}

func (s *Session) fire(hooks []string) {
	for _, h := range hooks {
		log.Debug().Str("hook", h).Str("day", s.def.Directory).Msg("Firing hook")
		if s.onHook != nil {
			s.onHook(h)
		}
	}
}

// UserFiles returns every identifier referenced by the day's pools, sorted
// and without duplicates.
func (s *Session) UserFiles() []string {
	seen := make(map[string]struct{})
	for _, p := range s.def.Pools {
		for _, id := range p.UserFiles {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total is the number of records the order asks for.
func (s *Session) Total() int {
	return s.def.TotalCount()
}

// Cursor returns the index of the current order entry.
func (s *Session) Cursor() int {
	return s.order
}

// Exhausted reports whether every order entry has been consumed.
func (s *Session) Exhausted() bool {
	return s.order >= len(s.def.Order)
}

// Definition returns the session's copy of the day definition.
func (s *Session) Definition() model.DayDefinition {
	return s.def.Clone()
}
