package feed

import (
	"errors"
	"math/rand/v2"
	"sync"

	"appeal-engine/internal/model"
)

var (
	ErrPoolExhausted = errors.New("message pool exhausted")
	ErrPoolNotLoaded = errors.New("message pool not loaded")
)

// PoolName identifies one of the six feedback pools.
type PoolName string

const (
	StartingGood PoolName = "starting_good"
	StartingBad  PoolName = "starting_bad"
	StayingGood  PoolName = "staying_good"
	StayingBad   PoolName = "staying_bad"
	GettingGood  PoolName = "getting_good"
	GettingBad   PoolName = "getting_bad"
)

// PoolNames lists every feedback pool.
var PoolNames = []PoolName{StartingGood, StartingBad, StayingGood, StayingBad, GettingGood, GettingBad}

// Pool hands out its messages in random order, each at most once.
type Pool struct {
	name     PoolName
	messages []model.FeedMessage
	rnd      *rand.Rand
	mu       sync.Mutex
}

// NewPool creates a pool over a private copy of msgs.
func NewPool(name PoolName, msgs []model.FeedMessage, rnd *rand.Rand) *Pool {
	return &Pool{
		name:     name,
		messages: append([]model.FeedMessage(nil), msgs...),
		rnd:      rnd,
	}
}

// Name returns the pool's name.
func (p *Pool) Name() PoolName {
	return p.name
}

// Draw removes and returns a uniformly chosen message.
func (p *Pool) Draw() (model.FeedMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.messages)
	if n == 0 {
		return model.FeedMessage{}, ErrPoolExhausted
	}
	i := p.rnd.IntN(n)
	msg := p.messages[i]
	p.messages = append(p.messages[:i], p.messages[i+1:]...)
	return msg, nil
}

// Len returns the number of messages left.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}
