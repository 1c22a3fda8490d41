package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/random"
)

// Strategy decides appeals without a human player.
type Strategy string

// Available strategies.
const (
	StrategyOracle  Strategy = "oracle"
	StrategyApprove Strategy = "approve"
	StrategyDeny    Strategy = "deny"
	StrategyRandom  Strategy = "random"
)

// ErrUnknownStrategy is returned for an unrecognised strategy name.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategies lists every strategy name.
var Strategies = []Strategy{StrategyOracle, StrategyApprove, StrategyDeny, StrategyRandom}

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// AutoplayConfig controls an unattended day.
type AutoplayConfig struct {
	Strategy Strategy
	// Accuracy is the chance that StrategyRandom answers correctly.
	Accuracy float64
	Rand     *rand.Rand
}

// DayResult is the outcome of one unattended day.
type DayResult struct {
	Report    model.DayReport
	Records   []model.AppealRecord
	Decisions int
}

// Autoplay decides every remaining appeal of the current day and returns
// the number of decisions made.
func (s *Session) Autoplay(ctx context.Context, cfg AutoplayConfig) (int, error) {
	if _, err := ParseStrategy(string(cfg.Strategy)); err != nil {
		return 0, err
	}
	rnd := cfg.Rand
	if rnd == nil {
		if s.seed != nil {
			rnd = random.Seeded(*s.seed + 2)
		} else {
			rnd = random.New()
		}
	}

	decisions := 0
	for !s.controller.Finished() {
		if err := ctx.Err(); err != nil {
			return decisions, fmt.Errorf("autoplay interrupted: %w", err)
		}
		expected, err := s.controller.Expected()
		if err != nil {
			return decisions, err
		}
		approve := choose(cfg, expected, rnd)
		if _, err := s.Decide(approve); err != nil {
			return decisions, err
		}
		decisions++
	}

	log.Debug().
		Str("strategy", string(cfg.Strategy)).
		Int("decisions", decisions).
		Msg("Autoplay finished day")
	return decisions, nil
}

func choose(cfg AutoplayConfig, expected bool, rnd *rand.Rand) bool {
	switch cfg.Strategy {
	case StrategyApprove:
		return true
	case StrategyDeny:
		return false
	case StrategyRandom:
		if rnd.Float64() < cfg.Accuracy {
			return expected
		}
		return !expected
	default:
		return expected
	}
}

// PlayDay runs a whole day unattended: start, decide every appeal, finish.
func (s *Session) PlayDay(ctx context.Context, day int, cfg AutoplayConfig) (DayResult, error) {
	if err := s.StartDay(ctx, day); err != nil {
		return DayResult{}, err
	}
	n, err := s.Autoplay(ctx, cfg)
	if err != nil {
		return DayResult{Decisions: n}, err
	}
	report, records, err := s.FinishDay(ctx)
	return DayResult{Report: report, Records: records, Decisions: n}, err
}
