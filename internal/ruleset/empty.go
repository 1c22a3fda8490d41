package ruleset

import (
	"github.com/rs/zerolog/log"

	"appeal-engine/internal/validator"
)

// Empty adds no rules. Every record with a readable ban date passes.
type Empty struct{}

func (Empty) Day() int { return 0 }
func (Empty) Name() string { return "empty" }

func (Empty) AddRules(*validator.Validator) {
	log.Warn().Msg("Added empty ruleset, is that a mistake?")
}
