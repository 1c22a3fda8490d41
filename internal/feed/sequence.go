package feed

import (
	"github.com/google/uuid"

	"appeal-engine/internal/model"
)

// sequence is a scripted run of messages sent whenever its trigger fires.
// Triggers that arrive before the messages are loaded are counted.
type sequence struct {
	id       uuid.UUID
	trigger  string
	messages []model.FeedMessage
	loaded   bool
	pending  int
}

func newSequence(trigger string) *sequence {
	return &sequence{id: uuid.New(), trigger: trigger}
}
