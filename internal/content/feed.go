package content

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"appeal-engine/internal/model"
)

// FeedDefinition lists the message files behind the feedback pools and the
// scripted sequences.
type FeedDefinition struct {
	Directory string               `yaml:"directory"`
	Pools     map[string][]string  `yaml:"pools"`
	Sequences []SequenceDefinition `yaml:"sequences"`
}

// SequenceDefinition is a scripted run of messages fired by a day hook.
type SequenceDefinition struct {
	Trigger  string   `yaml:"trigger"`
	Messages []string `yaml:"messages"`
}

// FeedContent is the decoded messages of a FeedDefinition.
type FeedContent struct {
	Pools     map[string][]model.FeedMessage
	Sequences map[string][]model.FeedMessage
}

// LoadFeed reads feed.yaml. A missing or invalid file yields an empty
// definition.
func (l *Loader) LoadFeed() FeedDefinition {
	var def FeedDefinition
	if err := readYAML(l.FeedPath(), &def); err != nil {
		log.Error().Err(err).Msg("Failed to load feed definition")
		return FeedDefinition{}
	}
	return def
}

// LoadFeedContent reads every pool and sequence of def concurrently.
func (l *Loader) LoadFeedContent(ctx context.Context, def FeedDefinition) FeedContent {
	type loaded struct {
		name string
		pool bool
		msgs []model.FeedMessage
	}
	results := make(chan loaded, len(def.Pools)+len(def.Sequences))

	var g errgroup.Group
	for name, ids := range def.Pools {
		g.Go(func() error {
			results <- loaded{name: name, pool: true, msgs: l.LoadMessages(ctx, def.Directory, ids)}
			return nil
		})
	}
	for _, seq := range def.Sequences {
		g.Go(func() error {
			results <- loaded{name: seq.Trigger, msgs: l.LoadMessages(ctx, def.Directory, seq.Messages)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := FeedContent{
		Pools:     make(map[string][]model.FeedMessage),
		Sequences: make(map[string][]model.FeedMessage),
	}
	for r := range results {
		if r.pool {
			out.Pools[r.name] = r.msgs
		} else {
			out.Sequences[r.name] = r.msgs
		}
	}
	return out
}
