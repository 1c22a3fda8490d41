// Package content reads days, user records and direct messages from the
// content directory.
//
// Layout:
//
//	days/day<N>.yaml                        day definitions
//	feed.yaml                               feedback pools and sequences
//	lang/<locale>/days/<dir>/<id>.json      user records
//	lang/<locale>/messages/<dir>/<id>.json  direct messages
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"appeal-engine/internal/model"
)

const defaultConcurrency = 8

var ErrEmptyPath = errors.New("empty content path")

// Config holds the loader settings.
type Config struct {
	Root        string `mapstructure:"root"`
	Locale      string `mapstructure:"locale"`
	Concurrency int    `mapstructure:"concurrency"`
}

// Loader reads content files. Individual file failures are logged and
// skipped; the engine always gets a usable, possibly partial, result.
type Loader struct {
	root        string
	locale      string
	concurrency int
}

// New creates a loader.
func New(cfg *Config) *Loader {
	l := &Loader{root: ".", locale: "en", concurrency: defaultConcurrency}
	if cfg == nil {
		return l
	}
	if cfg.Root != "" {
		l.root = cfg.Root
	}
	if cfg.Locale != "" {
		l.locale = cfg.Locale
	}
	if cfg.Concurrency > 0 {
		l.concurrency = cfg.Concurrency
	}
	return l
}

// RecordPath returns the file holding a user record.
func (l *Loader) RecordPath(dir, id string) string {
	return filepath.Join(l.root, "lang", l.locale, "days", dir, id+".json")
}

// MessagePath returns the file holding a direct message.
func (l *Loader) MessagePath(dir, id string) string {
	return filepath.Join(l.root, "lang", l.locale, "messages", dir, id+".json")
}

// DayPath returns the definition file of a day.
func (l *Loader) DayPath(index int) string {
	return filepath.Join(l.root, "days", fmt.Sprintf("day%d.yaml", index))
}

// FeedPath returns the feed definition file.
func (l *Loader) FeedPath() string {
	return filepath.Join(l.root, "feed.yaml")
}

// LoadRecords reads the given records concurrently. Records that fail to
// load are absent from the result.
func (l *Loader) LoadRecords(ctx context.Context, dir string, ids []string) map[string]model.UserRecord {
	out := make(map[string]model.UserRecord, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rec, err := ReadRecord(l.RecordPath(dir, id))
			if err != nil {
				log.Error().Err(err).Str("record", id).Str("dir", dir).Msg("Failed to load record")
				return nil
			}
			mu.Lock()
			out[id] = rec
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors.
	_ = g.Wait()

	log.Debug().Str("dir", dir).Int("loaded", len(out)).Int("requested", len(ids)).Msg("Records loaded")
	return out
}

// LoadMessages reads direct messages in the order given. Messages that fail
// to load are skipped.
func (l *Loader) LoadMessages(ctx context.Context, dir string, ids []string) []model.FeedMessage {
	msgs := make([]model.FeedMessage, len(ids))
	ok := make([]bool, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			msg, err := ReadMessage(l.MessagePath(dir, id))
			if err != nil {
				log.Error().Err(err).Str("message", id).Str("dir", dir).Msg("Failed to load message")
				return nil
			}
			msgs[i] = msg
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.FeedMessage, 0, len(ids))
	for i, m := range msgs {
		if ok[i] {
			out = append(out, m)
		}
	}
	return out
}

// LoadDay reads a day definition. A missing or invalid file yields
// model.DefaultDay with the requested index.
func (l *Loader) LoadDay(index int) model.DayDefinition {
	def, err := ReadDay(l.DayPath(index))
	if err != nil {
		log.Error().Err(err).Int("day", index).Msg("Failed to load day, using default")
		def = model.DefaultDay()
	}
	def.Index = index
	return def
}

// ReadRecord decodes one user record file.
func ReadRecord(path string) (model.UserRecord, error) {
	var rec model.UserRecord
	if err := readJSON(path, &rec); err != nil {
		return model.UserRecord{}, err
	}
	if rec.Messages == nil {
		rec.Messages = []string{}
	}
	return rec, nil
}

// ReadMessage decodes one direct message file.
func ReadMessage(path string) (model.FeedMessage, error) {
	var msg model.FeedMessage
	if err := readJSON(path, &msg); err != nil {
		return model.FeedMessage{}, err
	}
	return msg, nil
}

// ReadDay decodes a day definition file.
func ReadDay(path string) (model.DayDefinition, error) {
	var def model.DayDefinition
	if err := readYAML(path, &def); err != nil {
		return model.DayDefinition{}, err
	}
	return def, nil
}

func readJSON(path string, v any) error {
	if path == "" {
		return ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func readYAML(path string, v any) error {
	if path == "" {
		return ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
