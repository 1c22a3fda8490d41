package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appeal-engine/internal/model"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func newTestLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	root := t.TempDir()
	return New(&Config{Root: root, Locale: "en", Concurrency: 2}), root
}

func TestLoader_LoadRecords(t *testing.T) {
	l, _ := newTestLoader(t)
	writeFile(t, l.RecordPath("day1", "alice"), `{
		"name": "alice",
		"date": "2024-02-01",
		"bio": "hi",
		"image_index": 39,
		"messages": ["one", "two"],
		"appeal_message": "please"
	}`)
	writeFile(t, l.RecordPath("day1", "bob"), `{"name": "bob", "date": "2024-02-02"}`)
	writeFile(t, l.RecordPath("day1", "broken"), `{not json`)

	got := l.LoadRecords(context.Background(), "day1", []string{"alice", "bob", "broken", "missing"})

	require.Len(t, got, 2)
	assert.Equal(t, model.UserRecord{
		Name:          "alice",
		BanDate:       "2024-02-01",
		Bio:           "hi",
		AvatarIndex:   39,
		Messages:      []string{"one", "two"},
		AppealMessage: "please",
	}, got["alice"])
	assert.Equal(t, []string{}, got["bob"].Messages)
}

func TestLoader_LoadRecordsCancelled(t *testing.T) {
	l, _ := newTestLoader(t)
	writeFile(t, l.RecordPath("day1", "alice"), `{"name": "alice"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, l.LoadRecords(ctx, "day1", []string{"alice"}))
}

func TestLoader_LoadDay(t *testing.T) {
	l, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, "days", "day2.yaml"), `
directory: day2
date: "2024-03-02"
pools:
  - users: [a, b]
  - users: [c]
pool_order:
  - pool: 0
    count: 2
    before: [intro]
  - pool: 1
    count: 1
    after: [outro]
`)

	def := l.LoadDay(2)
	assert.Equal(t, 2, def.Index)
	assert.Equal(t, "day2", def.Directory)
	assert.Equal(t, "2024-03-02", def.Date)
	require.Len(t, def.Pools, 2)
	assert.Equal(t, []string{"a", "b"}, def.Pools[0].UserFiles)
	require.Len(t, def.Order, 2)
	assert.Equal(t, []string{"intro"}, def.Order[0].Before)
	assert.Equal(t, []string{"outro"}, def.Order[1].After)
	assert.Equal(t, 3, def.TotalCount())
}

func TestLoader_LoadDayMissingFallsBack(t *testing.T) {
	l, _ := newTestLoader(t)
	def := l.LoadDay(7)
	assert.Equal(t, 7, def.Index)
	assert.Equal(t, "daynull", def.Directory)
	assert.Equal(t, "null", def.Date)
	assert.Empty(t, def.Order)
}

func TestLoader_LoadMessagesKeepsOrder(t *testing.T) {
	l, _ := newTestLoader(t)
	for _, id := range []string{"m1", "m2", "m3"} {
		writeFile(t, l.MessagePath("feedback", id), `{"message": "`+id+`"}`)
	}

	got := l.LoadMessages(context.Background(), "feedback", []string{"m3", "nope", "m1", "m2"})
	assert.Equal(t, []model.FeedMessage{{Message: "m3"}, {Message: "m1"}, {Message: "m2"}}, got)
}

func TestLoader_LoadFeed(t *testing.T) {
	l, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, "feed.yaml"), `
directory: feedback
pools:
  starting_good: [g1]
  starting_bad: [b1, b2]
sequences:
  - trigger: intro
    messages: [s1, s2]
`)
	for _, id := range []string{"g1", "b1", "b2", "s1", "s2"} {
		writeFile(t, l.MessagePath("feedback", id), `{"message": "`+id+`"}`)
	}

	def := l.LoadFeed()
	assert.Equal(t, "feedback", def.Directory)
	require.Len(t, def.Sequences, 1)

	content := l.LoadFeedContent(context.Background(), def)
	assert.Equal(t, []model.FeedMessage{{Message: "g1"}}, content.Pools["starting_good"])
	assert.Len(t, content.Pools["starting_bad"], 2)
	assert.Equal(t, []model.FeedMessage{{Message: "s1"}, {Message: "s2"}}, content.Sequences["intro"])
}

func TestLoader_LoadFeedMissing(t *testing.T) {
	l, _ := newTestLoader(t)
	def := l.LoadFeed()
	assert.Empty(t, def.Pools)
	assert.Empty(t, l.LoadFeedContent(context.Background(), def).Pools)
}

func TestReadRecord_EmptyPath(t *testing.T) {
	_, err := ReadRecord("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}
