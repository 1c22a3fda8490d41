package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"appeal-engine/internal/model"
	"appeal-engine/internal/pkg/random"
)

func twoPoolDay() model.DayDefinition {
	return model.DayDefinition{
		Index:     1,
		Directory: "day1",
		Date:      "2024-03-01",
		Pools: []model.PoolDefinition{
			{UserFiles: []string{"a", "b", "c"}},
			{UserFiles: []string{"x", "y"}},
		},
		Order: []model.PoolOrder{
			{Pool: 0, Count: 2, Before: []string{"intro"}, After: []string{"break"}},
			{Pool: 1, Count: 2, Before: []string{"boss"}, After: []string{"outro", "credits"}},
		},
	}
}

func TestSession_HookOrderAndDraws(t *testing.T) {
	var events []string
	s := New(twoPoolDay(), WithHooks(func(h string) { events = append(events, "hook:"+h) }), WithRand(random.Seeded(7)))

	for {
		id, ok := s.PopNext()
		if !ok {
			break
		}
		events = append(events, "draw")
		_ = id
	}

	assert.Equal(t, []string{
		"hook:intro", "draw", "draw",
		"hook:break", "hook:boss", "draw", "draw",
		"hook:outro", "hook:credits",
	}, events)
	assert.True(t, s.Exhausted())

	_, ok := s.PopNext()
	assert.False(t, ok)
	assert.Len(t, events, 9)
}

func TestSession_DrawsFromTheRightPool(t *testing.T) {
	s := New(twoPoolDay())
	first := map[string]bool{}
	for i := 0; i < 2; i++ {
		id, ok := s.PopNext()
		require.True(t, ok)
		first[id] = true
	}
	for id := range first {
		assert.Contains(t, []string{"a", "b", "c"}, id)
	}
	for i := 0; i < 2; i++ {
		id, ok := s.PopNext()
		require.True(t, ok)
		assert.Contains(t, []string{"x", "y"}, id)
	}
}

func TestSession_PoolExhaustedMidEntry(t *testing.T) {
	def := model.DayDefinition{
		Pools: []model.PoolDefinition{{UserFiles: []string{"only"}}},
		Order: []model.PoolOrder{{Pool: 0, Count: 3}},
	}
	s := New(def)

	id, ok := s.PopNext()
	require.True(t, ok)
	assert.Equal(t, "only", id)

	_, ok = s.PopNext()
	assert.False(t, ok)
	assert.False(t, s.Exhausted())
}

func TestSession_OutOfRangePool(t *testing.T) {
	for _, idx := range []int{-1, 5} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			def := model.DayDefinition{
				Pools: []model.PoolDefinition{{UserFiles: []string{"a"}}},
				Order: []model.PoolOrder{{Pool: idx, Count: 1}},
			}
			_, ok := New(def).PopNext()
			assert.False(t, ok)
		})
	}
}

func TestSession_EmptyOrderFiresNothing(t *testing.T) {
	fired := 0
	s := New(model.DefaultDay(), WithHooks(func(string) { fired++ }))
	_, ok := s.PopNext()
	assert.False(t, ok)
	assert.True(t, s.Exhausted())
	assert.Equal(t, 0, fired)
}

func TestSession_DoesNotMutateDefinition(t *testing.T) {
	def := twoPoolDay()
	s := New(def)
	for {
		if _, ok := s.PopNext(); !ok {
			break
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, def.Pools[0].UserFiles)
	assert.Equal(t, []string{"a", "b", "c", "x", "y"}, s.UserFiles())
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, 2, s.Cursor())
}

// TestSessionUniqueDrawsProperty checks that a single-entry day of N
// identifiers yields each exactly once and then nothing, firing each hook
// exactly once.
func TestSessionUniqueDrawsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		seed := rapid.Uint64().Draw(t, "seed")

		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("user%d", i)
		}
		def := model.DayDefinition{
			Pools: []model.PoolDefinition{{UserFiles: ids}},
			Order: []model.PoolOrder{{Pool: 0, Count: n, Before: []string{"start"}, After: []string{"end"}}},
		}

		hooks := map[string]int{}
		s := New(def, WithHooks(func(h string) { hooks[h]++ }), WithRand(random.Seeded(seed)))

		seen := map[string]bool{}
		for i := 0; i < n; i++ {
			id, ok := s.PopNext()
			if !ok {
				t.Fatalf("draw %d of %d failed", i+1, n)
			}
			if seen[id] {
				t.Fatalf("identifier %s drawn twice", id)
			}
			seen[id] = true
		}
		for i := 0; i < 3; i++ {
			if _, ok := s.PopNext(); ok {
				t.Fatalf("draw after exhaustion succeeded")
			}
		}
		if hooks["start"] != 1 || hooks["end"] != 1 {
			t.Fatalf("hooks fired %v, want each once", hooks)
		}
	})
}
