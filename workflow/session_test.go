package workflow

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionApply(t *testing.T) {
	t.Run("merges deltas last write wins", func(t *testing.T) {
		session := NewSession()

		session.Apply(map[string]any{"a": 1, "b": "first"})
		session.Apply(map[string]any{"b": "second"})

		snap := session.Snapshot()
		assert.Equal(t, 1, snap["a"])
		assert.Equal(t, "second", snap["b"])
	})

	t.Run("applying the same delta twice is idempotent", func(t *testing.T) {
		session := NewSession()
		delta := map[string]any{"x": 42, "y": "text"}

		session.Apply(delta)
		first := session.Snapshot()
		session.Apply(delta)
		second := session.Snapshot()

		assert.Equal(t, first, second)
	})

	t.Run("nil delta is a no-op", func(t *testing.T) {
		session := NewSession()
		session.Apply(map[string]any{"a": 1})
		session.Apply(nil)
		assert.Equal(t, 1, session.Len())
	})

	t.Run("keys are never removed", func(t *testing.T) {
		session := NewSession()
		session.Apply(map[string]any{"a": 1})
		session.Apply(map[string]any{"b": 2})

		_, ok := session.Get("a")
		assert.True(t, ok)
	})

	t.Run("concurrent applies do not interleave per key", func(t *testing.T) {
		session := NewSession()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				session.Apply(map[string]any{fmt.Sprintf("key_%d", i): i})
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 50, session.Len())
		for i := 0; i < 50; i++ {
			v, ok := session.Get(fmt.Sprintf("key_%d", i))
			require.True(t, ok)
			assert.Equal(t, i, v)
		}
	})
}

func TestSessionSnapshot(t *testing.T) {
	t.Run("snapshot is isolated from later mutation", func(t *testing.T) {
		session := NewSession()
		session.Apply(map[string]any{"a": "before"})

		snap := session.Snapshot()
		session.Apply(map[string]any{"a": "after"})

		assert.Equal(t, "before", snap["a"])
	})

	t.Run("mutating a snapshot does not touch the session", func(t *testing.T) {
		session := NewSession()
		session.Apply(map[string]any{"a": 1})

		snap := session.Snapshot()
		snap["a"] = 99
		snap["b"] = "new"

		v, _ := session.Get("a")
		assert.Equal(t, 1, v)
		_, ok := session.Get("b")
		assert.False(t, ok)
	})
}

func TestSnapshotTypedGetters(t *testing.T) {
	snap := Snapshot{
		"text":   "hello",
		"number": 0.9,
		"count":  3,
		"flag":   true,
	}

	t.Run("GetString", func(t *testing.T) {
		v, ok := snap.GetString("text")
		assert.True(t, ok)
		assert.Equal(t, "hello", v)

		_, ok = snap.GetString("absent")
		assert.False(t, ok)
	})

	t.Run("GetString formats scalar shapes", func(t *testing.T) {
		v, ok := snap.GetString("count")
		assert.True(t, ok)
		assert.Equal(t, "3", v)
	})

	t.Run("GetFloat accepts numeric shapes", func(t *testing.T) {
		v, ok := snap.GetFloat("number")
		assert.True(t, ok)
		assert.InDelta(t, 0.9, v, 1e-9)

		v, ok = snap.GetFloat("count")
		assert.True(t, ok)
		assert.Equal(t, 3.0, v)

		_, ok = snap.GetFloat("text")
		assert.False(t, ok)
	})

	t.Run("GetBool validates shape", func(t *testing.T) {
		v, ok := snap.GetBool("flag")
		assert.True(t, ok)
		assert.True(t, v)

		_, ok = snap.GetBool("text")
		assert.False(t, ok)
	})
}

func TestSessionID(t *testing.T) {
	a := NewSession()
	b := NewSession()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
