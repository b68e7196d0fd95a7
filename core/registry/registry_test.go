package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAssignsMonotonicPriorities(t *testing.T) {
	r := New[string]()
	p1, err := r.Add("a", "A")
	require.NoError(t, err)
	p2, err := r.Add("b", "B")
	require.NoError(t, err)
	p3, err := r.Add("c", "C")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p1)
	assert.Equal(t, uint32(2), p2)
	assert.Equal(t, uint32(3), p3)

	entries := r.Snapshot()
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Priority, entries[i].Priority)
	}
}

func TestAddBasePriority(t *testing.T) {
	r := New[string](WithBasePriority(10))
	p, err := r.Add("roam-1", "h")
	require.NoError(t, err)
	assert.Equal(t, uint32(10), p)
	p, err = r.Add("roam-2", "h")
	require.NoError(t, err)
	assert.Equal(t, uint32(11), p)
}

func TestAddReplacesExistingID(t *testing.T) {
	r := New[string]()
	_, err := r.Add("a", "old")
	require.NoError(t, err)
	p, err := r.Add("a", "new")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p)
	assert.Equal(t, 1, r.Len())
	h, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", h)
}

func TestSetOrdersByPriority(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Set("low", 5, "L"))
	require.NoError(t, r.Set("high", 1, "H"))
	entries := r.Snapshot()
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].ID)
	assert.Equal(t, "low", entries[1].ID)
}

func TestSetRejectsTakenPriority(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.Set("a", 1, "A"))
	assert.Error(t, r.Set("b", 1, "B"))
}

func TestRemove(t *testing.T) {
	r := New[string]()
	_, err := r.Add("a", "A")
	require.NoError(t, err)
	require.NoError(t, r.Remove("a"))
	assert.ErrorIs(t, r.Remove("a"), ErrNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestSnapshotStableUnderConcurrentAdds(t *testing.T) {
	r := New[int]()
	for i := 0; i < 10; i++ {
		_, err := r.Add(string(rune('a'+i)), i)
		require.NoError(t, err)
	}
	snap := r.Snapshot()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Add(string(rune('A'+i)), i)
		}(i)
	}
	wg.Wait()

	// The snapshot taken before the concurrent adds must not have changed.
	require.Len(t, snap, 10)
	for i := 1; i < len(snap); i++ {
		assert.Less(t, snap[i-1].Priority, snap[i].Priority)
	}
	assert.Equal(t, 30, r.Len())
}

func TestConcurrentAddsUniquePriorities(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Add(string(rune(i)), i)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool)
	for _, e := range r.Snapshot() {
		assert.False(t, seen[e.Priority], "priority %d assigned twice", e.Priority)
		seen[e.Priority] = true
	}
}
