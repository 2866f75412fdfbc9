package quota

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowTrackerEnforcesLimit(t *testing.T) {
	tracker := NewWindowTracker()
	now := time.Unix(1_700_000_000, 0)

	for i := 0; i < 10; i++ {
		assert.True(t, tracker.TryIncrement("key-a", 10, now), "request %d should be allowed", i+1)
	}
	assert.False(t, tracker.TryIncrement("key-a", 10, now), "11th request in the same epoch must be denied")
	assert.Equal(t, 10, tracker.Count("key-a", now), "denied request must not consume budget")
}

func TestWindowTrackerEpochRollover(t *testing.T) {
	tracker := NewWindowTracker()
	// Align to an epoch start so the two instants land in different epochs.
	now := time.Unix(1_700_000_000/60*60, 0)

	for i := 0; i < 5; i++ {
		require.True(t, tracker.TryIncrement("key-a", 5, now))
	}
	require.False(t, tracker.TryIncrement("key-a", 5, now))

	next := now.Add(60 * time.Second)
	assert.True(t, tracker.TryIncrement("key-a", 5, next), "budget must reset on a new epoch")
	assert.Equal(t, 1, tracker.Count("key-a", next))
	assert.Equal(t, 0, tracker.Count("key-a", now.Add(-60*time.Second)), "stale epochs hold no counts")
}

func TestWindowTrackerIsolatesKeys(t *testing.T) {
	tracker := NewWindowTracker()
	now := time.Unix(1_700_000_000, 0)

	require.True(t, tracker.TryIncrement("key-a", 1, now))
	require.False(t, tracker.TryIncrement("key-a", 1, now))
	assert.True(t, tracker.TryIncrement("key-b", 1, now), "keys must not share budgets")
}

func TestWindowTrackerConcurrentIncrements(t *testing.T) {
	tracker := NewWindowTracker()
	now := time.Unix(1_700_000_000, 0)

	const (
		attempts = 200
		limit    = 10
	)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if tracker.TryIncrement("contended", limit, now) {
				allowed.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int64(limit), allowed.Load(), "exactly limit increments may succeed under concurrency")
	assert.Equal(t, limit, tracker.Count("contended", now))
}

func TestWindowTrackerSweepsStaleEntries(t *testing.T) {
	tracker := NewWindowTracker()
	now := time.Unix(1_700_000_000/60*60, 0)

	// Landing on a later epoch replaces the stale bucket; the old epoch's
	// count is gone.
	require.True(t, tracker.TryIncrement("key-a", 10, now))
	require.True(t, tracker.TryIncrement("key-a", 10, now.Add(2*time.Minute)))
	assert.Equal(t, 0, tracker.Count("key-a", now))
	assert.Equal(t, 1, tracker.Count("key-a", now.Add(2*time.Minute)))
}
