package quota

import (
	"hash/fnv"
	"sync"
	"time"
)

const windowShards = 64

// WindowTracker counts requests per key in fixed 60-second epochs. Counts
// are process-local and never persisted; a restart forgets the current
// window. The map is sharded by key so concurrent requests for different
// keys rarely contend on the same lock.
type WindowTracker struct {
	shards [windowShards]windowShard
}

type windowShard struct {
	mu      sync.Mutex
	buckets map[string]*windowBucket
}

type windowBucket struct {
	epoch int64
	count int
}

// NewWindowTracker creates an empty tracker.
func NewWindowTracker() *WindowTracker {
	t := &WindowTracker{}
	for i := range t.shards {
		t.shards[i].buckets = make(map[string]*windowBucket)
	}
	return t
}

// TryIncrement records one request for key in the epoch containing now,
// unless that epoch already holds limit requests. The check and the
// increment happen under one lock, so concurrent callers can never push a
// window past its limit. A denied call consumes no budget.
func (t *WindowTracker) TryIncrement(key string, limit int, now time.Time) bool {
	epoch := now.Unix() / 60
	shard := &t.shards[shardIndex(key)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	b := shard.buckets[key]
	if b == nil || b.epoch < epoch {
		// A key rolling onto a new epoch pays for sweeping its shard's
		// stale buckets; each stale bucket is deleted at most once.
		shard.sweep(epoch)
		b = &windowBucket{epoch: epoch}
		shard.buckets[key] = b
	}

	if b.count >= limit {
		return false
	}
	b.count++
	return true
}

// Count returns the current count for key in the epoch containing now.
func (t *WindowTracker) Count(key string, now time.Time) int {
	epoch := now.Unix() / 60
	shard := &t.shards[shardIndex(key)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if b := shard.buckets[key]; b != nil && b.epoch == epoch {
		return b.count
	}
	return 0
}

// sweep removes buckets from epochs before current. Caller holds mu.
func (s *windowShard) sweep(current int64) {
	for key, b := range s.buckets {
		if b.epoch < current {
			delete(s.buckets, key)
		}
	}
}

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % windowShards
}
