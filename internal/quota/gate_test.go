package quota

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itskundan-01/Finance-News-API/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory CredentialStore for gate tests.
type fakeStore struct {
	mu      sync.Mutex
	keys    map[string]*types.APIKey
	findErr error
	recErr  error
}

func newFakeStore(records ...*types.APIKey) *fakeStore {
	s := &fakeStore{keys: make(map[string]*types.APIKey)}
	for _, r := range records {
		s.keys[r.Key] = r
	}
	return s
}

func (s *fakeStore) FindByKey(_ context.Context, key string) (*types.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	record, ok := s.keys[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	copied := *record
	copied.DailyRequests = make(map[string]int64, len(record.DailyRequests))
	for day, count := range record.DailyRequests {
		copied.DailyRequests[day] = count
	}
	return &copied, nil
}

func (s *fakeStore) RecordUsage(_ context.Context, key, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recErr != nil {
		return s.recErr
	}
	record, ok := s.keys[key]
	if !ok {
		return types.ErrNotFound
	}
	record.TotalRequests++
	if record.DailyRequests == nil {
		record.DailyRequests = make(map[string]int64)
	}
	record.DailyRequests[day]++
	record.LastUsedAt = time.Now()
	return nil
}

func (s *fakeStore) usage(key string) (int64, map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := s.keys[key]
	return record.TotalRequests, record.DailyRequests
}

func activeKey(key, tier string) *types.APIKey {
	return &types.APIKey{
		Key:           key,
		OwnerEmail:    "owner@example.com",
		OwnerName:     "Owner",
		Tier:          tier,
		IsActive:      true,
		CreatedAt:     time.Now(),
		DailyRequests: map[string]int64{},
	}
}

func newTestGate(store CredentialStore) *Gate {
	return NewGate(store, DefaultTiers(), NewWindowTracker())
}

func TestAdmitMissingKey(t *testing.T) {
	gate := newTestGate(newFakeStore())

	outcome := gate.Admit(context.Background(), "", time.Now())
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonMissingKey, outcome.Reason)
}

func TestAdmitUnknownKey(t *testing.T) {
	gate := newTestGate(newFakeStore())

	outcome := gate.Admit(context.Background(), "nope", time.Now())
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonInvalidKey, outcome.Reason)
}

func TestAdmitRevokedKey(t *testing.T) {
	record := activeKey("k1", "free")
	record.IsActive = false
	store := newFakeStore(record)
	gate := newTestGate(store)

	outcome := gate.Admit(context.Background(), "k1", time.Now())
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonInvalidKey, outcome.Reason)

	total, _ := store.usage("k1")
	assert.Zero(t, total, "rejected requests must not record usage")
}

func TestAdmitSuccessRecordsUsage(t *testing.T) {
	store := newFakeStore(activeKey("k1", "free"))
	gate := newTestGate(store)
	now := time.Now()

	outcome := gate.Admit(context.Background(), "k1", now)
	require.True(t, outcome.Allowed)
	assert.Equal(t, 20, outcome.MaxResults, "free tier caps results at 20")

	total, daily := store.usage("k1")
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), daily[now.Format(types.DayKey)])
}

func TestAdmitDailyQuotaExceeded(t *testing.T) {
	record := activeKey("k1", "free")
	now := time.Now()
	record.DailyRequests[now.Format(types.DayKey)] = 100
	store := newFakeStore(record)
	gate := newTestGate(store)

	outcome := gate.Admit(context.Background(), "k1", now)
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonDailyQuotaExceeded, outcome.Reason)
	assert.Greater(t, outcome.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, outcome.RetryAfter, 24*time.Hour)

	total, _ := store.usage("k1")
	assert.Zero(t, total, "rejected requests must not record usage")
	assert.Equal(t, 0, gate.window.Count("k1", now), "rejected requests must not consume window budget")
}

func TestAdmitDailyCheckedBeforeMinute(t *testing.T) {
	// A key that exhausted both limits must get the daily reason.
	record := activeKey("k1", "free")
	now := time.Now()
	record.DailyRequests[now.Format(types.DayKey)] = 100
	gate := newTestGate(newFakeStore(record))
	for i := 0; i < 10; i++ {
		gate.window.TryIncrement("k1", 10, now)
	}

	outcome := gate.Admit(context.Background(), "k1", now)
	assert.Equal(t, ReasonDailyQuotaExceeded, outcome.Reason)
}

func TestAdmitMinuteQuotaExceeded(t *testing.T) {
	store := newFakeStore(activeKey("k1", "free"))
	gate := newTestGate(store)
	now := time.Unix(1_700_000_000/60*60, 0)

	for i := 0; i < 10; i++ {
		outcome := gate.Admit(context.Background(), "k1", now)
		require.True(t, outcome.Allowed, "request %d within the window should pass", i+1)
	}

	outcome := gate.Admit(context.Background(), "k1", now)
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonMinuteQuotaExceeded, outcome.Reason)
	assert.Equal(t, time.Minute, outcome.RetryAfter)

	total, _ := store.usage("k1")
	assert.Equal(t, int64(10), total, "the denied 11th request must not be counted")

	// The next epoch admits again, drawing down the remaining daily budget.
	outcome = gate.Admit(context.Background(), "k1", now.Add(time.Minute))
	assert.True(t, outcome.Allowed)
	total, _ = store.usage("k1")
	assert.Equal(t, int64(11), total)
}

func TestAdmitStoreFailureFailsClosed(t *testing.T) {
	store := newFakeStore(activeKey("k1", "free"))
	store.findErr = errors.New("deadline exceeded")
	gate := newTestGate(store)

	outcome := gate.Admit(context.Background(), "k1", time.Now())
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonStoreUnavailable, outcome.Reason)
}

func TestAdmitRecordFailureFailsClosed(t *testing.T) {
	store := newFakeStore(activeKey("k1", "free"))
	store.recErr = errors.New("deadline exceeded")
	gate := newTestGate(store)

	outcome := gate.Admit(context.Background(), "k1", time.Now())
	assert.False(t, outcome.Allowed)
	assert.Equal(t, ReasonStoreUnavailable, outcome.Reason)
}

func TestAdmitSurvivesCancelledCaller(t *testing.T) {
	store := newFakeStore(activeKey("k1", "free"))
	gate := newTestGate(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Usage recording runs on a cancellation-detached context; an already
	// cancelled caller still gets counted once it reaches recording.
	outcome := gate.Admit(ctx, "k1", time.Now())
	assert.True(t, outcome.Allowed)

	total, _ := store.usage("k1")
	assert.Equal(t, int64(1), total)
}

func TestAdmitUnknownTierUsesFreePolicy(t *testing.T) {
	store := newFakeStore(activeKey("k1", "platinum"))
	gate := newTestGate(store)

	outcome := gate.Admit(context.Background(), "k1", time.Now())
	require.True(t, outcome.Allowed)
	assert.Equal(t, 20, outcome.MaxResults)
}
