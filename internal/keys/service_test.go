package keys

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itskundan-01/Finance-News-API/internal/quota"
	"github.com/itskundan-01/Finance-News-API/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory key store mirroring the Firestore contract.
type fakeStore struct {
	keys      map[string]*types.APIKey
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: make(map[string]*types.APIKey)}
}

func (s *fakeStore) CreateAPIKey(_ context.Context, ownerEmail, ownerName, tier string) (*types.APIKey, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	key, err := types.GenerateKey()
	if err != nil {
		return nil, err
	}
	record := &types.APIKey{
		Key:           key,
		OwnerEmail:    ownerEmail,
		OwnerName:     ownerName,
		Tier:          tier,
		IsActive:      true,
		CreatedAt:     time.Now(),
		DailyRequests: map[string]int64{},
	}
	s.keys[key] = record
	return record, nil
}

func (s *fakeStore) FindAPIKey(_ context.Context, key string) (*types.APIKey, error) {
	record, ok := s.keys[key]
	if !ok {
		return nil, types.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) FindAPIKeysByOwner(_ context.Context, ownerEmail string) ([]*types.APIKey, error) {
	var records []*types.APIKey
	for _, record := range s.keys {
		if record.OwnerEmail == ownerEmail {
			records = append(records, record)
		}
	}
	return records, nil
}

func (s *fakeStore) DeactivateAPIKey(_ context.Context, key string) error {
	if record, ok := s.keys[key]; ok {
		record.IsActive = false
	}
	return nil
}

func (s *fakeStore) activeKeys(ownerEmail string) []*types.APIKey {
	var active []*types.APIKey
	for _, record := range s.keys {
		if record.OwnerEmail == ownerEmail && record.IsActive {
			active = append(active, record)
		}
	}
	return active
}

func newTestService(store Store) *Service {
	return NewService(store, quota.DefaultTiers())
}

func TestIssueIsIdempotentPerOwner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, created, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "free", first.Tier)
	assert.True(t, first.IsActive)
	assert.Len(t, first.Key, 32)

	second, created, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)
	assert.False(t, created, "second issue must not mint a new key")
	assert.Equal(t, first.Key, second.Key)
	assert.Len(t, store.activeKeys("a@example.com"), 1)
}

func TestIssueAfterRevocationMintsFresh(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, _, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)
	require.NoError(t, store.DeactivateAPIKey(ctx, first.Key))

	second, created, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.Key, second.Key)
}

func TestIssueTierRejectsUnknownTier(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.IssueTier(context.Background(), "a@example.com", "Alice", "platinum")
	assert.Error(t, err)
}

func TestIssueTierAlwaysMints(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.IssueTier(ctx, "a@example.com", "Alice", "premium")
	require.NoError(t, err)
	second, err := svc.IssueTier(ctx, "a@example.com", "Alice", "premium")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Len(t, store.activeKeys("a@example.com"), 2)
}

func TestRegenerateLeavesExactlyOneActiveKey(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	old1, err := svc.IssueTier(ctx, "a@example.com", "Alice", "free")
	require.NoError(t, err)
	old2, err := svc.IssueTier(ctx, "a@example.com", "Alice", "basic")
	require.NoError(t, err)

	fresh, err := svc.Regenerate(ctx, "a@example.com")
	require.NoError(t, err)

	active := store.activeKeys("a@example.com")
	require.Len(t, active, 1)
	assert.Equal(t, fresh.Key, active[0].Key)
	assert.Equal(t, "free", fresh.Tier)
	assert.False(t, store.keys[old1.Key].IsActive)
	assert.False(t, store.keys[old2.Key].IsActive)
}

func TestRegenerateFailedIssueKeepsOldKeys(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	old, _, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)

	store.createErr = errors.New("store down")
	_, err = svc.Regenerate(ctx, "a@example.com")
	require.Error(t, err)

	assert.True(t, store.keys[old.Key].IsActive, "a failed issuance must not strand the owner without keys")
}

func TestRevokeOwnKey(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	key, _, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, key.Key, "a@example.com", false))
	assert.False(t, store.keys[key.Key].IsActive)

	// Idempotent at the store level.
	assert.NoError(t, svc.Revoke(ctx, key.Key, "a@example.com", false))
}

func TestRevokeSomeoneElsesKeyFails(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	key, _, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)

	err = svc.Revoke(ctx, key.Key, "b@example.com", false)
	assert.ErrorIs(t, err, types.ErrNotOwner)
	assert.True(t, store.keys[key.Key].IsActive)
}

func TestRevokePrivilegedSkipsOwnershipCheck(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	key, _, err := svc.Issue(ctx, "a@example.com", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, key.Key, "", true))
	assert.False(t, store.keys[key.Key].IsActive)
}

func TestRevokeUnknownKey(t *testing.T) {
	svc := newTestService(newFakeStore())

	err := svc.Revoke(context.Background(), "missing", "a@example.com", false)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
