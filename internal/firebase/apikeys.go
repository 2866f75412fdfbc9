package firebase

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/itskundan-01/Finance-News-API/internal/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CreateAPIKey mints a credential at the given tier and persists it. The
// document ID is the key itself, so Firestore's create precondition gives
// the uniqueness check for free; on the astronomically unlikely collision
// a fresh key is generated and the insert retried.
func (c *Firestore) CreateAPIKey(ctx context.Context, ownerEmail, ownerName, tier string) (*types.APIKey, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := types.GenerateKey()
		if err != nil {
			return nil, err
		}

		record := types.APIKey{
			Key:           key,
			OwnerEmail:    ownerEmail,
			OwnerName:     ownerName,
			Tier:          tier,
			IsActive:      true,
			CreatedAt:     time.Now(),
			DailyRequests: map[string]int64{},
		}

		_, err = c.Collection(apiKeysCollection).Doc(key).Create(ctx, record)
		if err != nil {
			if status.Code(err) == codes.AlreadyExists {
				continue
			}
			return nil, fmt.Errorf("failed to store API key: %w", err)
		}
		return &record, nil
	}

	return nil, fmt.Errorf("failed to store API key: %w", types.ErrDuplicateKey)
}

// FindAPIKey retrieves a credential by its key. Returns types.ErrNotFound
// when no such key exists.
func (c *Firestore) FindAPIKey(ctx context.Context, key string) (*types.APIKey, error) {
	doc, err := c.Collection(apiKeysCollection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	var record types.APIKey
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode API key: %w", err)
	}

	return &record, nil
}

// FindByKey adapts FindAPIKey to the admission gate's store contract.
func (c *Firestore) FindByKey(ctx context.Context, key string) (*types.APIKey, error) {
	return c.FindAPIKey(ctx, key)
}

// FindAPIKeysByOwner returns every credential, active or revoked, held by
// the owner. Order is unspecified.
func (c *Firestore) FindAPIKeysByOwner(ctx context.Context, ownerEmail string) ([]*types.APIKey, error) {
	iter := c.Collection(apiKeysCollection).Where("owner_email", "==", ownerEmail).Documents(ctx)
	defer iter.Stop()

	var records []*types.APIKey
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate API keys: %w", err)
		}

		var record types.APIKey
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("failed to decode API key: %w", err)
		}
		records = append(records, &record)
	}

	return records, nil
}

// DeactivateAPIKey revokes a credential. Revocation is final: the record
// stays behind with is_active=false and is never flipped back or deleted.
// Idempotent; deactivating an unknown or already-revoked key is a no-op.
func (c *Firestore) DeactivateAPIKey(ctx context.Context, key string) error {
	_, err := c.Collection(apiKeysCollection).Doc(key).Update(ctx, []firestore.Update{
		{Path: "is_active", Value: false},
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to deactivate API key: %w", err)
	}
	return nil
}

// RecordUsage counts one admitted request against the credential: one
// server-side atomic update incrementing total_requests and the day's
// entry in daily_requests, and stamping last_used_at. Concurrent requests
// against the same key never lose increments because the store applies
// them, not a read-modify-write on the client.
func (c *Firestore) RecordUsage(ctx context.Context, key, day string) error {
	_, err := c.Collection(apiKeysCollection).Doc(key).Update(ctx, []firestore.Update{
		{Path: "total_requests", Value: firestore.Increment(1)},
		{FieldPath: firestore.FieldPath{"daily_requests", day}, Value: firestore.Increment(1)},
		{Path: "last_used_at", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to record API key usage: %w", err)
	}
	return nil
}
