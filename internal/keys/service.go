// Package keys implements the credential lifecycle: self-service issuance,
// privileged issuance, regeneration, and revocation of API keys.
package keys

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/itskundan-01/Finance-News-API/internal/quota"
	"github.com/itskundan-01/Finance-News-API/internal/types"
)

// Store is the slice of the credential store the lifecycle needs.
type Store interface {
	CreateAPIKey(ctx context.Context, ownerEmail, ownerName, tier string) (*types.APIKey, error)
	FindAPIKey(ctx context.Context, key string) (*types.APIKey, error)
	FindAPIKeysByOwner(ctx context.Context, ownerEmail string) ([]*types.APIKey, error)
	DeactivateAPIKey(ctx context.Context, key string) error
}

// Service manages API key issuance and revocation on top of the store.
type Service struct {
	store Store
	tiers *quota.Tiers
}

// NewService builds a lifecycle service.
func NewService(store Store, tiers *quota.Tiers) *Service {
	return &Service{store: store, tiers: tiers}
}

// Issue is the self-service path: always free tier, and idempotent by
// owner — an owner who already holds an active key gets that key back
// instead of a second one.
func (s *Service) Issue(ctx context.Context, ownerEmail, ownerName string) (*types.APIKey, bool, error) {
	existing, err := s.store.FindAPIKeysByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up existing keys: %w", err)
	}
	for _, key := range existing {
		if key.IsActive {
			return key, false, nil
		}
	}

	key, err := s.store.CreateAPIKey(ctx, ownerEmail, ownerName, quota.FreeTier)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// IssueTier is the privileged path: mints a key at any configured tier,
// with no idempotence check. Unknown tier names are rejected rather than
// silently downgraded.
func (s *Service) IssueTier(ctx context.Context, ownerEmail, ownerName, tier string) (*types.APIKey, error) {
	if !s.tiers.Known(tier) {
		return nil, fmt.Errorf("unknown tier %q (valid tiers: %s)", tier, strings.Join(s.tiers.Names(), ", "))
	}
	return s.store.CreateAPIKey(ctx, ownerEmail, ownerName, tier)
}

// ListByOwner returns every key the owner holds, revoked ones included.
func (s *Service) ListByOwner(ctx context.Context, ownerEmail string) ([]*types.APIKey, error) {
	return s.store.FindAPIKeysByOwner(ctx, ownerEmail)
}

// Regenerate replaces the owner's keys with a fresh free-tier credential.
// The replacement is minted before the old keys are revoked, so a failed
// issuance never strands the owner with zero active keys. Afterwards
// exactly one credential is active: the new one.
func (s *Service) Regenerate(ctx context.Context, ownerEmail string) (*types.APIKey, error) {
	existing, err := s.store.FindAPIKeysByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing keys: %w", err)
	}

	ownerName := ownerEmail
	for _, key := range existing {
		if key.OwnerName != "" {
			ownerName = key.OwnerName
			break
		}
	}

	fresh, err := s.store.CreateAPIKey(ctx, ownerEmail, ownerName, quota.FreeTier)
	if err != nil {
		return nil, err
	}

	for _, key := range existing {
		if !key.IsActive {
			continue
		}
		if err := s.store.DeactivateAPIKey(ctx, key.Key); err != nil {
			// The fresh key is already live; log and keep revoking.
			log.Printf("keys: failed to deactivate %s... during regenerate: %v", key.Key[:8], err)
		}
	}

	return fresh, nil
}

// Revoke deactivates a key. Self-service callers may only revoke their own
// keys; privileged callers skip the ownership check. Returns
// types.ErrNotFound for unknown keys and types.ErrNotOwner when a
// self-service caller targets someone else's key.
func (s *Service) Revoke(ctx context.Context, key, requestingOwner string, privileged bool) error {
	record, err := s.store.FindAPIKey(ctx, key)
	if err != nil {
		return err
	}

	if !privileged && record.OwnerEmail != requestingOwner {
		return types.ErrNotOwner
	}

	return s.store.DeactivateAPIKey(ctx, record.Key)
}
