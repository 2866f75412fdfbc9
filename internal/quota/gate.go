package quota

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/itskundan-01/Finance-News-API/internal/types"
)

// CredentialStore is the slice of the key store the gate needs. The store
// may be remote and concurrently shared by other processes; RecordUsage
// must apply its increments atomically on the store side.
type CredentialStore interface {
	FindByKey(ctx context.Context, key string) (*types.APIKey, error)
	RecordUsage(ctx context.Context, key, day string) error
}

// Reason explains why a request was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingKey
	ReasonInvalidKey
	ReasonDailyQuotaExceeded
	ReasonMinuteQuotaExceeded
	ReasonStoreUnavailable
)

func (r Reason) String() string {
	switch r {
	case ReasonMissingKey:
		return "missing API key"
	case ReasonInvalidKey:
		return "invalid or inactive API key"
	case ReasonDailyQuotaExceeded:
		return "daily rate limit exceeded"
	case ReasonMinuteQuotaExceeded:
		return "rate limit exceeded"
	case ReasonStoreUnavailable:
		return "key store unavailable"
	}
	return "admitted"
}

// Outcome is the result of one admission decision. On admission MaxResults
// carries the tier's result-set cap and usage has already been recorded; on
// rejection RetryAfter carries the machine-readable backoff hint for the
// quota reasons.
type Outcome struct {
	Allowed    bool
	Reason     Reason
	RetryAfter time.Duration
	MaxResults int
	Policy     Policy
	Credential *types.APIKey
}

// Gate composes the per-request admission decision: credential validity,
// daily quota, minute window, then usage recording. Checks run in that
// order so an exhausted day is reported as such even when the minute limit
// would also trip, and a rejected request never consumes any budget.
type Gate struct {
	store        CredentialStore
	tiers        *Tiers
	window       *WindowTracker
	storeTimeout time.Duration
}

const defaultStoreTimeout = 2 * time.Second

// NewGate builds an admission gate over the given store and tier table.
func NewGate(store CredentialStore, tiers *Tiers, window *WindowTracker) *Gate {
	return &Gate{
		store:        store,
		tiers:        tiers,
		window:       window,
		storeTimeout: defaultStoreTimeout,
	}
}

// Admit decides whether the request presenting key may proceed at time now.
func (g *Gate) Admit(ctx context.Context, key string, now time.Time) Outcome {
	if key == "" {
		return Outcome{Reason: ReasonMissingKey}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	cred, err := g.store.FindByKey(lookupCtx, key)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return Outcome{Reason: ReasonInvalidKey}
		}
		// Fail closed: without a readable quota state we cannot admit.
		log.Printf("admission: key lookup failed: %v", err)
		return Outcome{Reason: ReasonStoreUnavailable}
	}
	if !cred.IsActive {
		return Outcome{Reason: ReasonInvalidKey}
	}

	policy := g.tiers.Resolve(cred.Tier)
	day := now.Format(types.DayKey)

	if cred.DailyCount(day) >= policy.RequestsPerDay {
		return Outcome{
			Reason:     ReasonDailyQuotaExceeded,
			RetryAfter: untilEndOfDay(now),
			Policy:     policy,
			Credential: cred,
		}
	}

	if !g.window.TryIncrement(key, policy.RequestsPerMinute, now) {
		return Outcome{
			Reason:     ReasonMinuteQuotaExceeded,
			RetryAfter: time.Minute,
			Policy:     policy,
			Credential: cred,
		}
	}

	// Recording is detached from the request's cancellation: once applied
	// it is never rolled back, and a cancelled caller must not abort the
	// write mid-flight.
	recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(ctx), g.storeTimeout)
	defer cancelRecord()

	if err := g.store.RecordUsage(recordCtx, key, day); err != nil {
		log.Printf("admission: usage recording failed for key %s...: %v", key[:min(8, len(key))], err)
		return Outcome{Reason: ReasonStoreUnavailable, Policy: policy, Credential: cred}
	}

	return Outcome{
		Allowed:    true,
		MaxResults: policy.MaxResultsPerRequest,
		Policy:     policy,
		Credential: cred,
	}
}

// untilEndOfDay returns the remainder of the local calendar day, the
// retry-after hint for a spent daily quota.
func untilEndOfDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}
