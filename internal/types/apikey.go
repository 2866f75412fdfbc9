package types

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// APIKey is the durable credential record gating access to the news feed.
// A key is never deleted; revocation flips IsActive to false and leaves the
// record behind for auditing.
type APIKey struct {
	Key           string           `firestore:"key" json:"key"`
	OwnerEmail    string           `firestore:"owner_email" json:"owner_email"`
	OwnerName     string           `firestore:"owner_name" json:"owner_name"`
	Tier          string           `firestore:"tier" json:"tier"`
	IsActive      bool             `firestore:"is_active" json:"is_active"`
	CreatedAt     time.Time        `firestore:"created_at" json:"created_at"`
	LastUsedAt    time.Time        `firestore:"last_used_at" json:"last_used_at"`
	TotalRequests int64            `firestore:"total_requests" json:"total_requests"`
	DailyRequests map[string]int64 `firestore:"daily_requests" json:"daily_requests"`
}

// DayKey is the time layout for calendar-day entries in DailyRequests.
// The day is computed from the server's local clock, once per request.
const DayKey = "2006-01-02"

// DailyCount returns the recorded request count for the given day.
func (k *APIKey) DailyCount(day string) int64 {
	return k.DailyRequests[day]
}

const (
	keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyLength   = 32
)

// GenerateKey mints an opaque API key from a cryptographically strong
// random source.
func GenerateKey() (string, error) {
	max := big.NewInt(int64(len(keyAlphabet)))
	buf := make([]byte, keyLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate key: %w", err)
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
