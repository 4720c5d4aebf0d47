package integration

import (
	"context"
	"time"
)

// PlatformInstagram is the fixed platform discriminator for records
// written by this service.
const PlatformInstagram = "instagram"

// Status of an integration record.
type Status string

const StatusActive Status = "active"

// Account references a discovered Instagram account. ID is provider
// assigned and required; Username and Name are best-effort.
type Account struct {
	ID       string `json:"id" firestore:"id"`
	Username string `json:"username,omitempty" firestore:"username"`
	Name     string `json:"name,omitempty" firestore:"name,omitempty"`
}

// Record is the persisted integration, one per user id.
// APIKey is the server-generated handle downstream consumers use; it is
// independent of any provider token. CreatedAt is server-assigned and
// never rewritten on idempotent replay of the same flow.
type Record struct {
	UserID    string    `firestore:"user_uid"`
	Platform  string    `firestore:"platform"`
	APIKey    string    `firestore:"api_key"`
	Status    Status    `firestore:"status"`
	CreatedAt time.Time `firestore:"created_at,serverTimestamp"`
	Accounts  []Account `firestore:"instagram_accounts"`
}

// Store is the durable document store for integration records.
// Get returns (nil, nil) when no record exists. Upsert overwrites any
// prior record for the user id and assigns CreatedAt server-side.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, userID string, rec Record) error
}

// DedupAccounts removes duplicate accounts by id, first occurrence wins,
// order preserved.
func DedupAccounts(accounts []Account) []Account {
	seen := make(map[string]struct{}, len(accounts))
	out := accounts[:0:0]
	for _, a := range accounts {
		if a.ID == "" {
			continue
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
