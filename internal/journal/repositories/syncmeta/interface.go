package syncmeta

import "context"

// Repository is a small key/value store holding sync bookkeeping: the last
// successful sync time, the persisted pending flag and the sync lease.
type Repository interface {
	// Get returns the value for key, or ("", nil) when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// Delete removes the key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	List(ctx context.Context) (map[string]string, error)

	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeyLastSync    = "last_sync"
	KeyPendingSync = "pending_sync"
	KeyIsOnline    = "is_online"
	KeyLeaseOwner  = "lease_owner"
	KeyLeaseExpiry = "lease_expiry"
)
