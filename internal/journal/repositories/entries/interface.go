package entries

import (
	"context"

	"github.com/distincto/journal/internal/journal/models"
)

// Repository describes CRUD and sync-query operations for JournalEntry
// records. Implementations are backed by the local SQLite database.
type Repository interface {
	// Save inserts the entry when ID is zero (the store assigns the id and
	// writes it back) or fully replaces the stored row otherwise. The
	// derived date string is filled from the timestamp when empty. The
	// effective id is returned.
	Save(ctx context.Context, e *models.JournalEntry) (int64, error)

	// GetByID returns the entry, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.JournalEntry, error)

	// GetAll returns all entries in no guaranteed order.
	GetAll(ctx context.Context) ([]*models.JournalEntry, error)

	// GetAllByChild returns entries for the given denormalized child name.
	// If the indexed query fails it falls back to a full scan with an
	// in-memory filter rather than erroring.
	GetAllByChild(ctx context.Context, childName string) ([]*models.JournalEntry, error)

	// GetAllUnsynced returns entries whose local changes have not been
	// confirmed transmitted, with the same scan fallback as GetAllByChild.
	GetAllUnsynced(ctx context.Context) ([]*models.JournalEntry, error)

	// MarkSynced flips a single entry to synced. It is idempotent.
	MarkSynced(ctx context.Context, id int64) error

	// DeleteByID removes the entry; deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteAll wipes the collection (import overwrite).
	DeleteAll(ctx context.Context) error
}
