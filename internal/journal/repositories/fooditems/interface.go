package fooditems

import (
	"context"

	"github.com/distincto/journal/internal/journal/models"
)

// Repository describes CRUD and sync-query operations for FoodItem records.
type Repository interface {
	// Save inserts when ID is zero, fully replaces otherwise; derives the
	// date string from the timestamp when empty. Returns the effective id.
	Save(ctx context.Context, item *models.FoodItem) (int64, error)

	// GetByID returns the item, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.FoodItem, error)

	GetAll(ctx context.Context) ([]*models.FoodItem, error)

	// GetAllByChild filters by the denormalized child name, falling back
	// to scan+filter when the indexed query fails.
	GetAllByChild(ctx context.Context, childName string) ([]*models.FoodItem, error)

	GetAllUnsynced(ctx context.Context) ([]*models.FoodItem, error)

	// MarkSynced flips a single item to synced. Idempotent.
	MarkSynced(ctx context.Context, id int64) error

	// DeleteByID removes the item; deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id int64) error

	DeleteAll(ctx context.Context) error
}
