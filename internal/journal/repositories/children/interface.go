package children

import (
	"context"

	"github.com/distincto/journal/internal/journal/models"
)

// Repository describes CRUD operations for Child records.
type Repository interface {
	// Save inserts when ID is zero, fully replaces otherwise. Returns the
	// effective id.
	Save(ctx context.Context, child *models.Child) (int64, error)

	// GetByID returns the child, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.Child, error)

	GetAll(ctx context.Context) ([]*models.Child, error)

	// GetAllByName filters on the indexed name column, falling back to
	// scan+filter when the indexed query fails. Names are not unique.
	GetAllByName(ctx context.Context, name string) ([]*models.Child, error)

	// DeleteByID removes the child; deleting a missing id is not an error.
	DeleteByID(ctx context.Context, id int64) error

	DeleteAll(ctx context.Context) error
}
