package reports

import (
	"context"

	"github.com/distincto/journal/internal/journal/models"
)

// Repository describes persistence for generated reports. Reports are
// append-only: there is no update or single-row delete.
type Repository interface {
	// Create inserts the report and returns its assigned id. When the
	// report carries a non-zero id (backup restore) that id is preserved.
	Create(ctx context.Context, report *models.Report) (int64, error)

	// GetByID returns the report, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id int64) (*models.Report, error)

	GetAll(ctx context.Context) ([]*models.Report, error)

	// GetAllByChild filters on the indexed child_name column, falling back
	// to scan+filter when the indexed query fails.
	GetAllByChild(ctx context.Context, childName string) ([]*models.Report, error)

	DeleteAll(ctx context.Context) error
}
