package fooditems

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/dbx"
	"github.com/distincto/journal/internal/journal/models"
)

const foodColumns = `id, child_name, timestamp, date, name, category, notes, image_file, synced`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, item *models.FoodItem) (int64, error) {
	if item.Date == "" && item.Timestamp != 0 {
		item.Date = models.DateFromTimestamp(item.Timestamp)
	}

	args := []any{
		item.ChildName, item.Timestamp, item.Date,
		item.Name, string(item.Category), item.Notes, item.ImageFile, boolToInt(item.Synced),
	}

	if item.ID == 0 {
		query := `INSERT INTO food_items (child_name, timestamp, date, name, category, notes, image_file, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert food item: %w", common.ClassifyWriteError(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get inserted food item id: %w", err)
		}
		item.ID = id
		return id, nil
	}

	query := `INSERT OR REPLACE INTO food_items (` + foodColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, append([]any{item.ID}, args...)...); err != nil {
		return 0, fmt.Errorf("failed to replace food item: %w", common.ClassifyWriteError(err))
	}
	return item.ID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.FoodItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM food_items WHERE id = ?`, id)
	item, err := scanFoodItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.FoodItem, error) {
	return r.query(ctx, `SELECT `+foodColumns+` FROM food_items`)
}

func (r *SQLiteRepository) GetAllByChild(ctx context.Context, childName string) ([]*models.FoodItem, error) {
	result, err := r.query(ctx, `SELECT `+foodColumns+` FROM food_items WHERE child_name = ?`, childName)
	if err == nil {
		return result, nil
	}
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get food items by child (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	filtered := make([]*models.FoodItem, 0, len(all))
	for _, item := range all {
		if item.ChildName == childName {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (r *SQLiteRepository) GetAllUnsynced(ctx context.Context) ([]*models.FoodItem, error) {
	result, err := r.query(ctx, `SELECT `+foodColumns+` FROM food_items WHERE synced = 0`)
	if err == nil {
		return result, nil
	}
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get unsynced food items (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	pending := make([]*models.FoodItem, 0, len(all))
	for _, item := range all {
		if !item.Synced {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE food_items SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark food item synced: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete food item: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM food_items`); err != nil {
		return fmt.Errorf("failed to clear food items: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.FoodItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select food items: %w", err)
	}
	defer rows.Close()

	var result []*models.FoodItem
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFoodItem(row rowScanner) (*models.FoodItem, error) {
	item := &models.FoodItem{}
	var category string
	var synced int
	err := row.Scan(&item.ID, &item.ChildName, &item.Timestamp, &item.Date,
		&item.Name, &category, &item.Notes, &item.ImageFile, &synced)
	if err != nil {
		return nil, err
	}
	item.Category = models.FoodCategory(category)
	item.Synced = synced != 0
	return item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
