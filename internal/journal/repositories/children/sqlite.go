package children

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/dbx"
	"github.com/distincto/journal/internal/journal/models"
)

const childColumns = `id, name, date_of_birth, identifies_as, biography`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, child *models.Child) (int64, error) {
	if child.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO children (name, date_of_birth, identifies_as, biography) VALUES (?, ?, ?, ?)`,
			child.Name, child.DateOfBirth, child.IdentifiesAs, child.Biography)
		if err != nil {
			return 0, fmt.Errorf("failed to insert child: %w", common.ClassifyWriteError(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get inserted child id: %w", err)
		}
		child.ID = id
		return id, nil
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO children (`+childColumns+`) VALUES (?, ?, ?, ?, ?)`,
		child.ID, child.Name, child.DateOfBirth, child.IdentifiesAs, child.Biography)
	if err != nil {
		return 0, fmt.Errorf("failed to replace child: %w", common.ClassifyWriteError(err))
	}
	return child.ID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Child, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+childColumns+` FROM children WHERE id = ?`, id)
	child := &models.Child{}
	err := row.Scan(&child.ID, &child.Name, &child.DateOfBirth, &child.IdentifiesAs, &child.Biography)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Child, error) {
	return r.query(ctx, `SELECT `+childColumns+` FROM children`)
}

func (r *SQLiteRepository) GetAllByName(ctx context.Context, name string) ([]*models.Child, error) {
	result, err := r.query(ctx, `SELECT `+childColumns+` FROM children WHERE name = ?`, name)
	if err == nil {
		return result, nil
	}
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get children by name (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	filtered := make([]*models.Child, 0, len(all))
	for _, c := range all {
		if c.Name == name {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete child: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM children`); err != nil {
		return fmt.Errorf("failed to clear children: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Child, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select children: %w", err)
	}
	defer rows.Close()

	var result []*models.Child
	for rows.Next() {
		child := &models.Child{}
		if err := rows.Scan(&child.ID, &child.Name, &child.DateOfBirth, &child.IdentifiesAs, &child.Biography); err != nil {
			return nil, err
		}
		result = append(result, child)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
