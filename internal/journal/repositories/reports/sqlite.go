package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/dbx"
	"github.com/distincto/journal/internal/journal/models"
)

const reportColumns = `id, child_name, type, content, timestamp, generated_from`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// Report content and the generated_from id list are stored as JSON text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, report *models.Report) (int64, error) {
	content, err := json.Marshal(report.Content)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report content: %w", err)
	}
	generatedFrom, err := json.Marshal(report.GeneratedFrom)
	if err != nil {
		return 0, fmt.Errorf("failed to encode report sources: %w", err)
	}

	if report.ID != 0 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO reports (`+reportColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			report.ID, report.ChildName, string(report.Type), string(content), report.Timestamp, string(generatedFrom))
		if err != nil {
			return 0, fmt.Errorf("failed to insert report: %w", common.ClassifyWriteError(err))
		}
		return report.ID, nil
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (child_name, type, content, timestamp, generated_from) VALUES (?, ?, ?, ?, ?)`,
		report.ChildName, string(report.Type), string(content), report.Timestamp, string(generatedFrom))
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", common.ClassifyWriteError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted report id: %w", err)
	}
	report.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = ?`, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Report, error) {
	return r.query(ctx, `SELECT `+reportColumns+` FROM reports`)
}

func (r *SQLiteRepository) GetAllByChild(ctx context.Context, childName string) ([]*models.Report, error) {
	result, err := r.query(ctx, `SELECT `+reportColumns+` FROM reports WHERE child_name = ?`, childName)
	if err == nil {
		return result, nil
	}
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get reports by child (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	filtered := make([]*models.Report, 0, len(all))
	for _, report := range all {
		if report.ChildName == childName {
			filtered = append(filtered, report)
		}
	}
	return filtered, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reports`); err != nil {
		return fmt.Errorf("failed to clear reports: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reports: %w", err)
	}
	defer rows.Close()

	var result []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	report := &models.Report{}
	var reportType, content, generatedFrom string
	err := row.Scan(&report.ID, &report.ChildName, &reportType, &content, &report.Timestamp, &generatedFrom)
	if err != nil {
		return nil, err
	}
	report.Type = models.ReportType(reportType)
	if err := json.Unmarshal([]byte(content), &report.Content); err != nil {
		return nil, fmt.Errorf("failed to decode report content: %w", err)
	}
	if generatedFrom != "" && generatedFrom != "null" {
		if err := json.Unmarshal([]byte(generatedFrom), &report.GeneratedFrom); err != nil {
			return nil, fmt.Errorf("failed to decode report sources: %w", err)
		}
	}
	return report, nil
}
