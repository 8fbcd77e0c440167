package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/distincto/journal/internal/common"
	"github.com/distincto/journal/internal/dbx"
	"github.com/distincto/journal/internal/journal/models"
)

const entryColumns = `id, child_name, timestamp, date,
	medication_notes, education_notes, social_engagement_notes, sensory_profile_notes,
	food_nutrition_notes, behavioral_notes, sleep_notes, general_notes,
	voice_recording_path, transcription, magic_moments, synced`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, e *models.JournalEntry) (int64, error) {
	if e.Date == "" && e.Timestamp != 0 {
		e.Date = models.DateFromTimestamp(e.Timestamp)
	}

	args := []any{
		e.ChildName, e.Timestamp, e.Date,
		e.MedicationNotes, e.EducationNotes, e.SocialEngagementNotes, e.SensoryProfileNotes,
		e.FoodNutritionNotes, e.BehavioralNotes, e.SleepNotes, e.GeneralNotes,
		e.VoiceRecordingPath, e.Transcription, e.MagicMoments, boolToInt(e.Synced),
	}

	if e.ID == 0 {
		query := `INSERT INTO journal_entries (child_name, timestamp, date,
			medication_notes, education_notes, social_engagement_notes, sensory_profile_notes,
			food_nutrition_notes, behavioral_notes, sleep_notes, general_notes,
			voice_recording_path, transcription, magic_moments, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert journal entry: %w", common.ClassifyWriteError(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get inserted entry id: %w", err)
		}
		e.ID = id
		return id, nil
	}

	query := `INSERT OR REPLACE INTO journal_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, append([]any{e.ID}, args...)...); err != nil {
		return 0, fmt.Errorf("failed to replace journal entry: %w", common.ClassifyWriteError(err))
	}
	return e.ID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.JournalEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.JournalEntry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM journal_entries`)
}

func (r *SQLiteRepository) GetAllByChild(ctx context.Context, childName string) ([]*models.JournalEntry, error) {
	result, err := r.query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE child_name = ?`, childName)
	if err == nil {
		return result, nil
	}
	// Defensive compatibility path: serve the filtered set from a full
	// scan rather than failing outright.
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get entries by child (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	filtered := make([]*models.JournalEntry, 0, len(all))
	for _, e := range all {
		if e.ChildName == childName {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (r *SQLiteRepository) GetAllUnsynced(ctx context.Context) ([]*models.JournalEntry, error) {
	result, err := r.query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE synced = 0`)
	if err == nil {
		return result, nil
	}
	all, fallbackErr := r.GetAll(ctx)
	if fallbackErr != nil {
		return nil, fmt.Errorf("failed to get unsynced entries (indexed and fallback): %w", errors.Join(err, fallbackErr))
	}
	pending := make([]*models.JournalEntry, 0, len(all))
	for _, e := range all {
		if !e.Synced {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE journal_entries SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark journal entry synced: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries`); err != nil {
		return fmt.Errorf("failed to clear journal entries: %w", common.ClassifyWriteError(err))
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select journal entries: %w", err)
	}
	defer rows.Close()

	var result []*models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.JournalEntry, error) {
	e := &models.JournalEntry{}
	var synced int
	err := row.Scan(&e.ID, &e.ChildName, &e.Timestamp, &e.Date,
		&e.MedicationNotes, &e.EducationNotes, &e.SocialEngagementNotes, &e.SensoryProfileNotes,
		&e.FoodNutritionNotes, &e.BehavioralNotes, &e.SleepNotes, &e.GeneralNotes,
		&e.VoiceRecordingPath, &e.Transcription, &e.MagicMoments, &synced)
	if err != nil {
		return nil, err
	}
	e.Synced = synced != 0
	return e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
