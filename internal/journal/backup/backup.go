// Package backup exports the journal to a single JSON archive and restores
// it. The archive embeds blob payloads as base64 so one file carries the
// whole dataset.
package backup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/distincto/journal/internal/journal/blob"
	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/store"
	"github.com/distincto/journal/internal/logging"
)

// ArchiveVersion is bumped when the archive layout changes.
const ArchiveVersion = 1

// Image is a blob snapshot inside an archive.
type Image struct {
	Path        string `json:"path"`
	Base64Data  string `json:"base64Data"`
	ContentType string `json:"contentType"`
}

// Archive is the full backup payload. Child profiles travel implicitly via
// the childName field on each record and are not archived separately.
type Archive struct {
	Version        int                    `json:"version"`
	Timestamp      int64                  `json:"timestamp"`
	JournalEntries []*models.JournalEntry `json:"journalEntries"`
	FoodItems      []*models.FoodItem     `json:"foodItems"`
	Reports        []*models.Report       `json:"reports"`
	Images         []Image                `json:"images"`
}

// Manager builds and restores archives.
type Manager struct {
	store  *store.Store
	blobs  *blob.Store
	logger logging.Logger

	// now is a seam for tests.
	now func() time.Time
}

func NewManager(s *store.Store, b *blob.Store, logger logging.Logger) *Manager {
	return &Manager{store: s, blobs: b, logger: logger, now: time.Now}
}

// Export snapshots every record and blob into an archive.
func (m *Manager) Export(ctx context.Context) (*Archive, error) {
	entries, err := m.store.Entries.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export journal entries: %w", err)
	}
	foodItems, err := m.store.FoodItems.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export food items: %w", err)
	}
	reports, err := m.store.Reports.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export reports: %w", err)
	}

	infos, err := m.blobs.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}
	images := make([]Image, 0, len(infos))
	for _, info := range infos {
		b, err := m.blobs.Get(ctx, info.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to export blob %q: %w", info.Path, err)
		}
		if b == nil {
			continue
		}
		images = append(images, Image{
			Path:        info.Path,
			Base64Data:  base64.StdEncoding.EncodeToString(b.Data),
			ContentType: info.ContentType,
		})
	}

	return &Archive{
		Version:        ArchiveVersion,
		Timestamp:      m.now().UnixMilli(),
		JournalEntries: entries,
		FoodItems:      foodItems,
		Reports:        reports,
		Images:         images,
	}, nil
}

// Import replaces the current dataset with the archive's: existing records
// and blobs are wiped, blobs restored first so record paths resolve the
// moment records appear, then records with their original ids.
func (m *Manager) Import(ctx context.Context, archive *Archive) error {
	if archive == nil {
		return fmt.Errorf("nil archive")
	}
	if archive.Version > ArchiveVersion {
		return fmt.Errorf("archive version %d is newer than supported %d", archive.Version, ArchiveVersion)
	}

	if err := m.store.DeleteAllData(ctx); err != nil {
		return fmt.Errorf("failed to wipe records: %w", err)
	}
	if err := m.blobs.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe blobs: %w", err)
	}

	for _, img := range archive.Images {
		data, err := base64.StdEncoding.DecodeString(img.Base64Data)
		if err != nil {
			return fmt.Errorf("failed to decode blob %q: %w", img.Path, err)
		}
		owner, filename := splitPath(img.Path)
		if _, err := m.blobs.Save(ctx, owner, filename, data, img.ContentType); err != nil {
			return fmt.Errorf("failed to restore blob %q: %w", img.Path, err)
		}
	}

	for _, entry := range archive.JournalEntries {
		if _, err := m.store.Entries.Save(ctx, entry); err != nil {
			return fmt.Errorf("failed to restore journal entry %d: %w", entry.ID, err)
		}
	}
	for _, item := range archive.FoodItems {
		if _, err := m.store.FoodItems.Save(ctx, item); err != nil {
			return fmt.Errorf("failed to restore food item %d: %w", item.ID, err)
		}
	}
	for _, report := range archive.Reports {
		if _, err := m.store.Reports.Create(ctx, report); err != nil {
			return fmt.Errorf("failed to restore report %d: %w", report.ID, err)
		}
	}

	m.logger.Info(ctx, "archive imported",
		"entries", len(archive.JournalEntries),
		"food_items", len(archive.FoodItems),
		"reports", len(archive.Reports),
		"blobs", len(archive.Images))
	return nil
}

// WriteFile serializes the archive into dir, creating it when absent, and
// returns the written file path.
func (m *Manager) WriteFile(ctx context.Context, dir string) (string, error) {
	archive, err := m.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := fmt.Sprintf("journal-backup-%s.json", m.now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	return path, nil
}

// ReadFile loads an archive from disk and imports it.
func (m *Manager) ReadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}
	archive := &Archive{}
	if err := json.Unmarshal(data, archive); err != nil {
		return fmt.Errorf("failed to decode archive: %w", err)
	}
	return m.Import(ctx, archive)
}

func splitPath(path string) (owner, filename string) {
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return "", path
}
