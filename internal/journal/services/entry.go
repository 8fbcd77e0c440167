// Package services contains the thin use-case layer over the repositories:
// the cross-store rules (record plus blob lifecycles, encryption of
// sensitive fields, sync flag resets) live here rather than in the stores.
package services

import (
	"context"
	"fmt"

	"github.com/distincto/journal/internal/cryptox"
	"github.com/distincto/journal/internal/journal/blob"
	"github.com/distincto/journal/internal/journal/models"
	"github.com/distincto/journal/internal/journal/repositories/entries"
	"github.com/distincto/journal/internal/logging"
)

// EntryService manages journal entries and their voice-recording blobs.
// Medication notes are encrypted before they reach the store and decrypted
// on the way out.
type EntryService struct {
	repo   entries.Repository
	blobs  *blob.Store
	key    []byte
	logger logging.Logger
}

func NewEntryService(repo entries.Repository, blobs *blob.Store, key []byte, logger logging.Logger) *EntryService {
	return &EntryService{repo: repo, blobs: blobs, key: key, logger: logger}
}

// Save persists the entry with its medication notes encrypted and the synced
// flag cleared, so the next sync round picks it up. The caller's entry is
// not mutated beyond the assigned id.
func (s *EntryService) Save(ctx context.Context, entry *models.JournalEntry) (int64, error) {
	stored := *entry
	if stored.MedicationNotes != "" {
		encrypted, err := cryptox.EncryptString(stored.MedicationNotes, s.key)
		if err != nil {
			return 0, fmt.Errorf("failed to encrypt medication notes: %w", err)
		}
		stored.MedicationNotes = encrypted
	}
	stored.Synced = false

	id, err := s.repo.Save(ctx, &stored)
	if err != nil {
		return 0, err
	}
	entry.ID = id
	return id, nil
}

// Get returns the entry with medication notes decrypted, or (nil, nil) when
// it does not exist.
func (s *EntryService) Get(ctx context.Context, id int64) (*models.JournalEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil || entry == nil {
		return entry, err
	}
	if entry.MedicationNotes != "" {
		plain, err := cryptox.DecryptString(entry.MedicationNotes, s.key)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt medication notes: %w", err)
		}
		entry.MedicationNotes = plain
	}
	return entry, nil
}

// ListByChild returns the child's entries without decrypting note fields;
// overview listings do not show medication notes.
func (s *EntryService) ListByChild(ctx context.Context, childName string) ([]*models.JournalEntry, error) {
	return s.repo.GetAllByChild(ctx, childName)
}

// Delete removes the entry and, when one is attached, its voice recording.
// The record goes first; a failed blob delete leaves an orphan blob rather
// than a dangling record reference.
func (s *EntryService) Delete(ctx context.Context, id int64) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if entry.VoiceRecordingPath != "" {
		if err := s.blobs.Delete(ctx, entry.VoiceRecordingPath); err != nil {
			s.logger.Warn(ctx, "failed to delete voice recording", "path", entry.VoiceRecordingPath, "error", err)
		}
	}
	return nil
}

// AttachRecording stores the audio blob and links its path on the entry.
func (s *EntryService) AttachRecording(ctx context.Context, entry *models.JournalEntry, data []byte, contentType string) error {
	path, err := s.blobs.Save(ctx, entry.ChildName, "", data, contentType)
	if err != nil {
		return err
	}
	entry.VoiceRecordingPath = path
	_, err = s.Save(ctx, entry)
	return err
}
