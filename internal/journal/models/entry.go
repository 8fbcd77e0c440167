package models

import "time"

// JournalEntry is one dated observation for a child. All note fields are
// optional free text. MedicationNotes is persisted as ciphertext produced
// by the cryptox transform; the store never sees the plaintext.
type JournalEntry struct {
	ID        int64  `json:"id,omitempty"`
	ChildName string `json:"childName"`

	// Timestamp is Unix milliseconds; Date is the derived YYYY-MM-DD
	// string used for grouping. The store fills Date from Timestamp when
	// it is empty.
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`

	MedicationNotes       string `json:"medicationNotes,omitempty"`
	EducationNotes        string `json:"educationNotes,omitempty"`
	SocialEngagementNotes string `json:"socialEngagementNotes,omitempty"`
	SensoryProfileNotes   string `json:"sensoryProfileNotes,omitempty"`
	FoodNutritionNotes    string `json:"foodNutritionNotes,omitempty"`
	BehavioralNotes       string `json:"behavioralNotes,omitempty"`
	SleepNotes            string `json:"sleepNotes,omitempty"`
	GeneralNotes          string `json:"generalNotes,omitempty"`

	// VoiceRecordingPath is a blob-store path ("<child>/<file>"). The
	// repository never cascades into the blob store; the service layer
	// deletes the two in lockstep.
	VoiceRecordingPath string `json:"voiceRecordingPath,omitempty"`
	Transcription      string `json:"transcription,omitempty"`
	MagicMoments       string `json:"magicMoments,omitempty"`

	Synced bool `json:"synced"`
}

// DateFromTimestamp derives the canonical YYYY-MM-DD date string from a
// Unix-millisecond timestamp, in UTC.
func DateFromTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}
