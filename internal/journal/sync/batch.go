package sync

import "github.com/distincto/journal/internal/journal/models"

// Batch is the payload pushed to the remote endpoint in one sync round. It
// carries only the record kinds that participate in sync; reports and
// children stay local.
type Batch struct {
	JournalEntries []*models.JournalEntry `json:"journalEntries,omitempty"`
	FoodItems      []*models.FoodItem     `json:"foodItems,omitempty"`
}

// Empty reports whether the batch carries no records.
func (b Batch) Empty() bool {
	return len(b.JournalEntries) == 0 && len(b.FoodItems) == 0
}

// Size returns the total number of records in the batch.
func (b Batch) Size() int {
	return len(b.JournalEntries) + len(b.FoodItems)
}
