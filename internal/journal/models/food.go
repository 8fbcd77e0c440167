package models

// FoodCategory classifies a food item on the introduction journey. Any
// category is reachable from any other; moving an item between categories
// is a plain update, not a guarded workflow.
type FoodCategory string

const (
	FoodCategoryNew       FoodCategory = "new"
	FoodCategorySafe      FoodCategory = "safe"
	FoodCategorySometimes FoodCategory = "sometimes"
	FoodCategoryNotYet    FoodCategory = "notYet"
)

// Valid reports whether c is one of the four known categories.
func (c FoodCategory) Valid() bool {
	switch c {
	case FoodCategoryNew, FoodCategorySafe, FoodCategorySometimes, FoodCategoryNotYet:
		return true
	}
	return false
}

// FoodItem tracks one food on a child's introduction journey.
type FoodItem struct {
	ID        int64  `json:"id,omitempty"`
	ChildName string `json:"childName"`

	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date"`

	Name     string       `json:"name"`
	Category FoodCategory `json:"category"`
	Notes    string       `json:"notes,omitempty"`

	// ImageFile is a blob-store path; lifecycle is managed by the caller,
	// not the structured store.
	ImageFile string `json:"imageFile,omitempty"`

	Synced bool `json:"synced"`
}
