// Package models defines the record types held by the structured store.
package models

// Child is the identity root for journal entries and food items.
//
// Entries and food items reference a child by the denormalized ChildName
// string rather than by id; renaming a child does not cascade, and nothing
// enforces consistency of the copies.
type Child struct {
	// ID is assigned by the store on first insert and never reassigned.
	ID int64 `json:"id,omitempty"`

	Name         string `json:"name"`
	DateOfBirth  string `json:"dob,omitempty"` // YYYY-MM-DD
	IdentifiesAs string `json:"identifiesAs,omitempty"`
	Biography    string `json:"biography,omitempty"`
}
