package models

import "time"

// Progress is the persisted mastery state of a single entry
type Progress struct {
	EntryID      string     `json:"id" db:"entry_id"`
	SourceText   string     `json:"source_text" db:"source_text"` // kept so legacy files without IDs can still be joined
	MasteryLevel float64    `json:"mastery_level" db:"mastery_level"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty" db:"last_reviewed"`
	ReviewCount  int        `json:"review_count" db:"review_count"`
}
