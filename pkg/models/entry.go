package models

import "time"

// VocabularyEntry represents one word or phrase to be learned
type VocabularyEntry struct {
	ID         string `json:"id"`
	SourceText string `json:"source_text"` // English term
	TargetText string `json:"target_text"` // Hindi translation

	// Presentational metadata, passed through unchanged
	Phonetic   string `json:"phonetic,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Example    string `json:"example,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Icon       string `json:"icon,omitempty"`

	MasteryLevel float64    `json:"mastery_level"`           // 0.0 - 1.0
	LastReviewed *time.Time `json:"last_reviewed,omitempty"` // nil until the first review
	ReviewCount  int        `json:"review_count"`
}
