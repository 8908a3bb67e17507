package models

import "time"

// Snapshot is everything checkpointed between runs
type Snapshot struct {
	Profile  UserProfile `json:"profile"`
	Progress []Progress  `json:"progress"`
	SavedAt  time.Time   `json:"saved_at"`
}
