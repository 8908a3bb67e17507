package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/example/vocabdrill/internal/config"
	"github.com/example/vocabdrill/internal/database"
	"github.com/example/vocabdrill/internal/spaced_repetition"
	"github.com/example/vocabdrill/internal/vocabulary"
	"github.com/example/vocabdrill/pkg/models"
)

// Store checkpoints learner progress between runs
type Store interface {
	// Load returns the last saved snapshot, or an empty one if nothing was saved yet
	Load(ctx context.Context) (*models.Snapshot, error)
	// Save replaces the stored snapshot
	Save(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// Open returns the store selected by cfg.Driver
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "json":
		return NewFileStore(cfg.Path), nil
	case "sqlite3":
		db, err := database.Connect("sqlite3", cfg.Path)
		if err != nil {
			return nil, err
		}
		return database.NewStore(db), nil
	case "postgres":
		db, err := database.Connect("postgres", cfg.DSN)
		if err != nil {
			return nil, err
		}
		return database.NewStore(db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// Capture copies the mastery state of entries into a snapshot
func Capture(entries []*models.VocabularyEntry, profile models.UserProfile, now time.Time) *models.Snapshot {
	snap := &models.Snapshot{
		Profile:  profile,
		Progress: make([]models.Progress, 0, len(entries)),
		SavedAt:  now,
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		p := models.Progress{
			EntryID:      e.ID,
			SourceText:   e.SourceText,
			MasteryLevel: e.MasteryLevel,
			ReviewCount:  e.ReviewCount,
		}
		if e.LastReviewed != nil {
			t := *e.LastReviewed
			p.LastReviewed = &t
		}
		snap.Progress = append(snap.Progress, p)
	}
	return snap
}

// Merge reattaches saved progress to freshly loaded entries and returns how
// many entries were updated. Records are joined by entry ID; records saved
// without an ID fall back to the normalized source text.
func Merge(entries []*models.VocabularyEntry, progress []models.Progress) int {
	byID := make(map[string]models.Progress, len(progress))
	bySource := make(map[string]models.Progress)
	for _, p := range progress {
		if p.EntryID != "" {
			byID[p.EntryID] = p
			continue
		}
		if key := vocabulary.Normalize(p.SourceText); key != "" {
			bySource[key] = p
		}
	}

	merged := 0
	for _, e := range entries {
		if e == nil {
			continue
		}
		p, ok := byID[e.ID]
		if !ok {
			p, ok = bySource[vocabulary.Normalize(e.SourceText)]
		}
		if !ok {
			continue
		}
		e.MasteryLevel = spaced_repetition.ClampMastery(p.MasteryLevel)
		e.ReviewCount = p.ReviewCount
		if e.ReviewCount < 0 {
			e.ReviewCount = 0
		}
		e.LastReviewed = nil
		if p.LastReviewed != nil {
			t := *p.LastReviewed
			e.LastReviewed = &t
		}
		merged++
	}
	return merged
}
