package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabdrill/pkg/models"
)

const progressColumns = "entry_id, source_text, mastery_level, last_reviewed, review_count"

// ProgressRepository handles database operations for per-entry mastery
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetAll returns every stored progress record
func (r *ProgressRepository) GetAll(ctx context.Context) ([]models.Progress, error) {
	progress := []models.Progress{}
	err := r.db.SelectContext(ctx, &progress, "SELECT "+progressColumns+" FROM progress ORDER BY entry_id")
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// Upsert creates or updates a progress record
func (r *ProgressRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, p models.Progress) error {
	query := ext.Rebind(`
		INSERT INTO progress (entry_id, source_text, mastery_level, last_reviewed, review_count, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (entry_id) DO UPDATE SET
			source_text = excluded.source_text,
			mastery_level = excluded.mastery_level,
			last_reviewed = excluded.last_reviewed,
			review_count = excluded.review_count,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := ext.ExecContext(ctx, query, p.EntryID, p.SourceText, p.MasteryLevel, p.LastReviewed, p.ReviewCount); err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", p.EntryID, err)
	}
	return nil
}
