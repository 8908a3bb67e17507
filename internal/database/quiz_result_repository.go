package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabdrill/pkg/models"
)

// QuizResultRepository handles database operations for quiz results
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a new quiz result and fills in its ID
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.Duration == 0 && result.FinishedAt.After(result.StartedAt) {
		result.Duration = int(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}
	query := r.db.Rebind(`
		INSERT INTO quiz_results (session_id, total, correct, started_at, finished_at, duration)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		result.SessionID,
		result.Total,
		result.Correct,
		result.StartedAt,
		result.FinishedAt,
		result.Duration,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// Recent returns the latest results, newest first
func (r *QuizResultRepository) Recent(ctx context.Context, limit int) ([]models.QuizResult, error) {
	results := []models.QuizResult{}
	query := r.db.Rebind(`
		SELECT id, session_id, total, correct, started_at, finished_at, duration
		FROM quiz_results ORDER BY finished_at DESC, id DESC LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &results, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}

// Summary returns totals over every recorded quiz
func (r *QuizResultRepository) Summary(ctx context.Context) (models.QuizSummary, error) {
	var s models.QuizSummary
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS quizzes,
			COALESCE(SUM(total), 0) AS questions,
			COALESCE(SUM(correct), 0) AS correct
		FROM quiz_results
	`)
	if err != nil {
		return models.QuizSummary{}, fmt.Errorf("failed to get quiz summary: %w", err)
	}
	return s, nil
}
