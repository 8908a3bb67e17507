package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabdrill/pkg/models"
)

// Store checkpoints snapshots into SQL tables
type Store struct {
	db       *sqlx.DB
	progress *ProgressRepository
	profile  *ProfileRepository
	quizzes  *QuizResultRepository
}

// NewStore wraps an open connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		progress: NewProgressRepository(db),
		profile:  NewProfileRepository(db),
		quizzes:  NewQuizResultRepository(db),
	}
}

// Load reads the profile and every progress row
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	profile, savedAt, err := s.profile.Get(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{Profile: profile, Progress: progress}
	if savedAt != nil {
		snap.SavedAt = *savedAt
	}
	return snap, nil
}

// Save upserts the profile and all progress rows in one transaction
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.profile.Upsert(ctx, tx, snap.Profile, snap.SavedAt); err != nil {
		return err
	}
	for _, p := range snap.Progress {
		if err := s.progress.Upsert(ctx, tx, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// RecordQuiz stores a finished quiz
func (s *Store) RecordQuiz(ctx context.Context, result *models.QuizResult) error {
	return s.quizzes.Create(ctx, result)
}

// RecentQuizzes returns the latest quiz results, newest first
func (s *Store) RecentQuizzes(ctx context.Context, limit int) ([]models.QuizResult, error) {
	return s.quizzes.Recent(ctx, limit)
}

// QuizSummary returns totals over every recorded quiz
func (s *Store) QuizSummary(ctx context.Context) (models.QuizSummary, error) {
	return s.quizzes.Summary(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
