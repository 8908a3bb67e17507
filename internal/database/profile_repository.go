package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabdrill/pkg/models"
)

// The learner profile is a single row
const profileRowID = 1

type profileRow struct {
	models.UserProfile
	SavedAt *time.Time `db:"saved_at"`
}

// ProfileRepository handles database operations for the learner profile
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new repository instance
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the stored profile and when it was last saved.
// A fresh database yields a zero profile and a nil time.
func (r *ProfileRepository) Get(ctx context.Context) (models.UserProfile, *time.Time, error) {
	var row profileRow
	query := r.db.Rebind(`
		SELECT name, dark_mode, daily_goal, streak_days, last_session, saved_at
		FROM profile WHERE id = ?
	`)
	err := r.db.GetContext(ctx, &row, query, profileRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, nil, nil
	}
	if err != nil {
		return models.UserProfile{}, nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return row.UserProfile, row.SavedAt, nil
}

// Upsert creates or updates the profile row
func (r *ProfileRepository) Upsert(ctx context.Context, ext sqlx.ExtContext, p models.UserProfile, savedAt time.Time) error {
	query := ext.Rebind(`
		INSERT INTO profile (id, name, dark_mode, daily_goal, streak_days, last_session, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			dark_mode = excluded.dark_mode,
			daily_goal = excluded.daily_goal,
			streak_days = excluded.streak_days,
			last_session = excluded.last_session,
			saved_at = excluded.saved_at
	`)
	_, err := ext.ExecContext(ctx, query, profileRowID, p.Name, p.DarkMode, p.DailyGoal, p.StreakDays, p.LastSession, savedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
