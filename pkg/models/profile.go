package models

import "time"

// UserProfile holds the learner's display preferences and practice streak
type UserProfile struct {
	Name        string     `json:"name" db:"name" yaml:"name"`
	DarkMode    bool       `json:"dark_mode" db:"dark_mode" yaml:"dark_mode"`
	DailyGoal   int        `json:"daily_goal" db:"daily_goal" yaml:"daily_goal"` // words per day
	StreakDays  int        `json:"streak_days" db:"streak_days" yaml:"-"`
	LastSession *time.Time `json:"last_session,omitempty" db:"last_session" yaml:"-"`
}
