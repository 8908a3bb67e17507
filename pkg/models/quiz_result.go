package models

import "time"

// QuizResult tracks the outcome of a finished quiz session
type QuizResult struct {
	ID         int64     `json:"id" db:"id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	Total      int       `json:"total" db:"total"`
	Correct    int       `json:"correct" db:"correct"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Duration   int       `json:"duration" db:"duration"` // Duration in seconds
}

// QuizSummary aggregates all recorded quizzes
type QuizSummary struct {
	Quizzes   int `json:"quizzes" db:"quizzes"`
	Questions int `json:"questions" db:"questions"`
	Correct   int `json:"correct" db:"correct"`
}

// Accuracy returns the share of correct answers as a percentage
func (s QuizSummary) Accuracy() float64 {
	if s.Questions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Questions) * 100
}
