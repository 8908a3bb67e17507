package trainer

import (
	"context"

	"github.com/example/vocabdrill/internal/spaced_repetition"
	"github.com/example/vocabdrill/pkg/models"
)

// Stats summarises learning progress
type Stats struct {
	Total          int                             `json:"total"`
	Due            int                             `json:"due"`
	Reviewed       int                             `json:"reviewed"`
	AverageMastery float64                         `json:"average_mastery"`
	Badges         map[spaced_repetition.Badge]int `json:"badges"`
	StreakDays     int                             `json:"streak_days"`
	// Quizzes is nil when no quiz history is kept
	Quizzes *models.QuizSummary `json:"quizzes,omitempty"`
}

// Stats computes progress figures over the whole word list, plus the
// quiz history totals when a recorder is configured
func (t *Trainer) Stats(ctx context.Context) Stats {
	s := t.wordStats()
	if t.opts.Recorder == nil {
		return s
	}

	summary, err := t.opts.Recorder.QuizSummary(ctx)
	if err != nil {
		t.log.WithError(err).Warn("Failed to load quiz history")
		return s
	}
	s.Quizzes = &summary
	return s
}

func (t *Trainer) wordStats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Total:      len(t.entries),
		Due:        len(t.sched.SelectDue(t.entries, t.opts.Now(), 0)),
		Badges:     make(map[spaced_repetition.Badge]int, len(spaced_repetition.Badges)),
		StreakDays: t.profile.StreakDays,
	}
	for _, b := range spaced_repetition.Badges {
		s.Badges[b] = 0
	}

	var sum float64
	for _, e := range t.entries {
		sum += e.MasteryLevel
		if e.ReviewCount > 0 {
			s.Reviewed++
		}
		s.Badges[spaced_repetition.MasteryBadge(e)]++
	}
	if s.Total > 0 {
		s.AverageMastery = sum / float64(s.Total)
	}
	return s
}
