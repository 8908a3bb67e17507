package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/example/vocabdrill/pkg/models"
)

// Default session sizes
const (
	DefaultFlashcardLimit = 10
	DefaultQuizLimit      = 10
	DefaultDuePoolLimit   = 20
)

// Scheduler decides which entries are due and updates their mastery after each answer
type Scheduler struct {
	// Mastery gained on a correct answer
	CorrectStep float64
	// Mastery lost on a wrong answer
	WrongStep float64
	// Exponent applied to the review count once it reaches 2
	IntervalExponent float64
	// Maximum interval in days
	MaxInterval int
}

// NewScheduler creates a Scheduler with the default settings
func NewScheduler() *Scheduler {
	return &Scheduler{
		CorrectStep:      0.15,
		WrongStep:        0.1,
		IntervalExponent: 1.3,
		MaxInterval:      365, // one year
	}
}

// Interval returns the review interval in days for an entry reviewed reviewCount times
func (s *Scheduler) Interval(reviewCount int) int {
	switch {
	case reviewCount <= 0:
		return 1
	case reviewCount == 1:
		return 2
	}

	interval := int(math.Floor(math.Pow(float64(reviewCount), s.IntervalExponent)))
	if interval > s.MaxInterval {
		interval = s.MaxInterval
	}
	return interval
}

// IsDue reports whether the entry should be reviewed at now.
// Entries that were never reviewed are always due.
func (s *Scheduler) IsDue(entry *models.VocabularyEntry, now time.Time) bool {
	if entry.LastReviewed == nil {
		return true
	}

	daysSince := int(math.Floor(now.Sub(*entry.LastReviewed).Hours() / 24))
	return daysSince >= s.Interval(entry.ReviewCount)
}

// SelectDue returns up to limit due entries, least mastered first.
// Entries with equal mastery keep their input order. A limit <= 0 means no limit.
func (s *Scheduler) SelectDue(entries []*models.VocabularyEntry, now time.Time, limit int) []*models.VocabularyEntry {
	due := make([]*models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil && s.IsDue(e, now) {
			due = append(due, e)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].MasteryLevel < due[j].MasteryLevel
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// RecordAnswer applies the outcome of one review to the entry in place
func (s *Scheduler) RecordAnswer(entry *models.VocabularyEntry, correct bool, now time.Time) {
	entry.ReviewCount++
	reviewed := now
	entry.LastReviewed = &reviewed

	if correct {
		entry.MasteryLevel = math.Min(1.0, entry.MasteryLevel+s.CorrectStep)
	} else {
		entry.MasteryLevel = math.Max(0.0, entry.MasteryLevel-s.WrongStep)
	}
	entry.MasteryLevel = ClampMastery(entry.MasteryLevel)
}

// ClampMastery keeps a mastery value within [0, 1]
func ClampMastery(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
