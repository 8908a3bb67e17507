package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/internal/profile"
	"github.com/example/vocabdrill/internal/quiz"
	"github.com/example/vocabdrill/internal/session"
	"github.com/example/vocabdrill/internal/spaced_repetition"
	"github.com/example/vocabdrill/internal/storage"
	"github.com/example/vocabdrill/internal/vocabulary"
	"github.com/example/vocabdrill/pkg/models"
)

// ErrUnknownEntry is returned for IDs that are not in the word list
var ErrUnknownEntry = errors.New("unknown entry")

// QuizRecorder stores finished quizzes and reports on them
type QuizRecorder interface {
	RecordQuiz(ctx context.Context, result *models.QuizResult) error
	RecentQuizzes(ctx context.Context, limit int) ([]models.QuizResult, error)
	QuizSummary(ctx context.Context) (models.QuizSummary, error)
}

// Options tunes a Trainer. Zero values fall back to the defaults.
type Options struct {
	Scheduler      *spaced_repetition.Scheduler
	FlashcardLimit int
	QuizLimit      int
	DuePoolLimit   int
	Recorder       QuizRecorder
	Now            func() time.Time
	Log            *logrus.Entry
}

// Trainer owns the word list and is the only place mastery is changed.
// It is safe for concurrent use by the bot, the API and background jobs.
type Trainer struct {
	mu      sync.Mutex
	entries []*models.VocabularyEntry
	byID    map[string]*models.VocabularyEntry
	profile models.UserProfile
	dirty   bool
	// gen counts changes so a checkpoint only clears dirty for what it saved
	gen uint64

	store storage.Store
	sched *spaced_repetition.Scheduler
	opts  Options
	log   *logrus.Entry
}

// New creates a trainer over entries. Duplicate IDs keep their first entry.
func New(entries []*models.VocabularyEntry, store storage.Store, opts Options) *Trainer {
	if opts.Scheduler == nil {
		opts.Scheduler = spaced_repetition.NewScheduler()
	}
	if opts.FlashcardLimit <= 0 {
		opts.FlashcardLimit = spaced_repetition.DefaultFlashcardLimit
	}
	if opts.QuizLimit <= 0 {
		opts.QuizLimit = spaced_repetition.DefaultQuizLimit
	}
	if opts.DuePoolLimit <= 0 {
		opts.DuePoolLimit = spaced_repetition.DefaultDuePoolLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.New("trainer")
	}

	entries = vocabulary.Dedupe(entries)
	byID := make(map[string]*models.VocabularyEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	return &Trainer{
		entries: entries,
		byID:    byID,
		store:   store,
		sched:   opts.Scheduler,
		opts:    opts,
		log:     opts.Log,
	}
}

// Open loads the last checkpoint and merges it into the word list
func (t *Trainer) Open(ctx context.Context) error {
	snap, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	merged := storage.Merge(t.entries, snap.Progress)
	t.profile = snap.Profile
	t.dirty = false
	t.log.WithFields(logrus.Fields{
		"words":  len(t.entries),
		"merged": merged,
		"streak": t.profile.StreakDays,
	}).Info("Progress loaded")
	return nil
}

// Due returns copies of the entries due for review, weakest first.
// limit <= 0 returns every due entry.
func (t *Trainer) Due(limit int) []models.VocabularyEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clones(t.sched.SelectDue(t.entries, t.opts.Now(), limit))
}

// DueCount returns how many entries are due right now
func (t *Trainer) DueCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sched.SelectDue(t.entries, t.opts.Now(), 0))
}

// StartFlashcards draws the due pool and starts a flashcard session over its weakest words
func (t *Trainer) StartFlashcards() *session.Session[models.VocabularyEntry] {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.Now()
	pool := t.sched.SelectDue(t.entries, now, t.opts.DuePoolLimit)
	if len(pool) > t.opts.FlashcardLimit {
		pool = pool[:t.opts.FlashcardLimit]
	}
	t.touchStreak(now)
	return session.New(session.Flashcards, clones(pool), now)
}

// StartQuiz builds a quiz over the whole word list.
// It returns quiz.ErrInsufficientPool when fewer than four words have translations.
func (t *Trainer) StartQuiz(rng *rand.Rand) (*session.Session[quiz.Question], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	copies := clones(t.entries)
	pool := make([]*models.VocabularyEntry, len(copies))
	for i := range copies {
		pool[i] = &copies[i]
	}
	questions, err := quiz.BuildChecked(pool, t.opts.QuizLimit, rng)
	if err != nil {
		return nil, err
	}

	now := t.opts.Now()
	t.touchStreak(now)
	return session.New(session.Quiz, questions, now), nil
}

// Answer records a review outcome and returns the updated entry
func (t *Trainer) Answer(id string, correct bool) (models.VocabularyEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.byID[id]
	if !ok {
		return models.VocabularyEntry{}, fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	}
	t.sched.RecordAnswer(e, correct, t.opts.Now())
	t.markDirty()
	return clone(e), nil
}

// Entry returns a copy of the entry with the given ID
func (t *Trainer) Entry(id string) (models.VocabularyEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.byID[id]
	if !ok {
		return models.VocabularyEntry{}, false
	}
	return clone(e), true
}

// Entries returns copies of every entry in load order
func (t *Trainer) Entries() []models.VocabularyEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clones(t.entries)
}

// Profile returns a copy of the learner profile
func (t *Trainer) Profile() models.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.profile
	if p.LastSession != nil {
		last := *p.LastSession
		p.LastSession = &last
	}
	return p
}

// Dirty reports whether answers were recorded since the last checkpoint
func (t *Trainer) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// Checkpoint saves the current progress to the store
func (t *Trainer) Checkpoint(ctx context.Context) error {
	t.mu.Lock()
	snap := storage.Capture(t.entries, t.profile, t.opts.Now())
	gen := t.gen
	t.mu.Unlock()

	if err := t.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	t.mu.Lock()
	if t.gen == gen {
		t.dirty = false
	}
	t.mu.Unlock()
	t.log.WithField("words", len(snap.Progress)).Debug("Progress saved")
	return nil
}

// FinishQuiz records the outcome of a completed quiz session when a recorder is configured
func (t *Trainer) FinishQuiz(ctx context.Context, s *session.Session[quiz.Question]) (quiz.Score, error) {
	answered, correct := s.Tally()
	score := quiz.Score{Total: answered, Correct: correct}
	if t.opts.Recorder == nil || answered == 0 {
		return score, nil
	}

	result := &models.QuizResult{
		SessionID:  s.ID.String(),
		Total:      score.Total,
		Correct:    score.Correct,
		StartedAt:  s.StartedAt,
		FinishedAt: t.opts.Now(),
	}
	if err := t.opts.Recorder.RecordQuiz(ctx, result); err != nil {
		return score, fmt.Errorf("failed to record quiz: %w", err)
	}
	t.log.WithFields(logrus.Fields{
		"session": result.SessionID,
		"score":   fmt.Sprintf("%d/%d", score.Correct, score.Total),
	}).Info("Quiz finished")
	return score, nil
}

// RecentQuizzes returns the latest recorded quizzes, newest first.
// Without a recorder there is no history.
func (t *Trainer) RecentQuizzes(ctx context.Context, limit int) ([]models.QuizResult, error) {
	if t.opts.Recorder == nil {
		return []models.QuizResult{}, nil
	}
	results, err := t.opts.Recorder.RecentQuizzes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz history: %w", err)
	}
	return results, nil
}

func (t *Trainer) touchStreak(now time.Time) {
	profile.UpdateStreak(&t.profile, now)
	t.markDirty()
}

func (t *Trainer) markDirty() {
	t.dirty = true
	t.gen++
}

func clone(e *models.VocabularyEntry) models.VocabularyEntry {
	c := *e
	if e.LastReviewed != nil {
		t := *e.LastReviewed
		c.LastReviewed = &t
	}
	return c
}

func clones(entries []*models.VocabularyEntry) []models.VocabularyEntry {
	out := make([]models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, clone(e))
	}
	return out
}
