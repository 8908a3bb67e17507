package quiz

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/example/vocabdrill/pkg/models"
)

const (
	// OptionCount is the number of answer options shown per question
	OptionCount = 4
	// DistractorCount is the number of wrong options per question
	DistractorCount = OptionCount - 1
	// MinPoolSize is the smallest pool a quiz can be built from
	MinPoolSize = OptionCount
)

// ErrInsufficientPool is returned by BuildChecked when fewer than MinPoolSize entries are usable
var ErrInsufficientPool = errors.New("quiz: need at least 4 words with translations")

// Fillers pad the options when the pool does not hold enough distinct wrong translations
var Fillers = []string{"गलत", "अनुवाद", "शब्द", "उत्तर"}

// Question represents a single multiple choice question
type Question struct {
	Entry        *models.VocabularyEntry // The word being tested
	Correct      string                  // Its translation
	Distractors  [DistractorCount]string // Wrong translations
	Options      [OptionCount]string     // Correct answer and distractors, shuffled
	CorrectIndex int                     // Index of the correct answer in Options
}

// Check reports whether the option at index choice is the correct answer
func (q Question) Check(choice int) bool {
	return choice == q.CorrectIndex
}

// Score tallies the answers given during a quiz
type Score struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Percent returns the share of correct answers in the range 0-100
func (s Score) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// Build generates up to count questions from entries using rng for every random choice.
// No entry is asked twice. It returns nil when fewer than MinPoolSize entries are usable.
func Build(entries []*models.VocabularyEntry, count int, rng *rand.Rand) []Question {
	pool := usable(entries)
	if len(pool) < MinPoolSize || count <= 0 {
		return nil
	}

	if count > len(pool) {
		count = len(pool)
	}

	// Sample the tested entries without replacement
	order := rng.Perm(len(pool))
	questions := make([]Question, 0, count)
	for _, idx := range order[:count] {
		questions = append(questions, newQuestion(pool[idx], pool, rng))
	}
	return questions
}

// BuildChecked is Build for callers that prefer an error over an empty quiz
func BuildChecked(entries []*models.VocabularyEntry, count int, rng *rand.Rand) ([]Question, error) {
	if len(usable(entries)) < MinPoolSize {
		return nil, ErrInsufficientPool
	}
	return Build(entries, count, rng), nil
}

func usable(entries []*models.VocabularyEntry) []*models.VocabularyEntry {
	pool := make([]*models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil || strings.TrimSpace(e.SourceText) == "" || strings.TrimSpace(e.TargetText) == "" {
			continue
		}
		pool = append(pool, e)
	}
	return pool
}

func newQuestion(e *models.VocabularyEntry, pool []*models.VocabularyEntry, rng *rand.Rand) Question {
	q := Question{
		Entry:   e,
		Correct: e.TargetText,
	}

	// Distinct wrong translations, in pool order so the sampling depends only on rng
	seen := map[string]bool{e.TargetText: true}
	var candidates []string
	for _, other := range pool {
		if other == e || seen[other.TargetText] {
			continue
		}
		seen[other.TargetText] = true
		candidates = append(candidates, other.TargetText)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	n := 0
	for ; n < DistractorCount && n < len(candidates); n++ {
		q.Distractors[n] = candidates[n]
	}
	for _, filler := range Fillers {
		if n == DistractorCount {
			break
		}
		if seen[filler] {
			continue
		}
		seen[filler] = true
		q.Distractors[n] = filler
		n++
	}

	// Add correct option and shuffle
	q.Options[0] = q.Correct
	copy(q.Options[1:], q.Distractors[:])
	q.CorrectIndex = 0
	rng.Shuffle(OptionCount, func(i, j int) {
		if i == q.CorrectIndex {
			q.CorrectIndex = j
		} else if j == q.CorrectIndex {
			q.CorrectIndex = i
		}
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
	})

	return q
}
