package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the type of review session
type Kind string

const (
	Flashcards Kind = "flashcards"
	Quiz       Kind = "quiz"
)

// State of a review session
type State int

const (
	InProgress State = iota
	Complete
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session walks a caller through a bounded list of review items.
// It moves from InProgress(index) to Complete once every item was answered or skipped.
type Session[T any] struct {
	ID        uuid.UUID
	Kind      Kind
	StartedAt time.Time

	items    []T
	index    int
	answered int
	correct  int
}

// New starts a session over items
func New[T any](kind Kind, items []T, now time.Time) *Session[T] {
	return &Session[T]{
		ID:        uuid.New(),
		Kind:      kind,
		StartedAt: now,
		items:     items,
	}
}

// State returns InProgress while items remain and Complete afterwards
func (s *Session[T]) State() State {
	if s.index >= len(s.items) {
		return Complete
	}
	return InProgress
}

// Done reports whether the session is Complete
func (s *Session[T]) Done() bool {
	return s.State() == Complete
}

// Current returns the item at the current index
func (s *Session[T]) Current() (T, bool) {
	var zero T
	if s.Done() {
		return zero, false
	}
	return s.items[s.index], true
}

// Answer records the outcome for the current item and advances
func (s *Session[T]) Answer(correct bool) State {
	if s.Done() {
		return Complete
	}
	s.answered++
	if correct {
		s.correct++
	}
	s.index++
	return s.State()
}

// Skip advances without recording an outcome
func (s *Session[T]) Skip() State {
	if s.Done() {
		return Complete
	}
	s.index++
	return s.State()
}

// Restart begins a new run over items, resetting the index and the tally
func (s *Session[T]) Restart(items []T, now time.Time) {
	s.ID = uuid.New()
	s.StartedAt = now
	s.items = items
	s.index = 0
	s.answered = 0
	s.correct = 0
}

// Index returns the position of the current item
func (s *Session[T]) Index() int { return s.index }

// Len returns the number of items in the session
func (s *Session[T]) Len() int { return len(s.items) }

// Tally returns how many items were answered and how many of those were correct
func (s *Session[T]) Tally() (answered, correct int) {
	return s.answered, s.correct
}
