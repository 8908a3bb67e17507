package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/vocabdrill/internal/config"
	"github.com/example/vocabdrill/internal/logger"
)

type fakeTrainer struct {
	due         int
	dirty       bool
	checkpoints int
}

func (f *fakeTrainer) DueCount() int { return f.due }
func (f *fakeTrainer) Dirty() bool   { return f.dirty }
func (f *fakeTrainer) Checkpoint(ctx context.Context) error {
	f.checkpoints++
	f.dirty = false
	return nil
}

type fakeNotifier struct {
	sent []int
	err  error
}

func (f *fakeNotifier) SendReminders(count int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, count)
	return nil
}

func newTestScheduler(tr *fakeTrainer, n *fakeNotifier, start, end int) *Scheduler {
	cfg := config.DefaultConfig().Reminders
	cfg.StartHour, cfg.EndHour = start, end
	s := New(tr, n, cfg, 20)
	s.log = logger.Discard()
	return s
}

func at(hour int) time.Time {
	return time.Date(2024, 3, 10, hour, 30, 0, 0, time.UTC)
}

func TestRunCheck(t *testing.T) {
	cases := []struct {
		name string
		due  int
		hour int
		want int
	}{
		{"inside window", 7, 10, 7},
		{"window start inclusive", 3, 4, 3},
		{"window end inclusive", 3, 18, 3},
		{"before window", 3, 3, 0},
		{"after window", 3, 19, 0},
		{"nothing due", 0, 10, 0},
		{"capped", 45, 10, 20},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := &fakeNotifier{}
			s := newTestScheduler(&fakeTrainer{due: c.due}, n, 4, 18)
			got, err := s.RunCheck(at(c.hour))
			if err != nil {
				t.Fatalf("RunCheck() = %v", err)
			}
			if got != c.want {
				t.Errorf("RunCheck() = %d, want %d", got, c.want)
			}
			if c.want == 0 && len(n.sent) != 0 {
				t.Errorf("unexpected reminders: %v", n.sent)
			}
			if c.want > 0 && (len(n.sent) != 1 || n.sent[0] != c.want) {
				t.Errorf("sent = %v", n.sent)
			}
		})
	}
}

func TestRunCheckNotifierError(t *testing.T) {
	s := newTestScheduler(&fakeTrainer{due: 2}, &fakeNotifier{err: errors.New("offline")}, 0, 23)
	if _, err := s.RunCheck(at(12)); err == nil {
		t.Error("expected notifier error")
	}
}

func TestWrappingWindow(t *testing.T) {
	s := newTestScheduler(&fakeTrainer{}, &fakeNotifier{}, 20, 6)
	for hour, want := range map[int]bool{21: true, 2: true, 6: true, 12: false, 19: false} {
		if got := s.InWindow(at(hour)); got != want {
			t.Errorf("InWindow(%d) = %v, want %v", hour, got, want)
		}
	}
}

func TestAutosaveOnlyWhenDirty(t *testing.T) {
	tr := &fakeTrainer{}
	s := newTestScheduler(tr, &fakeNotifier{}, 4, 18)

	s.autosave()
	if tr.checkpoints != 0 {
		t.Error("clean trainer should not be saved")
	}
	tr.dirty = true
	s.autosave()
	if tr.checkpoints != 1 {
		t.Errorf("checkpoints = %d, want 1", tr.checkpoints)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&fakeTrainer{}, &fakeNotifier{}, 4, 18)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	s.Stop()
}
