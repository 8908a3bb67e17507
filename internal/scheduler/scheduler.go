package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/config"
	"github.com/example/vocabdrill/internal/logger"
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(count int) error
}

// Trainer is the part of the trainer the jobs need
type Trainer interface {
	DueCount() int
	Dirty() bool
	Checkpoint(ctx context.Context) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	trainer   Trainer
	cfg       config.RemindersConfig
	maxWords  int
	now       func() time.Time
	log       *logrus.Entry
}

// New creates a new scheduler instance.
// Reminders never announce more than maxWords words.
func New(trainer Trainer, notifier Notifier, cfg config.RemindersConfig, maxWords int) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		trainer:   trainer,
		cfg:       cfg,
		maxWords:  maxWords,
		now:       time.Now,
		log:       logger.New("scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	if s.notifier != nil {
		if _, err := s.scheduler.Every(s.cfg.Interval).Do(s.checkAndSendReminders); err != nil {
			return err
		}
	}
	if _, err := s.scheduler.Every(s.cfg.SaveInterval).Do(s.autosave); err != nil {
		return err
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.WithFields(logrus.Fields{
		"interval": s.cfg.Interval,
		"window":   []int{s.cfg.StartHour, s.cfg.EndHour},
	}).Info("Scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// InWindow reports whether t falls inside the notification hours (both ends inclusive)
func (s *Scheduler) InWindow(t time.Time) bool {
	h := t.Hour()
	if s.cfg.StartHour <= s.cfg.EndHour {
		return h >= s.cfg.StartHour && h <= s.cfg.EndHour
	}
	// window wraps past midnight, e.g. 20..6
	return h >= s.cfg.StartHour || h <= s.cfg.EndHour
}

// RunCheck sends a reminder if now is inside the notification window and
// words are due. It returns the number of words announced.
func (s *Scheduler) RunCheck(now time.Time) (int, error) {
	if s.notifier == nil {
		return 0, nil
	}
	if !s.InWindow(now) {
		s.log.Debugf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			now.Hour(), s.cfg.StartHour, s.cfg.EndHour)
		return 0, nil
	}

	count := s.trainer.DueCount()
	if count == 0 {
		return 0, nil
	}
	if s.maxWords > 0 && count > s.maxWords {
		count = s.maxWords
	}
	if err := s.notifier.SendReminders(count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Scheduler) checkAndSendReminders() {
	count, err := s.RunCheck(s.now())
	if err != nil {
		s.log.WithError(err).Error("Error sending reminders")
		return
	}
	if count > 0 {
		s.log.WithField("due", count).Info("Reminder sent")
	}
}

func (s *Scheduler) autosave() {
	if !s.trainer.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.trainer.Checkpoint(ctx); err != nil {
		s.log.WithError(err).Error("Autosave failed")
	}
}
