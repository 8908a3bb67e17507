package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Review.FlashcardLimit != 10 || cfg.Review.QuizLimit != 10 || cfg.Review.DuePoolLimit != 20 {
		t.Errorf("unexpected default limits: %+v", cfg.Review)
	}
	if cfg.Reminders.StartHour != 4 || cfg.Reminders.EndHour != 18 {
		t.Errorf("unexpected notification window: %+v", cfg.Reminders)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
storage:
  driver: sqlite3
  path: progress.db
review:
  flashcardLimit: 5
  correctStep: 0.2
reminders:
  interval: 30m
vocabulary:
  dir: words
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Storage.Driver != "sqlite3" || cfg.Storage.Path != "progress.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Review.FlashcardLimit != 5 || cfg.Review.CorrectStep != 0.2 {
		t.Errorf("review = %+v", cfg.Review)
	}
	// untouched fields keep their defaults
	if cfg.Review.QuizLimit != 10 || cfg.Review.WrongStep != 0.1 {
		t.Errorf("defaults lost: %+v", cfg.Review)
	}
	if cfg.Reminders.Interval != 30*time.Minute {
		t.Errorf("interval = %v, want 30m", cfg.Reminders.Interval)
	}
	if cfg.Vocabulary.Dir != "words" {
		t.Errorf("vocabulary dir = %q", cfg.Vocabulary.Dir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Review.DuePoolLimit != 20 {
		t.Errorf("DuePoolLimit = %d", cfg.Review.DuePoolLimit)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DB_TYPE":                 "sqlite",
		"VOCAB_STORAGE_PATH":      "x.db",
		"TELEGRAM_BOT_TOKEN":      "123:abc",
		"NOTIFICATION_START_HOUR": "7",
		"NOTIFICATION_END_HOUR":   "not-a-number",
		"ENABLE_SCHEDULER":        "false",
		"VOCAB_QUIZ_LIMIT":        "15",
	}
	cfg := DefaultConfig()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Storage.Driver != "sqlite3" || cfg.Storage.Path != "x.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Reminders.StartHour != 7 || cfg.Reminders.EndHour != DefaultNotificationEndHour {
		t.Errorf("hours = %d..%d", cfg.Reminders.StartHour, cfg.Reminders.EndHour)
	}
	if cfg.Reminders.Enabled {
		t.Error("ENABLE_SCHEDULER=false should disable reminders")
	}
	if cfg.Review.QuizLimit != 15 {
		t.Errorf("QuizLimit = %d", cfg.Review.QuizLimit)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown driver":    func(c *Config) { c.Storage.Driver = "mongo" },
		"postgres no dsn":   func(c *Config) { c.Storage.Driver = "postgres" },
		"json no path":      func(c *Config) { c.Storage.Path = "" },
		"zero limit":        func(c *Config) { c.Review.QuizLimit = 0 },
		"step too large":    func(c *Config) { c.Review.CorrectStep = 1.5 },
		"negative step":     func(c *Config) { c.Review.WrongStep = -0.1 },
		"zero max interval": func(c *Config) { c.Review.MaxInterval = 0 },
		"bad hour":          func(c *Config) { c.Reminders.EndHour = 24 },
		"zero interval":     func(c *Config) { c.Reminders.Interval = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSchedulerUsesConfiguredSteps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Review.CorrectStep = 0.2
	cfg.Review.MaxInterval = 30
	s := cfg.Scheduler()
	if s.CorrectStep != 0.2 || s.WrongStep != 0.1 || s.MaxInterval != 30 {
		t.Errorf("scheduler = %+v", s)
	}
}
