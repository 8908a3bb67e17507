package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/vocabdrill/internal/spaced_repetition"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Default notification window, overridable with NOTIFICATION_START_HOUR / NOTIFICATION_END_HOUR
const (
	DefaultNotificationStartHour = 4
	DefaultNotificationEndHour   = 18
)

// StorageConfig selects where progress is checkpointed
type StorageConfig struct {
	Driver string `yaml:"driver"` // "json", "sqlite3" or "postgres"
	Path   string `yaml:"path"`   // JSON file or SQLite database
	DSN    string `yaml:"dsn"`    // Postgres connection string
}

// ReviewConfig tunes session sizes and the mastery update
type ReviewConfig struct {
	FlashcardLimit int     `yaml:"flashcardLimit"`
	QuizLimit      int     `yaml:"quizLimit"`
	DuePoolLimit   int     `yaml:"duePoolLimit"`
	CorrectStep    float64 `yaml:"correctStep"`
	WrongStep      float64 `yaml:"wrongStep"`
	MaxInterval    int     `yaml:"maxInterval"`
}

// VocabularyConfig lists the word list sources
type VocabularyConfig struct {
	Dir        string   `yaml:"dir"`        // directory scanned for *.json word lists
	ImportFile string   `yaml:"importFile"` // optional .xlsx or .csv list
	Exclude    []string `yaml:"exclude"`    // file names skipped while scanning
}

// TelegramConfig configures the chat front-end
type TelegramConfig struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

// HTTPConfig configures the JSON API
type HTTPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// RemindersConfig configures the periodic due-word check
type RemindersConfig struct {
	Enabled      bool          `yaml:"enabled"`
	StartHour    int           `yaml:"startHour"`
	EndHour      int           `yaml:"endHour"`
	Interval     time.Duration `yaml:"interval"`
	SaveInterval time.Duration `yaml:"saveInterval"`
}

// OpenAIConfig configures example sentence generation
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full application configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Review     ReviewConfig     `yaml:"review"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	HTTP       HTTPConfig       `yaml:"http"`
	Reminders  RemindersConfig  `yaml:"reminders"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Log        LogConfig        `yaml:"log"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	sched := spaced_repetition.NewScheduler()
	return &Config{
		Storage: StorageConfig{
			Driver: "json",
			Path:   "data/user_data.json",
		},
		Review: ReviewConfig{
			FlashcardLimit: spaced_repetition.DefaultFlashcardLimit,
			QuizLimit:      spaced_repetition.DefaultQuizLimit,
			DuePoolLimit:   spaced_repetition.DefaultDuePoolLimit,
			CorrectStep:    sched.CorrectStep,
			WrongStep:      sched.WrongStep,
			MaxInterval:    sched.MaxInterval,
		},
		Vocabulary: VocabularyConfig{
			Dir:     ".",
			Exclude: []string{"user_data.json"},
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Reminders: RemindersConfig{
			Enabled:      true,
			StartHour:    DefaultNotificationStartHour,
			EndHour:      DefaultNotificationEndHour,
			Interval:     time.Hour,
			SaveInterval: 5 * time.Minute,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-3.5-turbo",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, an optional .env file,
// an optional YAML file at path and finally the environment.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = b
			}
		}
	}

	str("DB_TYPE", &c.Storage.Driver)
	str("VOCAB_STORAGE_PATH", &c.Storage.Path)
	str("DATABASE_URL", &c.Storage.DSN)
	str("VOCAB_DIR", &c.Vocabulary.Dir)
	str("VOCAB_IMPORT_FILE", &c.Vocabulary.ImportFile)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	str("OPENAI_API_KEY", &c.OpenAI.APIKey)
	str("OPENAI_MODEL", &c.OpenAI.Model)
	str("VOCAB_HTTP_ADDR", &c.HTTP.Addr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	num("NOTIFICATION_START_HOUR", &c.Reminders.StartHour)
	num("NOTIFICATION_END_HOUR", &c.Reminders.EndHour)
	num("VOCAB_FLASHCARD_LIMIT", &c.Review.FlashcardLimit)
	num("VOCAB_QUIZ_LIMIT", &c.Review.QuizLimit)
	num("VOCAB_DUE_POOL_LIMIT", &c.Review.DuePoolLimit)

	flag("ENABLE_SCHEDULER", &c.Reminders.Enabled)
	flag("VOCAB_HTTP_ENABLED", &c.HTTP.Enabled)
	flag("TELEGRAM_DEBUG", &c.Telegram.Debug)

	// the sqlite driver registers itself as "sqlite3"
	if c.Storage.Driver == "sqlite" {
		c.Storage.Driver = "sqlite3"
	}
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "json", "sqlite3":
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage path is required for %s", ErrInvalidConfig, c.Storage.Driver)
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Review.FlashcardLimit <= 0 || c.Review.QuizLimit <= 0 || c.Review.DuePoolLimit <= 0 {
		return fmt.Errorf("%w: review limits must be positive", ErrInvalidConfig)
	}
	if c.Review.CorrectStep <= 0 || c.Review.CorrectStep > 1 || c.Review.WrongStep <= 0 || c.Review.WrongStep > 1 {
		return fmt.Errorf("%w: mastery steps must be in (0, 1]", ErrInvalidConfig)
	}
	if c.Review.MaxInterval < 1 {
		return fmt.Errorf("%w: max interval must be at least one day", ErrInvalidConfig)
	}

	r := c.Reminders
	if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 23 {
		return fmt.Errorf("%w: notification hours must be between 0 and 23", ErrInvalidConfig)
	}
	if r.Enabled && (r.Interval <= 0 || r.SaveInterval <= 0) {
		return fmt.Errorf("%w: reminder intervals must be positive", ErrInvalidConfig)
	}
	return nil
}

// Scheduler returns a review scheduler using the configured steps
func (c *Config) Scheduler() *spaced_repetition.Scheduler {
	s := spaced_repetition.NewScheduler()
	s.CorrectStep = c.Review.CorrectStep
	s.WrongStep = c.Review.WrongStep
	s.MaxInterval = c.Review.MaxInterval
	return s
}
