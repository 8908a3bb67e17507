package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/vocabdrill/internal/ai"
	"github.com/example/vocabdrill/internal/api"
	"github.com/example/vocabdrill/internal/bot"
	"github.com/example/vocabdrill/internal/config"
	"github.com/example/vocabdrill/internal/database"
	"github.com/example/vocabdrill/internal/excel"
	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/internal/scheduler"
	"github.com/example/vocabdrill/internal/storage"
	"github.com/example/vocabdrill/internal/trainer"
	"github.com/example/vocabdrill/internal/vocabulary"
	"github.com/example/vocabdrill/pkg/models"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error while running vocabdrill: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "vocabdrill",
		Short:         "Vocabulary flashcard and quiz trainer",
		Long:          `Runs the Telegram bot, the HTTP API and the review reminders over the loaded word lists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Cancel the context on SIGINT / SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, stop, configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	return cmd
}

func run(ctx context.Context, stop context.CancelFunc, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log := logger.New("main")

	entries := loadVocabulary(cfg, log)

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	opts := trainer.Options{
		Scheduler:      cfg.Scheduler(),
		FlashcardLimit: cfg.Review.FlashcardLimit,
		QuizLimit:      cfg.Review.QuizLimit,
		DuePoolLimit:   cfg.Review.DuePoolLimit,
	}
	// Only the database stores keep quiz history
	if db, ok := store.(*database.Store); ok {
		opts.Recorder = db
	}
	tr := trainer.New(entries, store, opts)
	if err := tr.Open(ctx); err != nil {
		return fmt.Errorf("failed to open trainer: %w", err)
	}

	var gpt *ai.ChatGPT
	if cfg.OpenAI.APIKey != "" {
		if gpt, err = ai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model); err != nil {
			log.WithError(err).Warn("Example generation disabled")
		}
	}
	examples := ai.NewExamples(gpt)

	var wg sync.WaitGroup

	var notifier scheduler.Notifier
	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram, tr, examples)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		notifier = b
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := b.Start(ctx); err != nil {
				log.WithError(err).Error("Bot error")
			}
		}()
	} else {
		log.Info("TELEGRAM_BOT_TOKEN is not set, the Telegram bot is disabled")
	}

	if cfg.Reminders.Enabled {
		s := scheduler.New(tr, notifier, cfg.Reminders, cfg.Review.DuePoolLimit)
		if err := s.Start(); err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer s.Stop()
	}

	if cfg.HTTP.Enabled {
		h := api.NewHandler(tr, examples, rand.New(rand.NewSource(time.Now().UnixNano())), logger.New("api"))
		srv := api.NewServer(cfg.HTTP.Addr, h)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(); err != nil {
				log.WithError(err).Error("HTTP server error")
				stop()
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Error during HTTP shutdown")
			}
		}()
	}

	log.Info("Vocabulary trainer started. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("Shutting down")
	wg.Wait()

	// Final checkpoint with a fresh context, the signal context is already cancelled
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := tr.Checkpoint(saveCtx); err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}
	log.Info("Progress saved")
	return nil
}

// loadVocabulary reads the word files, then the import file, and falls back to the built-in list
func loadVocabulary(cfg *config.Config, log *logrus.Entry) []*models.VocabularyEntry {
	exclude := append([]string{}, cfg.Vocabulary.Exclude...)
	exclude = append(exclude, filepath.Base(cfg.Storage.Path))

	entries, err := vocabulary.LoadDir(cfg.Vocabulary.Dir, exclude...)
	if err != nil {
		log.WithError(err).Warn("Failed to scan word lists")
	}

	if cfg.Vocabulary.ImportFile != "" {
		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = cfg.Vocabulary.ImportFile
		imported, result, err := excel.Import(importCfg)
		if err != nil {
			log.WithError(err).Warn("Failed to import word file")
		} else {
			log.WithFields(logrus.Fields{
				"file":    importCfg.FilePath,
				"created": result.Created,
				"skipped": result.Skipped,
			}).Info("Imported words")
			for _, e := range result.Errors {
				log.Debug(e)
			}
			entries = vocabulary.Dedupe(append(entries, imported...))
		}
	}

	if len(entries) == 0 {
		log.Info("No word lists found, using the built-in words")
		entries = vocabulary.Defaults()
	}
	log.WithField("words", len(entries)).Info("Vocabulary loaded")
	return entries
}
