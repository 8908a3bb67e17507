package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/ai"
	"github.com/example/vocabdrill/internal/config"
	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/internal/quiz"
	"github.com/example/vocabdrill/internal/session"
	"github.com/example/vocabdrill/internal/trainer"
	"github.com/example/vocabdrill/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of tgbotapi.BotAPI the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api      sender
	token    string
	debug    bool
	trainer  *trainer.Trainer
	examples *ai.Examples
	log      *logrus.Entry

	// mu guards everything below
	mu               sync.Mutex
	rng              *rand.Rand
	learningSessions map[int64]*session.Session[models.VocabularyEntry]
	quizSessions     map[int64]*session.Session[quiz.Question]
	subscribers      map[int64]bool
	// chatLocks serialize the updates of one chat, sessions are not safe for concurrent use
	chatLocks map[int64]*sync.Mutex
}

// New creates a new bot instance
func New(cfg config.TelegramConfig, tr *trainer.Trainer, examples *ai.Examples) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	b := newBot(nil, tr, examples, rand.New(rand.NewSource(time.Now().UnixNano())))
	b.token = cfg.Token
	b.debug = cfg.Debug
	return b, nil
}

func newBot(api sender, tr *trainer.Trainer, examples *ai.Examples, rng *rand.Rand) *Bot {
	return &Bot{
		api:              api,
		trainer:          tr,
		examples:         examples,
		log:              logger.New("bot"),
		rng:              rng,
		learningSessions: make(map[int64]*session.Session[models.VocabularyEntry]),
		quizSessions:     make(map[int64]*session.Session[quiz.Question]),
		subscribers:      make(map[int64]bool),
		chatLocks:        make(map[int64]*sync.Mutex),
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	botAPI.Debug = b.debug
	b.api = botAPI
	b.log.WithField("account", botAPI.Self.UserName).Info("Authorized on account")

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.log.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SendReminders implements the scheduler.Notifier interface.
// Every chat that sent /start gets the reminder.
func (b *Bot) SendReminders(count int) error {
	b.mu.Lock()
	chats := make([]int64, 0, len(b.subscribers))
	for id := range b.subscribers {
		chats = append(chats, id)
	}
	b.mu.Unlock()

	wordForm := "words"
	if count == 1 {
		wordForm = "word"
	}
	text := fmt.Sprintf("⏰ You have %d %s to review! Tap Flashcards to start.", count, wordForm)

	var errs []error
	for _, chatID := range chats {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = createKeyboard(mainMenuButtons())
		if _, err := b.api.Send(msg); err != nil {
			b.log.WithError(err).WithField("chat", chatID).Error("Error sending reminder")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lockChat blocks until no other update of chatID is being handled
func (b *Bot) lockChat(chatID int64) func() {
	b.mu.Lock()
	l, ok := b.chatLocks[chatID]
	if !ok {
		l = &sync.Mutex{}
		b.chatLocks[chatID] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if chatID, ok := updateChatID(update); ok {
		defer b.lockChat(chatID)()
	}

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Chat != nil:
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, "I don't understand. Use /menu to show the main menu.")
		msg.ReplyMarkup = createKeyboard(mainMenuButtons())
		err = b.sendMessage(msg)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.WithError(err).Error("Error handling update")
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// mainMenuButtons returns the buttons for the main menu
func mainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🃏 Flashcards", CallbackData: callbackFlashcards},
			{Text: "❓ Quiz", CallbackData: callbackQuiz},
		},
		{
			{Text: "📚 Words", CallbackData: wordsPage(0)},
			{Text: "📊 Statistics", CallbackData: callbackStats},
		},
		{
			{Text: "💾 Save", CallbackData: callbackSave},
		},
	}
}
