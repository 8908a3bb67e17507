package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabdrill/internal/quiz"
	"github.com/example/vocabdrill/internal/session"
	"github.com/example/vocabdrill/internal/spaced_repetition"
	"github.com/example/vocabdrill/pkg/models"
)

// Constants for callback data
const (
	callbackMenu       = "main_menu"
	callbackFlashcards = "flashcards"
	callbackQuiz       = "quiz"
	callbackStats      = "stats"
	callbackSave       = "save"
	callbackHelp       = "help"
	// The actions below are sent as <action>_<item index> so presses on an
	// older message can be told apart from presses on the current one
	callbackReveal   = "reveal"
	callbackKnow     = "know"
	callbackDontKnow = "dont_know"
	callbackSkip     = "skip"
	callbackQuizSkip = "quiz_skip"
	callbackWords    = "words"
	// answer_<question index>_<option index>
	callbackAnswerPrefix = "answer_"
)

// wordsPageSize is the number of words listed per /words page
const wordsPageSize = 10

func indexed(action string, index int) string {
	return fmt.Sprintf("%s_%d", action, index)
}

func wordsPage(page int) string {
	return indexed(callbackWords, page)
}

// parseIndexed splits "<action>_<index>" callback data
func parseIndexed(data string) (action string, index int, ok bool) {
	i := strings.LastIndex(data, "_")
	if i <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(data[i+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return data[:i], index, true
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "menu":
		return b.showMainMenu(chatID)
	case "flashcards":
		return b.handleStartFlashcards(ctx, chatID)
	case "quiz":
		return b.handleStartQuiz(ctx, chatID)
	case "words":
		return b.handleWords(chatID, 0)
	case "stats":
		return b.handleStats(ctx, chatID)
	case "save":
		return b.handleSave(ctx, chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /menu to show the main menu.")
		msg.ReplyMarkup = createKeyboard(mainMenuButtons())
		return b.sendMessage(msg)
	}
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.WithError(err).Warn("Failed to answer callback")
	}

	chatID := callback.Message.Chat.ID
	switch callback.Data {
	case callbackMenu:
		return b.showMainMenu(chatID)
	case callbackHelp:
		return b.handleHelp(chatID)
	case callbackFlashcards:
		return b.handleStartFlashcards(ctx, chatID)
	case callbackQuiz:
		return b.handleStartQuiz(ctx, chatID)
	case callbackStats:
		return b.handleStats(ctx, chatID)
	case callbackSave:
		return b.handleSave(ctx, chatID)
	}

	if action, index, ok := parseIndexed(callback.Data); ok {
		switch action {
		case callbackReveal:
			return b.handleReveal(chatID, index)
		case callbackKnow:
			return b.handleCardAnswer(ctx, chatID, index, true)
		case callbackDontKnow:
			return b.handleCardAnswer(ctx, chatID, index, false)
		case callbackSkip:
			return b.handleCardSkip(ctx, chatID, index)
		case callbackQuizSkip:
			return b.handleQuizSkip(ctx, chatID, index)
		case callbackWords:
			return b.handleWords(chatID, index)
		}
	}

	if strings.HasPrefix(callback.Data, callbackAnswerPrefix) {
		index, choice, err := parseAnswer(callback.Data)
		if err != nil {
			return err
		}
		return b.handleQuizAnswer(ctx, chatID, index, choice)
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ Unknown action"))
}

func (b *Bot) handleStart(chatID int64) error {
	b.mu.Lock()
	b.subscribers[chatID] = true
	b.mu.Unlock()

	text := "Welcome to the English-Hindi vocabulary trainer! 🎓\n\n" +
		"Review the words you are weakest at with flashcards, test yourself " +
		"with a quiz and I will remind you when words are due again."
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 Commands\n\n" +
		"/flashcards - review the words that are due\n" +
		"/quiz - multiple choice quiz\n" +
		"/words - browse every word\n" +
		"/stats - your progress\n" +
		"/save - save progress now\n" +
		"/menu - show the main menu\n\n" +
		"🔄 A word comes back after 1 day, then 2 days, then less and less often."
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Back to menu", CallbackData: callbackMenu}},
	})
	return b.sendMessage(msg)
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleStartFlashcards(ctx context.Context, chatID int64) error {
	s := b.trainer.StartFlashcards()
	if s.Done() {
		msg := tgbotapi.NewMessage(chatID, "🎉 No words are due right now. Come back later!")
		msg.ReplyMarkup = createKeyboard(mainMenuButtons())
		return b.sendMessage(msg)
	}

	b.mu.Lock()
	b.learningSessions[chatID] = s
	b.mu.Unlock()
	return b.sendCard(chatID, s, false)
}

func (b *Bot) learningSession(chatID int64) (*session.Session[models.VocabularyEntry], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.learningSessions[chatID]
	return s, ok
}

func (b *Bot) handleReveal(chatID int64, index int) error {
	s, ok := b.learningSession(chatID)
	if !ok || s.Done() {
		return b.noSession(chatID)
	}
	// buttons from an earlier card
	if index != s.Index() {
		return nil
	}
	return b.sendCard(chatID, s, true)
}

func (b *Bot) handleCardAnswer(ctx context.Context, chatID int64, index int, correct bool) error {
	s, ok := b.learningSession(chatID)
	if !ok || s.Done() {
		return b.noSession(chatID)
	}
	if index != s.Index() {
		return nil
	}
	card, _ := s.Current()
	if _, err := b.trainer.Answer(card.ID, correct); err != nil {
		return err
	}
	s.Answer(correct)
	return b.nextCard(ctx, chatID, s)
}

func (b *Bot) handleCardSkip(ctx context.Context, chatID int64, index int) error {
	s, ok := b.learningSession(chatID)
	if !ok || s.Done() {
		return b.noSession(chatID)
	}
	if index != s.Index() {
		return nil
	}
	s.Skip()
	return b.nextCard(ctx, chatID, s)
}

func (b *Bot) nextCard(ctx context.Context, chatID int64, s *session.Session[models.VocabularyEntry]) error {
	if !s.Done() {
		return b.sendCard(chatID, s, false)
	}

	b.mu.Lock()
	delete(b.learningSessions, chatID)
	b.mu.Unlock()
	b.checkpoint(ctx)

	answered, correct := s.Tally()
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🎉 Session complete! You knew %d of %d words.", correct, answered))
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

// sendCard shows the current flashcard, with its meaning when revealed is set
func (b *Bot) sendCard(chatID int64, s *session.Session[models.VocabularyEntry], revealed bool) error {
	card, _ := s.Current()

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Word %d of %d\n\n", s.Index()+1, s.Len()))
	text.WriteString(fmt.Sprintf("%s %s", card.Icon, card.SourceText))
	if badge := spaced_repetition.MasteryBadge(&card); badge != spaced_repetition.BadgeNone {
		text.WriteString(" " + badge.Symbol())
	}
	text.WriteString("\n")
	if card.Phonetic != "" {
		text.WriteString(card.Phonetic + "\n")
	}

	i := s.Index()
	var buttons [][]MenuButton
	if revealed {
		text.WriteString(fmt.Sprintf("\nMeaning: ➡️ %s\n", translation(card)))
		text.WriteString(fmt.Sprintf("Example: ✏️ %s\n", b.examples.For(context.Background(), card)))
		text.WriteString(fmt.Sprintf("Tip: 💡 %s\n", hint(card)))
		buttons = [][]MenuButton{
			{{Text: "✅ I knew it", CallbackData: indexed(callbackKnow, i)}, {Text: "❌ I didn't", CallbackData: indexed(callbackDontKnow, i)}},
			{{Text: "⏭ Skip", CallbackData: indexed(callbackSkip, i)}},
		}
	} else {
		buttons = [][]MenuButton{
			{{Text: "🔍 Show meaning", CallbackData: indexed(callbackReveal, i)}},
			{{Text: "⏭ Skip", CallbackData: indexed(callbackSkip, i)}},
		}
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleStartQuiz(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	s, err := b.trainer.StartQuiz(b.rng)
	b.mu.Unlock()
	if errors.Is(err, quiz.ErrInsufficientPool) {
		msg := tgbotapi.NewMessage(chatID, "The quiz needs at least 4 words with translations.")
		msg.ReplyMarkup = createKeyboard(mainMenuButtons())
		return b.sendMessage(msg)
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.quizSessions[chatID] = s
	b.mu.Unlock()
	return b.sendQuestion(chatID, s)
}

func (b *Bot) quizSession(chatID int64) (*session.Session[quiz.Question], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.quizSessions[chatID]
	return s, ok
}

func (b *Bot) sendQuestion(chatID int64, s *session.Session[quiz.Question]) error {
	q, _ := s.Current()
	text := fmt.Sprintf("Question %d of %d\n\nWhat is the Hindi for \"%s\"?", s.Index()+1, s.Len(), q.Entry.SourceText)

	rows := make([][]MenuButton, 0, quiz.OptionCount+1)
	for i, option := range q.Options {
		rows = append(rows, []MenuButton{{
			Text:         option,
			CallbackData: fmt.Sprintf("%s%d_%d", callbackAnswerPrefix, s.Index(), i),
		}})
	}
	rows = append(rows, []MenuButton{{Text: "⏭ Skip", CallbackData: indexed(callbackQuizSkip, s.Index())}})

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(rows)
	return b.sendMessage(msg)
}

func (b *Bot) handleQuizAnswer(ctx context.Context, chatID int64, index, choice int) error {
	s, ok := b.quizSession(chatID)
	if !ok || s.Done() {
		return b.noSession(chatID)
	}
	// buttons from an earlier question
	if index != s.Index() {
		return nil
	}

	q, _ := s.Current()
	correct := q.Check(choice)
	if _, err := b.trainer.Answer(q.Entry.ID, correct); err != nil {
		return err
	}
	s.Answer(correct)

	feedback := "✅ Correct!"
	if !correct {
		feedback = fmt.Sprintf("❌ Wrong. %s = %s", q.Entry.SourceText, q.Correct)
	}
	if err := b.sendMessage(tgbotapi.NewMessage(chatID, feedback)); err != nil {
		return err
	}
	return b.nextQuestion(ctx, chatID, s)
}

func (b *Bot) handleQuizSkip(ctx context.Context, chatID int64, index int) error {
	s, ok := b.quizSession(chatID)
	if !ok || s.Done() {
		return b.noSession(chatID)
	}
	if index != s.Index() {
		return nil
	}
	s.Skip()
	return b.nextQuestion(ctx, chatID, s)
}

func (b *Bot) nextQuestion(ctx context.Context, chatID int64, s *session.Session[quiz.Question]) error {
	if !s.Done() {
		return b.sendQuestion(chatID, s)
	}

	b.mu.Lock()
	delete(b.quizSessions, chatID)
	b.mu.Unlock()

	score, err := b.trainer.FinishQuiz(ctx, s)
	if err != nil {
		b.log.WithError(err).Warn("Failed to record quiz")
	}
	b.checkpoint(ctx)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🏁 Quiz complete! Score: %d/%d (%.0f%%)", score.Correct, score.Total, score.Percent()))
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats := b.trainer.Stats(ctx)

	var text strings.Builder
	text.WriteString("📊 Statistics\n\n")
	text.WriteString(fmt.Sprintf("Words: %d\n", stats.Total))
	text.WriteString(fmt.Sprintf("Due now: %d\n", stats.Due))
	text.WriteString(fmt.Sprintf("Reviewed: %d\n", stats.Reviewed))
	text.WriteString(fmt.Sprintf("Average mastery: %.0f%%\n", stats.AverageMastery*100))
	text.WriteString(fmt.Sprintf("Streak: %d days\n\n", stats.StreakDays))
	for i := len(spaced_repetition.Badges) - 1; i >= 0; i-- {
		badge := spaced_repetition.Badges[i]
		symbol := badge.Symbol()
		if symbol == "" {
			symbol = "▫️"
		}
		text.WriteString(fmt.Sprintf("%s %s: %d\n", symbol, badge, stats.Badges[badge]))
	}
	if q := stats.Quizzes; q != nil {
		text.WriteString(fmt.Sprintf("\n🏁 Quizzes: %d, %d/%d correct (%.0f%%)\n", q.Quizzes, q.Correct, q.Questions, q.Accuracy()))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleSave(ctx context.Context, chatID int64) error {
	text := "💾 Progress saved."
	if err := b.trainer.Checkpoint(ctx); err != nil {
		b.log.WithError(err).Error("Save failed")
		text = "❌ Could not save progress. Please try again later."
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// handleWords lists the word list one page at a time
func (b *Bot) handleWords(chatID int64, page int) error {
	entries := b.trainer.Entries()
	pages := (len(entries) + wordsPageSize - 1) / wordsPageSize
	if pages == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "The word list is empty."))
	}
	if page >= pages {
		page = pages - 1
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("📚 Words (page %d of %d)\n\n", page+1, pages))
	start := page * wordsPageSize
	end := start + wordsPageSize
	if end > len(entries) {
		end = len(entries)
	}
	for i := start; i < end; i++ {
		e := entries[i]
		line := fmt.Sprintf("%d. %s %s: %s", i+1, e.Icon, e.SourceText, translation(e))
		if symbol := spaced_repetition.MasteryBadge(&e).Symbol(); symbol != "" {
			line += " " + symbol
		}
		text.WriteString(line + "\n")
	}

	var nav []MenuButton
	if page > 0 {
		nav = append(nav, MenuButton{Text: "⬅️ Previous", CallbackData: wordsPage(page - 1)})
	}
	if page < pages-1 {
		nav = append(nav, MenuButton{Text: "Next ➡️", CallbackData: wordsPage(page + 1)})
	}
	buttons := [][]MenuButton{}
	if len(nav) > 0 {
		buttons = append(buttons, nav)
	}
	if page > 0 {
		buttons = append(buttons, []MenuButton{{Text: "🔄 First page", CallbackData: wordsPage(0)}})
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Back to menu", CallbackData: callbackMenu}})

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) noSession(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "This session has ended. Start a new one from the menu.")
	msg.ReplyMarkup = createKeyboard(mainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) checkpoint(ctx context.Context) {
	if err := b.trainer.Checkpoint(ctx); err != nil {
		b.log.WithError(err).Error("Failed to save progress")
	}
}

func parseAnswer(data string) (index, choice int, err error) {
	parts := strings.Split(strings.TrimPrefix(data, callbackAnswerPrefix), "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid answer callback %q", data)
	}
	if index, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid question index in %q: %w", data, err)
	}
	if choice, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid option index in %q: %w", data, err)
	}
	return index, choice, nil
}

// hint falls back to a pronunciation drill for words without one
func hint(e models.VocabularyEntry) string {
	if e.Hint != "" {
		return e.Hint
	}
	return fmt.Sprintf("Practice saying \"%s\" aloud 3 times", e.SourceText)
}

// translation falls back to a placeholder for words loaded without one
func translation(e models.VocabularyEntry) string {
	if e.TargetText != "" {
		return e.TargetText
	}
	return fmt.Sprintf("हिंदी अनुवाद (%s)", e.SourceText)
}
