package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabdrill/internal/ai"
	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/internal/trainer"
	"github.com/example/vocabdrill/internal/vocabulary"
	"github.com/example/vocabdrill/pkg/models"
)

const chatID = 42

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests int
	err      error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no messages sent")
	}
	return f.messages[len(f.messages)-1]
}

type memStore struct {
	snap *models.Snapshot
}

func (m *memStore) Load(ctx context.Context) (*models.Snapshot, error) {
	return &models.Snapshot{}, nil
}
func (m *memStore) Save(ctx context.Context, s *models.Snapshot) error {
	m.snap = s
	return nil
}
func (m *memStore) Close() error { return nil }

func newTestBot(t *testing.T, words int) (*Bot, *fakeSender, *trainer.Trainer, *memStore) {
	t.Helper()
	entries := make([]*models.VocabularyEntry, 0, words)
	for i := 0; i < words; i++ {
		entries = append(entries, vocabulary.NewEntry(fmt.Sprintf("word%d", i), fmt.Sprintf("शब्द%d", i)))
	}
	store := &memStore{}
	tr := trainer.New(entries, store, trainer.Options{
		FlashcardLimit: 3,
		QuizLimit:      3,
		Now:            func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) },
		Log:            logger.Discard(),
	})
	if err := tr.Open(context.Background()); err != nil {
		t.Fatal(err)
	}

	api := &fakeSender{}
	b := newBot(api, tr, ai.NewExamples(nil), rand.New(rand.NewSource(3)))
	b.log = logger.Discard()
	return b, api, tr, store
}

func command(text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func press(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestStartSubscribesToReminders(t *testing.T) {
	b, api, _, _ := newTestBot(t, 4)
	b.handleUpdate(context.Background(), command("/start"))

	if !strings.Contains(api.last(t).Text, "Welcome") {
		t.Errorf("unexpected reply %q", api.last(t).Text)
	}
	if err := b.SendReminders(5); err != nil {
		t.Fatalf("SendReminders() = %v", err)
	}
	got := api.last(t)
	if got.ChatID != chatID || !strings.Contains(got.Text, "5 words") {
		t.Errorf("reminder = %+v", got)
	}
}

func TestSendRemindersReportsErrors(t *testing.T) {
	b, api, _, _ := newTestBot(t, 4)
	b.handleUpdate(context.Background(), command("/start"))
	api.err = errors.New("blocked")
	if err := b.SendReminders(1); err == nil {
		t.Error("expected error")
	}
}

func TestFlashcardFlow(t *testing.T) {
	b, api, tr, store := newTestBot(t, 5)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/flashcards"))
	if !strings.Contains(api.last(t).Text, "Word 1 of 3") {
		t.Fatalf("first card = %q", api.last(t).Text)
	}

	b.handleUpdate(ctx, press(indexed(callbackReveal, 0)))
	revealed := api.last(t).Text
	if !strings.Contains(revealed, "शब्द0") || !strings.Contains(revealed, "word0 is an important word to learn.") {
		t.Errorf("revealed card = %q", revealed)
	}
	if !strings.Contains(revealed, `Practice saying "word0" aloud 3 times`) {
		t.Errorf("revealed card should carry the pronunciation tip: %q", revealed)
	}

	b.handleUpdate(ctx, press(indexed(callbackKnow, 0)))
	b.handleUpdate(ctx, press(indexed(callbackDontKnow, 1)))
	b.handleUpdate(ctx, press(indexed(callbackSkip, 2)))

	if !strings.Contains(api.last(t).Text, "You knew 1 of 2 words") {
		t.Errorf("summary = %q", api.last(t).Text)
	}
	if api.requests != 4 {
		t.Errorf("answered %d callbacks, want 4", api.requests)
	}

	known, _ := tr.Entry(vocabulary.EntryID("word0"))
	missed, _ := tr.Entry(vocabulary.EntryID("word1"))
	skipped, _ := tr.Entry(vocabulary.EntryID("word2"))
	if known.MasteryLevel != 0.15 || missed.ReviewCount != 1 || skipped.ReviewCount != 0 {
		t.Errorf("mastery not updated: %+v %+v %+v", known, missed, skipped)
	}
	if store.snap == nil {
		t.Error("finished session should be checkpointed")
	}

	b.handleUpdate(ctx, press(indexed(callbackKnow, 2)))
	if !strings.Contains(api.last(t).Text, "session has ended") {
		t.Errorf("stale press = %q", api.last(t).Text)
	}
}

func TestQuizFlow(t *testing.T) {
	b, api, tr, _ := newTestBot(t, 6)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/quiz"))
	if !strings.Contains(api.last(t).Text, "Question 1 of 3") {
		t.Fatalf("first question = %q", api.last(t).Text)
	}

	for i := 0; i < 3; i++ {
		s, ok := b.quizSession(chatID)
		if !ok {
			t.Fatal("quiz session missing")
		}
		q, _ := s.Current()
		choice := q.CorrectIndex
		if i == 2 {
			choice = (q.CorrectIndex + 1) % 4
		}
		b.handleUpdate(ctx, press(fmt.Sprintf("answer_%d_%d", i, choice)))
	}

	if !strings.Contains(api.last(t).Text, "Score: 2/3") {
		t.Errorf("final message = %q", api.last(t).Text)
	}
	if _, ok := b.quizSession(chatID); ok {
		t.Error("finished quiz should be cleared")
	}
	if got := tr.Stats(ctx).Reviewed; got != 3 {
		t.Errorf("reviewed = %d, want 3", got)
	}
}

func TestQuizIgnoresStaleButtons(t *testing.T) {
	b, api, _, _ := newTestBot(t, 6)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/quiz"))
	before := len(api.messages)
	b.handleUpdate(ctx, press("answer_2_0"))
	if len(api.messages) != before {
		t.Error("stale answer should be ignored")
	}
}

func TestFlashcardIgnoresPressesForOtherCards(t *testing.T) {
	b, api, tr, _ := newTestBot(t, 5)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/flashcards"))
	b.handleUpdate(ctx, press(indexed(callbackReveal, 0)))
	b.handleUpdate(ctx, press(indexed(callbackKnow, 0)))
	before := len(api.messages)

	// a second tap on the first card's buttons
	b.handleUpdate(ctx, press(indexed(callbackKnow, 0)))
	b.handleUpdate(ctx, press(indexed(callbackSkip, 0)))
	b.handleUpdate(ctx, press(indexed(callbackReveal, 5)))

	if len(api.messages) != before {
		t.Error("presses for another card should be ignored")
	}
	second, _ := tr.Entry(vocabulary.EntryID("word1"))
	if second.ReviewCount != 0 || second.MasteryLevel != 0 {
		t.Errorf("unseen card was graded: %+v", second)
	}
	s, _ := b.learningSession(chatID)
	if s.Index() != 1 {
		t.Errorf("session index = %d, want 1", s.Index())
	}
}

func TestConcurrentPressesGradeOnce(t *testing.T) {
	b, _, tr, _ := newTestBot(t, 6)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/quiz"))
	s, _ := b.quizSession(chatID)
	q, _ := s.Current()
	data := fmt.Sprintf("answer_0_%d", q.CorrectIndex)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			b.handleUpdate(ctx, press(data))
		}()
	}
	close(start)
	wg.Wait()

	e, _ := tr.Entry(q.Entry.ID)
	if e.ReviewCount != 1 {
		t.Errorf("question graded %d times, want 1", e.ReviewCount)
	}
	if answered, _ := s.Tally(); answered != 1 {
		t.Errorf("session answered = %d, want 1", answered)
	}
}

func TestWordsListPages(t *testing.T) {
	b, api, _, _ := newTestBot(t, 12)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/words"))
	first := api.last(t)
	if !strings.Contains(first.Text, "page 1 of 2") || !strings.Contains(first.Text, "1. W word0: शब्द0") || strings.Contains(first.Text, "word10") {
		t.Errorf("first page = %q", first.Text)
	}
	markup := first.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if got := *markup.InlineKeyboard[0][0].CallbackData; got != wordsPage(1) {
		t.Errorf("next button = %q", got)
	}

	b.handleUpdate(ctx, press(wordsPage(1)))
	if text := api.last(t).Text; !strings.Contains(text, "page 2 of 2") || !strings.Contains(text, "12. W word11") {
		t.Errorf("second page = %q", text)
	}

	b.handleUpdate(ctx, press(wordsPage(9)))
	if text := api.last(t).Text; !strings.Contains(text, "page 2 of 2") {
		t.Errorf("out of range page = %q", text)
	}
}

func TestQuizNeedsFourWords(t *testing.T) {
	b, api, _, _ := newTestBot(t, 3)
	b.handleUpdate(context.Background(), command("/quiz"))
	if !strings.Contains(api.last(t).Text, "at least 4 words") {
		t.Errorf("reply = %q", api.last(t).Text)
	}
}

func TestStatsAndSave(t *testing.T) {
	b, api, _, store := newTestBot(t, 4)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/stats"))
	text := api.last(t).Text
	if !strings.Contains(text, "Words: 4") || !strings.Contains(text, "Due now: 4") {
		t.Errorf("stats = %q", text)
	}

	b.handleUpdate(ctx, command("/save"))
	if store.snap == nil || !strings.Contains(api.last(t).Text, "saved") {
		t.Errorf("save reply = %q", api.last(t).Text)
	}
}

func TestUnknownInput(t *testing.T) {
	b, api, _, _ := newTestBot(t, 4)
	ctx := context.Background()

	b.handleUpdate(ctx, command("/dance"))
	if !strings.Contains(api.last(t).Text, "Unknown command") {
		t.Errorf("reply = %q", api.last(t).Text)
	}
	b.handleUpdate(ctx, tgbotapi.Update{Message: &tgbotapi.Message{Text: "hi", Chat: &tgbotapi.Chat{ID: chatID}}})
	if !strings.Contains(api.last(t).Text, "I don't understand") {
		t.Errorf("reply = %q", api.last(t).Text)
	}
}

func TestParseIndexed(t *testing.T) {
	cases := []struct {
		data   string
		action string
		index  int
		ok     bool
	}{
		{"know_3", callbackKnow, 3, true},
		{"dont_know_0", callbackDontKnow, 0, true},
		{"quiz_skip_2", callbackQuizSkip, 2, true},
		{"words_1", callbackWords, 1, true},
		{"know", "", 0, false},
		{"know_x", "", 0, false},
		{"_4", "", 0, false},
	}
	for _, c := range cases {
		action, index, ok := parseIndexed(c.data)
		if ok != c.ok || action != c.action || index != c.index {
			t.Errorf("parseIndexed(%q) = %q, %d, %v", c.data, action, index, ok)
		}
	}
}

func TestParseAnswer(t *testing.T) {
	index, choice, err := parseAnswer("answer_3_1")
	if err != nil || index != 3 || choice != 1 {
		t.Errorf("parseAnswer() = %d, %d, %v", index, choice, err)
	}
	for _, bad := range []string{"answer_", "answer_x_1", "answer_1_y", "answer_1_2_3"} {
		if _, _, err := parseAnswer(bad); err == nil {
			t.Errorf("parseAnswer(%q) should fail", bad)
		}
	}
}

func TestHint(t *testing.T) {
	if got := hint(models.VocabularyEntry{SourceText: "Kite", Hint: "rhymes with light"}); got != "rhymes with light" {
		t.Errorf("hint() = %q", got)
	}
	if got := hint(models.VocabularyEntry{SourceText: "Kite"}); got != `Practice saying "Kite" aloud 3 times` {
		t.Errorf("hint() = %q", got)
	}
}

func TestTranslationPlaceholder(t *testing.T) {
	if got := translation(models.VocabularyEntry{SourceText: "Kite"}); got != "हिंदी अनुवाद (Kite)" {
		t.Errorf("translation() = %q", got)
	}
}
