package api

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/ai"
	"github.com/example/vocabdrill/internal/quiz"
	"github.com/example/vocabdrill/internal/spaced_repetition"
	"github.com/example/vocabdrill/internal/trainer"
	"github.com/example/vocabdrill/pkg/models"
)

// --- DTO ---

type answerReq struct {
	Correct *bool `json:"correct" binding:"required"`
}

type entryResp struct {
	models.VocabularyEntry
	Badge spaced_repetition.Badge `json:"badge"`
}

type questionResp struct {
	EntryID      string   `json:"entry_id"`
	Word         string   `json:"word"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// --- Handler ---

// Handler serves the trainer over JSON
type Handler struct {
	trainer  *trainer.Trainer
	examples *ai.Examples
	log      *logrus.Entry

	mu  sync.Mutex
	rng *rand.Rand
}

// NewHandler creates a handler backed by tr
func NewHandler(tr *trainer.Trainer, examples *ai.Examples, rng *rand.Rand, log *logrus.Entry) *Handler {
	return &Handler{trainer: tr, examples: examples, rng: rng, log: log}
}

// ListEntries returns every word with its mastery badge
func (h *Handler) ListEntries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": toEntries(h.trainer.Entries())})
}

// ListDue returns the words due for review, weakest first
func (h *Handler) ListDue(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	due := h.trainer.Due(limit)
	c.JSON(http.StatusOK, gin.H{"count": len(due), "entries": toEntries(due)})
}

// GetEntry returns one word together with an example sentence
func (h *Handler) GetEntry(c *gin.Context) {
	e, ok := h.trainer.Entry(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entry":   toEntry(e),
		"example": h.examples.For(c.Request.Context(), e),
	})
}

// Answer records a review outcome for one word
func (h *Handler) Answer(c *gin.Context) {
	var req answerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := h.trainer.Answer(c.Param("id"), *req.Correct)
	if errors.Is(err, trainer.ErrUnknownEntry) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("Failed to record answer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record answer"})
		return
	}
	c.JSON(http.StatusOK, toEntry(e))
}

// Quiz builds a multiple choice quiz over the whole word list
func (h *Handler) Quiz(c *gin.Context) {
	count, ok := intQuery(c, "count", spaced_repetition.DefaultQuizLimit)
	if !ok {
		return
	}

	entries := h.trainer.Entries()
	pool := make([]*models.VocabularyEntry, len(entries))
	for i := range entries {
		pool[i] = &entries[i]
	}

	h.mu.Lock()
	questions, err := quiz.BuildChecked(pool, count, h.rng)
	h.mu.Unlock()
	if errors.Is(err, quiz.ErrInsufficientPool) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := make([]questionResp, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, questionResp{
			EntryID:      q.Entry.ID,
			Word:         q.Entry.SourceText,
			Options:      q.Options[:],
			CorrectIndex: q.CorrectIndex,
		})
	}
	c.JSON(http.StatusOK, gin.H{"questions": resp})
}

// Stats returns progress figures
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.trainer.Stats(c.Request.Context()))
}

// RecentQuizzes returns the latest recorded quizzes, newest first
func (h *Handler) RecentQuizzes(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 10)
	if !ok {
		return
	}
	results, err := h.trainer.RecentQuizzes(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to load quiz history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load quiz history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": results})
}

// Save checkpoints progress immediately
func (h *Handler) Save(c *gin.Context) {
	if err := h.trainer.Checkpoint(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("Save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "progress saved"})
}

// Health reports that the process is up
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "words": len(h.trainer.Entries())})
}

// intQuery reads a non-negative integer query parameter, replying 400 when it is malformed
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, false
	}
	return n, true
}

func toEntry(e models.VocabularyEntry) entryResp {
	return entryResp{VocabularyEntry: e, Badge: spaced_repetition.MasteryBadge(&e)}
}

func toEntries(entries []models.VocabularyEntry) []entryResp {
	out := make([]entryResp, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e))
	}
	return out
}
