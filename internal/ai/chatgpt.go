package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/meguminnnnnnnnn/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/pkg/models"
)

// Completer is the part of the OpenAI client used here
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest, opts ...openai.ChatCompletionRequestOption) (openai.ChatCompletionResponse, error)
}

// ChatGPT represents a client for the OpenAI ChatGPT API
type ChatGPT struct {
	client      Completer
	model       string
	maxTokens   int
	temperature float32
}

// New creates a new ChatGPT client
func New(apiKey, model string) (*ChatGPT, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	config := openai.DefaultConfig(apiKey)
	return NewWithClient(openai.NewClientWithConfig(config), model), nil
}

// NewWithClient wraps an existing completion client
func NewWithClient(client Completer, model string) *ChatGPT {
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &ChatGPT{
		client:      client,
		model:       model,
		maxTokens:   100,
		temperature: 0.7,
	}
}

// GenerateExample generates an example sentence for the given word
func (c *ChatGPT) GenerateExample(ctx context.Context, entry models.VocabularyEntry) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a short, practical example sentence in English that naturally includes the word '%s' (which translates to '%s' in Hindi).",
		entry.SourceText, entry.TargetText,
	)

	temperature := c.temperature
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You help Hindi speakers learn English. Reply with a single example sentence."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	example := strings.TrimSpace(resp.Choices[0].Message.Content)
	if example == "" {
		return "", fmt.Errorf("empty example returned")
	}
	return example, nil
}

// Fallback is the example shown when nothing better is available
func Fallback(word string) string {
	return fmt.Sprintf("%s is an important word to learn.", word)
}

// Examples picks an example sentence for an entry: its own example first,
// then a generated one, then the fallback template.
// Generated sentences are cached per entry.
type Examples struct {
	gpt *ChatGPT
	log *logrus.Entry

	mu    sync.Mutex
	cache map[string]string
}

// NewExamples creates an example source; gpt may be nil
func NewExamples(gpt *ChatGPT) *Examples {
	return &Examples{
		gpt:   gpt,
		log:   logger.New("ai"),
		cache: make(map[string]string),
	}
}

// For returns an example sentence for entry
func (x *Examples) For(ctx context.Context, entry models.VocabularyEntry) string {
	if entry.Example != "" {
		return entry.Example
	}
	if x == nil || x.gpt == nil {
		return Fallback(entry.SourceText)
	}

	x.mu.Lock()
	cached, ok := x.cache[entry.ID]
	x.mu.Unlock()
	if ok {
		return cached
	}

	example, err := x.gpt.GenerateExample(ctx, entry)
	if err != nil {
		x.log.WithError(err).WithField("word", entry.SourceText).Warn("Error generating example")
		return Fallback(entry.SourceText)
	}

	x.mu.Lock()
	x.cache[entry.ID] = example
	x.mu.Unlock()
	return example
}
