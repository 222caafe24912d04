package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain"
)

// languageTimeout caps how long a single enhancement call may take; the
// enhancer falls back to the built-in path when the service is slow.
const languageTimeout = 5 * time.Second

// LanguageService delegates query enhancement to a chat-completion model.
type LanguageService struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// LanguageConfig holds the language service settings.
type LanguageConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Logger      *zap.Logger
}

// NewLanguageService creates a chat-based query enhancement client.
func NewLanguageService(cfg *LanguageConfig) *LanguageService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &LanguageService{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Enhance sends the structured enhancement prompt and returns the raw model
// response. The caller parses it defensively; this layer only guards the
// transport.
func (s *LanguageService) Enhance(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, languageTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w: %w", domain.ErrLanguageServiceError, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLanguageServiceError)
	}

	return resp.Choices[0].Message.Content, nil
}
