// Package openrouter provides an LLM service adapter using the OpenRouter
// chat completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "anthropic/claude-3.5-sonnet"
	DefaultTimeout = 120 * time.Second

	// maxAttempts bounds retries per model on transient failures.
	maxAttempts = 3
)

// DefaultFallbackModels is the model ladder tried in order when the
// primary model fails.
var DefaultFallbackModels = []string{
	"openai/gpt-4o-mini",
	"meta-llama/llama-3.1-70b-instruct",
}

// Config holds configuration for the OpenRouter LLM service.
type Config struct {
	// APIKey is the OpenRouter API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://openrouter.ai/api/v1).
	BaseURL string

	// Model is the primary chat model.
	Model string

	// FallbackModels are tried in order when the primary model fails.
	FallbackModels []string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Referer and Title populate the OpenRouter attribution headers.
	Referer string
	Title   string
}

// LLMService provides chat completions via OpenRouter, failing over
// through the configured model ladder.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	models  []string
	referer string
	title   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest always carries Temperature: the grounded answer path uses 0,
// which omitempty would silently drop.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenRouter LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.FallbackModels == nil {
		cfg.FallbackModels = DefaultFallbackModels
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	models := append([]string{cfg.Model}, cfg.FallbackModels...)
	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		models:  models,
		referer: cfg.Referer,
		title:   cfg.Title,
	}, nil
}

// Chat conducts a chat completion, walking the model ladder until one
// model answers. Each model gets bounded retries on transient failures.
func (s *LLMService) Chat(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts driven.ChatOptions,
) (*driven.ChatResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no messages", domain.ErrInvalidInput)
	}

	wire := make([]chatMessage, len(messages))
	for i, m := range messages {
		wire[i] = chatMessage{Role: m.Role, Content: m.Content}
	}

	var lastErr error
	for i, model := range s.models {
		if i > 0 {
			logger.Warn("Falling back to model %s: %v", model, lastErr)
		}
		result, err := s.chatWithModel(ctx, model, wire, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w: all models failed: %v", domain.ErrLLMUnavailable, lastErr)
}

func (s *LLMService) chatWithModel(
	ctx context.Context,
	model string,
	messages []chatMessage,
	opts driven.ChatOptions,
) (*driven.ChatResult, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * time.Second
			logger.Debug("Chat retry %d (%s) after %s", attempt, model, backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, retryable, err := s.callAPI(ctx, model, messages, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (s *LLMService) callAPI(
	ctx context.Context,
	model string,
	messages []chatMessage,
	opts driven.ChatOptions,
) (*driven.ChatResult, bool, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        0.95,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.referer != "" {
		req.Header.Set("HTTP-Referer", s.referer)
	}
	if s.title != "" {
		req.Header.Set("X-Title", s.title)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("%w: status 429", domain.ErrRateLimited)
	}
	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("openrouter error (status %d): %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("openrouter error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, false, fmt.Errorf("openrouter error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, false, fmt.Errorf("openrouter: no choices returned")
	}

	modelUsed := chatResp.Model
	if modelUsed == "" {
		modelUsed = model
	}
	return &driven.ChatResult{
		Text:       chatResp.Choices[0].Message.Content,
		ModelUsed:  modelUsed,
		TokensUsed: chatResp.Usage.TotalTokens,
	}, false, nil
}

// ModelName returns the primary model name.
func (s *LLMService) ModelName() string {
	return s.models[0]
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
