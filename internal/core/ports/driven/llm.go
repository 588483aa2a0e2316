package driven

import (
	"context"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// ChatOptions configures a chat completion call.
type ChatOptions struct {
	// MaxTokens bounds the generated output length.
	MaxTokens int

	// Temperature controls randomness. The grounded answer path uses 0
	// for deterministic legal tone.
	Temperature float64
}

// ChatResult is the outcome of a chat completion call.
type ChatResult struct {
	// Text is the generated completion.
	Text string

	// ModelUsed names the model that actually served the request
	// (the fallback model when the primary failed over).
	ModelUsed string

	// TokensUsed is the total token usage reported by the provider.
	TokensUsed int
}

// LLMService provides chat completions for answer generation and
// verification.
//
// Implementations retry transient failures (rate limits, 5xx) with bounded
// backoff and may fail over from a primary to a configured fallback model
// before giving up.
type LLMService interface {
	// Chat conducts a chat completion over the given messages.
	Chat(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (*ChatResult, error)

	// ModelName returns the primary model name.
	ModelName() string

	// Close releases resources.
	Close() error
}
