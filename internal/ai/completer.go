// Package ai talks to text-completion providers. Callers get back raw text;
// turning it into structured data is the job of modeljson and normalize.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/furqan-uddin/SkillForge-Backend/internal/config"
)

var ErrNotConfigured = errors.New("ai provider is not configured")

// Request is a single prompt with its system instruction.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks providers that support it for a JSON-only response.
	JSON bool
}

// Completer returns the raw completion text for a request. Implementations
// make exactly one attempt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds the provider selected by cfg.AIProvider. The client is meant to
// be created once and shared.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.AIProvider {
	case "", "groq":
		return NewGroqClient(&GroqConfig{
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.GroqModel,
			Timeout: timeout,
		}), nil
	case "gemini":
		return NewGeminiClient(ctx, &GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

// Unavailable fails every request with ErrNotConfigured. It stands in for a
// provider whose credentials are missing so the rest of the API still runs.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
