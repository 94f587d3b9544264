// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the remote text-generation gateway: conversation in, text
// out. Each provider client retries transient failures internally with a
// fixed delay and surfaces only the final outcome, so callers never see
// partial-failure internals. Which provider, model, and endpoint to use is
// purely a configuration concern.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// Message is one turn of a conversation sent to a provider.
type Message struct {
	// Role is "system", "user", or "assistant".
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends conversations to a text-generation provider.
type Client interface {
	// Chat sends the conversation and blocks until the full response text
	// is available or retries are exhausted.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatStream sends the conversation and invokes emit for each response
	// chunk as it arrives. The chunk sequence is finite and not
	// restartable. A non-nil error from emit stops the stream.
	ChatStream(ctx context.Context, messages []Message, emit func(chunk string) error) error
}

// New builds the client selected by cfg.Provider. Unknown providers fall
// back to the OpenAI-compatible client, which covers most hosted and local
// endpoints via cfg.APIBase.
func New(cfg types.LLMConfig) Client {
	switch cfg.Provider {
	case "anthropic":
		return newAnthropicClient(cfg)
	case "deepseek":
		return newOpenAIClient(cfg, "https://api.deepseek.com")
	case "zhipu":
		return newOpenAIClient(cfg, "https://open.bigmodel.cn/api/paas/v4")
	case "ollama":
		c := newOpenAIClient(cfg, "http://localhost:11434/v1")
		if c.apiKey == "" {
			// Ollama ignores the key but the request schema wants one.
			c.apiKey = "ollama"
		}
		return c
	default:
		return newOpenAIClient(cfg, "https://api.openai.com/v1")
	}
}

// callWithRetry runs fn up to maxRetries times with a fixed delay between
// attempts. Retry state is local to the call.
func callWithRetry(ctx context.Context, maxRetries int, delay time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}
