// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-lens/internal/decode"
)

// jsonSystemPrompt steers a model toward emitting only a JSON payload. The
// decoder still tolerates prose and fences around it.
const jsonSystemPrompt = "You are a professional information extraction assistant. " +
	"Please return results in JSON format only, without any other content."

// Helper wraps a Client with the prompt-and-decode operations the pipeline
// stages share.
type Helper struct {
	client Client
}

// NewHelper returns a Helper over the given client.
func NewHelper(client Client) *Helper {
	return &Helper{client: client}
}

// Ask sends a single-turn prompt, with an optional system turn, and returns
// the response text.
func (h *Helper) Ask(ctx context.Context, prompt, system string) (string, error) {
	var messages []Message
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})
	return h.client.Chat(ctx, messages)
}

// ExtractJSON sends the prompt with the JSON-only system turn and decodes the
// response payload into v. A decode failure is returned as-is (a
// *decode.Error) so callers can treat it as a per-task failure.
func (h *Helper) ExtractJSON(ctx context.Context, prompt string, v any) error {
	response, err := h.Ask(ctx, prompt, jsonSystemPrompt)
	if err != nil {
		return err
	}
	return decode.Into(response, v)
}

// Summarize asks for a plain-text summary of content bounded to maxChars.
func (h *Helper) Summarize(ctx context.Context, content string, maxChars int) (string, error) {
	prompt := fmt.Sprintf(
		"Please summarize the key points of the following content in no more than %d characters:\n\n%s",
		maxChars, content)
	return h.Ask(ctx, prompt, "")
}
