// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-lens/internal/httputil"
	"github.com/pdiddy/paper-lens/pkg/types"
)

const anthropicVersion = "2023-06-01"

// anthropicClient speaks the Anthropic Messages API. System turns travel in
// a dedicated request field rather than the message list.
type anthropicClient struct {
	cfg     types.LLMConfig
	apiBase string
	client  *http.Client
}

func newAnthropicClient(cfg types.LLMConfig) *anthropicClient {
	base := cfg.APIBase
	if base == "" {
		base = "https://api.anthropic.com"
	}
	return &anthropicClient{
		cfg:     cfg,
		apiBase: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// Chat sends the conversation and retries with a fixed delay on failure.
func (c *anthropicClient) Chat(ctx context.Context, messages []Message) (string, error) {
	return callWithRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryDelay, func(ctx context.Context) (string, error) {
		return c.chatOnce(ctx, messages)
	})
}

func (c *anthropicClient) chatOnce(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding messages response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("messages response has no text content")
}

// ChatStream emits each text delta from the SSE event stream.
func (c *anthropicClient) ChatStream(ctx context.Context, messages []Message, emit func(string) error) error {
	resp, err := c.post(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return fmt.Errorf("decoding stream event: %w", err)
		}
		if event.Type != "content_block_delta" || event.Delta.Text == "" {
			continue
		}
		if err := emit(event.Delta.Text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *anthropicClient) post(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	// Pull system turns out of the message list; the Messages API carries
	// them separately.
	var system string
	chat := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			system = m.Content
			continue
		}
		chat = append(chat, m)
	}

	maxTokens := c.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     c.cfg.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  chat,
		Stream:    stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating messages request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("calling messages endpoint: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("messages endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return resp, nil
}
