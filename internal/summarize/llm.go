package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// llmTimeout bounds the summary generation call; past it the rule-based
// fallback takes over.
const llmTimeout = 30 * time.Second

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmChatRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	Temperature float64      `json:"temperature,omitempty"`
}

type llmChatResponse struct {
	ID      string      `json:"id"`
	Object  string      `json:"object"`
	Created int64       `json:"created"`
	Model   string      `json:"model"`
	Choices []llmChoice `json:"choices"`
	Error   *llmError   `json:"error,omitempty"`
}

type llmChoice struct {
	Index        int        `json:"index"`
	Message      llmMessage `json:"message"`
	FinishReason string     `json:"finish_reason,omitempty"`
}

type llmError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// LLMClient calls an OpenAI-compatible /chat/completions endpoint for
// free-text generation.
type LLMClient struct {
	Host        string
	Model       string
	Temperature float64
	Client      *http.Client
}

// NewLLMClient returns a client for the given host, or nil if no host is
// configured.
func NewLLMClient(host, model string, temperature float64) *LLMClient {
	if host == "" {
		return nil
	}
	return &LLMClient{
		Host:        host,
		Model:       model,
		Temperature: temperature,
		Client:      &http.Client{Timeout: llmTimeout},
	}
}

// Generate sends a single-prompt chat completion request and returns the
// generated text.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(llmChatRequest{
		Model:       c.Model,
		Messages:    []llmMessage{{Role: "user", Content: prompt}},
		Stream:      false,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("http://%s/chat/completions", c.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to connect to LLM: %w", err)
	}
	defer resp.Body.Close()

	var body llmChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode LLM response: %w", err)
	}

	if body.Error != nil {
		return "", fmt.Errorf("LLM error: %s (%s)", body.Error.Message, body.Error.Type)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	return body.Choices[0].Message.Content, nil
}
