package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"senseact/internal/config"
)

// OpenAI-compatible chat completions wire types.
type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int         `json:"index"`
	Message      TextMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type TextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client calls an OpenAI-compatible chat completions endpoint. Both the
// frame analyzer and the window summarizer sit on top of it.
type Client struct {
	conf    config.LLMConfig
	httpCli *http.Client
}

func NewClient(conf config.LLMConfig) *Client {
	return &Client{
		conf: conf,
		httpCli: &http.Client{
			Timeout: conf.Timeout(),
		},
	}
}

// ChatCompletion sends one user turn and returns the assistant's text. The
// call is bounded by the configured timeout regardless of the parent
// context.
func (c *Client) ChatCompletion(ctx context.Context, content []ContentPart) (string, error) {
	req := ChatCompletionRequest{
		Model:       c.conf.Model,
		Messages:    []ChatMessage{{Role: "user", Content: content}},
		Temperature: c.conf.Temperature,
		MaxTokens:   c.conf.MaxTokens,
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	apiURL := strings.TrimSuffix(c.conf.BaseURL, "/") + "/chat/completions"

	ctx, cancel := context.WithTimeout(ctx, c.conf.Timeout())
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.conf.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.conf.APIKey)
	}

	resp, err := c.httpCli.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completions response")
	}

	return chatResp.Choices[0].Message.Content, nil
}
