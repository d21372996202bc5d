package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultURL is the OpenAI chat completions endpoint.
	DefaultURL = "https://api.openai.com/v1/chat/completions"

	DefaultModel = "gpt-4o-mini"

	// DefaultPrompt asks for a verbatim transcription.
	DefaultPrompt = "Write down the entire text you see on this image word for word"

	DefaultMaxTokens = 640
)

// ErrNoAPIKey is returned when the client has no credentials configured.
var ErrNoAPIKey = errors.New("vision API key not configured")

// Client talks to a chat completions endpoint.
type Client struct {
	URL       string
	Model     string
	APIKey    string
	MaxTokens int

	HTTPClient *http.Client
}

// NewClient creates a client with defaults for any empty field.
func NewClient(url, model, apiKey string) *Client {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		URL:       url,
		Model:     model,
		APIKey:    apiKey,
		MaxTokens: DefaultMaxTokens,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Result is the model's answer.
type Result struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Extract sends the image at url, usually a data: URL, to the model with
// prompt (DefaultPrompt when empty).
func (c *Client) Extract(ctx context.Context, url, prompt string) (*Result, error) {
	if c.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if url == "" {
		return nil, fmt.Errorf("no image data")
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	req := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL:    url,
					Detail: "low",
				}},
			},
		}},
		MaxTokens: c.MaxTokens,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vision endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("vision endpoint error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("vision endpoint returned no choices")
	}

	return &Result{
		Text:  out.Choices[0].Message.Content,
		Model: c.Model,
	}, nil
}
