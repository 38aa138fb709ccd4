// Package openai talks to OpenAI-compatible chat completion endpoints.
package openai

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

	"github.com/arkankau/coffee-chatted/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	defaultTimeout = 90 * time.Second
	completionPath = "/v1/chat/completions"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New builds a chat-completions client. A non-positive timeout falls back to
// 90 seconds. A base URL ending in /v1 is accepted.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(strings.TrimRight(strings.TrimSpace(baseURL), "/"), "/v1")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  strings.TrimSpace(apiKey),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx reply from the endpoint.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openai http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openai http %d: %s", e.Status, e.Body)
}

// rejectsResponseFormat reports whether the endpoint refused JSON mode, which
// some compatible servers do.
func (e *APIError) rejectsResponseFormat() bool {
	return strings.Contains(strings.ToLower(e.Message), "response_format")
}

type completionRequest struct {
	Model          string            `json:"model"`
	Messages       []llm.Message     `json:"messages"`
	Temperature    *float64          `json:"temperature,omitempty"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message llm.Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends req. When ForceJSON is set and the endpoint rejects
// response_format, the request is repeated once without it.
func (c *Client) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()
	out, err := c.complete(ctx, buildRequest(req, req.ForceJSON))
	var apiErr *APIError
	if req.ForceJSON && errors.As(err, &apiErr) && apiErr.rejectsResponseFormat() {
		out, err = c.complete(ctx, buildRequest(req, false))
	}
	if err != nil {
		return llm.Result{}, err
	}
	if len(out.Choices) == 0 {
		return llm.Result{}, fmt.Errorf("openai: empty choices")
	}
	return llm.Result{
		Text: out.Choices[0].Message.Content,
		Usage: llm.Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
			TotalTokens:  out.Usage.TotalTokens,
		},
		Duration: time.Since(start),
	}, nil
}

func buildRequest(req llm.Request, jsonMode bool) completionRequest {
	body := completionRequest{Model: req.Model, Messages: req.Messages}
	if t, ok := llm.FloatParam(req.Parameters, "temperature"); ok {
		body.Temperature = &t
	}
	if n, ok := llm.FloatParam(req.Parameters, "max_tokens"); ok && n > 0 {
		body.MaxTokens = int(n)
	}
	if jsonMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}
	return body
}

func (c *Client) complete(ctx context.Context, body completionRequest) (*completionResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+completionPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var out completionResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if decodeErr == nil && out.Error != nil {
			apiErr.Message = strings.TrimSpace(out.Error.Message)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	return &out, nil
}
