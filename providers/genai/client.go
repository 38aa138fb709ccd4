package genai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/llm"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type Config struct {
	APIKey         string
	Endpoint       string
	RequestTimeout time.Duration
}

// Client adapts the Gemini API to llm.Client. System messages become the
// system instruction; assistant messages are sent with the model role.
type Client struct {
	client  *genai.Client
	timeout time.Duration
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		cc.HTTPOptions.BaseURL = endpoint
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	return &Client{client: client, timeout: cfg.RequestTimeout}, nil
}

func (c *Client) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	if c == nil || c.client == nil {
		return llm.Result{}, fmt.Errorf("genai: nil client")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = DefaultModel
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents, system := splitMessages(req.Messages)
	if len(contents) == 0 {
		return llm.Result{}, fmt.Errorf("genai: no user content")
	}
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.ForceJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	if t, ok := llm.FloatParam(req.Parameters, "temperature"); ok {
		cfg.Temperature = genai.Ptr(float32(t))
	}
	if n, ok := llm.FloatParam(req.Parameters, "max_tokens"); ok && n > 0 {
		cfg.MaxOutputTokens = int32(n)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return llm.Result{}, fmt.Errorf("genai: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.Result{}, fmt.Errorf("genai: empty candidates")
	}

	res := llm.Result{
		Text:     resp.Text(),
		Duration: time.Since(start),
	}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = llm.Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return res, nil
}

func splitMessages(msgs []llm.Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case "system":
			system = append(system, text)
		case "assistant", "model":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}
