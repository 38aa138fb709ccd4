package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/arkankau/coffee-chatted/llm"
	"github.com/arkankau/coffee-chatted/nudge"
)

const requestTemperature = 0.1

// LLMFitNormalizer asks a chat model to normalize profile text.
type LLMFitNormalizer struct {
	Client llm.Client
	Model  string
}

func NewLLMFitNormalizer(client llm.Client, model string) *LLMFitNormalizer {
	return &LLMFitNormalizer{Client: client, Model: strings.TrimSpace(model)}
}

func (n *LLMFitNormalizer) NormalizeFit(ctx context.Context, req FitRequest) (nudge.FitAssessment, error) {
	if n == nil || n.Client == nil {
		return nudge.FitAssessment{}, ErrUnavailable
	}
	prompt, err := buildFitPrompt(req)
	if err != nil {
		return nudge.FitAssessment{}, fmt.Errorf("render fit prompt: %w", err)
	}
	raw, err := chatJSON(ctx, n.Client, n.Model, fitSystemPrompt, prompt, 400)
	if err != nil {
		return nudge.FitAssessment{}, err
	}
	return ParseFitAssessment(raw)
}

// LLMTonePolisher asks a chat model to soften nudge text.
type LLMTonePolisher struct {
	Client llm.Client
	Model  string
}

func NewLLMTonePolisher(client llm.Client, model string) *LLMTonePolisher {
	return &LLMTonePolisher{Client: client, Model: strings.TrimSpace(model)}
}

func (p *LLMTonePolisher) PolishNudge(ctx context.Context, req PolishRequest) (Polish, error) {
	if p == nil || p.Client == nil {
		return Polish{}, ErrUnavailable
	}
	prompt, err := buildTonePrompt(req)
	if err != nil {
		return Polish{}, fmt.Errorf("render tone prompt: %w", err)
	}
	raw, err := chatJSON(ctx, p.Client, p.Model, toneSystemPrompt, prompt, 200)
	if err != nil {
		return Polish{}, err
	}
	return ParsePolish(raw)
}

func chatJSON(ctx context.Context, client llm.Client, model, system, user string, maxTokens int) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("empty llm model")
	}
	res, err := client.Chat(ctx, llm.Request{
		Model:     model,
		ForceJSON: true,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Parameters: map[string]any{
			"temperature": requestTemperature,
			"max_tokens":  maxTokens,
		},
	})
	if err != nil {
		return "", err
	}
	raw := strings.TrimSpace(res.Text)
	if raw == "" {
		return "", fmt.Errorf("%w: empty reply", ErrInvalidResponse)
	}
	return raw, nil
}
