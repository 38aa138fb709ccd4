package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arkankau/coffee-chatted/llm"
)

func TestLLMTonePolisherRequest(t *testing.T) {
	var got llm.Request
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (llm.Result, error) {
		got = req
		return llm.Result{Text: `{"title":"Optional","body":"If you want, say hi."}`}, nil
	})
	p := NewLLMTonePolisher(client, " gpt-4o-mini ")
	req, _ := PolishRequestFor(enrichThread(), nudgeDecisionForTest(), 0)
	if _, err := p.PolishNudge(context.Background(), req); err != nil {
		t.Fatalf("PolishNudge() error = %v", err)
	}
	if got.Model != "gpt-4o-mini" || !got.ForceJSON {
		t.Fatalf("request = %+v", got)
	}
	if temp, ok := llm.FloatParam(got.Parameters, "temperature"); !ok || temp != 0.1 {
		t.Fatalf("temperature = %v, %v", temp, ok)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[1].Content, "Usual window: 3-6 days") {
		t.Fatalf("prompt missing window: %s", got.Messages[1].Content)
	}
}

func TestLLMFitNormalizerErrors(t *testing.T) {
	empty := llm.ClientFunc(func(ctx context.Context, req llm.Request) (llm.Result, error) {
		return llm.Result{Text: "  "}, nil
	})
	if _, err := NewLLMFitNormalizer(empty, "m").NormalizeFit(context.Background(), FitRequest{}); !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("empty reply error = %v, want ErrInvalidResponse", err)
	}
	if _, err := NewLLMFitNormalizer(empty, "").NormalizeFit(context.Background(), FitRequest{}); err == nil {
		t.Fatalf("empty model should fail")
	}
	var n *LLMFitNormalizer
	if _, err := n.NormalizeFit(context.Background(), FitRequest{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil normalizer error = %v, want ErrUnavailable", err)
	}
}
