package llmutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arkankau/coffee-chatted/llm"
	genaiProvider "github.com/arkankau/coffee-chatted/providers/genai"
	openaiProvider "github.com/arkankau/coffee-chatted/providers/openai"
	"github.com/spf13/viper"
)

// ErrDisabled is returned when no LLM provider is configured.
var ErrDisabled = errors.New("llm provider disabled")

const defaultOpenAIModel = "gpt-4o-mini"

type ClientConfig struct {
	Provider       string
	Endpoint       string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

func ProviderFromViper() string {
	return normalizeProvider(viper.GetString("llm.provider"))
}

func EndpointFromViper() string {
	return strings.TrimSpace(viper.GetString("llm.endpoint"))
}

func APIKeyFromViper() string {
	return APIKeyForProvider(ProviderFromViper())
}

func ModelFromViper() string {
	return ModelForProvider(ProviderFromViper())
}

// APIKeyForProvider prefers llm.api_key and falls back to the provider's
// conventional environment variable.
func APIKeyForProvider(provider string) string {
	switch normalizeProvider(provider) {
	case "gemini":
		return firstNonEmpty(viper.GetString("llm.api_key"), viper.GetString("gemini_api_key"))
	default:
		return firstNonEmpty(viper.GetString("llm.api_key"), viper.GetString("openai_api_key"))
	}
}

func ModelForProvider(provider string) string {
	switch normalizeProvider(provider) {
	case "gemini":
		return firstNonEmpty(viper.GetString("llm.model"), genaiProvider.DefaultModel)
	default:
		return firstNonEmpty(viper.GetString("llm.model"), defaultOpenAIModel)
	}
}

func ConfigFromViper() ClientConfig {
	provider := ProviderFromViper()
	return ClientConfig{
		Provider:       provider,
		Endpoint:       EndpointFromViper(),
		APIKey:         APIKeyForProvider(provider),
		Model:          ModelForProvider(provider),
		RequestTimeout: viper.GetDuration("llm.request_timeout"),
	}
}

// ClientFromConfig builds the configured client. Provider "none" yields
// ErrDisabled; a provider without an API key does too, so callers can fall
// back to rule-based behavior.
func ClientFromConfig(ctx context.Context, cfg ClientConfig) (llm.Client, error) {
	provider := normalizeProvider(cfg.Provider)
	switch provider {
	case "none", "off", "disabled":
		return nil, ErrDisabled
	case "openai", "openai_custom":
		if strings.TrimSpace(cfg.APIKey) == "" && strings.TrimSpace(cfg.Endpoint) == "" {
			return nil, fmt.Errorf("%w: openai api key is empty", ErrDisabled)
		}
		return openaiProvider.New(cfg.Endpoint, cfg.APIKey, cfg.RequestTimeout), nil
	case "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("%w: gemini api key is empty", ErrDisabled)
		}
		return genaiProvider.New(ctx, genaiProvider.Config{
			APIKey:         cfg.APIKey,
			Endpoint:       cfg.Endpoint,
			RequestTimeout: cfg.RequestTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "openai"
	}
	return provider
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
