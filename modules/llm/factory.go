package llm

import (
	"context"
	"fmt"
	"strings"

	"yumcut-cheap-image-generation/modules/common/config"
)

// Options - 공급자 생성 옵션 (빈 값은 환경변수/기본값 사용)
type Options struct {
	Provider        string
	Model           string
	APIKey          string
	ReasoningEffort string
}

// NewProvider - 옵션에 맞는 공급자 생성 (기본 openrouter)
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	cfg := config.GetConfig()

	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = cfg.LLMProvider
	}

	switch name {
	case "", ProviderOpenRouter:
		model := firstNonEmpty(opts.Model, cfg.OpenRouterModel, config.DefaultOpenRouterModel)
		provider, err := NewOpenRouterProvider(model, firstNonEmpty(opts.APIKey, cfg.OpenRouterAPIKey), opts.ReasoningEffort)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case ProviderGemini:
		model := firstNonEmpty(opts.Model, cfg.GeminiModel, config.DefaultGeminiModel)
		provider, err := NewGeminiProvider(ctx, model, firstNonEmpty(opts.APIKey, cfg.GeminiAPIKey))
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (use openrouter or gemini)", name)
	}
}

// HasCredentials - 설정된 공급자의 API 키 존재 여부
func HasCredentials(cfg *config.Config) bool {
	if strings.EqualFold(cfg.LLMProvider, ProviderGemini) {
		return cfg.GeminiAPIKey != ""
	}
	return cfg.OpenRouterAPIKey != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
