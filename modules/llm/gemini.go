package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/utils"
)

// GeminiProvider - google.golang.org/genai 기반 공급자
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider - Gemini API 클라이언트 생성
func NewGeminiProvider(ctx context.Context, model, apiKey string) (*GeminiProvider, error) {
	return newGeminiProvider(ctx, model, apiKey, genai.HTTPOptions{})
}

func newGeminiProvider(ctx context.Context, model, apiKey string, httpOptions genai.HTTPOptions) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini: API key not set. Set GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Printf("✅ [Gemini] Client initialized (model: %s)", model)
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string  { return ProviderGemini }
func (p *GeminiProvider) Model() string { return p.model }

// GetResponse - GenerateContent 호출
func (p *GeminiProvider) GetResponse(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(DefaultTemperature)),
		MaxOutputTokens: DefaultMaxTokens,
	}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}

	log.Printf("📤 [Gemini] Calling %s: %s", p.model, utils.TruncateString(req.Prompt, 80))
	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	out := &Response{
		Text: strings.TrimSpace(result.Text()),
		ID:   result.ResponseID,
	}
	if result.UsageMetadata != nil {
		out.Usage = result.UsageMetadata
	}
	if out.Text == "" {
		return out, &apperror.GenerationError{Message: "Gemini: empty response"}
	}

	log.Printf("📥 [Gemini] Received %d chars", len(out.Text))
	return out, nil
}
