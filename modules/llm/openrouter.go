package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/utils"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	openRouterReferer = "https://yumcut-cheap-image-generation"
	openRouterTitle   = "yumcut cheap image generation"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Temperature      float64        `json:"temperature"`
	MaxTokens        int            `json:"max_tokens"`
	Usage            map[string]any `json:"usage"`
	IncludeReasoning bool           `json:"include_reasoning,omitempty"`
	Reasoning        map[string]any `json:"reasoning,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		ID      string `json:"id"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
	Meta  struct {
		Usage map[string]any `json:"usage"`
	} `json:"meta"`
}

// OpenRouterProvider - OpenRouter chat completions 공급자
type OpenRouterProvider struct {
	apiKey          string
	model           string
	reasoningEffort string
	baseURL         string
	httpClient      *http.Client
}

// NewOpenRouterProvider - API 키가 비어 있으면 에러
func NewOpenRouterProvider(model, apiKey, reasoningEffort string) (*OpenRouterProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter: API key not set. Set OPENROUTER_API_KEY")
	}
	return &OpenRouterProvider{
		apiKey:          apiKey,
		model:           model,
		reasoningEffort: reasoningEffort,
		baseURL:         DefaultOpenRouterBaseURL,
		httpClient:      &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// WithBaseURL - API 주소 변경 (테스트용)
func (p *OpenRouterProvider) WithBaseURL(baseURL string) *OpenRouterProvider {
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

func (p *OpenRouterProvider) Name() string  { return ProviderOpenRouter }
func (p *OpenRouterProvider) Model() string { return p.model }

// GetResponse - chat completions 호출 후 텍스트와 비용 반환
func (p *OpenRouterProvider) GetResponse(ctx context.Context, req Request) (*Response, error) {
	messages := []chatMessage{}
	if system := strings.TrimSpace(req.System); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Usage:       map[string]any{"include": true},
	}
	if p.reasoningEffort != "" {
		body.IncludeReasoning = true
		body.Reasoning = map[string]any{"effort": p.reasoningEffort}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	log.Printf("📤 [OpenRouter] Calling %s (reasoning: %s): %s", p.model, orNone(p.reasoningEffort), utils.TruncateString(req.Prompt, 80))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.setHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("OpenRouter request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperror.RequestError{Service: "OpenRouter", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var data chatResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	out := &Response{ID: data.ID}
	if data.Usage != nil {
		out.Usage = data.Usage
	}
	if len(data.Choices) > 0 {
		out.Text = strings.TrimSpace(data.Choices[0].Message.Content)
	}

	if cost, ok := costValue(data.Usage["cost"]); ok {
		out.Cost = cost
	} else if cost, ok := costValue(data.Meta.Usage["cost"]); ok {
		out.Cost = cost
	} else {
		id := data.ID
		if id == "" && len(data.Choices) > 0 {
			id = data.Choices[0].ID
		}
		if id != "" {
			out.Cost = p.lookupCost(ctx, id)
		}
	}

	if out.Text == "" {
		return out, &apperror.GenerationError{Message: "OpenRouter: empty response"}
	}

	log.Printf("📥 [OpenRouter] Received %d chars (cost: %v)", len(out.Text), out.Cost)
	return out, nil
}

// lookupCost - generation 조회 API로 비용 확인 (실패 시 nil)
func (p *OpenRouterProvider) lookupCost(ctx context.Context, id string) any {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/generation?id="+url.QueryEscape(id), nil)
	if err != nil {
		return nil
	}
	p.setHeaders(httpReq)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("⚠️ [OpenRouter] Cost lookup failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	var gen struct {
		Data struct {
			TotalCost any `json:"total_cost"`
		} `json:"data"`
		Usage struct {
			Cost any `json:"cost"`
		} `json:"usage"`
		Cost any `json:"cost"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil
	}
	for _, candidate := range []any{gen.Data.TotalCost, gen.Usage.Cost, gen.Cost} {
		if cost, ok := costValue(candidate); ok {
			return cost
		}
	}
	return nil
}

func (p *OpenRouterProvider) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
}

// costValue - 숫자 또는 문자열만 비용으로 인정
func costValue(v any) (any, bool) {
	switch v.(type) {
	case float64, string:
		return v, true
	}
	return nil, false
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
