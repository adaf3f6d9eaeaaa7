package llm

import "context"

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	DefaultTemperature = 0.2
	DefaultMaxTokens   = 2000
)

// Request - 텍스트 생성 요청
type Request struct {
	Prompt string
	System string
}

// Response - 텍스트 생성 결과
// Cost는 공급자에 따라 숫자 또는 문자열
type Response struct {
	Text  string `json:"text"`
	Cost  any    `json:"cost,omitempty"`
	Usage any    `json:"usage,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Provider - 텍스트 생성 공급자
type Provider interface {
	Name() string
	Model() string
	GetResponse(ctx context.Context, req Request) (*Response, error)
}
