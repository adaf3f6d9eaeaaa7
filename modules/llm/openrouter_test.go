package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/config"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, reasoning string) *OpenRouterProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider("openai/gpt-oss-120b", "test-key", reasoning)
	require.NoError(t, err)
	return p.WithBaseURL(server.URL)
}

func TestOpenRouterGetResponse(t *testing.T) {
	t.Run("요청 본문과 헤더", func(t *testing.T) {
		var body map[string]any
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "https://yumcut-cheap-image-generation", r.Header.Get("HTTP-Referer"))
			assert.Equal(t, "yumcut cheap image generation", r.Header.Get("X-Title"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"content":"  vivid prompt  "}}],"usage":{"cost":0.0012,"total_tokens":10}}`))
		}, "low")

		resp, err := p.GetResponse(context.Background(), Request{Prompt: "a cat", System: " be vivid "})
		require.NoError(t, err)
		assert.Equal(t, "vivid prompt", resp.Text)
		assert.Equal(t, 0.0012, resp.Cost)
		assert.Equal(t, "gen-1", resp.ID)

		assert.Equal(t, "openai/gpt-oss-120b", body["model"])
		assert.Equal(t, 0.2, body["temperature"])
		assert.EqualValues(t, 2000, body["max_tokens"])
		assert.Equal(t, map[string]any{"include": true}, body["usage"])
		assert.Equal(t, true, body["include_reasoning"])
		assert.Equal(t, map[string]any{"effort": "low"}, body["reasoning"])

		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, map[string]any{"role": "system", "content": "be vivid"}, messages[0])
		assert.Equal(t, map[string]any{"role": "user", "content": "a cat"}, messages[1])
	})

	t.Run("reasoning 없으면 필드 생략, system 없으면 user만", func(t *testing.T) {
		var body map[string]any
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}],"meta":{"usage":{"cost":"0.5"}}}`))
		}, "")

		resp, err := p.GetResponse(context.Background(), Request{Prompt: "x"})
		require.NoError(t, err)
		assert.Equal(t, "0.5", resp.Cost)
		assert.NotContains(t, body, "include_reasoning")
		assert.NotContains(t, body, "reasoning")
		assert.Len(t, body["messages"].([]any), 1)
	})

	t.Run("비용이 없으면 generation 조회", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/chat/completions":
				w.Write([]byte(`{"id":"gen-42","choices":[{"message":{"content":"ok"}}]}`))
			case "/generation":
				assert.Equal(t, "gen-42", r.URL.Query().Get("id"))
				w.Write([]byte(`{"data":{"total_cost":0.25}}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}, "")

		resp, err := p.GetResponse(context.Background(), Request{Prompt: "x"})
		require.NoError(t, err)
		assert.Equal(t, 0.25, resp.Cost)
	})

	t.Run("비용 조회 실패는 무시", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/generation" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"id":"gen-1","choices":[{"message":{"content":"ok"}}]}`))
		}, "")

		resp, err := p.GetResponse(context.Background(), Request{Prompt: "x"})
		require.NoError(t, err)
		assert.Nil(t, resp.Cost)
	})

	t.Run("빈 응답은 에러", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"message":{"content":"   "}}],"usage":{"cost":1}}`))
		}, "")

		resp, err := p.GetResponse(context.Background(), Request{Prompt: "x"})
		require.Error(t, err)
		assert.Equal(t, "OpenRouter: empty response", err.Error())
		require.NotNil(t, resp)
		assert.Equal(t, 1.0, resp.Cost)
	})

	t.Run("2xx가 아니면 RequestError", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte("no credits"))
		}, "")

		_, err := p.GetResponse(context.Background(), Request{Prompt: "x"})
		var reqErr *apperror.RequestError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, http.StatusPaymentRequired, reqErr.StatusCode)
		assert.Equal(t, "no credits", reqErr.Body)
	})
}

func TestNewOpenRouterProviderRequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider("m", "   ", "")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	t.Run("명시적 키로 openrouter 생성", func(t *testing.T) {
		p, err := NewProvider(context.Background(), Options{Provider: "openrouter", APIKey: "k", Model: "m1"})
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenRouter, p.Name())
		assert.Equal(t, "m1", p.Model())
	})

	t.Run("알 수 없는 공급자", func(t *testing.T) {
		_, err := NewProvider(context.Background(), Options{Provider: "nope", APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"nope"`)
	})

	t.Run("LLM_PROVIDER 값도 에러에 표시", func(t *testing.T) {
		cfg := config.GetConfig()
		prev := cfg.LLMProvider
		cfg.LLMProvider = "bogus"
		t.Cleanup(func() { cfg.LLMProvider = prev })

		_, err := NewProvider(context.Background(), Options{APIKey: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown LLM provider "bogus"`)
	})

	t.Run("gemini 생성", func(t *testing.T) {
		p, err := NewProvider(context.Background(), Options{Provider: "gemini", APIKey: "k", Model: "gemini-x"})
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, p.Name())
		assert.Equal(t, "gemini-x", p.Model())
	})
}
