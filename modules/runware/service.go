package runware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/utils"
)

const (
	DefaultEndpoint = "https://api.runware.ai/v1"

	// 결과 이미지 다운로드 상한
	DefaultMaxImageBytes = 64 << 20
)

// Client - Runware HTTP 클라이언트
type Client struct {
	apiKey        string
	endpoint      string
	httpClient    *http.Client
	maxImageBytes int64
}

// Option - Client 설정 옵션
type Option func(*Client)

// WithEndpoint - 엔드포인트 변경 (빈 값이면 기본값 유지)
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient - HTTP 클라이언트 교체
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient - Runware 클라이언트 생성
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		endpoint:      DefaultEndpoint,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
		maxImageBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestImage - 이미지 생성 요청 후 응답에서 이미지 바이트 추출
func (c *Client) RequestImage(ctx context.Context, params Params) (*Result, error) {
	payload := BuildPayload(params)
	task := payload[0]

	log.Printf("🎨 [Runware] Generating image - model: %s, size: %dx%d, steps: %d, cfg: %.1f, prompt: %s",
		task.Model, task.Width, task.Height, task.Steps, task.CFGScale, utils.TruncateString(task.PositivePrompt, 50))

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("❌ [Runware] Request error: %v", err)
		return nil, fmt.Errorf("Runware API error: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ [Runware] API error: status=%d, body=%s", resp.StatusCode, utils.TruncateString(string(bodyBytes), 200))
		return nil, &apperror.RequestError{Service: "Runware", StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil || parsed == nil {
		log.Printf("⚠️ [Runware] Non-JSON success body (%d bytes), keeping raw text", len(bodyBytes))
		parsed = map[string]any{"raw": string(bodyBytes)}
	}

	imageBytes := c.ExtractImageBytes(ctx, parsed)
	if imageBytes != nil {
		log.Printf("✅ [Runware] Image received: %d bytes", len(imageBytes))
	} else {
		log.Printf("⚠️ [Runware] No image data found in response")
	}

	return &Result{Response: parsed, ImageBytes: imageBytes}, nil
}

// DownloadImage - URL에서 이미지 다운로드
func (c *Client) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Runware image fetch failed %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("Runware image exceeds %d bytes", c.maxImageBytes)
	}
	return data, nil
}
