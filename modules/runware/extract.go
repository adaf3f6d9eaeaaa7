package runware

import (
	"context"
	"encoding/base64"
	"log"
	"strings"
)

// extractStrategy - 응답의 첫 번째 결과에서 이미지 바이트를 찾는 전략 (못 찾으면 nil)
type extractStrategy func(ctx context.Context, entry map[string]any) []byte

// strategies - 순서대로 시도, 첫 번째 결과가 채택됨
func (c *Client) strategies() []extractStrategy {
	return []extractStrategy{
		c.fromURL,
		fromDataURI,
		fromBase64,
	}
}

// ExtractImageBytes - URL → data URI → base64 순으로 이미지 추출
func (c *Client) ExtractImageBytes(ctx context.Context, response map[string]any) []byte {
	entry := firstEntry(response)
	if entry == nil {
		return nil
	}
	for _, strategy := range c.strategies() {
		if data := strategy(ctx, entry); data != nil {
			return data
		}
	}
	return nil
}

// fromURL - imageURL/url 필드가 있으면 다운로드 (실패는 무시하고 다음 전략으로)
func (c *Client) fromURL(ctx context.Context, entry map[string]any) []byte {
	url := firstString(entry, "imageURL", "url")
	if url == "" {
		return nil
	}
	data, err := c.DownloadImage(ctx, url)
	if err != nil {
		log.Printf("⚠️ [Runware] Image URL fetch failed, trying inline data: %v", err)
		return nil
	}
	return data
}

// fromDataURI - imageDataURI/dataURI 필드 디코딩
func fromDataURI(_ context.Context, entry map[string]any) []byte {
	uri := firstString(entry, "imageDataURI", "dataURI")
	if uri == "" {
		return nil
	}
	encoded := uri
	if strings.HasPrefix(uri, "data:image/") {
		encoded = ""
		if parts := strings.SplitN(uri, ",", 2); len(parts) == 2 {
			encoded = parts[1]
		}
	}
	return decodeBase64(encoded)
}

// fromBase64 - imageBase64Data/base64Data 필드 디코딩
func fromBase64(_ context.Context, entry map[string]any) []byte {
	return decodeBase64(firstString(entry, "imageBase64Data", "base64Data"))
}

func decodeBase64(s string) []byte {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(s); err == nil {
			return data
		}
	}
	return nil
}

// firstEntry - data 배열의 첫 번째 객체
func firstEntry(response map[string]any) map[string]any {
	if response == nil {
		return nil
	}
	data, ok := response["data"].([]any)
	if !ok || len(data) == 0 {
		return nil
	}
	entry, _ := data[0].(map[string]any)
	return entry
}

// firstString - 주어진 키 중 처음으로 비어 있지 않은 문자열 값
func firstString(entry map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := entry[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
