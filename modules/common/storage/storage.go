package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"yumcut-cheap-image-generation/modules/common/config"
	"yumcut-cheap-image-generation/modules/common/validator"
)

// Artifact - 업로드할 결과물 하나
type Artifact struct {
	Name        string
	Data        []byte
	ContentType string
}

// PreviewConverter - 합성 이미지를 WebP 미리보기로 변환 (utils.ConvertToWebP)
type PreviewConverter func([]byte, float32) ([]byte, error)

type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	toWebP     PreviewConverter
}

// NewClient - Storage 클라이언트 생성
func NewClient(cfg *config.Config, toWebP PreviewConverter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		serviceKey: cfg.SupabaseServiceKey,
		bucket:     cfg.SupabaseStorageBucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		toWebP:     toWebP,
	}
}

// UploadArtifacts - 결과물을 dual/<jobID>/ 아래에 업로드 (dual.jpg는 WebP 미리보기도 함께)
func (c *Client) UploadArtifacts(ctx context.Context, jobID string, artifacts []Artifact) ([]string, error) {
	if err := validator.ValidateJobID(jobID); err != nil {
		return nil, err
	}
	uploads := append([]Artifact(nil), artifacts...)

	if c.toWebP != nil {
		for _, a := range artifacts {
			if a.Name != "dual.jpg" {
				continue
			}
			webpData, err := c.toWebP(a.Data, 90.0)
			if err != nil {
				log.Printf("⚠️ [Storage] WebP preview skipped: %v", err)
				break
			}
			uploads = append(uploads, Artifact{Name: "preview.webp", Data: webpData, ContentType: "image/webp"})
			break
		}
	}

	paths := make([]string, 0, len(uploads))
	for _, a := range uploads {
		filePath := fmt.Sprintf("dual/%s/%s", jobID, a.Name)
		if err := c.upload(ctx, filePath, a.Data, a.ContentType); err != nil {
			return paths, err
		}
		paths = append(paths, filePath)
	}

	log.Printf("✅ [Storage] Uploaded %d artifacts for job %s", len(paths), jobID)
	return paths, nil
}

// upload - Supabase Storage REST API로 파일 업로드
func (c *Client) upload(ctx context.Context, filePath string, data []byte, contentType string) error {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, filePath)
	log.Printf("📤 [Storage] Uploading %s (%d bytes)", filePath, len(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", filePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
