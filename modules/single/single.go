package single

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/utils"
	"yumcut-cheap-image-generation/modules/common/validator"
	"yumcut-cheap-image-generation/modules/runware"
)

const (
	DefaultModel          = runware.DefaultModel
	DefaultReferenceModel = "runware:108@20"

	ImproveLogsDir = "prompt-improve-logs"
)

// ImageRequester - runware.Client가 구현
type ImageRequester interface {
	RequestImage(ctx context.Context, params runware.Params) (*runware.Result, error)
}

// Improver - 프롬프트 개선기
type Improver interface {
	Improve(ctx context.Context, prompt string) (string, error)
}

// Options - 단일 이미지 생성 옵션
type Options struct {
	Prompt             string
	Width              int
	Height             int
	Model              string
	Steps              *int
	CFGScale           *float64
	Scheduler          string
	NegativePrompt     string
	ReferenceImage     []byte
	ReferenceImageMime string
	OutDir             string

	// nil이면 개선 생략
	Improver Improver
}

// Output - 저장된 결과물
type Output struct {
	OutDir         string
	Prompt         string
	ImprovedPrompt string
	ImagePath      string
	Files          []string
}

// Run - 개선(선택) → 요청 → 저장
func Run(ctx context.Context, images ImageRequester, opts Options) (*Output, error) {
	if err := validator.ValidatePromptLength(opts.Prompt, "prompt"); err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", opts.OutDir, err)
	}

	out := &Output{OutDir: opts.OutDir, Prompt: opts.Prompt}
	save := func(name string, data []byte) error {
		p := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		out.Files = append(out.Files, p)
		return nil
	}

	if err := save("prompt.txt", []byte(opts.Prompt)); err != nil {
		return nil, err
	}

	finalPrompt := opts.Prompt
	if opts.Improver != nil {
		log.Println("🪄 [Single] Improving prompt...")
		improved, err := opts.Improver.Improve(ctx, opts.Prompt)
		if err != nil {
			return nil, fmt.Errorf("prompt improvement failed: %w", err)
		}
		finalPrompt = improved
		out.ImprovedPrompt = improved
		if err := save("prompt-improved.txt", []byte(improved)); err != nil {
			return nil, err
		}
	}

	// 개선된 프롬프트도 길이 제한을 지켜야 함
	if err := validator.ValidatePromptLength(finalPrompt, "prompt"); err != nil {
		return nil, err
	}

	params := runware.Params{
		Prompt:         finalPrompt,
		Model:          resolveModel(opts.Model, len(opts.ReferenceImage) > 0),
		Width:          opts.Width,
		Height:         opts.Height,
		Steps:          opts.Steps,
		CFGScale:       opts.CFGScale,
		Scheduler:      opts.Scheduler,
		NegativePrompt: opts.NegativePrompt,
		OutputFormat:   "jpg",
	}
	if len(opts.ReferenceImage) > 0 {
		mime := opts.ReferenceImageMime
		if mime == "" {
			mime = "image/png"
		}
		params.ReferenceImages = []string{utils.ToDataURL(opts.ReferenceImage, mime)}
	}

	requestJSON, err := json.MarshalIndent(runware.BuildPayload(params), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if err := save("runware-request.json", requestJSON); err != nil {
		return nil, err
	}

	log.Printf("🎨 [Single] Requesting image (model: %s, size: %dx%d)", params.Model, params.Width, params.Height)
	result, err := images.RequestImage(ctx, params)
	if err != nil {
		return nil, err
	}

	responseJSON, err := json.MarshalIndent(result.Response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := save("runware-response.json", responseJSON); err != nil {
		return nil, err
	}

	if len(result.ImageBytes) == 0 {
		return nil, &apperror.GenerationError{Message: "Runware did not return image data."}
	}
	if err := save("image.jpg", result.ImageBytes); err != nil {
		return nil, err
	}
	out.ImagePath = filepath.Join(opts.OutDir, "image.jpg")

	log.Printf("✅ [Single] Saved outputs to %s", opts.OutDir)
	return out, nil
}

// resolveModel - 명시 모델이 없으면 레퍼런스 이미지 유무로 결정
func resolveModel(model string, hasReference bool) string {
	if model != "" {
		return model
	}
	if hasReference {
		return DefaultReferenceModel
	}
	return DefaultModel
}
