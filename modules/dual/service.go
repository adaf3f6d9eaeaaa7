package dual

import (
	"context"
	"fmt"
	"log"
	"strings"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/utils"
	"yumcut-cheap-image-generation/modules/runware"
)

// Service - 듀얼 이미지 오케스트레이터
type Service struct {
	images ImageRequester
}

// NewService - Service 생성
func NewService(images ImageRequester) *Service {
	return &Service{images: images}
}

// GenerateDualImage - 프롬프트 합성 → 이미지 요청 → 이미지 추출
// 분할은 호출자가 splitter로 수행한다
func (s *Service) GenerateDualImage(ctx context.Context, opts Options) (*Result, error) {
	opts.OnStage.emit(StageComposePrompt, "")
	prompt := BuildDualPrompt(opts.PromptComposition)
	log.Printf("🧩 [Dual] Composed prompt: %d chars", len([]rune(prompt)))

	negativePrompt := strings.TrimSpace(opts.NegativePrompt)
	if negativePrompt == "" {
		negativePrompt = DefaultNegativePrompt
	}

	var referenceImages []string
	if len(opts.TemplateImage) > 0 {
		mime := opts.TemplateImageMime
		if mime == "" {
			mime = "image/png"
		}
		referenceImages = []string{utils.ToDataURL(opts.TemplateImage, mime)}
		log.Printf("🖼️ [Dual] Template image attached: %s, %d bytes", mime, len(opts.TemplateImage))
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	includeCost := true

	opts.OnStage.emit(StageRequest, model)
	result, err := s.images.RequestImage(ctx, runware.Params{
		Prompt:          prompt,
		Model:           model,
		Width:           opts.Width,
		Height:          opts.Height,
		Steps:           opts.Steps,
		CFGScale:        opts.CFGScale,
		Scheduler:       opts.Scheduler,
		NegativePrompt:  negativePrompt,
		IncludeCost:     &includeCost,
		OutputFormat:    "jpg",
		ReferenceImages: referenceImages,
	})
	if err != nil {
		return nil, fmt.Errorf("dual image request failed: %w", err)
	}

	opts.OnStage.emit(StageExtractImage, "")
	if result == nil || len(result.ImageBytes) == 0 {
		return nil, &apperror.GenerationError{Message: "no image data returned"}
	}

	log.Printf("✅ [Dual] Composite image received: %d bytes", len(result.ImageBytes))
	return &Result{
		Prompt:     prompt,
		ImageBytes: result.ImageBytes,
		Response:   result.Response,
	}, nil
}
