package dual

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/common/validator"
)

// JobRequest - HTTP/큐로 전달되는 듀얼 이미지 작업 요청
type JobRequest struct {
	JobID string `json:"job_id,omitempty"`
	PromptComposition

	NegativePrompt string   `json:"negative_prompt,omitempty"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
	Model          string   `json:"model,omitempty"`
	Steps          *int     `json:"steps,omitempty"`
	CFGScale       *float64 `json:"cfg_scale,omitempty"`
	Scheduler      string   `json:"scheduler,omitempty"`

	// base64 또는 data URI
	TemplateImage     string `json:"template_image,omitempty"`
	TemplateImageMime string `json:"template_image_mime,omitempty"`

	Improve bool `json:"improve,omitempty"`
	Upload  bool `json:"upload,omitempty"`
}

// Validate - 작업 ID, 프롬프트 길이, 사이즈 검증 (빈 작업 ID는 호출자가 채움)
func (r *JobRequest) Validate() error {
	if r.JobID != "" {
		if err := validator.ValidateJobID(r.JobID); err != nil {
			return err
		}
	}
	if err := validator.ValidatePromptLength(r.Left, "left"); err != nil {
		return err
	}
	if err := validator.ValidatePromptLength(r.Right, "right"); err != nil {
		return err
	}
	if r.Width < 0 || r.Height < 0 {
		return apperror.NewValidation("size", "Invalid size %dx%d. Width/height must be positive numbers.", r.Width, r.Height)
	}
	return nil
}

// ToJob - 요청을 Runner 작업으로 변환 (outputRoot가 비어 있으면 파일 저장 안 함)
func (r *JobRequest) ToJob(outputRoot string) (Job, error) {
	if err := r.Validate(); err != nil {
		return Job{}, err
	}

	template, mime, err := decodeTemplateImage(r.TemplateImage, r.TemplateImageMime)
	if err != nil {
		return Job{}, err
	}

	width, height := r.Width, r.Height
	if width == 0 {
		width = validator.DefaultWidth
	}
	if height == 0 {
		height = validator.DefaultHeight
	}

	job := Job{
		ID: r.JobID,
		Options: Options{
			PromptComposition: PromptComposition{
				Left:         strings.TrimSpace(r.Left),
				Right:        strings.TrimSpace(r.Right),
				Context:      strings.TrimSpace(r.Context),
				StylePrompt:  r.StylePrompt,
				SystemPrompt: r.SystemPrompt,
			},
			Width:             width,
			Height:            height,
			Model:             r.Model,
			Steps:             r.Steps,
			CFGScale:          r.CFGScale,
			Scheduler:         r.Scheduler,
			NegativePrompt:    r.NegativePrompt,
			TemplateImage:     template,
			TemplateImageMime: mime,
		},
		Improve: r.Improve,
		Upload:  r.Upload,
	}
	if outputRoot != "" && r.JobID != "" {
		job.OutDir = filepath.Join(outputRoot, "runware-dual-"+r.JobID)
	}
	return job, nil
}

// decodeTemplateImage - base64/data URI 템플릿 이미지 디코딩
func decodeTemplateImage(encoded, mime string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, mime, nil
	}
	if strings.HasPrefix(encoded, "data:") {
		header, payload, ok := strings.Cut(encoded, ",")
		if !ok {
			return nil, "", apperror.NewValidation("template_image", "malformed data URI")
		}
		if mime == "" {
			mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		encoded = payload
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", apperror.NewValidation("template_image", "invalid base64: %v", err)
	}
	if len(data) == 0 {
		return nil, "", apperror.NewValidation("template_image", "template image is empty")
	}
	return data, mime, nil
}

// String - 로그용 요약
func (r *JobRequest) String() string {
	return fmt.Sprintf("job=%s size=%dx%d improve=%v upload=%v", r.JobID, r.Width, r.Height, r.Improve, r.Upload)
}
