package dual

import (
	"context"

	"yumcut-cheap-image-generation/modules/common/storage"
	"yumcut-cheap-image-generation/modules/runware"
)

// DefaultModel - 듀얼 이미지 기본 모델 (레퍼런스 이미지 지원)
const DefaultModel = "runware:108@20"

// PromptComposition - 합성 프롬프트 입력
type PromptComposition struct {
	Left         string `json:"left"`
	Right        string `json:"right"`
	Context      string `json:"context,omitempty"`
	StylePrompt  string `json:"style_prompt,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Stage - 파이프라인 단계
type Stage string

const (
	StageImprove       Stage = "improve"
	StageComposePrompt Stage = "compose_prompt"
	StageRequest       Stage = "request"
	StageExtractImage  Stage = "extract_image"
	StageSplit         Stage = "split"
	StageSave          Stage = "save"
	StageUpload        Stage = "upload"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// StageFunc - 단계 진행 알림 콜백 (nil 허용)
type StageFunc func(stage Stage, detail string)

func (f StageFunc) emit(stage Stage, detail string) {
	if f != nil {
		f(stage, detail)
	}
}

// Options - 듀얼 이미지 생성 옵션
type Options struct {
	PromptComposition

	Width             int
	Height            int
	Model             string
	Steps             *int
	CFGScale          *float64
	Scheduler         string
	NegativePrompt    string
	TemplateImage     []byte
	TemplateImageMime string

	OnStage StageFunc
}

// Result - 듀얼 이미지 생성 결과 (분할 전 합성 이미지)
type Result struct {
	Prompt     string
	ImageBytes []byte
	Response   map[string]any
}

// ImageRequester - 이미지 생성 API 호출 (runware.Client가 구현)
type ImageRequester interface {
	RequestImage(ctx context.Context, params runware.Params) (*runware.Result, error)
}

// Improver - 프롬프트 개선기
type Improver interface {
	Improve(ctx context.Context, prompt string) (string, error)
}

// Uploader - 결과물 업로드 (storage.Client가 구현)
type Uploader interface {
	UploadArtifacts(ctx context.Context, jobID string, artifacts []storage.Artifact) ([]string, error)
}

// Metadata - metadata.json 내용
type Metadata struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	LeftPrompt  string `json:"leftPrompt"`
	RightPrompt string `json:"rightPrompt"`
	Context     string `json:"context,omitempty"`
	PromptSent  string `json:"promptSent"`
	Model       string `json:"model"`
}

// Job - 러너가 처리하는 작업 단위
type Job struct {
	ID      string
	Options Options
	Improve bool
	Upload  bool
	// OutDir가 비어 있으면 파일을 쓰지 않는다
	OutDir string
}

// Output - 작업 처리 결과
type Output struct {
	JobID       string
	Metadata    Metadata
	Composite   []byte
	Left        []byte
	Right       []byte
	OutDir      string
	Files       []string
	StoredPaths []string
}
