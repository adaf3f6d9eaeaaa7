package runware

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultModel        = "runware:108@1"
	DefaultSteps        = 8
	DefaultCFGScale     = 1.0
	DefaultScheduler    = "UniPC"
	DefaultOutputFormat = "jpg"
	DefaultSize         = 1024

	// runware:108@ 계열은 별도 지정이 없으면 기본 LoRA를 붙인다
	loraFamilyPrefix = "runware:108@"
	defaultLoraModel = "runware:108@8"
)

// BuildPayload - 파라미터를 Runware 요청 페이로드(태스크 1개짜리 배열)로 변환
func BuildPayload(p Params) []TaskDescriptor {
	model := orString(p.Model, DefaultModel)

	width := p.Width
	if width <= 0 {
		width = DefaultSize
	}
	height := p.Height
	if height <= 0 {
		height = DefaultSize
	}
	steps := DefaultSteps
	if p.Steps != nil {
		steps = *p.Steps
	}
	cfgScale := DefaultCFGScale
	if p.CFGScale != nil {
		cfgScale = *p.CFGScale
	}
	includeCost := true
	if p.IncludeCost != nil {
		includeCost = *p.IncludeCost
	}

	task := TaskDescriptor{
		TaskType:       "imageInference",
		TaskUUID:       uuid.New().String(),
		Model:          model,
		NumberResults:  1,
		Width:          width,
		Height:         height,
		Steps:          steps,
		OutputType:     "URL",
		OutputFormat:   orString(p.OutputFormat, DefaultOutputFormat),
		IncludeCost:    includeCost,
		CheckNSFW:      p.CheckNSFW,
		CFGScale:       cfgScale,
		Scheduler:      orString(p.Scheduler, DefaultScheduler),
		PositivePrompt: p.Prompt,
		NegativePrompt: p.NegativePrompt,
		Lora:           resolveLoras(model, p.Loras),
	}
	if len(p.ReferenceImages) > 0 {
		task.ReferenceImages = p.ReferenceImages
	}

	return []TaskDescriptor{task}
}

// resolveLoras - LoRA 지정 상태에 따라 최종 목록 결정 (비어 있으면 nil)
func resolveLoras(model string, sel LoraSelection) []LoraEntry {
	if !sel.explicit {
		if strings.HasPrefix(model, loraFamilyPrefix) {
			return []LoraEntry{{Model: defaultLoraModel, Weight: 1}}
		}
		return nil
	}
	if len(sel.items) == 0 {
		return nil
	}

	entries := make([]LoraEntry, 0, len(sel.items))
	for _, l := range sel.items {
		weight := 1.0
		if l.Weight != nil {
			weight = *l.Weight
		}
		entries = append(entries, LoraEntry{Model: l.Model, Weight: weight})
	}
	return entries
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
