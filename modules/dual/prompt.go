package dual

import (
	"strings"
	"unicode/utf8"
)

// MaxPromptChars - 합성 프롬프트 최대 길이 (rune 기준)
const MaxPromptChars = 1900

// DefaultSystemPrompt - 시스템 템플릿 미지정 시 사용
var DefaultSystemPrompt = strings.Join([]string{
	"Create a single square image split vertically into two equal halves, without any borders or panel lines.",
	"Left half: render the LEFT prompt only.",
	"Right half: render the RIGHT prompt only.",
	"Do not blend the two halves; keep them independent.",
	"No text, captions, logos, or watermarks.",
	"Maintain consistent lighting and style across both halves.",
	"LEFT prompt: {{SENTENCE1}}",
	"RIGHT prompt: {{SENTENCE2}}",
	"Context (for understanding only, do not depict extra content): {{CONTEXT}}",
}, "\n")

// DefaultNegativePrompt - 네거티브 프롬프트 미지정 시 사용
var DefaultNegativePrompt = strings.Join([]string{
	"text",
	"watermark",
	"logo",
	"signature",
	"caption",
	"blurry",
	"low quality",
	"distorted",
	"extra limbs",
	"duplicate",
}, ", ")

// BuildDualPrompt - 좌/우 문장과 스타일/시스템 템플릿을 하나의 프롬프트로 합성
// 길이 초과 시: 스타일 제거 → 그래도 초과면 MaxPromptChars에서 절단
func BuildDualPrompt(c PromptComposition) string {
	left := strings.TrimSpace(c.Left)
	right := strings.TrimSpace(c.Right)
	style := strings.TrimSpace(c.StylePrompt)
	system := strings.TrimSpace(c.SystemPrompt)
	if system == "" {
		system = DefaultSystemPrompt
	}

	replacer := strings.NewReplacer(
		"{{SENTENCE1}}", left,
		"{{SENTENCE2}}", right,
		"{{LEFT}}", left,
		"{{RIGHT}}", right,
		"{{CONTEXT}}", strings.TrimSpace(c.Context),
	)

	build := func(includeStyle bool) string {
		parts := make([]string, 0, 2)
		if includeStyle && style != "" {
			parts = append(parts, applyTemplate(replacer, style))
		}
		parts = append(parts, applyTemplate(replacer, system))
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	}

	prompt := build(true)
	if utf8.RuneCountInString(prompt) > MaxPromptChars && style != "" {
		prompt = build(false)
	}
	if utf8.RuneCountInString(prompt) > MaxPromptChars {
		prompt = string([]rune(prompt)[:MaxPromptChars])
	}
	return prompt
}

func applyTemplate(r *strings.Replacer, template string) string {
	return strings.TrimSpace(r.Replace(template))
}
