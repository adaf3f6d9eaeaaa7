package dual

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildDualPromptDefaultTemplate(t *testing.T) {
	prompt := BuildDualPrompt(PromptComposition{
		Left:  "  A sunrise over mountains ",
		Right: "A sunset over the ocean",
	})

	assert.Contains(t, prompt, "LEFT prompt: A sunrise over mountains")
	assert.Contains(t, prompt, "RIGHT prompt: A sunset over the ocean")
	assert.True(t, strings.HasPrefix(prompt, "Create a single square image split vertically"))
	assert.True(t, strings.HasSuffix(prompt, "do not depict extra content):"), "빈 context는 빈 문자열로 치환 후 trim")
	assert.NotContains(t, prompt, "{{")
	assert.LessOrEqual(t, utf8.RuneCountInString(prompt), MaxPromptChars)
}

func TestBuildDualPromptTemplates(t *testing.T) {
	t.Run("스타일은 시스템 앞에 빈 줄로 구분", func(t *testing.T) {
		prompt := BuildDualPrompt(PromptComposition{
			Left:         "cat",
			Right:        "dog",
			Context:      "pets",
			StylePrompt:  "Watercolor style for {{SENTENCE1}} and {{SENTENCE2}}.",
			SystemPrompt: "L={{SENTENCE1}} R={{SENTENCE2}} C={{CONTEXT}}",
		})
		assert.Equal(t, "Watercolor style for cat and dog.\n\nL=cat R=dog C=pets", prompt)
	})

	t.Run("모든 플레이스홀더 치환과 LEFT/RIGHT 별칭", func(t *testing.T) {
		prompt := BuildDualPrompt(PromptComposition{
			Left:         "a",
			Right:        "b",
			SystemPrompt: "{{LEFT}}|{{SENTENCE1}}|{{RIGHT}}|{{SENTENCE2}}|{{LEFT}}",
		})
		assert.Equal(t, "a|a|b|b|a", prompt)
	})

	t.Run("공백뿐인 시스템 템플릿은 기본값 사용", func(t *testing.T) {
		prompt := BuildDualPrompt(PromptComposition{Left: "x", Right: "y", SystemPrompt: "   "})
		assert.Contains(t, prompt, "Do not blend the two halves")
	})
}

func TestBuildDualPromptLengthBudget(t *testing.T) {
	system := "L={{SENTENCE1}} R={{SENTENCE2}}"

	t.Run("스타일 포함 초과 시 스타일 전체 제거", func(t *testing.T) {
		style := strings.Repeat("s", MaxPromptChars)
		in := PromptComposition{Left: "left", Right: "right", StylePrompt: style, SystemPrompt: system}

		prompt := BuildDualPrompt(in)
		systemOnly := BuildDualPrompt(PromptComposition{Left: "left", Right: "right", SystemPrompt: system})

		assert.Equal(t, systemOnly, prompt)
		assert.Equal(t, "L=left R=right", prompt)
		assert.NotContains(t, prompt, "sss")
	})

	t.Run("시스템만으로도 초과하면 정확히 1900자에서 절단", func(t *testing.T) {
		long := strings.Repeat("word ", 500)
		in := PromptComposition{Left: long, Right: "right", StylePrompt: "style", SystemPrompt: system}

		untruncated := strings.TrimSpace("L=" + strings.TrimSpace(long) + " R=right")
		prompt := BuildDualPrompt(in)

		assert.Equal(t, MaxPromptChars, utf8.RuneCountInString(prompt))
		assert.True(t, strings.HasPrefix(untruncated, prompt))
		assert.NotContains(t, prompt, "style")
	})

	t.Run("멀티바이트는 rune 단위로 절단", func(t *testing.T) {
		in := PromptComposition{Left: strings.Repeat("가", 3000), Right: "b", SystemPrompt: "{{SENTENCE1}}"}
		prompt := BuildDualPrompt(in)

		assert.True(t, utf8.ValidString(prompt))
		assert.Equal(t, MaxPromptChars, utf8.RuneCountInString(prompt))
	})

	t.Run("정확히 1900자는 그대로", func(t *testing.T) {
		in := PromptComposition{Left: strings.Repeat("a", MaxPromptChars), Right: "b", SystemPrompt: "{{SENTENCE1}}"}
		assert.Equal(t, strings.Repeat("a", MaxPromptChars), BuildDualPrompt(in))
	})
}

func TestBuildDualPromptDeterministic(t *testing.T) {
	in := PromptComposition{Left: "A", Right: "B", Context: "C", StylePrompt: "S {{CONTEXT}}"}
	first := BuildDualPrompt(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildDualPrompt(in))
	}
}

func TestDefaultNegativePrompt(t *testing.T) {
	assert.Equal(t,
		"text, watermark, logo, signature, caption, blurry, low quality, distorted, extra limbs, duplicate",
		DefaultNegativePrompt)
}
