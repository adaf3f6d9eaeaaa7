package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yumcut-cheap-image-generation/modules/common/apperror"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name           string
		size           string
		width, height  string
		wantW, wantH   int
		wantValidation bool
	}{
		{name: "기본값", wantW: 1024, wantH: 1024},
		{name: "WxH", size: "768x512", wantW: 768, wantH: 512},
		{name: "대문자 X와 공백", size: " 640X480 ", wantW: 640, wantH: 480},
		{name: "width/height 쌍", width: "800", height: "600", wantW: 800, wantH: 600},
		{name: "소수점 버림", width: "800.9", height: "600.2", wantW: 800, wantH: 600},
		{name: "잘못된 형식", size: "big", wantValidation: true},
		{name: "0 크기", size: "0x512", wantValidation: true},
		{name: "width만 지정", width: "800", wantValidation: true},
		{name: "음수", width: "-1", height: "10", wantValidation: true},
		{name: "숫자가 아님", width: "abc", height: "10", wantValidation: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := ParseSize(tt.size, tt.width, tt.height)
			if tt.wantValidation {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestValidatePromptLength(t *testing.T) {
	assert.Error(t, ValidatePromptLength(" a ", "left"))
	assert.NoError(t, ValidatePromptLength("ab", "left"))
	assert.NoError(t, ValidatePromptLength(strings.Repeat("x", MaxPromptChars), "right"))

	err := ValidatePromptLength(strings.Repeat("x", MaxPromptChars+1), "right")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long (1901)")

	// 멀티바이트 문자는 rune 단위로 센다
	assert.NoError(t, ValidatePromptLength(strings.Repeat("가", MaxPromptChars), "prompt"))
}

func TestValidateJobID(t *testing.T) {
	for _, id := range []string{"abc", "job_42", "3f2b8c1e-9d4a-4b7e-8f00-1a2b3c4d5e6f", strings.Repeat("a", 64)} {
		assert.NoError(t, ValidateJobID(id), id)
	}
	for _, id := range []string{"", "x/../../etc", "..", "a/b", `a\b`, "job id", strings.Repeat("a", 65)} {
		err := ValidateJobID(id)
		require.Error(t, err, id)
		assert.True(t, apperror.IsValidation(err))
	}
}

func TestResolvePromptText(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "left.txt")
	require.NoError(t, os.WriteFile(file, []byte("  A sunrise over mountains \n"), 0o644))

	t.Run("인라인 텍스트 우선", func(t *testing.T) {
		text, err := ResolvePromptText("  inline  ", file, "left")
		require.NoError(t, err)
		assert.Equal(t, "inline", text)
	})

	t.Run("파일에서 읽기", func(t *testing.T) {
		text, err := ResolvePromptText("", file, "left")
		require.NoError(t, err)
		assert.Equal(t, "A sunrise over mountains", text)
	})

	t.Run("둘 다 없으면 ValidationError", func(t *testing.T) {
		_, err := ResolvePromptText("   ", "", "right")
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "--right-file=PATH")
	})

	t.Run("없는 파일은 I/O 에러", func(t *testing.T) {
		_, err := ResolvePromptText("", filepath.Join(dir, "missing.txt"), "left")
		require.Error(t, err)
		assert.False(t, apperror.IsValidation(err))
	})
}
