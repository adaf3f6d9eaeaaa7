package dual

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yumcut-cheap-image-generation/modules/common/apperror"
	"yumcut-cheap-image-generation/modules/runware"
)

func TestGenerateDualImage(t *testing.T) {
	t.Run("기본값으로 요청을 구성한다", func(t *testing.T) {
		fake := &fakeRequester{result: &runware.Result{
			Response:   map[string]any{"data": []any{}},
			ImageBytes: []byte("composite"),
		}}
		var stages []Stage

		result, err := NewService(fake).GenerateDualImage(context.Background(), Options{
			PromptComposition: PromptComposition{Left: "A sunrise over mountains", Right: "A sunset over the ocean"},
			Width:             1024,
			Height:            1024,
			TemplateImage:     []byte{1, 2, 3},
			OnStage:           func(s Stage, _ string) { stages = append(stages, s) },
		})
		require.NoError(t, err)
		require.Len(t, fake.calls, 1)

		params := fake.calls[0]
		assert.Equal(t, DefaultModel, params.Model)
		assert.Equal(t, DefaultNegativePrompt, params.NegativePrompt)
		assert.Equal(t, "jpg", params.OutputFormat)
		require.NotNil(t, params.IncludeCost)
		assert.True(t, *params.IncludeCost)
		require.Len(t, params.ReferenceImages, 1)
		assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), params.ReferenceImages[0])
		assert.Equal(t, result.Prompt, params.Prompt)

		assert.Contains(t, result.Prompt, "A sunrise over mountains")
		assert.Contains(t, result.Prompt, "A sunset over the ocean")
		assert.Equal(t, []byte("composite"), result.ImageBytes)
		assert.Equal(t, []Stage{StageComposePrompt, StageRequest, StageExtractImage}, stages)

		// 페이로드로 변환했을 때 기본 샘플러 설정
		task := runware.BuildPayload(params)[0]
		assert.Equal(t, 8, task.Steps)
		assert.Equal(t, 1.0, task.CFGScale)
		assert.Equal(t, "UniPC", task.Scheduler)
		assert.Equal(t, "jpg", task.OutputFormat)
		assert.Equal(t, 1024, task.Width)
	})

	t.Run("오버라이드 값 전달", func(t *testing.T) {
		fake := &fakeRequester{result: &runware.Result{ImageBytes: []byte("x")}}
		_, err := NewService(fake).GenerateDualImage(context.Background(), Options{
			PromptComposition: PromptComposition{Left: "l", Right: "r"},
			Model:             "runware:400@1",
			NegativePrompt:    "  cartoon  ",
			TemplateImage:     []byte{9},
			TemplateImageMime: "image/jpeg",
		})
		require.NoError(t, err)

		params := fake.calls[0]
		assert.Equal(t, "runware:400@1", params.Model)
		assert.Equal(t, "cartoon", params.NegativePrompt)
		assert.True(t, strings.HasPrefix(params.ReferenceImages[0], "data:image/jpeg;base64,"))
	})

	t.Run("템플릿 이미지가 없으면 레퍼런스 없음", func(t *testing.T) {
		fake := &fakeRequester{result: &runware.Result{ImageBytes: []byte("x")}}
		_, err := NewService(fake).GenerateDualImage(context.Background(), Options{
			PromptComposition: PromptComposition{Left: "l", Right: "r"},
		})
		require.NoError(t, err)
		assert.Nil(t, fake.calls[0].ReferenceImages)
	})

	t.Run("이미지가 없으면 GenerationError", func(t *testing.T) {
		fake := &fakeRequester{result: &runware.Result{Response: map[string]any{"data": []any{}}}}
		_, err := NewService(fake).GenerateDualImage(context.Background(), Options{
			PromptComposition: PromptComposition{Left: "l", Right: "r"},
		})
		require.Error(t, err)

		var genErr *apperror.GenerationError
		require.True(t, errors.As(err, &genErr))
		assert.Equal(t, "no image data returned", genErr.Message)
	})

	t.Run("요청 에러 전파", func(t *testing.T) {
		reqErr := &apperror.RequestError{Service: "Runware", StatusCode: 500, Body: "down"}
		fake := &fakeRequester{err: reqErr}
		_, err := NewService(fake).GenerateDualImage(context.Background(), Options{
			PromptComposition: PromptComposition{Left: "l", Right: "r"},
		})
		require.Error(t, err)
		assert.Equal(t, 500, apperror.StatusCode(err))
	})
}
