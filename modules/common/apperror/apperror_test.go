package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("RequestError는 상태 코드와 바디를 포함한다", func(t *testing.T) {
		err := &RequestError{Service: "runware", StatusCode: 500, Body: "boom"}
		assert.Equal(t, "runware request failed 500: boom", err.Error())

		wrapped := fmt.Errorf("generate: %w", err)
		assert.Equal(t, 500, StatusCode(wrapped))
		assert.Equal(t, 0, StatusCode(errors.New("plain")))
	})

	t.Run("SplitError는 원인을 감싼다", func(t *testing.T) {
		cause := errors.New("Half width too small: 0")
		err := &SplitError{Cause: cause}
		assert.Equal(t, "Image splitting failed: Half width too small: 0", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("ValidationError 판별", func(t *testing.T) {
		err := fmt.Errorf("cli: %w", NewValidation("left", "prompt is too short"))
		assert.True(t, IsValidation(err))
		assert.False(t, IsValidation(&GenerationError{Message: "no image data returned"}))
		assert.Equal(t, "left: prompt is too short", errors.Unwrap(err).Error())
	})
}
