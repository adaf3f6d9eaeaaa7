package apperror

import (
	"errors"
	"fmt"
)

// ValidationError - 잘못된 입력 (사이즈, 프롬프트 누락/길이)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RequestError - 외부 API가 2xx가 아닌 상태 코드를 반환한 경우
type RequestError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed %d: %s", e.Service, e.StatusCode, e.Body)
}

// GenerationError - 응답은 정상이지만 결과물이 없는 경우
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return e.Message
}

// SplitError - 이미지 분할 실패
type SplitError struct {
	Cause error
}

func (e *SplitError) Error() string {
	if e.Cause == nil {
		return "Image splitting failed: Unknown error occurred"
	}
	return "Image splitting failed: " + e.Cause.Error()
}

func (e *SplitError) Unwrap() error {
	return e.Cause
}

// NewValidation - ValidationError 생성 헬퍼
func NewValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation - ValidationError 여부 확인
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// StatusCode - RequestError면 상태 코드 반환, 아니면 0
func StatusCode(err error) int {
	var target *RequestError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}
