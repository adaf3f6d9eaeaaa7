package validator

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"yumcut-cheap-image-generation/modules/common/apperror"
)

const (
	MinPromptChars = 2
	MaxPromptChars = 1900

	DefaultWidth  = 1024
	DefaultHeight = 1024
)

var (
	sizePattern  = regexp.MustCompile(`^(\d+)x(\d+)$`)
	jobIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ParseSize - --size=WxH 또는 --width/--height 파싱 (둘 다 없으면 1024x1024)
func ParseSize(size, width, height string) (int, int, error) {
	if size != "" {
		m := sizePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(size)))
		if m == nil {
			return 0, 0, apperror.NewValidation("size", "Invalid --size value %q. Use WIDTHxHEIGHT.", size)
		}
		w, _ := strconv.ParseFloat(m[1], 64)
		h, _ := strconv.ParseFloat(m[2], 64)
		return ValidateSize(w, h)
	}

	if width != "" || height != "" {
		if width == "" || height == "" {
			return 0, 0, apperror.NewValidation("size", "Both --width and --height must be provided together.")
		}
		w, errW := strconv.ParseFloat(strings.TrimSpace(width), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(height), 64)
		if errW != nil || errH != nil {
			return 0, 0, apperror.NewValidation("size", "Invalid size %sx%s. Width/height must be positive numbers.", width, height)
		}
		return ValidateSize(w, h)
	}

	return DefaultWidth, DefaultHeight, nil
}

// ValidateSize - 양수 검증 후 소수점 버림
func ValidateSize(width, height float64) (int, int, error) {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) ||
		width <= 0 || height <= 0 {
		return 0, 0, apperror.NewValidation("size", "Invalid size %vx%v. Width/height must be positive numbers.", width, height)
	}
	w, h := int(math.Floor(width)), int(math.Floor(height))
	if w <= 0 || h <= 0 {
		return 0, 0, apperror.NewValidation("size", "Invalid size %vx%v. Width/height must be positive numbers.", width, height)
	}
	return w, h, nil
}

// ValidatePromptLength - 프롬프트 길이 [2, 1900] 검증 (rune 기준)
func ValidatePromptLength(prompt, label string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(prompt))
	if n < MinPromptChars {
		return apperror.NewValidation(label, "prompt is too short. Wrap text in quotes, e.g. --%s=\"A cozy cafe...\"", flagName(label))
	}
	if n > MaxPromptChars {
		return apperror.NewValidation(label, "prompt is too long (%d). Max is %d characters.", n, MaxPromptChars)
	}
	return nil
}

// ValidateJobID - 작업 ID 형식 검증 ([A-Za-z0-9_-]{1,64}, 출력/스토리지 경로에 사용)
func ValidateJobID(id string) error {
	if !jobIDPattern.MatchString(id) {
		return apperror.NewValidation("job_id", "invalid job id %q. Use 1-64 letters, digits, '-' or '_'.", id)
	}
	return nil
}

// ResolvePromptText - 인라인 텍스트 우선, 없으면 파일에서 읽기
func ResolvePromptText(inline, filePath, label string) (string, error) {
	if text := strings.TrimSpace(inline); text != "" {
		return text, nil
	}
	if filePath != "" {
		text, err := ReadTextFile(filePath)
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
	}
	name := flagName(label)
	return "", apperror.NewValidation(label, "Missing %s. Provide --%s=TEXT or --%s-file=PATH.", label, name, name)
}

// ReadTextFile - 파일 내용을 읽어 trim (경로가 비어 있으면 빈 문자열)
func ReadTextFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	resolved, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", resolved, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func flagName(label string) string {
	if label == "" {
		return "prompt"
	}
	return label
}
