package splitter

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // GIF 디코더 등록
	"image/jpeg"
	_ "image/png" // PNG 디코더 등록
	"log"

	_ "github.com/kolesa-team/go-webp/decoder" // WebP 디코더 등록

	"yumcut-cheap-image-generation/modules/common/apperror"
)

// JPEGQuality - 분할 결과 재인코딩 품질 (최대값, baseline)
const JPEGQuality = 100

// SplitImageInHalf - 합성 이미지를 세로 중앙선 기준으로 좌/우 두 장으로 분할
// 홀수 폭이면 오른쪽이 한 열 더 가져간다
func SplitImageInHalf(imageData []byte) ([]byte, []byte, error) {
	src, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, nil, &apperror.SplitError{Cause: fmt.Errorf("Unable to decode image: %w", err)}
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, nil, &apperror.SplitError{Cause: fmt.Errorf("Invalid dimensions: %dx%d", width, height)}
	}

	halfWidth := width / 2
	if halfWidth <= 0 {
		return nil, nil, &apperror.SplitError{Cause: fmt.Errorf("Half width too small: %d", halfWidth)}
	}

	log.Printf("✂️ [Splitter] Splitting %s %dx%d into %dx%d + %dx%d halves",
		format, width, height, halfWidth, height, width-halfWidth, height)

	left, err := encodeRegion(src, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+halfWidth, bounds.Max.Y))
	if err != nil {
		return nil, nil, &apperror.SplitError{Cause: fmt.Errorf("left half: %w", err)}
	}

	right, err := encodeRegion(src, image.Rect(bounds.Min.X+halfWidth, bounds.Min.Y, bounds.Max.X, bounds.Max.Y))
	if err != nil {
		return nil, nil, &apperror.SplitError{Cause: fmt.Errorf("right half: %w", err)}
	}

	return left, right, nil
}

// encodeRegion - 영역을 새 RGBA로 복사한 뒤 JPEG로 인코딩
func encodeRegion(src image.Image, region image.Rectangle) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(dst, dst.Bounds(), src, region.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
