package dual

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"yumcut-cheap-image-generation/modules/common/storage"
	"yumcut-cheap-image-generation/modules/runware"
)

// fakeRequester - ImageRequester 테스트 더블
type fakeRequester struct {
	mu     sync.Mutex
	calls  []runware.Params
	result *runware.Result
	err    error
}

func (f *fakeRequester) RequestImage(_ context.Context, params runware.Params) (*runware.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, params)
	return f.result, f.err
}

// fakeImprover - 입력 앞에 접두사를 붙이고 호출 순서를 기록
type fakeImprover struct {
	seen []string
	err  error
}

func (f *fakeImprover) Improve(_ context.Context, prompt string) (string, error) {
	f.seen = append(f.seen, prompt)
	if f.err != nil {
		return "", f.err
	}
	return "improved " + strings.ToLower(prompt), nil
}

// fakeUploader - 업로드된 결과물 이름을 기록
type fakeUploader struct {
	jobID string
	names []string
}

func (f *fakeUploader) UploadArtifacts(_ context.Context, jobID string, artifacts []storage.Artifact) ([]string, error) {
	f.jobID = jobID
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		f.names = append(f.names, a.Name)
		paths = append(paths, "dual/"+jobID+"/"+a.Name)
	}
	return paths, nil
}

// createCompositeJPEG - 테스트용 합성 이미지
func createCompositeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}
