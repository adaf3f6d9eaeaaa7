package dual

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"yumcut-cheap-image-generation/modules/common/storage"
	"yumcut-cheap-image-generation/modules/splitter"
)

// Runner - 개선 → 생성 → 분할 → 저장/업로드 전체 흐름
type Runner struct {
	service  *Service
	improver Improver
	uploader Uploader
}

// NewRunner - Runner 생성 (improver/uploader는 nil 허용)
func NewRunner(service *Service, improver Improver, uploader Uploader) *Runner {
	return &Runner{
		service:  service,
		improver: improver,
		uploader: uploader,
	}
}

// CanImprove - 프롬프트 개선 가능 여부
func (r *Runner) CanImprove() bool {
	return r.improver != nil
}

// Run - 작업 하나를 처음부터 끝까지 처리
func (r *Runner) Run(ctx context.Context, job Job) (*Output, error) {
	out, err := r.run(ctx, job)
	if err != nil {
		job.Options.OnStage.emit(StageFailed, err.Error())
		return nil, err
	}
	job.Options.OnStage.emit(StageDone, out.OutDir)
	return out, nil
}

func (r *Runner) run(ctx context.Context, job Job) (*Output, error) {
	opts := job.Options
	log.Printf("🚀 [Dual] Running job %s (size: %dx%d, improve: %v)", job.ID, opts.Width, opts.Height, job.Improve)

	if job.Improve {
		if r.improver == nil {
			return nil, fmt.Errorf("prompt improvement requested but no LLM provider is configured")
		}
		// 왼쪽 → 오른쪽 순차 처리
		opts.OnStage.emit(StageImprove, "left")
		log.Println("🪄 [Dual] Improving left prompt...")
		left, err := r.improver.Improve(ctx, opts.Left)
		if err != nil {
			return nil, fmt.Errorf("left prompt improvement failed: %w", err)
		}
		opts.OnStage.emit(StageImprove, "right")
		log.Println("🪄 [Dual] Improving right prompt...")
		right, err := r.improver.Improve(ctx, opts.Right)
		if err != nil {
			return nil, fmt.Errorf("right prompt improvement failed: %w", err)
		}
		opts.Left, opts.Right = left, right
	}

	result, err := r.service.GenerateDualImage(ctx, opts)
	if err != nil {
		return nil, err
	}

	opts.OnStage.emit(StageSplit, "")
	left, right, err := splitter.SplitImageInHalf(result.ImageBytes)
	if err != nil {
		return nil, err
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	out := &Output{
		JobID: job.ID,
		Metadata: Metadata{
			Width:       opts.Width,
			Height:      opts.Height,
			LeftPrompt:  opts.Left,
			RightPrompt: opts.Right,
			Context:     opts.Context,
			PromptSent:  result.Prompt,
			Model:       model,
		},
		Composite: result.ImageBytes,
		Left:      left,
		Right:     right,
		OutDir:    job.OutDir,
	}

	metadataJSON, err := json.MarshalIndent(out.Metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	artifacts := []storage.Artifact{
		{Name: "dual.jpg", Data: out.Composite, ContentType: "image/jpeg"},
		{Name: "left.jpg", Data: left, ContentType: "image/jpeg"},
		{Name: "right.jpg", Data: right, ContentType: "image/jpeg"},
		{Name: "metadata.json", Data: metadataJSON, ContentType: "application/json"},
	}

	if job.OutDir != "" {
		opts.OnStage.emit(StageSave, job.OutDir)
		files, err := writeArtifacts(job.OutDir, artifacts)
		if err != nil {
			return nil, err
		}
		out.Files = files
	}

	if job.Upload && r.uploader != nil {
		opts.OnStage.emit(StageUpload, "")
		stored, err := r.uploader.UploadArtifacts(ctx, job.ID, artifacts)
		if err != nil {
			return nil, fmt.Errorf("artifact upload failed: %w", err)
		}
		out.StoredPaths = stored
	}

	log.Printf("✅ [Dual] Job %s completed", job.ID)
	return out, nil
}

// writeArtifacts - 디렉토리 생성 후 결과물 저장
func writeArtifacts(dir string, artifacts []storage.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir %s: %w", dir, err)
	}

	files := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", p, err)
		}
		log.Printf("💾 [Dual] Saved %s (%d bytes)", p, len(a.Data))
		files = append(files, p)
	}
	return files, nil
}
