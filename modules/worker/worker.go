package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"yumcut-cheap-image-generation/modules/common/database"
	"yumcut-cheap-image-generation/modules/common/validator"
	"yumcut-cheap-image-generation/modules/dual"
)

const defaultRetryDelay = 5 * time.Second

// JobStore - 작업 상태 저장소 (database.Client가 구현)
type JobStore interface {
	InsertJob(ctx context.Context, record database.JobRecord) error
	UpdateJobStatus(ctx context.Context, jobID, status string, extra map[string]any) error
}

// Stats - 처리 통계
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Running   int64 `json:"running"`
}

// Worker - 큐에서 듀얼 작업을 꺼내 처리
type Worker struct {
	queue      JobQueue
	runner     *dual.Runner
	publisher  dual.Publisher
	store      JobStore
	outputRoot string
	retryDelay time.Duration

	processed atomic.Int64
	failed    atomic.Int64
	running   atomic.Int64
	wg        sync.WaitGroup
}

// NewWorker - publisher/store는 nil 허용
func NewWorker(queue JobQueue, runner *dual.Runner, publisher dual.Publisher, store JobStore, outputRoot string) *Worker {
	return &Worker{
		queue:      queue,
		runner:     runner,
		publisher:  publisher,
		store:      store,
		outputRoot: outputRoot,
		retryDelay: defaultRetryDelay,
	}
}

// Start - ctx가 끝날 때까지 큐 감시
func (w *Worker) Start(ctx context.Context) {
	log.Println("👀 [Worker] Watching queue: jobs:queue")

	for {
		payload, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("🛑 [Worker] Stopped")
				return
			}
			log.Printf("❌ [Worker] Queue pop error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryDelay):
			}
			continue
		}

		log.Printf("🎯 [Worker] Received new job (%d bytes)", len(payload))

		// Job 처리 (goroutine으로 비동기)
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.processJob(ctx, payload)
		}()
	}
}

// Wait - 실행 중인 작업이 모두 끝날 때까지 대기
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Stats - 현재 통계
func (w *Worker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
		Running:   w.running.Load(),
	}
}

func (w *Worker) processJob(ctx context.Context, payload string) {
	w.running.Add(1)
	defer w.running.Add(-1)

	var req dual.JobRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		log.Printf("❌ [Worker] Invalid job payload: %v", err)
		w.failed.Add(1)
		return
	}

	job, err := req.ToJob(w.outputRoot)
	if err != nil {
		w.fail(ctx, req.JobID, err)
		return
	}
	if w.publisher != nil {
		job.Options.OnStage = func(stage dual.Stage, detail string) {
			w.publisher.Publish(job.ID, string(stage), detail)
		}
	}

	log.Printf("🚀 [Worker] Processing job: %s", req.String())
	w.updateStatus(ctx, job.ID, database.StatusProcessing, nil)

	out, err := w.runner.Run(ctx, job)
	if err != nil {
		// Runner가 failed 단계를 이미 알림
		w.failed.Add(1)
		w.updateStatus(ctx, job.ID, database.StatusFailed, map[string]any{"error_message": err.Error()})
		log.Printf("❌ [Worker] Job %s failed: %v", job.ID, err)
		return
	}

	w.processed.Add(1)
	w.updateStatus(ctx, job.ID, database.StatusCompleted, map[string]any{
		"prompt_sent":  out.Metadata.PromptSent,
		"stored_paths": out.StoredPaths,
	})
	log.Printf("✅ [Worker] Job %s completed", job.ID)
}

// fail - 실행 전 실패 처리
func (w *Worker) fail(ctx context.Context, jobID string, err error) {
	w.failed.Add(1)
	log.Printf("❌ [Worker] Job %s rejected: %v", jobID, err)
	if validator.ValidateJobID(jobID) != nil {
		return
	}
	if w.publisher != nil {
		w.publisher.Publish(jobID, string(dual.StageFailed), err.Error())
	}
	w.updateStatus(ctx, jobID, database.StatusFailed, map[string]any{"error_message": err.Error()})
}

func (w *Worker) updateStatus(ctx context.Context, jobID, status string, extra map[string]any) {
	if w.store == nil || jobID == "" {
		return
	}
	if err := w.store.UpdateJobStatus(ctx, jobID, status, extra); err != nil {
		log.Printf("⚠️ [Worker] %v", fmt.Errorf("job %s: %w", jobID, err))
	}
}
