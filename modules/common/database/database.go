package database

import (
	"context"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"yumcut-cheap-image-generation/modules/common/config"
)

const jobsTable = "dual_image_jobs"

// 작업 상태
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// JobRecord - dual_image_jobs 행
type JobRecord struct {
	JobID       string `json:"job_id"`
	JobStatus   string `json:"job_status"`
	LeftPrompt  string `json:"left_prompt"`
	RightPrompt string `json:"right_prompt"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Model       string `json:"model,omitempty"`
}

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성 (Supabase 미설정이면 nil)
func NewClient(cfg *config.Config) *Client {
	if !cfg.HasSupabase() {
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// InsertJob - 대기 상태 작업 기록
func (c *Client) InsertJob(ctx context.Context, record JobRecord) error {
	if record.JobStatus == "" {
		record.JobStatus = StatusPending
	}
	log.Printf("💾 Inserting job %s (%s)", record.JobID, record.JobStatus)

	_, _, err := c.supabase.From(jobsTable).
		Insert(record, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// UpdateJobStatus - Job 상태 업데이트 (extra는 추가 컬럼)
func (c *Client) UpdateJobStatus(ctx context.Context, jobID, status string, extra map[string]any) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := statusUpdate(status, extra)

	_, _, err := c.supabase.From(jobsTable).
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	log.Printf("✅ Job %s status updated to: %s", jobID, status)
	return nil
}

// statusUpdate - 상태별 타임스탬프 컬럼 포함한 업데이트 데이터
func statusUpdate(status string, extra map[string]any) map[string]any {
	updateData := map[string]any{
		"job_status": status,
		"updated_at": "now()",
	}

	switch status {
	case StatusProcessing:
		updateData["started_at"] = "now()"
	case StatusCompleted, StatusFailed:
		updateData["completed_at"] = "now()"
	}

	for k, v := range extra {
		updateData[k] = v
	}
	return updateData
}
