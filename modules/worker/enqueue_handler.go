package worker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"yumcut-cheap-image-generation/modules/common/database"
	redisClient "yumcut-cheap-image-generation/modules/common/redis"
	"yumcut-cheap-image-generation/modules/dual"
)

// EnqueueHandler - 듀얼 작업 Enqueue Handler
type EnqueueHandler struct {
	queue JobQueue
	store JobStore
}

// EnqueueResponse - Enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewEnqueueHandler - store는 nil 허용
func NewEnqueueHandler(queue JobQueue, store JobStore) *EnqueueHandler {
	return &EnqueueHandler{
		queue: queue,
		store: store,
	}
}

// RegisterRoutes - 라우트 등록
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	log.Println("✅ Enqueue routes registered: /enqueue, /api/enqueue")
}

// HandleEnqueue - POST /enqueue
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	// Request 파싱
	var req dual.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// 프롬프트/사이즈/템플릿 검증
	if _, err := req.ToJob(""); err != nil {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.New().String()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	log.Printf("📥 [Enqueue] Received job: %s", req.String())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.InsertJob(ctx, database.JobRecord{
			JobID:       req.JobID,
			JobStatus:   database.StatusPending,
			LeftPrompt:  req.Left,
			RightPrompt: req.Right,
			Width:       req.Width,
			Height:      req.Height,
			Model:       req.Model,
		}); err != nil {
			log.Printf("⚠️ [Enqueue] Failed to record job %s: %v", req.JobID, err)
		}
	}

	queueLen, err := h.queue.Push(ctx, string(payload))
	if err != nil {
		log.Printf("❌ [Enqueue] Push failed: %v", err)
		json.NewEncoder(w).Encode(EnqueueResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	log.Printf("✅ [Enqueue] Job %s enqueued successfully (position: %d)", req.JobID, queueLen)

	json.NewEncoder(w).Encode(EnqueueResponse{
		Success:       true,
		Message:       "Job enqueued successfully",
		JobID:         req.JobID,
		Queue:         redisClient.QueueKey,
		QueuePosition: queueLen,
	})
}
