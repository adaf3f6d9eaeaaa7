package dual

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"yumcut-cheap-image-generation/modules/common/apperror"
)

// Publisher - 단계 이벤트 전달 (progress.Hub가 구현)
type Publisher interface {
	Publish(jobID, stage, detail string)
}

// GenerateResponse - POST /api/dual/generate 응답
type GenerateResponse struct {
	Success      bool      `json:"success"`
	JobID        string    `json:"job_id,omitempty"`
	Metadata     *Metadata `json:"metadata,omitempty"`
	LeftImage    string    `json:"left_image,omitempty"`
	RightImage   string    `json:"right_image,omitempty"`
	Files        []string  `json:"files,omitempty"`
	StoredPaths  []string  `json:"stored_paths,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

type Handler struct {
	runner     *Runner
	outputRoot string
	publisher  Publisher
}

// NewHandler - Handler 생성 (outputRoot가 비어 있으면 디스크에 저장하지 않음)
func NewHandler(runner *Runner, outputRoot string, publisher Publisher) *Handler {
	return &Handler{
		runner:     runner,
		outputRoot: outputRoot,
		publisher:  publisher,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/dual/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	log.Println("✅ Dual routes registered: /api/dual/generate")
}

// HandleGenerate - POST /api/dual/generate
// 동기 처리: 생성 + 분할 후 좌/우 이미지를 base64로 반환
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	// OPTIONS 요청 처리
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Dual] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, GenerateResponse{ErrorMessage: "Invalid request format"})
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.New().String()
	}

	job, err := req.ToJob(h.outputRoot)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{JobID: req.JobID, ErrorMessage: err.Error()})
		return
	}
	if job.Improve && !h.runner.CanImprove() {
		writeJSON(w, http.StatusBadRequest, GenerateResponse{JobID: req.JobID, ErrorMessage: "prompt improvement is not configured"})
		return
	}
	if h.publisher != nil {
		job.Options.OnStage = func(stage Stage, detail string) {
			h.publisher.Publish(job.ID, string(stage), detail)
		}
	}

	log.Printf("🎨 [Dual] Processing request: %s", req.String())
	out, err := h.runner.Run(r.Context(), job)
	if err != nil {
		log.Printf("❌ [Dual] Job %s failed: %v", req.JobID, err)
		writeJSON(w, statusFor(err), GenerateResponse{JobID: req.JobID, ErrorMessage: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Success:     true,
		JobID:       out.JobID,
		Metadata:    &out.Metadata,
		LeftImage:   base64.StdEncoding.EncodeToString(out.Left),
		RightImage:  base64.StdEncoding.EncodeToString(out.Right),
		Files:       out.Files,
		StoredPaths: out.StoredPaths,
	})
}

// statusFor - 에러 종류별 HTTP 상태 코드
func statusFor(err error) int {
	switch {
	case apperror.IsValidation(err):
		return http.StatusBadRequest
	case apperror.StatusCode(err) != 0:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ [Dual] Failed to write response: %v", err)
	}
}
