package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"yumcut-cheap-image-generation/modules/common/config"
	"yumcut-cheap-image-generation/modules/common/database"
	redisClient "yumcut-cheap-image-generation/modules/common/redis"
	"yumcut-cheap-image-generation/modules/common/storage"
	"yumcut-cheap-image-generation/modules/common/utils"
	"yumcut-cheap-image-generation/modules/dual"
	"yumcut-cheap-image-generation/modules/llm"
	"yumcut-cheap-image-generation/modules/progress"
	promptimprove "yumcut-cheap-image-generation/modules/prompt-improve"
	"yumcut-cheap-image-generation/modules/runware"
	"yumcut-cheap-image-generation/modules/worker"
)

const serviceName = "yumcut-cheap-image-generation"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/WebSocket server and the Redis queue worker",
	RunE:  runServe,
}

// server - serve 모드 구성 요소
type server struct {
	runner     *dual.Runner
	hub        *progress.Hub
	worker     *worker.Worker
	enqueue    *worker.EnqueueHandler
	outputRoot string
	startTime  time.Time
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.GetConfig()
	if runwareAPIKey != "" {
		cfg.RunwareAPIKey = runwareAPIKey
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	cfg.LogSummary()

	srv := &server{
		hub:        progress.NewHub(),
		outputRoot: cfg.OutputDir,
		startTime:  time.Now(),
	}

	var improver dual.Improver
	if llm.HasCredentials(cfg) {
		provider, err := llm.NewProvider(ctx, llm.Options{ReasoningEffort: promptimprove.DefaultReasoning})
		if err != nil {
			return err
		}
		improver = promptimprove.NewImprover(provider, "", "")
	} else {
		log.Println("⚠️  No LLM API key, prompt improvement disabled")
	}

	var uploader dual.Uploader
	var store worker.JobStore
	if cfg.HasSupabase() {
		uploader = storage.NewClient(cfg, utils.ConvertToWebP)
		if db := database.NewClient(cfg); db != nil {
			store = db
		}
	}

	images := runware.NewClient(cfg.RunwareAPIKey, runware.WithEndpoint(cfg.RunwareAPIURL))
	srv.runner = dual.NewRunner(dual.NewService(images), improver, uploader)

	if cfg.HasRedis() {
		if rdb := redisClient.Connect(ctx, cfg); rdb != nil {
			defer rdb.Close()
			queue := worker.NewRedisQueue(rdb)
			srv.worker = worker.NewWorker(queue, srv.runner, srv.hub, store, cfg.OutputDir)
			srv.enqueue = worker.NewEnqueueHandler(queue, store)
			// Redis Queue Worker 시작 (백그라운드)
			go srv.worker.Start(ctx)
		} else {
			log.Println("⚠️  Redis unavailable, queue endpoints disabled")
		}
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.routes(),
	}

	log.Printf("🚀 %s starting on port %s", serviceName, cfg.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?job=<id>", cfg.Port)
	log.Printf("❤️  Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// routes - 라우터 설정
func (s *server) routes() *mux.Router {
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", s.getMetrics).Methods("GET")
	r.HandleFunc("/ws", s.hub.HandleWebSocket)

	dual.NewHandler(s.runner, s.outputRoot, s.hub).RegisterRoutes(r)
	if s.enqueue != nil {
		s.enqueue.RegisterRoutes(r)
	}
	return r
}

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// 서버 메트릭 조회 엔드포인트
func (s *server) getMetrics(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"server": map[string]any{
			"uptime":    time.Since(s.startTime).String(),
			"startTime": s.startTime,
		},
		"progress": s.hub.Metrics(),
	}
	if s.worker != nil {
		body["worker"] = s.worker.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
