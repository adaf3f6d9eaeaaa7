package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Runware
	RunwareAPIKey string
	RunwareAPIURL string

	// LLM (프롬프트 개선)
	LLMProvider      string
	OpenRouterAPIKey string
	OpenRouterModel  string
	GeminiAPIKey     string
	GeminiModel      string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Server
	Port      string
	OutputDir string
}

const (
	DefaultRunwareAPIURL   = "https://api.runware.ai/v1"
	DefaultOpenRouterModel = "openai/gpt-oss-120b"
	DefaultGeminiModel     = "gemini-2.5-flash"
)

var (
	envOnce sync.Once
	envPath string

	configOnce   sync.Once
	globalConfig *Config
)

// LoadEnv - .env 파일을 프로세스당 한 번만 로드
// 순서: 현재 디렉토리 .env → 실행 파일 옆 .env → 환경변수만 사용
func LoadEnv() string {
	envOnce.Do(func() {
		candidates := []string{}
		if cwd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(cwd, ".env"))
		}
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), ".env"))
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err != nil {
				log.Printf("⚠️  Failed to load %s: %v", p, err)
				continue
			}
			envPath = p
			return
		}
		log.Println("⚠️  .env file not found, using environment variables")
	})
	return envPath
}

// LoadConfig - 환경변수 로드 후 Config 생성 (검증 없음)
func LoadConfig() *Config {
	LoadEnv()

	// Redis UseTLS 파싱
	useTLS := false
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	return &Config{
		// Runware
		RunwareAPIKey: getEnv("RUNWARE_API_KEY", ""),
		RunwareAPIURL: getEnv("RUNWARE_API_URL", DefaultRunwareAPIURL),

		// LLM
		LLMProvider:      getEnv("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", DefaultOpenRouterModel),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", DefaultGeminiModel),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "attachments"),

		// Server
		Port:      getEnv("PORT", "8080"),
		OutputDir: getEnv("OUTPUT_DIR", "output"),
	}
}

// GetConfig - 최초 호출 시 한 번 로드된 설정 반환
func GetConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadConfig()
	})
	return globalConfig
}

// ValidateServer - serve 모드 필수 환경변수 검증
func (c *Config) ValidateServer() error {
	if c.RunwareAPIKey == "" {
		return fmt.Errorf("RUNWARE_API_KEY is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if (c.SupabaseURL == "") != (c.SupabaseServiceKey == "") {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set together")
	}
	return nil
}

// LogSummary - 로드된 설정 요약 출력 (키는 출력하지 않음)
func (c *Config) LogSummary() {
	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Runware: %s (key set: %v)", c.RunwareAPIURL, c.RunwareAPIKey != "")
	log.Printf("   LLM: %s (openrouter: %s, gemini: %s)", c.LLMProvider, c.OpenRouterModel, c.GeminiModel)
	if c.HasRedis() {
		log.Printf("   Redis: %s (TLS: %v)", c.GetRedisAddr(), c.RedisUseTLS)
	}
	if c.HasSupabase() {
		log.Printf("   Supabase: %s (bucket: %s)", c.SupabaseURL, c.SupabaseStorageBucket)
	}
}

// ResolveRunwareKey - 플래그 값이 있으면 우선, 없으면 환경변수
func (c *Config) ResolveRunwareKey(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.RunwareAPIKey == "" {
		return "", fmt.Errorf("RUNWARE_API_KEY is required. Set it in .env or pass --runware-api-key")
	}
	return c.RunwareAPIKey, nil
}

// HasRedis - Redis 설정 여부
func (c *Config) HasRedis() bool {
	return c.RedisHost != ""
}

// HasSupabase - Supabase 설정 여부
func (c *Config) HasSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
