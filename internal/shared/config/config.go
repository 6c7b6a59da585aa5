package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultPort = "7860"

	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	TrustedProxies  []string
	MaxUploadBytes  int64

	AnalyzeRatePerMinute float64
	AnalyzeBurst         int

	ObjectStoreType string
	ChartStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider   string
	LLMModel      string
	LLMAPIKey     string
	LLMTimeout    time.Duration
	PromptVersion string

	DatabaseURL      string
	RunlogSQLitePath string
	AMQPURL          string
	AMQPExchange     string
	LinksFile        string
}

// ConfigError reports a missing or invalid setting.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := FromEnv()
	return cfg, cfg.Validate()
}

// FromEnv reads configuration from environment variables with defaults, without validation.
func FromEnv() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderGemini))
	apiKey := os.Getenv("GEMINI_API_KEY")
	model := getEnv("LLM_MODEL", defaultGeminiModel)
	if provider == ProviderOpenAI {
		apiKey = os.Getenv("OPENAI_API_KEY")
		model = getEnv("LLM_MODEL", defaultOpenAIModel)
	}

	return Config{
		Port:                 getEnv("PORT", DefaultPort),
		Env:                  normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin:      splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:7860")),
		TrustedProxies:       splitAndTrim(os.Getenv("TRUSTED_PROXIES")),
		MaxUploadBytes:       int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		AnalyzeRatePerMinute: getEnvFloat("ANALYZE_RATE_PER_MINUTE", 10),
		AnalyzeBurst:         getEnvInt("ANALYZE_BURST", 3),
		ObjectStoreType:      normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		ChartStoreDir:        getEnv("CHART_STORE_DIR", filepath.Join(os.TempDir(), "resume-matcher", "charts")),
		AWSRegion:            getEnv("AWS_REGION", ""),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3Prefix:             getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:          getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:          provider,
		LLMModel:             model,
		LLMAPIKey:            strings.TrimSpace(apiKey),
		LLMTimeout:           time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		PromptVersion:        getEnv("PROMPT_VERSION", "skillmatch_v1"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RunlogSQLitePath:     os.Getenv("RUNLOG_SQLITE_PATH"),
		AMQPURL:              os.Getenv("AMQP_URL"),
		AMQPExchange:         getEnv("AMQP_EXCHANGE", "analysis_events"),
		LinksFile:            os.Getenv("LINKS_FILE"),
	}
}

// Validate checks that settings required at startup are present.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.LLMAPIKey == "" {
			return &ConfigError{Key: "GEMINI_API_KEY", Reason: "is required when LLM_PROVIDER=gemini"}
		}
	case ProviderOpenAI:
		if c.LLMAPIKey == "" {
			return &ConfigError{Key: "OPENAI_API_KEY", Reason: "is required when LLM_PROVIDER=openai"}
		}
	default:
		return &ConfigError{Key: "LLM_PROVIDER", Reason: fmt.Sprintf("unsupported provider %q", c.LLMProvider)}
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		return &ConfigError{Key: "S3_BUCKET", Reason: "is required when OBJECT_STORE=s3"}
	}
	if c.LLMTimeout <= 0 {
		return &ConfigError{Key: "LLM_TIMEOUT_SECONDS", Reason: "must be positive"}
	}
	if c.MaxUploadBytes <= 0 {
		return &ConfigError{Key: "MAX_UPLOAD_MB", Reason: "must be positive"}
	}
	return nil
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
