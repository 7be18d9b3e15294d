package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	LogLevel            string
	Port                string
	DatabaseURL         string
	DBMaxConns          int
	JWTSecret           string
	SessionTTL          time.Duration
	BaseURL             string
	UploadDir           string
	MaxUploadBytes      int64
	CORSAllowedOrigins  []string
	RateLimitPerMin     int
	VisionProvider      string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIOrg           string
	OpenAIVisionModel   string
	OpenAIImageModel    string
	ImageSize           string
	GeminiAPIKey        string
	GeminiModel         string
	GeminiBaseURL       string
	ExternalCallTimeout time.Duration
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "5000")
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		Port:                port,
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:          getEnvInt("DB_MAX_CONNS", 10),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		SessionTTL:          time.Hour * time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*7)),
		BaseURL:             strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		VisionProvider:      strings.ToLower(getEnv("VISION_PROVIDER", "openai")),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIOrg:           os.Getenv("OPENAI_ORG"),
		OpenAIVisionModel:   getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		OpenAIImageModel:    getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		ImageSize:           getEnv("IMAGE_SIZE", "1024x1024"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:       os.Getenv("GEMINI_BASE_URL"),
		ExternalCallTimeout: time.Second * time.Duration(getEnvInt("EXTERNAL_CALL_TIMEOUT_SECONDS", 90)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("BASE_URL is invalid: %w", err)
	}
	switch cfg.VisionProvider {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("VISION_PROVIDER %q is not supported", cfg.VisionProvider)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

// UsesDatabase reports whether history and settings go to Postgres rather than
// the in-process store.
func (c *Config) UsesDatabase() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
