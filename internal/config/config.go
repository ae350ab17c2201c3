package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	WriteTimeout    time.Duration
	Database        string
	UploadDir       string
	ResumeDir       string
	ProfilePicDir   string
	SecretKey       string
	SessionTTL      time.Duration
	MaxUploadBytes  int64
	RedisAddr       string
	RateLimitPerMin int

	AdzunaAppID     string
	AdzunaAppKey    string
	AdzunaCountry   string
	AdzunaBaseURL   string
	JobFetchTimeout time.Duration
	JobCacheTTL     time.Duration
	JobResults      int

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMRetries    int
	LLMTimeout    time.Duration
	LLMMaxTokens  int

	CloudinaryURL string

	// AllowAdminSignup lets the public register form create admins.
	AllowAdminSignup bool
	AdminUsername    string
	AdminEmail       string
	AdminPassword    string
}

// Load reads an optional .env file and returns application config populated
// from environment variables with sensible defaults.
func Load() App {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}

	uploadDir := getEnv("UPLOAD_DIR", "uploads")
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "5000"),
		WriteTimeout:    durationEnv("HTTP_WRITE_TIMEOUT", 30*time.Second),
		Database:        getEnv("DATABASE", "placement.db"),
		UploadDir:       uploadDir,
		ResumeDir:       getEnv("RESUME_UPLOAD_FOLDER", filepath.Join(uploadDir, "resumes")),
		ProfilePicDir:   filepath.Join(uploadDir, "profile_pics"),
		SecretKey:       getEnv("SECRET_KEY", "dev-secret-key"),
		SessionTTL:      durationEnv("SESSION_TTL", 24*time.Hour),
		MaxUploadBytes:  int64(intEnv("MAX_UPLOAD_BYTES", 5*1024*1024)),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),

		AdzunaAppID:     getEnv("ADZUNA_APP_ID", ""),
		AdzunaAppKey:    getEnv("ADZUNA_APP_KEY", ""),
		AdzunaCountry:   getEnv("ADZUNA_COUNTRY", "in"),
		AdzunaBaseURL:   getEnv("ADZUNA_BASE_URL", "https://api.adzuna.com"),
		JobFetchTimeout: durationEnv("JOB_FETCH_TIMEOUT", 6*time.Second),
		JobCacheTTL:     durationEnv("JOB_CACHE_TTL", 10*time.Minute),
		JobResults:      intEnv("JOB_RESULTS", 5),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		LLMRetries:    intEnv("LLM_RETRIES", 2),
		LLMTimeout:    durationEnv("LLM_TIMEOUT", 10*time.Second),
		LLMMaxTokens:  intEnv("LLM_MAX_TOKENS", 300),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),

		AllowAdminSignup: boolEnv("ALLOW_ADMIN_SIGNUP", false),
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:       getEnv("ADMIN_EMAIL", ""),
		AdminPassword:    getEnv("ADMIN_PASSWORD", ""),
	}
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Printf("invalid bool for %s, using fallback %t", key, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}
