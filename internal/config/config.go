package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Upload modes for CMS thumbnails.
const (
	UploadInline  = "inline"
	UploadBackend = "backend"
	UploadR2      = "r2"
)

// Config holds all configuration for the portal and the CMS
type Config struct {
	// Server configuration
	Port            string        `json:"port" validate:"required,numeric"`
	CMSPort         string        `json:"cms_port" validate:"required,numeric"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	HTTPTimeout     time.Duration `json:"http_timeout" validate:"gt=0"`

	// Backend API. The internal URL is used for server-side calls, the public
	// one for anything handed to the browser.
	InternalAPIURL   string        `json:"internal_api_url" validate:"required,url"`
	PublicAPIURL     string        `json:"public_api_url" validate:"required,url"`
	APITimeout       time.Duration `json:"api_timeout" validate:"gt=0"`
	APIRetryCount    int           `json:"api_retry_count" validate:"min=0,max=10"`
	BreakerFailRatio float64       `json:"breaker_fail_ratio" validate:"gt=0,lte=1"`
	BreakerMinReqs   uint32        `json:"breaker_min_requests"`
	BreakerTimeout   time.Duration `json:"breaker_timeout" validate:"gt=0"`

	// Query cache
	CacheBackend string        `json:"cache_backend" validate:"oneof=memory redis"`
	RedisURL     string        `json:"redis_url"`
	RedisPrefix  string        `json:"redis_prefix"`
	CacheTTL     time.Duration `json:"cache_ttl" validate:"gt=0"`

	// Infinite lists
	FeedPageSize int           `json:"feed_page_size" validate:"min=1,max=100"`
	FeedIdleTTL  time.Duration `json:"feed_idle_ttl" validate:"gt=0"`

	// CMS session and uploads
	AuthCookieSecure bool   `json:"auth_cookie_secure"`
	UploadMode       string `json:"upload_mode" validate:"oneof=inline backend r2"`
	MaxUploadSize    int64  `json:"max_upload_size" validate:"gt=0"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2PublicURL string `json:"r2_public_url"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// FromEnv reads the configuration without loading .env or validating.
func FromEnv() *Config {
	internalURL := getEnv("INTERNAL_API_URL", "http://localhost:8080/api/v1")
	env := getEnv("APP_ENV", "development")

	return &Config{
		Port:            getEnv("PORT", "3000"),
		CMSPort:         getEnv("CMS_PORT", "3001"),
		Env:             env,
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		InternalAPIURL:   strings.TrimRight(internalURL, "/"),
		PublicAPIURL:     strings.TrimRight(getEnv("PUBLIC_API_URL", getEnv("NEXT_PUBLIC_API_URL", internalURL)), "/"),
		APITimeout:       getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		APIRetryCount:    getEnvAsInt("API_RETRY_COUNT", 2),
		BreakerFailRatio: getEnvAsFloat("API_BREAKER_FAILURE_RATIO", 0.6),
		BreakerMinReqs:   uint32(getEnvAsInt("API_BREAKER_MIN_REQUESTS", 10)),
		BreakerTimeout:   getEnvAsDuration("API_BREAKER_TIMEOUT", 30*time.Second),

		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "khobor:"),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 60*time.Second),

		FeedPageSize: getEnvAsInt("FEED_PAGE_SIZE", 12),
		FeedIdleTTL:  getEnvAsDuration("FEED_IDLE_TTL", 30*time.Minute),

		AuthCookieSecure: getEnvAsBool("AUTH_COOKIE_SECURE", false),
		UploadMode:       getEnv("UPLOAD_MODE", UploadInline),
		MaxUploadSize:    getEnvAsInt64("MAX_UPLOAD_SIZE", 2<<20), // 2MB

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "news"),
		R2PublicURL: strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", env == "development"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.CacheBackend == "redis" && c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=redis")
	}
	if c.UploadMode == UploadR2 {
		if c.R2Endpoint == "" || c.R2AccessKey == "" || c.R2SecretKey == "" || c.R2PublicURL == "" {
			return fmt.Errorf("R2_ENDPOINT, R2_ACCESS_KEY, R2_SECRET_ACCESS_KEY and R2_PUBLIC_URL are required when UPLOAD_MODE=r2")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
