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

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port" validate:"required,numeric"`
	Env             string        `json:"env" validate:"oneof=development production test"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`
	HTTPTimeout     time.Duration `json:"http_timeout" validate:"gt=0"`

	// Upstream boundaries
	BoundaryTimeout time.Duration `json:"boundary_timeout" validate:"gt=0"`
	RetryCount      int           `json:"retry_count" validate:"gte=0,lte=10"`

	// Response cache. An empty RedisURL selects the in-memory cache.
	RedisURL    string        `json:"redis_url" validate:"omitempty,url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl" validate:"gte=0"`

	// News
	NewsSearchURL    string `json:"news_search_url" validate:"omitempty,url"`
	NewsSearchAPIKey string `json:"news_search_api_key"`
	NewsSearchModel  string `json:"news_search_model"`

	// Prices
	CoinGeckoURL    string `json:"coingecko_url" validate:"required,url"`
	CoinGeckoAPIKey string `json:"coingecko_api_key"`
	CryptoLimit     int    `json:"crypto_limit" validate:"gte=1,lte=250"`

	// Tools
	GitHubURL   string `json:"github_url" validate:"omitempty,url"`
	GitHubToken string `json:"github_token"`
	ToolsLimit  int    `json:"tools_limit" validate:"gte=1,lte=50"`

	// Local state
	DataPath      string `json:"data_path" validate:"required"`
	StoragePrefix string `json:"storage_prefix" validate:"required"`

	// Scheduling
	ScheduleTimezone string `json:"schedule_timezone" validate:"required"`
	RefreshOnStart   bool   `json:"refresh_on_start"`

	// CloudFlare R2 backup of the local state
	R2Endpoint  string `json:"r2_endpoint" validate:"omitempty,url"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`

	// Logging
	LogLevel  string `json:"log_level" validate:"oneof=debug info warn error fatal panic disabled"`
	LogOutput string `json:"log_output"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		BoundaryTimeout: getEnvAsDuration("BOUNDARY_TIMEOUT", 15*time.Second),
		RetryCount:      getEnvAsInt("RETRY_COUNT", 2),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "cyberpress:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 5*time.Minute),

		NewsSearchURL:    getEnv("NEWS_SEARCH_URL", "https://api.perplexity.ai"),
		NewsSearchAPIKey: getEnv("NEWS_SEARCH_API_KEY", ""),
		NewsSearchModel:  getEnv("NEWS_SEARCH_MODEL", "llama-3.1-sonar-small-128k-online"),

		CoinGeckoURL:    getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),
		CryptoLimit:     getEnvAsInt("CRYPTO_LIMIT", 10),

		GitHubURL:   getEnv("GITHUB_URL", ""),
		GitHubToken: getEnv("GITHUB_TOKEN", ""),
		ToolsLimit:  getEnvAsInt("TOOLS_LIMIT", 10),

		DataPath:      getEnv("DATA_PATH", "./data"),
		StoragePrefix: getEnv("STORAGE_PREFIX", "cyberpress_"),

		ScheduleTimezone: getEnv("SCHEDULE_TIMEZONE", "America/Los_Angeles"),
		RefreshOnStart:   getEnvAsBool("REFRESH_ON_START", true),

		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2Region:    getEnv("R2_REGION", "auto"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.ScheduleTimezone); err != nil {
		return fmt.Errorf("unknown schedule timezone %q: %w", c.ScheduleTimezone, err)
	}
	if c.BackupEnabled() && (c.R2AccessKey == "" || c.R2SecretKey == "") {
		return fmt.Errorf("R2 backup requires R2_ACCESS_KEY and R2_SECRET_ACCESS_KEY")
	}
	return nil
}

// BackupEnabled reports whether the local state backup target is configured.
func (c *Config) BackupEnabled() bool {
	return c.R2Bucket != "" && c.R2Endpoint != ""
}

// Location returns the time zone used for daily and weekly schedules.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ScheduleTimezone)
	if err != nil {
		return time.Local
	}
	return loc
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

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
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
