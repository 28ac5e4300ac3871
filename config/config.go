package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir string

	// Fetch layer
	FetchMinJitterMs int
	FetchMaxJitterMs int
	FetchTimeoutMs   int
	MaxRetries       int
	HostConcurrency  int
	ProxyURL         string

	// Rendered fetch (JS-heavy marketplaces)
	ChromeBin      string
	RenderedWaitMs int

	// Re-scan
	MaxConcurrency int
	RateLimitMs    int
	RescanSpec     string

	// Optional alternate store backends
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	UsePostgres      bool
	RedisURL         string

	// Optional external price-advice service
	AdviceURL string

	// Assistant
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	UserID        string

	Debug bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataDir: getEnv("DATA_DIR", "./data"),

		FetchMinJitterMs: getEnvInt("FETCH_MIN_JITTER_MS", 800),
		FetchMaxJitterMs: getEnvInt("FETCH_MAX_JITTER_MS", 2000),
		FetchTimeoutMs:   getEnvInt("FETCH_TIMEOUT_MS", 12000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		HostConcurrency:  getEnvInt("HOST_CONCURRENCY", 2),
		ProxyURL:         getEnv("PROXY_URL", ""),

		ChromeBin:      getEnv("CHROME_BIN", ""),
		RenderedWaitMs: getEnvInt("RENDERED_WAIT_MS", 3000),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		RescanSpec:     getEnv("RESCAN_CRON", "@daily"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scout"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scout123"),
		PostgresDB:       getEnv("POSTGRES_DB", "pricescout"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		UsePostgres:      getEnvBool("USE_POSTGRES", false),
		RedisURL:         getEnv("REDIS_URL", ""),

		AdviceURL: getEnv("PRICE_ADVICE_URL", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		UserID:        getEnv("USER_ID", "current_user"),

		Debug: getEnvBool("DEBUG", false),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
