package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultEnvFile = "config.env"

type Config struct {
	ServerPort string
	ServerHost string

	APIUpstream string
	WebRoot     string
	UseFakeAPI  bool

	APIRateLimitRequests   int
	APIRateLimitWindowMins int
	APICORSOrigins         []string

	EnableGzip    bool
	EnableMetrics bool

	APIBaseURL         string
	HTTPTimeoutSecs    int
	MessageTimeoutSecs int
	ExportDir          string
	RecentWindowDays   int

	LogLevel string
}

// Load reads config.env when present; the process environment wins over the file.
func Load() (*Config, error) {
	return LoadFile(DefaultEnvFile)
}

func LoadFile(path string) (*Config, error) {
	godotenv.Load(path)

	cfg := &Config{
		ServerPort: getEnvString("SERVER_PORT", "8080"),
		ServerHost: getEnvString("SERVER_HOST", "localhost"),

		APIUpstream: getEnvString("API_UPSTREAM", "http://localhost:5000"),
		WebRoot:     getEnvString("WEB_ROOT", "./web"),
		UseFakeAPI:  getEnvBool("USE_FAKE_API", false),

		APIRateLimitRequests:   getEnvInt("API_RATE_LIMIT_REQUESTS", 120),
		APIRateLimitWindowMins: getEnvInt("API_RATE_LIMIT_WINDOW_MINUTES", 1),
		APICORSOrigins:         getEnvStringSlice("API_CORS_ORIGINS", []string{"*"}),

		EnableGzip:    getEnvBool("ENABLE_GZIP", true),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),

		APIBaseURL:         getEnvString("API_BASE_URL", "http://localhost:8080"),
		HTTPTimeoutSecs:    getEnvInt("HTTP_TIMEOUT_SECONDS", 10),
		MessageTimeoutSecs: getEnvInt("MESSAGE_TIMEOUT_SECONDS", 5),
		ExportDir:          getEnvString("EXPORT_DIR", "."),
		RecentWindowDays:   getEnvInt("RECENT_WINDOW_DAYS", 7),

		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

func (c *Config) MessageTimeout() time.Duration {
	return time.Duration(c.MessageTimeoutSecs) * time.Second
}

func (c *Config) RecentWindow() time.Duration {
	return time.Duration(c.RecentWindowDays) * 24 * time.Hour
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
