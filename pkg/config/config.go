package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DBDriver           string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessExpiry    time.Duration
	JWTRefreshExpiry   time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	FrontendURL        string
	CORSOrigins        []string
	LogLevel           string
	LogFormat          string

	// Catch-all inbox settings
	AllowedDomains        []string
	EmailExpiryHours      uint
	GmailLabel            string
	GmailFetchConcurrency int
	GmailCallTimeout      time.Duration
	GmailFetchTimeout     time.Duration

	// Read-state cache maintenance
	ReadStateRetention time.Duration
	CleanupInterval    time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DBDriver:              strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:           getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=tempmail port=5432 sslmode=disable"),
		JWTSecret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:       getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry:      getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:     getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/gmail/callback"),
		FrontendURL:           strings.TrimRight(getEnv("FRONTEND_URL", ""), "/"),
		CORSOrigins:           splitList(getEnv("CORS_ORIGINS", "")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		AllowedDomains:        ParseDomains(getEnv("ALLOWED_DOMAINS", "example.com")),
		EmailExpiryHours:      uint(getInt("EMAIL_EXPIRY_HOURS", 24)),
		GmailLabel:            getEnv("GMAIL_LABEL", "Temp"),
		GmailFetchConcurrency: getInt("GMAIL_FETCH_CONCURRENCY", 10),
		GmailCallTimeout:      getDuration("GMAIL_CALL_TIMEOUT", 10*time.Second),
		GmailFetchTimeout:     getDuration("GMAIL_FETCH_TIMEOUT", 30*time.Second),
		ReadStateRetention:    getDuration("READ_STATE_RETENTION", 168*time.Hour),
		CleanupInterval:       getDuration("CLEANUP_INTERVAL", time.Hour),
	}
}

// ParseDomains splits a comma separated domain list, lower-casing and trimming
// every entry. Empty entries are skipped.
func ParseDomains(raw string) []string {
	domains := make([]string, 0)
	for _, d := range splitList(raw) {
		domains = append(domains, strings.ToLower(d))
	}
	return domains
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
