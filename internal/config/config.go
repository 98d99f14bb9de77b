package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Recommendation policies for catalog failures.
const (
	PolicyStrict   = "strict"
	PolicyFallback = "fallback"
)

// Config holds all configuration for the recommendation backend.
type Config struct {
	DB        DBConfig
	Redis     RedisConfig
	Kinopoisk KinopoiskConfig
	JWT       JWTConfig
	Recommend RecommendConfig
	RateLimit RateLimitConfig
	Port      string
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KinopoiskConfig holds the external movie catalog configuration.
type KinopoiskConfig struct {
	APIKey  string
	BaseURL string
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// RecommendConfig controls the recommendation pipeline behavior.
type RecommendConfig struct {
	// Policy is PolicyStrict (surface catalog failures) or PolicyFallback
	// (substitute the built-in movie list when the catalog fails or is empty).
	Policy string
	// Limit is the number of candidates requested from the catalog per call.
	Limit int
}

// RateLimitConfig holds API rate limiter settings.
type RateLimitConfig struct {
	MaxRequests int
	WindowSec   int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	limit, _ := strconv.Atoi(getEnv("RECOMMEND_LIMIT", "20"))
	maxReqs, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	windowSec, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SEC", "900"))

	accessExpiry, err := time.ParseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_EXPIRY: %w", err)
	}
	refreshExpiry, err := time.ParseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_EXPIRY: %w", err)
	}

	policy := getEnv("RECOMMEND_POLICY", PolicyStrict)
	if policy != PolicyStrict && policy != PolicyFallback {
		return nil, fmt.Errorf("invalid RECOMMEND_POLICY %q: must be %q or %q", policy, PolicyStrict, PolicyFallback)
	}

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_recommendations"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kinopoisk: KinopoiskConfig{
			APIKey:  getEnv("KINOPOISK_API_KEY", ""),
			BaseURL: getEnv("KINOPOISK_BASE_URL", "https://api.kinopoisk.dev/v1.4"),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET", "dev-access-secret-change-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "dev-refresh-secret-change-in-production"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Recommend: RecommendConfig{
			Policy: policy,
			Limit:  limit,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: maxReqs,
			WindowSec:   windowSec,
		},
		Port: getEnv("SERVER_PORT", "8080"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
