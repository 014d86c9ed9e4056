package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	LogFormat         string
	JWTSecret         string
	RedisURL          string
	LockTTL           time.Duration
	GeminiAPIKey      string
	GeminiModel       string
	EvaluatorTimeout  time.Duration
	GeneratorSeed     int64
	Timezone          string
	ImportWorkerCount int
	ImportQueueSize   int
	ExerciseTTL       time.Duration
	SweepInterval     time.Duration
	RequestTimeout    time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:reviewd.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		LogFormat:         envOr("LOG_FORMAT", "console"),
		JWTSecret:         envOr("JWT_SECRET", ""),
		RedisURL:          envOr("REDIS_URL", ""),
		LockTTL:           envDurationOr("LOCK_TTL", 10*time.Second),
		GeminiAPIKey:      envOr("GEMINI_API_KEY", ""),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		EvaluatorTimeout:  envDurationOr("EVALUATOR_TIMEOUT", 8*time.Second),
		GeneratorSeed:     int64(envIntOr("GENERATOR_SEED", 0)),
		Timezone:          envOr("TIMEZONE", "Asia/Ho_Chi_Minh"),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 32),
		ExerciseTTL:       envDurationOr("EXERCISE_TTL", 24*time.Hour),
		SweepInterval:     envDurationOr("SWEEP_INTERVAL", time.Hour),
		RequestTimeout:    envDurationOr("REQUEST_TIMEOUT", 15*time.Second),
	}
}

// Validate reports every invalid setting in a single error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be console or json (got %q)", c.LogFormat))
	}
	if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.LockTTL <= 0 {
		problems = append(problems, "LOCK_TTL must be positive")
	}
	if c.EvaluatorTimeout <= 0 {
		problems = append(problems, "EVALUATOR_TIMEOUT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); c.Timezone == "" || err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q is not a known location", c.Timezone))
	}
	if c.ImportWorkerCount <= 0 {
		problems = append(problems, "IMPORT_WORKER_COUNT must be positive")
	}
	if c.ImportQueueSize <= 0 {
		problems = append(problems, "IMPORT_QUEUE_SIZE must be positive")
	}
	if c.ExerciseTTL <= 0 {
		problems = append(problems, "EXERCISE_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		problems = append(problems, "SWEEP_INTERVAL must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the time zone used for calendar-day decisions.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
