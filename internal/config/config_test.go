package config_test

import (
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		DBPath:            "test.db",
		LogLevel:          "INFO",
		LogFormat:         "console",
		JWTSecret:         "0123456789abcdef",
		LockTTL:           10 * time.Second,
		EvaluatorTimeout:  5 * time.Second,
		Timezone:          "UTC",
		ImportWorkerCount: 2,
		ImportQueueSize:   32,
		ExerciseTTL:       24 * time.Hour,
		SweepInterval:     time.Hour,
		RequestTimeout:    15 * time.Second,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_LogLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"DEBUG", true},
		{"INFO", true},
		{"WARN", true},
		{"ERROR", true},
		{"debug", true},
		{"INVALID", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			}
		})
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "short"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_UnknownTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Mars/Olympus_Mons"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestValidate_InvalidWorkerSettings(t *testing.T) {
	tests := []struct {
		name          string
		workers       int
		queue         int
		expectedError string
	}{
		{"zero import workers", 0, 32, "IMPORT_WORKER_COUNT"},
		{"negative import workers", -1, 32, "IMPORT_WORKER_COUNT"},
		{"zero import queue", 2, 0, "IMPORT_QUEUE_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ImportWorkerCount = tt.workers
			cfg.ImportQueueSize = tt.queue

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{LogLevel: "INVALID", LogFormat: "xml"}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "LOG_FORMAT")
	assert.Contains(t, errStr, "JWT_SECRET")
	assert.Contains(t, errStr, "LOCK_TTL")
	assert.Contains(t, errStr, "EVALUATOR_TIMEOUT")
	assert.Contains(t, errStr, "TIMEZONE")
	assert.Contains(t, errStr, "IMPORT_WORKER_COUNT")
	assert.Contains(t, errStr, "IMPORT_QUEUE_SIZE")
	assert.Contains(t, errStr, "EXERCISE_TTL")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("EVALUATOR_TIMEOUT", "3s")
	t.Setenv("GENERATOR_SEED", "42")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.EvaluatorTimeout)
	assert.Equal(t, int64(42), cfg.GeneratorSeed)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("LOCK_TTL", "forever")

	cfg := config.Load()

	assert.Equal(t, 10*time.Second, cfg.LockTTL)
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Asia/Ho_Chi_Minh"
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Location().String())
}
