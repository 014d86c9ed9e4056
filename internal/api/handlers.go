package api

import (
	"context"
	"time"

	"github.com/lexigo/reviewd/internal/services"
)

// HealthCheck probes one dependency for readiness.
type HealthCheck func(ctx context.Context) error

type Server struct {
	Exercises      services.ExerciseService
	CheckIns       services.CheckInService
	Dashboard      services.DashboardService
	Vocabulary     services.VocabularyService
	Imports        services.ImportService
	Users          services.UserService
	ReadyChecks    map[string]HealthCheck
	JWTSecret      string
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

// defaultMaxUploadBytes bounds multipart import bodies when MaxUploadBytes is unset.
const defaultMaxUploadBytes = 10 << 20
