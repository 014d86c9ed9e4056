package services

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/jobs"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/worker"
)

// ImportService handles vocabulary file import business logic
type ImportService interface {
	// Import parses the upload synchronously and queues the inserts.
	Import(ctx context.Context, userID int64, filename string, r io.Reader) (*models.ImportJob, error)
	Status(ctx context.Context, userID int64, jobID string) (*models.ImportJob, error)
}

type importService struct {
	queue jobs.JobQueue
}

// NewImportService creates a new ImportService
func NewImportService(queue jobs.JobQueue) ImportService {
	return &importService{queue: queue}
}

func (s *importService) Import(ctx context.Context, userID int64, filename string, r io.Reader) (*models.ImportJob, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id": userID,
		"file":    filename,
	})

	rows, err := importer.Parse(filename, r)
	if err != nil {
		log.Warn("rejected import file: %v", err)
		switch {
		case stderrors.Is(err, importer.ErrUnsupportedFile),
			stderrors.Is(err, importer.ErrEmptyFile),
			stderrors.Is(err, importer.ErrTooManyRows):
			return nil, errors.NewValidationError("file", err.Error())
		default:
			return nil, errors.NewBadRequestError(err.Error())
		}
	}

	job, err := s.queue.EnqueueImport(userID, filename, rows)
	if err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrPoolStopped) {
			log.Warn("import queue unavailable: %v", err)
			return nil, errors.NewDependencyError("import queue", err)
		}
		log.Error("failed to queue import: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("queued vocabulary import %s with %d rows", job.ID, len(rows))
	return job, nil
}

func (s *importService) Status(ctx context.Context, userID int64, jobID string) (*models.ImportJob, error) {
	job, err := s.queue.ImportStatus(userID, jobID)
	if err != nil {
		if stderrors.Is(err, jobs.ErrJobNotFound) {
			return nil, errors.NewNotFoundError("import", jobID)
		}
		logger.FromContext(ctx).Error("failed to load import status: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return job, nil
}
