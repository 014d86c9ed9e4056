package jobs

import (
	"errors"

	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/models"
)

// ErrJobNotFound is returned for unknown or foreign import ids.
var ErrJobNotFound = errors.New("import job not found")

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(userID int64, source string, rows []importer.Row) (*models.ImportJob, error)
	ImportStatus(userID int64, jobID string) (*models.ImportJob, error)
}
