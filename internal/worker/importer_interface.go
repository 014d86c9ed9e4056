package worker

import (
	"context"

	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/models"
)

// VocabularyImporter stores parsed spreadsheet rows for a user.
// This avoids import cycles by not importing the services package
type VocabularyImporter interface {
	ImportRows(ctx context.Context, userID int64, rows []importer.Row) (models.ImportSummary, error)
}

// ImportTracker is notified as an import job moves through its lifecycle.
type ImportTracker interface {
	Started(jobID string)
	Finished(jobID string, summary models.ImportSummary, err error)
}
