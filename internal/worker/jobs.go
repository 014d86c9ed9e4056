package worker

import (
	"context"

	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/logger"
)

// ImportVocabularyJob stores the rows of one uploaded spreadsheet.
type ImportVocabularyJob struct {
	ID       string
	UserID   int64
	Rows     []importer.Row
	Importer VocabularyImporter
	Tracker  ImportTracker
}

func (j *ImportVocabularyJob) Name() string { return "import_vocabulary" }

func (j *ImportVocabularyJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"import_id": j.ID,
		"user_id":   j.UserID,
	})
	log.Info("starting vocabulary import of %d rows", len(j.Rows))

	if j.Tracker != nil {
		j.Tracker.Started(j.ID)
	}
	summary, err := j.Importer.ImportRows(logger.NewContext(ctx, log), j.UserID, j.Rows)
	if j.Tracker != nil {
		j.Tracker.Finished(j.ID, summary, err)
	}
	if err != nil {
		return err
	}

	log.Info("import finished: processed=%d, created=%d, skipped=%d, errors=%d",
		summary.Processed, summary.Created, summary.Skipped, len(summary.Errors))
	return nil
}

var _ Job = (*ImportVocabularyJob)(nil)
