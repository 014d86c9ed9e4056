package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/metrics"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/worker"
)

// maxTracked bounds how many finished imports are remembered.
const maxTracked = 1000

// WorkerQueue implements JobQueue using a worker pool and keeps the status of
// recent imports in memory.
type WorkerQueue struct {
	importPool *worker.Pool
	importer   worker.VocabularyImporter
	now        func() time.Time

	mu    sync.Mutex
	jobs  map[string]*models.ImportJob
	order []string
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, imp worker.VocabularyImporter) *WorkerQueue {
	return &WorkerQueue{
		importPool: importPool,
		importer:   imp,
		now:        time.Now,
		jobs:       make(map[string]*models.ImportJob),
	}
}

func (q *WorkerQueue) EnqueueImport(userID int64, source string, rows []importer.Row) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:        uuid.NewString(),
		UserID:    userID,
		Source:    source,
		Status:    models.ImportQueued,
		Rows:      len(rows),
		CreatedAt: q.now(),
	}
	snapshot := *job
	q.track(job)

	err := q.importPool.Submit(&worker.ImportVocabularyJob{
		ID:       job.ID,
		UserID:   userID,
		Rows:     rows,
		Importer: q.importer,
		Tracker:  q,
	})
	if err != nil {
		q.forget(job.ID)
		return nil, err
	}
	return &snapshot, nil
}

func (q *WorkerQueue) ImportStatus(userID int64, jobID string) (*models.ImportJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (q *WorkerQueue) Started(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[jobID]; ok {
		job.Status = models.ImportRunning
	}
}

func (q *WorkerQueue) Finished(jobID string, summary models.ImportSummary, err error) {
	metrics.RecordImportRows(summary.Created, summary.Skipped, len(summary.Errors))

	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return
	}
	done := q.now()
	job.FinishedAt = &done
	job.Summary = &summary
	if err != nil {
		job.Status = models.ImportFailed
		job.Error = err.Error()
		return
	}
	job.Status = models.ImportDone
}

func (q *WorkerQueue) track(job *models.ImportJob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs[job.ID] = job
	q.order = append(q.order, job.ID)
	for len(q.order) > maxTracked {
		delete(q.jobs, q.order[0])
		q.order = q.order[1:]
	}
}

func (q *WorkerQueue) forget(jobID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.jobs, jobID)
	for i, id := range q.order {
		if id == jobID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

var _ JobQueue = (*WorkerQueue)(nil)
