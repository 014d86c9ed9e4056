package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lexigo/reviewd/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write matched no row because
	// another writer got there first.
	ErrConflict = errors.New("concurrent modification")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// VocabularyRepository handles vocabulary item data access. Every method is
// scoped to one user.
type VocabularyRepository interface {
	Get(ctx context.Context, userID, id int64) (*models.VocabularyItem, error)
	List(ctx context.Context, filter models.VocabularyFilter) ([]models.VocabularyItem, error)
	Count(ctx context.Context, filter models.VocabularyFilter) (int, error)
	Insert(ctx context.Context, item models.VocabularyItem) (int64, error)
	Update(ctx context.Context, item models.VocabularyItem) error
	UpdateSchedule(ctx context.Context, item models.VocabularyItem) error
	Delete(ctx context.Context, userID, id int64) error
	DueItems(ctx context.Context, userID int64, now time.Time, limit int) ([]models.VocabularyItem, error)
	FreshItems(ctx context.Context, userID int64, limit int) ([]models.VocabularyItem, error)
	Pool(ctx context.Context, userID int64, limit int) ([]models.VocabularyItem, error)
	ExistingWords(ctx context.Context, userID int64) (map[string]bool, error)
	CountByDifficulty(ctx context.Context, userID int64) (map[string]int, error)
	CountAddedSince(ctx context.Context, userID int64, since time.Time) (int, error)
	CountDue(ctx context.Context, userID int64, now time.Time) (int, error)
}

// ExerciseRepository handles generated exercise data access.
type ExerciseRepository interface {
	InsertBatch(ctx context.Context, exercises []models.Exercise) error
	Get(ctx context.Context, userID int64, id string) (*models.Exercise, error)
	// MarkSubmitted records the answer only if the exercise is still unsubmitted;
	// otherwise it returns ErrConflict.
	MarkSubmitted(ctx context.Context, id string, answer string, result models.ExerciseResult, at time.Time) error
	DeleteUnsubmittedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ProgressRepository handles the per-user gamification ledger.
type ProgressRepository interface {
	Get(ctx context.Context, userID int64) (*models.UserProgress, error)
	GetOrCreate(ctx context.Context, userID int64, now time.Time) (*models.UserProgress, error)
	// Update writes p if its Version still matches the stored row and bumps the
	// version. A stale version yields ErrConflict.
	Update(ctx context.Context, p models.UserProgress) (*models.UserProgress, error)
}

// ActivityRepository handles the review history.
type ActivityRepository interface {
	Insert(ctx context.Context, a models.ReviewActivity) (int64, error)
	Recent(ctx context.Context, userID int64, limit int) ([]models.ReviewActivity, error)
	TimesSince(ctx context.Context, userID int64, since time.Time) ([]time.Time, error)
}

// Store groups the repositories so that a unit of work can run them inside
// one transaction.
type Store interface {
	Vocabulary() VocabularyRepository
	Exercises() ExerciseRepository
	Progress() ProgressRepository
	Activities() ActivityRepository
	// InTx runs fn with a Store bound to a single transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
