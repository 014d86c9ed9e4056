package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lexigo/reviewd/internal/repository"
)

// Store implements repository.Store on a SQLite database. Repositories
// obtained from a Store returned by InTx run inside that transaction.
type Store struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewStore creates a repository.Store backed by db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Vocabulary() repository.VocabularyRepository {
	return NewVocabularyRepository(s.q)
}

func (s *Store) Exercises() repository.ExerciseRepository {
	return NewExerciseRepository(s.q)
}

func (s *Store) Progress() repository.ProgressRepository {
	return NewProgressRepository(s.q)
}

func (s *Store) Activities() repository.ActivityRepository {
	return NewActivityRepository(s.q)
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, inTx := s.q.(*sqlx.Tx); inTx {
		return fn(s)
	}
	return tx(ctx, s.db, func(t *sqlx.Tx) error {
		return fn(&Store{db: s.db, q: t})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
