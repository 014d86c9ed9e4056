package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

var exerciseColumns = []string{
	"id", "user_id", "vocabulary_id", "exercise_type", "instruction", "question", "options",
	"correct_answer", "user_answer", "is_correct", "score", "feedback", "created_at", "submitted_at",
}

type exerciseRow struct {
	ID            string         `db:"id"`
	UserID        int64          `db:"user_id"`
	VocabularyID  int64          `db:"vocabulary_id"`
	ExerciseType  string         `db:"exercise_type"`
	Instruction   string         `db:"instruction"`
	Question      string         `db:"question"`
	Options       sql.NullString `db:"options"`
	CorrectAnswer string         `db:"correct_answer"`
	UserAnswer    sql.NullString `db:"user_answer"`
	IsCorrect     sql.NullBool   `db:"is_correct"`
	Score         sql.NullInt64  `db:"score"`
	Feedback      sql.NullString `db:"feedback"`
	CreatedAt     int64          `db:"created_at"`
	SubmittedAt   sql.NullInt64  `db:"submitted_at"`
}

func (r exerciseRow) model() models.Exercise {
	ex := models.Exercise{
		ID:            r.ID,
		UserID:        r.UserID,
		VocabularyID:  r.VocabularyID,
		ExerciseType:  models.ExerciseType(r.ExerciseType),
		Instruction:   r.Instruction,
		Question:      json.RawMessage(r.Question),
		CorrectAnswer: r.CorrectAnswer,
		CreatedAt:     fromMillis(r.CreatedAt),
		SubmittedAt:   timePtr(r.SubmittedAt),
	}
	if r.Options.Valid {
		ex.Options = json.RawMessage(r.Options.String)
	}
	if r.UserAnswer.Valid {
		answer := r.UserAnswer.String
		ex.UserAnswer = &answer
	}
	if r.IsCorrect.Valid {
		ex.Result = &models.ExerciseResult{
			IsCorrect: r.IsCorrect.Bool,
			Score:     int(r.Score.Int64),
			Feedback:  r.Feedback.String,
		}
	}
	return ex
}

type exerciseRepository struct {
	db sqlx.ExtContext
}

// NewExerciseRepository creates a new ExerciseRepository implementation
func NewExerciseRepository(db sqlx.ExtContext) repository.ExerciseRepository {
	return &exerciseRepository{db: db}
}

func (r *exerciseRepository) InsertBatch(ctx context.Context, exercises []models.Exercise) error {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	if len(exercises) == 0 {
		return nil
	}
	log.Debug("inserting %d exercises", len(exercises))

	query := sqlBuilder.Insert("exercises").Columns(
		"id", "user_id", "vocabulary_id", "exercise_type", "instruction", "question", "options", "correct_answer", "created_at",
	)
	for _, ex := range exercises {
		var options sql.NullString
		if len(ex.Options) > 0 {
			options = sql.NullString{String: string(ex.Options), Valid: true}
		}
		query = query.Values(ex.ID, ex.UserID, ex.VocabularyID, string(ex.ExerciseType), ex.Instruction,
			string(ex.Question), options, ex.CorrectAnswer, toMillis(ex.CreatedAt))
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		log.Error("failed to insert exercises: %v", err)
		return err
	}
	return nil
}

func (r *exerciseRepository) Get(ctx context.Context, userID int64, id string) (*models.Exercise, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	log.Debug("getting exercise: id=%s, user_id=%d", id, userID)

	stmt, args, err := sqlBuilder.Select(exerciseColumns...).From("exercises").
		Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}
	var row exerciseRow
	if err := sqlx.GetContext(ctx, r.db, &row, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("exercise not found: id=%s", id)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get exercise: %v", err)
		return nil, err
	}
	ex := row.model()
	return &ex, nil
}

func (r *exerciseRepository) MarkSubmitted(ctx context.Context, id string, answer string, result models.ExerciseResult, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	log.Debug("marking exercise submitted: id=%s, correct=%t, score=%d", id, result.IsCorrect, result.Score)

	res, err := r.db.ExecContext(ctx, `
UPDATE exercises
SET user_answer = ?, is_correct = ?, score = ?, feedback = ?, submitted_at = ?
WHERE id = ? AND submitted_at IS NULL
`, answer, result.IsCorrect, result.Score, result.Feedback, toMillis(at), id)
	if err != nil {
		log.Error("failed to mark exercise submitted: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Debug("exercise %s already submitted", id)
		return repository.ErrConflict
	}
	return nil
}

func (r *exerciseRepository) DeleteUnsubmittedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")

	res, err := r.db.ExecContext(ctx, `DELETE FROM exercises WHERE submitted_at IS NULL AND created_at < ?`, toMillis(cutoff))
	if err != nil {
		log.Error("failed to delete stale exercises: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	log.Debug("deleted %d stale exercises", n)
	return n, nil
}
