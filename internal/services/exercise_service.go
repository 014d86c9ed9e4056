package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/exercise"
	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/metrics"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
	"github.com/lexigo/reviewd/internal/srs"
)

// distractorPoolSize bounds how many items are loaded to draw distractors from.
const distractorPoolSize = 200

// ExerciseService handles exercise generation and submission
type ExerciseService interface {
	Generate(ctx context.Context, userID int64, limit int) ([]models.Exercise, error)
	Submit(ctx context.Context, userID int64, exerciseID, answer string) (*models.SubmissionResult, error)
	// SweepStale deletes unsubmitted exercises older than the configured TTL.
	SweepStale(ctx context.Context) (int64, error)
}

type exerciseService struct {
	store     repository.Store
	generator *exercise.Generator
	grader    *exercise.Grader
	locker    lock.Locker
	ttl       time.Duration
	opts      options
}

// NewExerciseService creates a new ExerciseService
func NewExerciseService(store repository.Store, generator *exercise.Generator, grader *exercise.Grader, locker lock.Locker, ttl time.Duration, opts ...Option) ExerciseService {
	return &exerciseService{
		store:     store,
		generator: generator,
		grader:    grader,
		locker:    locker,
		ttl:       ttl,
		opts:      buildOptions(opts),
	}
}

func (s *exerciseService) Generate(ctx context.Context, userID int64, limit int) ([]models.Exercise, error) {
	log := logger.FromContext(ctx)
	count := exercise.ClampCount(limit)
	now := s.opts.now()
	log.Debug("generating exercises: user_id=%d, count=%d", userID, count)

	vocab := s.store.Vocabulary()
	due, err := vocab.DueItems(ctx, userID, now, count)
	if err != nil {
		return nil, storeError("vocabulary", userID, err)
	}
	fresh, err := vocab.FreshItems(ctx, userID, count)
	if err != nil {
		return nil, storeError("vocabulary", userID, err)
	}
	out := []models.Exercise{}
	if len(due) == 0 && len(fresh) == 0 {
		log.Debug("nothing due for user %d", userID)
		return out, nil
	}
	pool, err := vocab.Pool(ctx, userID, distractorPoolSize)
	if err != nil {
		return nil, storeError("vocabulary", userID, err)
	}

	byID := make(map[int64]models.VocabularyItem, len(due)+len(fresh))
	for _, group := range [][]models.VocabularyItem{due, fresh} {
		for _, item := range group {
			byID[item.ID] = item
		}
	}

	for _, task := range s.generator.Generate(due, fresh, pool, count) {
		ex, err := exercise.Encode(task, uuid.NewString(), userID, now)
		if err != nil {
			log.Error("failed to encode %s exercise: %v", task.Kind(), err)
			return nil, errors.NewInternalError(err)
		}
		item := byID[task.Owner()]
		ex.Vocabulary = &item
		out = append(out, ex)
	}

	if err := s.store.Exercises().InsertBatch(ctx, out); err != nil {
		log.Error("failed to store exercises: %v", err)
		return nil, storeError("exercise", userID, err)
	}
	for _, ex := range out {
		metrics.RecordGenerated(string(ex.ExerciseType))
	}
	log.Info("generated %d exercises for user %d", len(out), userID)
	return out, nil
}

func gradeError(err error) error {
	switch {
	case stderrors.Is(err, exercise.ErrMalformedAnswer):
		return errors.NewValidationError("userAnswer", err.Error())
	case stderrors.Is(err, exercise.ErrEvaluatorUnavailable),
		stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(err, context.Canceled):
		return errors.NewDependencyError("answer evaluator", err)
	default:
		return errors.NewInternalError(err)
	}
}

func (s *exerciseService) Submit(ctx context.Context, userID int64, exerciseID, answer string) (*models.SubmissionResult, error) {
	log := logger.FromContext(ctx).WithField("exercise_id", exerciseID)
	log.Debug("submitting answer: user_id=%d", userID)

	ex, err := s.store.Exercises().Get(ctx, userID, exerciseID)
	if err != nil {
		return nil, storeError("exercise", exerciseID, err)
	}
	if ex.Submitted() {
		return nil, errors.NewConflictError("exercise already submitted")
	}
	item, err := s.store.Vocabulary().Get(ctx, userID, ex.VocabularyID)
	if err != nil {
		return nil, storeError("vocabulary", ex.VocabularyID, err)
	}

	// Grading may call the evaluator, so it runs before any lock is taken.
	outcome, err := s.grader.Grade(ctx, *ex, *item, answer)
	if err != nil {
		log.Warn("grading failed: %v", err)
		return nil, gradeError(err)
	}

	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.opts.now()
	xp := gamification.ExerciseXP(outcome.Score)
	result := &models.SubmissionResult{XPEarned: xp}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Exercises().MarkSubmitted(ctx, ex.ID, answer, outcome.ExerciseResult, now); err != nil {
			if stderrors.Is(err, repository.ErrConflict) {
				return errors.NewConflictError("exercise already submitted")
			}
			return storeError("exercise", ex.ID, err)
		}

		current, err := tx.Vocabulary().Get(ctx, userID, ex.VocabularyID)
		if err != nil {
			return storeError("vocabulary", ex.VocabularyID, err)
		}
		next, err := srs.Schedule(current.SRSState, outcome.Quality, now)
		if err != nil {
			return errors.NewInternalError(err)
		}
		current.SRSState = next
		current.LastExerciseType = ex.ExerciseType
		current.UpdatedAt = now
		if err := tx.Vocabulary().UpdateSchedule(ctx, *current); err != nil {
			return storeError("vocabulary", ex.VocabularyID, err)
		}

		var change gamification.LevelChange
		progress, err := updateProgress(ctx, tx, userID, now, func(p models.UserProgress) (models.UserProgress, error) {
			var updated models.UserProgress
			updated, change = gamification.ApplyExerciseResult(p, xp)
			return updated, nil
		})
		if err != nil {
			return err
		}

		if _, err := tx.Activities().Insert(ctx, models.ReviewActivity{
			UserID:       userID,
			VocabularyID: current.ID,
			Word:         current.Word,
			Source:       string(ex.ExerciseType),
			Quality:      outcome.Quality,
			Score:        outcome.Score,
			IsCorrect:    outcome.IsCorrect,
			XPEarned:     xp,
			CreatedAt:    now,
		}); err != nil {
			return storeError("activity", ex.ID, err)
		}

		result.Vocabulary = *current
		result.NewLevel = change.NewLevel()
		result.UpdatedUser = *progress
		return nil
	})
	if err != nil {
		log.Warn("submission rolled back: %v", err)
		return nil, err
	}

	submitted := *ex
	submittedAt := now
	submitted.UserAnswer = &answer
	submitted.SubmittedAt = &submittedAt
	res := outcome.ExerciseResult
	submitted.Result = &res
	vocab := result.Vocabulary
	submitted.Vocabulary = &vocab
	result.Exercise = submitted

	metrics.RecordSubmission(string(ex.ExerciseType), outcome.IsCorrect, xp)
	log.Info("exercise graded: correct=%t, score=%d, xp=%d, level=%d", outcome.IsCorrect, outcome.Score, xp, result.UpdatedUser.Level)
	return result, nil
}

func (s *exerciseService) SweepStale(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := s.opts.now().Add(-s.ttl)
	n, err := s.store.Exercises().DeleteUnsubmittedBefore(ctx, cutoff)
	if err != nil {
		log.Error("failed to sweep stale exercises: %v", err)
		return 0, storeError("exercise", "stale", err)
	}
	metrics.RecordSwept(n)
	if n > 0 {
		log.Info("swept %d stale exercises created before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
