package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

// maxCASAttempts bounds optimistic retries of a progress update.
const maxCASAttempts = 3

// Option customizes a service.
type Option func(*options)

type options struct {
	now func() time.Time
	loc *time.Location
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	if o.loc == nil {
		o.loc = time.UTC
	}
	return o
}

// startOfDay is midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// storeError translates repository failures into AppErrors.
func storeError(resource string, id any, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError(resource, id)
	case stderrors.Is(err, repository.ErrDuplicate):
		return errors.NewConflictError(fmt.Sprintf("%s already exists", resource))
	case stderrors.Is(err, repository.ErrConflict):
		return errors.NewConflictError(fmt.Sprintf("%s was modified concurrently", resource))
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return errors.NewDependencyError("database", err)
	default:
		return errors.NewInternalError(err)
	}
}

// lockUser serializes ledger mutations of one user.
func lockUser(ctx context.Context, locker lock.Locker, userID int64) (func(), error) {
	unlock, err := locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		logger.FromContext(ctx).Warn("failed to lock user %d: %v", userID, err)
		return nil, errors.NewDependencyError("user lock", err)
	}
	return unlock, nil
}

// updateProgress reads the user's ledger, applies fn and writes the result
// with a compare-and-swap on the version, retrying on conflict.
func updateProgress(ctx context.Context, tx repository.Store, userID int64, now time.Time, fn func(models.UserProgress) (models.UserProgress, error)) (*models.UserProgress, error) {
	log := logger.FromContext(ctx)

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		current, err := tx.Progress().GetOrCreate(ctx, userID, now)
		if err != nil {
			return nil, storeError("progress", userID, err)
		}
		next, err := fn(*current)
		if err != nil {
			return nil, err
		}
		next.UpdatedAt = now

		updated, err := tx.Progress().Update(ctx, next)
		if stderrors.Is(err, repository.ErrConflict) {
			log.Warn("progress version conflict for user %d (attempt %d/%d)", userID, attempt, maxCASAttempts)
			continue
		}
		if err != nil {
			return nil, storeError("progress", userID, err)
		}
		return updated, nil
	}
	return nil, errors.NewConflictError("progress was modified concurrently, please retry")
}

// liveStreak is the streak still alive on today: it lapses once a full day is missed.
func liveStreak(p models.UserProgress, today time.Time, loc *time.Location) int {
	if p.LastCheckInDate == "" {
		return 0
	}
	yesterday := today.In(loc).AddDate(0, 0, -1)
	if p.LastCheckInDate == gamification.DayOf(today, loc) || p.LastCheckInDate == gamification.DayOf(yesterday, loc) {
		return p.StreakDays
	}
	return 0
}

func defaultProgress(userID int64) models.UserProgress {
	return models.UserProgress{UserID: userID, Level: gamification.LevelForXP(0), ClaimedMilestones: []int{}}
}
