package services

import (
	"context"
	stderrors "errors"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/metrics"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

// CheckInService handles the daily check-in streak
type CheckInService interface {
	CheckIn(ctx context.Context, userID int64) (*models.CheckInResult, error)
	Status(ctx context.Context, userID int64) (*models.CheckInStatus, error)
}

type checkInService struct {
	store  repository.Store
	locker lock.Locker
	opts   options
}

// NewCheckInService creates a new CheckInService
func NewCheckInService(store repository.Store, locker lock.Locker, opts ...Option) CheckInService {
	return &checkInService{store: store, locker: locker, opts: buildOptions(opts)}
}

func (s *checkInService) CheckIn(ctx context.Context, userID int64) (*models.CheckInResult, error) {
	log := logger.FromContext(ctx)

	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.opts.now()
	today := gamification.DayOf(now, s.opts.loc)
	log.Debug("daily check-in: user_id=%d, day=%s", userID, today)

	var reward gamification.CheckInReward
	var progress *models.UserProgress
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		progress, err = updateProgress(ctx, tx, userID, now, func(p models.UserProgress) (models.UserProgress, error) {
			next, r, err := gamification.ApplyDailyCheckIn(p, today)
			if err != nil {
				return p, err
			}
			reward = r
			return next, nil
		})
		return err
	})
	if err != nil {
		if stderrors.Is(err, gamification.ErrAlreadyCheckedIn) {
			return nil, errors.NewConflictError("already checked in today")
		}
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		log.Error("check-in failed: %v", err)
		return nil, errors.NewInternalError(err)
	}

	metrics.RecordCheckIn(reward.MilestoneBonus > 0, reward.XP)
	if reward.MilestoneBonus > 0 {
		log.Info("user %d reached a %d-day streak: +%d beta", userID, progress.StreakDays, reward.MilestoneBonus)
	}
	log.Info("user %d checked in: streak=%d, xp=%d, beta=%d", userID, progress.StreakDays, progress.XP, progress.BetaBalance)

	return &models.CheckInResult{
		XPGained:       reward.XP,
		BetaGained:     reward.TotalBeta(),
		MilestoneBonus: reward.MilestoneBonus,
		NewLevel:       reward.Level.NewLevel(),
		User: models.CheckInUser{
			Level:       progress.Level,
			Streak:      progress.StreakDays,
			XP:          progress.XP,
			BetaRewards: progress.BetaBalance,
		},
	}, nil
}

func (s *checkInService) Status(ctx context.Context, userID int64) (*models.CheckInStatus, error) {
	now := s.opts.now()
	today := gamification.DayOf(now, s.opts.loc)

	progress, err := s.store.Progress().Get(ctx, userID)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		p := defaultProgress(userID)
		progress = &p
	case err != nil:
		logger.FromContext(ctx).Error("failed to load progress: %v", err)
		return nil, storeError("progress", userID, err)
	}

	return &models.CheckInStatus{
		CheckedInToday: progress.LastCheckInDate == today,
		Streak:         liveStreak(*progress, now, s.opts.loc),
		Today:          today,
	}, nil
}
