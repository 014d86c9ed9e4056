package services

import (
	"context"
	stderrors "errors"

	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

// UserService exposes the learner's gamification profile
type UserService interface {
	Profile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type userService struct {
	store repository.Store
	opts  options
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store, opts ...Option) UserService {
	return &userService{store: store, opts: buildOptions(opts)}
}

func (s *userService) Profile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	progress, err := s.store.Progress().Get(ctx, userID)
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		p := defaultProgress(userID)
		progress = &p
	case err != nil:
		logger.FromContext(ctx).Error("failed to load progress: %v", err)
		return nil, storeError("progress", userID, err)
	}

	profile := &models.UserProfile{
		UserProgress:   *progress,
		CurrentLevelXP: gamification.LevelFloor(progress.Level),
		MaxLevel:       progress.Level >= gamification.MaxLevel(),
	}
	profile.StreakDays = liveStreak(*progress, s.opts.now(), s.opts.loc)
	if next, ok := gamification.NextLevelXP(progress.Level); ok {
		profile.NextLevelXP = &next
	}
	return profile, nil
}
