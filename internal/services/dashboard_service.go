package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/lexigo/reviewd/internal/gamification"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 10
	activityWindowDays  = 7
)

// DashboardService aggregates the learner's summary
type DashboardService interface {
	Summary(ctx context.Context, userID int64) (*models.DashboardSummary, error)
}

type dashboardService struct {
	store repository.Store
	opts  options
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(store repository.Store, opts ...Option) DashboardService {
	return &dashboardService{store: store, opts: buildOptions(opts)}
}

func (s *dashboardService) Summary(ctx context.Context, userID int64) (*models.DashboardSummary, error) {
	log := logger.FromContext(ctx)
	log.Debug("building dashboard: user_id=%d", userID)

	now := s.opts.now()
	todayStart := startOfDay(now, s.opts.loc)
	windowStart := todayStart.AddDate(0, 0, -(activityWindowDays - 1))

	var (
		summary  = &models.DashboardSummary{}
		byLevel  map[string]int
		recent   []models.ReviewActivity
		progress models.UserProgress
	)
	vocab := s.store.Vocabulary()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := vocab.Count(gctx, models.VocabularyFilter{UserID: userID})
		summary.TotalWords = n
		return err
	})
	g.Go(func() error {
		n, err := vocab.CountAddedSince(gctx, userID, todayStart)
		summary.WordsToday = n
		return err
	})
	g.Go(func() error {
		n, err := vocab.CountDue(gctx, userID, now)
		summary.WordsForReview = n
		return err
	})
	g.Go(func() error {
		var err error
		byLevel, err = vocab.CountByDifficulty(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.Activities().Recent(gctx, userID, recentActivityLimit)
		return err
	})
	g.Go(func() error {
		times, err := s.store.Activities().TimesSince(gctx, userID, windowStart)
		if err != nil {
			return err
		}
		summary.SevenDayData = bucketByDay(times, windowStart, s.opts.loc)
		return nil
	})
	g.Go(func() error {
		p, err := s.store.Progress().Get(gctx, userID)
		if stderrors.Is(err, repository.ErrNotFound) {
			progress = defaultProgress(userID)
			return nil
		}
		if err != nil {
			return err
		}
		progress = *p
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to build dashboard: %v", err)
		return nil, storeError("dashboard", userID, err)
	}

	summary.DifficultyCounts = make(map[string]int, len(models.Difficulties))
	for _, d := range models.Difficulties {
		summary.DifficultyCounts[d] = byLevel[d]
	}
	if recent == nil {
		recent = []models.ReviewActivity{}
	}
	summary.RecentActivities = recent
	summary.LearningStreak = liveStreak(progress, now, s.opts.loc)
	summary.BetaRewards = progress.BetaBalance
	summary.XP = progress.XP
	summary.Level = progress.Level
	if next, ok := gamification.NextLevelXP(progress.Level); ok {
		summary.XPForNextLevel = &next
	}
	return summary, nil
}

// bucketByDay counts timestamps per calendar day in loc, oldest day first.
func bucketByDay(times []time.Time, start time.Time, loc *time.Location) []models.DayCount {
	days := make([]models.DayCount, activityWindowDays)
	index := make(map[string]int, activityWindowDays)
	for i := range days {
		day := gamification.DayOf(start.AddDate(0, 0, i), loc)
		days[i] = models.DayCount{Date: day}
		index[day] = i
	}
	for _, t := range times {
		if i, ok := index[gamification.DayOf(t, loc)]; ok {
			days[i].Count++
		}
	}
	return days
}
