package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

type progressRow struct {
	UserID          int64          `db:"user_id"`
	XP              int            `db:"xp"`
	Level           int            `db:"level"`
	StreakDays      int            `db:"streak_days"`
	LastCheckInDate sql.NullString `db:"last_check_in_date"`
	BetaBalance     int            `db:"beta_balance"`
	Version         int64          `db:"version"`
	CreatedAt       int64          `db:"created_at"`
	UpdatedAt       int64          `db:"updated_at"`
}

type progressRepository struct {
	db sqlx.ExtContext
}

// NewProgressRepository creates a new ProgressRepository implementation
func NewProgressRepository(db sqlx.ExtContext) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID int64) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	var row progressRow
	err := sqlx.GetContext(ctx, r.db, &row, `
SELECT user_id, xp, level, streak_days, last_check_in_date, beta_balance, version, created_at, updated_at
FROM user_progress
WHERE user_id = ?
`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get progress: %v", err)
		return nil, err
	}

	milestones := []int{}
	if err := sqlx.SelectContext(ctx, r.db, &milestones, `SELECT streak FROM user_milestones WHERE user_id = ? ORDER BY streak`, userID); err != nil {
		log.Error("failed to load milestones: %v", err)
		return nil, err
	}

	return &models.UserProgress{
		UserID:            row.UserID,
		XP:                row.XP,
		Level:             row.Level,
		StreakDays:        row.StreakDays,
		LastCheckInDate:   row.LastCheckInDate.String,
		BetaBalance:       row.BetaBalance,
		ClaimedMilestones: milestones,
		Version:           row.Version,
		CreatedAt:         fromMillis(row.CreatedAt),
		UpdatedAt:         fromMillis(row.UpdatedAt),
	}, nil
}

func (r *progressRepository) GetOrCreate(ctx context.Context, userID int64, now time.Time) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	res, err := r.db.ExecContext(ctx, `
INSERT INTO user_progress (user_id, created_at, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO NOTHING
`, userID, toMillis(now), toMillis(now))
	if err != nil {
		log.Error("failed to create progress: %v", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info("created progress for user %d", userID)
	}
	return r.Get(ctx, userID)
}

func (r *progressRepository) Update(ctx context.Context, p models.UserProgress) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("updating progress: user_id=%d, version=%d, xp=%d, level=%d, streak=%d",
		p.UserID, p.Version, p.XP, p.Level, p.StreakDays)

	res, err := r.db.ExecContext(ctx, `
UPDATE user_progress
SET xp = ?, level = ?, streak_days = ?, last_check_in_date = ?, beta_balance = ?, version = version + 1, updated_at = ?
WHERE user_id = ? AND version = ?
`, p.XP, p.Level, p.StreakDays, nullString(p.LastCheckInDate), p.BetaBalance, toMillis(p.UpdatedAt), p.UserID, p.Version)
	if err != nil {
		log.Error("failed to update progress: %v", err)
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		log.Debug("stale progress version %d for user %d", p.Version, p.UserID)
		return nil, repository.ErrConflict
	}

	for _, streak := range p.ClaimedMilestones {
		if _, err := r.db.ExecContext(ctx, `
INSERT INTO user_milestones (user_id, streak, claimed_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id, streak) DO NOTHING
`, p.UserID, streak, toMillis(p.UpdatedAt)); err != nil {
			log.Error("failed to record milestone %d: %v", streak, err)
			return nil, err
		}
	}

	updated := p
	updated.Version++
	updated.ClaimedMilestones = append([]int(nil), p.ClaimedMilestones...)
	return &updated, nil
}
