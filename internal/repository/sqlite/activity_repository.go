package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

type activityRow struct {
	ID           int64         `db:"id"`
	UserID       int64         `db:"user_id"`
	VocabularyID sql.NullInt64 `db:"vocabulary_id"`
	Word         string        `db:"word"`
	Source       string        `db:"source"`
	Quality      int           `db:"quality"`
	Score        int           `db:"score"`
	IsCorrect    bool          `db:"is_correct"`
	XPEarned     int           `db:"xp_earned"`
	CreatedAt    int64         `db:"created_at"`
}

type activityRepository struct {
	db sqlx.ExtContext
}

// NewActivityRepository creates a new ActivityRepository implementation
func NewActivityRepository(db sqlx.ExtContext) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Insert(ctx context.Context, a models.ReviewActivity) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("activity_repo")
	log.Debug("recording activity: user_id=%d, vocabulary_id=%d, source=%s, quality=%d", a.UserID, a.VocabularyID, a.Source, a.Quality)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_activities (user_id, vocabulary_id, word, source, quality, score, is_correct, xp_earned, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, a.UserID, a.VocabularyID, a.Word, a.Source, a.Quality, a.Score, a.IsCorrect, a.XPEarned, toMillis(a.CreatedAt))
	if err != nil {
		log.Error("failed to insert activity: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *activityRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.ReviewActivity, error) {
	var rows []activityRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
SELECT id, user_id, vocabulary_id, word, source, quality, score, is_correct, xp_earned, created_at
FROM review_activities
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, userID, limit)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("activity_repo").Error("failed to query recent activity: %v", err)
		return nil, err
	}
	out := make([]models.ReviewActivity, len(rows))
	for i, row := range rows {
		out[i] = models.ReviewActivity{
			ID:           row.ID,
			UserID:       row.UserID,
			VocabularyID: row.VocabularyID.Int64,
			Word:         row.Word,
			Source:       row.Source,
			Quality:      row.Quality,
			Score:        row.Score,
			IsCorrect:    row.IsCorrect,
			XPEarned:     row.XPEarned,
			CreatedAt:    fromMillis(row.CreatedAt),
		}
	}
	return out, nil
}

func (r *activityRepository) TimesSince(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	var millis []int64
	err := sqlx.SelectContext(ctx, r.db, &millis, `
SELECT created_at FROM review_activities WHERE user_id = ? AND created_at >= ? ORDER BY created_at
`, userID, toMillis(since))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("activity_repo").Error("failed to query activity times: %v", err)
		return nil, err
	}
	out := make([]time.Time, len(millis))
	for i, ms := range millis {
		out[i] = fromMillis(ms)
	}
	return out, nil
}
