package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

var vocabularyColumns = []string{
	"id", "user_id", "word", "word_type", "translation", "phonetic",
	"english_definition", "vietnamese_definition", "examples", "vietnamese_example",
	"synonyms", "antonyms", "notes", "audio_url", "video_url", "reference_url", "image_url",
	"difficulty", "repetitions", "ease_factor", "interval_days", "next_review_at",
	"last_reviewed_at", "last_exercise_type", "added_at", "updated_at",
}

// orderable maps accepted sort keys to columns.
var orderable = map[string]string{
	"addedAt":      "added_at",
	"word":         "word COLLATE NOCASE",
	"nextReviewAt": "next_review_at",
	"difficulty":   "difficulty",
}

type vocabularyRow struct {
	ID                   int64         `db:"id"`
	UserID               int64         `db:"user_id"`
	Word                 string        `db:"word"`
	WordType             string        `db:"word_type"`
	Translation          string        `db:"translation"`
	Phonetic             string        `db:"phonetic"`
	EnglishDefinition    string        `db:"english_definition"`
	VietnameseDefinition string        `db:"vietnamese_definition"`
	Examples             string        `db:"examples"`
	VietnameseExample    string        `db:"vietnamese_example"`
	Synonyms             string        `db:"synonyms"`
	Antonyms             string        `db:"antonyms"`
	Notes                string        `db:"notes"`
	AudioURL             string        `db:"audio_url"`
	VideoURL             string        `db:"video_url"`
	ReferenceURL         string        `db:"reference_url"`
	ImageURL             string        `db:"image_url"`
	Difficulty           string        `db:"difficulty"`
	Repetitions          int           `db:"repetitions"`
	EaseFactor           float64       `db:"ease_factor"`
	IntervalDays         int           `db:"interval_days"`
	NextReviewAt         int64         `db:"next_review_at"`
	LastReviewedAt       sql.NullInt64 `db:"last_reviewed_at"`
	LastExerciseType     string        `db:"last_exercise_type"`
	AddedAt              int64         `db:"added_at"`
	UpdatedAt            int64         `db:"updated_at"`
}

func (r vocabularyRow) model() models.VocabularyItem {
	return models.VocabularyItem{
		ID:                   r.ID,
		UserID:               r.UserID,
		Word:                 r.Word,
		WordType:             r.WordType,
		Translation:          r.Translation,
		Phonetic:             r.Phonetic,
		EnglishDefinition:    r.EnglishDefinition,
		VietnameseDefinition: r.VietnameseDefinition,
		Examples:             decodeList(r.Examples),
		VietnameseExample:    r.VietnameseExample,
		Synonyms:             decodeList(r.Synonyms),
		Antonyms:             decodeList(r.Antonyms),
		Notes:                r.Notes,
		AudioURL:             r.AudioURL,
		VideoURL:             r.VideoURL,
		ReferenceURL:         r.ReferenceURL,
		ImageURL:             r.ImageURL,
		Difficulty:           r.Difficulty,
		SRSState: models.SRSState{
			Repetitions:    r.Repetitions,
			EaseFactor:     r.EaseFactor,
			IntervalDays:   r.IntervalDays,
			NextReviewAt:   fromMillis(r.NextReviewAt),
			LastReviewedAt: timePtr(r.LastReviewedAt),
		},
		LastExerciseType: models.ExerciseType(r.LastExerciseType),
		AddedAt:          fromMillis(r.AddedAt),
		UpdatedAt:        fromMillis(r.UpdatedAt),
	}
}

type vocabularyRepository struct {
	db sqlx.ExtContext
}

// NewVocabularyRepository creates a new VocabularyRepository implementation
func NewVocabularyRepository(db sqlx.ExtContext) repository.VocabularyRepository {
	return &vocabularyRepository{db: db}
}

func (r *vocabularyRepository) selectItems(ctx context.Context, query squirrel.SelectBuilder) ([]models.VocabularyItem, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []vocabularyRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, stmt, args...); err != nil {
		return nil, err
	}
	items := make([]models.VocabularyItem, len(rows))
	for i, row := range rows {
		items[i] = row.model()
	}
	return items, nil
}

func (r *vocabularyRepository) Get(ctx context.Context, userID, id int64) (*models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Debug("getting vocabulary: id=%d, user_id=%d", id, userID)

	stmt, args, err := sqlBuilder.Select(vocabularyColumns...).From("vocabulary").
		Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return nil, err
	}
	var row vocabularyRow
	if err := sqlx.GetContext(ctx, r.db, &row, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("vocabulary not found: id=%d", id)
			return nil, repository.ErrNotFound
		}
		log.Error("failed to get vocabulary: %v", err)
		return nil, err
	}
	item := row.model()
	return &item, nil
}

func applyFilter(query squirrel.SelectBuilder, filter models.VocabularyFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"word": pattern},
			squirrel.Like{"translation": pattern},
		})
	}
	if filter.DueBefore != nil {
		query = query.Where(squirrel.LtOrEq{"next_review_at": toMillis(*filter.DueBefore)})
	}
	return query
}

func (r *vocabularyRepository) List(ctx context.Context, filter models.VocabularyFilter) ([]models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Debug("listing vocabulary: user_id=%d, difficulty=%s, q=%s, limit=%d, offset=%d",
		filter.UserID, filter.Difficulty, filter.Query, filter.Limit, filter.Offset)

	query := applyFilter(sqlBuilder.Select(vocabularyColumns...).From("vocabulary"), filter)

	orderBy, ok := orderable[filter.OrderBy]
	if !ok {
		orderBy = "added_at"
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "ASC") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id "+orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	items, err := r.selectItems(ctx, query)
	if err != nil {
		log.Error("failed to list vocabulary: %v", err)
		return nil, err
	}
	log.Debug("found %d vocabulary items", len(items))
	return items, nil
}

func (r *vocabularyRepository) Count(ctx context.Context, filter models.VocabularyFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")

	stmt, args, err := applyFilter(sqlBuilder.Select("COUNT(*)").From("vocabulary"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, stmt, args...); err != nil {
		log.Error("failed to count vocabulary: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *vocabularyRepository) Insert(ctx context.Context, v models.VocabularyItem) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Debug("inserting vocabulary: user_id=%d, word=%s", v.UserID, v.Word)

	stmt, args, err := sqlBuilder.Insert("vocabulary").Columns(vocabularyColumns[1:]...).Values(
		v.UserID, v.Word, v.WordType, v.Translation, v.Phonetic,
		v.EnglishDefinition, v.VietnameseDefinition, encodeList(v.Examples), v.VietnameseExample,
		encodeList(v.Synonyms), encodeList(v.Antonyms), v.Notes, v.AudioURL, v.VideoURL, v.ReferenceURL, v.ImageURL,
		v.Difficulty, v.Repetitions, v.EaseFactor, v.IntervalDays, toMillis(v.NextReviewAt),
		nullMillis(v.LastReviewedAt), string(v.LastExerciseType), toMillis(v.AddedAt), toMillis(v.UpdatedAt),
	).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("vocabulary already exists: word=%s", v.Word)
			return 0, repository.ErrDuplicate
		}
		log.Error("failed to insert vocabulary: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get vocabulary id: %v", err)
		return 0, err
	}
	log.Debug("vocabulary inserted: id=%d", id)
	return id, nil
}

func (r *vocabularyRepository) Update(ctx context.Context, v models.VocabularyItem) error {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Debug("updating vocabulary: id=%d", v.ID)

	stmt, args, err := sqlBuilder.Update("vocabulary").SetMap(map[string]any{
		"word":                  v.Word,
		"word_type":             v.WordType,
		"translation":           v.Translation,
		"phonetic":              v.Phonetic,
		"english_definition":    v.EnglishDefinition,
		"vietnamese_definition": v.VietnameseDefinition,
		"examples":              encodeList(v.Examples),
		"vietnamese_example":    v.VietnameseExample,
		"synonyms":              encodeList(v.Synonyms),
		"antonyms":              encodeList(v.Antonyms),
		"notes":                 v.Notes,
		"audio_url":             v.AudioURL,
		"video_url":             v.VideoURL,
		"reference_url":         v.ReferenceURL,
		"image_url":             v.ImageURL,
		"difficulty":            v.Difficulty,
		"updated_at":            toMillis(v.UpdatedAt),
	}).Where(squirrel.Eq{"id": v.ID, "user_id": v.UserID}).ToSql()
	if err != nil {
		return err
	}
	return r.execOne(ctx, log, stmt, args...)
}

func (r *vocabularyRepository) UpdateSchedule(ctx context.Context, v models.VocabularyItem) error {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Debug("updating schedule: id=%d, reps=%d, interval=%d, ease=%.2f", v.ID, v.Repetitions, v.IntervalDays, v.EaseFactor)

	stmt, args, err := sqlBuilder.Update("vocabulary").SetMap(map[string]any{
		"repetitions":        v.Repetitions,
		"ease_factor":        v.EaseFactor,
		"interval_days":      v.IntervalDays,
		"next_review_at":     toMillis(v.NextReviewAt),
		"last_reviewed_at":   nullMillis(v.LastReviewedAt),
		"last_exercise_type": string(v.LastExerciseType),
		"updated_at":         toMillis(v.UpdatedAt),
	}).Where(squirrel.Eq{"id": v.ID, "user_id": v.UserID}).ToSql()
	if err != nil {
		return err
	}
	return r.execOne(ctx, log, stmt, args...)
}

func (r *vocabularyRepository) execOne(ctx context.Context, log *logger.Logger, stmt string, args ...any) error {
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		log.Error("failed to update vocabulary: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *vocabularyRepository) Delete(ctx context.Context, userID, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")
	log.Info("deleting vocabulary: id=%d, user_id=%d", id, userID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM vocabulary WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete vocabulary: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *vocabularyRepository) DueItems(ctx context.Context, userID int64, now time.Time, limit int) ([]models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")

	items, err := r.selectItems(ctx, sqlBuilder.Select(vocabularyColumns...).From("vocabulary").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.NotEq{"last_reviewed_at": nil}).
		Where(squirrel.LtOrEq{"next_review_at": toMillis(now)}).
		OrderBy("next_review_at ASC", "id ASC").
		Limit(uint64(limit)))
	if err != nil {
		log.Error("failed to query due vocabulary: %v", err)
		return nil, err
	}
	log.Debug("found %d due items for user %d", len(items), userID)
	return items, nil
}

func (r *vocabularyRepository) FreshItems(ctx context.Context, userID int64, limit int) ([]models.VocabularyItem, error) {
	log := logger.FromContext(ctx).WithPrefix("vocabulary_repo")

	items, err := r.selectItems(ctx, sqlBuilder.Select(vocabularyColumns...).From("vocabulary").
		Where(squirrel.Eq{"user_id": userID, "last_reviewed_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit)))
	if err != nil {
		log.Error("failed to query new vocabulary: %v", err)
		return nil, err
	}
	log.Debug("found %d new items for user %d", len(items), userID)
	return items, nil
}

func (r *vocabularyRepository) Pool(ctx context.Context, userID int64, limit int) ([]models.VocabularyItem, error) {
	items, err := r.selectItems(ctx, sqlBuilder.Select(vocabularyColumns...).From("vocabulary").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id ASC").
		Limit(uint64(limit)))
	if err != nil {
		logger.FromContext(ctx).WithPrefix("vocabulary_repo").Error("failed to load vocabulary pool: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *vocabularyRepository) ExistingWords(ctx context.Context, userID int64) (map[string]bool, error) {
	var words []string
	if err := sqlx.SelectContext(ctx, r.db, &words, `SELECT lower(word) FROM vocabulary WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out, nil
}

func (r *vocabularyRepository) CountByDifficulty(ctx context.Context, userID int64) (map[string]int, error) {
	var rows []struct {
		Difficulty string `db:"difficulty"`
		Count      int    `db:"count"`
	}
	err := sqlx.SelectContext(ctx, r.db, &rows, `
SELECT difficulty, COUNT(*) AS count
FROM vocabulary
WHERE user_id = ?
GROUP BY difficulty
`, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("vocabulary_repo").Error("failed to count by difficulty: %v", err)
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Difficulty] = row.Count
	}
	return out, nil
}

func (r *vocabularyRepository) CountAddedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM vocabulary WHERE user_id = ? AND added_at >= ?`, userID, toMillis(since))
	return n, err
}

func (r *vocabularyRepository) CountDue(ctx context.Context, userID int64, now time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM vocabulary WHERE user_id = ? AND next_review_at <= ?`, userID, toMillis(now))
	return n, err
}
