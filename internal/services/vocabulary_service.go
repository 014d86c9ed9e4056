package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository"
	"github.com/lexigo/reviewd/internal/srs"
)

const (
	maxWordLength    = 100
	maxTextLength    = 2000
	maxListEntries   = 20
	defaultPageLimit = 50
	maxPageLimit     = 200
	reviewSource     = "review"
)

// VocabularyService handles vocabulary-related business logic
type VocabularyService interface {
	Create(ctx context.Context, userID int64, in models.VocabularyInput) (*models.VocabularyItem, error)
	Get(ctx context.Context, userID, id int64) (*models.VocabularyItem, error)
	List(ctx context.Context, filter models.VocabularyFilter) (*models.VocabularyPage, error)
	Update(ctx context.Context, userID, id int64, in models.VocabularyInput) (*models.VocabularyItem, error)
	Delete(ctx context.Context, userID, id int64) error
	// Review applies a self-rated review to the item's schedule. It awards no XP.
	Review(ctx context.Context, userID, id int64, quality int) (*models.VocabularyItem, error)
	ImportRows(ctx context.Context, userID int64, rows []importer.Row) (models.ImportSummary, error)
}

type vocabularyService struct {
	store repository.Store
	opts  options
}

// NewVocabularyService creates a new VocabularyService
func NewVocabularyService(store repository.Store, opts ...Option) VocabularyService {
	return &vocabularyService{store: store, opts: buildOptions(opts)}
}

func validateInput(in models.VocabularyInput) error {
	word := strings.TrimSpace(in.Word)
	switch {
	case word == "":
		return errors.NewValidationError("word", "is required")
	case utf8.RuneCountInString(word) > maxWordLength:
		return errors.NewValidationError("word", fmt.Sprintf("must be at most %d characters", maxWordLength))
	case strings.TrimSpace(in.Translation) == "":
		return errors.NewValidationError("translation", "is required")
	case in.Difficulty != "" && !models.ValidDifficulty(in.Difficulty):
		return errors.NewValidationError("difficulty", fmt.Sprintf("must be one of %s", strings.Join(models.Difficulties, ", ")))
	}
	for name, value := range map[string]string{
		"translation":          in.Translation,
		"englishDefinition":    in.EnglishDefinition,
		"vietnameseDefinition": in.VietnameseDefinition,
		"notes":                in.Notes,
	} {
		if utf8.RuneCountInString(value) > maxTextLength {
			return errors.NewValidationError(name, fmt.Sprintf("must be at most %d characters", maxTextLength))
		}
	}
	for name, list := range map[string][]string{"examples": in.Examples, "synonyms": in.Synonyms, "antonyms": in.Antonyms} {
		if len(list) > maxListEntries {
			return errors.NewValidationError(name, fmt.Sprintf("must have at most %d entries", maxListEntries))
		}
	}
	return nil
}

func (s *vocabularyService) Create(ctx context.Context, userID int64, in models.VocabularyInput) (*models.VocabularyItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating vocabulary: user_id=%d, word=%s", userID, in.Word)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	now := s.opts.now()
	item := models.VocabularyItem{
		UserID:    userID,
		SRSState:  srs.Initial(now),
		AddedAt:   now,
		UpdatedAt: now,
	}
	in.Apply(&item)

	id, err := s.store.Vocabulary().Insert(ctx, item)
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError(fmt.Sprintf("word %q already exists", item.Word))
		}
		log.Error("failed to create vocabulary: %v", err)
		return nil, storeError("vocabulary", item.Word, err)
	}
	item.ID = id
	normalizeLists(&item)
	log.Info("vocabulary created: id=%d, word=%s", id, item.Word)
	return &item, nil
}

func normalizeLists(item *models.VocabularyItem) {
	for _, l := range []*[]string{&item.Examples, &item.Synonyms, &item.Antonyms} {
		if *l == nil {
			*l = []string{}
		}
	}
}

func (s *vocabularyService) Get(ctx context.Context, userID, id int64) (*models.VocabularyItem, error) {
	item, err := s.store.Vocabulary().Get(ctx, userID, id)
	if err != nil {
		return nil, storeError("vocabulary", id, err)
	}
	return item, nil
}

func (s *vocabularyService) List(ctx context.Context, filter models.VocabularyFilter) (*models.VocabularyPage, error) {
	log := logger.FromContext(ctx)

	if filter.Difficulty != "" && !models.ValidDifficulty(filter.Difficulty) {
		return nil, errors.NewValidationError("difficulty", "unknown difficulty label")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.store.Vocabulary().List(ctx, filter)
	if err != nil {
		log.Error("failed to list vocabulary: %v", err)
		return nil, storeError("vocabulary", filter.UserID, err)
	}
	total, err := s.store.Vocabulary().Count(ctx, filter)
	if err != nil {
		log.Error("failed to count vocabulary: %v", err)
		return nil, storeError("vocabulary", filter.UserID, err)
	}
	if items == nil {
		items = []models.VocabularyItem{}
	}
	return &models.VocabularyPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *vocabularyService) Update(ctx context.Context, userID, id int64, in models.VocabularyInput) (*models.VocabularyItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating vocabulary: id=%d", id)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var updated *models.VocabularyItem
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		item, err := tx.Vocabulary().Get(ctx, userID, id)
		if err != nil {
			return storeError("vocabulary", id, err)
		}
		in.Apply(item)
		item.UpdatedAt = s.opts.now()
		if err := tx.Vocabulary().Update(ctx, *item); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				return errors.NewConflictError(fmt.Sprintf("word %q already exists", item.Word))
			}
			return storeError("vocabulary", id, err)
		}
		normalizeLists(item)
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *vocabularyService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.Vocabulary().Delete(ctx, userID, id); err != nil {
		return storeError("vocabulary", id, err)
	}
	logger.FromContext(ctx).Info("vocabulary deleted: id=%d", id)
	return nil
}

func (s *vocabularyService) Review(ctx context.Context, userID, id int64, quality int) (*models.VocabularyItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing vocabulary: id=%d, quality=%d", id, quality)

	if !srs.ValidQuality(quality) {
		return nil, errors.NewValidationError("quality", "must be 0, 3 or 5")
	}

	var reviewed *models.VocabularyItem
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		item, err := tx.Vocabulary().Get(ctx, userID, id)
		if err != nil {
			return storeError("vocabulary", id, err)
		}

		now := s.opts.now()
		next, err := srs.Schedule(item.SRSState, quality, now)
		if err != nil {
			return errors.NewValidationError("quality", err.Error())
		}
		item.SRSState = next
		item.UpdatedAt = now
		if err := tx.Vocabulary().UpdateSchedule(ctx, *item); err != nil {
			return storeError("vocabulary", id, err)
		}

		if _, err := tx.Activities().Insert(ctx, models.ReviewActivity{
			UserID:       userID,
			VocabularyID: item.ID,
			Word:         item.Word,
			Source:       reviewSource,
			Quality:      quality,
			Score:        quality * 20,
			IsCorrect:    quality >= srs.QualityPartial,
			CreatedAt:    now,
		}); err != nil {
			return storeError("activity", id, err)
		}
		reviewed = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("review applied: interval=%d days, ease=%.2f, next=%s", reviewed.IntervalDays, reviewed.EaseFactor, reviewed.NextReviewAt)
	return reviewed, nil
}

func (s *vocabularyService) ImportRows(ctx context.Context, userID int64, rows []importer.Row) (models.ImportSummary, error) {
	log := logger.FromContext(ctx)
	summary := models.ImportSummary{Processed: len(rows), Errors: []string{}}

	existing, err := s.store.Vocabulary().ExistingWords(ctx, userID)
	if err != nil {
		log.Error("failed to load existing words: %v", err)
		return summary, storeError("vocabulary", userID, err)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := validateInput(row.Input); err != nil {
			msg := err.Error()
			if appErr, ok := errors.As(err); ok {
				msg = appErr.Message
			}
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %s", row.Line, msg))
			continue
		}
		key := strings.ToLower(strings.TrimSpace(row.Input.Word))
		if existing[key] {
			summary.Skipped++
			continue
		}

		now := s.opts.now()
		item := models.VocabularyItem{UserID: userID, SRSState: srs.Initial(now), AddedAt: now, UpdatedAt: now}
		row.Input.Apply(&item)
		if _, err := s.store.Vocabulary().Insert(ctx, item); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				summary.Skipped++
				existing[key] = true
				continue
			}
			log.Error("failed to import row %d: %v", row.Line, err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("Row %d: %v", row.Line, err))
			continue
		}
		existing[key] = true
		summary.Created++
	}

	log.Info("imported vocabulary for user %d: created=%d, skipped=%d, errors=%d", userID, summary.Created, summary.Skipped, len(summary.Errors))
	return summary, nil
}
