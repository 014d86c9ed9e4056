package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/services"
	"github.com/lexigo/reviewd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyService_Create(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)

	item, err := svc.Create(context.Background(), 1, models.VocabularyInput{
		Word:        "  resilient ",
		Translation: "kiên cường",
		Examples:    []string{"She is resilient."},
	})

	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "resilient", item.Word)
	assert.Equal(t, models.DifficultyUnrated, item.Difficulty)
	assert.Equal(t, 2.5, item.EaseFactor)
	assert.Equal(t, 0, item.Repetitions)
	assert.Nil(t, item.LastReviewedAt)
	assert.True(t, item.NextReviewAt.Equal(testutil.Clock))
	assert.Equal(t, []string{}, item.Synonyms)
}

func TestVocabularyService_CreateValidation(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()

	cases := map[string]models.VocabularyInput{
		"missing word":        {Translation: "x"},
		"missing translation": {Word: "apple"},
		"word too long":       {Word: strings.Repeat("a", 101), Translation: "x"},
		"bad difficulty":      {Word: "apple", Translation: "x", Difficulty: "impossible"},
		"too many examples":   {Word: "apple", Translation: "x", Examples: make([]string, 21)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, in)
			assertCode(t, err, errors.ErrCodeValidation)
		})
	}
}

func TestVocabularyService_CreateDuplicate(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, models.VocabularyInput{Word: "Apple", Translation: "quả táo"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, models.VocabularyInput{Word: "apple", Translation: "táo"})
	assertCode(t, err, errors.ErrCodeConflict)

	_, err = svc.Create(ctx, 2, models.VocabularyInput{Word: "apple", Translation: "táo"})
	assert.NoError(t, err)
}

func TestVocabularyService_List(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()
	for _, w := range []string{"apple", "banana", "cherry"} {
		e.addWord(t, 1, w, "fruit "+w)
	}

	page, err := svc.List(ctx, models.VocabularyFilter{UserID: 1, Limit: 2, OrderBy: "word", OrderDir: "asc"})

	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "apple", page.Items[0].Word)

	page, err = svc.List(ctx, models.VocabularyFilter{UserID: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, page.Limit)

	page, err = svc.List(ctx, models.VocabularyFilter{UserID: 9})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.Total)

	_, err = svc.List(ctx, models.VocabularyFilter{UserID: 1, Difficulty: "nope"})
	assertCode(t, err, errors.ErrCodeValidation)
}

func TestVocabularyService_UpdateKeepsSchedule(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()
	apple := e.addWord(t, 1, "apple", "quả táo")
	_, err := svc.Review(ctx, 1, apple.ID, 5)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, 1, apple.ID, models.VocabularyInput{
		Word:        "apple",
		Translation: "trái táo",
		Difficulty:  models.DifficultyEasy,
		Synonyms:    []string{"pome"},
	})

	require.NoError(t, err)
	assert.Equal(t, "trái táo", updated.Translation)
	assert.Equal(t, models.DifficultyEasy, updated.Difficulty)
	assert.Equal(t, 1, updated.Repetitions)

	stored, err := svc.Get(ctx, 1, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"pome"}, stored.Synonyms)
	assert.Equal(t, 1, stored.Repetitions)

	_, err = svc.Update(ctx, 2, apple.ID, models.VocabularyInput{Word: "apple", Translation: "x"})
	assertCode(t, err, errors.ErrCodeNotFound)
}

func TestVocabularyService_Delete(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()
	apple := e.addWord(t, 1, "apple", "quả táo")

	assertCode(t, svc.Delete(ctx, 2, apple.ID), errors.ErrCodeNotFound)
	require.NoError(t, svc.Delete(ctx, 1, apple.ID))

	_, err := svc.Get(ctx, 1, apple.ID)
	assertCode(t, err, errors.ErrCodeNotFound)
}

func TestVocabularyService_Review(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()
	apple := e.addWord(t, 1, "apple", "quả táo")

	_, err := svc.Review(ctx, 1, apple.ID, 4)
	assertCode(t, err, errors.ErrCodeValidation)

	item, err := svc.Review(ctx, 1, apple.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Repetitions)
	assert.Equal(t, 1, item.IntervalDays)

	e.clock.Advance(24 * time.Hour)
	item, err = svc.Review(ctx, 1, apple.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Repetitions)
	assert.Equal(t, 6, item.IntervalDays)

	e.clock.Advance(6 * 24 * time.Hour)
	item, err = svc.Review(ctx, 1, apple.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Repetitions)
	assert.Equal(t, 16, item.IntervalDays, "round(6 * 2.7)")
	assert.InDelta(t, 2.56, item.EaseFactor, 1e-9)

	item, err = svc.Review(ctx, 1, apple.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, 1, item.IntervalDays)

	activities, err := e.store.Activities().Recent(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, activities, 4)
	for _, a := range activities {
		assert.Equal(t, "review", a.Source)
		assert.Zero(t, a.XPEarned)
	}
	_, err = e.store.Progress().Get(ctx, 1)
	assert.Error(t, err, "reviews award no XP")
}

func TestVocabularyService_ImportRows(t *testing.T) {
	e := newEnv(t)
	svc := services.NewVocabularyService(e.store, e.opts()...)
	ctx := context.Background()
	e.addWord(t, 1, "apple", "quả táo")

	rows := []importer.Row{
		{Line: 2, Input: models.VocabularyInput{Word: "Apple", Translation: "táo"}},
		{Line: 3, Input: models.VocabularyInput{Word: "cat", Translation: "con mèo"}},
		{Line: 4, Input: models.VocabularyInput{Word: "dog"}},
		{Line: 5, Input: models.VocabularyInput{Word: "CAT", Translation: "mèo"}},
		{Line: 6, Input: models.VocabularyInput{Word: "bird", Translation: "con chim", Difficulty: models.DifficultyHard}},
	}

	summary, err := svc.ImportRows(ctx, 1, rows)

	require.NoError(t, err)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.True(t, strings.HasPrefix(summary.Errors[0], "Row 4: "), summary.Errors[0])

	page, err := svc.List(ctx, models.VocabularyFilter{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}
