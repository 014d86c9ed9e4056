package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/db"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a private in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	conn, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// Clock is a fixed point in time used across tests.
var Clock = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// NewVocabulary returns an unreviewed item owned by userID.
func NewVocabulary(userID int64, word, translation string) models.VocabularyItem {
	return models.VocabularyItem{
		UserID:      userID,
		Word:        word,
		Translation: translation,
		Examples:    []string{},
		Synonyms:    []string{},
		Antonyms:    []string{},
		Difficulty:  models.DifficultyUnrated,
		SRSState: models.SRSState{
			EaseFactor:   2.5,
			NextReviewAt: Clock,
		},
		AddedAt:   Clock,
		UpdatedAt: Clock,
	}
}
