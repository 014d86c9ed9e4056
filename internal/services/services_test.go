package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/errors"
	"github.com/lexigo/reviewd/internal/lock"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/repository/sqlite"
	"github.com/lexigo/reviewd/internal/services"
	"github.com/lexigo/reviewd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ict is UTC+7, the learners' default calendar.
var ict = time.FixedZone("ICT", 7*60*60)

// clock is a settable time source shared by the services under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *clock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

type env struct {
	store  *sqlite.Store
	locker lock.Locker
	clock  *clock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	conn := testutil.NewTestDB(t)
	return &env{
		store:  sqlite.NewStore(conn.DB),
		locker: lock.NewLocal(),
		clock:  &clock{now: testutil.Clock},
	}
}

func (e *env) opts() []services.Option {
	return []services.Option{services.WithClock(e.clock.Now), services.WithLocation(ict)}
}

func (e *env) addWord(t *testing.T, userID int64, word, translation string) models.VocabularyItem {
	t.Helper()
	item := testutil.NewVocabulary(userID, word, translation)
	id, err := e.store.Vocabulary().Insert(context.Background(), item)
	require.NoError(t, err)
	item.ID = id
	return item
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, code), "expected %s, got %v", code, err)
}
