package srs_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestInitial(t *testing.T) {
	s := srs.Initial(now)

	assert.Equal(t, 0, s.Repetitions)
	assert.Equal(t, 2.5, s.EaseFactor)
	assert.Equal(t, 0, s.IntervalDays)
	assert.Equal(t, now, s.NextReviewAt)
	assert.Nil(t, s.LastReviewedAt)
	assert.True(t, srs.IsDue(s, now))
}

func TestSchedule_InvalidQuality(t *testing.T) {
	for _, q := range []int{-1, 1, 2, 4, 6} {
		state := srs.Initial(now)
		got, err := srs.Schedule(state, q, now)

		require.Error(t, err)
		assert.True(t, errors.Is(err, srs.ErrInvalidQuality))
		assert.Equal(t, state, got, "state must be unchanged on error")
	}
}

func TestSchedule_FailureResets(t *testing.T) {
	states := []models.SRSState{
		srs.Initial(now),
		{Repetitions: 4, EaseFactor: 2.8, IntervalDays: 40, NextReviewAt: now},
		{Repetitions: 1, EaseFactor: 1.3, IntervalDays: 1, NextReviewAt: now},
	}

	for _, s := range states {
		got, err := srs.Schedule(s, srs.QualityForgot, now)
		require.NoError(t, err)

		assert.Equal(t, 0, got.Repetitions)
		assert.Equal(t, 1, got.IntervalDays)
		assert.Equal(t, now.Add(24*time.Hour), got.NextReviewAt)
		require.NotNil(t, got.LastReviewedAt)
		assert.Equal(t, now, *got.LastReviewedAt)
	}
}

func TestSchedule_PerfectSequence(t *testing.T) {
	s := srs.Initial(now)

	var intervals []int
	var efBeforeThird float64
	for i := 0; i < 3; i++ {
		if i == 2 {
			efBeforeThird = s.EaseFactor
		}
		prevReps := s.Repetitions
		next, err := srs.Schedule(s, srs.QualityPerfect, now)
		require.NoError(t, err)
		assert.Equal(t, prevReps+1, next.Repetitions)
		intervals = append(intervals, next.IntervalDays)
		s = next
	}

	assert.Equal(t, 1, intervals[0])
	assert.Equal(t, 6, intervals[1])
	assert.Equal(t, int(math.Round(6*efBeforeThird)), intervals[2])
	assert.Equal(t, 16, intervals[2])
	assert.InDelta(t, 2.8, s.EaseFactor, 1e-9)
}

func TestSchedule_EaseFactorUpdates(t *testing.T) {
	tests := []struct {
		name    string
		quality int
		want    float64
	}{
		{"perfect raises by 0.1", 5, 2.6},
		{"partial lowers by 0.14", 3, 2.36},
		{"forgot lowers by 0.8", 0, 1.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := srs.Schedule(srs.Initial(now), tt.quality, now)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.EaseFactor, 1e-9)
		})
	}
}

func TestSchedule_EaseFactorFloor(t *testing.T) {
	s := srs.Initial(now)
	for i := 0; i < 50; i++ {
		var err error
		s, err = srs.Schedule(s, srs.QualityForgot, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.EaseFactor, srs.MinEaseFactor)
	}
	assert.Equal(t, srs.MinEaseFactor, s.EaseFactor)
}

func TestSchedule_NextReviewDerivedFromLastReview(t *testing.T) {
	s := srs.Initial(now)
	at := now
	for _, q := range []int{5, 3, 5, 0, 5, 5} {
		var err error
		at = at.Add(36 * time.Hour)
		s, err = srs.Schedule(s, q, at)
		require.NoError(t, err)
		require.NotNil(t, s.LastReviewedAt)
		assert.Equal(t, s.LastReviewedAt.Add(time.Duration(s.IntervalDays)*24*time.Hour), s.NextReviewAt)
	}
}

func TestSchedule_ZeroPreviousIntervalStillAdvances(t *testing.T) {
	s := models.SRSState{Repetitions: 2, EaseFactor: 2.5, IntervalDays: 0, NextReviewAt: now}

	got, err := srs.Schedule(s, srs.QualityPerfect, now)

	require.NoError(t, err)
	assert.Equal(t, 1, got.IntervalDays)
}

func TestQualityFromScore(t *testing.T) {
	tests := []struct {
		isCorrect bool
		score     int
		want      int
	}{
		{true, 100, 5},
		{true, 0, 5},
		{false, 75, 3},
		{false, 50, 3},
		{false, 49, 0},
		{false, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, srs.QualityFromScore(tt.isCorrect, tt.score))
	}
}

func TestIsDue(t *testing.T) {
	s := models.SRSState{NextReviewAt: now}
	assert.True(t, srs.IsDue(s, now))
	assert.True(t, srs.IsDue(s, now.Add(time.Second)))
	assert.False(t, srs.IsDue(s, now.Add(-time.Second)))
}
