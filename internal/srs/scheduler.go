package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lexigo/reviewd/internal/models"
)

// Quality grades accepted by Schedule.
const (
	QualityForgot  = 0
	QualityPartial = 3
	QualityPerfect = 5
)

const (
	MinEaseFactor     = 1.3
	InitialEaseFactor = 2.5
	passingQuality    = 3
	day               = 24 * time.Hour
)

// ErrInvalidQuality is returned for grades outside {0, 3, 5}.
var ErrInvalidQuality = errors.New("invalid quality score")

// ValidQuality reports whether q is on the grading scale.
func ValidQuality(q int) bool {
	return q == QualityForgot || q == QualityPartial || q == QualityPerfect
}

// Initial returns the state of a freshly added word: due immediately, never reviewed.
func Initial(now time.Time) models.SRSState {
	return models.SRSState{
		Repetitions:  0,
		EaseFactor:   InitialEaseFactor,
		IntervalDays: 0,
		NextReviewAt: now,
	}
}

// Schedule applies one SM-2 review with the given quality and returns the new state.
// The interval for the third and later successful reviews uses the ease factor
// from before this review.
func Schedule(state models.SRSState, quality int, now time.Time) (models.SRSState, error) {
	if !ValidQuality(quality) {
		return state, fmt.Errorf("%w: %d (expected 0, 3 or 5)", ErrInvalidQuality, quality)
	}

	ef := state.EaseFactor
	if ef <= 0 {
		ef = InitialEaseFactor
	}

	next := state
	if quality < passingQuality {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		next.Repetitions = state.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(state.IntervalDays) * ef))
		}
		if next.IntervalDays < 1 {
			next.IntervalDays = 1
		}
	}

	d := float64(5 - quality)
	next.EaseFactor = math.Max(MinEaseFactor, ef+(0.1-d*(0.08+d*0.02)))

	reviewed := now
	next.LastReviewedAt = &reviewed
	next.NextReviewAt = now.Add(time.Duration(next.IntervalDays) * day)
	return next, nil
}

// QualityFromScore maps a graded result onto the quality scale.
func QualityFromScore(isCorrect bool, score int) int {
	switch {
	case isCorrect:
		return QualityPerfect
	case score >= 50:
		return QualityPartial
	default:
		return QualityForgot
	}
}

// IsDue reports whether the item should be reviewed at now.
func IsDue(state models.SRSState, now time.Time) bool {
	return !state.NextReviewAt.After(now)
}
