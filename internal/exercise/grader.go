package exercise

import (
	"context"
	"time"

	"github.com/lexigo/reviewd/internal/evaluator"
	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/models"
)

// Grader scores answers. Only sentence construction and pronunciation reach the evaluator.
type Grader struct {
	evaluator evaluator.Evaluator
	timeout   time.Duration
}

// NewGrader creates a grader. A zero timeout leaves evaluator calls bounded only by ctx.
func NewGrader(ev evaluator.Evaluator, timeout time.Duration) *Grader {
	return &Grader{evaluator: ev, timeout: timeout}
}

// Grade decodes the stored exercise and scores answer against it.
func (g *Grader) Grade(ctx context.Context, ex models.Exercise, item models.VocabularyItem, answer string) (Outcome, error) {
	log := logger.FromContext(ctx).WithPrefix("grader")

	task, err := Decode(ex, item)
	if err != nil {
		log.Error("failed to decode exercise %s: %v", ex.ID, err)
		return Outcome{}, err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := task.grade(ctx, g.evaluator, answer)
	if err != nil {
		log.Warn("grading %s failed: %v", ex.ExerciseType, err)
		return Outcome{}, err
	}
	log.Debug("graded %s: correct=%t score=%d quality=%d", ex.ExerciseType, out.IsCorrect, out.Score, out.Quality)
	return out, nil
}
