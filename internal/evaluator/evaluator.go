package evaluator

import (
	"context"
	"strings"
)

// Mode selects what kind of free-text answer is being judged.
type Mode string

const (
	ModeSentence      Mode = "sentence"
	ModePronunciation Mode = "pronunciation"
)

type Request struct {
	Mode       Mode
	TargetWord string
	Definition string
	UserText   string
}

type Result struct {
	IsCorrect bool
	Score     int
	Feedback  string
}

// Evaluator scores free-text answers that cannot be graded by string comparison.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, ".,!?;:\"'")
}
