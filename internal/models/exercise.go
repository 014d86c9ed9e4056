package models

import (
	"encoding/json"
	"time"
)

type ExerciseType string

const (
	ExerciseFlashcard            ExerciseType = "flashcard"
	ExerciseMultipleChoice       ExerciseType = "multiple_choice"
	ExerciseFillInBlank          ExerciseType = "fill_in_blank"
	ExerciseSentenceConstruction ExerciseType = "sentence_construction"
	ExercisePronunciation        ExerciseType = "pronunciation_practice"
	ExerciseMatching             ExerciseType = "matching"
	ExerciseListenChooseImage    ExerciseType = "listen_choose_image"
)

// ExerciseTypes is the rotation order used when picking a kind for a word.
var ExerciseTypes = []ExerciseType{
	ExerciseFlashcard,
	ExerciseMultipleChoice,
	ExerciseFillInBlank,
	ExerciseSentenceConstruction,
	ExercisePronunciation,
	ExerciseMatching,
	ExerciseListenChooseImage,
}

// Valid reports whether t is one of the known exercise kinds.
func (t ExerciseType) Valid() bool {
	for _, k := range ExerciseTypes {
		if k == t {
			return true
		}
	}
	return false
}

type ExerciseResult struct {
	IsCorrect bool   `json:"isCorrect"`
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
}

// Exercise is the persisted form of a generated exercise. Question and Options
// hold the kind-specific JSON payloads sent to the client.
type Exercise struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"userId"`
	VocabularyID  int64           `json:"vocabularyId"`
	ExerciseType  ExerciseType    `json:"exerciseType"`
	Instruction   string          `json:"instruction"`
	Question      json.RawMessage `json:"question"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correctAnswer"`
	UserAnswer    *string         `json:"userAnswer,omitempty"`
	Result        *ExerciseResult `json:"result,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	Vocabulary    *VocabularyItem `json:"vocabulary,omitempty"`
}

// Submitted reports whether a grading result has been recorded.
func (e Exercise) Submitted() bool {
	return e.SubmittedAt != nil
}

// SubmissionResult is returned after an exercise answer has been graded and applied.
type SubmissionResult struct {
	Exercise         Exercise       `json:"exercise"`
	Vocabulary       VocabularyItem `json:"vocabulary"`
	XPEarned         int            `json:"xpEarned"`
	NewLevel         *int           `json:"newLevel"`
	BetaRewardEarned *int           `json:"betaRewardEarned"`
	UpdatedUser      UserProgress   `json:"updatedUser"`
}
