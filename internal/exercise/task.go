package exercise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lexigo/reviewd/internal/evaluator"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/lexigo/reviewd/internal/srs"
)

var (
	// ErrMalformedAnswer is returned when an answer does not have the shape its kind expects.
	ErrMalformedAnswer = errors.New("malformed answer")
	// ErrEvaluatorUnavailable wraps failures of the free-text evaluator.
	ErrEvaluatorUnavailable = errors.New("answer evaluator unavailable")
	// ErrCorruptExercise is returned when a stored exercise cannot be decoded.
	ErrCorruptExercise = errors.New("corrupt exercise payload")
)

// Outcome is a graded answer plus the quality fed to the scheduler.
type Outcome struct {
	models.ExerciseResult
	Quality int
}

func scored(isCorrect bool, score int, feedback string) Outcome {
	return Outcome{
		ExerciseResult: models.ExerciseResult{IsCorrect: isCorrect, Score: score, Feedback: feedback},
		Quality:        srs.QualityFromScore(isCorrect, score),
	}
}

// Task is one generated exercise. Every kind is a distinct struct in this package.
type Task interface {
	Kind() models.ExerciseType
	Owner() int64
	payload() (instruction string, question, options any, correct string)
	grade(ctx context.Context, ev evaluator.Evaluator, answer string) (Outcome, error)
}

type Flashcard struct {
	VocabularyID int64
	Word         string
}

func (t Flashcard) Kind() models.ExerciseType { return models.ExerciseFlashcard }
func (t Flashcard) Owner() int64              { return t.VocabularyID }

func (t Flashcard) payload() (string, any, any, string) {
	return "Nhấn vào thẻ để xem nghĩa và tự đánh giá:", t.Word, nil, t.Word
}

func (t Flashcard) grade(_ context.Context, _ evaluator.Evaluator, answer string) (Outcome, error) {
	q, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || !srs.ValidQuality(q) {
		return Outcome{}, fmt.Errorf("%w: flashcard answer must be 0, 3 or 5", ErrMalformedAnswer)
	}
	return Outcome{
		ExerciseResult: models.ExerciseResult{IsCorrect: true, Score: q * 20, Feedback: flashcardFeedback(q)},
		Quality:        q,
	}, nil
}

type MultipleChoice struct {
	VocabularyID int64
	Word         string
	Choices      []string
	Answer       string
}

func (t MultipleChoice) Kind() models.ExerciseType { return models.ExerciseMultipleChoice }
func (t MultipleChoice) Owner() int64              { return t.VocabularyID }

func (t MultipleChoice) payload() (string, any, any, string) {
	return fmt.Sprintf("Chọn nghĩa tiếng Việt đúng của từ \"%s\"", t.Word), t.Word, t.Choices, t.Answer
}

func (t MultipleChoice) grade(_ context.Context, _ evaluator.Evaluator, answer string) (Outcome, error) {
	return exactMatch(answer, t.Answer), nil
}

type FillInBlank struct {
	VocabularyID int64
	Sentence     string
	Hint         string
	Answer       string
}

func (t FillInBlank) Kind() models.ExerciseType { return models.ExerciseFillInBlank }
func (t FillInBlank) Owner() int64              { return t.VocabularyID }

func (t FillInBlank) payload() (string, any, any, string) {
	instruction := "Điền từ còn thiếu vào chỗ trống"
	if t.Hint != "" {
		instruction = fmt.Sprintf("Điền từ tiếng Anh có nghĩa \"%s\" vào chỗ trống", t.Hint)
	}
	return instruction, t.Sentence, nil, t.Answer
}

func (t FillInBlank) grade(_ context.Context, _ evaluator.Evaluator, answer string) (Outcome, error) {
	return exactMatch(answer, t.Answer), nil
}

type SentenceConstruction struct {
	VocabularyID int64
	Word         string
	Definition   string
}

func (t SentenceConstruction) Kind() models.ExerciseType { return models.ExerciseSentenceConstruction }
func (t SentenceConstruction) Owner() int64              { return t.VocabularyID }

func (t SentenceConstruction) payload() (string, any, any, string) {
	return fmt.Sprintf("Đặt một câu tiếng Anh với từ \"%s\" theo định nghĩa của nó", t.Word), t.Word, nil, t.Word
}

func (t SentenceConstruction) grade(ctx context.Context, ev evaluator.Evaluator, answer string) (Outcome, error) {
	return delegate(ctx, ev, evaluator.Request{
		Mode:       evaluator.ModeSentence,
		TargetWord: t.Word,
		Definition: t.Definition,
		UserText:   answer,
	})
}

type Pronunciation struct {
	VocabularyID int64
	Word         string
	Phonetic     string
	AudioURL     string
}

func (t Pronunciation) Kind() models.ExerciseType { return models.ExercisePronunciation }
func (t Pronunciation) Owner() int64              { return t.VocabularyID }

func (t Pronunciation) payload() (string, any, any, string) {
	return fmt.Sprintf("Đọc to từ \"%s\"", t.Word), t.Word, nil, t.Word
}

func (t Pronunciation) grade(ctx context.Context, ev evaluator.Evaluator, answer string) (Outcome, error) {
	return delegate(ctx, ev, evaluator.Request{
		Mode:       evaluator.ModePronunciation,
		TargetWord: t.Word,
		UserText:   answer,
	})
}

// MatchPair is one left item of a matching exercise and its correct meaning.
type MatchPair struct {
	ID      string
	Word    string
	Meaning string
}

type Matching struct {
	VocabularyID int64
	Pairs        []MatchPair
	Meanings     []string
}

type matchLeft struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type matchRight struct {
	Text string `json:"text"`
}

func (t Matching) Kind() models.ExerciseType { return models.ExerciseMatching }
func (t Matching) Owner() int64              { return t.VocabularyID }

func (t Matching) payload() (string, any, any, string) {
	left := make([]matchLeft, len(t.Pairs))
	mapping := make(map[string]string, len(t.Pairs))
	for i, p := range t.Pairs {
		left[i] = matchLeft{ID: p.ID, Text: p.Word}
		mapping[p.ID] = p.Meaning
	}
	right := make([]matchRight, len(t.Meanings))
	for i, m := range t.Meanings {
		right[i] = matchRight{Text: m}
	}
	correct, _ := json.Marshal(mapping)
	return "Nối mỗi từ với nghĩa đúng của nó", left, right, string(correct)
}

func (t Matching) grade(_ context.Context, _ evaluator.Evaluator, answer string) (Outcome, error) {
	var chosen map[string]string
	if err := json.Unmarshal([]byte(answer), &chosen); err != nil {
		return Outcome{}, fmt.Errorf("%w: matching answer must be a JSON object of id to text", ErrMalformedAnswer)
	}
	if len(t.Pairs) == 0 {
		return Outcome{}, fmt.Errorf("%w: matching exercise has no pairs", ErrCorruptExercise)
	}

	correct := 0
	for _, p := range t.Pairs {
		if normalize(chosen[p.ID]) == normalize(p.Meaning) {
			correct++
		}
	}
	total := len(t.Pairs)
	score := roundPercent(correct, total)
	return scored(correct == total, score, matchingFeedback(correct, total)), nil
}

// ImageChoice is one option of a listen-and-choose exercise.
type ImageChoice struct {
	Concept  string `json:"concept"`
	ImageURL string `json:"imageUrl"`
}

type ListenChooseImage struct {
	VocabularyID int64
	AudioURL     string
	Choices      []ImageChoice
	Answer       string
}

func (t ListenChooseImage) Kind() models.ExerciseType { return models.ExerciseListenChooseImage }
func (t ListenChooseImage) Owner() int64              { return t.VocabularyID }

func (t ListenChooseImage) payload() (string, any, any, string) {
	return "Nghe và chọn hình ảnh đúng", t.AudioURL, t.Choices, t.Answer
}

func (t ListenChooseImage) grade(_ context.Context, _ evaluator.Evaluator, answer string) (Outcome, error) {
	return exactMatch(answer, t.Answer), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

func exactMatch(answer, expected string) Outcome {
	if normalize(answer) == normalize(expected) {
		return scored(true, 100, correctFeedback(expected))
	}
	return scored(false, 0, incorrectFeedback(expected))
}

func delegate(ctx context.Context, ev evaluator.Evaluator, req evaluator.Request) (Outcome, error) {
	if strings.TrimSpace(req.UserText) == "" {
		return Outcome{}, fmt.Errorf("%w: answer text is empty", ErrMalformedAnswer)
	}
	if ev == nil {
		return Outcome{}, fmt.Errorf("%w: no evaluator configured", ErrEvaluatorUnavailable)
	}
	res, err := ev.Evaluate(ctx, req)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrEvaluatorUnavailable, err)
	}
	score := res.Score
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	feedback := strings.TrimSpace(res.Feedback)
	if feedback == "" {
		if res.IsCorrect {
			feedback = correctFeedback(req.TargetWord)
		} else {
			feedback = freeTextFeedback(req.TargetWord)
		}
	}
	return scored(res.IsCorrect, score, feedback), nil
}

// Encode converts a task into its persisted form.
func Encode(t Task, id string, userID int64, now time.Time) (models.Exercise, error) {
	instruction, question, options, correct := t.payload()

	q, err := json.Marshal(question)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("encode question: %w", err)
	}
	var opts json.RawMessage
	if options != nil {
		if opts, err = json.Marshal(options); err != nil {
			return models.Exercise{}, fmt.Errorf("encode options: %w", err)
		}
	}

	return models.Exercise{
		ID:            id,
		UserID:        userID,
		VocabularyID:  t.Owner(),
		ExerciseType:  t.Kind(),
		Instruction:   instruction,
		Question:      q,
		Options:       opts,
		CorrectAnswer: correct,
		CreatedAt:     now,
	}, nil
}

// Decode rebuilds the task for a stored exercise. item is the vocabulary item the
// exercise was generated for.
func Decode(ex models.Exercise, item models.VocabularyItem) (Task, error) {
	corrupt := func(err error) error {
		return fmt.Errorf("%w: %s %s: %v", ErrCorruptExercise, ex.ExerciseType, ex.ID, err)
	}

	var question string
	if ex.ExerciseType != models.ExerciseMatching {
		if err := json.Unmarshal(ex.Question, &question); err != nil {
			return nil, corrupt(err)
		}
	}

	switch ex.ExerciseType {
	case models.ExerciseFlashcard:
		return Flashcard{VocabularyID: ex.VocabularyID, Word: question}, nil

	case models.ExerciseMultipleChoice:
		var choices []string
		if err := json.Unmarshal(ex.Options, &choices); err != nil {
			return nil, corrupt(err)
		}
		return MultipleChoice{VocabularyID: ex.VocabularyID, Word: question, Choices: choices, Answer: ex.CorrectAnswer}, nil

	case models.ExerciseFillInBlank:
		return FillInBlank{VocabularyID: ex.VocabularyID, Sentence: question, Hint: item.Translation, Answer: ex.CorrectAnswer}, nil

	case models.ExerciseSentenceConstruction:
		return SentenceConstruction{VocabularyID: ex.VocabularyID, Word: question, Definition: item.Definition()}, nil

	case models.ExercisePronunciation:
		return Pronunciation{VocabularyID: ex.VocabularyID, Word: question, Phonetic: item.Phonetic, AudioURL: item.AudioURL}, nil

	case models.ExerciseMatching:
		var left []matchLeft
		if err := json.Unmarshal(ex.Question, &left); err != nil {
			return nil, corrupt(err)
		}
		var right []matchRight
		if len(ex.Options) > 0 {
			if err := json.Unmarshal(ex.Options, &right); err != nil {
				return nil, corrupt(err)
			}
		}
		var mapping map[string]string
		if err := json.Unmarshal([]byte(ex.CorrectAnswer), &mapping); err != nil {
			return nil, corrupt(err)
		}
		m := Matching{VocabularyID: ex.VocabularyID}
		for _, l := range left {
			m.Pairs = append(m.Pairs, MatchPair{ID: l.ID, Word: l.Text, Meaning: mapping[l.ID]})
		}
		for _, r := range right {
			m.Meanings = append(m.Meanings, r.Text)
		}
		return m, nil

	case models.ExerciseListenChooseImage:
		var choices []ImageChoice
		if err := json.Unmarshal(ex.Options, &choices); err != nil {
			return nil, corrupt(err)
		}
		return ListenChooseImage{VocabularyID: ex.VocabularyID, AudioURL: question, Choices: choices, Answer: ex.CorrectAnswer}, nil
	}
	return nil, corrupt(fmt.Errorf("unknown exercise type"))
}
