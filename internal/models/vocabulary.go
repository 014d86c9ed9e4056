package models

import (
	"regexp"
	"strings"
	"time"
)

// Difficulty labels shown by the client.
const (
	DifficultyEasy    = "Dễ"
	DifficultyMedium  = "Trung bình"
	DifficultyHard    = "Khó"
	DifficultyUnrated = "Chưa xếp loại"
)

// Difficulties lists every label in display order.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyUnrated}

// ValidDifficulty reports whether s is a known difficulty label.
func ValidDifficulty(s string) bool {
	for _, d := range Difficulties {
		if d == s {
			return true
		}
	}
	return false
}

// SRSState is the spaced-repetition state of one vocabulary item.
type SRSState struct {
	Repetitions    int        `json:"repetitions"`
	EaseFactor     float64    `json:"easeFactor"`
	IntervalDays   int        `json:"intervalDays"`
	NextReviewAt   time.Time  `json:"nextReviewAt"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
}

type VocabularyItem struct {
	ID                   int64    `json:"id"`
	UserID               int64    `json:"userId"`
	Word                 string   `json:"word"`
	WordType             string   `json:"wordType,omitempty"`
	Translation          string   `json:"translation"`
	Phonetic             string   `json:"phonetic,omitempty"`
	EnglishDefinition    string   `json:"englishDefinition,omitempty"`
	VietnameseDefinition string   `json:"vietnameseDefinition,omitempty"`
	Examples             []string `json:"examples"`
	VietnameseExample    string   `json:"vietnameseExample,omitempty"`
	Synonyms             []string `json:"synonyms"`
	Antonyms             []string `json:"antonyms"`
	Notes                string   `json:"notes,omitempty"`
	AudioURL             string   `json:"audioUrl,omitempty"`
	VideoURL             string   `json:"mouthArticulationVideoUrl,omitempty"`
	ReferenceURL         string   `json:"cambridgeLink,omitempty"`
	ImageURL             string   `json:"imageUrl,omitempty"`
	Difficulty           string   `json:"difficulty"`
	SRSState
	LastExerciseType ExerciseType `json:"lastExerciseType,omitempty"`
	AddedAt          time.Time    `json:"addedAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// WordStartPattern matches word case-insensitively where it begins a word of
// the text, so inflections like "running" match "run" but "party" does not
// match "art".
func WordStartPattern(word string) *regexp.Regexp {
	word = strings.TrimSpace(word)
	prefix := ""
	if word != "" && isWordByte(word[0]) {
		prefix = `\b`
	}
	return regexp.MustCompile(`(?i)` + prefix + regexp.QuoteMeta(word))
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// ExampleContaining returns the first example sentence in which the word
// starts a word, matched case-insensitively.
func (v VocabularyItem) ExampleContaining() (string, bool) {
	if strings.TrimSpace(v.Word) == "" {
		return "", false
	}
	pattern := WordStartPattern(v.Word)
	for _, ex := range v.Examples {
		if pattern.MatchString(ex) {
			return ex, true
		}
	}
	return "", false
}

// Definition prefers the English definition and falls back to the translation.
func (v VocabularyItem) Definition() string {
	if v.EnglishDefinition != "" {
		return v.EnglishDefinition
	}
	return v.Translation
}

type VocabularyFilter struct {
	UserID     int64
	Difficulty string
	Query      string
	DueBefore  *time.Time
	Limit      int
	Offset     int
	OrderBy    string
	OrderDir   string
}

// VocabularyInput carries the user-editable fields of a vocabulary item.
type VocabularyInput struct {
	Word                 string   `json:"word"`
	WordType             string   `json:"wordType"`
	Translation          string   `json:"translation"`
	Phonetic             string   `json:"phonetic"`
	EnglishDefinition    string   `json:"englishDefinition"`
	VietnameseDefinition string   `json:"vietnameseDefinition"`
	Examples             []string `json:"examples"`
	VietnameseExample    string   `json:"vietnameseExample"`
	Synonyms             []string `json:"synonyms"`
	Antonyms             []string `json:"antonyms"`
	Notes                string   `json:"notes"`
	AudioURL             string   `json:"audioUrl"`
	VideoURL             string   `json:"mouthArticulationVideoUrl"`
	ReferenceURL         string   `json:"cambridgeLink"`
	ImageURL             string   `json:"imageUrl"`
	Difficulty           string   `json:"difficulty"`
}

// Apply copies the input onto an item, leaving SRS state untouched.
func (in VocabularyInput) Apply(v *VocabularyItem) {
	v.Word = strings.TrimSpace(in.Word)
	v.WordType = in.WordType
	v.Translation = strings.TrimSpace(in.Translation)
	v.Phonetic = in.Phonetic
	v.EnglishDefinition = in.EnglishDefinition
	v.VietnameseDefinition = in.VietnameseDefinition
	v.Examples = in.Examples
	v.VietnameseExample = in.VietnameseExample
	v.Synonyms = in.Synonyms
	v.Antonyms = in.Antonyms
	v.Notes = in.Notes
	v.AudioURL = in.AudioURL
	v.VideoURL = in.VideoURL
	v.ReferenceURL = in.ReferenceURL
	v.ImageURL = in.ImageURL
	v.Difficulty = in.Difficulty
	if v.Difficulty == "" {
		v.Difficulty = DifficultyUnrated
	}
}

// VocabularyPage is one page of a filtered vocabulary listing.
type VocabularyPage struct {
	Items  []VocabularyItem `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
