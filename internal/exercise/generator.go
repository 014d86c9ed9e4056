package exercise

import (
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/lexigo/reviewd/internal/models"
)

const (
	DefaultCount   = 5
	MaxCount       = 50
	maxDistractors = 3
	blank          = "____"
)

// ClampCount bounds a requested batch size to [1, MaxCount], using DefaultCount for n <= 0.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n > MaxCount:
		return MaxCount
	default:
		return n
	}
}

// Generator builds exercise batches. All randomness comes from one seeded source,
// so a generator created with the same seed and fed the same items yields the same tasks.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// SelectCandidates returns due items ordered by earliest next review, followed by
// never-reviewed items in insertion order, without duplicates and at most count long.
func SelectCandidates(due, fresh []models.VocabularyItem, count int) []models.VocabularyItem {
	due = append([]models.VocabularyItem(nil), due...)
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	fresh = append([]models.VocabularyItem(nil), fresh...)
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].ID < fresh[j].ID
	})

	out := make([]models.VocabularyItem, 0, count)
	seen := make(map[int64]bool, count)
	for _, group := range [][]models.VocabularyItem{due, fresh} {
		for _, item := range group {
			if len(out) >= count {
				return out
			}
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			out = append(out, item)
		}
	}
	return out
}

// NextKind returns the first applicable kind after last in rotation order.
// Items that were never exercised start at the beginning of the rotation.
func NextKind(last models.ExerciseType, applicable func(models.ExerciseType) bool) models.ExerciseType {
	start := 0
	for i, k := range models.ExerciseTypes {
		if k == last {
			start = i + 1
			break
		}
	}
	n := len(models.ExerciseTypes)
	for i := 0; i < n; i++ {
		k := models.ExerciseTypes[(start+i)%n]
		if applicable(k) {
			return k
		}
	}
	return models.ExerciseFlashcard
}

// Generate builds one task per candidate. pool is every item of the user and
// supplies distractors. An empty candidate list yields an empty, non-nil slice.
func (g *Generator) Generate(due, fresh, pool []models.VocabularyItem, count int) []Task {
	candidates := SelectCandidates(due, fresh, ClampCount(count))
	tasks := make([]Task, 0, len(candidates))
	if len(candidates) == 0 {
		return tasks
	}

	pool = append([]models.VocabularyItem(nil), pool...)
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, item := range candidates {
		kind := NextKind(item.LastExerciseType, func(k models.ExerciseType) bool {
			return applicable(k, item, pool)
		})
		tasks = append(tasks, g.build(kind, item, pool))
	}
	return tasks
}

func applicable(kind models.ExerciseType, item models.VocabularyItem, pool []models.VocabularyItem) bool {
	switch kind {
	case models.ExerciseMultipleChoice:
		return item.Translation != "" && len(translationDistractors(item, pool)) > 0
	case models.ExerciseFillInBlank:
		_, ok := item.ExampleContaining()
		return ok
	case models.ExerciseMatching:
		return item.Translation != "" && len(matchPartners(item, pool)) > 0
	case models.ExerciseListenChooseImage:
		return item.AudioURL != "" && len(wordDistractors(item, pool)) > 0
	default:
		return true
	}
}

func (g *Generator) build(kind models.ExerciseType, item models.VocabularyItem, pool []models.VocabularyItem) Task {
	switch kind {
	case models.ExerciseMultipleChoice:
		choices := append([]string{item.Translation}, g.pick(translationDistractors(item, pool), maxDistractors)...)
		g.shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
		return MultipleChoice{VocabularyID: item.ID, Word: item.Word, Choices: choices, Answer: item.Translation}

	case models.ExerciseFillInBlank:
		example, _ := item.ExampleContaining()
		return FillInBlank{VocabularyID: item.ID, Sentence: blankOut(example, item.Word), Hint: item.Translation, Answer: item.Word}

	case models.ExerciseSentenceConstruction:
		return SentenceConstruction{VocabularyID: item.ID, Word: item.Word, Definition: item.Definition()}

	case models.ExercisePronunciation:
		return Pronunciation{VocabularyID: item.ID, Word: item.Word, Phonetic: item.Phonetic, AudioURL: item.AudioURL}

	case models.ExerciseMatching:
		partners := matchPartners(item, pool)
		idx := g.pickIndexes(len(partners), maxDistractors)
		pairs := []MatchPair{{ID: strconv.FormatInt(item.ID, 10), Word: item.Word, Meaning: item.Translation}}
		for _, i := range idx {
			p := partners[i]
			pairs = append(pairs, MatchPair{ID: strconv.FormatInt(p.ID, 10), Word: p.Word, Meaning: p.Translation})
		}
		g.shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
		meanings := make([]string, len(pairs))
		for i, p := range pairs {
			meanings[i] = p.Meaning
		}
		g.shuffle(len(meanings), func(i, j int) { meanings[i], meanings[j] = meanings[j], meanings[i] })
		return Matching{VocabularyID: item.ID, Pairs: pairs, Meanings: meanings}

	case models.ExerciseListenChooseImage:
		others := wordDistractors(item, pool)
		choices := []ImageChoice{{Concept: item.Word, ImageURL: item.ImageURL}}
		for _, i := range g.pickIndexes(len(others), maxDistractors) {
			choices = append(choices, ImageChoice{Concept: others[i].Word, ImageURL: others[i].ImageURL})
		}
		g.shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
		return ListenChooseImage{VocabularyID: item.ID, AudioURL: item.AudioURL, Choices: choices, Answer: item.Word}

	default:
		return Flashcard{VocabularyID: item.ID, Word: item.Word}
	}
}

func (g *Generator) shuffle(n int, swap func(i, j int)) {
	g.rng.Shuffle(n, swap)
}

func (g *Generator) pickIndexes(n, k int) []int {
	perm := g.rng.Perm(n)
	if k < len(perm) {
		perm = perm[:k]
	}
	sort.Ints(perm)
	return perm
}

func (g *Generator) pick(from []string, k int) []string {
	idx := g.pickIndexes(len(from), k)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}

// translationDistractors returns distinct translations of other items that differ from item's.
func translationDistractors(item models.VocabularyItem, pool []models.VocabularyItem) []string {
	seen := map[string]bool{normalize(item.Translation): true}
	var out []string
	for _, other := range pool {
		key := normalize(other.Translation)
		if other.ID == item.ID || key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, other.Translation)
	}
	return out
}

// matchPartners returns other items whose word and translation are both distinct.
func matchPartners(item models.VocabularyItem, pool []models.VocabularyItem) []models.VocabularyItem {
	words := map[string]bool{normalize(item.Word): true}
	meanings := map[string]bool{normalize(item.Translation): true}
	var out []models.VocabularyItem
	for _, other := range pool {
		w, m := normalize(other.Word), normalize(other.Translation)
		if other.ID == item.ID || w == "" || m == "" || words[w] || meanings[m] {
			continue
		}
		words[w], meanings[m] = true, true
		out = append(out, other)
	}
	return out
}

// wordDistractors returns other items with a distinct word.
func wordDistractors(item models.VocabularyItem, pool []models.VocabularyItem) []models.VocabularyItem {
	seen := map[string]bool{normalize(item.Word): true}
	var out []models.VocabularyItem
	for _, other := range pool {
		w := normalize(other.Word)
		if other.ID == item.ID || w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, other)
	}
	return out
}

func blankOut(sentence, word string) string {
	bounded := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if bounded.MatchString(sentence) {
		return bounded.ReplaceAllString(sentence, blank)
	}
	return models.WordStartPattern(word).ReplaceAllString(sentence, blank)
}
