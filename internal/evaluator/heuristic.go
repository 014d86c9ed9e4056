package evaluator

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/lexigo/reviewd/internal/metrics"
)

const minSentenceWords = 4

// Heuristic is a deterministic, offline evaluator used when no model is configured.
type Heuristic struct{}

func NewHeuristic() Heuristic {
	return Heuristic{}
}

func (Heuristic) Evaluate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	var res Result
	switch req.Mode {
	case ModePronunciation:
		res = judgePronunciation(req)
	default:
		res = judgeSentence(req)
	}
	metrics.RecordEvaluation("heuristic", true, time.Since(start))
	return res, nil
}

func containsWord(text, word string) bool {
	word = normalize(word)
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

func judgeSentence(req Request) Result {
	text := strings.TrimSpace(req.UserText)
	words := strings.Fields(text)
	switch {
	case text == "":
		return Result{Score: 0, Feedback: "Bạn chưa nhập câu nào."}
	case !containsWord(text, req.TargetWord):
		return Result{Score: 0, Feedback: fmt.Sprintf("Câu của bạn chưa sử dụng từ \"%s\".", req.TargetWord)}
	case len(words) < minSentenceWords:
		return Result{Score: 60, Feedback: fmt.Sprintf("Bạn đã dùng từ \"%s\", hãy thử viết một câu đầy đủ hơn.", req.TargetWord)}
	default:
		return Result{IsCorrect: true, Score: 100, Feedback: fmt.Sprintf("Tốt lắm! Bạn đã dùng từ \"%s\" trong một câu hoàn chỉnh.", req.TargetWord)}
	}
}

func judgePronunciation(req Request) Result {
	target := normalize(req.TargetWord)
	heard := normalize(req.UserText)
	if heard == "" {
		return Result{Score: 0, Feedback: "Không nhận được giọng nói, hãy thử lại."}
	}
	if heard == target {
		return Result{IsCorrect: true, Score: 100, Feedback: fmt.Sprintf("Phát âm chính xác từ \"%s\"!", req.TargetWord)}
	}
	if containsWord(heard, target) {
		return Result{IsCorrect: true, Score: 80, Feedback: fmt.Sprintf("Đã nhận ra từ \"%s\", hãy thử đọc riêng từ đó.", req.TargetWord)}
	}

	score := int(math.Round(100 * similarity(target, heard)))
	if score >= 80 {
		return Result{IsCorrect: true, Score: score, Feedback: fmt.Sprintf("Gần đúng rồi! Chúng tôi nghe được \"%s\".", req.UserText)}
	}
	return Result{Score: score, Feedback: fmt.Sprintf("Chúng tôi nghe được \"%s\" thay vì \"%s\". Hãy nghe lại và thử lần nữa.", req.UserText, req.TargetWord)}
}

// similarity is 1 minus the normalized Levenshtein distance between a and b.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return 1 - float64(prev[len(rb)])/float64(longest)
}
