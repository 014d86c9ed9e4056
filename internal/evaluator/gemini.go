package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/lexigo/reviewd/internal/logger"
	"github.com/lexigo/reviewd/internal/metrics"
)

const geminiSystemPrompt = `You grade answers from Vietnamese learners of English.
Reply with a single JSON object: {"isCorrect": boolean, "score": integer 0-100, "feedback": string}.
Write the feedback in Vietnamese, at most two sentences.`

// Gemini evaluates answers with a Google generative model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini-backed evaluator for the given model name.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(geminiSystemPrompt)}}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Evaluate(ctx context.Context, req Request) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("gemini")
	start := time.Now()

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		metrics.RecordEvaluation("gemini", false, time.Since(start))
		log.Warn("generate content failed after %v: %v", time.Since(start), err)
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}

	res, err := parseVerdict(extractText(resp))
	metrics.RecordEvaluation("gemini", err == nil, time.Since(start))
	if err != nil {
		log.Warn("unparseable verdict: %v", err)
		return Result{}, err
	}
	log.Debug("verdict word=%s correct=%t score=%d", req.TargetWord, res.IsCorrect, res.Score)
	return res, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	switch req.Mode {
	case ModePronunciation:
		b.WriteString("The learner tried to pronounce a word. A speech recognizer produced the transcript below.\n")
		b.WriteString("Judge how closely the transcript matches the target word.\n")
	default:
		b.WriteString("The learner wrote one English sentence using the target word.\n")
		b.WriteString("Judge grammar and whether the word is used with the given meaning.\n")
	}
	fmt.Fprintf(&b, "Target word: %s\n", req.TargetWord)
	if req.Definition != "" {
		fmt.Fprintf(&b, "Meaning: %s\n", req.Definition)
	}
	fmt.Fprintf(&b, "Learner answer: %s\n", req.UserText)
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func parseVerdict(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var v struct {
		IsCorrect *bool  `json:"isCorrect"`
		Score     *int   `json:"score"`
		Feedback  string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return Result{}, fmt.Errorf("decode verdict: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
			return Result{}, fmt.Errorf("decode verdict: %w", err)
		}
	}
	if v.IsCorrect == nil || v.Score == nil {
		return Result{}, fmt.Errorf("decode verdict: missing isCorrect or score")
	}
	return Result{
		IsCorrect: *v.IsCorrect,
		Score:     clampScore(*v.Score),
		Feedback:  strings.TrimSpace(v.Feedback),
	}, nil
}
