package game

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"ytbrain/internal/core"
	"ytbrain/internal/core/llm"
	"ytbrain/internal/models"
)

// XPConfig holds the base reward per difficulty for a fully correct answer.
// Partial credit is pro-rated by score/3, rounded down.
type XPConfig struct {
	Easy   int
	Medium int
	Hard   int
}

const gradePromptTemplate = `Grade this answer on a 0-3 rubric:
0 = irrelevant or blank, 1 = partially correct, 2 = mostly correct, 3 = fully correct and well-explained.

Question: %s
Expected answer: %s
Student answer: %s

Return ONLY JSON: {"score": 0, "feedback": "one friendly, encouraging sentence talking directly to the student"}`

// nonAnswers are normalized phrases that short-circuit to a zero score
// without spending a model call.
var nonAnswers = map[string]bool{
	"i dont know": true,
	"dont know":   true,
	"idk":         true,
	"no idea":     true,
	"i have no idea": true,
	"not sure":    true,
	"dunno":       true,
	"no clue":     true,
	"pass":        true,
	"skip":        true,
}

// Grader scores open answers against a reference on the 0-3 rubric. The
// rubric boundaries are deterministic; only the feedback wording is up to
// the model.
type Grader struct {
	llm     core.LLMProvider
	xp      XPConfig
	retries int
}

func NewGrader(provider core.LLMProvider, xp XPConfig, retries int) *Grader {
	if retries < 1 {
		retries = 3
	}
	return &Grader{llm: provider, xp: xp, retries: retries}
}

// Grade evaluates userAnswer against reference. Blank and non-answers score
// 0 and an answer identical to the reference scores 3, both without a model
// call; everything in between is judged by the model and clamped to 0-3.
func (g *Grader) Grade(ctx context.Context, question, reference, userAnswer, difficulty string) (*models.GradingResult, error) {
	normalized := normalizeAnswer(userAnswer)

	if len(normalized) < 2 || nonAnswers[normalized] {
		return &models.GradingResult{
			Score:    0,
			Feedback: "No worries — give it a real shot and you might surprise yourself!",
			XPEarned: 0,
		}, nil
	}

	if normalized == normalizeAnswer(reference) {
		return &models.GradingResult{
			Score:    3,
			Feedback: "Spot on — that's exactly it!",
			XPEarned: g.XP(difficulty, 3),
		}, nil
	}

	var payload struct {
		Score    int    `json:"score"`
		Feedback string `json:"feedback"`
	}
	prompt := fmt.Sprintf(gradePromptTemplate, question, reference, userAnswer)
	if err := llm.GenerateJSON(ctx, g.llm, "", prompt, g.retries, &payload); err != nil {
		return nil, err
	}

	score := payload.Score
	if score < 0 {
		score = 0
	}
	if score > 3 {
		score = 3
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		feedback = "Thanks for the answer — check the reference to see what was missing."
	}

	return &models.GradingResult{
		Score:    score,
		Feedback: feedback,
		XPEarned: g.XP(difficulty, score),
	}, nil
}

// XP computes the reward for a score at a difficulty: base XP scaled by
// score/3, rounded down.
func (g *Grader) XP(difficulty string, score int) int {
	if score <= 0 {
		return 0
	}
	if score > 3 {
		score = 3
	}
	return g.base(difficulty) * score / 3
}

func (g *Grader) base(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case models.DifficultyMedium:
		return g.xp.Medium
	case models.DifficultyHard:
		return g.xp.Hard
	default:
		return g.xp.Easy
	}
}

// normalizeAnswer lowercases, strips punctuation, and collapses whitespace,
// so "I don't know!" and "i dont know" compare equal.
func normalizeAnswer(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
