package game

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"ytbrain/internal/cache"
	"ytbrain/internal/core"
	"ytbrain/internal/core/llm"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

const quizDigestMaxChars = 5200

const quizPromptTemplate = `Based on this video information, generate exactly %d quiz questions.
Return ONLY valid JSON, no markdown, no explanation outside the JSON.

{
  "questions": [
    {
      "id": 1,
      "difficulty": "easy",
      "type": "mcq",
      "question": "question text",
      "options": ["A. option1", "B. option2", "C. option3", "D. option4"],
      "correct": "A",
      "explanation": "natural explanation of why it's correct, without mentioning any source material",
      "start_time": 0
    }
  ]
}

Rules:
- Questions 1-%d: difficulty=easy, type=mcq, simple factual questions
- Questions %d-%d: difficulty=medium, type=mcq, conceptual questions
- Questions %d-%d: difficulty=hard, type=open (set options to [], correct=full reference answer string)
- ALL questions must be based only on the information below.
- Every mcq needs exactly one correct option; correct holds its letter.
- start_time must be one of the [Ns] second markers shown below.

INFORMATION:
%s`

// QuizGenerator builds the fixed quiz for a processed video: a mix of mcq
// and open questions across easy/medium/hard, drawn from chunks sampled over
// the whole timeline rather than one query's neighborhood.
type QuizGenerator struct {
	videos  *store.VideoStore
	index   vectorstore.VectorStore
	llm     core.LLMProvider
	size    int
	retries int
	cache   *cache.Cache[models.Quiz]
}

func NewQuizGenerator(videos *store.VideoStore, index vectorstore.VectorStore, provider core.LLMProvider, size, retries int, c *cache.Cache[models.Quiz]) *QuizGenerator {
	if size < 3 {
		size = 15
	}
	if retries < 1 {
		retries = 3
	}
	return &QuizGenerator{videos: videos, index: index, llm: provider, size: size, retries: retries, cache: c}
}

// Generate returns the cached quiz or generates a new one with count
// questions (count <= 0 selects the configured size). The result always has
// exactly count validated questions, or the call fails with
// core.ErrGenerationFailed.
func (q *QuizGenerator) Generate(ctx context.Context, videoID string, count int) (*models.Quiz, error) {
	if count <= 0 {
		count = q.size
	}

	rec, ok := q.videos.Get(videoID)
	if !ok || rec.Status != models.StatusReady {
		return nil, fmt.Errorf("%w: video %s is not processed", core.ErrIndexNotFound, videoID)
	}

	if cached, ok := q.cache.Get(videoID); ok && len(cached.Questions) == count {
		return &cached, nil
	}

	chunks, err := q.index.Chunks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	easy, medium, _ := DifficultyCounts(count)
	prompt := fmt.Sprintf(quizPromptTemplate,
		count,
		easy,
		easy+1, easy+medium,
		easy+medium+1, count,
		buildQuizDigest(chunks, quizDigestMaxChars))

	var lastErr error
	for attempt := 0; attempt < q.retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", core.ErrGenerationFailed, ctx.Err())
		default:
		}

		var payload struct {
			Questions []models.Question `json:"questions"`
		}
		if err := llm.GenerateJSON(ctx, q.llm, "", prompt, 1, &payload); err != nil {
			lastErr = err
			continue
		}

		questions, err := validateQuestions(payload.Questions, count, chunks)
		if err != nil {
			lastErr = err
			continue
		}

		quiz := models.Quiz{VideoID: videoID, Questions: questions}
		q.cache.Set(videoID, quiz)
		return &quiz, nil
	}

	return nil, fmt.Errorf("%w: no valid quiz after %d attempts: %v", core.ErrGenerationFailed, q.retries, lastErr)
}

// DifficultyCounts splits count into easy/medium/hard tiers, front-loading
// the remainder so a count of 15 becomes 5/5/5 and 10 becomes 4/3/3.
func DifficultyCounts(count int) (easy, medium, hard int) {
	base := count / 3
	rem := count % 3
	easy, medium, hard = base, base, base
	if rem > 0 {
		easy++
	}
	if rem > 1 {
		medium++
	}
	return easy, medium, hard
}

// buildQuizDigest samples chunks evenly across the full timeline and renders
// them as "[Ns] text" lines within the character budget.
func buildQuizDigest(chunks []models.TranscriptChunk, maxChars int) string {
	if len(chunks) == 0 {
		return ""
	}

	// Estimate how many chunks fit, then stride so the picks span first to
	// last instead of clustering at the front.
	avg := 0
	for _, ch := range chunks {
		avg += len(ch.Text)
	}
	avg = avg/len(chunks) + 16
	fit := maxChars / avg
	if fit < 1 {
		fit = 1
	}
	if fit > len(chunks) {
		fit = len(chunks)
	}

	var b strings.Builder
	for i := 0; i < fit; i++ {
		idx := i * (len(chunks) - 1) / max(fit-1, 1)
		ch := chunks[idx]
		if b.Len()+len(ch.Text) > maxChars && b.Len() > 0 {
			break
		}
		fmt.Fprintf(&b, "[%ds] %s\n", int(ch.StartTime), ch.Text)
	}
	return b.String()
}

// validateQuestions enforces the internal consistency rules before a quiz is
// accepted: exact count, sane enums, and for every mcq a correct letter that
// matches exactly one option.
func validateQuestions(questions []models.Question, count int, chunks []models.TranscriptChunk) ([]models.Question, error) {
	if len(questions) != count {
		return nil, fmt.Errorf("%w: got %d questions, want %d", core.ErrValidationFailed, len(questions), count)
	}

	out := make([]models.Question, 0, count)
	for i, qq := range questions {
		qq.Question = strings.TrimSpace(qq.Question)
		qq.Correct = strings.TrimSpace(qq.Correct)
		qq.Difficulty = strings.ToLower(strings.TrimSpace(qq.Difficulty))
		qq.Type = strings.ToLower(strings.TrimSpace(qq.Type))
		qq.ID = i + 1

		if qq.Question == "" {
			return nil, fmt.Errorf("%w: question %d has empty prompt", core.ErrValidationFailed, qq.ID)
		}
		switch qq.Difficulty {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			return nil, fmt.Errorf("%w: question %d has difficulty %q", core.ErrValidationFailed, qq.ID, qq.Difficulty)
		}

		switch qq.Type {
		case models.QuestionMCQ:
			if len(qq.Options) < 2 {
				return nil, fmt.Errorf("%w: mcq %d has %d options", core.ErrValidationFailed, qq.ID, len(qq.Options))
			}
			correct := OptionLetter(qq.Correct)
			if correct == "" {
				return nil, fmt.Errorf("%w: mcq %d has no correct letter", core.ErrValidationFailed, qq.ID)
			}
			matches := 0
			seen := map[string]bool{}
			for _, opt := range qq.Options {
				letter := OptionLetter(opt)
				if letter == "" || seen[letter] {
					return nil, fmt.Errorf("%w: mcq %d has malformed options", core.ErrValidationFailed, qq.ID)
				}
				seen[letter] = true
				if letter == correct {
					matches++
				}
			}
			if matches != 1 {
				return nil, fmt.Errorf("%w: mcq %d correct letter %q matches %d options", core.ErrValidationFailed, qq.ID, correct, matches)
			}
		case models.QuestionOpen:
			if qq.Correct == "" {
				return nil, fmt.Errorf("%w: open question %d has no reference answer", core.ErrValidationFailed, qq.ID)
			}
			qq.Options = []string{}
		default:
			return nil, fmt.Errorf("%w: question %d has type %q", core.ErrValidationFailed, qq.ID, qq.Type)
		}

		qq.StartTime = snapToChunkStart(qq.StartTime, chunks)
		out = append(out, qq)
	}
	return out, nil
}

// OptionLetter extracts the leading letter of an option or answer string
// ("A. Paris" -> "A", "b" -> "B"). Empty when the string does not start with
// a letter. This is the wire convention the client compares against.
func OptionLetter(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(s)[0]
	if !unicode.IsLetter(r) {
		return ""
	}
	return strings.ToUpper(string(r))
}

func snapToChunkStart(t float64, chunks []models.TranscriptChunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	best := chunks[0].StartTime
	bestDist := math.Abs(t - best)
	for _, ch := range chunks[1:] {
		if d := math.Abs(t - ch.StartTime); d < bestDist {
			best = ch.StartTime
			bestDist = d
		}
	}
	return best
}
