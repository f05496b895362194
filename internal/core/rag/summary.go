package rag

import (
	"context"
	"fmt"
	"math"
	"strings"

	"ytbrain/internal/cache"
	"ytbrain/internal/core"
	"ytbrain/internal/core/llm"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

const summaryDigestMaxChars = 6000

const summaryPrompt = `Analyze this video transcript and return ONLY valid JSON.
No markdown, no explanation, just the JSON object.

{
  "overview": "3-4 sentence summary of the video",
  "deep_concepts": [
    {"name": "concept name", "explanation": "2 sentence explanation", "start_time": 0}
  ],
  "actionable_takeaways": [
    "takeaway 1",
    "takeaway 2"
  ]
}

Include 4-5 deep_concepts and exactly 5 actionable_takeaways.
Each start_time must be one of the [Ns] second markers shown in the transcript.

TRANSCRIPT:
%s`

// SummaryGenerator derives the structured summary from the full chunk set of
// a processed video. Results are cached; a video is summarized once.
type SummaryGenerator struct {
	videos  *store.VideoStore
	index   vectorstore.VectorStore
	llm     core.LLMProvider
	retries int
	cache   *cache.Cache[models.SummaryRecord]
}

func NewSummaryGenerator(videos *store.VideoStore, index vectorstore.VectorStore, provider core.LLMProvider, retries int, c *cache.Cache[models.SummaryRecord]) *SummaryGenerator {
	return &SummaryGenerator{videos: videos, index: index, llm: provider, retries: retries, cache: c}
}

// Summarize requires the video to be ready; anything else is
// core.ErrIndexNotFound, never a default-empty summary.
func (s *SummaryGenerator) Summarize(ctx context.Context, videoID string) (*models.SummaryRecord, error) {
	rec, ok := s.videos.Get(videoID)
	if !ok || rec.Status != models.StatusReady {
		return nil, fmt.Errorf("%w: video %s is not processed", core.ErrIndexNotFound, videoID)
	}

	if cached, ok := s.cache.Get(videoID); ok {
		return &cached, nil
	}

	chunks, err := s.index.Chunks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Overview     string `json:"overview"`
		DeepConcepts []struct {
			Name        string  `json:"name"`
			Explanation string  `json:"explanation"`
			StartTime   float64 `json:"start_time"`
		} `json:"deep_concepts"`
		ActionableTakeaways []string `json:"actionable_takeaways"`
	}

	prompt := fmt.Sprintf(summaryPrompt, buildDigest(chunks, summaryDigestMaxChars))
	if err := llm.GenerateJSON(ctx, s.llm, "", prompt, s.retries, &payload); err != nil {
		return nil, err
	}

	overview := strings.TrimSpace(payload.Overview)
	if overview == "" {
		return nil, fmt.Errorf("%w: model returned empty overview", core.ErrGenerationFailed)
	}

	summary := models.SummaryRecord{
		Overview:            overview,
		DeepConcepts:        make([]models.DeepConcept, 0, len(payload.DeepConcepts)),
		ActionableTakeaways: make([]string, 0, len(payload.ActionableTakeaways)),
	}
	for _, dc := range payload.DeepConcepts {
		name := strings.TrimSpace(dc.Name)
		if name == "" {
			continue
		}
		summary.DeepConcepts = append(summary.DeepConcepts, models.DeepConcept{
			Name:        name,
			Explanation: strings.TrimSpace(dc.Explanation),
			StartTime:   snapToChunkStart(dc.StartTime, chunks),
		})
	}
	for _, t := range payload.ActionableTakeaways {
		if t = strings.TrimSpace(t); t != "" {
			summary.ActionableTakeaways = append(summary.ActionableTakeaways, t)
		}
	}

	s.cache.Set(videoID, summary)
	return &summary, nil
}

// buildDigest renders chunks as "[Ns] text" lines, capped to maxChars.
func buildDigest(chunks []models.TranscriptChunk, maxChars int) string {
	var b strings.Builder
	for _, ch := range chunks {
		if b.Len() >= maxChars {
			break
		}
		fmt.Fprintf(&b, "[%ds] %s\n", int(ch.StartTime), ch.Text)
	}
	digest := b.String()
	if len(digest) > maxChars {
		digest = digest[:maxChars]
	}
	return digest
}

// snapToChunkStart anchors a model-reported timestamp to the nearest real
// chunk start, so citations always land on content that exists.
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
