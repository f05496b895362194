package rag_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ytbrain/internal/cache"
	"ytbrain/internal/core"
	"ytbrain/internal/core/rag"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

const validSummaryJSON = `{
  "overview": "The video walks through three topics.",
  "deep_concepts": [
    {"name": "Topic B", "explanation": "The middle topic.", "start_time": 33}
  ],
  "actionable_takeaways": ["Watch it again", "  ", "Take notes"]
}`

func summaryFixture(t *testing.T, status models.VideoStatus) (*rag.SummaryGenerator, *scriptLLM) {
	t.Helper()
	videos := store.NewVideoStore()
	videos.Put(models.VideoRecord{VideoID: "vid1", Status: models.StatusPending})
	if status != models.StatusPending {
		if err := videos.SetStatus("vid1", status); err != nil {
			t.Fatalf("SetStatus: %v", err)
		}
	}
	index, _ := indexedStore(t, "vid1")
	llm := &scriptLLM{responses: []string{validSummaryJSON}}
	gen := rag.NewSummaryGenerator(videos, index, llm, 1, cache.New[models.SummaryRecord](time.Hour))
	return gen, llm
}

func TestSummarizeParsesAndSnapsTimestamps(t *testing.T) {
	gen, _ := summaryFixture(t, models.StatusReady)

	summary, err := gen.Summarize(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Overview != "The video walks through three topics." {
		t.Fatalf("unexpected overview: %q", summary.Overview)
	}
	if len(summary.DeepConcepts) != 1 {
		t.Fatalf("got %d concepts, want 1", len(summary.DeepConcepts))
	}
	// 33 is not a real chunk start; it snaps to the nearest one (30).
	if summary.DeepConcepts[0].StartTime != 30 {
		t.Fatalf("concept timestamp %g, want snapped 30", summary.DeepConcepts[0].StartTime)
	}
	if len(summary.ActionableTakeaways) != 2 {
		t.Fatalf("blank takeaway not dropped: %v", summary.ActionableTakeaways)
	}
}

func TestSummarizeRequiresReadyVideo(t *testing.T) {
	gen, llm := summaryFixture(t, models.StatusPending)

	_, err := gen.Summarize(context.Background(), "vid1")
	if !errors.Is(err, core.ErrIndexNotFound) {
		t.Fatalf("got %v, want ErrIndexNotFound", err)
	}
	if llm.calls != 0 {
		t.Fatalf("model called %d times for an unready video", llm.calls)
	}
}

func TestSummarizeCachesResult(t *testing.T) {
	gen, llm := summaryFixture(t, models.StatusReady)

	first, err := gen.Summarize(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("first Summarize: %v", err)
	}
	second, err := gen.Summarize(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("second Summarize: %v", err)
	}
	if llm.calls != 1 {
		t.Fatalf("model called %d times, want 1", llm.calls)
	}
	if first.Overview != second.Overview {
		t.Fatal("cached summary differs from the original")
	}
}

func TestSummarizeRejectsEmptyOverview(t *testing.T) {
	gen, llm := summaryFixture(t, models.StatusReady)
	llm.responses = []string{`{"overview": "  ", "deep_concepts": [], "actionable_takeaways": []}`}

	_, err := gen.Summarize(context.Background(), "vid1")
	if !errors.Is(err, core.ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}
}

func TestSummarizeAcceptsFencedJSON(t *testing.T) {
	gen, llm := summaryFixture(t, models.StatusReady)
	llm.responses = []string{"```json\n" + validSummaryJSON + "\n```"}

	summary, err := gen.Summarize(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Overview == "" {
		t.Fatal("fenced response not parsed")
	}
}
