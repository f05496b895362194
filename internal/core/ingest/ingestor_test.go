package ingest_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ytbrain/internal/core"
	"ytbrain/internal/core/ingest"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type fakeTranscripts struct {
	segments []models.TranscriptSegment
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeTranscripts) FetchTranscript(ctx context.Context, _ string) ([]models.TranscriptSegment, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.segments, f.err
}

type fakeMetadata struct{}

func (fakeMetadata) FetchMetadata(_ context.Context, videoID string) (*models.VideoRecord, error) {
	return &models.VideoRecord{VideoID: videoID, Title: "Test Video", Channel: "Test Channel", DurationSeconds: 120}, nil
}

func newTestIngestor(videos *store.VideoStore, index vectorstore.VectorStore, tf core.TranscriptFetcher) *ingest.Ingestor {
	return ingest.NewIngestor(videos, index, fakeEmbedder{}, tf, fakeMetadata{}, &ingest.Config{
		TargetChars: 10,
		OverlapFrac: 0,
		BatchSize:   2,
		Timeout:     5 * time.Second,
	})
}

func TestProcessBuildsIndexAndMarksReady(t *testing.T) {
	videos := store.NewVideoStore()
	index := vectorstore.NewMemoryStore()
	transcripts := &fakeTranscripts{segments: []models.TranscriptSegment{
		{Text: "hello world this is a test", Start: 0},
		{Text: "more transcript text here", Start: 15},
	}}

	ing := newTestIngestor(videos, index, transcripts)

	rec, err := ing.Process(context.Background(), "https://www.youtube.com/watch?v=abcdefghijk")
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if rec.Status != models.StatusReady {
		t.Fatalf("status %q, want ready", rec.Status)
	}
	if rec.Title != "Test Video" {
		t.Fatalf("metadata not applied: title %q", rec.Title)
	}

	chunks, err := index.Chunks(context.Background(), "abcdefghijk")
	if err != nil {
		t.Fatalf("Chunks returned error: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("no chunks indexed")
	}
	for _, ch := range chunks {
		if len(ch.Embedding) == 0 {
			t.Fatalf("chunk %d has no embedding", ch.Position)
		}
	}
}

func TestProcessNoTranscriptMarksFailed(t *testing.T) {
	videos := store.NewVideoStore()
	index := vectorstore.NewMemoryStore()
	transcripts := &fakeTranscripts{err: core.ErrNoTranscript}

	ing := newTestIngestor(videos, index, transcripts)

	_, err := ing.Process(context.Background(), "https://youtu.be/abcdefghijk")
	if !errors.Is(err, core.ErrNoTranscript) {
		t.Fatalf("got %v, want ErrNoTranscript", err)
	}

	rec, ok := videos.Get("abcdefghijk")
	if !ok {
		t.Fatal("video not registered")
	}
	if rec.Status != models.StatusFailed {
		t.Fatalf("status %q, want failed", rec.Status)
	}

	if ok, _ := index.Has(context.Background(), "abcdefghijk"); ok {
		t.Fatal("failed video must not be indexed")
	}
}

func TestProcessIsIdempotentWhenReady(t *testing.T) {
	videos := store.NewVideoStore()
	index := vectorstore.NewMemoryStore()
	transcripts := &fakeTranscripts{segments: []models.TranscriptSegment{{Text: "some transcript", Start: 0}}}

	ing := newTestIngestor(videos, index, transcripts)

	if _, err := ing.Process(context.Background(), "https://youtu.be/abcdefghijk"); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if _, err := ing.Process(context.Background(), "https://youtu.be/abcdefghijk"); err != nil {
		t.Fatalf("second Process: %v", err)
	}

	if got := transcripts.calls.Load(); got != 1 {
		t.Fatalf("transcript fetched %d times, want 1", got)
	}
}

func TestProcessCoalescesConcurrentRequests(t *testing.T) {
	videos := store.NewVideoStore()
	index := vectorstore.NewMemoryStore()
	transcripts := &fakeTranscripts{
		segments: []models.TranscriptSegment{{Text: "some transcript", Start: 0}},
		delay:    50 * time.Millisecond,
	}

	ing := newTestIngestor(videos, index, transcripts)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := ing.Process(context.Background(), "https://youtu.be/abcdefghijk")
			if err != nil {
				t.Errorf("Process returned error: %v", err)
				return
			}
			if rec.Status != models.StatusReady {
				t.Errorf("status %q, want ready", rec.Status)
			}
		}()
	}
	wg.Wait()

	if got := transcripts.calls.Load(); got != 1 {
		t.Fatalf("transcript fetched %d times for coalesced requests, want 1", got)
	}
}

func TestProcessRejectsBadURL(t *testing.T) {
	videos := store.NewVideoStore()
	ing := newTestIngestor(videos, vectorstore.NewMemoryStore(), &fakeTranscripts{})

	if _, err := ing.Process(context.Background(), "not a url at all"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}
