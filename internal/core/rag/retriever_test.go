package rag_test

import (
	"context"
	"errors"
	"testing"

	"ytbrain/internal/core"
	"ytbrain/internal/core/rag"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
)

// mapEmbedder returns a fixed vector per exact text, and a zero vector for
// anything unknown. Deterministic stand-in for the real provider.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (m mapEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if vec, ok := m.vectors[t]; ok {
			out[i] = vec
		} else {
			out[i] = []float32{0, 0, 0}
		}
	}
	return out, nil
}

// scriptLLM plays back canned responses and counts calls.
type scriptLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptLLM) Generate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func indexedStore(t *testing.T, videoID string) (*vectorstore.MemoryStore, mapEmbedder) {
	t.Helper()
	s := vectorstore.NewMemoryStore()
	err := s.Upsert(context.Background(), videoID, []models.TranscriptChunk{
		{VideoID: videoID, Position: 0, StartTime: 0, Text: "A", Embedding: []float32{1, 0, 0}},
		{VideoID: videoID, Position: 1, StartTime: 30, Text: "B", Embedding: []float32{0, 1, 0}},
		{VideoID: videoID, Position: 2, StartTime: 90, Text: "C", Embedding: []float32{0, 0, 1}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	emb := mapEmbedder{vectors: map[string][]float32{
		"what does B mean": {0.1, 0.9, 0},
	}}
	return s, emb
}

func TestRetrieveRanksMatchingChunkFirst(t *testing.T) {
	s, emb := indexedStore(t, "vid1")
	r := rag.NewRetriever(s, emb, 5, 6)

	results, err := r.Retrieve(context.Background(), "vid1", "what does B mean", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Chunk.Position != 1 {
		t.Fatalf("top result is chunk %d, want 1", results[0].Chunk.Position)
	}
	if results[0].Chunk.StartTime != 30 {
		t.Fatalf("top result starts at %g, want 30", results[0].Chunk.StartTime)
	}
}

func TestRetrieveClampsK(t *testing.T) {
	s, emb := indexedStore(t, "vid1")
	r := rag.NewRetriever(s, emb, 2, 2)

	// k above the cap comes back capped.
	results, err := r.Retrieve(context.Background(), "vid1", "what does B mean", 50)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want capped 2", len(results))
	}

	// k <= 0 selects the default.
	results, err = r.Retrieve(context.Background(), "vid1", "what does B mean", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results for default k, want 2", len(results))
	}
}

func TestRetrieveUnindexedVideo(t *testing.T) {
	r := rag.NewRetriever(vectorstore.NewMemoryStore(), mapEmbedder{}, 5, 6)
	_, err := r.Retrieve(context.Background(), "missing", "anything", 3)
	if !errors.Is(err, core.ErrIndexNotFound) {
		t.Fatalf("got %v, want ErrIndexNotFound", err)
	}
}
