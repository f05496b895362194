package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ytbrain/internal/core"
	"ytbrain/internal/models"
)

// MemoryStore is the default per-process store: a registry from video id to
// an immutable chunk slice. Upsert builds a fresh copy and swaps it in under
// the lock, so readers holding a slice from a previous lookup keep seeing a
// complete, consistent index.
type MemoryStore struct {
	mu     sync.RWMutex
	videos map[string][]models.TranscriptChunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{videos: make(map[string][]models.TranscriptChunk)}
}

func (m *MemoryStore) Upsert(ctx context.Context, videoID string, chunks []models.TranscriptChunk) error {
	cp := make([]models.TranscriptChunk, len(chunks))
	copy(cp, chunks)

	m.mu.Lock()
	m.videos[videoID] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) snapshot(videoID string) ([]models.TranscriptChunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunks, ok := m.videos[videoID]
	return chunks, ok
}

func (m *MemoryStore) Search(ctx context.Context, videoID string, queryVec []float32, k int) ([]models.RetrievalResult, error) {
	chunks, ok := m.snapshot(videoID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, videoID)
	}
	if k <= 0 || len(chunks) == 0 {
		return nil, nil
	}

	results := make([]models.RetrievalResult, 0, len(chunks))
	for _, ch := range chunks {
		results = append(results, models.RetrievalResult{
			Chunk: ch,
			Score: CosineSimilarity(queryVec, ch.Embedding),
		})
	}

	// Descending score; equal scores resolve to the earliest chunk in the
	// video so results are deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (m *MemoryStore) Chunks(ctx context.Context, videoID string) ([]models.TranscriptChunk, error) {
	chunks, ok := m.snapshot(videoID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrIndexNotFound, videoID)
	}
	return chunks, nil
}

func (m *MemoryStore) Has(ctx context.Context, videoID string) (bool, error) {
	_, ok := m.snapshot(videoID)
	return ok, nil
}

func (m *MemoryStore) Close() error { return nil }

var _ VectorStore = (*MemoryStore)(nil)
