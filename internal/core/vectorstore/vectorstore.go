package vectorstore

import (
	"context"
	"math"

	"ytbrain/internal/models"
)

// VectorStore keeps one similarity index per video id.
//
// Upsert replaces the whole chunk set for a video atomically: concurrent
// readers see either the previous complete set or the new complete set,
// never a mix. Search and Chunks return core.ErrIndexNotFound for a video
// that was never indexed.
type VectorStore interface {
	Upsert(ctx context.Context, videoID string, chunks []models.TranscriptChunk) error
	Search(ctx context.Context, videoID string, queryVec []float32, k int) ([]models.RetrievalResult, error)
	Chunks(ctx context.Context, videoID string) ([]models.TranscriptChunk, error)
	Has(ctx context.Context, videoID string) (bool, error)
	Close() error
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 if
// either vector has zero norm or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
