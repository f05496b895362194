package core

import (
	"context"

	"ytbrain/internal/models"
)

// EmbeddingProvider turns texts into fixed-dimension vectors. The same
// provider must be used for indexing and for query embedding, otherwise
// similarity scores are meaningless.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion for a system/user prompt pair.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// TranscriptFetcher returns the ordered, timestamped transcript segments for
// a video id. Implementations live at the edge (YouTube); the pipeline only
// sees the segment sequence.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error)
}

// MetadataFetcher resolves title/channel/duration for a video id.
// Metadata is best effort: implementations return a fallback record rather
// than failing ingestion over a missing title.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, videoID string) (*models.VideoRecord, error)
}
