package llm

import (
	"context"
	"sync"

	"ytbrain/internal/core"
)

// CachedEmbedder memoizes embeddings by exact text, so the same text is
// never embedded twice. The cache is unbounded; with one quiz-sized video
// per process run that is a few hundred entries at most.
type CachedEmbedder struct {
	inner core.EmbeddingProvider

	mu    sync.RWMutex
	cache map[string][]float32
}

func NewCachedEmbedder(inner core.EmbeddingProvider) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	c.mu.RLock()
	for i, t := range texts {
		if vec, ok := c.cache[t]; ok {
			out[i] = vec
		} else {
			missing = append(missing, t)
			missingIdx = append(missingIdx, i)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for j, vec := range vecs {
		if j < len(missingIdx) {
			out[missingIdx[j]] = vec
			c.cache[missing[j]] = vec
		}
	}
	c.mu.Unlock()

	return out, nil
}

var _ core.EmbeddingProvider = (*CachedEmbedder)(nil)
