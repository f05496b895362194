package rag

import (
	"context"
	"fmt"

	"ytbrain/internal/core"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
)

// Retriever embeds a query with the same provider used at indexing time and
// returns the top-k chunks of one video, best first.
type Retriever struct {
	index    vectorstore.VectorStore
	embedder core.EmbeddingProvider
	defaultK int
	maxK     int
}

func NewRetriever(index vectorstore.VectorStore, emb core.EmbeddingProvider, defaultK, maxK int) *Retriever {
	if defaultK < 1 {
		defaultK = 5
	}
	if maxK < defaultK {
		maxK = defaultK
	}
	return &Retriever{index: index, embedder: emb, defaultK: defaultK, maxK: maxK}
}

// Retrieve returns up to k results for the query, scored by cosine
// similarity, ties broken by earliest position in the video. k <= 0 selects
// the default; k is capped so prompts stay small.
func (r *Retriever) Retrieve(ctx context.Context, videoID, query string, k int) ([]models.RetrievalResult, error) {
	if k <= 0 {
		k = r.defaultK
	}
	if k > r.maxK {
		k = r.maxK
	}

	vecs, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed query: provider returned no vector")
	}

	return r.index.Search(ctx, videoID, vecs[0], k)
}
