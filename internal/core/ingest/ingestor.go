package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ytbrain/internal/core"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/core/youtube"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

// Config tunes the ingestion pipeline.
//
// TargetChars:  approximate characters per chunk.
// OverlapFrac:  fraction of the chunk size carried into the next chunk.
// BatchSize:    chunks embedded per provider call.
// Timeout:      upper bound for one full processing attempt.
type Config struct {
	TargetChars int
	OverlapFrac float64
	BatchSize   int
	Timeout     time.Duration
}

// Ingestor runs the transcript -> chunks -> embeddings -> index pipeline.
// Concurrent Process calls for the same video id are coalesced into a single
// run; different ids proceed in parallel.
type Ingestor struct {
	videos      *store.VideoStore
	index       vectorstore.VectorStore
	embedder    core.EmbeddingProvider
	transcripts core.TranscriptFetcher
	metadata    core.MetadataFetcher
	cfg         *Config

	group singleflight.Group
}

func NewIngestor(videos *store.VideoStore, index vectorstore.VectorStore, emb core.EmbeddingProvider, tf core.TranscriptFetcher, mf core.MetadataFetcher, cfg *Config) *Ingestor {
	return &Ingestor{
		videos:      videos,
		index:       index,
		embedder:    emb,
		transcripts: tf,
		metadata:    mf,
		cfg:         cfg,
	}
}

// Process ingests the video behind rawURL and returns its record. Already
// processed videos return immediately. The pipeline itself runs on a
// detached context bounded by cfg.Timeout, so an abandoned caller does not
// kill the run its coalesced peers are waiting on.
func (i *Ingestor) Process(ctx context.Context, rawURL string) (*models.VideoRecord, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	if rec, ok := i.videos.Get(videoID); ok && rec.Status == models.StatusReady {
		return &rec, nil
	}

	ch := i.group.DoChan(videoID, func() (any, error) {
		return i.processOne(videoID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rec := res.Val.(models.VideoRecord)
		return &rec, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (i *Ingestor) processOne(videoID string) (models.VideoRecord, error) {
	procCtx, cancel := context.WithTimeout(context.Background(), i.cfg.Timeout)
	defer cancel()

	// A coalesced peer may have finished this while we queued.
	if rec, ok := i.videos.Get(videoID); ok && rec.Status == models.StatusReady {
		return rec, nil
	}

	attemptID := uuid.NewString()
	log.Printf("Ingestor: processing video %s (attempt %s)", videoID, attemptID)

	rec := youtube.FallbackMetadata(videoID)
	rec.Status = models.StatusPending
	i.videos.Put(*rec)

	// Metadata is best effort; transcript is the actual payload.
	if meta, err := i.metadata.FetchMetadata(procCtx, videoID); err == nil && meta != nil {
		i.videos.UpdateMetadata(videoID, *meta)
	}

	segments, err := i.transcripts.FetchTranscript(procCtx, videoID)
	if err != nil {
		return i.fail(videoID, attemptID, fmt.Errorf("fetch transcript: %w", err))
	}

	chunks := SplitSegments(videoID, segments, i.cfg.TargetChars, i.cfg.OverlapFrac)
	if len(chunks) == 0 {
		return i.fail(videoID, attemptID, fmt.Errorf("%w: transcript for %s is empty", core.ErrNoTranscript, videoID))
	}

	if err := i.embedChunks(procCtx, chunks); err != nil {
		return i.fail(videoID, attemptID, err)
	}

	if err := i.index.Upsert(procCtx, videoID, chunks); err != nil {
		return i.fail(videoID, attemptID, fmt.Errorf("index chunks: %w", err))
	}

	if err := i.videos.SetStatus(videoID, models.StatusReady); err != nil {
		return models.VideoRecord{}, err
	}

	log.Printf("Ingestor: video %s ready, %d chunks (attempt %s)", videoID, len(chunks), attemptID)
	out, _ := i.videos.Get(videoID)
	return out, nil
}

// embedChunks fills in chunk embeddings, batched, with bounded parallelism.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []models.TranscriptChunk) error {
	batch := i.cfg.BatchSize
	if batch < 1 {
		batch = 16
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(chunks); start += batch {
		start := start
		end := min(start+batch, len(chunks))

		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, ch := range chunks[start:end] {
				texts = append(texts, ch.Text)
			}
			vecs, err := i.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d..%d: %w", start, end-1, err)
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embed chunks %d..%d: got %d vectors for %d texts", start, end-1, len(vecs), end-start)
			}
			for j, vec := range vecs {
				chunks[start+j].Embedding = vec
			}
			return nil
		})
	}

	return g.Wait()
}

func (i *Ingestor) fail(videoID, attemptID string, cause error) (models.VideoRecord, error) {
	if err := i.videos.SetStatus(videoID, models.StatusFailed); err != nil {
		log.Printf("Ingestor: could not mark %s failed: %v", videoID, err)
	}
	if errors.Is(cause, core.ErrNoTranscript) {
		log.Printf("Ingestor: video %s has no usable transcript (attempt %s)", videoID, attemptID)
	} else {
		log.Printf("Ingestor: processing video %s failed (attempt %s): %v", videoID, attemptID, cause)
	}
	return models.VideoRecord{}, cause
}
