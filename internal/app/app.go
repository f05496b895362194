package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"ytbrain/internal/cache"
	"ytbrain/internal/config"
	"ytbrain/internal/core"
	"ytbrain/internal/core/game"
	"ytbrain/internal/core/ingest"
	"ytbrain/internal/core/llm"
	"ytbrain/internal/core/rag"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/core/youtube"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

// App wires the pipeline together: stores, providers, ingestion, and the
// HTTP server on top.
type App struct {
	Index  vectorstore.VectorStore
	Videos *store.VideoStore
	Server *Server

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{Videos: store.NewVideoStore()}

	index, err := newVectorStore(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.Index = index
	a.closers = append(a.closers, index.Close)
	log.Printf("Vector store initialized (%s).", cfg.VectorStore)

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}
	a.closers = append(a.closers, geminiEmbedder.Close)
	embedder := llm.NewCachedEmbedder(geminiEmbedder)

	provider, err := newLLMProvider(appCtx, cfg, a)
	if err != nil {
		return nil, err
	}

	metadata, err := youtube.NewMetadataClient(appCtx, cfg.YouTubeAPIKey)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the youtube client, %w", err)
	}
	transcripts := youtube.NewTranscriptClient("en")

	ingestor := ingest.NewIngestor(a.Videos, index, embedder, transcripts, metadata, &ingest.Config{
		TargetChars: cfg.ChunkTargetChars,
		OverlapFrac: cfg.ChunkOverlapFrac,
		BatchSize:   cfg.EmbedBatchSize,
		Timeout:     cfg.ProcessTimeout,
	})

	retriever := rag.NewRetriever(index, embedder, cfg.RetrieveK, cfg.RetrieveMaxK)
	chat := rag.NewChatOrchestrator(retriever, provider, cfg.MinScore, cfg.HistoryMaxTurns)
	summaries := rag.NewSummaryGenerator(a.Videos, index, provider, cfg.GenRetries,
		cache.New[models.SummaryRecord](cfg.CacheTTL))

	xp := game.XPConfig{Easy: cfg.XPEasy, Medium: cfg.XPMedium, Hard: cfg.XPHard}
	quizzes := game.NewQuizGenerator(a.Videos, index, provider, cfg.QuizSize, cfg.GenRetries,
		cache.New[models.Quiz](cfg.CacheTTL))
	grader := game.NewGrader(provider, xp, cfg.GenRetries)

	a.Server = NewServer(cfg, ingestor, a.Videos, chat, summaries, quizzes, grader,
		game.MaxQuizXP(cfg.QuizSize, xp))

	return a, nil
}

func newVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, error) {
	switch cfg.VectorStore {
	case "", "memory":
		return vectorstore.NewMemoryStore(), nil
	case "postgres":
		return vectorstore.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown VECTOR_STORE %q", cfg.VectorStore)
	}
}

func newLLMProvider(ctx context.Context, cfg *config.Config, a *App) (core.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "", "gemini":
		g, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case "openai":
		return llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func (a *App) Close() {
	for _, closeFn := range a.closers {
		_ = closeFn()
	}
}
