package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"ytbrain/internal/api/handlers"
	"ytbrain/internal/config"
	"ytbrain/internal/core/game"
	"ytbrain/internal/core/ingest"
	"ytbrain/internal/core/rag"
	"ytbrain/internal/store"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, ing *ingest.Ingestor, videos *store.VideoStore, chat *rag.ChatOrchestrator, summaries *rag.SummaryGenerator, quizzes *game.QuizGenerator, grader *game.Grader, maxXP int) *Server {
	videoHandler := handlers.NewVideoHandler(ing, videos, summaries)
	chatHandler := handlers.NewChatHandler(chat)
	gameHandler := handlers.NewGameHandler(quizzes, grader, maxXP)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		// Processing is the one long-running route; everything else gets
		// the short generation timeout.
		api.Group(func(long chi.Router) {
			long.Use(middleware.Timeout(cfg.ProcessTimeout))
			long.Post("/video/process", videoHandler.ProcessVideo)
		})

		api.Group(func(short chi.Router) {
			short.Use(middleware.Timeout(cfg.LLMTimeout))
			short.Get("/video/{id}/status", videoHandler.GetStatus)
			short.Get("/video/{id}/metadata", videoHandler.GetMetadata)
			short.Get("/video/{id}/summary", videoHandler.GetSummary)

			short.Post("/chat", chatHandler.Chat)

			short.Get("/game/{id}/questions", gameHandler.GetQuestions)
			short.Post("/game/grade", gameHandler.GradeAnswer)
			short.Post("/game/complete", gameHandler.CompleteGame)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
