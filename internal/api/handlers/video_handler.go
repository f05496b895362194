package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ytbrain/internal/core/ingest"
	"ytbrain/internal/core/rag"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

type VideoHandler struct {
	ingestor  *ingest.Ingestor
	videos    *store.VideoStore
	summaries *rag.SummaryGenerator
}

func NewVideoHandler(ing *ingest.Ingestor, videos *store.VideoStore, summaries *rag.SummaryGenerator) *VideoHandler {
	return &VideoHandler{ingestor: ing, videos: videos, summaries: summaries}
}

type ProcessRequest struct {
	URL string `json:"url"`
}

// ProcessVideo ingests a video end to end and returns its record. The call
// is synchronous and long-running; concurrent requests for the same video
// share one pipeline run.
func (h *VideoHandler) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		badRequest(w, "url is required")
		return
	}

	rec, err := h.ingestor.Process(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *VideoHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	rec, ok := h.videos.Get(videoID)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "unknown"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.VideoStatus{"status": rec.Status})
}

func (h *VideoHandler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	rec, ok := h.videos.Get(videoID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "video not found"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *VideoHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	summary, err := h.summaries.Summarize(r.Context(), videoID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
