package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"ytbrain/internal/core/rag"
	"ytbrain/internal/models"
)

type ChatHandler struct {
	orchestrator *rag.ChatOrchestrator
}

func NewChatHandler(orch *rag.ChatOrchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orch}
}

type ChatRequest struct {
	VideoID string            `json:"video_id"`
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history"`
}

// Chat answers a question about one video, grounded in retrieved transcript
// chunks, and returns the citations that back the answer.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	req.VideoID = strings.TrimSpace(req.VideoID)
	req.Message = strings.TrimSpace(req.Message)
	if req.VideoID == "" || req.Message == "" {
		badRequest(w, "video_id and message required")
		return
	}

	answer, err := h.orchestrator.Ask(r.Context(), req.VideoID, req.Message, req.History)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}
