package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ytbrain/internal/core/game"
	"ytbrain/internal/models"
)

type GameHandler struct {
	quizzes *game.QuizGenerator
	grader  *game.Grader
	maxXP   int
}

func NewGameHandler(quizzes *game.QuizGenerator, grader *game.Grader, maxXP int) *GameHandler {
	return &GameHandler{quizzes: quizzes, grader: grader, maxXP: maxXP}
}

// GetQuestions returns the quiz for a processed video, generating and
// caching it on first request.
func (h *GameHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	quiz, err := h.quizzes.Generate(r.Context(), videoID, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Question{"questions": quiz.Questions})
}

type GradeRequest struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
	Difficulty    string `json:"difficulty"`
}

// GradeAnswer scores a free-text answer on the 0-3 rubric. MCQ answers are
// letter-matched client side and never reach this endpoint.
func (h *GameHandler) GradeAnswer(w http.ResponseWriter, r *http.Request) {
	var req GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.CorrectAnswer) == "" {
		badRequest(w, "question and correct_answer required")
		return
	}

	result, err := h.grader.Grade(r.Context(), req.Question, req.CorrectAnswer, req.UserAnswer, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type CompleteRequest struct {
	VideoID string            `json:"video_id"`
	Results []game.GameResult `json:"results"`
	TotalXP int               `json:"total_xp"`
}

// CompleteGame acknowledges a finished run with level and comprehension.
// Nothing is persisted.
func (h *GameHandler) CompleteGame(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request")
		return
	}
	writeJSON(w, http.StatusOK, game.Complete(req.TotalXP, h.maxXP, req.Results))
}
