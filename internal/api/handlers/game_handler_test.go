package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"ytbrain/internal/api/handlers"
	"ytbrain/internal/cache"
	"ytbrain/internal/core/game"
	"ytbrain/internal/core/vectorstore"
	"ytbrain/internal/models"
	"ytbrain/internal/store"
)

type stubLLM struct {
	response string
}

func (s stubLLM) Generate(_ context.Context, _, _ string) (string, error) {
	return s.response, nil
}

func newGameHandler(llm stubLLM) *handlers.GameHandler {
	xp := game.XPConfig{Easy: 10, Medium: 20, Hard: 30}
	quizzes := game.NewQuizGenerator(store.NewVideoStore(), vectorstore.NewMemoryStore(), llm, 15, 1, cache.New[models.Quiz](time.Hour))
	grader := game.NewGrader(llm, xp, 1)
	return handlers.NewGameHandler(quizzes, grader, game.MaxQuizXP(15, xp))
}

func TestGradeAnswerExactMatch(t *testing.T) {
	h := newGameHandler(stubLLM{})

	body := `{"question": "What is A?", "correct_answer": "The first topic", "user_answer": "the first topic", "difficulty": "hard"}`
	req := httptest.NewRequest(http.MethodPost, "/api/game/grade", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.GradeAnswer(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var result models.GradingResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Score != 3 {
		t.Fatalf("score %d, want 3", result.Score)
	}
	if result.XPEarned != 30 {
		t.Fatalf("xp %d, want full hard reward 30", result.XPEarned)
	}
}

func TestGradeAnswerRequiresFields(t *testing.T) {
	h := newGameHandler(stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/game/grade", strings.NewReader(`{"user_answer": "x"}`))
	rec := httptest.NewRecorder()
	h.GradeAnswer(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestGradeAnswerRejectsBadJSON(t *testing.T) {
	h := newGameHandler(stubLLM{})

	req := httptest.NewRequest(http.MethodPost, "/api/game/grade", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.GradeAnswer(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestCompleteGame(t *testing.T) {
	h := newGameHandler(stubLLM{})

	body := `{"video_id": "vid1", "total_xp": 150, "results": [
	  {"id": 1, "correct": false, "difficulty": "hard"},
	  {"id": 2, "correct": true, "difficulty": "easy"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/api/game/complete", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CompleteGame(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var completion models.GameCompletion
	if err := json.NewDecoder(rec.Body).Decode(&completion); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if completion.Level != "Analyst" {
		t.Fatalf("level %q, want Analyst at 150 XP", completion.Level)
	}
	if completion.ComprehensionScore != 50 {
		t.Fatalf("comprehension %g, want 50 of max 300", completion.ComprehensionScore)
	}
	if completion.WeakestConcept != "hard questions" {
		t.Fatalf("weakest %q, want hard questions", completion.WeakestConcept)
	}
}

func TestGetQuestionsUnknownVideo(t *testing.T) {
	h := newGameHandler(stubLLM{})

	r := chi.NewRouter()
	r.Get("/api/game/{id}/questions", h.GetQuestions)

	req := httptest.NewRequest(http.MethodGet, "/api/game/never-processed/questions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
