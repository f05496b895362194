package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ytbrain/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Handlers: encode response: %v", err)
	}
}

// writeError maps the pipeline error taxonomy onto HTTP statuses. Errors are
// never flattened into an empty success payload.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNoTranscript):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrIndexNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrGenerationFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": detail})
}
