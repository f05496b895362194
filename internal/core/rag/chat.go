package rag

import (
	"context"
	"fmt"
	"strings"

	"ytbrain/internal/core"
	"ytbrain/internal/models"
)

const chatSystemPrompt = `You are a helpful assistant that has studied one specific video and answers questions about it.

RULES:
- Answer ONLY from the provided video sections. Do not bring in outside knowledge.
- If the sections do not contain enough information to answer, say so plainly instead of guessing.
- State facts directly; do not mention "the transcript", "the sections", or "the context".
- Do not include timestamps in your answer; citations are rendered separately.`

// InsufficientContextAnswer is returned without calling the model when
// retrieval comes back empty or below the confidence threshold.
const InsufficientContextAnswer = "I couldn't find anything in this video that answers that. Try rephrasing, or ask about something the video actually covers."

const maxSourceSnippet = 200

// ChatOrchestrator produces grounded, cited answers. It keeps no state
// between calls; conversation memory is whatever history the caller sends.
type ChatOrchestrator struct {
	retriever *Retriever
	llm       core.LLMProvider
	minScore  float64
	maxTurns  int
}

func NewChatOrchestrator(retriever *Retriever, llm core.LLMProvider, minScore float64, maxTurns int) *ChatOrchestrator {
	if maxTurns < 1 {
		maxTurns = 6
	}
	return &ChatOrchestrator{retriever: retriever, llm: llm, minScore: minScore, maxTurns: maxTurns}
}

// Ask retrieves grounding context for the message, asks the model to answer
// from that context only, and returns the answer together with the exact
// retrieval set it used. Returns core.ErrIndexNotFound for unprocessed
// videos and core.ErrGenerationFailed when the model call fails.
func (c *ChatOrchestrator) Ask(ctx context.Context, videoID, message string, history []models.ChatTurn) (*models.ChatAnswer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("empty message")
	}

	results, err := c.retriever.Retrieve(ctx, videoID, message, 0)
	if err != nil {
		return nil, err
	}

	// Low-confidence retrieval gets the explicit decline, never a made-up
	// answer.
	if len(results) == 0 || results[0].Score < c.minScore {
		return &models.ChatAnswer{Answer: InsufficientContextAnswer, Sources: []models.Source{}}, nil
	}

	answer, err := c.llm.Generate(ctx, chatSystemPrompt, buildChatPrompt(message, TrimHistory(history, c.maxTurns), results))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrGenerationFailed, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, fmt.Errorf("%w: model returned empty answer", core.ErrGenerationFailed)
	}

	return &models.ChatAnswer{Answer: answer, Sources: sourcesFrom(results)}, nil
}

// TrimHistory keeps the most recent max turns. It is a pure function of the
// caller-supplied history; nothing is retained server side.
func TrimHistory(history []models.ChatTurn, max int) []models.ChatTurn {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

func buildChatPrompt(message string, history []models.ChatTurn, results []models.RetrievalResult) string {
	var b strings.Builder

	b.WriteString("VIDEO SECTIONS:\n")
	for _, res := range results {
		fmt.Fprintf(&b, "[%ds] %s\n---\n", int(res.Chunk.StartTime), res.Chunk.Text)
	}

	if len(history) > 0 {
		b.WriteString("\nCONVERSATION SO FAR:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\nQUESTION: %s\n", message)
	return b.String()
}

func sourcesFrom(results []models.RetrievalResult) []models.Source {
	sources := make([]models.Source, 0, len(results))
	for _, res := range results {
		text := res.Chunk.Text
		if len(text) > maxSourceSnippet {
			text = text[:maxSourceSnippet] + "..."
		}
		sources = append(sources, models.Source{Text: text, StartTime: res.Chunk.StartTime})
	}
	return sources
}
