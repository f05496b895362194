package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ytbrain/internal/core"
)

// GenerateJSON asks the provider for a JSON document and decodes it into out.
// Models routinely wrap JSON in markdown fences or return something that
// fails to parse; both cases are retried up to maxRetries times with a small
// backoff. A transport error is retried too. After the last attempt the
// error wraps core.ErrGenerationFailed.
func GenerateJSON(ctx context.Context, provider core.LLMProvider, systemPrompt, userPrompt string, maxRetries int, out any) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", core.ErrGenerationFailed, ctx.Err())
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		raw, err := provider.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			continue
		}

		cleaned := StripFences(raw)
		if cleaned == "" {
			lastErr = fmt.Errorf("empty model response")
			continue
		}
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			lastErr = fmt.Errorf("parse model JSON: %w", err)
			continue
		}
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %v", core.ErrGenerationFailed, maxRetries, lastErr)
}

// StripFences removes a surrounding markdown code fence and trims to the
// outermost JSON object or array, if one is present.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	// Models sometimes prepend prose before the JSON body.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return ""
	}
	return s[start : end+1]
}
