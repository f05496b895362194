package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytbrain/internal/core"
	"ytbrain/internal/models"
)

// TranscriptClient fetches auto or manual captions through YouTube's
// timedtext endpoint (json3 format). It tries the caller-preferred language
// first and falls back to English auto-captions.
type TranscriptClient struct {
	httpClient *http.Client
	languages  []string
}

func NewTranscriptClient(languages ...string) *TranscriptClient {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TranscriptClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		languages:  languages,
	}
}

// timedtext json3 payload: a list of events, each with a start offset in
// milliseconds and utf8 text segments.
type timedtextResponse struct {
	Events []struct {
		TStartMs int64 `json:"tStartMs"`
		Segs     []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func (c *TranscriptClient) FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	var lastErr error
	for _, lang := range c.languages {
		// Manual captions first, then ASR.
		for _, kind := range []string{"", "asr"} {
			segments, err := c.fetchTimedtext(ctx, videoID, lang, kind)
			if err != nil {
				lastErr = err
				continue
			}
			if len(segments) > 0 {
				return segments, nil
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrNoTranscript, lastErr)
	}
	return nil, fmt.Errorf("%w: video %s has no captions", core.ErrNoTranscript, videoID)
}

func (c *TranscriptClient) fetchTimedtext(ctx context.Context, videoID, lang, kind string) ([]models.TranscriptSegment, error) {
	u := fmt.Sprintf("https://www.youtube.com/api/timedtext?v=%s&lang=%s&fmt=json3", videoID, lang)
	if kind != "" {
		u += "&kind=" + kind
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timedtext status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	var tt timedtextResponse
	if err := json.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("timedtext parse: %w", err)
	}

	segments := make([]models.TranscriptSegment, 0, len(tt.Events))
	for _, ev := range tt.Events {
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		segments = append(segments, models.TranscriptSegment{
			Text:  text,
			Start: float64(ev.TStartMs) / 1000,
		})
	}
	return segments, nil
}

var _ core.TranscriptFetcher = (*TranscriptClient)(nil)
