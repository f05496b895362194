package youtube

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"ytbrain/internal/core"
	"ytbrain/internal/models"
)

// MetadataClient resolves title/channel/duration through the YouTube Data
// API. Without an API key (or when the call fails) it falls back to a
// placeholder record so ingestion can still proceed on transcript alone.
type MetadataClient struct {
	service *youtubeapi.Service
}

func NewMetadataClient(ctx context.Context, apiKey string) (*MetadataClient, error) {
	if apiKey == "" {
		return &MetadataClient{}, nil
	}
	svc, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &MetadataClient{service: svc}, nil
}

func (c *MetadataClient) FetchMetadata(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	rec := FallbackMetadata(videoID)
	if c.service == nil {
		return rec, nil
	}

	call := c.service.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx)

	response, err := call.Do()
	if err != nil || len(response.Items) == 0 {
		log.Printf("Youtube: metadata fetch failed for %s (using fallback): %v", videoID, err)
		return rec, nil
	}

	item := response.Items[0]
	rec.Title = item.Snippet.Title
	rec.Channel = item.Snippet.ChannelTitle
	rec.DurationSeconds = parseISODuration(item.ContentDetails.Duration)
	if t := item.Snippet.Thumbnails; t != nil {
		if t.Maxres != nil {
			rec.ThumbnailURL = t.Maxres.Url
		} else if t.High != nil {
			rec.ThumbnailURL = t.High.Url
		}
	}
	return rec, nil
}

// FallbackMetadata is what we know about a video without asking anyone:
// its id and the predictable thumbnail URL.
func FallbackMetadata(videoID string) *models.VideoRecord {
	return &models.VideoRecord{
		VideoID:      videoID,
		Title:        "YouTube Video",
		Channel:      "Unknown",
		ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID),
	}
}

// parseISODuration converts the API's ISO-8601 duration ("PT1H2M3S") to
// seconds. Malformed input yields 0.
func parseISODuration(iso string) int {
	s := strings.TrimPrefix(iso, "PT")
	if s == iso {
		return 0
	}
	total := 0
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num += string(r)
		case r == 'H' || r == 'M' || r == 'S':
			n, err := strconv.Atoi(num)
			if err != nil {
				return 0
			}
			switch r {
			case 'H':
				total += n * 3600
			case 'M':
				total += n * 60
			case 'S':
				total += n
			}
			num = ""
		default:
			return 0
		}
	}
	return total
}

var _ core.MetadataFetcher = (*MetadataClient)(nil)
