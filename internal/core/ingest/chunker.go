package ingest

import (
	"strings"

	"ytbrain/internal/models"
)

// SplitSegments groups timestamped transcript segments into overlapping
// chunks of roughly targetChars characters. A chunk's StartTime is the start
// of the first segment that contributed to it; positions are contiguous from
// zero. overlapFrac (0..0.5) of the target size is carried over from the tail
// of one chunk into the next so context survives the boundary.
//
// An empty or whitespace-only transcript yields an empty slice; the caller
// decides that the video is ineligible.
func SplitSegments(videoID string, segments []models.TranscriptSegment, targetChars int, overlapFrac float64) []models.TranscriptChunk {
	if targetChars < 1 {
		targetChars = 1
	}
	if overlapFrac < 0 {
		overlapFrac = 0
	}
	if overlapFrac > 0.5 {
		overlapFrac = 0.5
	}
	overlapChars := int(float64(targetChars) * overlapFrac)

	var (
		chunks   []models.TranscriptChunk
		buf      []models.TranscriptSegment
		charSum  int
		hasFresh bool // buf holds content not yet emitted in a chunk
	)

	flush := func() {
		if len(buf) == 0 || !hasFresh {
			return
		}
		texts := make([]string, 0, len(buf))
		for _, seg := range buf {
			texts = append(texts, seg.Text)
		}
		chunks = append(chunks, models.TranscriptChunk{
			VideoID:   videoID,
			Position:  len(chunks),
			StartTime: buf[0].Start,
			Text:      strings.Join(texts, " "),
		})

		// Seed the next chunk with the tail whose char sum is about the
		// configured overlap. Never keep the whole buffer, otherwise the
		// same chunk would be emitted again.
		var keep []models.TranscriptSegment
		if overlapChars > 0 {
			remain := overlapChars
			for j := len(buf) - 1; j >= 0 && remain > 0; j-- {
				keep = append([]models.TranscriptSegment{buf[j]}, keep...)
				remain -= len(buf[j].Text)
			}
			if len(keep) == len(buf) {
				keep = keep[1:]
			}
		}
		buf = keep
		charSum = 0
		for _, seg := range buf {
			charSum += len(seg.Text)
		}
		hasFresh = false
	}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		buf = append(buf, models.TranscriptSegment{Text: text, Start: seg.Start})
		charSum += len(text)
		hasFresh = true

		if charSum >= targetChars {
			flush()
		}
	}

	// Whatever fresh content remains becomes the final chunk.
	flush()

	return chunks
}
