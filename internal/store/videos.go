// Package store holds the per-process video registry: an append-only-by-key
// map from video id to its record, with the status state machine enforced at
// the single write path.
package store

import (
	"fmt"
	"sync"

	"ytbrain/internal/models"
)

type VideoStore struct {
	mu     sync.RWMutex
	videos map[string]models.VideoRecord
}

func NewVideoStore() *VideoStore {
	return &VideoStore{videos: make(map[string]models.VideoRecord)}
}

// Get returns a copy of the record, so callers cannot mutate the registry.
func (s *VideoStore) Get(videoID string) (models.VideoRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.videos[videoID]
	return rec, ok
}

// Put registers a new processing attempt. It replaces any prior record
// wholesale, which is how a re-process of a failed video starts over.
func (s *VideoStore) Put(rec models.VideoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[rec.VideoID] = rec
}

// SetStatus applies the pending -> ready | failed transition. ready and
// failed are terminal for an attempt; anything else is a bug in the caller.
func (s *VideoStore) SetStatus(videoID string, status models.VideoStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.videos[videoID]
	if !ok {
		return fmt.Errorf("video not registered: %s", videoID)
	}
	if rec.Status != models.StatusPending {
		return fmt.Errorf("video %s is %s, cannot transition to %s", videoID, rec.Status, status)
	}
	if status != models.StatusReady && status != models.StatusFailed {
		return fmt.Errorf("invalid transition target %q for video %s", status, videoID)
	}
	rec.Status = status
	s.videos[videoID] = rec
	return nil
}

// UpdateMetadata refreshes the descriptive fields without touching status.
func (s *VideoStore) UpdateMetadata(videoID string, meta models.VideoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.videos[videoID]
	if !ok {
		return
	}
	rec.Title = meta.Title
	rec.Channel = meta.Channel
	rec.ThumbnailURL = meta.ThumbnailURL
	rec.DurationSeconds = meta.DurationSeconds
	s.videos[videoID] = rec
}
