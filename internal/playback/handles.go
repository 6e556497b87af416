// Package playback keeps the generated audio addressable for the browser and
// tracks the player state around it.
package playback

import (
	"context"
	"sync"

	"github.com/eleven-am/audiogen/internal/shared"
)

const mediaPathPrefix = "/media/"

// Handle is a revocable reference to one audio result, served at URL until
// it is released.
type Handle struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type HandleStore interface {
	Create(ctx context.Context, result *shared.AudioResult) (*Handle, error)
	Get(ctx context.Context, id string) (*shared.AudioResult, error)
	Release(ctx context.Context, id string) error
}

func MediaURL(id string) string {
	return mediaPathPrefix + id
}

func newHandle(result *shared.AudioResult) *Handle {
	id := shared.NewID("media_")
	return &Handle{
		ID:       id,
		URL:      MediaURL(id),
		MIMEType: result.MIMEType,
		Size:     len(result.Data),
	}
}

type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]*shared.AudioResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(map[string]*shared.AudioResult)}
}

func (s *MemoryStore) Create(_ context.Context, result *shared.AudioResult) (*Handle, error) {
	h := newHandle(result)
	s.mu.Lock()
	s.results[h.ID] = result
	s.mu.Unlock()
	return h, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*shared.AudioResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return result, nil
}

func (s *MemoryStore) Release(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.results, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
