// Package catalog provides an in-memory track catalog loaded from configuration.
package catalog

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19room/internal/domain/track"
)

// Static is a fixed track catalog. It is safe for concurrent use.
type Static struct {
	tracks []track.Track
	byID   map[string]int

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewStatic creates a catalog from tracks. Later duplicates of an ID are ignored.
func NewStatic(tracks []track.Track) *Static {
	s := &Static{
		tracks: make([]track.Track, 0, len(tracks)),
		byID:   make(map[string]int, len(tracks)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, t := range tracks {
		if _, ok := s.byID[t.ID]; ok || t.ID == "" {
			continue
		}
		s.byID[t.ID] = len(s.tracks)
		s.tracks = append(s.tracks, t)
	}
	return s
}

// Len returns the number of tracks.
func (s *Static) Len() int {
	return len(s.tracks)
}

// GetTrack returns one track.
func (s *Static) GetTrack(_ context.Context, trackID string) (*track.Track, error) {
	i, ok := s.byID[trackID]
	if !ok {
		return nil, errors.Newf("track %s not found", trackID)
	}
	t := s.tracks[i]
	return &t, nil
}

// GetTracks returns the known tracks among ids, in request order.
func (s *Static) GetTracks(_ context.Context, ids []string) ([]track.Track, error) {
	out := make([]track.Track, 0, len(ids))
	for _, id := range ids {
		if i, ok := s.byID[id]; ok {
			out = append(out, s.tracks[i])
		}
	}
	return out, nil
}

// Search matches the query against titles and artists, case-insensitively.
func (s *Static) Search(_ context.Context, query string, limit int) ([]track.Track, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, errors.New("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	out := make([]track.Track, 0, limit)
	for _, t := range s.tracks {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.ArtistName()), q) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Random returns up to count distinct tracks not in exclude.
func (s *Static) Random(count int, exclude map[string]bool) []track.Track {
	if count <= 0 {
		return []track.Track{}
	}

	candidates := make([]track.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		if !exclude[t.ID] {
			candidates = append(candidates, t)
		}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.mu.Unlock()

	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
