// Package bgm provides fallback track providers used to refill an empty room queue.
package bgm

import (
	"context"

	"github.com/osa030/19room/internal/domain/track"
)

// Provider is the interface for fallback track providers.
type Provider interface {
	// GetCandidates retrieves fallback candidates.
	// count: the number of candidates to retrieve
	// seedTracks: recently played tracks of the room
	// excludeIDs: tracks already in the room (current track and queue)
	GetCandidates(ctx context.Context, count int, seedTracks []track.Track, excludeIDs map[string]bool) ([]track.Track, error)

	// Name returns the provider type (used in config).
	Name() string
}

// PlaylistSource samples tracks from a playlist.
type PlaylistSource interface {
	GetPlaylistTracksRandom(ctx context.Context, playlistURL string, count int) ([]track.Track, error)
}

// RandomSource samples tracks from a local catalog.
type RandomSource interface {
	Random(count int, exclude map[string]bool) []track.Track
}
