package bgm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19room/internal/domain/track"
)

type PlaylistProviderConfig struct {
	PlaylistURL string `yaml:"playlist_url" mapstructure:"playlist_url" validate:"required"`
}

// PlaylistProvider provides fallback tracks by randomly sampling a configured playlist.
// Sampled tracks not handed out yet are cached for the next call.
// Rooms share one provider, so the cache is guarded.
type PlaylistProvider struct {
	source         PlaylistSource
	candidateCount int // Target cache size
	config         *PlaylistProviderConfig

	mu    sync.Mutex
	cache []track.Track
}

// NewPlaylistProvider creates a new PlaylistProvider.
func NewPlaylistProvider(source PlaylistSource, candidateCount int, settings map[string]any) (*PlaylistProvider, error) {
	if source == nil {
		return nil, errors.New("playlist provider requires a playlist source")
	}

	var config PlaylistProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		zlog.Error().Err(err).Msg("playlist provider validation failed")
		return nil, errors.Wrap(err, "validation failed")
	}
	return &PlaylistProvider{
		source:         source,
		candidateCount: candidateCount,
		config:         &config,
	}, nil
}

// GetCandidates returns random playlist tracks not in excludeIDs.
func (p *PlaylistProvider) GetCandidates(ctx context.Context, count int, _ []track.Track, excludeIDs map[string]bool) ([]track.Track, error) {
	if count <= 0 {
		return []track.Track{}, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	available := make([]track.Track, 0, len(p.cache))
	for _, t := range p.cache {
		if !excludeIDs[t.ID] {
			available = append(available, t)
		}
	}

	if len(available) < count {
		needed := p.candidateCount - len(available)
		if needed < count {
			needed = count
		}
		fetched, err := p.source.GetPlaylistTracksRandom(ctx, p.config.PlaylistURL, needed)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get random tracks from playlist")
		}
		for _, t := range fetched {
			if !excludeIDs[t.ID] && !contains(available, t.ID) {
				available = append(available, t)
			}
		}
	}

	n := count
	if n > len(available) {
		n = len(available)
	}
	result := available[:n]
	p.cache = available[n:]

	return result, nil
}

// Name returns the provider name.
func (p *PlaylistProvider) Name() string {
	return "playlist"
}

// contains checks if a track ID is in the slice.
func contains(tracks []track.Track, id string) bool {
	for _, t := range tracks {
		if t.ID == id {
			return true
		}
	}
	return false
}
