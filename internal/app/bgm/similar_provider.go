package bgm

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/19room/internal/domain/track"
	"github.com/osa030/19room/internal/infra/lastfm"
)

// SimilarSource finds tracks related to a seed. Implemented by *lastfm.Client.
type SimilarSource interface {
	GetSimilarTracks(ctx context.Context, trackName, artistName string, limit int) ([]lastfm.TrackRef, error)
	GetChartTopTracks(ctx context.Context, limit int) ([]lastfm.TrackRef, error)
}

// TrackSearcher resolves names to catalog tracks.
type TrackSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]track.Track, error)
}

type SimilarProviderConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	SeedTrackCount int    `yaml:"seed_track_count" mapstructure:"seed_track_count" default:"3" validate:"gte=1,lte=10"`
	PerSeed        int    `yaml:"per_seed" mapstructure:"per_seed" default:"10" validate:"gte=1,lte=100"`
}

// SimilarProvider asks Last.fm for tracks similar to what the room played
// recently and keeps those the catalog knows. Without seeds it falls back to
// the global chart.
type SimilarProvider struct {
	source SimilarSource
	search TrackSearcher
	config *SimilarProviderConfig

	mu       sync.RWMutex
	resolved map[lastfm.TrackRef]*track.Track // nil caches a miss
}

// NewSimilarProvider creates a SimilarProvider backed by the Last.fm API.
func NewSimilarProvider(search TrackSearcher, settings map[string]any) (*SimilarProvider, error) {
	config, err := decodeSimilarConfig(settings)
	if err != nil {
		return nil, err
	}
	client, err := lastfm.New(lastfm.Config{APIKey: config.APIKey})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create last.fm client")
	}
	return newSimilarProvider(client, search, config)
}

func newSimilarProvider(source SimilarSource, search TrackSearcher, config *SimilarProviderConfig) (*SimilarProvider, error) {
	if search == nil {
		return nil, errors.New("similar provider requires a track catalog")
	}
	return &SimilarProvider{
		source:   source,
		search:   search,
		config:   config,
		resolved: make(map[lastfm.TrackRef]*track.Track),
	}, nil
}

func decodeSimilarConfig(settings map[string]any) (*SimilarProviderConfig, error) {
	var config SimilarProviderConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&config); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}
	return &config, nil
}

// GetCandidates returns catalog tracks similar to the most recent seeds.
// Seeds are ordered most recent first.
func (p *SimilarProvider) GetCandidates(ctx context.Context, count int, seedTracks []track.Track, excludeIDs map[string]bool) ([]track.Track, error) {
	if count <= 0 {
		return []track.Track{}, nil
	}

	if len(seedTracks) > p.config.SeedTrackCount {
		seedTracks = seedTracks[:p.config.SeedTrackCount]
	}

	var refs []lastfm.TrackRef
	for _, seed := range seedTracks {
		if seed.MainArtist() == "" {
			continue
		}
		similar, err := p.source.GetSimilarTracks(ctx, seed.Title, seed.MainArtist(), p.config.PerSeed)
		if err != nil {
			// One bad seed should not cost the others
			continue
		}
		refs = append(refs, similar...)
	}

	if len(refs) == 0 {
		chart, err := p.source.GetChartTopTracks(ctx, count*4)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get chart top tracks")
		}
		refs = chart
	}

	out := make([]track.Track, 0, count)
	seen := make(map[string]bool)
	for _, ref := range refs {
		if len(out) == count {
			break
		}
		t := p.resolve(ctx, ref)
		if t == nil || excludeIDs[t.ID] || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, *t)
	}
	return out, nil
}

// resolve finds the catalog track matching ref by title and artist.
func (p *SimilarProvider) resolve(ctx context.Context, ref lastfm.TrackRef) *track.Track {
	p.mu.RLock()
	cached, ok := p.resolved[ref]
	p.mu.RUnlock()
	if ok {
		return cached
	}

	var found *track.Track
	results, err := p.search.Search(ctx, ref.Name, 10)
	if err == nil {
		for i := range results {
			if strings.EqualFold(results[i].Title, ref.Name) && hasArtist(results[i], ref.Artist) {
				found = &results[i]
				break
			}
		}
	} else if ctx.Err() != nil {
		// Do not cache a miss caused by cancellation
		return nil
	}

	p.mu.Lock()
	p.resolved[ref] = found
	p.mu.Unlock()
	return found
}

func hasArtist(t track.Track, artist string) bool {
	for _, a := range t.Artists {
		if strings.EqualFold(a, artist) {
			return true
		}
	}
	return false
}

// Name returns the provider name.
func (p *SimilarProvider) Name() string {
	return "similar"
}
