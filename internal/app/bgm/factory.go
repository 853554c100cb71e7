package bgm

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19room/internal/infra/config"
)

// Sources are the backends providers draw from. Any of them may be nil when
// no configured provider needs it.
type Sources struct {
	Playlists PlaylistSource
	Random    RandomSource
	Search    TrackSearcher
}

// NewProviderChainFromConfig creates a provider chain from configuration.
func NewProviderChainFromConfig(cfg config.FallbackConfig, src Sources) (*ProviderChain, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("no fallback providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating fallback provider: index=%d type=%s", i+1, pcfg.Type)
		switch pcfg.Type {
		case "playlist":
			provider, err = NewPlaylistProvider(src.Playlists, cfg.CandidateCount, pcfg.Settings)

		case "catalog":
			provider, err = NewCatalogProvider(src.Random)

		case "similar":
			provider, err = NewSimilarProvider(src.Search, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: pcfg.DisplayName,
		})

		zlog.Info().Msgf("registered fallback provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, pcfg.DisplayName)
	}

	return NewProviderChain(cfg.CandidateCount, providers), nil
}
