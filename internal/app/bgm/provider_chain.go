package bgm

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19room/internal/domain/track"
)

// ErrNoCandidates is returned when no provider produced a candidate.
var ErrNoCandidates = errors.New("all providers failed to return candidates")

// CandidateWithSource represents a track candidate with its source provider info.
type CandidateWithSource struct {
	Track       track.Track
	DisplayName string
}

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain asks every provider in order and merges their candidates.
type ProviderChain struct {
	providers      []ProviderWithMetadata
	candidateCount int
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(candidateCount int, providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers:      providers,
		candidateCount: candidateCount,
	}
}

// CandidateCount returns how many candidates a refill asks each provider for.
func (c *ProviderChain) CandidateCount() int {
	return c.candidateCount
}

// GetCandidates retrieves candidates from all providers.
// A track returned by an earlier provider is excluded from later ones.
func (c *ProviderChain) GetCandidates(ctx context.Context, count int, seedTracks []track.Track, excludeIDs map[string]bool) ([]CandidateWithSource, error) {
	var all []CandidateWithSource
	exclude := make(map[string]bool, len(excludeIDs))
	for k, v := range excludeIDs {
		exclude[k] = v
	}

	for i, pm := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "fallback refill cancelled")
		}
		zlog.Debug().Int("index", i+1).Int("total", len(c.providers)).
			Str("provider", pm.DisplayName).Str("provider_type", pm.Provider.Name()).
			Msg("trying fallback provider")

		candidates, err := pm.Provider.GetCandidates(ctx, count, seedTracks, exclude)
		if err != nil {
			zlog.Warn().Err(err).Str("provider", pm.DisplayName).Msg("fallback provider failed, trying next")
			continue
		}
		if len(candidates) == 0 {
			zlog.Debug().Str("provider", pm.DisplayName).Msg("fallback provider returned no candidates")
			continue
		}

		for _, t := range candidates {
			if exclude[t.ID] {
				continue
			}
			all = append(all, CandidateWithSource{Track: t, DisplayName: pm.DisplayName})
			exclude[t.ID] = true
		}

		zlog.Info().Str("provider", pm.DisplayName).Int("count", len(candidates)).
			Int("total_so_far", len(all)).Msg("fallback provider returned candidates")
	}

	if len(all) == 0 {
		return nil, ErrNoCandidates
	}
	return all, nil
}

// Name returns the chain name.
func (c *ProviderChain) Name() string {
	return "provider_chain"
}
