package bgm

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19room/internal/domain/track"
)

// CatalogProvider picks random tracks from the local catalog.
type CatalogProvider struct {
	source RandomSource
}

// NewCatalogProvider creates a new CatalogProvider.
func NewCatalogProvider(source RandomSource) (*CatalogProvider, error) {
	if source == nil {
		return nil, errors.New("catalog provider requires a catalog")
	}
	return &CatalogProvider{source: source}, nil
}

// GetCandidates returns up to count catalog tracks not in excludeIDs.
func (p *CatalogProvider) GetCandidates(_ context.Context, count int, _ []track.Track, excludeIDs map[string]bool) ([]track.Track, error) {
	return p.source.Random(count, excludeIDs), nil
}

// Name returns the provider name.
func (p *CatalogProvider) Name() string {
	return "catalog"
}
