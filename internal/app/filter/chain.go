package filter

import (
	"context"

	"github.com/osa030/19room/internal/domain/track"
)

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{
		filters: make([]Filter, 0, len(filters)),
	}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Execute runs all filters that apply to kind, in order.
// Returns immediately if any filter rejects.
func (c *Chain) Execute(ctx context.Context, req Request, t track.Track, kind Kind) Result {
	for _, f := range c.filters {
		if !f.AppliesTo(kind) {
			continue
		}

		result := f.Check(ctx, req, t)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}
