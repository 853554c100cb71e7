package filter

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19room/internal/domain/track"
)

// Gate checks votes against invitation, duplicate, time and position rules.
// Both the time window and the position constraint must hold.
type Gate struct {
	chain      *Chain
	timeWindow *TimeWindowFilter
	position   *PositionFilter
}

// NewGate builds the vote chain.
func NewGate(locations LocationSource, now func() time.Time) *Gate {
	g := &Gate{
		timeWindow: NewTimeWindowFilter(now),
		position:   NewPositionFilter(locations),
	}
	g.chain = NewChain(
		&InvitedVoterFilter{},
		&DuplicateVoteFilter{},
		g.timeWindow,
		g.position,
	)
	return g
}

// Check runs the vote chain for the voted track.
func (g *Gate) Check(ctx context.Context, req Request, t track.Track) Result {
	return g.chain.Execute(ctx, req, t, KindVote)
}

// TimeWindowOpen reports whether the room's time constraint currently holds.
func (g *Gate) TimeWindowOpen(req Request) bool {
	return g.timeWindow.Open(req)
}

// FitsPosition reports whether the requesting device satisfies the position constraint.
func (g *Gate) FitsPosition(ctx context.Context, req Request) bool {
	return g.position.Fits(ctx, req)
}

// Setting enables and configures a registered filter.
type Setting struct {
	Enabled  bool
	Settings map[string]any
}

// SuggestionPolicy holds the configured suggestion filters shared by all rooms.
type SuggestionPolicy struct {
	duplicateTrack bool
	configured     []Filter
}

// NewSuggestionPolicy validates the filter settings. The duplicate track filter
// is enabled when not mentioned.
func NewSuggestionPolicy(settings map[string]Setting) (*SuggestionPolicy, error) {
	p := &SuggestionPolicy{duplicateTrack: true}

	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := settings[name]
		factory, ok := registry[name]
		if !ok {
			return nil, errors.Newf("unknown filter: %s", name)
		}
		if name == "duplicate_track_filter" {
			p.duplicateTrack = s.Enabled
			continue
		}
		if !s.Enabled {
			continue
		}

		f := factory()
		if err := f.ValidateConfig(s.Settings); err != nil {
			return nil, errors.Wrapf(err, "invalid config for %s", name)
		}
		p.configured = append(p.configured, f)
		zlog.Debug().Str("filter", name).Msg("suggestion filter enabled")
	}
	return p, nil
}

// Chain builds the suggestion chain for a room holding the given tracks.
func (p *SuggestionPolicy) Chain(tracks TrackLister) *Chain {
	c := NewChain(&InvitedVoterFilter{})
	if p == nil {
		c.Add(NewDuplicateTrackFilter(tracks))
		return c
	}
	if p.duplicateTrack {
		c.Add(NewDuplicateTrackFilter(tracks))
	}
	for _, f := range p.configured {
		c.Add(f)
	}
	return c
}
