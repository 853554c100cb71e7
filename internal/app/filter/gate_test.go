package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/domain/geo"
	"github.com/osa030/19room/internal/domain/member"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
)

type stubLocations map[string]geo.Point

func (s stubLocations) Latest(ctx context.Context, deviceID string) (geo.Point, bool) {
	p, ok := s[deviceID]
	return p, ok
}

var (
	windowStart = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	eiffel      = geo.Point{Lat: 48.8584, Lng: 2.2945}
)

func constrainedSettings() room.Settings {
	return room.Settings{
		Name:                   "Constrained",
		Visibility:             room.VisibilityPublic,
		PlayingMode:            room.PlayingModeBroadcast,
		MinimumScoreToBePlayed: 1,
		TimeConstraint: &room.TimeWindow{
			StartsAt: windowStart,
			EndsAt:   windowStart.Add(2 * time.Hour),
		},
		PositionConstraint: &room.PositionConstraint{
			Place:        eiffel,
			RadiusMeters: 500,
		},
	}
}

func TestGate_Check(t *testing.T) {
	locations := stubLocations{
		"near": {Lat: 48.8590, Lng: 2.2950},
		"far":  {Lat: 48.8800, Lng: 2.3500},
	}

	tests := []struct {
		name     string
		now      time.Time
		deviceID string
		settings func() room.Settings
		wantCode string
	}{
		{
			name:     "inside window and radius",
			now:      windowStart.Add(time.Hour),
			deviceID: "near",
			settings: constrainedSettings,
		},
		{
			name:     "inside window, outside radius",
			now:      windowStart.Add(time.Hour),
			deviceID: "far",
			settings: constrainedSettings,
			wantCode: CodeOutsidePositionRadius,
		},
		{
			name:     "inside radius, before window",
			now:      windowStart.Add(-time.Minute),
			deviceID: "near",
			settings: constrainedSettings,
			wantCode: CodeOutsideTimeWindow,
		},
		{
			name:     "unknown location",
			now:      windowStart.Add(time.Hour),
			deviceID: "unknown",
			settings: constrainedSettings,
			wantCode: CodeOutsidePositionRadius,
		},
		{
			name:     "no constraints",
			now:      windowStart.Add(-time.Hour),
			deviceID: "unknown",
			settings: func() room.Settings {
				s := constrainedSettings()
				s.TimeConstraint = nil
				s.PositionConstraint = nil
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			gate := NewGate(locations, func() time.Time { return now })
			req := Request{
				UserID:   "alice",
				DeviceID: tt.deviceID,
				Settings: tt.settings(),
				Voter:    member.New("alice", false, now),
			}

			result := gate.Check(context.Background(), req, track.Track{ID: "t1"})
			if tt.wantCode == "" {
				assert.True(t, result.Accepted)
			} else {
				assert.False(t, result.Accepted)
				assert.Equal(t, tt.wantCode, result.Code)
			}
		})
	}
}

func TestGate_LocationReadFresh(t *testing.T) {
	locations := stubLocations{"phone": {Lat: 48.8800, Lng: 2.3500}}
	gate := NewGate(locations, func() time.Time { return windowStart })
	req := Request{UserID: "alice", DeviceID: "phone", Settings: constrainedSettings()}

	assert.False(t, gate.FitsPosition(context.Background(), req))

	locations["phone"] = eiffel
	assert.True(t, gate.FitsPosition(context.Background(), req))
}

func TestGate_InvitedAndDuplicateVote(t *testing.T) {
	gate := NewGate(nil, time.Now)
	settings := room.Settings{
		Name:                    "Invite only",
		Visibility:              room.VisibilityPublic,
		PlayingMode:             room.PlayingModeBroadcast,
		MinimumScoreToBePlayed:  1,
		OnlyInvitedUsersCanVote: true,
	}
	voter := member.New("bob", false, time.Now())

	result := gate.Check(context.Background(), Request{UserID: "bob", Settings: settings, Voter: voter}, track.Track{ID: "t1"})
	assert.Equal(t, CodeNotInvited, result.Code)

	result = gate.Check(context.Background(), Request{UserID: "bob", Settings: settings, IsInvited: true, Voter: voter}, track.Track{ID: "t1"})
	assert.True(t, result.Accepted)

	result = gate.Check(context.Background(), Request{UserID: "carol", Settings: settings, IsCreator: true}, track.Track{ID: "t1"})
	assert.True(t, result.Accepted, "creator always votes")

	voter.RecordVote("t1")
	result = gate.Check(context.Background(), Request{UserID: "bob", Settings: settings, IsInvited: true, Voter: voter}, track.Track{ID: "t1"})
	assert.Equal(t, CodeAlreadyVoted, result.Code)
}

func TestTimeWindowFilter_Bounds(t *testing.T) {
	req := Request{Settings: constrainedSettings()}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at start", windowStart, true},
		{"at end", windowStart.Add(2 * time.Hour), true},
		{"after end", windowStart.Add(2*time.Hour + time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := tt.now
			f := NewTimeWindowFilter(func() time.Time { return now })
			assert.Equal(t, tt.want, f.Open(req))
		})
	}
}

func TestFilters_AppliesTo(t *testing.T) {
	tests := []struct {
		filter     Filter
		vote       bool
		suggestion bool
		fallback   bool
	}{
		{NewTimeWindowFilter(nil), true, false, false},
		{NewPositionFilter(nil), true, false, false},
		{&InvitedVoterFilter{}, true, true, false},
		{&DuplicateVoteFilter{}, true, false, false},
		{NewDuplicateTrackFilter(nil), false, true, true},
		{NewDurationLimitFilter(), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.filter.Name(), func(t *testing.T) {
			assert.Equal(t, tt.vote, tt.filter.AppliesTo(KindVote))
			assert.Equal(t, tt.suggestion, tt.filter.AppliesTo(KindSuggestion))
			assert.Equal(t, tt.fallback, tt.filter.AppliesTo(KindFallback))
			assert.NotEmpty(t, tt.filter.ReturnCodes())
			assert.NoError(t, tt.filter.ValidateConfig(nil))
		})
	}
}

func TestSuggestionPolicy(t *testing.T) {
	existing := &stubTrackLister{tracks: []track.Track{{ID: "t1", Title: "Song", Artists: []string{"A"}}}}
	req := Request{UserID: "alice", Settings: room.Settings{}}

	t.Run("defaults", func(t *testing.T) {
		p, err := NewSuggestionPolicy(nil)
		require.NoError(t, err)

		result := p.Chain(existing).Execute(context.Background(), req, track.Track{ID: "t1"}, KindSuggestion)
		assert.Equal(t, CodeDuplicateTrack, result.Code)
	})

	t.Run("duplicate filter disabled", func(t *testing.T) {
		p, err := NewSuggestionPolicy(map[string]Setting{
			"duplicate_track_filter": {Enabled: false},
		})
		require.NoError(t, err)

		result := p.Chain(existing).Execute(context.Background(), req, track.Track{ID: "t1"}, KindSuggestion)
		assert.True(t, result.Accepted)
	})

	t.Run("duration limit", func(t *testing.T) {
		p, err := NewSuggestionPolicy(map[string]Setting{
			"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_minutes": 2, "max_minutes": 6}},
		})
		require.NoError(t, err)

		chain := p.Chain(existing)
		result := chain.Execute(context.Background(), req, track.Track{ID: "t2", Duration: 10 * time.Minute}, KindSuggestion)
		assert.Equal(t, CodeDurationLimitExceeded, result.Code)

		result = chain.Execute(context.Background(), req, track.Track{ID: "t2", Duration: 10 * time.Minute}, KindFallback)
		assert.True(t, result.Accepted, "fallback candidates skip the duration limit")
	})

	t.Run("invalid settings", func(t *testing.T) {
		_, err := NewSuggestionPolicy(map[string]Setting{
			"duration_limit_filter": {Enabled: true, Settings: map[string]any{"min_minutes": 10, "max_minutes": 5}},
		})
		assert.Error(t, err)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := NewSuggestionPolicy(map[string]Setting{"market_filter": {Enabled: true}})
		assert.Error(t, err)
	})
}

func TestGetRegistered(t *testing.T) {
	registered := GetRegistered()
	assert.Contains(t, registered, "duplicate_track_filter")
	assert.Contains(t, registered, "duration_limit_filter")
}
