package filter

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19room/internal/domain/geo"
	"github.com/osa030/19room/internal/domain/track"
)

// LocationSource returns the latest known location of a device.
type LocationSource interface {
	Latest(ctx context.Context, deviceID string) (geo.Point, bool)
}

// PositionFilter rejects votes from devices outside the room's radius.
// The location is read on every check.
type PositionFilter struct {
	locations LocationSource
}

// NewPositionFilter creates a new PositionFilter.
func NewPositionFilter(locations LocationSource) *PositionFilter {
	return &PositionFilter{locations: locations}
}

func (f *PositionFilter) Name() string {
	return "position_filter"
}

func (f *PositionFilter) Description() string {
	return "Rejects votes from devices outside the room's position radius"
}

func (f *PositionFilter) ReturnCodes() []string {
	return []string{CodeOutsidePositionRadius}
}

func (f *PositionFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *PositionFilter) AppliesTo(kind Kind) bool {
	return kind == KindVote
}

func (f *PositionFilter) Check(ctx context.Context, req Request, t track.Track) Result {
	if !f.Fits(ctx, req) {
		return Reject(CodeOutsidePositionRadius)
	}
	return Accept()
}

// Fits reports whether the requesting device satisfies the position constraint.
// An unknown location never fits a constrained room.
func (f *PositionFilter) Fits(ctx context.Context, req Request) bool {
	c := req.Settings.PositionConstraint
	if c == nil {
		return true
	}
	if f.locations == nil || req.DeviceID == "" {
		return false
	}

	p, ok := f.locations.Latest(ctx, req.DeviceID)
	if !ok {
		zlog.Debug().Str("user_id", req.UserID).Str("device_id", req.DeviceID).Msg("no known location for device")
		return false
	}
	return geo.Within(p, c.Place, c.RadiusMeters)
}
