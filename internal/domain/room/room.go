// Package room provides room settings shared by the session components.
package room

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/19room/internal/domain/geo"
)

// Visibility controls who may join a room.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// PlayingMode controls how emitting devices are elected.
type PlayingMode string

const (
	// PlayingModeBroadcast has a single room-wide audio authority.
	PlayingModeBroadcast PlayingMode = "BROADCAST"
	// PlayingModeDirect lets every member play on their own device.
	PlayingModeDirect PlayingMode = "DIRECT"
)

// TimeWindow restricts voting to [StartsAt, EndsAt].
type TimeWindow struct {
	StartsAt time.Time `json:"startsAt" validate:"required"`
	EndsAt   time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

// Contains reports whether t lies inside the window, bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartsAt) && !t.After(w.EndsAt)
}

// PositionConstraint restricts voting to devices within RadiusMeters of Place.
type PositionConstraint struct {
	Place        geo.Point `json:"place"`
	RadiusMeters float64   `json:"radiusMeters" validate:"gt=0"`
}

// Settings are the creation parameters of a room.
type Settings struct {
	Name                    string              `json:"name" validate:"required,max=100"`
	Visibility              Visibility          `json:"visibility" validate:"required,oneof=public private"`
	OnlyInvitedUsersCanVote bool                `json:"onlyInvitedUsersCanVote"`
	PlayingMode             PlayingMode         `json:"playingMode" validate:"required,oneof=BROADCAST DIRECT"`
	MinimumScoreToBePlayed  int                 `json:"minimumScoreToBePlayed" validate:"gte=1"`
	TimeConstraint          *TimeWindow         `json:"timeConstraint,omitempty" validate:"omitempty"`
	PositionConstraint      *PositionConstraint `json:"positionConstraint,omitempty" validate:"omitempty"`
}

// IsOpen reports whether anyone may join.
func (s Settings) IsOpen() bool {
	return s.Visibility == VisibilityPublic
}

// HasConstraints reports whether any vote constraint is configured.
func (s Settings) HasConstraints() bool {
	return s.TimeConstraint != nil || s.PositionConstraint != nil
}

var validate = validator.New()

// Validate validates the settings.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "invalid room settings")
	}
	return nil
}
