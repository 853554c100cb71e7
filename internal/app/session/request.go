package session

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/19room/internal/domain/room"
)

const maxSeedTracks = 100

var validate = validator.New()

// CreateRequest holds the parameters of CreateRoom. Seed tracks come from
// InitialTrackIDs, or from SeedPlaylistURL when a playlist loader is configured.
type CreateRequest struct {
	Name                    string                   `json:"name" validate:"required,max=100"`
	Visibility              room.Visibility          `json:"visibility" default:"public" validate:"oneof=public private"`
	OnlyInvitedUsersCanVote bool                     `json:"onlyInvitedUsersCanVote"`
	PlayingMode             room.PlayingMode         `json:"playingMode" default:"BROADCAST" validate:"oneof=BROADCAST DIRECT"`
	MinimumScoreToBePlayed  int                      `json:"minimumScoreToBePlayed" default:"1" validate:"gte=1"`
	TimeConstraint          *room.TimeWindow         `json:"timeConstraint,omitempty"`
	PositionConstraint      *room.PositionConstraint `json:"positionConstraint,omitempty"`
	InitialTrackIDs         []string                 `json:"initialTrackIDs" validate:"required_without=SeedPlaylistURL,max=100,dive,required"`
	SeedPlaylistURL         string                   `json:"seedPlaylistURL,omitempty"`
}

// Normalize applies defaults and validates the request.
func (r *CreateRequest) Normalize() error {
	if err := defaults.Set(r); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validate.Struct(r); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid create request"), ErrInvalidRequest)
	}
	if err := r.Settings().Validate(); err != nil {
		return errors.Mark(err, ErrInvalidRequest)
	}
	return nil
}

// Settings returns the room settings carried by the request.
func (r *CreateRequest) Settings() room.Settings {
	return room.Settings{
		Name:                    r.Name,
		Visibility:              r.Visibility,
		OnlyInvitedUsersCanVote: r.OnlyInvitedUsersCanVote,
		PlayingMode:             r.PlayingMode,
		MinimumScoreToBePlayed:  r.MinimumScoreToBePlayed,
		TimeConstraint:          r.TimeConstraint,
		PositionConstraint:      r.PositionConstraint,
	}
}
