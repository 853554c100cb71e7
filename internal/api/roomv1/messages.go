// Package roomv1 defines the room.v1 Connect services: wire messages,
// procedure names, handler constructors and clients.
package roomv1

import (
	"time"

	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
)

// Identity headers sent by room clients.
const (
	HeaderUserID     = "X-User-ID"
	HeaderDeviceID   = "X-Device-ID"
	HeaderDeviceName = "X-Device-Name"
)

// Snapshot is the per-viewer room state.
type Snapshot = room.Snapshot

// Notification is one message of the Subscribe stream.
type Notification = notification.Notification

// CommandResponse is returned by commands whose rejection stays silent.
type CommandResponse struct{}

type CreateRoomRequest struct {
	Name                    string                   `json:"name"`
	Visibility              string                   `json:"visibility,omitempty"`
	OnlyInvitedUsersCanVote bool                     `json:"onlyInvitedUsersCanVote"`
	PlayingMode             string                   `json:"playingMode,omitempty"`
	MinimumScoreToBePlayed  int                      `json:"minimumScoreToBePlayed,omitempty"`
	TimeConstraint          *room.TimeWindow         `json:"timeConstraint,omitempty"`
	PositionConstraint      *room.PositionConstraint `json:"positionConstraint,omitempty"`
	InitialTrackIDs         []string                 `json:"initialTrackIDs,omitempty"`
	SeedPlaylistURL         string                   `json:"seedPlaylistURL,omitempty"`
}

type CreateRoomResponse struct {
	Room *Snapshot `json:"room"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomID"`
}

type JoinRoomResponse struct {
	Room *Snapshot `json:"room"`
}

type LeaveRoomRequest struct{}

type GetContextRequest struct{}

type GetContextResponse struct {
	Room *Snapshot `json:"room"`
}

type PlayRequest struct{}

type PauseRequest struct{}

type NextTrackRequest struct{}

type VoteForTrackRequest struct {
	TrackID string `json:"trackID"`
}

type SuggestTracksRequest struct {
	TrackIDs []string `json:"trackIDs"`
}

// TrackRejection explains why a suggested track was not added.
type TrackRejection struct {
	TrackID string `json:"trackID"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SuggestTracksResponse struct {
	Success  bool             `json:"success"`
	Code     string           `json:"code,omitempty"`
	Message  string           `json:"message"`
	Accepted []string         `json:"accepted"`
	Rejected []TrackRejection `json:"rejected,omitempty"`
}

type SearchTracksRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// Track is catalog metadata returned by SearchTracks.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album,omitempty"`
	AlbumArtURL string   `json:"albumArtURL,omitempty"`
	DurationMs  int64    `json:"duration"`
	URL         string   `json:"url,omitempty"`
}

// NewTrack converts a catalog track.
func NewTrack(t track.Track) Track {
	return Track{
		ID:          t.ID,
		Title:       t.Title,
		Artists:     t.Artists,
		Album:       t.Album,
		AlbumArtURL: t.AlbumArtURL,
		DurationMs:  t.Duration.Milliseconds(),
		URL:         t.URL,
	}
}

type SearchTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

type RemoveTrackRequest struct {
	TrackID string `json:"trackID"`
}

type ChangeEmittingDeviceRequest struct {
	DeviceID string `json:"deviceID"`
}

type InviteUserRequest struct {
	UserID string `json:"userID"`
}

type UpdateControlAndDelegationPermissionRequest struct {
	UserID                            string `json:"userID"`
	HasControlAndDelegationPermission bool   `json:"hasControlAndDelegationPermission"`
}

type UpdateDelegationOwnerRequest struct {
	UserID string `json:"userID"`
}

type GetUsersListRequest struct{}

type GetUsersListResponse struct {
	Users []room.UserSummary `json:"users"`
}

type GetRoomConstraintsDetailsRequest struct{}

type GetRoomConstraintsDetailsResponse struct {
	Constraints *room.ConstraintsDetails `json:"constraints"`
}

type ReportLocationRequest struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ReportedAt time.Time `json:"reportedAt,omitempty"`
}

type SubscribeRequest struct{}

// RoomSummary is the admin view of a room.
type RoomSummary struct {
	RoomID        string    `json:"roomID"`
	Name          string    `json:"name"`
	CreatorUserID string    `json:"creatorUserID"`
	Phase         string    `json:"phase"`
	MemberCount   int       `json:"memberCount"`
	QueueLength   int       `json:"queueLength"`
	Playing       bool      `json:"playing"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListRoomsRequest struct{}

type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

type GetRoomRequest struct {
	RoomID string `json:"roomID"`
}

type GetRoomResponse struct {
	Room RoomSummary `json:"room"`
}

type TerminateRoomRequest struct {
	RoomID string `json:"roomID"`
	Reason string `json:"reason,omitempty"`
}

type TerminateRoomResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
