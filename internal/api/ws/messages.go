package ws

import (
	"time"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/domain/room"
)

// Command types sent by clients.
const (
	TypeCreateRoom                = "CREATE_ROOM"
	TypeJoin                      = "JOIN"
	TypeLeave                     = "LEAVE"
	TypeGetContext                = "GET_CONTEXT"
	TypePlay                      = "PLAY"
	TypePause                     = "PAUSE"
	TypeNextTrack                 = "NEXT_TRACK"
	TypeVoteForTrack              = "VOTE_FOR_TRACK"
	TypeSuggestTracks             = "SUGGEST_TRACKS"
	TypeRemoveTrack               = "REMOVE_TRACK"
	TypeChangeEmittingDevice      = "CHANGE_EMITTING_DEVICE"
	TypeInviteUser                = "INVITE_USER"
	TypeUpdatePermission          = "UPDATE_CONTROL_AND_DELEGATION_PERMISSION"
	TypeUpdateDelegationOwner     = "UPDATE_DELEGATION_OWNER"
	TypeGetUsersList              = "GET_USERS_LIST"
	TypeGetRoomConstraintsDetails = "GET_ROOM_CONSTRAINTS_DETAILS"
	TypeReportLocation            = "REPORT_LOCATION"
	TypePing                      = "PING"
)

// Reply types sent by the server. Notifications keep their own types.
const (
	TypeCreateRoomSuccess    = "CREATE_ROOM_SUCCESS"
	TypeCreateRoomFail       = "CREATE_ROOM_FAIL"
	TypeJoinSuccess          = "JOIN_SUCCESS"
	TypeJoinFail             = "JOIN_FAIL"
	TypeContext              = "CONTEXT"
	TypeSuggestTracksSuccess = "SUGGEST_TRACKS_SUCCESS"
	TypeSuggestTracksFail    = "SUGGEST_TRACKS_FAIL"
	TypeUsersList            = "USERS_LIST"
	TypeConstraintsDetails   = "ROOM_CONSTRAINTS_DETAILS"
	TypePong                 = "PONG"
	TypeError                = "ERROR"
)

// inbound is any client command. Only the fields of its type are read.
type inbound struct {
	Type      string `json:"type"`
	RequestID string `json:"requestID,omitempty"`

	Room     *roomv1.CreateRoomRequest `json:"room,omitempty"`
	RoomID   string                    `json:"roomID,omitempty"`
	TrackID  string                    `json:"trackID,omitempty"`
	TrackIDs []string                  `json:"trackIDs,omitempty"`
	DeviceID string                    `json:"deviceID,omitempty"`
	UserID   string                    `json:"userID,omitempty"`

	HasControlAndDelegationPermission bool `json:"hasControlAndDelegationPermission,omitempty"`

	Lat        float64   `json:"lat,omitempty"`
	Lng        float64   `json:"lng,omitempty"`
	ReportedAt time.Time `json:"reportedAt,omitempty"`
}

// reply answers a command that has a direct response.
type reply struct {
	Type      string `json:"type"`
	RequestID string `json:"requestID,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`

	Room        *room.Snapshot           `json:"room,omitempty"`
	Users       []room.UserSummary       `json:"users,omitempty"`
	Constraints *room.ConstraintsDetails `json:"constraints,omitempty"`
	Accepted    []string                 `json:"accepted,omitempty"`
	Rejected    []roomv1.TrackRejection  `json:"rejected,omitempty"`
}
