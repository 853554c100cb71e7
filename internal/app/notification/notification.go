package notification

import "github.com/osa030/19room/internal/domain/room"

// Type identifies a notification.
type Type string

const (
	TypeInitialState        Type = "INITIAL_STATE"
	TypeRoomState           Type = "ROOM_STATE"
	TypeForcedDisconnection Type = "FORCED_DISCONNECTION"
	TypeInvitation          Type = "INVITATION"
)

// Invitation tells a user they were invited to a room.
type Invitation struct {
	RoomID        string `json:"roomID"`
	RoomName      string `json:"roomName"`
	InviterUserID string `json:"inviterUserID"`
}

// Notification is pushed to subscribed devices.
type Notification struct {
	Type       Type           `json:"type"`
	SequenceNo uint64         `json:"sequenceNo"`
	RoomID     string         `json:"roomID,omitempty"`
	Snapshot   *room.Snapshot `json:"snapshot,omitempty"`
	Invitation *Invitation    `json:"invitation,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

// RoomState wraps a snapshot.
func RoomState(s *room.Snapshot) *Notification {
	return &Notification{Type: TypeRoomState, RoomID: s.RoomID, Snapshot: s}
}

// InitialState wraps the snapshot sent when a stream opens.
func InitialState(s *room.Snapshot) *Notification {
	return &Notification{Type: TypeInitialState, RoomID: s.RoomID, Snapshot: s}
}

// ForcedDisconnection tells a member the room is gone.
func ForcedDisconnection(roomID, reason string) *Notification {
	return &Notification{Type: TypeForcedDisconnection, RoomID: roomID, Reason: reason}
}

// Invited tells a user about an invitation.
func Invited(inv Invitation) *Notification {
	return &Notification{Type: TypeInvitation, RoomID: inv.RoomID, Invitation: &inv}
}
