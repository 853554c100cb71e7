package session

import (
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/track"
)

// Command is a closed union of the commands a room accepts.
// Only types in this package implement it.
type Command interface {
	command()
}

// Join registers a member and one of their devices.
type Join struct {
	UserID string
	Device device.Device
}

// CheckJoin reports whether a Join would be accepted, without side effects.
type CheckJoin struct {
	UserID   string
	DeviceID string
}

// Leave removes a member. A leaving creator tears the room down.
type Leave struct {
	UserID string
}

// GetContext returns the caller's snapshot without side effects.
type GetContext struct {
	UserID   string
	DeviceID string
}

// Play starts or resumes playback.
type Play struct {
	UserID string
}

// Pause pauses playback.
type Pause struct {
	UserID string
}

// NextTrack promotes the best eligible track.
type NextTrack struct {
	UserID string
}

// Vote adds the caller's vote to a queued track.
type Vote struct {
	UserID   string
	DeviceID string
	TrackID  string
}

// Suggest proposes tracks already resolved in the catalog.
// Missing lists requested IDs the catalog did not know.
type Suggest struct {
	UserID   string
	DeviceID string
	Tracks   []track.Track
	Missing  []string
}

// RemoveTrack deletes a queued track.
type RemoveTrack struct {
	UserID  string
	TrackID string
}

// ChangeEmittingDevice switches the caller's emitting device.
type ChangeEmittingDevice struct {
	UserID   string
	DeviceID string
}

// InviteUser invites a user to the room.
type InviteUser struct {
	UserID    string
	InviteeID string
}

// UpdatePermission grants or revokes the control and delegation permission.
type UpdatePermission struct {
	UserID   string
	TargetID string
	Granted  bool
}

// UpdateDelegationOwner designates the delegation owner.
type UpdateDelegationOwner struct {
	UserID   string
	TargetID string
}

// GetUsersList returns the roster.
type GetUsersList struct {
	UserID string
}

// GetConstraintsDetails describes the vote constraints for the caller.
type GetConstraintsDetails struct {
	UserID   string
	DeviceID string
}

// DeviceConnected marks a member device connected, registering it if new.
type DeviceConnected struct {
	UserID string
	Device device.Device
}

// DeviceDisconnected marks a member device disconnected.
type DeviceDisconnected struct {
	UserID   string
	DeviceID string
}

// Refill delivers fallback candidates fetched outside the room.
type Refill struct {
	Candidates []track.Track
	Err        error
}

// Tick is the periodic clock check.
type Tick struct{}

// Terminate tears the room down.
type Terminate struct {
	Reason string
}

func (Join) command()                  {}
func (CheckJoin) command()             {}
func (Leave) command()                 {}
func (GetContext) command()            {}
func (Play) command()                  {}
func (Pause) command()                 {}
func (NextTrack) command()             {}
func (Vote) command()                  {}
func (Suggest) command()               {}
func (RemoveTrack) command()           {}
func (ChangeEmittingDevice) command()  {}
func (InviteUser) command()            {}
func (UpdatePermission) command()      {}
func (UpdateDelegationOwner) command() {}
func (GetUsersList) command()          {}
func (GetConstraintsDetails) command() {}
func (DeviceConnected) command()       {}
func (DeviceDisconnected) command()    {}
func (Refill) command()                {}
func (Tick) command()                  {}
func (Terminate) command()             {}
