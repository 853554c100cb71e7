package room

import "time"

// CurrentTrack is the track being played, as seen in a snapshot.
type CurrentTrack struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	DurationMs int64  `json:"duration"`
	ElapsedMs  int64  `json:"elapsed"`
}

// QueuedTrack is a candidate track, as seen in a snapshot.
type QueuedTrack struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ArtistName string `json:"artistName"`
	DurationMs int64  `json:"duration"`
	Score      int    `json:"score"`
}

// UserRelatedInformation is the part of a snapshot specific to its viewer.
type UserRelatedInformation struct {
	UserID                            string   `json:"userID"`
	HasControlAndDelegationPermission bool     `json:"hasControlAndDelegationPermission"`
	UserFitsPositionConstraint        bool     `json:"userFitsPositionConstraint"`
	UserHasBeenInvited                bool     `json:"userHasBeenInvited"`
	EmittingDeviceID                  string   `json:"emittingDeviceID"`
	Emitting                          bool     `json:"emitting"` // EmittingDeviceID is audible from this viewer's point of view
	TracksVotedFor                    []string `json:"tracksVotedFor"`
}

// Snapshot is the full per-viewer state of a room. Snapshots are never deltas.
type Snapshot struct {
	RoomID                        string                  `json:"roomID"`
	Name                          string                  `json:"name"`
	CreatorUserID                 string                  `json:"creatorUserID"`
	Playing                       bool                    `json:"playing"`
	CurrentTrack                  *CurrentTrack           `json:"currentTrack"`
	Tracks                        []QueuedTrack           `json:"tracks"`
	UsersLength                   int                     `json:"usersLength"`
	IsOpen                        bool                    `json:"isOpen"`
	IsOpenOnlyInvitedUsersCanVote bool                    `json:"isOpenOnlyInvitedUsersCanVote"`
	HasTimeAndPositionConstraints bool                    `json:"hasTimeAndPositionConstraints"`
	TimeConstraintIsValid         bool                    `json:"timeConstraintIsValid"`
	DelegationOwnerUserID         string                  `json:"delegationOwnerUserID,omitempty"`
	UserRelatedInformation        *UserRelatedInformation `json:"userRelatedInformation,omitempty"`
	MinimumScoreToBePlayed        int                     `json:"minimumScoreToBePlayed"`
	PlayingMode                   PlayingMode             `json:"playingMode"`
	AudioAuthorityUserID          string                  `json:"audioAuthorityUserID,omitempty"`
	Phase                         string                  `json:"phase"`
}

// TrackIDs returns the queued track IDs in order.
func (s *Snapshot) TrackIDs() []string {
	ids := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// UserSummary is one entry of the users list.
type UserSummary struct {
	UserID                            string          `json:"userID"`
	HasControlAndDelegationPermission bool            `json:"hasControlAndDelegationPermission"`
	IsCreator                         bool            `json:"isCreator"`
	IsDelegationOwner                 bool            `json:"isDelegationOwner"`
	EmittingDeviceID                  string          `json:"emittingDeviceID"`
	ConnectedDevices                  int             `json:"connectedDevices"`
	Devices                           []DeviceSummary `json:"devices"`
	JoinedAt                          time.Time       `json:"joinedAt"`
}

// DeviceSummary is one device of a users list entry.
type DeviceSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Connected bool   `json:"connected"`
	Emitting  bool   `json:"emitting"` // The member's own emitting device
}

// ConstraintsDetails describes the vote constraints of a room.
type ConstraintsDetails struct {
	RoomID                     string              `json:"roomID"`
	TimeConstraint             *TimeWindow         `json:"timeConstraint,omitempty"`
	PositionConstraint         *PositionConstraint `json:"positionConstraint,omitempty"`
	TimeConstraintIsValid      bool                `json:"timeConstraintIsValid"`
	UserFitsPositionConstraint bool                `json:"userFitsPositionConstraint"`
}
