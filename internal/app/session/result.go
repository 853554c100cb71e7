package session

import (
	"github.com/osa030/19room/internal/domain/room"
)

// Status is the outcome of a command.
type Status int

const (
	StatusOK Status = iota
	StatusRejected
)

func (s Status) String() string {
	if s == StatusOK {
		return "OK"
	}
	return "REJECTED"
}

// Reasons produced by the coordinator itself. Components add their own codes
// (filter, permission, emitting and voting packages).
const (
	ReasonNotMember       = "not_member"
	ReasonNoControl       = "no_control"
	ReasonNoEligibleTrack = "no_eligible_track"
	ReasonAlreadyPlaying  = "already_playing"
	ReasonNotPlaying      = "not_playing"
	ReasonJoinForbidden   = "join_forbidden"
	ReasonTargetOffline   = "target_offline"
	ReasonNoTracks        = "no_tracks"
	ReasonUnknownCommand  = "unknown_command"
	ReasonInternal        = "internal"

	// Teardown reasons sent with FORCED_DISCONNECTION.
	ReasonCreatorLeft    = "creator_left"
	ReasonNoAuthority    = "no_authority"
	ReasonAdminTerminate = "terminated_by_admin"
	ReasonShutdown       = "server_shutdown"
)

// TrackRejection explains why one suggested track was not added.
type TrackRejection struct {
	TrackID string
	Code    string
}

// SuggestionOutcome lists what a suggestion committed and discarded.
type SuggestionOutcome struct {
	Accepted []string
	Rejected []TrackRejection
}

// FirstCode returns the code of the first rejection, or "".
func (o *SuggestionOutcome) FirstCode() string {
	if o == nil || len(o.Rejected) == 0 {
		return ""
	}
	return o.Rejected[0].Code
}

// Result is returned by the room for every command.
// Rejections stay internal unless the transport defines a fail reply.
type Result struct {
	Status      Status
	Reason      string
	Snapshot    *room.Snapshot
	Users       []room.UserSummary
	Constraints *room.ConstraintsDetails
	Suggestion  *SuggestionOutcome
}

// OK reports whether the command was applied.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

func ok() Result {
	return Result{Status: StatusOK}
}

func rejected(reason string) Result {
	return Result{Status: StatusRejected, Reason: reason}
}

func withSnapshot(s *room.Snapshot) Result {
	return Result{Status: StatusOK, Snapshot: s}
}
