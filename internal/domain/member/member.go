// Package member provides the Member domain entity.
package member

import "time"

// Member represents a user currently joined to a room.
type Member struct {
	UserID                            string    // External user ID
	HasControlAndDelegationPermission bool      // May issue play/pause/next commands
	EmittingDeviceID                  string    // The member's own emitting device
	JoinedAt                          time.Time // Join time
	LastSeenAt                        time.Time // Last command from this member
	tracksVotedFor                    []string  // Track IDs voted for, in vote order
}

// New creates a new member. Creators start with control permission.
func New(userID string, isCreator bool, now time.Time) *Member {
	return &Member{
		UserID:                            userID,
		HasControlAndDelegationPermission: isCreator,
		JoinedAt:                          now,
		LastSeenAt:                        now,
	}
}

// HasVotedFor reports whether the member already voted for the track.
func (m *Member) HasVotedFor(trackID string) bool {
	for _, id := range m.tracksVotedFor {
		if id == trackID {
			return true
		}
	}
	return false
}

// RecordVote records a vote. Returns false if the vote was already recorded.
func (m *Member) RecordVote(trackID string) bool {
	if m.HasVotedFor(trackID) {
		return false
	}
	m.tracksVotedFor = append(m.tracksVotedFor, trackID)
	return true
}

// ForgetTrack drops any vote for the track. Called when the track leaves the queue.
func (m *Member) ForgetTrack(trackID string) {
	for i, id := range m.tracksVotedFor {
		if id == trackID {
			m.tracksVotedFor = append(m.tracksVotedFor[:i], m.tracksVotedFor[i+1:]...)
			return
		}
	}
}

// TracksVotedFor returns a copy of the voted track IDs.
func (m *Member) TracksVotedFor() []string {
	out := make([]string, len(m.tracksVotedFor))
	copy(out, m.tracksVotedFor)
	return out
}

// Touch updates the last seen time.
func (m *Member) Touch(now time.Time) {
	m.LastSeenAt = now
}
