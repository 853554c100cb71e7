package member

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name           string
		userID         string
		isCreator      bool
		wantPermission bool
	}{
		{
			name:           "creator",
			userID:         "alice",
			isCreator:      true,
			wantPermission: true,
		},
		{
			name:           "regular member",
			userID:         "bob",
			isCreator:      false,
			wantPermission: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.userID, tt.isCreator, now)

			assert.Equal(t, tt.userID, m.UserID)
			assert.Equal(t, tt.wantPermission, m.HasControlAndDelegationPermission)
			assert.Equal(t, now, m.JoinedAt)
			assert.Empty(t, m.EmittingDeviceID)
			assert.Empty(t, m.TracksVotedFor())
		})
	}
}

func TestMember_RecordVote(t *testing.T) {
	m := New("alice", false, time.Now())

	assert.True(t, m.RecordVote("t1"))
	assert.False(t, m.RecordVote("t1"), "second vote for the same track is refused")
	assert.True(t, m.RecordVote("t2"))

	assert.Equal(t, []string{"t1", "t2"}, m.TracksVotedFor())
	assert.True(t, m.HasVotedFor("t1"))
	assert.False(t, m.HasVotedFor("t3"))
}

func TestMember_ForgetTrack(t *testing.T) {
	m := New("alice", false, time.Now())
	m.RecordVote("t1")
	m.RecordVote("t2")
	m.RecordVote("t3")

	m.ForgetTrack("t2")
	assert.Equal(t, []string{"t1", "t3"}, m.TracksVotedFor())

	// Unknown track is a no-op
	m.ForgetTrack("missing")
	assert.Equal(t, []string{"t1", "t3"}, m.TracksVotedFor())

	// Can vote again once the track is forgotten
	assert.True(t, m.RecordVote("t2"))
}

func TestMember_TracksVotedForIsCopy(t *testing.T) {
	m := New("alice", false, time.Now())
	m.RecordVote("t1")

	ids := m.TracksVotedFor()
	ids[0] = "mutated"

	assert.Equal(t, []string{"t1"}, m.TracksVotedFor())
}
