package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_PhaseNeverMovesBackwards(t *testing.T) {
	m := New("room-1", "Room", "alice", time.Now())
	assert.True(t, m.IsActive())

	m.SetPhase(PhaseTerminating)
	assert.Equal(t, PhaseTerminating, m.GetPhase())

	m.SetPhase(PhaseActive)
	assert.Equal(t, PhaseTerminating, m.GetPhase())

	m.SetPhase(PhaseTerminated)
	assert.False(t, m.IsActive())
	assert.Equal(t, "terminated", m.GetPhase().String())
}

func TestManager_Update(t *testing.T) {
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	m := New("room-1", "Room", "alice", created)

	m.Update(3, 5, true, created.Add(time.Minute))

	s := m.Summary()
	assert.Equal(t, "room-1", s.RoomID)
	assert.Equal(t, "alice", s.CreatorID)
	assert.Equal(t, 3, s.MemberCount)
	assert.Equal(t, 5, s.QueueLength)
	assert.True(t, s.Playing)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, created.Add(time.Minute), s.UpdatedAt)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "terminating", PhaseTerminating.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
