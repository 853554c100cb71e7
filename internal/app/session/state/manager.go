package state

import (
	"sync"
	"time"
)

// Summary is the lock-protected view of a room read outside its actor.
type Summary struct {
	RoomID      string
	Name        string
	CreatorID   string
	Phase       Phase
	MemberCount int
	QueueLength int
	Playing     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Manager publishes the room summary with thread-safe access.
// The room actor is the only writer.
type Manager struct {
	mu      sync.RWMutex
	summary Summary
}

// New creates a new state manager in the active phase.
func New(roomID, name, creatorID string, now time.Time) *Manager {
	return &Manager{
		summary: Summary{
			RoomID:    roomID,
			Name:      name,
			CreatorID: creatorID,
			Phase:     PhaseActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// GetPhase returns the current phase.
func (m *Manager) GetPhase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary.Phase
}

// SetPhase sets the phase. Phases never move backwards.
func (m *Manager) SetPhase(p Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p > m.summary.Phase {
		m.summary.Phase = p
	}
}

// IsActive returns true if the room accepts commands.
func (m *Manager) IsActive() bool {
	return m.GetPhase() == PhaseActive
}

// Update records the counters published by the actor.
func (m *Manager) Update(memberCount, queueLength int, playing bool, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.MemberCount = memberCount
	m.summary.QueueLength = queueLength
	m.summary.Playing = playing
	m.summary.UpdatedAt = now
}

// Summary returns a copy of the summary.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}
