package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/app/bgm"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
)

const (
	creatorID  = "creator"
	creatorDev = "creator-phone"
	trackLen   = 3 * time.Minute
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu           sync.Mutex
	published    map[string][]*notification.Notification
	disconnected map[string][]*notification.Notification
}

func newRecorder() *recorder {
	return &recorder{
		published:    make(map[string][]*notification.Notification),
		disconnected: make(map[string][]*notification.Notification),
	}
}

func (p *recorder) Publish(userID string, n *notification.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published[userID] = append(p.published[userID], n)
}

func (p *recorder) Disconnect(userID string, n *notification.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnected[userID] = append(p.disconnected[userID], n)
}

func (p *recorder) count(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published[userID])
}

func (p *recorder) last(userID string) *notification.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	got := p.published[userID]
	if len(got) == 0 {
		return nil
	}
	return got[len(got)-1]
}

func (p *recorder) types(userID string) []notification.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.Type, 0, len(p.published[userID]))
	for _, n := range p.published[userID] {
		out = append(out, n.Type)
	}
	return out
}

func (p *recorder) disconnects(userID string) []*notification.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*notification.Notification, len(p.disconnected[userID]))
	copy(out, p.disconnected[userID])
	return out
}

type stubRefiller struct {
	candidates []track.Track
	err        error
}

func (s *stubRefiller) CandidateCount() int {
	return len(s.candidates)
}

func (s *stubRefiller) GetCandidates(_ context.Context, _ int, _ []track.Track, _ map[string]bool) ([]bgm.CandidateWithSource, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]bgm.CandidateWithSource, 0, len(s.candidates))
	for _, t := range s.candidates {
		out = append(out, bgm.CandidateWithSource{Track: t, DisplayName: "stub"})
	}
	return out, nil
}

func makeTracks(n int) []track.Track {
	out := make([]track.Track, n)
	for i := range out {
		out[i] = track.Track{
			ID:       fmt.Sprintf("t%d", i+1),
			Title:    fmt.Sprintf("Song %d", i+1),
			Artists:  []string{fmt.Sprintf("Artist %d", i+1)},
			Duration: trackLen,
		}
	}
	return out
}

func publicSettings() room.Settings {
	return room.Settings{
		Name:                   "Friday",
		Visibility:             room.VisibilityPublic,
		PlayingMode:            room.PlayingModeBroadcast,
		MinimumScoreToBePlayed: 1,
	}
}

// newTestRoom starts a room seeded with t1 (current, paused) and t2..t4 queued.
// The ticker is effectively disabled; tests send Tick explicitly.
func newTestRoom(t *testing.T, settings room.Settings, opts ...func(*RoomConfig)) (*Room, *fakeClock, *recorder) {
	t.Helper()
	clock := newFakeClock()
	pub := newRecorder()
	cfg := RoomConfig{
		ID:            "room-1",
		Settings:      settings,
		CreatorID:     creatorID,
		CreatorDevice: device.Device{ID: creatorDev, Name: "Phone"},
		Seed:          makeTracks(4),
		Publisher:     pub,
		TickInterval:  time.Hour,
		Now:           clock.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r, err := NewRoom(cfg)
	require.NoError(t, err)
	r.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = r.Terminate(ctx, ReasonShutdown)
	})
	return r, clock, pub
}

func do(t *testing.T, r *Room, cmd Command) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := r.Do(ctx, cmd)
	require.NoError(t, err)
	return res
}

func join(t *testing.T, r *Room, userID, deviceID string) Result {
	t.Helper()
	return do(t, r, Join{UserID: userID, Device: device.Device{ID: deviceID}})
}

func snapshot(t *testing.T, r *Room, userID string) *room.Snapshot {
	t.Helper()
	res := do(t, r, GetContext{UserID: userID})
	require.True(t, res.OK(), "get context rejected: %s", res.Reason)
	return res.Snapshot
}

func scoreOf(s *room.Snapshot, trackID string) int {
	for _, qt := range s.Tracks {
		if qt.ID == trackID {
			return qt.Score
		}
	}
	return -1
}
