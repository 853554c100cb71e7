package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/domain/track"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClock() (*Clock, *fakeClock) {
	fc := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewClock(fc.Now), fc
}

func song(id string, d time.Duration) track.QueuedTrack {
	return track.QueuedTrack{Track: track.Track{ID: id, Title: id, Duration: d}}
}

func TestClock_LoadFromIdleIsPaused(t *testing.T) {
	c, _ := newTestClock()
	assert.Equal(t, StateIdle, c.State())

	ev := c.Load(song("t1", time.Minute))
	assert.Equal(t, EventTrackLoaded, ev.Type)
	assert.Equal(t, StatePaused, c.State())
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestClock_ElapsedWhilePlaying(t *testing.T) {
	c, fc := newTestClock()
	c.Load(song("t1", 3*time.Minute))

	_, err := c.Play()
	require.NoError(t, err)

	fc.Advance(40 * time.Second)
	assert.Equal(t, 40*time.Second, c.Elapsed())

	_, err = c.Pause()
	require.NoError(t, err)

	fc.Advance(time.Hour)
	assert.Equal(t, 40*time.Second, c.Elapsed(), "paused clock does not advance")

	_, err = c.Play()
	require.NoError(t, err)
	fc.Advance(20 * time.Second)
	assert.Equal(t, time.Minute, c.Elapsed())
	assert.Equal(t, 2*time.Minute, c.Remaining())
}

func TestClock_ElapsedClampedToDuration(t *testing.T) {
	c, fc := newTestClock()
	c.Load(song("t1", time.Minute))
	c.Play()

	fc.Advance(5 * time.Minute)
	assert.Equal(t, time.Minute, c.Elapsed())
	assert.True(t, c.Due())
}

func TestClock_Due(t *testing.T) {
	c, fc := newTestClock()
	assert.False(t, c.Due(), "idle clock is never due")

	c.Load(song("t1", time.Minute))
	fc.Advance(2 * time.Minute)
	assert.False(t, c.Due(), "paused clock is never due")

	c.Play()
	fc.Advance(59 * time.Second)
	assert.False(t, c.Due())

	fc.Advance(time.Second)
	assert.True(t, c.Due())
	assert.Equal(t, EventTrackEnded, c.End().Type)
}

func TestClock_LoadPreservesPlaying(t *testing.T) {
	c, fc := newTestClock()
	c.Load(song("t1", time.Minute))
	c.Play()
	fc.Advance(30 * time.Second)

	ev := c.Load(song("t2", 2*time.Minute))
	assert.Equal(t, StatePlaying, ev.State)
	assert.Equal(t, time.Duration(0), c.Elapsed())

	fc.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, c.Elapsed())

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "t2", cur.Track.ID)
}

func TestClock_InvalidTransitions(t *testing.T) {
	c, _ := newTestClock()

	_, err := c.Play()
	assert.ErrorIs(t, err, ErrNoTrack)
	_, err = c.Pause()
	assert.ErrorIs(t, err, ErrNoTrack)

	c.Load(song("t1", time.Minute))
	_, err = c.Pause()
	assert.ErrorIs(t, err, ErrNotPlaying)

	c.Play()
	_, err = c.Play()
	assert.ErrorIs(t, err, ErrNotPaused)
}

func TestClock_Unload(t *testing.T) {
	c, _ := newTestClock()
	c.Load(song("t1", time.Minute))
	c.Play()

	ev := c.Unload()
	assert.Equal(t, EventUnloaded, ev.Type)
	assert.Equal(t, StateIdle, c.State())
	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, time.Duration(0), c.Elapsed())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "unknown", State(42).String())
}
