package playback

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19room/internal/domain/track"
)

// Errors
var (
	ErrNoTrack    = errors.New("no current track")
	ErrNotPlaying = errors.New("not playing")
	ErrNotPaused  = errors.New("not paused")
)

// Clock tracks the current track and its elapsed time.
// Elapsed is recomputed from the last transition rather than accumulated per tick.
// It is owned by the room actor and is not safe for concurrent use.
type Clock struct {
	now func() time.Time

	current        *track.QueuedTrack
	state          State
	storedElapsed  time.Duration // Elapsed at lastTransition
	lastTransition time.Time
}

// NewClock creates an idle clock.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		now:   now,
		state: StateIdle,
	}
}

// State returns the current state.
func (c *Clock) State() State {
	return c.state
}

// IsPlaying reports whether the clock is running.
func (c *Clock) IsPlaying() bool {
	return c.state == StatePlaying
}

// Current returns the current track.
func (c *Clock) Current() (track.QueuedTrack, bool) {
	if c.current == nil {
		return track.QueuedTrack{}, false
	}
	return *c.current, true
}

// Load makes qt the current track at elapsed 0, preserving play/pause.
// An idle clock becomes paused.
func (c *Clock) Load(qt track.QueuedTrack) Event {
	c.current = &qt
	if c.state == StateIdle {
		c.state = StatePaused
	}
	c.storedElapsed = 0
	c.lastTransition = toWallTime(c.now())
	return Event{Type: EventTrackLoaded, Track: c.current, State: c.state}
}

// Play starts or resumes the current track.
func (c *Clock) Play() (Event, error) {
	if c.current == nil {
		return Event{}, ErrNoTrack
	}
	if c.state != StatePaused {
		return Event{}, ErrNotPaused
	}
	c.lastTransition = toWallTime(c.now())
	c.state = StatePlaying
	return Event{Type: EventStateChanged, Track: c.current, State: c.state}, nil
}

// Pause freezes elapsed time.
func (c *Clock) Pause() (Event, error) {
	if c.current == nil {
		return Event{}, ErrNoTrack
	}
	if c.state != StatePlaying {
		return Event{}, ErrNotPlaying
	}
	now := toWallTime(c.now())
	c.storedElapsed = c.elapsedAt(now)
	c.lastTransition = now
	c.state = StatePaused
	return Event{Type: EventStateChanged, Track: c.current, State: c.state}, nil
}

// Unload drops the current track and idles the clock.
func (c *Clock) Unload() Event {
	c.current = nil
	c.state = StateIdle
	c.storedElapsed = 0
	c.lastTransition = time.Time{}
	return Event{Type: EventUnloaded, State: c.state}
}

// Elapsed returns the elapsed time of the current track, clamped to its duration.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsedAt(toWallTime(c.now()))
}

// Remaining returns the time left on the current track.
func (c *Clock) Remaining() time.Duration {
	if c.current == nil {
		return 0
	}
	return c.current.Track.Duration - c.Elapsed()
}

// Due reports whether the playing track reached its end.
func (c *Clock) Due() bool {
	if c.current == nil || c.state != StatePlaying {
		return false
	}
	return c.Elapsed() >= c.current.Track.Duration
}

// End reports the end of the current track. Call when Due.
func (c *Clock) End() Event {
	return Event{Type: EventTrackEnded, Track: c.current, State: c.state}
}

func (c *Clock) elapsedAt(now time.Time) time.Duration {
	if c.current == nil {
		return 0
	}
	elapsed := c.storedElapsed
	if c.state == StatePlaying {
		elapsed += now.Sub(c.lastTransition)
	}
	if elapsed < 0 {
		return 0
	}
	if elapsed > c.current.Track.Duration {
		return c.current.Track.Duration
	}
	return elapsed
}

// toWallTime returns the time with monotonic clock stripped.
// Elapsed time then follows wall clock changes such as system sleep.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
