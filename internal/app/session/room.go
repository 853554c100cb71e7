// Package session coordinates listening rooms. Each room is an actor: one
// goroutine owns all of its state and processes commands in receipt order.
package session

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/19room/internal/app/bgm"
	"github.com/osa030/19room/internal/app/emitting"
	"github.com/osa030/19room/internal/app/filter"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/app/permission"
	"github.com/osa030/19room/internal/app/playback"
	"github.com/osa030/19room/internal/app/session/state"
	"github.com/osa030/19room/internal/app/voting"
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/member"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
	"github.com/osa030/19room/internal/infra/logger"
)

const (
	defaultTickInterval = 250 * time.Millisecond
	defaultMailboxSize  = 64
	refillRetryAfter    = 30 * time.Second
	recentTrackCount    = 5
)

// Publisher delivers notifications to every device of a user.
// Implemented by *notification.Manager.
type Publisher interface {
	Publish(userID string, n *notification.Notification)
	Disconnect(userID string, n *notification.Notification)
}

// Refiller fetches fallback candidates. Implemented by *bgm.ProviderChain.
type Refiller interface {
	CandidateCount() int
	GetCandidates(ctx context.Context, count int, seedTracks []track.Track, excludeIDs map[string]bool) ([]bgm.CandidateWithSource, error)
}

// RoomConfig holds what a room needs at creation.
type RoomConfig struct {
	ID            string
	Settings      room.Settings
	CreatorID     string
	CreatorDevice device.Device
	Seed          []track.Track // The first track becomes current, paused at 0

	Publisher   Publisher
	Locations   filter.LocationSource
	Suggestions *filter.SuggestionPolicy
	Refiller    Refiller // nil disables fallback refills

	TickInterval time.Duration
	MailboxSize  int
	Now          func() time.Time
	OnStop       func(roomID string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, *notification.Notification)    {}
func (nopPublisher) Disconnect(string, *notification.Notification) {}

type envelope struct {
	cmd   Command
	reply chan Result
}

// Room is the actor hosting one listening room.
type Room struct {
	id        string
	settings  room.Settings
	now       func() time.Time
	log       zerolog.Logger
	publisher Publisher
	refiller  Refiller
	onStop    func(roomID string)

	// Owned by the actor goroutine
	members     map[string]*member.Member
	order       []string // Member IDs in join order
	perms       *permission.Model
	elector     *emitting.Elector
	queue       *voting.Queue
	clock       *playback.Clock
	gate        *filter.Gate
	suggestions *filter.Chain
	fallback    *filter.Chain
	recent      []track.Track
	refilling   bool
	lastRefill  time.Time
	stopped     bool

	state        *state.Manager
	mailbox      chan envelope
	tickInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewRoom creates a room with its creator as the first member.
// The room does not process commands until Start is called.
func NewRoom(cfg RoomConfig) (*Room, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, errors.Mark(err, ErrInvalidRequest)
	}
	if len(cfg.Seed) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "a room needs at least one seed track")
	}
	if cfg.CreatorID == "" || cfg.CreatorDevice.ID == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "creator and creator device are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Publisher == nil {
		cfg.Publisher = nopPublisher{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = defaultMailboxSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := cfg.Now()

	r := &Room{
		id:           cfg.ID,
		settings:     cfg.Settings,
		now:          cfg.Now,
		log:          logger.Module("room").With().Str("room_id", cfg.ID).Logger(),
		publisher:    cfg.Publisher,
		refiller:     cfg.Refiller,
		onStop:       cfg.OnStop,
		members:      make(map[string]*member.Member),
		elector:      emitting.NewElector(),
		queue:        voting.NewQueue(cfg.Now),
		clock:        playback.NewClock(cfg.Now),
		gate:         filter.NewGate(cfg.Locations, cfg.Now),
		state:        state.New(cfg.ID, cfg.Settings.Name, cfg.CreatorID, now),
		mailbox:      make(chan envelope, cfg.MailboxSize),
		tickInterval: cfg.TickInterval,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	r.perms = permission.NewModel(cfg.CreatorID, cfg.Settings, r)
	r.suggestions = cfg.Suggestions.Chain(roomTracks{r})
	r.fallback = filter.NewChain(filter.NewDuplicateTrackFilter(roomTracks{r}))

	r.addMember(cfg.CreatorID, now)
	r.elector.Register(cfg.CreatorID, cfg.CreatorDevice)
	r.syncMember(cfg.CreatorID)

	r.logEvent(r.clock.Load(track.QueuedTrack{Track: cfg.Seed[0], Origin: track.OriginSeed, AddedAt: now}))
	r.queue.Seed(cfg.Seed[1:], track.OriginSeed)
	r.publishSummary()

	return r, nil
}

// ID returns the room ID.
func (r *Room) ID() string {
	return r.id
}

// Summary returns the lock-protected summary of the room.
func (r *Room) Summary() state.Summary {
	return r.state.Summary()
}

// IsActive reports whether the room still accepts commands.
func (r *Room) IsActive() bool {
	return r.state.IsActive()
}

// Done is closed when the actor has stopped.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Start launches the actor goroutine.
func (r *Room) Start() {
	go r.run()
}

// Do sends a command and waits for its result.
func (r *Room) Do(ctx context.Context, cmd Command) (Result, error) {
	env := envelope{cmd: cmd, reply: make(chan Result, 1)}

	select {
	case r.mailbox <- env:
	case <-r.done:
		return Result{}, ErrRoomTerminated
	case <-ctx.Done():
		return Result{}, errors.Wrap(ctx.Err(), "room mailbox full")
	}

	select {
	case res := <-env.reply:
		return res, nil
	case <-r.done:
		// The command that stopped the room still replies
		select {
		case res := <-env.reply:
			return res, nil
		default:
			return Result{}, ErrRoomTerminated
		}
	case <-ctx.Done():
		return Result{}, errors.Wrap(ctx.Err(), "waiting for room reply")
	}
}

// Terminate tears the room down and waits for the actor to stop.
func (r *Room) Terminate(ctx context.Context, reason string) error {
	_, err := r.Do(ctx, Terminate{Reason: reason})
	if err != nil && !errors.Is(err, ErrRoomTerminated) {
		return err
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) run() {
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()
	defer close(r.done)

	r.log.Info().Msgf("room started: name=%s creator=%s", r.settings.Name, r.perms.CreatorID())

	for {
		select {
		case env := <-r.mailbox:
			env.reply <- r.dispatch(env.cmd)
		case <-ticker.C:
			r.dispatch(Tick{})
		}
		if r.stopped {
			r.log.Info().Msg("room stopped")
			return
		}
	}
}

// dispatch applies one command. Panics are contained so that the actor keeps running.
func (r *Room) dispatch(cmd Command) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Msgf("command panicked: command=%T panic=%v", cmd, rec)
			res = rejected(ReasonInternal)
		}
		if !r.stopped {
			r.publishSummary()
		}
	}()

	switch c := cmd.(type) {
	case Join:
		res = r.handleJoin(c)
	case CheckJoin:
		res = r.handleCheckJoin(c)
	case Leave:
		res = r.handleLeave(c)
	case GetContext:
		res = r.handleGetContext(c)
	case Play:
		res = r.handlePlay(c)
	case Pause:
		res = r.handlePause(c)
	case NextTrack:
		res = r.handleNextTrack(c)
	case Vote:
		res = r.handleVote(c)
	case Suggest:
		res = r.handleSuggest(c)
	case RemoveTrack:
		res = r.handleRemoveTrack(c)
	case ChangeEmittingDevice:
		res = r.handleChangeEmittingDevice(c)
	case InviteUser:
		res = r.handleInviteUser(c)
	case UpdatePermission:
		res = r.handleUpdatePermission(c)
	case UpdateDelegationOwner:
		res = r.handleUpdateDelegationOwner(c)
	case GetUsersList:
		res = r.handleGetUsersList(c)
	case GetConstraintsDetails:
		res = r.handleGetConstraintsDetails(c)
	case DeviceConnected:
		res = r.handleDeviceConnected(c)
	case DeviceDisconnected:
		res = r.handleDeviceDisconnected(c)
	case Refill:
		res = r.handleRefill(c)
	case Tick:
		res = r.handleTick()
	case Terminate:
		res = r.handleTerminate(c)
	default:
		res = rejected(ReasonUnknownCommand)
	}

	if !res.OK() {
		r.log.Debug().Msgf("command rejected: command=%T reason=%s", cmd, res.Reason)
	}
	return res
}

// IsMember implements permission.Membership.
func (r *Room) IsMember(userID string) bool {
	_, ok := r.members[userID]
	return ok
}

func (r *Room) addMember(userID string, now time.Time) *member.Member {
	m := member.New(userID, r.perms.IsCreator(userID), now)
	r.members[userID] = m
	r.order = append(r.order, userID)
	return m
}

func (r *Room) removeMember(userID string) {
	delete(r.members, userID)
	for i, id := range r.order {
		if id == userID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.elector.RemoveUser(userID)
	r.perms.Forget(userID)
}

// syncMember copies permission and emitting state into the member record.
func (r *Room) syncMember(userID string) {
	m, ok := r.members[userID]
	if !ok {
		return
	}
	m.HasControlAndDelegationPermission = r.perms.HasPermission(userID)
	m.EmittingDeviceID = r.elector.EmittingDevice(userID)
}

// authority returns the BROADCAST audio authority, or "" in DIRECT mode.
func (r *Room) authority() string {
	return r.elector.Authority(r.settings.PlayingMode, r.perms.CreatorID(), r.perms.DelegationOwner())
}

// ensureAuthority re-elects the BROADCAST authority when it left or has no
// connected device. A creator who is still a member keeps authority through
// disconnections. Returns false when the room was torn down for lack of authority.
func (r *Room) ensureAuthority() bool {
	if r.settings.PlayingMode != room.PlayingModeBroadcast {
		return true
	}
	current := r.authority()
	if r.IsMember(current) && (r.perms.IsCreator(current) || r.elector.ConnectedCount(current) > 0) {
		return true
	}

	next, ok := r.elector.Reelect(r.perms.CreatorID(), r.perms.PermittedUsers())
	if !ok {
		r.log.Warn().Msgf("no member can hold audio authority: previous=%s", current)
		r.teardown(ReasonNoAuthority, "")
		return false
	}
	if r.perms.IsCreator(next) {
		r.perms.ClearDelegationIf(r.perms.DelegationOwner())
	} else {
		r.perms.ForceDelegationOwner(next)
	}
	r.log.Info().Msgf("audio authority re-elected: previous=%s next=%s", current, next)
	return true
}

// teardown disconnects every member except skip and stops the actor.
func (r *Room) teardown(reason, skip string) {
	r.state.SetPhase(state.PhaseTerminating)
	r.log.Info().Msgf("room terminating: reason=%s members=%d", reason, len(r.members))

	for _, userID := range r.order {
		if userID == skip {
			continue
		}
		r.publisher.Disconnect(userID, notification.ForcedDisconnection(r.id, reason))
	}

	r.logEvent(r.clock.Unload())
	r.state.Update(0, 0, false, r.now())
	r.state.SetPhase(state.PhaseTerminated)
	r.stopped = true
	r.cancel()

	if r.onStop != nil {
		r.onStop(r.id)
	}
}

// broadcast sends every member their own snapshot.
func (r *Room) broadcast() {
	for _, userID := range r.order {
		r.publishTo(userID)
	}
}

func (r *Room) publishTo(userID string) {
	r.publisher.Publish(userID, notification.RoomState(r.snapshotFor(userID, "")))
}

func (r *Room) publishSummary() {
	r.state.Update(len(r.members), r.queue.Len(), r.clock.IsPlaying(), r.now())
}

// promote makes the best eligible track current. When none qualifies and
// unloadIfNone is set, the room goes idle.
func (r *Room) promote(unloadIfNone bool) bool {
	next, ok := r.queue.PopEligible(r.settings.MinimumScoreToBePlayed)
	if !ok {
		if unloadIfNone {
			r.rememberCurrent()
			r.logEvent(r.clock.Unload())
		}
		return false
	}

	r.rememberCurrent()
	for _, m := range r.members {
		m.ForgetTrack(next.Track.ID)
	}
	r.logEvent(r.clock.Load(next))
	r.log.Info().Msgf("track promoted: track_id=%s title=%s score=%d", next.Track.ID, next.Track.Title, next.Score)
	return true
}

// logEvent records a clock transition.
func (r *Room) logEvent(ev playback.Event) {
	if ev.Track == nil {
		r.log.Debug().Msgf("playback event: type=%s state=%s", ev.Type, ev.State)
		return
	}
	r.log.Debug().Msgf("playback event: type=%s state=%s track_id=%s remaining=%v",
		ev.Type, ev.State, ev.Track.Track.ID, r.clock.Remaining())
}

func (r *Room) rememberCurrent() {
	cur, ok := r.clock.Current()
	if !ok {
		return
	}
	r.recent = append(r.recent, cur.Track)
	if len(r.recent) > recentTrackCount {
		r.recent = r.recent[len(r.recent)-recentTrackCount:]
	}
}

// maybeRefill asks the fallback providers for candidates when the queue is empty.
// The fetch runs outside the actor; its result comes back as a Refill command.
func (r *Room) maybeRefill() {
	if r.refiller == nil || r.refilling || r.queue.Len() > 0 {
		return
	}
	now := r.now()
	if !r.lastRefill.IsZero() && now.Sub(r.lastRefill) < refillRetryAfter {
		return
	}
	r.refilling = true
	r.lastRefill = now

	exclude := make(map[string]bool)
	held := roomTracks{r}.ListTracks()
	for _, t := range held {
		exclude[t.ID] = true
	}
	// Most recent first
	seeds := append([]track.Track(nil), r.recent...)
	slices.Reverse(seeds)
	count := r.refiller.CandidateCount()

	go func() {
		candidates, err := r.refiller.GetCandidates(r.ctx, count, seeds, exclude)
		tracks := make([]track.Track, 0, len(candidates))
		for _, c := range candidates {
			tracks = append(tracks, c.Track)
		}
		if _, doErr := r.Do(r.ctx, Refill{Candidates: tracks, Err: err}); doErr != nil {
			r.log.Debug().Err(doErr).Msg("refill result dropped")
		}
	}()
}

// roomTracks lists the current track and the queue for duplicate checks.
type roomTracks struct {
	r *Room
}

func (rt roomTracks) ListTracks() []track.Track {
	queued := rt.r.queue.Tracks()
	out := make([]track.Track, 0, len(queued)+1)
	if cur, ok := rt.r.clock.Current(); ok {
		out = append(out, cur.Track)
	}
	for _, qt := range queued {
		out = append(out, qt.Track)
	}
	return out
}
