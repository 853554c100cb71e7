package session

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/osa030/19room/internal/app/emitting"
	"github.com/osa030/19room/internal/app/filter"
	"github.com/osa030/19room/internal/app/location"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/app/session/registry"
	"github.com/osa030/19room/internal/app/session/state"
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
	"github.com/osa030/19room/internal/infra/logger"
)

const defaultCommandTimeout = 2 * time.Second

// Catalog resolves track IDs and searches tracks.
// Implemented by *catalog.Static and *spotify.Client.
type Catalog interface {
	GetTracks(ctx context.Context, ids []string) ([]track.Track, error)
	Search(ctx context.Context, query string, limit int) ([]track.Track, error)
}

// PlaylistLoader loads every track of a playlist. Implemented by *spotify.Client.
type PlaylistLoader interface {
	GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error)
}

// Config holds the dependencies of a Manager.
type Config struct {
	Catalog     Catalog
	Playlists   PlaylistLoader // Optional, enables SeedPlaylistURL
	Locations   *location.Store
	Hub         *notification.Manager
	Refiller    Refiller // Optional, enables fallback refills
	Suggestions *filter.SuggestionPolicy

	TickInterval   time.Duration
	MailboxSize    int
	MaxRooms       int
	CommandTimeout time.Duration
	Now            func() time.Time
}

// Manager is the entry point used by transports. It routes every command to
// the room the caller is bound to.
type Manager struct {
	cfg   Config
	rooms *registry.Registry[*Room]
	log   zerolog.Logger
}

// NewManager creates a manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("session manager requires a catalog")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Hub == nil {
		cfg.Hub = notification.NewManager(notification.DefaultSendTimeout)
	}
	if cfg.Locations == nil {
		cfg.Locations = location.NewStore(0, cfg.Now)
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = defaultCommandTimeout
	}
	return &Manager{
		cfg:   cfg,
		rooms: registry.New[*Room](cfg.MaxRooms),
		log:   logger.Module("session"),
	}, nil
}

// CreateRoom creates a room owned by creatorID and binds the creator to it.
// A creator already in a room leaves it first.
func (m *Manager) CreateRoom(ctx context.Context, creatorID string, dev device.Device, req CreateRequest) (*room.Snapshot, error) {
	if creatorID == "" || dev.ID == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "user and device are required")
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	seed, err := m.resolveSeed(ctx, req)
	if err != nil {
		return nil, err
	}

	roomID := uuid.New().String()
	dev.OwnerUserID = creatorID
	r, err := NewRoom(RoomConfig{
		ID:            roomID,
		Settings:      req.Settings(),
		CreatorID:     creatorID,
		CreatorDevice: dev,
		Seed:          seed,
		Publisher:     m.cfg.Hub,
		Locations:     m.cfg.Locations,
		Suggestions:   m.cfg.Suggestions,
		Refiller:      m.cfg.Refiller,
		TickInterval:  m.cfg.TickInterval,
		MailboxSize:   m.cfg.MailboxSize,
		Now:           m.cfg.Now,
		OnStop:        m.rooms.Remove,
	})
	if err != nil {
		return nil, err
	}
	if err := m.rooms.Add(roomID, r); err != nil {
		r.cancel()
		return nil, errors.Wrap(err, "failed to register room")
	}

	// The previous room is left only once the new one is registered
	m.leaveCurrent(ctx, creatorID)
	r.Start()
	m.rooms.Bind(creatorID, roomID)

	m.log.Info().Msgf("room created: room_id=%s name=%s creator=%s seed_tracks=%d rooms=%d", roomID, req.Name, creatorID, len(seed), m.rooms.Count())

	res, err := m.send(ctx, r, GetContext{UserID: creatorID, DeviceID: dev.ID})
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

func (m *Manager) resolveSeed(ctx context.Context, req CreateRequest) ([]track.Track, error) {
	var (
		tracks []track.Track
		err    error
	)
	if req.SeedPlaylistURL != "" && len(req.InitialTrackIDs) == 0 {
		if m.cfg.Playlists == nil {
			return nil, errors.Wrap(ErrInvalidRequest, "playlist seeding is not available")
		}
		tracks, err = m.cfg.Playlists.GetPlaylistTracks(ctx, req.SeedPlaylistURL)
	} else {
		tracks, err = m.cfg.Catalog.GetTracks(ctx, req.InitialTrackIDs)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to resolve seed tracks"), ErrCatalog)
	}
	if len(tracks) == 0 {
		return nil, errors.Wrap(ErrInvalidRequest, "none of the seed tracks exist")
	}
	if len(tracks) > maxSeedTracks {
		tracks = tracks[:maxSeedTracks]
	}
	return tracks, nil
}

// Join binds userID to roomID. A user switching rooms leaves the previous
// room only after the target room has accepted the join check.
func (m *Manager) Join(ctx context.Context, userID string, dev device.Device, roomID string) (*room.Snapshot, error) {
	if userID == "" || dev.ID == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "user and device are required")
	}
	r, err := m.rooms.Get(roomID)
	if err != nil {
		return nil, errors.Wrapf(ErrRoomNotFound, "room_id=%s", roomID)
	}

	if current, bound := m.rooms.RoomOf(userID); bound && current != roomID {
		res, err := m.send(ctx, r, CheckJoin{UserID: userID, DeviceID: dev.ID})
		if err != nil {
			return nil, err
		}
		if err := joinError(res.Reason, roomID, userID, dev.ID); err != nil {
			return nil, err
		}
		m.leaveCurrent(ctx, userID)
	}

	dev.OwnerUserID = userID
	res, err := m.send(ctx, r, Join{UserID: userID, Device: dev})
	if err != nil {
		return nil, err
	}
	if err := joinError(res.Reason, roomID, userID, dev.ID); err != nil {
		return nil, err
	}

	m.rooms.Bind(userID, roomID)
	return res.Snapshot, nil
}

func joinError(reason, roomID, userID, deviceID string) error {
	switch reason {
	case "":
		return nil
	case ReasonJoinForbidden:
		return errors.Wrapf(ErrJoinForbidden, "room_id=%s user_id=%s", roomID, userID)
	case emitting.CodeDeviceNotOwned:
		return errors.Wrapf(ErrInvalidRequest, "device %s belongs to another user", deviceID)
	default:
		return errors.Newf("join rejected: %s", reason)
	}
}

// leaveCurrent removes userID from the room they are bound to, if any.
func (m *Manager) leaveCurrent(ctx context.Context, userID string) {
	if _, bound := m.rooms.RoomOf(userID); !bound {
		return
	}
	if _, err := m.Leave(ctx, userID); err != nil {
		m.log.Warn().Err(err).Msgf("implicit leave failed: user_id=%s", userID)
	}
}

// Leave removes userID from their room.
func (m *Manager) Leave(ctx context.Context, userID string) (Result, error) {
	roomID, res, err := m.route(ctx, userID, Leave{UserID: userID})
	if roomID != "" {
		m.rooms.Unbind(userID, roomID)
	}
	return res, err
}

// GetContext returns the caller's snapshot.
func (m *Manager) GetContext(ctx context.Context, userID, deviceID string) (*room.Snapshot, error) {
	res, err := m.do(ctx, userID, GetContext{UserID: userID, DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, errors.Wrapf(ErrNotInRoom, "user_id=%s", userID)
	}
	return res.Snapshot, nil
}

// Play starts or resumes playback.
func (m *Manager) Play(ctx context.Context, userID string) (Result, error) {
	return m.do(ctx, userID, Play{UserID: userID})
}

// Pause pauses playback.
func (m *Manager) Pause(ctx context.Context, userID string) (Result, error) {
	return m.do(ctx, userID, Pause{UserID: userID})
}

// NextTrack skips to the best eligible track.
func (m *Manager) NextTrack(ctx context.Context, userID string) (Result, error) {
	return m.do(ctx, userID, NextTrack{UserID: userID})
}

// Vote votes for a queued track from deviceID.
func (m *Manager) Vote(ctx context.Context, userID, deviceID, trackID string) (Result, error) {
	if trackID == "" {
		return Result{}, errors.Wrap(ErrInvalidRequest, "track ID is required")
	}
	return m.do(ctx, userID, Vote{UserID: userID, DeviceID: deviceID, TrackID: trackID})
}

// SuggestTracks resolves trackIDs in the catalog, then proposes them to the room.
// The catalog is queried outside the room actor.
func (m *Manager) SuggestTracks(ctx context.Context, userID, deviceID string, trackIDs []string) (Result, error) {
	if len(trackIDs) == 0 {
		return Result{}, errors.Wrap(ErrInvalidRequest, "at least one track is required")
	}
	if _, bound := m.rooms.RoomOf(userID); !bound {
		return Result{}, errors.Wrapf(ErrNotInRoom, "user_id=%s", userID)
	}

	tracks, err := m.cfg.Catalog.GetTracks(ctx, trackIDs)
	if err != nil {
		return Result{}, errors.Mark(errors.Wrap(err, "failed to resolve suggested tracks"), ErrCatalog)
	}

	found := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		found[t.ID] = true
	}
	var missing []string
	for _, id := range trackIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}

	return m.do(ctx, userID, Suggest{UserID: userID, DeviceID: deviceID, Tracks: tracks, Missing: missing})
}

// SearchTracks searches the catalog.
func (m *Manager) SearchTracks(ctx context.Context, query string, limit int) ([]track.Track, error) {
	tracks, err := m.cfg.Catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "search failed"), ErrCatalog)
	}
	return tracks, nil
}

// RemoveTrack deletes a queued track.
func (m *Manager) RemoveTrack(ctx context.Context, userID, trackID string) (Result, error) {
	return m.do(ctx, userID, RemoveTrack{UserID: userID, TrackID: trackID})
}

// ChangeEmittingDevice switches the caller's emitting device.
func (m *Manager) ChangeEmittingDevice(ctx context.Context, userID, deviceID string) (Result, error) {
	return m.do(ctx, userID, ChangeEmittingDevice{UserID: userID, DeviceID: deviceID})
}

// InviteUser invites inviteeID to the caller's room.
func (m *Manager) InviteUser(ctx context.Context, userID, inviteeID string) (Result, error) {
	if inviteeID == "" {
		return Result{}, errors.Wrap(ErrInvalidRequest, "invitee is required")
	}
	return m.do(ctx, userID, InviteUser{UserID: userID, InviteeID: inviteeID})
}

// UpdatePermission grants or revokes the control and delegation permission.
func (m *Manager) UpdatePermission(ctx context.Context, userID, targetID string, granted bool) (Result, error) {
	return m.do(ctx, userID, UpdatePermission{UserID: userID, TargetID: targetID, Granted: granted})
}

// UpdateDelegationOwner designates the delegation owner.
func (m *Manager) UpdateDelegationOwner(ctx context.Context, userID, targetID string) (Result, error) {
	return m.do(ctx, userID, UpdateDelegationOwner{UserID: userID, TargetID: targetID})
}

// GetUsersList returns the roster of the caller's room.
func (m *Manager) GetUsersList(ctx context.Context, userID string) ([]room.UserSummary, error) {
	res, err := m.do(ctx, userID, GetUsersList{UserID: userID})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, errors.Wrapf(ErrNotInRoom, "user_id=%s", userID)
	}
	return res.Users, nil
}

// GetRoomConstraintsDetails describes the vote constraints of the caller's room.
func (m *Manager) GetRoomConstraintsDetails(ctx context.Context, userID, deviceID string) (*room.ConstraintsDetails, error) {
	res, err := m.do(ctx, userID, GetConstraintsDetails{UserID: userID, DeviceID: deviceID})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, errors.Wrapf(ErrNotInRoom, "user_id=%s", userID)
	}
	return res.Constraints, nil
}

// ConnectDevice marks a device of the caller connected.
func (m *Manager) ConnectDevice(ctx context.Context, userID string, dev device.Device) (Result, error) {
	dev.OwnerUserID = userID
	return m.do(ctx, userID, DeviceConnected{UserID: userID, Device: dev})
}

// DisconnectDevice marks a device of the caller disconnected.
func (m *Manager) DisconnectDevice(ctx context.Context, userID, deviceID string) (Result, error) {
	return m.do(ctx, userID, DeviceDisconnected{UserID: userID, DeviceID: deviceID})
}

// ReportLocation records the latest location of a device.
func (m *Manager) ReportLocation(report location.Report) error {
	if err := m.cfg.Locations.Report(report); err != nil {
		return errors.Mark(err, ErrInvalidRequest)
	}
	return nil
}

// ListRooms returns the summary of every live room.
func (m *Manager) ListRooms() []state.Summary {
	rooms := m.rooms.All()
	out := make([]state.Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

// GetRoom returns the summary of one room.
func (m *Manager) GetRoom(roomID string) (state.Summary, error) {
	r, err := m.rooms.Get(roomID)
	if err != nil {
		return state.Summary{}, errors.Wrapf(ErrRoomNotFound, "room_id=%s", roomID)
	}
	return r.Summary(), nil
}

// TerminateRoom tears a room down and disconnects its members.
func (m *Manager) TerminateRoom(ctx context.Context, roomID, reason string) error {
	r, err := m.rooms.Get(roomID)
	if err != nil {
		return errors.Wrapf(ErrRoomNotFound, "room_id=%s", roomID)
	}
	if reason == "" {
		reason = ReasonAdminTerminate
	}
	m.log.Info().Msgf("terminating room: room_id=%s reason=%s", roomID, reason)
	return r.Terminate(ctx, reason)
}

// Subscribe registers a device stream. When the user is in a room the device
// is marked connected and the stream receives the initial snapshot.
func (m *Manager) Subscribe(ctx context.Context, userID, deviceID string, stream notification.Stream) (*notification.Subscription, error) {
	if userID == "" || deviceID == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "user and device are required")
	}
	sub := m.cfg.Hub.Subscribe(userID, deviceID, stream)

	if _, bound := m.rooms.RoomOf(userID); !bound {
		return sub, nil
	}
	res, err := m.ConnectDevice(ctx, userID, device.Device{ID: deviceID})
	if err != nil || !res.OK() {
		m.log.Debug().Msgf("subscribed without room state: user_id=%s device_id=%s reason=%s", userID, deviceID, res.Reason)
		return sub, nil
	}
	if err := m.cfg.Hub.Send(sub, notification.InitialState(res.Snapshot)); err != nil {
		m.cfg.Hub.Unsubscribe(sub.ID)
		_, _ = m.DisconnectDevice(ctx, userID, deviceID)
		return nil, errors.Wrap(err, "failed to send initial state")
	}
	return sub, nil
}

// Unsubscribe ends a stream. The device is marked disconnected.
func (m *Manager) Unsubscribe(ctx context.Context, sub *notification.Subscription) {
	m.cfg.Hub.Unsubscribe(sub.ID)
	if _, bound := m.rooms.RoomOf(sub.UserID); !bound {
		return
	}
	if _, err := m.DisconnectDevice(ctx, sub.UserID, sub.DeviceID); err != nil {
		m.log.Debug().Err(err).Msgf("device disconnect dropped: user_id=%s device_id=%s", sub.UserID, sub.DeviceID)
	}
}

// Close terminates every room and closes the notification hub.
func (m *Manager) Close(ctx context.Context) {
	for _, r := range m.rooms.All() {
		if err := r.Terminate(ctx, ReasonShutdown); err != nil {
			m.log.Warn().Err(err).Msgf("failed to terminate room: room_id=%s", r.ID())
		}
	}
	m.cfg.Hub.Flush()
	m.cfg.Hub.Close()
}

// do routes cmd to the room userID is bound to.
func (m *Manager) do(ctx context.Context, userID string, cmd Command) (Result, error) {
	_, res, err := m.route(ctx, userID, cmd)
	return res, err
}

func (m *Manager) route(ctx context.Context, userID string, cmd Command) (string, Result, error) {
	roomID, bound := m.rooms.RoomOf(userID)
	if !bound {
		return "", Result{}, errors.Wrapf(ErrNotInRoom, "user_id=%s", userID)
	}
	r, err := m.rooms.Get(roomID)
	if err != nil {
		m.rooms.Unbind(userID, roomID)
		return "", Result{}, errors.Wrapf(ErrRoomNotFound, "room_id=%s", roomID)
	}

	res, err := m.send(ctx, r, cmd)
	if errors.Is(err, ErrRoomTerminated) {
		m.rooms.Unbind(userID, roomID)
	}
	return roomID, res, err
}

func (m *Manager) send(ctx context.Context, r *Room, cmd Command) (Result, error) {
	if !r.IsActive() {
		return Result{}, ErrRoomTerminated
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.CommandTimeout)
	defer cancel()
	return r.Do(ctx, cmd)
}
