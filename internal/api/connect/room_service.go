package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/app/location"
	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/geo"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/infra/config"
	"github.com/osa030/19room/internal/infra/logger"
)

// RoomService implements the RoomService RPC.
type RoomService struct {
	session *session.Manager
	config  *config.Config
	log     zerolog.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(session *session.Manager, cfg *config.Config) *RoomService {
	return &RoomService{
		session: session,
		config:  cfg,
		log:     logger.Module("api"),
	}
}

// Ensure RoomService implements the interface.
var _ roomv1.RoomServiceHandler = (*RoomService)(nil)

// CreateRoom creates a room owned by the caller.
func (s *RoomService) CreateRoom(
	ctx context.Context,
	req *connect.Request[roomv1.CreateRoomRequest],
) (*connect.Response[roomv1.CreateRoomResponse], error) {
	id := IdentityFrom(ctx)
	msg := req.Msg
	snap, err := s.session.CreateRoom(ctx, id.UserID, id.device(), session.CreateRequest{
		Name:                    msg.Name,
		Visibility:              room.Visibility(msg.Visibility),
		OnlyInvitedUsersCanVote: msg.OnlyInvitedUsersCanVote,
		PlayingMode:             room.PlayingMode(msg.PlayingMode),
		MinimumScoreToBePlayed:  msg.MinimumScoreToBePlayed,
		TimeConstraint:          msg.TimeConstraint,
		PositionConstraint:      msg.PositionConstraint,
		InitialTrackIDs:         msg.InitialTrackIDs,
		SeedPlaylistURL:         msg.SeedPlaylistURL,
	})
	if err != nil {
		s.log.Info().Err(err).Msgf("create room failed: user_id=%s", id.UserID)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.CreateRoomResponse{Room: snap}), nil
}

// JoinRoom binds the caller to a room.
func (s *RoomService) JoinRoom(
	ctx context.Context,
	req *connect.Request[roomv1.JoinRoomRequest],
) (*connect.Response[roomv1.JoinRoomResponse], error) {
	id := IdentityFrom(ctx)
	snap, err := s.session.Join(ctx, id.UserID, id.device(), req.Msg.RoomID)
	if err != nil {
		s.log.Info().Err(err).Msgf("join failed: user_id=%s room_id=%s", id.UserID, req.Msg.RoomID)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.JoinRoomResponse{Room: snap}), nil
}

// LeaveRoom removes the caller from their room.
func (s *RoomService) LeaveRoom(
	ctx context.Context,
	req *connect.Request[roomv1.LeaveRoomRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.Leave(ctx, id.UserID)
	return s.silent("leave", id, res, err)
}

// GetContext returns the caller's snapshot.
func (s *RoomService) GetContext(
	ctx context.Context,
	req *connect.Request[roomv1.GetContextRequest],
) (*connect.Response[roomv1.GetContextResponse], error) {
	id := IdentityFrom(ctx)
	snap, err := s.session.GetContext(ctx, id.UserID, id.DeviceID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.GetContextResponse{Room: snap}), nil
}

// Play starts or resumes playback.
func (s *RoomService) Play(
	ctx context.Context,
	req *connect.Request[roomv1.PlayRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.Play(ctx, id.UserID)
	return s.silent("play", id, res, err)
}

// Pause pauses playback.
func (s *RoomService) Pause(
	ctx context.Context,
	req *connect.Request[roomv1.PauseRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.Pause(ctx, id.UserID)
	return s.silent("pause", id, res, err)
}

// NextTrack skips to the best eligible track.
func (s *RoomService) NextTrack(
	ctx context.Context,
	req *connect.Request[roomv1.NextTrackRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.NextTrack(ctx, id.UserID)
	return s.silent("next track", id, res, err)
}

// VoteForTrack votes for a queued track.
func (s *RoomService) VoteForTrack(
	ctx context.Context,
	req *connect.Request[roomv1.VoteForTrackRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.Vote(ctx, id.UserID, id.DeviceID, req.Msg.TrackID)
	return s.silent("vote", id, res, err)
}

// SuggestTracks proposes tracks. This is the only command whose rejection
// reaches the caller, as a failed response rather than an error.
func (s *RoomService) SuggestTracks(
	ctx context.Context,
	req *connect.Request[roomv1.SuggestTracksRequest],
) (*connect.Response[roomv1.SuggestTracksResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.SuggestTracks(ctx, id.UserID, id.DeviceID, req.Msg.TrackIDs)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &roomv1.SuggestTracksResponse{Success: res.OK(), Accepted: []string{}}
	if res.Suggestion != nil {
		resp.Accepted = append(resp.Accepted, res.Suggestion.Accepted...)
		for _, r := range res.Suggestion.Rejected {
			resp.Rejected = append(resp.Rejected, roomv1.TrackRejection{
				TrackID: r.TrackID,
				Code:    r.Code,
				Message: s.config.GetMessage(r.Code),
			})
		}
	}
	if resp.Success {
		resp.Message = s.config.GetMessage("success")
	} else {
		resp.Code = res.Reason
		resp.Message = s.config.GetMessage(res.Reason)
	}
	return connect.NewResponse(resp), nil
}

// SearchTracks searches the catalog.
func (s *RoomService) SearchTracks(
	ctx context.Context,
	req *connect.Request[roomv1.SearchTracksRequest],
) (*connect.Response[roomv1.SearchTracksResponse], error) {
	tracks, err := s.session.SearchTracks(ctx, req.Msg.Query, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]roomv1.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, roomv1.NewTrack(t))
	}
	return connect.NewResponse(&roomv1.SearchTracksResponse{Tracks: out}), nil
}

// RemoveTrack deletes a queued track.
func (s *RoomService) RemoveTrack(
	ctx context.Context,
	req *connect.Request[roomv1.RemoveTrackRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.RemoveTrack(ctx, id.UserID, req.Msg.TrackID)
	return s.silent("remove track", id, res, err)
}

// ChangeEmittingDevice switches the caller's emitting device.
func (s *RoomService) ChangeEmittingDevice(
	ctx context.Context,
	req *connect.Request[roomv1.ChangeEmittingDeviceRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.ChangeEmittingDevice(ctx, id.UserID, req.Msg.DeviceID)
	return s.silent("change emitting device", id, res, err)
}

// InviteUser invites a user to the caller's room.
func (s *RoomService) InviteUser(
	ctx context.Context,
	req *connect.Request[roomv1.InviteUserRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.InviteUser(ctx, id.UserID, req.Msg.UserID)
	return s.silent("invite", id, res, err)
}

// UpdateControlAndDelegationPermission grants or revokes a member's permission.
func (s *RoomService) UpdateControlAndDelegationPermission(
	ctx context.Context,
	req *connect.Request[roomv1.UpdateControlAndDelegationPermissionRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.UpdatePermission(ctx, id.UserID, req.Msg.UserID, req.Msg.HasControlAndDelegationPermission)
	return s.silent("update permission", id, res, err)
}

// UpdateDelegationOwner designates the delegation owner.
func (s *RoomService) UpdateDelegationOwner(
	ctx context.Context,
	req *connect.Request[roomv1.UpdateDelegationOwnerRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	res, err := s.session.UpdateDelegationOwner(ctx, id.UserID, req.Msg.UserID)
	return s.silent("update delegation owner", id, res, err)
}

// GetUsersList returns the roster of the caller's room.
func (s *RoomService) GetUsersList(
	ctx context.Context,
	req *connect.Request[roomv1.GetUsersListRequest],
) (*connect.Response[roomv1.GetUsersListResponse], error) {
	id := IdentityFrom(ctx)
	users, err := s.session.GetUsersList(ctx, id.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.GetUsersListResponse{Users: users}), nil
}

// GetRoomConstraintsDetails describes the vote constraints of the caller's room.
func (s *RoomService) GetRoomConstraintsDetails(
	ctx context.Context,
	req *connect.Request[roomv1.GetRoomConstraintsDetailsRequest],
) (*connect.Response[roomv1.GetRoomConstraintsDetailsResponse], error) {
	id := IdentityFrom(ctx)
	details, err := s.session.GetRoomConstraintsDetails(ctx, id.UserID, id.DeviceID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.GetRoomConstraintsDetailsResponse{Constraints: details}), nil
}

// ReportLocation records the caller device's location.
func (s *RoomService) ReportLocation(
	ctx context.Context,
	req *connect.Request[roomv1.ReportLocationRequest],
) (*connect.Response[roomv1.CommandResponse], error) {
	id := IdentityFrom(ctx)
	err := s.session.ReportLocation(location.Report{
		DeviceID:   id.DeviceID,
		Point:      geo.Point{Lat: req.Msg.Lat, Lng: req.Msg.Lng},
		ReportedAt: req.Msg.ReportedAt,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.CommandResponse{}), nil
}

// Subscribe streams notifications to the caller's device. The stream's
// lifetime is the device's connection.
func (s *RoomService) Subscribe(
	ctx context.Context,
	req *connect.Request[roomv1.SubscribeRequest],
	stream *connect.ServerStream[roomv1.Notification],
) error {
	id := IdentityFrom(ctx)
	sub, err := s.session.Subscribe(ctx, id.UserID, id.DeviceID, &notificationStreamAdapter{stream: stream})
	if err != nil {
		return toConnectError(err)
	}
	s.log.Debug().Msgf("stream opened: user_id=%s device_id=%s", id.UserID, id.DeviceID)

	// Wait for the client to go away or the server to end the subscription
	select {
	case <-ctx.Done():
	case <-sub.Done():
	}

	s.session.Unsubscribe(context.WithoutCancel(ctx), sub)
	s.log.Debug().Msgf("stream closed: user_id=%s device_id=%s", id.UserID, id.DeviceID)
	return nil
}

// silent turns a command outcome into an empty response. Rejections and a
// missing room are logged only.
func (s *RoomService) silent(op string, id Identity, res session.Result, err error) (*connect.Response[roomv1.CommandResponse], error) {
	switch {
	case err != nil && isGone(err):
		s.log.Debug().Err(err).Msgf("%s ignored: user_id=%s", op, id.UserID)
	case err != nil:
		return nil, toConnectError(err)
	case !res.OK():
		s.log.Debug().Msgf("%s rejected: user_id=%s reason=%s", op, id.UserID, res.Reason)
	}
	return connect.NewResponse(&roomv1.CommandResponse{}), nil
}

func (id Identity) device() device.Device {
	return device.Device{ID: id.DeviceID, Name: id.DeviceName}
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
type notificationStreamAdapter struct {
	stream *connect.ServerStream[roomv1.Notification]
}

func (a *notificationStreamAdapter) Send(n *roomv1.Notification) error {
	return a.stream.Send(n)
}
