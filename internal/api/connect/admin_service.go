package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/app/session/state"
	"github.com/osa030/19room/internal/infra/logger"
)

// AdminService implements the AdminService RPC.
type AdminService struct {
	session *session.Manager
	log     zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(session *session.Manager) *AdminService {
	return &AdminService{
		session: session,
		log:     logger.Module("admin"),
	}
}

// Ensure AdminService implements the interface.
var _ roomv1.AdminServiceHandler = (*AdminService)(nil)

// ListRooms lists every live room.
func (s *AdminService) ListRooms(
	ctx context.Context,
	req *connect.Request[roomv1.ListRoomsRequest],
) (*connect.Response[roomv1.ListRoomsResponse], error) {
	rooms := s.session.ListRooms()
	out := make([]roomv1.RoomSummary, len(rooms))
	for i, r := range rooms {
		out[i] = toRoomSummary(r)
	}
	return connect.NewResponse(&roomv1.ListRoomsResponse{Rooms: out}), nil
}

// GetRoom returns one room.
func (s *AdminService) GetRoom(
	ctx context.Context,
	req *connect.Request[roomv1.GetRoomRequest],
) (*connect.Response[roomv1.GetRoomResponse], error) {
	r, err := s.session.GetRoom(req.Msg.RoomID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&roomv1.GetRoomResponse{Room: toRoomSummary(r)}), nil
}

// TerminateRoom tears a room down.
func (s *AdminService) TerminateRoom(
	ctx context.Context,
	req *connect.Request[roomv1.TerminateRoomRequest],
) (*connect.Response[roomv1.TerminateRoomResponse], error) {
	err := s.session.TerminateRoom(ctx, req.Msg.RoomID, req.Msg.Reason)
	if errors.Is(err, session.ErrRoomNotFound) {
		return nil, toConnectError(err)
	}
	if err != nil {
		s.log.Warn().Err(err).Msgf("terminate failed: room_id=%s", req.Msg.RoomID)
		return connect.NewResponse(&roomv1.TerminateRoomResponse{
			Success: false,
			Message: err.Error(),
		}), nil
	}

	return connect.NewResponse(&roomv1.TerminateRoomResponse{
		Success: true,
		Message: "Room terminated",
	}), nil
}

func toRoomSummary(s state.Summary) roomv1.RoomSummary {
	return roomv1.RoomSummary{
		RoomID:        s.RoomID,
		Name:          s.Name,
		CreatorUserID: s.CreatorID,
		Phase:         s.Phase.String(),
		MemberCount:   s.MemberCount,
		QueueLength:   s.QueueLength,
		Playing:       s.Playing,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
