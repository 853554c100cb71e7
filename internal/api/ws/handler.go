// Package ws serves rooms over WebSocket: JSON commands in, replies and
// notifications out.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
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

// Path is where the handler is mounted.
const Path = "/ws"

const maxMessageSize = 64 << 10

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades requests and runs one connection per device.
type Handler struct {
	session *session.Manager
	config  *config.Config
	log     zerolog.Logger
}

// NewHandler creates a handler.
func NewHandler(session *session.Manager, cfg *config.Config) *Handler {
	return &Handler{
		session: session,
		config:  cfg,
		log:     logger.Module("ws"),
	}
}

type client struct {
	userID     string
	deviceID   string
	deviceName string
	conn       *conn
}

func (c *client) device() device.Device {
	return device.Device{ID: c.deviceID, Name: c.deviceName}
}

// ServeHTTP handles /ws?user_id=&device_id=. The identity headers of the
// Connect API are accepted too.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cl := &client{
		userID:     firstOf(q.Get("user_id"), r.Header.Get(roomv1.HeaderUserID)),
		deviceID:   firstOf(q.Get("device_id"), r.Header.Get(roomv1.HeaderDeviceID)),
		deviceName: firstOf(q.Get("device_name"), r.Header.Get(roomv1.HeaderDeviceName)),
	}
	if cl.userID == "" || cl.deviceID == "" {
		http.Error(w, "user_id and device_id are required", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	cl.conn = newConn(wsConn, h.config.Server.WebSocket.SendBuffer)

	ctx := context.WithoutCancel(r.Context())
	sub, err := h.session.Subscribe(ctx, cl.userID, cl.deviceID, cl.conn)
	if err != nil {
		h.log.Warn().Err(err).Msgf("subscribe failed: user_id=%s device_id=%s", cl.userID, cl.deviceID)
		cl.conn.close()
		return
	}
	h.log.Info().Msgf("websocket connected: user_id=%s device_id=%s", cl.userID, cl.deviceID)

	pingInterval := time.Duration(h.config.Server.WebSocket.PingIntervalSec) * time.Second
	go cl.conn.writePump(sub.Done(), pingInterval)

	h.readPump(ctx, cl, 2*pingInterval)

	h.session.Unsubscribe(ctx, sub)
	cl.conn.close()
	h.log.Info().Msgf("websocket disconnected: user_id=%s device_id=%s", cl.userID, cl.deviceID)
}

func (h *Handler) readPump(ctx context.Context, cl *client, pongWait time.Duration) {
	ws := cl.conn.ws
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug().Err(err).Msgf("read failed: user_id=%s", cl.userID)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		h.handle(ctx, cl, data)
	}
}

// handle decodes one command and applies it. Commands whose rejection is
// silent produce no reply.
func (h *Handler) handle(ctx context.Context, cl *client, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		h.send(cl, reply{Type: TypeError, Code: "bad_json", Message: h.config.GetMessage("bad_json")})
		return
	}

	switch in.Type {
	case TypeCreateRoom:
		h.handleCreateRoom(ctx, cl, in)
	case TypeJoin:
		snap, err := h.session.Join(ctx, cl.userID, cl.device(), in.RoomID)
		if err != nil {
			h.fail(cl, in, TypeJoinFail, err)
			return
		}
		h.send(cl, reply{Type: TypeJoinSuccess, RequestID: in.RequestID, Room: snap})
	case TypeLeave:
		h.silent(cl, in)(h.session.Leave(ctx, cl.userID))
	case TypeGetContext:
		snap, err := h.session.GetContext(ctx, cl.userID, cl.deviceID)
		if err != nil {
			h.fail(cl, in, TypeError, err)
			return
		}
		h.send(cl, reply{Type: TypeContext, RequestID: in.RequestID, Room: snap})
	case TypePlay:
		h.silent(cl, in)(h.session.Play(ctx, cl.userID))
	case TypePause:
		h.silent(cl, in)(h.session.Pause(ctx, cl.userID))
	case TypeNextTrack:
		h.silent(cl, in)(h.session.NextTrack(ctx, cl.userID))
	case TypeVoteForTrack:
		h.silent(cl, in)(h.session.Vote(ctx, cl.userID, cl.deviceID, in.TrackID))
	case TypeSuggestTracks:
		h.handleSuggest(ctx, cl, in)
	case TypeRemoveTrack:
		h.silent(cl, in)(h.session.RemoveTrack(ctx, cl.userID, in.TrackID))
	case TypeChangeEmittingDevice:
		h.silent(cl, in)(h.session.ChangeEmittingDevice(ctx, cl.userID, in.DeviceID))
	case TypeInviteUser:
		h.silent(cl, in)(h.session.InviteUser(ctx, cl.userID, in.UserID))
	case TypeUpdatePermission:
		h.silent(cl, in)(h.session.UpdatePermission(ctx, cl.userID, in.UserID, in.HasControlAndDelegationPermission))
	case TypeUpdateDelegationOwner:
		h.silent(cl, in)(h.session.UpdateDelegationOwner(ctx, cl.userID, in.UserID))
	case TypeGetUsersList:
		users, err := h.session.GetUsersList(ctx, cl.userID)
		if err != nil {
			h.fail(cl, in, TypeError, err)
			return
		}
		h.send(cl, reply{Type: TypeUsersList, RequestID: in.RequestID, Users: users})
	case TypeGetRoomConstraintsDetails:
		details, err := h.session.GetRoomConstraintsDetails(ctx, cl.userID, cl.deviceID)
		if err != nil {
			h.fail(cl, in, TypeError, err)
			return
		}
		h.send(cl, reply{Type: TypeConstraintsDetails, RequestID: in.RequestID, Constraints: details})
	case TypeReportLocation:
		err := h.session.ReportLocation(location.Report{
			DeviceID:   cl.deviceID,
			Point:      geo.Point{Lat: in.Lat, Lng: in.Lng},
			ReportedAt: in.ReportedAt,
		})
		if err != nil {
			h.log.Debug().Err(err).Msgf("location dropped: device_id=%s", cl.deviceID)
		}
	case TypePing:
		h.send(cl, reply{Type: TypePong, RequestID: in.RequestID})
	default:
		h.log.Warn().Msgf("unknown command: type=%s user_id=%s", in.Type, cl.userID)
		h.send(cl, reply{Type: TypeError, RequestID: in.RequestID, Code: session.ReasonUnknownCommand, Message: h.config.GetMessage(session.ReasonUnknownCommand)})
	}
}

func (h *Handler) handleCreateRoom(ctx context.Context, cl *client, in inbound) {
	if in.Room == nil {
		h.fail(cl, in, TypeCreateRoomFail, errors.Wrap(session.ErrInvalidRequest, "room is required"))
		return
	}
	msg := in.Room
	snap, err := h.session.CreateRoom(ctx, cl.userID, cl.device(), session.CreateRequest{
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
		h.fail(cl, in, TypeCreateRoomFail, err)
		return
	}
	h.send(cl, reply{Type: TypeCreateRoomSuccess, RequestID: in.RequestID, Room: snap})
}

func (h *Handler) handleSuggest(ctx context.Context, cl *client, in inbound) {
	res, err := h.session.SuggestTracks(ctx, cl.userID, cl.deviceID, in.TrackIDs)
	if err != nil {
		h.fail(cl, in, TypeSuggestTracksFail, err)
		return
	}

	out := reply{RequestID: in.RequestID}
	if res.Suggestion != nil {
		out.Accepted = res.Suggestion.Accepted
		for _, r := range res.Suggestion.Rejected {
			out.Rejected = append(out.Rejected, roomv1.TrackRejection{
				TrackID: r.TrackID,
				Code:    r.Code,
				Message: h.config.GetMessage(r.Code),
			})
		}
	}
	if res.OK() {
		out.Type = TypeSuggestTracksSuccess
		out.Message = h.config.GetMessage("success")
	} else {
		out.Type = TypeSuggestTracksFail
		out.Code = res.Reason
		out.Message = h.config.GetMessage(res.Reason)
	}
	h.send(cl, out)
}

// silent logs the outcome of a command that has no reply.
func (h *Handler) silent(cl *client, in inbound) func(session.Result, error) {
	return func(res session.Result, err error) {
		switch {
		case err != nil:
			h.log.Debug().Err(err).Msgf("%s failed: user_id=%s", in.Type, cl.userID)
		case !res.OK():
			h.log.Debug().Msgf("%s rejected: user_id=%s reason=%s", in.Type, cl.userID, res.Reason)
		}
	}
}

func (h *Handler) fail(cl *client, in inbound, typ string, err error) {
	code := codeOf(err)
	h.log.Info().Err(err).Msgf("%s failed: user_id=%s code=%s", in.Type, cl.userID, code)
	h.send(cl, reply{Type: typ, RequestID: in.RequestID, Code: code, Message: h.config.GetMessage(code)})
}

func (h *Handler) send(cl *client, r reply) {
	if err := cl.conn.sendJSON(r); err != nil {
		h.log.Debug().Err(err).Msgf("reply dropped: user_id=%s type=%s", cl.userID, r.Type)
	}
}

// codeOf maps session errors onto reply codes.
func codeOf(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, session.ErrRoomNotFound), errors.Is(err, session.ErrRoomTerminated):
		return "room_not_found"
	case errors.Is(err, session.ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, session.ErrJoinForbidden):
		return session.ReasonJoinForbidden
	case errors.Is(err, session.ErrCatalog):
		return "catalog_unavailable"
	default:
		return session.ReasonInternal
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
