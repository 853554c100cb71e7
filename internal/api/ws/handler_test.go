package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/infra/catalog"
	"github.com/osa030/19room/internal/infra/config"
)

const testConfig = `
admin:
  token: secret
catalog:
  type: static
  tracks:
    - {id: t1, title: Blue Train, artists: [John Coltrane], duration_ms: 180000}
    - {id: t2, title: So What, artists: [Miles Davis], duration_ms: 180000}
    - {id: t3, title: Naima, artists: [John Coltrane], duration_ms: 180000}
    - {id: t4, title: Take Five, artists: [Dave Brubeck], duration_ms: 180000}
`

// frame decodes both replies and notifications.
type frame struct {
	Type      string                  `json:"type"`
	RequestID string                  `json:"requestID"`
	Code      string                  `json:"code"`
	Reason    string                  `json:"reason"`
	RoomID    string                  `json:"roomID"`
	Room      *room.Snapshot          `json:"room"`
	Snapshot  *room.Snapshot          `json:"snapshot"`
	Accepted  []string                `json:"accepted"`
	Rejected  []roomv1.TrackRejection `json:"rejected"`
}

func newTestServer(t *testing.T) string {
	t.Helper()
	t.Setenv("ADMIN_TOKEN", "")

	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	mgr, err := session.NewManager(session.Config{
		Catalog:      catalog.NewStatic(cfg.Catalog.DomainTracks()),
		Hub:          notification.NewManager(cfg.Notification.SendTimeout()),
		TickInterval: time.Hour,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle(Path, NewHandler(mgr, cfg))
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		mgr.Close(ctx)
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + Path
}

func dial(t *testing.T, base, userID, deviceID string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(base+"?user_id="+userID+"&device_id="+deviceID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.WriteJSON(v))
}

// readUntil skips frames until one of type typ arrives.
func readUntil(t *testing.T, c *websocket.Conn, typ string) frame {
	t.Helper()
	return readMatching(t, c, typ, func(frame) bool { return true })
}

// readMatching skips frames until one of type typ satisfies match.
// Notifications are delivered concurrently, so their order is not fixed.
func readMatching(t *testing.T, c *websocket.Conn, typ string, match func(frame) bool) frame {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := c.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == typ && match(f) {
			return f
		}
	}
}

func createRoom(t *testing.T, c *websocket.Conn) *room.Snapshot {
	t.Helper()
	send(t, c, map[string]any{
		"type":      TypeCreateRoom,
		"requestID": "create-1",
		"room":      map[string]any{"name": "Jazz", "initialTrackIDs": []string{"t1", "t2", "t3"}},
	})
	f := readUntil(t, c, TypeCreateRoomSuccess)
	assert.Equal(t, "create-1", f.RequestID)
	require.NotNil(t, f.Room)
	return f.Room
}

func TestHandler_RequiresIdentity(t *testing.T) {
	base := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(base+"?user_id=alice", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_RoomFlow(t *testing.T) {
	base := newTestServer(t)
	alice := dial(t, base, "alice", "alice-phone")
	bob := dial(t, base, "bob", "bob-phone")

	snap := createRoom(t, alice)
	assert.Equal(t, "t1", snap.CurrentTrack.ID)

	send(t, bob, map[string]any{"type": TypeJoin, "roomID": snap.RoomID})
	joined := readUntil(t, bob, TypeJoinSuccess)
	assert.Equal(t, 2, joined.Room.UsersLength)

	state := readUntil(t, alice, string(notification.TypeRoomState))
	assert.Equal(t, 2, state.Snapshot.UsersLength)

	send(t, bob, map[string]any{"type": TypeVoteForTrack, "trackID": "t3"})
	state = readMatching(t, alice, string(notification.TypeRoomState), func(f frame) bool {
		return f.Snapshot.Tracks[0].Score == 1
	})
	assert.Equal(t, "t3", state.Snapshot.Tracks[0].ID)

	send(t, bob, map[string]any{"type": TypeSuggestTracks, "trackIDs": []string{"t4", "ghost"}})
	suggested := readUntil(t, bob, TypeSuggestTracksSuccess)
	assert.Equal(t, []string{"t4"}, suggested.Accepted)
	require.Len(t, suggested.Rejected, 1)
	assert.Equal(t, "ghost", suggested.Rejected[0].TrackID)
	assert.Equal(t, "track_not_found", suggested.Rejected[0].Code)

	send(t, bob, map[string]any{"type": TypeGetContext, "requestID": "ctx"})
	got := readUntil(t, bob, TypeContext)
	assert.Equal(t, "ctx", got.RequestID)
	assert.Equal(t, []string{"t3", "t2", "t4"}, got.Room.TrackIDs())
	assert.Equal(t, "bob", got.Room.UserRelatedInformation.UserID)
}

func TestHandler_Failures(t *testing.T) {
	base := newTestServer(t)
	bob := dial(t, base, "bob", "bob-phone")

	send(t, bob, map[string]any{"type": TypeJoin, "roomID": "missing"})
	f := readUntil(t, bob, TypeJoinFail)
	assert.Equal(t, "room_not_found", f.Code)

	send(t, bob, map[string]any{"type": TypeCreateRoom, "room": map[string]any{"name": "Empty"}})
	f = readUntil(t, bob, TypeCreateRoomFail)
	assert.Equal(t, "invalid_request", f.Code)

	send(t, bob, map[string]any{"type": TypeSuggestTracks, "trackIDs": []string{"t1"}})
	f = readUntil(t, bob, TypeSuggestTracksFail)
	assert.Equal(t, "not_in_room", f.Code)

	send(t, bob, map[string]any{"type": "DANCE"})
	f = readUntil(t, bob, TypeError)
	assert.Equal(t, session.ReasonUnknownCommand, f.Code)

	require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte("{")))
	f = readUntil(t, bob, TypeError)
	assert.Equal(t, "bad_json", f.Code)

	send(t, bob, map[string]any{"type": TypePing, "requestID": "p1"})
	f = readUntil(t, bob, TypePong)
	assert.Equal(t, "p1", f.RequestID)
}

func TestHandler_CreatorLeaveDisconnectsMembers(t *testing.T) {
	base := newTestServer(t)
	alice := dial(t, base, "alice", "alice-phone")
	bob := dial(t, base, "bob", "bob-phone")

	snap := createRoom(t, alice)
	send(t, bob, map[string]any{"type": TypeJoin, "roomID": snap.RoomID})
	readUntil(t, bob, TypeJoinSuccess)

	send(t, alice, map[string]any{"type": TypeLeave})
	f := readUntil(t, bob, string(notification.TypeForcedDisconnection))
	assert.Equal(t, session.ReasonCreatorLeft, f.Reason)
	assert.Equal(t, snap.RoomID, f.RoomID)

	// The server closes the socket once the subscription ends
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, _, err := bob.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
	}
}
