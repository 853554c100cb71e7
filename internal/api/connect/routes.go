package connect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/infra/config"
)

// Register mounts RoomService and AdminService on mux.
func Register(mux *http.ServeMux, sessionMgr *session.Manager, cfg *config.Config) {
	roomPath, roomHandler := roomv1.NewRoomServiceHandler(
		NewRoomService(sessionMgr, cfg),
		connect.WithInterceptors(NewIdentityInterceptor()),
	)
	adminPath, adminHandler := roomv1.NewAdminServiceHandler(
		NewAdminService(sessionMgr),
		connect.WithInterceptors(NewAdminAuthInterceptor(cfg.Admin.Token)),
	)

	mux.Handle(roomPath, roomHandler)
	mux.Handle(adminPath, adminHandler)
}
