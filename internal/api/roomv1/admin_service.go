package roomv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// AdminServiceName is the fully-qualified name of the AdminService service.
const AdminServiceName = "room.v1.AdminService"

// HeaderAdminToken authenticates AdminService calls.
const HeaderAdminToken = "X-Admin-Token"

// Procedure paths of AdminService.
const (
	AdminServiceListRoomsProcedure     = "/room.v1.AdminService/ListRooms"
	AdminServiceGetRoomProcedure       = "/room.v1.AdminService/GetRoom"
	AdminServiceTerminateRoomProcedure = "/room.v1.AdminService/TerminateRoom"
)

// AdminServiceHandler is implemented by the admin service.
type AdminServiceHandler interface {
	ListRooms(context.Context, *connect.Request[ListRoomsRequest]) (*connect.Response[ListRoomsResponse], error)
	GetRoom(context.Context, *connect.Request[GetRoomRequest]) (*connect.Response[GetRoomResponse], error)
	TerminateRoom(context.Context, *connect.Request[TerminateRoomRequest]) (*connect.Response[TerminateRoomResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from the service implementation.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handlers := map[string]http.Handler{
		AdminServiceListRoomsProcedure:     connect.NewUnaryHandler(AdminServiceListRoomsProcedure, svc.ListRooms, opts...),
		AdminServiceGetRoomProcedure:       connect.NewUnaryHandler(AdminServiceGetRoomProcedure, svc.GetRoom, opts...),
		AdminServiceTerminateRoomProcedure: connect.NewUnaryHandler(AdminServiceTerminateRoomProcedure, svc.TerminateRoom, opts...),
	}
	return "/" + AdminServiceName + "/", routeProcedures(handlers)
}

// AdminServiceClient is a client for the room.v1.AdminService service.
type AdminServiceClient interface {
	ListRooms(context.Context, *connect.Request[ListRoomsRequest]) (*connect.Response[ListRoomsResponse], error)
	GetRoom(context.Context, *connect.Request[GetRoomRequest]) (*connect.Response[GetRoomResponse], error)
	TerminateRoom(context.Context, *connect.Request[TerminateRoomRequest]) (*connect.Response[TerminateRoomResponse], error)
}

// NewAdminServiceClient constructs a client for the room.v1.AdminService service.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &adminServiceClient{
		listRooms:     connect.NewClient[ListRoomsRequest, ListRoomsResponse](httpClient, baseURL+AdminServiceListRoomsProcedure, opts...),
		getRoom:       connect.NewClient[GetRoomRequest, GetRoomResponse](httpClient, baseURL+AdminServiceGetRoomProcedure, opts...),
		terminateRoom: connect.NewClient[TerminateRoomRequest, TerminateRoomResponse](httpClient, baseURL+AdminServiceTerminateRoomProcedure, opts...),
	}
}

type adminServiceClient struct {
	listRooms     *connect.Client[ListRoomsRequest, ListRoomsResponse]
	getRoom       *connect.Client[GetRoomRequest, GetRoomResponse]
	terminateRoom *connect.Client[TerminateRoomRequest, TerminateRoomResponse]
}

func (c *adminServiceClient) ListRooms(ctx context.Context, req *connect.Request[ListRoomsRequest]) (*connect.Response[ListRoomsResponse], error) {
	return c.listRooms.CallUnary(ctx, req)
}

func (c *adminServiceClient) GetRoom(ctx context.Context, req *connect.Request[GetRoomRequest]) (*connect.Response[GetRoomResponse], error) {
	return c.getRoom.CallUnary(ctx, req)
}

func (c *adminServiceClient) TerminateRoom(ctx context.Context, req *connect.Request[TerminateRoomRequest]) (*connect.Response[TerminateRoomResponse], error) {
	return c.terminateRoom.CallUnary(ctx, req)
}
