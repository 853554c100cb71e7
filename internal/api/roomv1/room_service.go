package roomv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// RoomServiceName is the fully-qualified name of the RoomService service.
const RoomServiceName = "room.v1.RoomService"

// Procedure paths of RoomService.
const (
	RoomServiceCreateRoomProcedure                           = "/room.v1.RoomService/CreateRoom"
	RoomServiceJoinRoomProcedure                             = "/room.v1.RoomService/JoinRoom"
	RoomServiceLeaveRoomProcedure                            = "/room.v1.RoomService/LeaveRoom"
	RoomServiceGetContextProcedure                           = "/room.v1.RoomService/GetContext"
	RoomServicePlayProcedure                                 = "/room.v1.RoomService/Play"
	RoomServicePauseProcedure                                = "/room.v1.RoomService/Pause"
	RoomServiceNextTrackProcedure                            = "/room.v1.RoomService/NextTrack"
	RoomServiceVoteForTrackProcedure                         = "/room.v1.RoomService/VoteForTrack"
	RoomServiceSuggestTracksProcedure                        = "/room.v1.RoomService/SuggestTracks"
	RoomServiceSearchTracksProcedure                         = "/room.v1.RoomService/SearchTracks"
	RoomServiceRemoveTrackProcedure                          = "/room.v1.RoomService/RemoveTrack"
	RoomServiceChangeEmittingDeviceProcedure                 = "/room.v1.RoomService/ChangeEmittingDevice"
	RoomServiceInviteUserProcedure                           = "/room.v1.RoomService/InviteUser"
	RoomServiceUpdateControlAndDelegationPermissionProcedure = "/room.v1.RoomService/UpdateControlAndDelegationPermission"
	RoomServiceUpdateDelegationOwnerProcedure                = "/room.v1.RoomService/UpdateDelegationOwner"
	RoomServiceGetUsersListProcedure                         = "/room.v1.RoomService/GetUsersList"
	RoomServiceGetRoomConstraintsDetailsProcedure            = "/room.v1.RoomService/GetRoomConstraintsDetails"
	RoomServiceReportLocationProcedure                       = "/room.v1.RoomService/ReportLocation"
	RoomServiceSubscribeProcedure                            = "/room.v1.RoomService/Subscribe"
)

// RoomServiceHandler is implemented by the room service.
type RoomServiceHandler interface {
	CreateRoom(context.Context, *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error)
	LeaveRoom(context.Context, *connect.Request[LeaveRoomRequest]) (*connect.Response[CommandResponse], error)
	GetContext(context.Context, *connect.Request[GetContextRequest]) (*connect.Response[GetContextResponse], error)
	Play(context.Context, *connect.Request[PlayRequest]) (*connect.Response[CommandResponse], error)
	Pause(context.Context, *connect.Request[PauseRequest]) (*connect.Response[CommandResponse], error)
	NextTrack(context.Context, *connect.Request[NextTrackRequest]) (*connect.Response[CommandResponse], error)
	VoteForTrack(context.Context, *connect.Request[VoteForTrackRequest]) (*connect.Response[CommandResponse], error)
	SuggestTracks(context.Context, *connect.Request[SuggestTracksRequest]) (*connect.Response[SuggestTracksResponse], error)
	SearchTracks(context.Context, *connect.Request[SearchTracksRequest]) (*connect.Response[SearchTracksResponse], error)
	RemoveTrack(context.Context, *connect.Request[RemoveTrackRequest]) (*connect.Response[CommandResponse], error)
	ChangeEmittingDevice(context.Context, *connect.Request[ChangeEmittingDeviceRequest]) (*connect.Response[CommandResponse], error)
	InviteUser(context.Context, *connect.Request[InviteUserRequest]) (*connect.Response[CommandResponse], error)
	UpdateControlAndDelegationPermission(context.Context, *connect.Request[UpdateControlAndDelegationPermissionRequest]) (*connect.Response[CommandResponse], error)
	UpdateDelegationOwner(context.Context, *connect.Request[UpdateDelegationOwnerRequest]) (*connect.Response[CommandResponse], error)
	GetUsersList(context.Context, *connect.Request[GetUsersListRequest]) (*connect.Response[GetUsersListResponse], error)
	GetRoomConstraintsDetails(context.Context, *connect.Request[GetRoomConstraintsDetailsRequest]) (*connect.Response[GetRoomConstraintsDetailsResponse], error)
	ReportLocation(context.Context, *connect.Request[ReportLocationRequest]) (*connect.Response[CommandResponse], error)
	Subscribe(context.Context, *connect.Request[SubscribeRequest], *connect.ServerStream[Notification]) error
}

// NewRoomServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewRoomServiceHandler(svc RoomServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handlers := map[string]http.Handler{
		RoomServiceCreateRoomProcedure:                           connect.NewUnaryHandler(RoomServiceCreateRoomProcedure, svc.CreateRoom, opts...),
		RoomServiceJoinRoomProcedure:                             connect.NewUnaryHandler(RoomServiceJoinRoomProcedure, svc.JoinRoom, opts...),
		RoomServiceLeaveRoomProcedure:                            connect.NewUnaryHandler(RoomServiceLeaveRoomProcedure, svc.LeaveRoom, opts...),
		RoomServiceGetContextProcedure:                           connect.NewUnaryHandler(RoomServiceGetContextProcedure, svc.GetContext, opts...),
		RoomServicePlayProcedure:                                 connect.NewUnaryHandler(RoomServicePlayProcedure, svc.Play, opts...),
		RoomServicePauseProcedure:                                connect.NewUnaryHandler(RoomServicePauseProcedure, svc.Pause, opts...),
		RoomServiceNextTrackProcedure:                            connect.NewUnaryHandler(RoomServiceNextTrackProcedure, svc.NextTrack, opts...),
		RoomServiceVoteForTrackProcedure:                         connect.NewUnaryHandler(RoomServiceVoteForTrackProcedure, svc.VoteForTrack, opts...),
		RoomServiceSuggestTracksProcedure:                        connect.NewUnaryHandler(RoomServiceSuggestTracksProcedure, svc.SuggestTracks, opts...),
		RoomServiceSearchTracksProcedure:                         connect.NewUnaryHandler(RoomServiceSearchTracksProcedure, svc.SearchTracks, opts...),
		RoomServiceRemoveTrackProcedure:                          connect.NewUnaryHandler(RoomServiceRemoveTrackProcedure, svc.RemoveTrack, opts...),
		RoomServiceChangeEmittingDeviceProcedure:                 connect.NewUnaryHandler(RoomServiceChangeEmittingDeviceProcedure, svc.ChangeEmittingDevice, opts...),
		RoomServiceInviteUserProcedure:                           connect.NewUnaryHandler(RoomServiceInviteUserProcedure, svc.InviteUser, opts...),
		RoomServiceUpdateControlAndDelegationPermissionProcedure: connect.NewUnaryHandler(RoomServiceUpdateControlAndDelegationPermissionProcedure, svc.UpdateControlAndDelegationPermission, opts...),
		RoomServiceUpdateDelegationOwnerProcedure:                connect.NewUnaryHandler(RoomServiceUpdateDelegationOwnerProcedure, svc.UpdateDelegationOwner, opts...),
		RoomServiceGetUsersListProcedure:                         connect.NewUnaryHandler(RoomServiceGetUsersListProcedure, svc.GetUsersList, opts...),
		RoomServiceGetRoomConstraintsDetailsProcedure:            connect.NewUnaryHandler(RoomServiceGetRoomConstraintsDetailsProcedure, svc.GetRoomConstraintsDetails, opts...),
		RoomServiceReportLocationProcedure:                       connect.NewUnaryHandler(RoomServiceReportLocationProcedure, svc.ReportLocation, opts...),
		RoomServiceSubscribeProcedure:                            connect.NewServerStreamHandler(RoomServiceSubscribeProcedure, svc.Subscribe, opts...),
	}
	return "/" + RoomServiceName + "/", routeProcedures(handlers)
}

// RoomServiceClient is a client for the room.v1.RoomService service.
type RoomServiceClient interface {
	CreateRoom(context.Context, *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error)
	JoinRoom(context.Context, *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error)
	LeaveRoom(context.Context, *connect.Request[LeaveRoomRequest]) (*connect.Response[CommandResponse], error)
	GetContext(context.Context, *connect.Request[GetContextRequest]) (*connect.Response[GetContextResponse], error)
	Play(context.Context, *connect.Request[PlayRequest]) (*connect.Response[CommandResponse], error)
	Pause(context.Context, *connect.Request[PauseRequest]) (*connect.Response[CommandResponse], error)
	NextTrack(context.Context, *connect.Request[NextTrackRequest]) (*connect.Response[CommandResponse], error)
	VoteForTrack(context.Context, *connect.Request[VoteForTrackRequest]) (*connect.Response[CommandResponse], error)
	SuggestTracks(context.Context, *connect.Request[SuggestTracksRequest]) (*connect.Response[SuggestTracksResponse], error)
	SearchTracks(context.Context, *connect.Request[SearchTracksRequest]) (*connect.Response[SearchTracksResponse], error)
	RemoveTrack(context.Context, *connect.Request[RemoveTrackRequest]) (*connect.Response[CommandResponse], error)
	ChangeEmittingDevice(context.Context, *connect.Request[ChangeEmittingDeviceRequest]) (*connect.Response[CommandResponse], error)
	InviteUser(context.Context, *connect.Request[InviteUserRequest]) (*connect.Response[CommandResponse], error)
	UpdateControlAndDelegationPermission(context.Context, *connect.Request[UpdateControlAndDelegationPermissionRequest]) (*connect.Response[CommandResponse], error)
	UpdateDelegationOwner(context.Context, *connect.Request[UpdateDelegationOwnerRequest]) (*connect.Response[CommandResponse], error)
	GetUsersList(context.Context, *connect.Request[GetUsersListRequest]) (*connect.Response[GetUsersListResponse], error)
	GetRoomConstraintsDetails(context.Context, *connect.Request[GetRoomConstraintsDetailsRequest]) (*connect.Response[GetRoomConstraintsDetailsResponse], error)
	ReportLocation(context.Context, *connect.Request[ReportLocationRequest]) (*connect.Response[CommandResponse], error)
	Subscribe(context.Context, *connect.Request[SubscribeRequest]) (*connect.ServerStreamForClient[Notification], error)
}

// NewRoomServiceClient constructs a client for the room.v1.RoomService service.
// baseURL is the server root, e.g. http://localhost:8080.
func NewRoomServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RoomServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &roomServiceClient{
		createRoom:                           connect.NewClient[CreateRoomRequest, CreateRoomResponse](httpClient, baseURL+RoomServiceCreateRoomProcedure, opts...),
		joinRoom:                             connect.NewClient[JoinRoomRequest, JoinRoomResponse](httpClient, baseURL+RoomServiceJoinRoomProcedure, opts...),
		leaveRoom:                            connect.NewClient[LeaveRoomRequest, CommandResponse](httpClient, baseURL+RoomServiceLeaveRoomProcedure, opts...),
		getContext:                           connect.NewClient[GetContextRequest, GetContextResponse](httpClient, baseURL+RoomServiceGetContextProcedure, opts...),
		play:                                 connect.NewClient[PlayRequest, CommandResponse](httpClient, baseURL+RoomServicePlayProcedure, opts...),
		pause:                                connect.NewClient[PauseRequest, CommandResponse](httpClient, baseURL+RoomServicePauseProcedure, opts...),
		nextTrack:                            connect.NewClient[NextTrackRequest, CommandResponse](httpClient, baseURL+RoomServiceNextTrackProcedure, opts...),
		voteForTrack:                         connect.NewClient[VoteForTrackRequest, CommandResponse](httpClient, baseURL+RoomServiceVoteForTrackProcedure, opts...),
		suggestTracks:                        connect.NewClient[SuggestTracksRequest, SuggestTracksResponse](httpClient, baseURL+RoomServiceSuggestTracksProcedure, opts...),
		searchTracks:                         connect.NewClient[SearchTracksRequest, SearchTracksResponse](httpClient, baseURL+RoomServiceSearchTracksProcedure, opts...),
		removeTrack:                          connect.NewClient[RemoveTrackRequest, CommandResponse](httpClient, baseURL+RoomServiceRemoveTrackProcedure, opts...),
		changeEmittingDevice:                 connect.NewClient[ChangeEmittingDeviceRequest, CommandResponse](httpClient, baseURL+RoomServiceChangeEmittingDeviceProcedure, opts...),
		inviteUser:                           connect.NewClient[InviteUserRequest, CommandResponse](httpClient, baseURL+RoomServiceInviteUserProcedure, opts...),
		updateControlAndDelegationPermission: connect.NewClient[UpdateControlAndDelegationPermissionRequest, CommandResponse](httpClient, baseURL+RoomServiceUpdateControlAndDelegationPermissionProcedure, opts...),
		updateDelegationOwner:                connect.NewClient[UpdateDelegationOwnerRequest, CommandResponse](httpClient, baseURL+RoomServiceUpdateDelegationOwnerProcedure, opts...),
		getUsersList:                         connect.NewClient[GetUsersListRequest, GetUsersListResponse](httpClient, baseURL+RoomServiceGetUsersListProcedure, opts...),
		getRoomConstraintsDetails:            connect.NewClient[GetRoomConstraintsDetailsRequest, GetRoomConstraintsDetailsResponse](httpClient, baseURL+RoomServiceGetRoomConstraintsDetailsProcedure, opts...),
		reportLocation:                       connect.NewClient[ReportLocationRequest, CommandResponse](httpClient, baseURL+RoomServiceReportLocationProcedure, opts...),
		subscribe:                            connect.NewClient[SubscribeRequest, Notification](httpClient, baseURL+RoomServiceSubscribeProcedure, opts...),
	}
}

type roomServiceClient struct {
	createRoom                           *connect.Client[CreateRoomRequest, CreateRoomResponse]
	joinRoom                             *connect.Client[JoinRoomRequest, JoinRoomResponse]
	leaveRoom                            *connect.Client[LeaveRoomRequest, CommandResponse]
	getContext                           *connect.Client[GetContextRequest, GetContextResponse]
	play                                 *connect.Client[PlayRequest, CommandResponse]
	pause                                *connect.Client[PauseRequest, CommandResponse]
	nextTrack                            *connect.Client[NextTrackRequest, CommandResponse]
	voteForTrack                         *connect.Client[VoteForTrackRequest, CommandResponse]
	suggestTracks                        *connect.Client[SuggestTracksRequest, SuggestTracksResponse]
	searchTracks                         *connect.Client[SearchTracksRequest, SearchTracksResponse]
	removeTrack                          *connect.Client[RemoveTrackRequest, CommandResponse]
	changeEmittingDevice                 *connect.Client[ChangeEmittingDeviceRequest, CommandResponse]
	inviteUser                           *connect.Client[InviteUserRequest, CommandResponse]
	updateControlAndDelegationPermission *connect.Client[UpdateControlAndDelegationPermissionRequest, CommandResponse]
	updateDelegationOwner                *connect.Client[UpdateDelegationOwnerRequest, CommandResponse]
	getUsersList                         *connect.Client[GetUsersListRequest, GetUsersListResponse]
	getRoomConstraintsDetails            *connect.Client[GetRoomConstraintsDetailsRequest, GetRoomConstraintsDetailsResponse]
	reportLocation                       *connect.Client[ReportLocationRequest, CommandResponse]
	subscribe                            *connect.Client[SubscribeRequest, Notification]
}

func (c *roomServiceClient) CreateRoom(ctx context.Context, req *connect.Request[CreateRoomRequest]) (*connect.Response[CreateRoomResponse], error) {
	return c.createRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) JoinRoom(ctx context.Context, req *connect.Request[JoinRoomRequest]) (*connect.Response[JoinRoomResponse], error) {
	return c.joinRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) LeaveRoom(ctx context.Context, req *connect.Request[LeaveRoomRequest]) (*connect.Response[CommandResponse], error) {
	return c.leaveRoom.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetContext(ctx context.Context, req *connect.Request[GetContextRequest]) (*connect.Response[GetContextResponse], error) {
	return c.getContext.CallUnary(ctx, req)
}

func (c *roomServiceClient) Play(ctx context.Context, req *connect.Request[PlayRequest]) (*connect.Response[CommandResponse], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *roomServiceClient) Pause(ctx context.Context, req *connect.Request[PauseRequest]) (*connect.Response[CommandResponse], error) {
	return c.pause.CallUnary(ctx, req)
}

func (c *roomServiceClient) NextTrack(ctx context.Context, req *connect.Request[NextTrackRequest]) (*connect.Response[CommandResponse], error) {
	return c.nextTrack.CallUnary(ctx, req)
}

func (c *roomServiceClient) VoteForTrack(ctx context.Context, req *connect.Request[VoteForTrackRequest]) (*connect.Response[CommandResponse], error) {
	return c.voteForTrack.CallUnary(ctx, req)
}

func (c *roomServiceClient) SuggestTracks(ctx context.Context, req *connect.Request[SuggestTracksRequest]) (*connect.Response[SuggestTracksResponse], error) {
	return c.suggestTracks.CallUnary(ctx, req)
}

func (c *roomServiceClient) SearchTracks(ctx context.Context, req *connect.Request[SearchTracksRequest]) (*connect.Response[SearchTracksResponse], error) {
	return c.searchTracks.CallUnary(ctx, req)
}

func (c *roomServiceClient) RemoveTrack(ctx context.Context, req *connect.Request[RemoveTrackRequest]) (*connect.Response[CommandResponse], error) {
	return c.removeTrack.CallUnary(ctx, req)
}

func (c *roomServiceClient) ChangeEmittingDevice(ctx context.Context, req *connect.Request[ChangeEmittingDeviceRequest]) (*connect.Response[CommandResponse], error) {
	return c.changeEmittingDevice.CallUnary(ctx, req)
}

func (c *roomServiceClient) InviteUser(ctx context.Context, req *connect.Request[InviteUserRequest]) (*connect.Response[CommandResponse], error) {
	return c.inviteUser.CallUnary(ctx, req)
}

func (c *roomServiceClient) UpdateControlAndDelegationPermission(ctx context.Context, req *connect.Request[UpdateControlAndDelegationPermissionRequest]) (*connect.Response[CommandResponse], error) {
	return c.updateControlAndDelegationPermission.CallUnary(ctx, req)
}

func (c *roomServiceClient) UpdateDelegationOwner(ctx context.Context, req *connect.Request[UpdateDelegationOwnerRequest]) (*connect.Response[CommandResponse], error) {
	return c.updateDelegationOwner.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetUsersList(ctx context.Context, req *connect.Request[GetUsersListRequest]) (*connect.Response[GetUsersListResponse], error) {
	return c.getUsersList.CallUnary(ctx, req)
}

func (c *roomServiceClient) GetRoomConstraintsDetails(ctx context.Context, req *connect.Request[GetRoomConstraintsDetailsRequest]) (*connect.Response[GetRoomConstraintsDetailsResponse], error) {
	return c.getRoomConstraintsDetails.CallUnary(ctx, req)
}

func (c *roomServiceClient) ReportLocation(ctx context.Context, req *connect.Request[ReportLocationRequest]) (*connect.Response[CommandResponse], error) {
	return c.reportLocation.CallUnary(ctx, req)
}

func (c *roomServiceClient) Subscribe(ctx context.Context, req *connect.Request[SubscribeRequest]) (*connect.ServerStreamForClient[Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}

// routeProcedures dispatches on the exact procedure path.
func routeProcedures(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
