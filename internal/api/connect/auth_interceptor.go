// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"

	"github.com/osa030/19room/internal/api/roomv1"
)

const (
	// AdminTokenHeader is the header name for admin authentication token.
	AdminTokenHeader = roomv1.HeaderAdminToken
)

// NewAdminAuthInterceptor creates an interceptor that validates admin tokens
// from request metadata for AdminService methods.
func NewAdminAuthInterceptor(adminToken string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token := req.Header().Get(AdminTokenHeader)
			if token == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, nil)
			}
			return next(ctx, req)
		}
	}
}

// Identity is the caller of a RoomService method.
type Identity struct {
	UserID     string
	DeviceID   string
	DeviceName string
}

type identityKey struct{}

// IdentityFrom returns the identity stored by the identity interceptor.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// IdentityInterceptor reads the identity headers of RoomService calls.
// Authentication happens upstream; a missing user ID is rejected.
type IdentityInterceptor struct{}

// NewIdentityInterceptor creates the interceptor.
func NewIdentityInterceptor() *IdentityInterceptor {
	return &IdentityInterceptor{}
}

func (i *IdentityInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, err := withIdentity(ctx, req.Header().Get)
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *IdentityInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *IdentityInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := withIdentity(ctx, conn.RequestHeader().Get)
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func withIdentity(ctx context.Context, header func(string) string) (context.Context, error) {
	id := Identity{
		UserID:     header(roomv1.HeaderUserID),
		DeviceID:   header(roomv1.HeaderDeviceID),
		DeviceName: header(roomv1.HeaderDeviceName),
	}
	if id.UserID == "" {
		return ctx, connect.NewError(connect.CodeUnauthenticated, nil)
	}
	return context.WithValue(ctx, identityKey{}, id), nil
}
