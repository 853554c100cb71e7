package roomv1

import (
	"context"

	"connectrpc.com/connect"
)

// WithIdentity stamps the identity headers on every call made by a client.
func WithIdentity(userID, deviceID, deviceName string) connect.ClientOption {
	return connect.WithInterceptors(&identityHeaders{userID: userID, deviceID: deviceID, deviceName: deviceName})
}

// WithAdminToken stamps the admin token on every call made by a client.
func WithAdminToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set(HeaderAdminToken, token)
			return next(ctx, req)
		}
	}))
}

type identityHeaders struct {
	userID     string
	deviceID   string
	deviceName string
}

func (i *identityHeaders) set(h interface{ Set(key, value string) }) {
	h.Set(HeaderUserID, i.userID)
	h.Set(HeaderDeviceID, i.deviceID)
	if i.deviceName != "" {
		h.Set(HeaderDeviceName, i.deviceName)
	}
}

func (i *identityHeaders) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		i.set(req.Header())
		return next(ctx, req)
	}
}

func (i *identityHeaders) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		i.set(conn.RequestHeader())
		return conn
	}
}

func (i *identityHeaders) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
