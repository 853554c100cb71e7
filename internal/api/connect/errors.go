package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/app/session/registry"
)

// toConnectError maps session errors onto Connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, session.ErrInvalidRequest):
		return connect.CodeInvalidArgument
	case errors.Is(err, session.ErrRoomNotFound), errors.Is(err, session.ErrRoomTerminated):
		return connect.CodeNotFound
	case errors.Is(err, session.ErrNotInRoom):
		return connect.CodeFailedPrecondition
	case errors.Is(err, session.ErrJoinForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, registry.ErrLimitReached):
		return connect.CodeResourceExhausted
	case errors.Is(err, session.ErrCatalog):
		return connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}

// isGone reports errors that silent commands swallow: the caller has no room.
func isGone(err error) bool {
	return errors.Is(err, session.ErrNotInRoom) ||
		errors.Is(err, session.ErrRoomNotFound) ||
		errors.Is(err, session.ErrRoomTerminated)
}
