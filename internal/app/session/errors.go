package session

import "github.com/cockroachdb/errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomTerminated = errors.New("room terminated")
	ErrJoinForbidden  = errors.New("join forbidden")
	ErrNotInRoom      = errors.New("user is not in a room")
	ErrInvalidRequest = errors.New("invalid request")
	ErrCatalog        = errors.New("catalog lookup failed")
)
