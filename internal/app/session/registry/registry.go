// Package registry maps room IDs to room actors and users to the room they are bound to.
package registry

import (
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	ErrRoomExists   = errors.New("room already registered")
	ErrRoomNotFound = errors.New("room not found")
	ErrLimitReached = errors.New("room limit reached")
)

// Registry is the shared table used by transports to route commands.
// A user is bound to at most one room.
type Registry[R any] struct {
	mu       sync.RWMutex
	rooms    map[string]R
	bindings map[string]string // userID -> roomID
	maxRooms int
}

// New creates a registry. maxRooms <= 0 means unlimited.
func New[R any](maxRooms int) *Registry[R] {
	return &Registry[R]{
		rooms:    make(map[string]R),
		bindings: make(map[string]string),
		maxRooms: maxRooms,
	}
}

// Add registers a room.
func (r *Registry[R]) Add(roomID string, room R) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; ok {
		return errors.Wrapf(ErrRoomExists, "room_id=%s", roomID)
	}
	if r.maxRooms > 0 && len(r.rooms) >= r.maxRooms {
		return ErrLimitReached
	}
	r.rooms[roomID] = room
	return nil
}

// Get retrieves a room.
func (r *Registry[R]) Get(roomID string) (R, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		var zero R
		return zero, ErrRoomNotFound
	}
	return room, nil
}

// Remove unregisters a room and unbinds its users.
func (r *Registry[R]) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomID)
	r.unbindRoomLocked(roomID)
}

// Bind records that userID is in roomID, replacing any previous binding.
func (r *Registry[R]) Bind(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[userID] = roomID
}

// Unbind removes the binding of userID if it still points at roomID.
// An empty roomID removes any binding.
func (r *Registry[R]) Unbind(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.bindings[userID]; ok && (roomID == "" || current == roomID) {
		delete(r.bindings, userID)
	}
}

func (r *Registry[R]) unbindRoomLocked(roomID string) {
	for userID, bound := range r.bindings {
		if bound == roomID {
			delete(r.bindings, userID)
		}
	}
}

// RoomOf returns the room userID is bound to.
func (r *Registry[R]) RoomOf(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.bindings[userID]
	return roomID, ok
}

// All returns all rooms.
func (r *Registry[R]) All() []R {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]R, 0, len(r.rooms))
	for _, room := range r.rooms {
		result = append(result, room)
	}
	return result
}

// Count returns the number of rooms.
func (r *Registry[R]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
