// Package emitting decides which devices emit audio in a room.
package emitting

import (
	"github.com/osa030/19room/internal/domain/device"
	"github.com/osa030/19room/internal/domain/room"
)

// Rejection codes.
const (
	CodeDeviceNotOwned = "device_not_owned"
	CodeUnknownDevice  = "unknown_device"
)

type entry struct {
	device    device.Device
	connected bool
}

// Elector tracks the devices of every member and which one emits.
// Exactly one registered device per user is flagged emitting.
// It is owned by the room actor and is not safe for concurrent use.
type Elector struct {
	devices  map[string]*entry   // deviceID -> device
	byUser   map[string][]string // userID -> deviceIDs in registration order
	emitting map[string]string   // userID -> emitting deviceID
}

// NewElector creates an empty elector.
func NewElector() *Elector {
	return &Elector{
		devices:  make(map[string]*entry),
		byUser:   make(map[string][]string),
		emitting: make(map[string]string),
	}
}

// Register adds a device for a user and marks it connected. Registering a
// known device reconnects it. The first device of a user becomes its
// emitting device.
func (e *Elector) Register(userID string, d device.Device) string {
	if existing, ok := e.devices[d.ID]; ok {
		if existing.device.OwnerUserID != userID {
			return CodeDeviceNotOwned
		}
		existing.connected = true
		if d.Name != "" {
			existing.device.Name = d.Name
		}
		return ""
	}

	d.OwnerUserID = userID
	e.devices[d.ID] = &entry{device: d, connected: true}
	e.byUser[userID] = append(e.byUser[userID], d.ID)
	if _, ok := e.emitting[userID]; !ok {
		e.emitting[userID] = d.ID
	}
	return ""
}

// Change makes deviceID the user's emitting device, muting the previous one.
func (e *Elector) Change(userID, deviceID string) (string, string) {
	en, ok := e.devices[deviceID]
	if !ok {
		return "", CodeUnknownDevice
	}
	if en.device.OwnerUserID != userID {
		return "", CodeDeviceNotOwned
	}
	previous := e.emitting[userID]
	e.emitting[userID] = deviceID
	return previous, ""
}

// Disconnect marks a device disconnected. The emitting flag is kept so the
// device resumes emitting when it reconnects.
func (e *Elector) Disconnect(userID, deviceID string) string {
	en, ok := e.devices[deviceID]
	if !ok {
		return CodeUnknownDevice
	}
	if en.device.OwnerUserID != userID {
		return CodeDeviceNotOwned
	}
	en.connected = false
	return ""
}

// ConnectedCount returns how many of the user's devices are connected.
func (e *Elector) ConnectedCount(userID string) int {
	n := 0
	for _, id := range e.byUser[userID] {
		if e.devices[id].connected {
			n++
		}
	}
	return n
}

// IsConnected reports whether the device is known and connected.
func (e *Elector) IsConnected(deviceID string) bool {
	en, ok := e.devices[deviceID]
	return ok && en.connected
}

// EmittingDevice returns the user's emitting device ID, or "".
func (e *Elector) EmittingDevice(userID string) string {
	return e.emitting[userID]
}

// Devices returns the user's devices in registration order.
func (e *Elector) Devices(userID string) []device.Device {
	ids := e.byUser[userID]
	out := make([]device.Device, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.devices[id].device)
	}
	return out
}

// Owner returns the owner of a device, or "" when unknown.
func (e *Elector) Owner(deviceID string) string {
	if en, ok := e.devices[deviceID]; ok {
		return en.device.OwnerUserID
	}
	return ""
}

// RemoveUser forgets every device of the user.
func (e *Elector) RemoveUser(userID string) {
	for _, id := range e.byUser[userID] {
		delete(e.devices, id)
	}
	delete(e.byUser, userID)
	delete(e.emitting, userID)
}

// Authority returns the room-wide audio authority. DIRECT rooms have none.
func (e *Elector) Authority(mode room.PlayingMode, creatorID, delegationOwner string) string {
	if mode != room.PlayingModeBroadcast {
		return ""
	}
	if delegationOwner != "" {
		return delegationOwner
	}
	return creatorID
}

// IsEmittingFor reports whether deviceID emits from viewer's point of view.
// BROADCAST: only the authority's emitting device. DIRECT: only the viewer's own.
func (e *Elector) IsEmittingFor(mode room.PlayingMode, viewerID, authorityID, deviceID string) bool {
	if mode == room.PlayingModeBroadcast {
		return authorityID != "" && e.emitting[authorityID] == deviceID
	}
	return e.emitting[viewerID] == deviceID
}

// Reelect picks the next authority after the current one left or lost every
// device. The creator keeps authority while present, connected or not.
// Without the creator, connected candidates go first. Returns false when
// nobody qualifies.
func (e *Elector) Reelect(creatorID string, candidates []string) (string, bool) {
	if e.isPresent(creatorID) {
		return creatorID, true
	}
	for _, id := range candidates {
		if e.ConnectedCount(id) > 0 {
			return id, true
		}
	}
	for _, id := range candidates {
		if e.isPresent(id) {
			return id, true
		}
	}
	return "", false
}

// isPresent reports whether the user has any registered device.
func (e *Elector) isPresent(userID string) bool {
	return len(e.byUser[userID]) > 0
}
