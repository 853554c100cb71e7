// Package device provides the playback Device domain entity.
package device

// Device represents a playback device owned by a user.
type Device struct {
	ID          string // Device ID, unique per owner
	OwnerUserID string // Owner's user ID
	Name        string // Human readable name
}
