// Package filter provides the filter chains that gate votes and suggestions.
package filter

import (
	"context"

	"github.com/osa030/19room/internal/domain/member"
	"github.com/osa030/19room/internal/domain/room"
	"github.com/osa030/19room/internal/domain/track"
)

// Kind identifies the action being checked.
type Kind string

const (
	KindVote       Kind = "vote"
	KindSuggestion Kind = "suggestion"
	KindFallback   Kind = "fallback"
)

// Return codes.
const (
	CodeOutsideTimeWindow     = "outside_time_window"
	CodeOutsidePositionRadius = "outside_position_radius"
	CodeNotInvited            = "not_invited"
	CodeAlreadyVoted          = "already_voted"
	CodeDuplicateTrack        = "duplicate_track"
	CodeDurationLimitExceeded = "duration_limit_exceeded"
)

// Request describes the member acting and the room they act in.
type Request struct {
	UserID    string
	DeviceID  string
	Settings  room.Settings
	IsCreator bool
	IsInvited bool
	Voter     *member.Member // nil for fallback candidates
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "not_invited", "outside_time_window"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for vote and suggestion filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should be applied to the given kind.
	AppliesTo(kind Kind) bool
	// Check performs the filter check against the voted or suggested track.
	Check(ctx context.Context, req Request, t track.Track) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
