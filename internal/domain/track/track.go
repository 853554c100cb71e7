// Package track provides the Track domain entity.
package track

import (
	"strings"
	"time"
)

// Track represents catalog metadata for a playable track.
type Track struct {
	ID          string        // Catalog track ID
	Title       string        // Track title
	Artists     []string      // Artist names
	Album       string        // Album name
	AlbumArtURL string        // Album art URL
	Duration    time.Duration // Track duration
	URL         string        // Catalog URL
}

// ArtistName returns the artists joined for display.
func (t Track) ArtistName() string {
	return strings.Join(t.Artists, ", ")
}

// MainArtist returns the first listed artist, or "" when unknown.
func (t Track) MainArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Origin describes how a track entered the queue.
type Origin string

const (
	OriginSeed       Origin = "SEED"       // Provided at room creation
	OriginSuggestion Origin = "SUGGESTION" // Suggested by a member
	OriginFallback   Origin = "FALLBACK"   // Refilled by the fallback provider
)

// QueuedTrack represents a candidate track waiting in a room's voting queue.
type QueuedTrack struct {
	Track       Track     // Catalog info
	Score       int       // Number of votes received while queued
	SuggestedBy string    // User ID of the suggester ("" for seeds and fallback)
	Origin      Origin    // How the track was added
	Seq         uint64    // Suggestion order, used to break score ties
	AddedAt     time.Time // Time when committed to the queue
}

// IsEligible reports whether the track has enough votes to be promoted.
func (q QueuedTrack) IsEligible(minimumScore int) bool {
	return q.Score >= minimumScore
}
