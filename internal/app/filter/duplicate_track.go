package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/19room/internal/domain/track"
)

// TrackLister lists the tracks a room already holds (current track and queue).
type TrackLister interface {
	ListTracks() []track.Track
}

// DuplicateTrackFilter rejects tracks already present in the room.
// Detects:
// - Exact track ID matches
// - Remasters and alternate versions (normalized title + same main artist)
// Excludes:
// - Cover songs (same title but different artist)
type DuplicateTrackFilter struct {
	tracks TrackLister
}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter(tracks TrackLister) *DuplicateTrackFilter {
	return &DuplicateTrackFilter{
		tracks: tracks,
	}
}

// Name returns the filter name.
func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

// Description returns the filter description.
func (f *DuplicateTrackFilter) Description() string {
	return "Rejects tracks already in the room, including remasters. Covers by other artists are allowed"
}

// ReturnCodes returns possible return codes.
func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{CodeDuplicateTrack}
}

// AppliesTo applies to member suggestions and fallback candidates.
func (f *DuplicateTrackFilter) AppliesTo(kind Kind) bool {
	return kind == KindSuggestion || kind == KindFallback
}

// ValidateConfig validates the filter configuration.
func (f *DuplicateTrackFilter) ValidateConfig(config map[string]any) error {
	// No configuration needed
	return nil
}

// Check checks if the track is a duplicate.
func (f *DuplicateTrackFilter) Check(ctx context.Context, req Request, requested track.Track) Result {
	if f.tracks == nil {
		return Accept()
	}

	for _, existing := range f.tracks.ListTracks() {
		if existing.ID == requested.ID || isRemaster(existing, requested) {
			return Reject(CodeDuplicateTrack)
		}
	}

	return Accept()
}

// isRemaster reports whether two tracks are versions of the same song by the same artist.
func isRemaster(track1, track2 track.Track) bool {
	if normalizeTrackName(track1.Title) != normalizeTrackName(track2.Title) {
		return false
	}
	// Same normalized title by a different artist is a cover
	return isSameArtist(track1, track2)
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),
	}

	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`),    // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),       // "(Radio Edit)"
		regexp.MustCompile(`\s*-?\s*live`),         // "- Live"
		regexp.MustCompile(`\s*\(live\)`),          // "(Live)"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`), // "- Radio Edit"
		regexp.MustCompile(`\s*-?\s*single\s+version`),
	}

	whitespace = regexp.MustCompile(`\s+`)
)

// normalizeTrackName strips remaster and version markers from a title.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = strings.TrimSpace(normalized)
	normalized = whitespace.ReplaceAllString(normalized, " ")

	return strings.TrimRight(normalized, " -")
}

// isSameArtist compares main artists, case-insensitive.
func isSameArtist(track1, track2 track.Track) bool {
	a, b := track1.MainArtist(), track2.MainArtist()
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func init() {
	// The room injects its track list when building the suggestion chain
	Register("duplicate_track_filter", func() Filter {
		return &DuplicateTrackFilter{}
	})
}
