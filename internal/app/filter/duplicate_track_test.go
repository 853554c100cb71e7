package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/19room/internal/domain/track"
)

type stubTrackLister struct {
	tracks []track.Track
}

func (s *stubTrackLister) ListTracks() []track.Track {
	return s.tracks
}

func TestDuplicateTrackFilter_ExactIDMatch(t *testing.T) {
	qm := &stubTrackLister{
		tracks: []track.Track{
			{
				ID:      "track123",
				Title:   "Bohemian Rhapsody",
				Artists: []string{"Queen"},
			},
		},
	}

	filter := NewDuplicateTrackFilter(qm)

	// Same track ID should be rejected
	result := filter.Check(
		context.Background(),
		Request{UserID: "alice"},
		track.Track{
			ID:      "track123",
			Title:   "Bohemian Rhapsody - 2011 Remaster",
			Artists: []string{"Queen"},
		},
	)

	assert.False(t, result.Accepted)
	assert.Equal(t, CodeDuplicateTrack, result.Code)
}

func TestDuplicateTrackFilter_RemasterDetection(t *testing.T) {
	tests := []struct {
		name           string
		existingTrack  track.Track
		requestedTrack track.Track
		shouldReject   bool
		description    string
	}{
		{
			name: "Standard remaster pattern",
			existingTrack: track.Track{
				ID:      "original123",
				Title:   "Bohemian Rhapsody",
				Artists: []string{"Queen"},
			},
			requestedTrack: track.Track{
				ID:      "remaster456",
				Title:   "Bohemian Rhapsody - 2011 Remaster",
				Artists: []string{"Queen"},
			},
			shouldReject: true,
			description:  "Should detect '- 2011 Remaster' as duplicate",
		},
		{
			name: "Remastered in parentheses",
			existingTrack: track.Track{
				ID:      "original123",
				Title:   "Yesterday",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "remaster456",
				Title:   "Yesterday (Remastered 2023)",
				Artists: []string{"The Beatles"},
			},
			shouldReject: true,
			description:  "Should detect '(Remastered 2023)' as duplicate",
		},
		{
			name: "Cover song - different artist",
			existingTrack: track.Track{
				ID:      "original123",
				Title:   "Yesterday",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "cover789",
				Title:   "Yesterday",
				Artists: []string{"Paul McCartney"},
			},
			shouldReject: false,
			description:  "Should allow cover by different artist",
		},
		{
			name: "Different songs - similar names",
			existingTrack: track.Track{
				ID:      "track1",
				Title:   "Love",
				Artists: []string{"John Lennon"},
			},
			requestedTrack: track.Track{
				ID:      "track2",
				Title:   "Love Song",
				Artists: []string{"John Lennon"},
			},
			shouldReject: false,
			description:  "Should allow different songs",
		},
		{
			name: "Radio Edit version",
			existingTrack: track.Track{
				ID:      "album123",
				Title:   "Stairway to Heaven",
				Artists: []string{"Led Zeppelin"},
			},
			requestedTrack: track.Track{
				ID:      "radio456",
				Title:   "Stairway to Heaven (Radio Edit)",
				Artists: []string{"Led Zeppelin"},
			},
			shouldReject: true,
			description:  "Should detect radio edit as duplicate",
		},
		{
			name: "Live version",
			existingTrack: track.Track{
				ID:      "studio123",
				Title:   "Hotel California",
				Artists: []string{"Eagles"},
			},
			requestedTrack: track.Track{
				ID:      "live456",
				Title:   "Hotel California - Live",
				Artists: []string{"Eagles"},
			},
			shouldReject: true,
			description:  "Should detect live version as duplicate",
		},
		{
			name: "Multiple remasters in queue",
			existingTrack: track.Track{
				ID:      "remaster2011",
				Title:   "Let It Be - 2011 Remaster",
				Artists: []string{"The Beatles"},
			},
			requestedTrack: track.Track{
				ID:      "remaster2023",
				Title:   "Let It Be (Remastered 2023)",
				Artists: []string{"The Beatles"},
			},
			shouldReject: true,
			description:  "Should detect different remasters as duplicate",
		},
		{
			name: "Remix version - should be allowed",
			existingTrack: track.Track{
				ID:      "original123",
				Title:   "Le Freak",
				Artists: []string{"CHIC"},
			},
			requestedTrack: track.Track{
				ID:      "remix456",
				Title:   "Le Freak (Oliver Heldens Remix)",
				Artists: []string{"CHIC"},
			},
			shouldReject: false,
			description:  "Should allow remix version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qm := &stubTrackLister{tracks: []track.Track{tt.existingTrack}}

			filter := NewDuplicateTrackFilter(qm)
			result := filter.Check(
				context.Background(),
				Request{UserID: "alice"},
				tt.requestedTrack,
					)

			if tt.shouldReject {
				assert.False(t, result.Accepted, tt.description)
				assert.Equal(t, CodeDuplicateTrack, result.Code)
			} else {
				assert.True(t, result.Accepted, tt.description)
			}
		})
	}
}

func TestDuplicateTrackFilter_EmptyQueue(t *testing.T) {
	qm := &stubTrackLister{}

	filter := NewDuplicateTrackFilter(qm)

	result := filter.Check(
		context.Background(),
		Request{UserID: "alice"},
		track.Track{
			ID:      "track123",
			Title:   "Any Song",
			Artists: []string{"Any Artist"},
		},
	)

	assert.True(t, result.Accepted, "Should accept any track when queue is empty")
}

func TestDuplicateTrackFilter_AppliesTo(t *testing.T) {
	filter := NewDuplicateTrackFilter(&stubTrackLister{})

	assert.True(t, filter.AppliesTo(KindSuggestion), "Should apply to suggestions")
	assert.True(t, filter.AppliesTo(KindFallback), "Should apply to fallback candidates")
	assert.False(t, filter.AppliesTo(KindVote), "Should not apply to votes")
}

func TestDuplicateTrackFilter_NilLister(t *testing.T) {
	filter := &DuplicateTrackFilter{}
	result := filter.Check(context.Background(), Request{}, track.Track{ID: "t1"})
	assert.True(t, result.Accepted)
}

func TestNormalizeTrackName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"Bohemian Rhapsody - 2011 Remaster", "bohemian rhapsody"},
		{"Yesterday (Remastered 2023)", "yesterday"},
		{"Hotel California [Remastered]", "hotel california"},
		{"Stairway to Heaven (Radio Edit)", "stairway to heaven"},
		{"Imagine - Live", "imagine"},
		{"Let It Be (Single Version)", "let it be"},
		{"Hey Jude - Remastered Version", "hey jude"},
		{"Come Together (2019 Mix)", "come together (2019 mix)"},
		{"   Extra   Spaces   ", "extra spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := normalizeTrackName(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestIsSameArtist(t *testing.T) {
	tests := []struct {
		name     string
		track1   track.Track
		track2   track.Track
		expected bool
	}{
		{
			name:     "Same artist",
			track1:   track.Track{Artists: []string{"Queen"}},
			track2:   track.Track{Artists: []string{"Queen"}},
			expected: true,
		},
		{
			name:     "Same artist - case insensitive",
			track1:   track.Track{Artists: []string{"Queen"}},
			track2:   track.Track{Artists: []string{"queen"}},
			expected: true,
		},
		{
			name:     "Different artists",
			track1:   track.Track{Artists: []string{"The Beatles"}},
			track2:   track.Track{Artists: []string{"Paul McCartney"}},
			expected: false,
		},
		{
			name:     "Empty artists array",
			track1:   track.Track{Artists: []string{}},
			track2:   track.Track{Artists: []string{"Queen"}},
			expected: false,
		},
		{
			name:     "Multiple artists - compare first",
			track1:   track.Track{Artists: []string{"Queen", "David Bowie"}},
			track2:   track.Track{Artists: []string{"Queen", "Someone Else"}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isSameArtist(tt.track1, tt.track2)
			assert.Equal(t, tt.expected, result)
		})
	}
}
