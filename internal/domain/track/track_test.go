package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_ArtistName(t *testing.T) {
	tests := []struct {
		name     string
		artists  []string
		expected string
		main     string
	}{
		{
			name:     "single artist",
			artists:  []string{"Queen"},
			expected: "Queen",
			main:     "Queen",
		},
		{
			name:     "multiple artists",
			artists:  []string{"Daft Punk", "Pharrell Williams"},
			expected: "Daft Punk, Pharrell Williams",
			main:     "Daft Punk",
		},
		{
			name:     "no artists",
			artists:  nil,
			expected: "",
			main:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trk := Track{ID: "t1", Artists: tt.artists}
			assert.Equal(t, tt.expected, trk.ArtistName())
			assert.Equal(t, tt.main, trk.MainArtist())
		})
	}
}

func TestQueuedTrack_IsEligible(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		minimum  int
		expected bool
	}{
		{name: "below minimum", score: 1, minimum: 2, expected: false},
		{name: "at minimum", score: 2, minimum: 2, expected: true},
		{name: "above minimum", score: 5, minimum: 1, expected: true},
		{name: "unvoted with minimum one", score: 0, minimum: 1, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qt := QueuedTrack{Track: Track{ID: "t1"}, Score: tt.score}
			assert.Equal(t, tt.expected, qt.IsEligible(tt.minimum))
		})
	}
}
