package bgm

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19room/internal/domain/track"
	"github.com/osa030/19room/internal/infra/config"
)

type stubPlaylist struct {
	tracks []track.Track
	err    error
	calls  int
}

func (s *stubPlaylist) GetPlaylistTracksRandom(_ context.Context, _ string, count int) ([]track.Track, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if count > len(s.tracks) {
		count = len(s.tracks)
	}
	return s.tracks[:count], nil
}

type stubRandom struct {
	tracks []track.Track
}

func (s *stubRandom) Random(count int, exclude map[string]bool) []track.Track {
	out := []track.Track{}
	for _, t := range s.tracks {
		if len(out) == count {
			break
		}
		if !exclude[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func makeTracks(prefix string, n int) []track.Track {
	out := make([]track.Track, n)
	for i := range out {
		out[i] = track.Track{ID: fmt.Sprintf("%s%d", prefix, i+1), Title: fmt.Sprintf("Song %d", i+1)}
	}
	return out
}

func ids(tracks []track.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestNewPlaylistProvider_Validation(t *testing.T) {
	_, err := NewPlaylistProvider(&stubPlaylist{}, 5, map[string]any{})
	assert.Error(t, err)

	_, err = NewPlaylistProvider(nil, 5, map[string]any{"playlist_url": "spotify:playlist:x"})
	assert.Error(t, err)

	p, err := NewPlaylistProvider(&stubPlaylist{}, 5, map[string]any{"playlist_url": "spotify:playlist:x"})
	require.NoError(t, err)
	assert.Equal(t, "playlist", p.Name())
}

func TestPlaylistProvider_UsesCache(t *testing.T) {
	src := &stubPlaylist{tracks: makeTracks("p", 4)}
	p, err := NewPlaylistProvider(src, 4, map[string]any{"playlist_url": "spotify:playlist:x"})
	require.NoError(t, err)

	first, err := p.GetCandidates(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(first))
	assert.Equal(t, 1, src.calls)

	second, err := p.GetCandidates(context.Background(), 2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p4"}, ids(second))
	assert.Equal(t, 1, src.calls)
}

func TestPlaylistProvider_ExcludesQueued(t *testing.T) {
	src := &stubPlaylist{tracks: makeTracks("p", 3)}
	p, err := NewPlaylistProvider(src, 3, map[string]any{"playlist_url": "spotify:playlist:x"})
	require.NoError(t, err)

	got, err := p.GetCandidates(context.Background(), 3, nil, map[string]bool{"p2": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids(got))
}

func TestPlaylistProvider_SourceError(t *testing.T) {
	src := &stubPlaylist{err: errors.New("rate limit")}
	p, err := NewPlaylistProvider(src, 3, map[string]any{"playlist_url": "spotify:playlist:x"})
	require.NoError(t, err)

	_, err = p.GetCandidates(context.Background(), 1, nil, nil)
	assert.Error(t, err)
}

func TestCatalogProvider(t *testing.T) {
	_, err := NewCatalogProvider(nil)
	assert.Error(t, err)

	p, err := NewCatalogProvider(&stubRandom{tracks: makeTracks("c", 3)})
	require.NoError(t, err)

	got, err := p.GetCandidates(context.Background(), 2, nil, map[string]bool{"c1": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c3"}, ids(got))
	assert.Equal(t, "catalog", p.Name())
}

func TestProviderChain_MergesAndSkipsFailures(t *testing.T) {
	failing, err := NewPlaylistProvider(&stubPlaylist{err: errors.New("503")}, 2, map[string]any{"playlist_url": "x"})
	require.NoError(t, err)
	catalog, err := NewCatalogProvider(&stubRandom{tracks: []track.Track{{ID: "a"}, {ID: "b"}}})
	require.NoError(t, err)
	overlapping, err := NewCatalogProvider(&stubRandom{tracks: []track.Track{{ID: "a"}, {ID: "c"}}})
	require.NoError(t, err)

	chain := NewProviderChain(2, []ProviderWithMetadata{
		{Provider: failing, DisplayName: "Playlist"},
		{Provider: catalog, DisplayName: "House"},
		{Provider: overlapping, DisplayName: "Backup"},
	})

	got, err := chain.GetCandidates(context.Background(), 2, nil, map[string]bool{"b": true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Track.ID)
	assert.Equal(t, "House", got[0].DisplayName)
	assert.Equal(t, "c", got[1].Track.ID)
	assert.Equal(t, "Backup", got[1].DisplayName)
	assert.Equal(t, 2, chain.CandidateCount())
}

func TestProviderChain_NoCandidates(t *testing.T) {
	empty, err := NewCatalogProvider(&stubRandom{})
	require.NoError(t, err)
	chain := NewProviderChain(3, []ProviderWithMetadata{{Provider: empty, DisplayName: "Empty"}})

	_, err = chain.GetCandidates(context.Background(), 3, nil, nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestNewProviderChainFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FallbackConfig
		wantErr bool
	}{
		{
			name: "playlist and catalog",
			cfg: config.FallbackConfig{CandidateCount: 3, Providers: []config.ProviderConfig{
				{Type: "playlist", DisplayName: "DJ", Settings: map[string]any{"playlist_url": "spotify:playlist:x"}},
				{Type: "catalog", DisplayName: "House"},
			}},
		},
		{
			name:    "no providers",
			cfg:     config.FallbackConfig{CandidateCount: 3},
			wantErr: true,
		},
		{
			name: "unknown type",
			cfg: config.FallbackConfig{CandidateCount: 3, Providers: []config.ProviderConfig{
				{Type: "radio", DisplayName: "Radio"},
			}},
			wantErr: true,
		},
		{
			name: "similar",
			cfg: config.FallbackConfig{CandidateCount: 3, Providers: []config.ProviderConfig{
				{Type: "similar", DisplayName: "Last.fm", Settings: map[string]any{"api_key": "k"}},
			}},
		},
		{
			name: "similar without api key",
			cfg: config.FallbackConfig{CandidateCount: 3, Providers: []config.ProviderConfig{
				{Type: "similar", DisplayName: "Last.fm"},
			}},
			wantErr: true,
		},
		{
			name: "playlist without url",
			cfg: config.FallbackConfig{CandidateCount: 3, Providers: []config.ProviderConfig{
				{Type: "playlist", DisplayName: "DJ"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := NewProviderChainFromConfig(tt.cfg, Sources{
				Playlists: &stubPlaylist{},
				Random:    &stubRandom{},
				Search:    &stubSearch{},
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, chain.CandidateCount())
		})
	}
}
