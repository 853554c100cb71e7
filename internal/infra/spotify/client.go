// Package spotify provides a track catalog backed by the Spotify Web API.
package spotify

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/19room/internal/domain/track"
)

// maxTracksPerRequest is the Spotify limit for the several-tracks endpoint.
const maxTracksPerRequest = 50

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Market       string
}

// New creates a new Spotify client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)

	// The HTTP client refreshes the access token on demand
	token := &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	}
	httpClient := auth.Client(ctx, token)

	market := cfg.Market
	if market == "" {
		market = "US"
	}

	return &Client{
		client:     spotify.New(httpClient),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// GetTrack retrieves track information by ID, URL, or URI.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*track.Track, error) {
	id := extractTrackID(trackID)

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.client.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get track %s", id)
	}

	return c.convertTrack(result), nil
}

// GetTracks resolves several tracks. Unknown IDs are skipped; the result keeps request order.
func (c *Client) GetTracks(ctx context.Context, trackIDs []string) ([]track.Track, error) {
	ids := make([]spotify.ID, 0, len(trackIDs))
	for _, raw := range trackIDs {
		if id := extractTrackID(raw); id != "" {
			ids = append(ids, spotify.ID(id))
		}
	}

	tracks := make([]track.Track, 0, len(ids))
	for start := 0; start < len(ids); start += maxTracksPerRequest {
		end := start + maxTracksPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		var page []*spotify.FullTrack
		err := c.retry(func() error {
			p, err := c.client.GetTracks(ctx, batch, spotify.Market(c.market))
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get tracks")
		}

		for i, t := range page {
			if t == nil || t.ID == "" {
				zlog.Debug().Str("track_id", string(batch[i])).Msg("track not found in catalog")
				continue
			}
			tracks = append(tracks, *c.convertTrack(t))
		}
	}

	return tracks, nil
}

// Search searches tracks on Spotify.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]track.Track, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var result *spotify.SearchResult
	err := c.retry(func() error {
		r, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search")
	}
	if result.Tracks == nil {
		return []track.Track{}, nil
	}

	tracks := make([]track.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, *c.convertTrack(&result.Tracks.Tracks[i]))
	}

	return tracks, nil
}

// GetPlaylistTracks retrieves all tracks from a playlist.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	var tracks []track.Track
	offset := 0
	limit := 100

	for {
		page, err := c.playlistPage(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		tracks = append(tracks, c.pageTracks(page)...)

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// GetPlaylistTracksRandom retrieves a random sample of tracks from a playlist.
// It reads the total count first, then fetches one random page.
func (c *Client) GetPlaylistTracksRandom(ctx context.Context, playlistURL string, count int) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	firstPage, err := c.playlistPage(ctx, playlistID, 1, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get playlist info")
	}

	totalTracks := int(firstPage.Total)
	if totalTracks == 0 {
		return []track.Track{}, nil
	}

	// Keep the offset low enough that the page can hold count tracks
	limit := 100
	maxOffset := totalTracks - limit
	if maxOffset < 0 {
		maxOffset = 0
	}

	rng := newRand()
	offset := 0
	if maxOffset > 0 {
		offset = rng.Intn(maxOffset + 1)
	}

	page, err := c.playlistPage(ctx, playlistID, limit, offset)
	if err != nil {
		return nil, err
	}

	tracks := c.pageTracks(page)
	if len(tracks) > count {
		rng.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
		tracks = tracks[:count]
	}

	return tracks, nil
}

func (c *Client) playlistPage(ctx context.Context, playlistID string, limit, offset int) (*spotify.PlaylistItemPage, error) {
	var page *spotify.PlaylistItemPage
	err := c.retry(func() error {
		p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
			spotify.Limit(limit),
			spotify.Offset(offset),
			spotify.Market(c.market),
		)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get playlist items")
	}
	return page, nil
}

// pageTracks converts playlist items, skipping episodes.
func (c *Client) pageTracks(page *spotify.PlaylistItemPage) []track.Track {
	tracks := make([]track.Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track.Track != nil && item.Track.Track.ID != "" {
			tracks = append(tracks, *c.convertTrack(item.Track.Track))
		}
	}
	return tracks
}

// convertTrack converts a Spotify FullTrack to domain Track.
func (c *Client) convertTrack(t *spotify.FullTrack) *track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	var albumArt string
	if len(t.Album.Images) > 0 {
		albumArt = t.Album.Images[0].URL
	}

	return &track.Track{
		ID:          string(t.ID),
		Title:       t.Name,
		Artists:     artists,
		Album:       t.Album.Name,
		AlbumArtURL: albumArt,
		Duration:    time.Duration(t.Duration) * time.Millisecond,
		URL:         GetTrackURL(string(t.ID)),
	}
}

// GetTrackURL returns the Spotify URL for a track.
func GetTrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			zlog.Debug().Err(err).Int("attempt", i+1).Msg("spotify request failed, retrying")
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

func newRand() *rand.Rand {
	var seed int64
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(buf[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	return extractID(input, "playlist")
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	return extractID(input, "track")
}

// extractID handles "spotify:<kind>:ID", "https://open.spotify.com[/intl-XX]/<kind>/ID?..."
// and plain IDs.
func extractID(input, kind string) string {
	input = strings.TrimSpace(input)

	uriPrefix := "spotify:" + kind + ":"
	if strings.HasPrefix(input, uriPrefix) {
		return strings.TrimPrefix(input, uriPrefix)
	}

	segment := "/" + kind + "/"
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, segment) {
		parts := strings.Split(input, segment)
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	return input
}
