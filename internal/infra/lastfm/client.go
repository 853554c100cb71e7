// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Client is a Last.fm API client. Similar-track lookups are cached for the
// lifetime of the client since rooms keep asking about the same seeds.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	similar map[string][]TrackRef
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey  string
	BaseURL string        // Optional, defaults to the public API
	Timeout time.Duration // Optional, defaults to 10s
}

// TrackRef names a track the way Last.fm does: title and artist only.
type TrackRef struct {
	Name   string
	Artist string
}

// APIError is an error payload returned by Last.fm.
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return "last.fm API error " + strconv.Itoa(e.Code) + ": " + e.Message
}

type trackList struct {
	Track []struct {
		Name   string `json:"name"`
		Artist struct {
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"track"`
}

func (l trackList) refs() []TrackRef {
	refs := make([]TrackRef, 0, len(l.Track))
	for _, t := range l.Track {
		refs = append(refs, TrackRef{Name: t.Name, Artist: t.Artist.Name})
	}
	return refs
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		similar:    make(map[string][]TrackRef),
	}, nil
}

// GetSimilarTracks retrieves tracks similar to the given one.
// Reference: https://www.last.fm/api/show/track.getSimilar
func (c *Client) GetSimilarTracks(ctx context.Context, trackName, artistName string, limit int) ([]TrackRef, error) {
	if trackName == "" || artistName == "" {
		return nil, errors.New("track name and artist name are required")
	}
	limit = clampLimit(limit)

	key := artistName + "\x00" + trackName + "\x00" + strconv.Itoa(limit)
	c.mu.RLock()
	cached, ok := c.similar[key]
	c.mu.RUnlock()
	if ok {
		zlog.Debug().Msgf("using cached similar tracks: %s - %s", artistName, trackName)
		return cached, nil
	}

	params := url.Values{}
	params.Set("method", "track.getSimilar")
	params.Set("artist", artistName)
	params.Set("track", trackName)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("autocorrect", "1")

	var response struct {
		SimilarTracks trackList `json:"similartracks"`
	}
	if err := c.call(ctx, params, &response); err != nil {
		return nil, err
	}

	refs := response.SimilarTracks.refs()
	c.mu.Lock()
	c.similar[key] = refs
	c.mu.Unlock()
	return refs, nil
}

// GetChartTopTracks retrieves global top tracks from Last.fm charts.
// Reference: https://www.last.fm/api/show/chart.getTopTracks
func (c *Client) GetChartTopTracks(ctx context.Context, limit int) ([]TrackRef, error) {
	params := url.Values{}
	params.Set("method", "chart.getTopTracks")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var response struct {
		Tracks trackList `json:"tracks"`
	}
	if err := c.call(ctx, params, &response); err != nil {
		return nil, err
	}
	return response.Tracks.refs(), nil
}

// call performs a GET request and decodes the JSON body into out.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	// Errors come back as a JSON payload, sometimes with status 200
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return &apiErr
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Newf("last.fm returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	default:
		return limit
	}
}
