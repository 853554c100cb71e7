// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/19room/internal/domain/track"
)

// Catalog types.
const (
	CatalogStatic  = "static"
	CatalogSpotify = "spotify"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig            `yaml:"server"`
	Admin        AdminConfig             `yaml:"admin"`
	Rooms        RoomsConfig             `yaml:"rooms"`
	Notification NotificationConfig      `yaml:"notification"`
	Location     LocationConfig          `yaml:"location"`
	Catalog      CatalogConfig           `yaml:"catalog"`
	Spotify      SpotifyConfig           `yaml:"spotify"`
	Fallback     FallbackConfig          `yaml:"fallback"`
	Filters      map[string]FilterConfig `yaml:"filters"`
	Messages     MessagesConfig          `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr      string          `yaml:"addr" default:":8080"`
	Hooks     HooksConfig     `yaml:"hooks"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// WebSocketConfig tunes the websocket transport.
type WebSocketConfig struct {
	SendBuffer      int `yaml:"send_buffer" default:"32" validate:"gte=1,lte=1024"`
	PingIntervalSec int `yaml:"ping_interval_sec" default:"30" validate:"gte=1,lte=300"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// RoomsConfig bounds the room actors.
type RoomsConfig struct {
	TickIntervalMs   int `yaml:"tick_interval_ms" default:"250" validate:"gte=10,lte=10000"`
	MailboxSize      int `yaml:"mailbox_size" default:"64" validate:"gte=1,lte=4096"`
	MaxRooms         int `yaml:"max_rooms" default:"1000" validate:"gte=1"`
	CommandTimeoutMs int `yaml:"command_timeout_ms" default:"2000" validate:"gte=100,lte=60000"`
}

// TickInterval returns the clock check interval.
func (r RoomsConfig) TickInterval() time.Duration {
	return time.Duration(r.TickIntervalMs) * time.Millisecond
}

// CommandTimeout returns how long a caller waits for a room to reply.
func (r RoomsConfig) CommandTimeout() time.Duration {
	return time.Duration(r.CommandTimeoutMs) * time.Millisecond
}

// NotificationConfig represents notification delivery configuration.
type NotificationConfig struct {
	SendTimeoutMs int `yaml:"send_timeout_ms" default:"500" validate:"gte=10,lte=30000"`
}

// SendTimeout returns the per-send timeout.
func (n NotificationConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutMs) * time.Millisecond
}

// LocationConfig represents the device location store configuration.
type LocationConfig struct {
	// MaxAgeSec discards older fixes. Zero keeps fixes forever.
	MaxAgeSec int `yaml:"max_age_sec" default:"300" validate:"gte=0"`
}

// MaxAge returns the location fix lifetime.
func (l LocationConfig) MaxAge() time.Duration {
	return time.Duration(l.MaxAgeSec) * time.Second
}

// CatalogConfig selects the track catalog.
type CatalogConfig struct {
	Type   string               `yaml:"type" default:"static" validate:"oneof=static spotify"`
	Tracks []CatalogTrackConfig `yaml:"tracks" validate:"dive"`
}

// CatalogTrackConfig is one track of the static catalog.
type CatalogTrackConfig struct {
	ID         string   `yaml:"id" validate:"required"`
	Title      string   `yaml:"title" validate:"required"`
	Artists    []string `yaml:"artists"`
	Album      string   `yaml:"album"`
	DurationMs int      `yaml:"duration_ms" validate:"gt=0"`
}

// DomainTracks converts the static catalog entries.
func (c CatalogConfig) DomainTracks() []track.Track {
	tracks := make([]track.Track, 0, len(c.Tracks))
	for _, t := range c.Tracks {
		tracks = append(tracks, track.Track{
			ID:       t.ID,
			Title:    t.Title,
			Artists:  append([]string(nil), t.Artists...),
			Album:    t.Album,
			Duration: time.Duration(t.DurationMs) * time.Millisecond,
		})
	}
	return tracks
}

// FallbackConfig represents the fallback suggestion configuration.
type FallbackConfig struct {
	Enabled        bool             `yaml:"enabled"`
	CandidateCount int              `yaml:"candidate_count" default:"5" validate:"gte=1,lte=50"`
	Providers      []ProviderConfig `yaml:"providers" validate:"required_if=Enabled true,dive"`
}

// ProviderConfig represents a single fallback provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=playlist catalog similar"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// MessagesConfig represents user-facing messages.
type MessagesConfig struct {
	Success               string `yaml:"success" default:"OK"`
	DefaultError          string `yaml:"default_error" default:"Request rejected"`
	InvalidRequest        string `yaml:"invalid_request" default:"Invalid request"`
	RoomNotFound          string `yaml:"room_not_found" default:"Room not found"`
	NotInRoom             string `yaml:"not_in_room" default:"You are not in a room"`
	CatalogUnavailable    string `yaml:"catalog_unavailable" default:"Track catalog is unavailable"`
	NoTracks              string `yaml:"no_tracks" default:"No track could be added"`
	JoinForbidden         string `yaml:"join_forbidden" default:"This room is private"`
	TrackNotFound         string `yaml:"track_not_found" default:"Track not found"`
	DuplicateTrack        string `yaml:"duplicate_track" default:"Track is already in the room"`
	DurationLimitExceeded string `yaml:"duration_limit_exceeded" default:"Track duration is out of range"`
	NotInvited            string `yaml:"not_invited" default:"Only invited users can do this"`
	OutsideTimeWindow     string `yaml:"outside_time_window" default:"Voting is closed"`
	OutsidePositionRadius string `yaml:"outside_position_radius" default:"You are too far from the room"`
}

// SpotifyConfig represents Spotify API configuration.
// Credentials are required only when a component uses Spotify.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"JP"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses YAML configuration, applies env overrides and defaults, and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		for i := range c.Fallback.Providers {
			p := &c.Fallback.Providers[i]
			if p.Type != "similar" {
				continue
			}
			if p.Settings == nil {
				p.Settings = map[string]any{}
			}
			p.Settings["api_key"] = v
		}
	}
}

// GetMessage returns the message for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "success":
		return c.Messages.Success
	case "invalid_request":
		return c.Messages.InvalidRequest
	case "room_not_found":
		return c.Messages.RoomNotFound
	case "not_in_room":
		return c.Messages.NotInRoom
	case "catalog_unavailable":
		return c.Messages.CatalogUnavailable
	case "no_tracks":
		return c.Messages.NoTracks
	case "join_forbidden":
		return c.Messages.JoinForbidden
	case "track_not_found":
		return c.Messages.TrackNotFound
	case "duplicate_track":
		return c.Messages.DuplicateTrack
	case "duration_limit_exceeded":
		return c.Messages.DurationLimitExceeded
	case "not_invited":
		return c.Messages.NotInvited
	case "outside_time_window":
		return c.Messages.OutsideTimeWindow
	case "outside_position_radius":
		return c.Messages.OutsidePositionRadius
	default:
		return c.Messages.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.UsesSpotify() {
		if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" || c.Spotify.RefreshToken == "" {
			return errors.New("spotify client_id, client_secret and refresh_token are required")
		}
	}
	if c.Catalog.Type == CatalogStatic && len(c.Catalog.Tracks) == 0 {
		return errors.New("static catalog requires at least one track")
	}

	return nil
}

// UsesSpotify reports whether any component needs the Spotify client.
func (c *Config) UsesSpotify() bool {
	if c.Catalog.Type == CatalogSpotify {
		return true
	}
	if !c.Fallback.Enabled {
		return false
	}
	for _, p := range c.Fallback.Providers {
		if p.Type == "playlist" {
			return true
		}
	}
	return false
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}
