package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const staticConfig = `
admin:
  token: secret
catalog:
  type: static
  tracks:
    - id: t1
      title: First
      artists: [Alice]
      duration_ms: 180000
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REFRESH_TOKEN", "ADMIN_TOKEN", "SERVER_ADDR", "LASTFM_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(staticConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Rooms.TickInterval())
	assert.Equal(t, 64, cfg.Rooms.MailboxSize)
	assert.Equal(t, 1000, cfg.Rooms.MaxRooms)
	assert.Equal(t, 2*time.Second, cfg.Rooms.CommandTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Notification.SendTimeout())
	assert.Equal(t, 5*time.Minute, cfg.Location.MaxAge())
	assert.Equal(t, 32, cfg.Server.WebSocket.SendBuffer)
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, 5, cfg.Fallback.CandidateCount)
	assert.False(t, cfg.UsesSpotify())
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Parse([]byte(staticConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Admin.Token)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestParse_LastFMKeyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LASTFM_API_KEY", "lfm-key")

	cfg, err := Parse([]byte(staticConfig + `
fallback:
  enabled: true
  providers:
    - type: similar
      display_name: Last.fm
    - type: catalog
      display_name: House
`))
	require.NoError(t, err)

	assert.Equal(t, "lfm-key", cfg.Fallback.Providers[0].Settings["api_key"])
	assert.Nil(t, cfg.Fallback.Providers[1].Settings)
	assert.False(t, cfg.UsesSpotify())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name: "missing admin token",
			yaml: `
catalog:
  tracks: [{id: t1, title: First, duration_ms: 1000}]
`,
			errMsg: "Token",
		},
		{
			name: "unknown catalog type",
			yaml: `
admin: {token: secret}
catalog: {type: lastfm}
`,
			errMsg: "Type",
		},
		{
			name: "empty static catalog",
			yaml: `
admin: {token: secret}
`,
			errMsg: "at least one track",
		},
		{
			name: "catalog track without duration",
			yaml: `
admin: {token: secret}
catalog:
  tracks: [{id: t1, title: First}]
`,
			errMsg: "DurationMs",
		},
		{
			name: "spotify catalog without credentials",
			yaml: `
admin: {token: secret}
catalog: {type: spotify}
`,
			errMsg: "spotify",
		},
		{
			name: "fallback enabled without providers",
			yaml: `
admin: {token: secret}
catalog:
  tracks: [{id: t1, title: First, duration_ms: 1000}]
fallback: {enabled: true}
`,
			errMsg: "Providers",
		},
		{
			name: "tick interval too small",
			yaml: `
admin: {token: secret}
catalog:
  tracks: [{id: t1, title: First, duration_ms: 1000}]
rooms: {tick_interval_ms: 1}
`,
			errMsg: "TickIntervalMs",
		},
		{
			name: "invalid market",
			yaml: `
admin: {token: secret}
catalog:
  tracks: [{id: t1, title: First, duration_ms: 1000}]
spotify: {market: JAPAN}
`,
			errMsg: "Market",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_UsesSpotify(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"static catalog", Config{Catalog: CatalogConfig{Type: CatalogStatic}}, false},
		{"spotify catalog", Config{Catalog: CatalogConfig{Type: CatalogSpotify}}, true},
		{
			name: "playlist fallback",
			cfg: Config{
				Catalog:  CatalogConfig{Type: CatalogStatic},
				Fallback: FallbackConfig{Enabled: true, Providers: []ProviderConfig{{Type: "playlist"}}},
			},
			want: true,
		},
		{
			name: "disabled playlist fallback",
			cfg: Config{
				Catalog:  CatalogConfig{Type: CatalogStatic},
				Fallback: FallbackConfig{Providers: []ProviderConfig{{Type: "playlist"}}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.UsesSpotify())
		})
	}
}

func TestConfig_GetMessage(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte(staticConfig + `
messages:
  duplicate_track: already there
`))
	require.NoError(t, err)

	assert.Equal(t, "already there", cfg.GetMessage("duplicate_track"))
	assert.Equal(t, "Room not found", cfg.GetMessage("room_not_found"))
	assert.Equal(t, cfg.Messages.DefaultError, cfg.GetMessage("something_else"))
}

func TestCatalogConfig_DomainTracks(t *testing.T) {
	c := CatalogConfig{Tracks: []CatalogTrackConfig{
		{ID: "t1", Title: "First", Artists: []string{"Alice"}, Album: "A", DurationMs: 1500},
	}}

	got := c.DomainTracks()
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, []string{"Alice"}, got[0].Artists)
	assert.Equal(t, 1500*time.Millisecond, got[0].Duration)
}

func TestConfig_IsFilterEnabled(t *testing.T) {
	cfg := &Config{Filters: map[string]FilterConfig{
		"duration_limit_filter":  {Enabled: true},
		"duplicate_track_filter": {Enabled: false},
	}}

	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.False(t, cfg.IsFilterEnabled("duplicate_track_filter"))
	assert.False(t, cfg.IsFilterEnabled("missing"))
}
