// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/19room/internal/api/connect"
	"github.com/osa030/19room/internal/api/ws"
	"github.com/osa030/19room/internal/app/bgm"
	"github.com/osa030/19room/internal/app/filter"
	"github.com/osa030/19room/internal/app/location"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/app/session"
	"github.com/osa030/19room/internal/infra/catalog"
	"github.com/osa030/19room/internal/infra/config"
	"github.com/osa030/19room/internal/infra/logger"
	"github.com/osa030/19room/internal/infra/spotify"
)

var (
	app        = kingpin.New("19room-server", "19room collaborative listening server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %+v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	sessionMgr, err := newSessionManager(ctx, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	apiconnect.Register(mux, sessionMgr, cfg)
	mux.Handle(ws.Path, ws.NewHandler(sessionMgr, cfg))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the listener a moment before running hooks
	time.Sleep(100 * time.Millisecond)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		sessionMgr.Close(ctx)
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Rooms go first so members receive their forced disconnection
	sessionMgr.Close(shutdownCtx)

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// newSessionManager builds the catalog, fallback chain and filters the
// rooms share.
func newSessionManager(ctx context.Context, cfg *config.Config) (*session.Manager, error) {
	filters := make(map[string]filter.Setting, len(cfg.Filters))
	for name, f := range cfg.Filters {
		filters[name] = filter.Setting{Enabled: f.Enabled, Settings: f.Settings}
	}
	policy, err := filter.NewSuggestionPolicy(filters)
	if err != nil {
		return nil, errors.Wrap(err, "invalid filter config")
	}

	var spotifyClient *spotify.Client
	if cfg.UsesSpotify() {
		spotifyClient, err = spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create Spotify client")
		}
	}

	static := catalog.NewStatic(cfg.Catalog.DomainTracks())

	sessCfg := session.Config{
		Catalog:        static,
		Locations:      location.NewStore(cfg.Location.MaxAge(), nil),
		Hub:            notification.NewManager(cfg.Notification.SendTimeout()),
		Suggestions:    policy,
		TickInterval:   cfg.Rooms.TickInterval(),
		MailboxSize:    cfg.Rooms.MailboxSize,
		MaxRooms:       cfg.Rooms.MaxRooms,
		CommandTimeout: cfg.Rooms.CommandTimeout(),
	}
	if cfg.Catalog.Type == config.CatalogSpotify {
		sessCfg.Catalog = spotifyClient
	}
	zlog.Info().Msgf("Track catalog: type=%s static_tracks=%d", cfg.Catalog.Type, static.Len())

	// Interfaces stay nil unless the client exists
	var playlists bgm.PlaylistSource
	if spotifyClient != nil {
		sessCfg.Playlists = spotifyClient
		playlists = spotifyClient
	}

	if cfg.Fallback.Enabled {
		chain, err := bgm.NewProviderChainFromConfig(cfg.Fallback, bgm.Sources{
			Playlists: playlists,
			Random:    static,
			Search:    sessCfg.Catalog,
		})
		if err != nil {
			return nil, errors.Wrap(err, "invalid fallback config")
		}
		sessCfg.Refiller = chain
	}

	sessionMgr, err := session.NewManager(sessCfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session manager")
	}
	return sessionMgr, nil
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for name, factory := range filter.GetRegistered() {
		f := factory()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", name, f.Description(), codes)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// sh -c allows redirection and pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
