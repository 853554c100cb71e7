// Package main obtains the Spotify refresh token 19room uses to resolve seed
// tracks and playlists.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/19room/internal/infra/spotify"
)

const refreshTokenEnv = "SPOTIFY_REFRESH_TOKEN"

var (
	app          = kingpin.New("19room-auth", "Obtain the Spotify refresh token used for room seeding")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	port         = app.Flag("port", "Callback server port").Default("8888").Int()
	market       = app.Flag("market", "Market used when checking the seed playlist").Envar("SPOTIFY_MARKET").String()
	seedPlaylist = app.Flag("seed-playlist", "Playlist URL to read with the new token before saving it").String()
	envFile      = app.Flag("env-file", "Write the token into this dotenv file").String()
	timeout      = app.Flag("timeout", "How long to wait for the browser callback").Default("5m").Duration()
)

// callback completes the authorization code flow for a single login.
type callback struct {
	auth   *spotifyauth.Authenticator
	state  string
	tokens chan *oauth2.Token
}

func (c *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if st := r.FormValue("state"); st != c.state {
		http.Error(w, "State mismatch", http.StatusForbidden)
		log.Printf("State mismatch: %s", st)
		return
	}
	token, err := c.auth.Token(r.Context(), c.state, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusForbidden)
		log.Printf("Failed to get token: %v", err)
		return
	}
	fmt.Fprint(w, "19room is authorized. You can close this window.")

	select {
	case c.tokens <- token:
	default:
	}
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cb := &callback{
		auth: spotifyauth.New(
			spotifyauth.WithRedirectURL(fmt.Sprintf("http://127.0.0.1:%d/callback", *port)),
			spotifyauth.WithClientID(*clientID),
			spotifyauth.WithClientSecret(*clientSecret),
			// Rooms only read the catalog and seed playlists
			spotifyauth.WithScopes(
				spotifyauth.ScopePlaylistReadPrivate,
				spotifyauth.ScopePlaylistReadCollaborative,
			),
		),
		state:  uuid.NewString(),
		tokens: make(chan *oauth2.Token, 1),
	}

	mux := http.NewServeMux()
	mux.Handle("/callback", cb)
	server := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	fmt.Printf("Open this URL to authorize 19room:\n\n%s\n\n", cb.auth.AuthURL(cb.state))

	var token *oauth2.Token
	select {
	case token = <-cb.tokens:
	case <-time.After(*timeout):
		log.Fatalf("No authorization received within %s", *timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown server: %v", err)
	}

	if *seedPlaylist != "" {
		n, err := checkSeedPlaylist(token.RefreshToken)
		if err != nil {
			log.Fatalf("Token cannot read the seed playlist: %v", err)
		}
		fmt.Printf("Seed playlist readable: %d tracks\n", n)
	}

	if *envFile != "" {
		if err := writeEnv(*envFile, token.RefreshToken); err != nil {
			log.Fatalf("Failed to update %s: %v", *envFile, err)
		}
		fmt.Printf("%s written to %s\n", refreshTokenEnv, *envFile)
		return
	}

	fmt.Printf("Add to config/server.yaml:\n\nspotify:\n  refresh_token: %q\n\n", token.RefreshToken)
	fmt.Printf("or export %s=%q\n", refreshTokenEnv, token.RefreshToken)
}

// checkSeedPlaylist reads the playlist through the same client the server
// uses to seed rooms.
func checkSeedPlaylist(refreshToken string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := spotify.New(ctx, spotify.Config{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		RefreshToken: refreshToken,
		Market:       *market,
	})
	if err != nil {
		return 0, err
	}
	tracks, err := client.GetPlaylistTracks(ctx, *seedPlaylist)
	if err != nil {
		return 0, err
	}
	return len(tracks), nil
}

// writeEnv sets the refresh token in a dotenv file, keeping its other keys.
func writeEnv(path, refreshToken string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(err, "failed to read env file")
		}
		env = map[string]string{}
	}
	env[refreshTokenEnv] = refreshToken
	return errors.Wrap(godotenv.Write(env, path), "failed to write env file")
}
