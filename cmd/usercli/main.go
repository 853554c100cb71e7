// Package main provides the user CLI entry point for testing.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/osa030/19room/internal/api/roomv1"
	"github.com/osa030/19room/internal/app/notification"
	"github.com/osa030/19room/internal/domain/geo"
	"github.com/osa030/19room/internal/domain/room"
)

var (
	app        = kingpin.New("19room-usercli", "19room user client for testing")
	server     = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	userID     = app.Flag("user", "User ID (or set ROOM_USER_ID env)").Envar("ROOM_USER_ID").Required().String()
	deviceID   = app.Flag("device", "Device ID (or set ROOM_DEVICE_ID env)").Envar("ROOM_DEVICE_ID").Required().String()
	deviceName = app.Flag("device-name", "Device display name").String()

	// create command
	createCmd      = app.Command("create", "Create a room")
	createName     = createCmd.Arg("name", "Room name").Required().String()
	createTracks   = createCmd.Arg("track-ids", "Initial track IDs").Strings()
	createPlaylist = createCmd.Flag("playlist", "Seed the queue from a playlist URL").String()
	createPrivate  = createCmd.Flag("private", "Only invited users may join").Bool()
	createDirect   = createCmd.Flag("direct", "Every member plays on their own device").Bool()
	createInvited  = createCmd.Flag("invited-votes", "Only invited users may vote").Bool()
	createMinScore = createCmd.Flag("min-score", "Minimum score to be played").Int()
	createWindow   = createCmd.Flag("window", "Voting window length from now (e.g. 2h)").Duration()
	createLat      = createCmd.Flag("lat", "Latitude of the voting area").Float64()
	createLng      = createCmd.Flag("lng", "Longitude of the voting area").Float64()
	createRadius   = createCmd.Flag("radius", "Radius of the voting area in meters").Float64()

	// join command
	joinCmd    = app.Command("join", "Join a room")
	joinRoomID = joinCmd.Arg("room-id", "Room ID").Required().String()

	// leave command
	leaveCmd = app.Command("leave", "Leave the current room")

	// context command
	contextCmd = app.Command("context", "Show the current room")

	// playback commands
	playCmd  = app.Command("play", "Start playback")
	pauseCmd = app.Command("pause", "Pause playback")
	nextCmd  = app.Command("next", "Skip to the next track")

	// vote command
	voteCmd     = app.Command("vote", "Vote for a queued track")
	voteTrackID = voteCmd.Arg("track-id", "Track ID").Required().String()

	// suggest command
	suggestCmd      = app.Command("suggest", "Suggest tracks")
	suggestTrackIDs = suggestCmd.Arg("track-ids", "Track IDs").Required().Strings()

	// search command
	searchCmd   = app.Command("search", "Search the track catalog")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()
	searchLimit = searchCmd.Flag("limit", "Maximum results").Default("10").Int()

	// remove command
	removeCmd     = app.Command("remove", "Remove a queued track")
	removeTrackID = removeCmd.Arg("track-id", "Track ID").Required().String()

	// emit command
	emitCmd      = app.Command("emit", "Change the emitting device")
	emitDeviceID = emitCmd.Arg("device-id", "Device ID").Required().String()

	// invite command
	inviteCmd    = app.Command("invite", "Invite a user")
	inviteUserID = inviteCmd.Arg("user-id", "User ID").Required().String()

	// grant command
	grantCmd    = app.Command("grant", "Grant or revoke control and delegation permission")
	grantUserID = grantCmd.Arg("user-id", "User ID").Required().String()
	grantRevoke = grantCmd.Flag("revoke", "Revoke instead of grant").Bool()

	// delegate command
	delegateCmd    = app.Command("delegate", "Make a user the delegation owner")
	delegateUserID = delegateCmd.Arg("user-id", "User ID").Required().String()

	// users command
	usersCmd = app.Command("users", "List room members")

	// constraints command
	constraintsCmd = app.Command("constraints", "Show the room's vote constraints")

	// location command
	locationCmd = app.Command("location", "Report this device's position")
	locationLat = locationCmd.Arg("lat", "Latitude").Required().Float64()
	locationLng = locationCmd.Arg("lng", "Longitude").Required().Float64()

	// subscribe command
	subscribeCmd = app.Command("subscribe", "Subscribe to notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := roomv1.NewRoomServiceClient(
		http.DefaultClient,
		*server,
		roomv1.WithIdentity(*userID, *deviceID, *deviceName),
	)

	ctx := context.Background()

	switch command {
	case createCmd.FullCommand():
		createRoom(ctx, client)
	case joinCmd.FullCommand():
		resp, err := client.JoinRoom(ctx, connect.NewRequest(&roomv1.JoinRoomRequest{RoomID: *joinRoomID}))
		exitOnError(err)
		fmt.Println("Joined!")
		printSnapshot(resp.Msg.Room)
	case leaveCmd.FullCommand():
		done(client.LeaveRoom(ctx, connect.NewRequest(&roomv1.LeaveRoomRequest{})))
	case contextCmd.FullCommand():
		resp, err := client.GetContext(ctx, connect.NewRequest(&roomv1.GetContextRequest{}))
		exitOnError(err)
		printSnapshot(resp.Msg.Room)
	case playCmd.FullCommand():
		done(client.Play(ctx, connect.NewRequest(&roomv1.PlayRequest{})))
	case pauseCmd.FullCommand():
		done(client.Pause(ctx, connect.NewRequest(&roomv1.PauseRequest{})))
	case nextCmd.FullCommand():
		done(client.NextTrack(ctx, connect.NewRequest(&roomv1.NextTrackRequest{})))
	case voteCmd.FullCommand():
		done(client.VoteForTrack(ctx, connect.NewRequest(&roomv1.VoteForTrackRequest{TrackID: *voteTrackID})))
	case suggestCmd.FullCommand():
		suggest(ctx, client, *suggestTrackIDs)
	case searchCmd.FullCommand():
		search(ctx, client, *searchQuery, *searchLimit)
	case removeCmd.FullCommand():
		done(client.RemoveTrack(ctx, connect.NewRequest(&roomv1.RemoveTrackRequest{TrackID: *removeTrackID})))
	case emitCmd.FullCommand():
		done(client.ChangeEmittingDevice(ctx, connect.NewRequest(&roomv1.ChangeEmittingDeviceRequest{DeviceID: *emitDeviceID})))
	case inviteCmd.FullCommand():
		done(client.InviteUser(ctx, connect.NewRequest(&roomv1.InviteUserRequest{UserID: *inviteUserID})))
	case grantCmd.FullCommand():
		done(client.UpdateControlAndDelegationPermission(ctx, connect.NewRequest(&roomv1.UpdateControlAndDelegationPermissionRequest{
			UserID:                            *grantUserID,
			HasControlAndDelegationPermission: !*grantRevoke,
		})))
	case delegateCmd.FullCommand():
		done(client.UpdateDelegationOwner(ctx, connect.NewRequest(&roomv1.UpdateDelegationOwnerRequest{UserID: *delegateUserID})))
	case usersCmd.FullCommand():
		listUsers(ctx, client)
	case constraintsCmd.FullCommand():
		constraints(ctx, client)
	case locationCmd.FullCommand():
		done(client.ReportLocation(ctx, connect.NewRequest(&roomv1.ReportLocationRequest{
			Lat:        *locationLat,
			Lng:        *locationLng,
			ReportedAt: time.Now(),
		})))
	case subscribeCmd.FullCommand():
		subscribe(ctx, client)
	}
}

func createRoom(ctx context.Context, client roomv1.RoomServiceClient) {
	req := &roomv1.CreateRoomRequest{
		Name:                    *createName,
		Visibility:              string(room.VisibilityPublic),
		OnlyInvitedUsersCanVote: *createInvited,
		PlayingMode:             string(room.PlayingModeBroadcast),
		MinimumScoreToBePlayed:  *createMinScore,
		InitialTrackIDs:         *createTracks,
		SeedPlaylistURL:         *createPlaylist,
	}
	if *createPrivate {
		req.Visibility = string(room.VisibilityPrivate)
	}
	if *createDirect {
		req.PlayingMode = string(room.PlayingModeDirect)
	}
	if *createWindow > 0 {
		now := time.Now()
		req.TimeConstraint = &room.TimeWindow{StartsAt: now, EndsAt: now.Add(*createWindow)}
	}
	if *createRadius > 0 {
		req.PositionConstraint = &room.PositionConstraint{
			Place:        geo.Point{Lat: *createLat, Lng: *createLng},
			RadiusMeters: *createRadius,
		}
	}

	resp, err := client.CreateRoom(ctx, connect.NewRequest(req))
	exitOnError(err)
	fmt.Printf("Created! Room ID: %s\n", resp.Msg.Room.RoomID)
	printSnapshot(resp.Msg.Room)
}

func suggest(ctx context.Context, client roomv1.RoomServiceClient, trackIDs []string) {
	resp, err := client.SuggestTracks(ctx, connect.NewRequest(&roomv1.SuggestTracksRequest{TrackIDs: trackIDs}))
	exitOnError(err)

	if resp.Msg.Success {
		fmt.Printf("Success: %s\n", resp.Msg.Message)
	} else {
		fmt.Printf("Rejected [%s]: %s\n", resp.Msg.Code, resp.Msg.Message)
	}
	if len(resp.Msg.Accepted) > 0 {
		fmt.Printf("  Accepted: %s\n", strings.Join(resp.Msg.Accepted, ", "))
	}
	for _, r := range resp.Msg.Rejected {
		fmt.Printf("  Rejected %s [%s]: %s\n", r.TrackID, r.Code, r.Message)
	}
}

func search(ctx context.Context, client roomv1.RoomServiceClient, query string, limit int) {
	resp, err := client.SearchTracks(ctx, connect.NewRequest(&roomv1.SearchTracksRequest{Query: query, Limit: limit}))
	exitOnError(err)

	fmt.Printf("Tracks (%d):\n", len(resp.Msg.Tracks))
	for _, t := range resp.Msg.Tracks {
		fmt.Printf("  %s: %s - %s (%s)\n", t.ID, strings.Join(t.Artists, ", "), t.Title, formatDuration(t.DurationMs))
	}
}

func listUsers(ctx context.Context, client roomv1.RoomServiceClient) {
	resp, err := client.GetUsersList(ctx, connect.NewRequest(&roomv1.GetUsersListRequest{}))
	exitOnError(err)

	fmt.Printf("Users (%d):\n", len(resp.Msg.Users))
	for _, u := range resp.Msg.Users {
		var tags []string
		if u.IsCreator {
			tags = append(tags, "creator")
		}
		if u.IsDelegationOwner {
			tags = append(tags, "delegation owner")
		}
		if u.HasControlAndDelegationPermission {
			tags = append(tags, "control")
		}
		fmt.Printf("  %s [%s] (devices: %d, emitting: %s, joined: %s)\n",
			u.UserID, strings.Join(tags, ", "), u.ConnectedDevices, u.EmittingDeviceID, u.JoinedAt.Format(time.TimeOnly))
	}
}

func constraints(ctx context.Context, client roomv1.RoomServiceClient) {
	resp, err := client.GetRoomConstraintsDetails(ctx, connect.NewRequest(&roomv1.GetRoomConstraintsDetailsRequest{}))
	exitOnError(err)

	c := resp.Msg.Constraints
	if c == nil {
		fmt.Println("No constraints")
		return
	}
	if c.TimeConstraint != nil {
		fmt.Printf("Time window: %s - %s (open: %v)\n",
			c.TimeConstraint.StartsAt.Format(time.DateTime), c.TimeConstraint.EndsAt.Format(time.DateTime), c.TimeConstraintIsValid)
	}
	if c.PositionConstraint != nil {
		fmt.Printf("Position: %.5f,%.5f within %.0fm (inside: %v)\n",
			c.PositionConstraint.Place.Lat, c.PositionConstraint.Place.Lng, c.PositionConstraint.RadiusMeters, c.UserFitsPositionConstraint)
	}
	if c.TimeConstraint == nil && c.PositionConstraint == nil {
		fmt.Println("No constraints")
	}
}

func subscribe(ctx context.Context, client roomv1.RoomServiceClient) {
	stream, err := client.Subscribe(ctx, connect.NewRequest(&roomv1.SubscribeRequest{}))
	exitOnError(err)

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nUnsubscribing...")
		os.Exit(0)
	}()

	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if err := stream.Err(); err != nil {
		fmt.Printf("Stream error: %v\n", err)
	}
}

func printNotification(n *roomv1.Notification) {
	fmt.Printf("\n[Sequence: %d] ", n.SequenceNo)

	switch n.Type {
	case notification.TypeInitialState:
		fmt.Println("=== INITIAL STATE ===")
		printSnapshot(n.Snapshot)
	case notification.TypeRoomState:
		fmt.Println("=== ROOM STATE ===")
		printSnapshot(n.Snapshot)
	case notification.TypeForcedDisconnection:
		fmt.Println("=== DISCONNECTED ===")
		fmt.Printf("  Room ID: %s\n  Reason: %s\n", n.RoomID, n.Reason)
	case notification.TypeInvitation:
		fmt.Println("=== INVITATION ===")
		if n.Invitation != nil {
			fmt.Printf("  %s invited you to %s (%s)\n", n.Invitation.InviterUserID, n.Invitation.RoomName, n.Invitation.RoomID)
		}
	default:
		fmt.Printf("=== UNKNOWN EVENT (%v) ===\n", n.Type)
	}
}

func printSnapshot(s *roomv1.Snapshot) {
	if s == nil {
		return
	}
	state := "⏸  Paused"
	if s.Playing {
		state = "▶️  Playing"
	}
	fmt.Printf("\nRoom: %s (%s)\n", s.Name, s.RoomID)
	fmt.Printf("  State: %s  Mode: %s  Users: %d\n", state, s.PlayingMode, s.UsersLength)
	if s.CurrentTrack != nil {
		fmt.Printf("  Now: %s - %s [%s / %s]\n", s.CurrentTrack.ArtistName, s.CurrentTrack.Title,
			formatDuration(s.CurrentTrack.ElapsedMs), formatDuration(s.CurrentTrack.DurationMs))
	}
	for i, t := range s.Tracks {
		fmt.Printf("  %2d. [%d] %s - %s (%s)\n", i+1, t.Score, t.ArtistName, t.Title, t.ID)
	}
	if u := s.UserRelatedInformation; u != nil {
		fmt.Printf("  You: control=%v emitting=%v voted=%v\n", u.HasControlAndDelegationPermission, u.Emitting, u.TracksVotedFor)
	}
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// done reports a command that has no reply body.
func done(_ *connect.Response[roomv1.CommandResponse], err error) {
	exitOnError(err)
	fmt.Println("OK")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
