// Package main provides the admin CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/osa030/19room/internal/api/roomv1"
)

var (
	app    = kingpin.New("19room-admincli", "19room admin client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	// list command
	listCmd = app.Command("list-rooms", "List all rooms").Alias("list")

	// get command
	getCmd    = app.Command("get-room", "Show one room").Alias("get")
	getRoomID = getCmd.Arg("room-id", "Room ID").Required().String()

	// terminate command
	terminateCmd    = app.Command("terminate", "Terminate a room")
	terminateRoomID = terminateCmd.Arg("room-id", "Room ID").Required().String()
	terminateReason = terminateCmd.Flag("reason", "Reason sent to members").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *token == "" {
		fmt.Println("Error: admin token is required (use --token or ADMIN_TOKEN env)")
		os.Exit(1)
	}

	client := roomv1.NewAdminServiceClient(
		http.DefaultClient,
		*server,
		roomv1.WithAdminToken(*token),
	)

	ctx := context.Background()

	switch command {
	case listCmd.FullCommand():
		listRooms(ctx, client)
	case getCmd.FullCommand():
		getRoom(ctx, client, *getRoomID)
	case terminateCmd.FullCommand():
		terminate(ctx, client, *terminateRoomID, *terminateReason)
	}
}

func listRooms(ctx context.Context, client roomv1.AdminServiceClient) {
	resp, err := client.ListRooms(ctx, connect.NewRequest(&roomv1.ListRoomsRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rooms (%d):\n", len(resp.Msg.Rooms))
	for _, r := range resp.Msg.Rooms {
		fmt.Printf("  %s: %s [%s] (members: %d, queue: %d, creator: %s)\n",
			r.RoomID, r.Name, formatPhase(r.Phase, r.Playing), r.MemberCount, r.QueueLength, r.CreatorUserID)
	}
}

func getRoom(ctx context.Context, client roomv1.AdminServiceClient, roomID string) {
	resp, err := client.GetRoom(ctx, connect.NewRequest(&roomv1.GetRoomRequest{RoomID: roomID}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	r := resp.Msg.Room
	fmt.Println("\n=== ROOM ===")
	fmt.Printf("Room ID: %s\n", r.RoomID)
	fmt.Printf("Name: %s\n", r.Name)
	fmt.Printf("Creator: %s\n", r.CreatorUserID)
	fmt.Printf("State: %s\n", formatPhase(r.Phase, r.Playing))
	fmt.Printf("Members: %d\n", r.MemberCount)
	fmt.Printf("Queue Size: %d\n", r.QueueLength)
	fmt.Printf("Created: %s\n", r.CreatedAt.Format(time.DateTime))
	fmt.Printf("Updated: %s\n", r.UpdatedAt.Format(time.DateTime))
	fmt.Println()
}

func terminate(ctx context.Context, client roomv1.AdminServiceClient, roomID, reason string) {
	resp, err := client.TerminateRoom(ctx, connect.NewRequest(&roomv1.TerminateRoomRequest{
		RoomID: roomID,
		Reason: reason,
	}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if resp.Msg.Success {
		fmt.Println("Room terminated")
	} else {
		fmt.Printf("Failed: %s\n", resp.Msg.Message)
	}
}

func formatPhase(phase string, playing bool) string {
	switch {
	case phase == "active" && playing:
		return "▶️  Playing"
	case phase == "active":
		return "⏸  Paused"
	case phase == "terminating":
		return "🔚 Terminating"
	case phase == "terminated":
		return "⏹  Terminated"
	default:
		return "❓ " + phase
	}
}
