package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/BioHazard786/relayroom/internal/client"
	"github.com/BioHazard786/relayroom/internal/names"
	"github.com/BioHazard786/relayroom/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join [room]",
	Aliases: []string{"j"},
	Short:   "Join a room, creating a random one when no name is given",
	Long: `Join a two-peer room and relay stdin lines to the other peer.

Examples:
  relayroom join
  relayroom join sleepy-otter-waffle
  relayroom join lobby --server wss://relay.example`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig(cmd)
		if err != nil {
			return err
		}

		name, generated := "", false
		if len(args) == 1 {
			name = args[0]
		} else {
			name, generated = names.Generate(), true
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return joinRoom(ctx, cfg.Server, name, generated, cfg.DialTimeout)
	},
}

func joinRoom(ctx context.Context, server, name string, generated bool, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stopSpinner := ui.RunConnectionSpinner("Connecting to " + server)
	c, err := client.Dial(dialCtx, server, name, nil)
	stopSpinner()
	if err != nil {
		if errors.Is(err, client.ErrRoomFull) {
			return fmt.Errorf("room %q already has two peers", name)
		}
		return err
	}
	defer c.Close()

	ui.PrintSuccess("Connected to " + server)
	fmt.Println(ui.NewRoomInfo(name, generated).View())
	ui.PrintInfo("Lines you type are sent once a peer has joined. Ctrl+C to leave.")

	go pumpStdin(os.Stdin, c)

	for {
		select {
		case <-ctx.Done():
			ui.PrintInfo("Leaving room")
			return nil

		case msg, ok := <-c.Incoming():
			if !ok {
				return sessionEnded(c.CloseStatus())
			}
			fmt.Println(ui.PeerLine(string(msg)))
		}
	}
}

// pumpStdin sends each stdin line to the peer and closes the connection at
// EOF.
func pumpStdin(r io.Reader, c *client.Client) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := c.Send([]byte(scanner.Text())); err != nil {
			slog.Debug("send failed", "error", err)
			return
		}
	}
	c.Close()
}

func sessionEnded(status error) error {
	var ce *websocket.CloseError
	switch {
	case status == nil:
		return nil
	case errors.As(status, &ce):
		switch {
		case ce.Text != "":
			ui.PrintWarning("Session ended: " + ce.Text)
		case ce.Code != websocket.CloseNormalClosure:
			ui.PrintWarning(fmt.Sprintf("Session ended (code %d)", ce.Code))
		}
		return nil
	default:
		return status
	}
}
