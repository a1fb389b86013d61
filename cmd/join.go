package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/control"
	"github.com/remotix/remotix/internal/protocol"
	"github.com/remotix/remotix/internal/session"
	"github.com/remotix/remotix/internal/ui"
)

var joinOpts config.Options

var joinCmd = &cobra.Command{
	Use:   "join <room-id>",
	Short: "Join a room and view the host's screen",
	Long:  `Connects to an existing room by id. The relay confirms the room exists before joining; once the WebRTC session with the host comes up, the host's screen streams directly peer-to-peer and your input is forwarded (it takes effect only after the host allows remote control).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)
	connectionFlags(joinCmd, &joinOpts)
}

func runJoin(cmd *cobra.Command, args []string) error {
	roomID := args[0]

	cfg, err := LoadConfig(joinOpts)
	if err != nil {
		return err
	}

	ctx, err := NewConnectionContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Close()

	// Ask before joining. Joining a room nobody hosts would just hang.
	checkMsg, err := protocol.NewMessage(protocol.TypeCheckRoom, nil)
	if err != nil {
		return err
	}
	checkMsg.RoomID = roomID
	ctx.Client.Send(checkMsg)

	select {
	case status := <-ctx.Handler.RoomStatus:
		if !status.Exists {
			return fmt.Errorf("room %s does not exist", roomID)
		}
	case <-ctx.Handler.Disconnected:
		return session.ErrSignalingError
	}

	joinMsg, err := protocol.NewMessage(protocol.TypeJoinRoom, nil)
	if err != nil {
		return err
	}
	joinMsg.RoomID = roomID
	joinMsg.Role = protocol.RoleClient
	ctx.Client.Send(joinMsg)

	select {
	case <-ctx.Handler.JoinSuccess:
	case errText := <-ctx.Handler.Error:
		return errors.New(errText)
	case <-ctx.Handler.Disconnected:
		return session.ErrSignalingError
	}

	client := control.NewClient(control.ClientOptions{
		Client:  ctx.Client,
		Handler: ctx.Handler,
		LocalID: ctx.LocalID,
		RoomID:  roomID,
		Factory: session.NewPionFactory(cfg, nil, nil),
	})

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	panel := ui.NewJoinPanel(client, roomID)
	p := tea.NewProgram(panel)

	go func() {
		err := client.Run(runCtx)
		p.Send(ui.StoppedMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	cancel()
	return nil
}
