package cmd

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/remotix/remotix/internal/capture"
	"github.com/remotix/remotix/internal/config"
	"github.com/remotix/remotix/internal/control"
	"github.com/remotix/remotix/internal/input"
	"github.com/remotix/remotix/internal/protocol"
	"github.com/remotix/remotix/internal/session"
	"github.com/remotix/remotix/internal/ui"
)

var hostOpts config.Options

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Share this machine's screen in a new room",
	Long:  `Creates a room on the relay and waits for a peer to join. Each joiner gets a direct WebRTC connection carrying the screen stream; their mouse and keyboard input is ignored until you allow remote control from the panel.`,
	RunE:  runHost,
}

func init() {
	rootCmd.AddCommand(hostCmd)
	connectionFlags(hostCmd, &hostOpts)
}

func runHost(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(hostOpts)
	if err != nil {
		return err
	}

	ctx, err := NewConnectionContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Close()

	roomID := strings.ReplaceAll(uuid.NewString(), "-", "")

	joinMsg, err := protocol.NewMessage(protocol.TypeJoinRoom, nil)
	if err != nil {
		return err
	}
	joinMsg.RoomID = roomID
	joinMsg.Role = protocol.RoleHost
	ctx.Client.Send(joinMsg)

	select {
	case <-ctx.Handler.JoinSuccess:
	case errText := <-ctx.Handler.Error:
		return errors.New(errText)
	case <-ctx.Handler.Disconnected:
		return session.ErrSignalingError
	}

	ui.RenderRoomInfo(roomID)

	capturer, err := capture.Start()
	if err != nil {
		ui.PrintWarning("screen capture unavailable, sharing control only: " + err.Error())
		capturer = nil
	}

	injector, err := input.NewSystemInjector()
	if err != nil {
		ui.PrintWarning("input injection unavailable, remote control disabled: " + err.Error())
		injector = nil
	}

	factory := newHostFactory(cfg, capturer)

	host := control.NewHost(control.HostOptions{
		Client:   ctx.Client,
		Handler:  ctx.Handler,
		LocalID:  ctx.LocalID,
		RoomID:   roomID,
		Factory:  factory,
		Injector: injector,
		Capturer: capturer,
	})

	runCtx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	panel := ui.NewHostPanel(host, roomID)
	p := tea.NewProgram(panel)

	go func() {
		err := host.Run(runCtx)
		p.Send(ui.StoppedMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return err
	}
	cancel()
	return nil
}

func newHostFactory(cfg *config.Config, capturer capture.Capturer) session.TransportFactory {
	if capturer == nil {
		return session.NewPionFactory(cfg, nil, nil)
	}
	return session.NewPionFactory(cfg, capturer.Tracks(), capturer.EngineHook())
}
