package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/remotix/remotix/internal/capture"
	"github.com/remotix/remotix/internal/input"
	"github.com/remotix/remotix/internal/protocol"
	"github.com/remotix/remotix/internal/session"
	"github.com/remotix/remotix/internal/signaling"
)

// Host is the sharing side of a session: it owns the screen capture, offers
// the peer connection to each joining client, and runs every received input
// event through the authorization gate and the injection pipeline.
type Host struct {
	client   *signaling.Client
	handler  *signaling.Handler
	sessions *session.Manager
	pipeline *input.Pipeline
	capturer capture.Capturer // nil when capture is unavailable

	roomID  string
	localID string

	notices chan Notice
}

// HostOptions carries the collaborators the command layer assembles.
type HostOptions struct {
	Client   *signaling.Client
	Handler  *signaling.Handler
	LocalID  string
	RoomID   string
	Factory  session.TransportFactory
	Injector input.Injector
	Capturer capture.Capturer
}

func NewHost(opts HostOptions) *Host {
	h := &Host{
		client:   opts.Client,
		handler:  opts.Handler,
		pipeline: input.NewPipeline(opts.Injector),
		capturer: opts.Capturer,
		roomID:   opts.RoomID,
		localID:  opts.LocalID,
		notices:  make(chan Notice, 32),
	}

	h.sessions = session.NewManager(opts.LocalID, relaySender{client: opts.Client}, opts.Factory)
	h.sessions.OnControl = h.handleControl
	h.sessions.OnState = func(remoteID string, st session.State) {
		switch st {
		case session.StateConnected:
			h.notify("info", fmt.Sprintf("peer %s connected", shortID(remoteID)))
		case session.StateClosed:
			h.notify("warn", fmt.Sprintf("peer %s session closed", shortID(remoteID)))
		}
	}
	return h
}

// Authorize flips the remote control gate. Only the host UI calls this.
func (h *Host) Authorize(allow bool) {
	h.pipeline.Authorize(allow)
	if allow {
		h.notify("info", "remote control enabled")
	} else {
		h.notify("info", "remote control disabled")
	}
}

func (h *Host) Authorized() bool {
	return h.pipeline.Authorized()
}

// Notices returns the stream of status updates for the terminal panel.
func (h *Host) Notices() <-chan Notice {
	return h.notices
}

// Run is the host event loop. It returns when the context is cancelled or
// the relay connection drops.
func (h *Host) Run(ctx context.Context) error {
	defer h.teardown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case peer := <-h.handler.PeerJoined:
			h.notify("info", fmt.Sprintf("peer %s joined", shortID(peer.PeerID)))
			if _, err := h.sessions.Offer(ctx, peer.PeerID); err != nil {
				slog.Warn("offer failed", "peer", peer.PeerID, "err", err)
			}

		case peer := <-h.handler.PeerLeft:
			h.notify("warn", fmt.Sprintf("peer %s left", shortID(peer.PeerID)))
			h.sessions.ClosePeer(peer.PeerID)

		case env := <-h.handler.Signal:
			h.sessions.HandleSignal(ctx, env)

		case ev := <-h.handler.Input:
			// Websocket fallback path, used before the control channel opens.
			h.pipeline.Handle(ev)

		case errText := <-h.handler.Error:
			h.notify("error", errText)

		case <-h.handler.Disconnected:
			h.notify("error", "lost connection to signaling relay")
			return session.ErrSignalingError
		}
	}
}

// handleControl decodes a data channel frame and feeds the pipeline.
func (h *Host) handleControl(remoteID string, data []byte) {
	msg, err := protocol.DecodeControl(data)
	if err != nil {
		slog.Warn("malformed control frame", "peer", remoteID, "err", err)
		return
	}

	switch msg.Type {
	case protocol.ControlTypeInput:
		var ev protocol.InputEvent
		if err := msg.DecodePayload(&ev); err != nil {
			slog.Warn("malformed input payload", "peer", remoteID, "err", err)
			return
		}
		h.pipeline.Handle(&ev)

	case protocol.ControlTypeBye:
		h.sessions.ClosePeer(remoteID)
	}
}

// teardown releases everything the host holds: capture first so the screen
// grab ends immediately, then the sessions, then the relay connection
// (which also removes us from the room).
func (h *Host) teardown() {
	if h.capturer != nil {
		h.capturer.Close()
	}
	h.sessions.CloseAll()
	h.client.Close()
}

func (h *Host) notify(level, text string) {
	select {
	case h.notices <- Notice{Level: level, Text: text}:
	default:
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
