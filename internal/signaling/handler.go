package signaling

import (
	"log/slog"

	"github.com/remotix/remotix/internal/protocol"
)

// Handler routes incoming relay messages onto typed channels. One Handler
// per Client; Start runs until the transport disconnects, then Disconnected
// is closed.
type Handler struct {
	client *Client

	Welcome      chan string
	RoomStatus   chan *protocol.RoomStatusPayload
	JoinSuccess  chan *protocol.PeerPayload
	PeerJoined   chan *protocol.PeerPayload
	PeerLeft     chan *protocol.PeerPayload
	Signal       chan *protocol.SignalEnvelope
	Input        chan *protocol.InputEvent
	Error        chan string
	Disconnected chan struct{}
}

func NewHandler(client *Client) *Handler {
	return &Handler{
		client:       client,
		Welcome:      make(chan string, 1),
		RoomStatus:   make(chan *protocol.RoomStatusPayload, 1),
		JoinSuccess:  make(chan *protocol.PeerPayload, 1),
		PeerJoined:   make(chan *protocol.PeerPayload, 4),
		PeerLeft:     make(chan *protocol.PeerPayload, 4),
		Signal:       make(chan *protocol.SignalEnvelope, 32),
		Input:        make(chan *protocol.InputEvent, 256),
		Error:        make(chan string, 4),
		Disconnected: make(chan struct{}),
	}
}

// Start consumes the client's incoming stream and fans messages out by type.
// Run it in its own goroutine.
func (h *Handler) Start() {
	defer close(h.Disconnected)

	for msg := range h.client.Incoming() {
		switch msg.Type {
		case protocol.TypeWelcome:
			var p protocol.WelcomePayload
			if msg.DecodePayload(&p) == nil {
				h.Welcome <- p.EndpointID
			}

		case protocol.TypeRoomStatus:
			var p protocol.RoomStatusPayload
			if msg.DecodePayload(&p) == nil {
				h.RoomStatus <- &p
			}

		case protocol.TypeJoinSuccess:
			var p protocol.PeerPayload
			if msg.DecodePayload(&p) == nil {
				h.JoinSuccess <- &p
			}

		case protocol.TypePeerJoined:
			var p protocol.PeerPayload
			if msg.DecodePayload(&p) == nil {
				h.PeerJoined <- &p
			}

		case protocol.TypePeerLeft:
			var p protocol.PeerPayload
			if msg.DecodePayload(&p) == nil {
				h.PeerLeft <- &p
			}

		case protocol.TypeSignal:
			var env protocol.SignalEnvelope
			if err := msg.DecodePayload(&env); err != nil {
				slog.Warn("malformed signal payload", "err", err)
				continue
			}
			h.Signal <- &env

		case protocol.TypeInput:
			var ev protocol.InputEvent
			if err := msg.DecodePayload(&ev); err != nil {
				slog.Warn("malformed input payload", "err", err)
				continue
			}
			select {
			case h.Input <- &ev:
			default:
				// Input is best effort; dropping one event beats
				// stalling the signaling stream.
			}

		case protocol.TypeError:
			var p protocol.ErrorPayload
			if msg.DecodePayload(&p) == nil {
				h.Error <- p.Error
			}

		default:
			slog.Debug("unhandled message type", "type", msg.Type)
		}
	}
}
