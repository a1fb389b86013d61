package relay

import (
	"log/slog"

	"github.com/remotix/remotix/internal/protocol"
)

// inbound pairs a parsed message with the client that sent it.
type inbound struct {
	client *Client
	msg    *protocol.Message
}

// StatusReport is the hub state snapshot served by /status.
type StatusReport struct {
	Endpoints int        `json:"endpoints"`
	Rooms     []RoomInfo `json:"rooms"`
}

// Hub is the single owner of all shared signaling state. Every mutation of
// the registry and the endpoint table happens on the Run goroutine, so a
// read-then-write of a room's member set is atomic by construction and two
// simultaneous joiners can never both observe an empty prior-member set.
type Hub struct {
	registry  *Registry
	endpoints map[string]*Client // endpoint id -> client

	// Register and Unregister carry connection lifecycle events from the
	// websocket handler and the read pumps.
	Register   chan *Client
	Unregister chan *Client

	// Inbound carries every parsed client message.
	Inbound chan *inbound

	// status carries snapshot requests from the HTTP surface.
	status chan chan StatusReport
}

func NewHub() *Hub {
	return &Hub{
		registry:   NewRegistry(),
		endpoints:  make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *inbound),
		status:     make(chan chan StatusReport),
	}
}

// Status returns a snapshot of hub state, serialized through the Run loop.
func (h *Hub) Status() StatusReport {
	reply := make(chan StatusReport, 1)
	h.status <- reply
	return <-reply
}

// Run is the hub's main processing loop. It must run in exactly one
// goroutine for the lifetime of the server.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.handleRegister(client)

		case client := <-h.Unregister:
			h.handleUnregister(client)

		case in := <-h.Inbound:
			h.dispatch(in.client, in.msg)

		case reply := <-h.status:
			reply <- StatusReport{
				Endpoints: len(h.endpoints),
				Rooms:     h.registry.Snapshot(),
			}
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.endpoints[client.ID] = client
	slog.Info("endpoint connected", "endpoint", client.ID)

	if msg, err := protocol.NewMessage(protocol.TypeWelcome, protocol.WelcomePayload{EndpointID: client.ID}); err == nil {
		client.deliver(msg)
	}
}

// handleUnregister tears down everything the endpoint owned: its room
// membership and its send channel. The remaining room members get a
// peer-left so their negotiation sessions close instead of stalling.
func (h *Hub) handleUnregister(client *Client) {
	if _, ok := h.endpoints[client.ID]; !ok {
		return
	}
	delete(h.endpoints, client.ID)

	remaining := h.registry.Leave(client)
	h.notifyPeerLeft(client, remaining)

	close(client.Send)
	slog.Info("endpoint disconnected", "endpoint", client.ID)
}

func (h *Hub) notifyPeerLeft(client *Client, remaining []*Client) {
	if len(remaining) == 0 {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypePeerLeft, protocol.PeerPayload{PeerID: client.ID, Role: client.Role})
	if err != nil {
		return
	}
	for _, member := range remaining {
		member.deliver(msg)
	}
}

func (h *Hub) dispatch(client *Client, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeCheckRoom:
		h.handleCheckRoom(client, msg)
	case protocol.TypeJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.TypeSignal:
		h.handleSignal(client, msg)
	case protocol.TypeInput:
		h.handleInput(client, msg)
	default:
		slog.Debug("unknown message type", "endpoint", client.ID, "type", msg.Type)
	}
}

// handleCheckRoom answers the asking client only. An absent room is a valid
// state, reported as exists=false, never as an error.
func (h *Hub) handleCheckRoom(client *Client, msg *protocol.Message) {
	reply, err := protocol.NewMessage(protocol.TypeRoomStatus, protocol.RoomStatusPayload{
		RoomID: msg.RoomID,
		Exists: h.registry.Exists(msg.RoomID),
	})
	if err != nil {
		return
	}
	client.deliver(reply)
}

func (h *Hub) handleJoinRoom(client *Client, msg *protocol.Message) {
	role := msg.Role
	if role == "" {
		role = protocol.RoleClient
	}

	// Joining a different room moves the endpoint: the old room's members
	// get a peer-left once the switch goes through.
	var oldPeers []*Client
	switching := client.RoomID != "" && client.RoomID != msg.RoomID
	if switching {
		oldPeers = h.registry.Peers(client)
	}

	prior, err := h.registry.Join(client, msg.RoomID, role)
	if err != nil {
		slog.Warn("join refused", "endpoint", client.ID, "room", msg.RoomID, "err", err)
		h.sendError(client, err.Error())
		return
	}
	if switching {
		h.notifyPeerLeft(client, oldPeers)
	}
	slog.Info("endpoint joined room", "endpoint", client.ID, "room", msg.RoomID, "role", role)

	// Existing members learn about the new peer; the joiner gets a
	// confirmation. Notification order does not matter: the joiner never
	// hears about itself.
	joined, err := protocol.NewMessage(protocol.TypePeerJoined, protocol.PeerPayload{PeerID: client.ID, Role: role})
	if err != nil {
		return
	}
	for _, member := range prior {
		member.deliver(joined)
	}

	if success, err := protocol.NewMessage(protocol.TypeJoinSuccess, protocol.PeerPayload{PeerID: client.ID, Role: role}); err == nil {
		success.RoomID = msg.RoomID
		client.deliver(success)
	}
}

// handleSignal forwards the opaque negotiation payload to the target
// endpoint and nobody else. A disconnected target means the message is
// silently dropped: no queuing, no retry.
func (h *Hub) handleSignal(client *Client, msg *protocol.Message) {
	var env protocol.SignalEnvelope
	if err := msg.DecodePayload(&env); err != nil {
		slog.Warn("malformed signal envelope", "endpoint", client.ID, "err", err)
		return
	}

	target, ok := h.endpoints[env.To]
	if !ok {
		slog.Debug("signal target not connected", "from", client.ID, "to", env.To)
		return
	}

	// Forward {from, data} verbatim; the sender's claimed from field is
	// replaced with its actual endpoint id.
	env.From = client.ID
	forward, err := protocol.NewMessage(protocol.TypeSignal, env)
	if err != nil {
		return
	}
	target.deliver(forward)
}

// handleInput relays an input event to the other members of the sender's
// room, uninterpreted. This is the fallback path used before the peer data
// channel opens; authorization happens on the host, never here.
func (h *Hub) handleInput(client *Client, msg *protocol.Message) {
	peers := h.registry.Peers(client)
	if len(peers) == 0 {
		return
	}
	for _, peer := range peers {
		peer.deliver(msg)
	}
}

func (h *Hub) sendError(client *Client, text string) {
	if msg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorPayload{Error: text}); err == nil {
		client.deliver(msg)
	}
}
