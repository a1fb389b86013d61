package protocol

import "encoding/json"

// Role is declared by an endpoint when it joins a room. The relay enforces
// at most one host per room.
type Role string

const (
	RoleHost   Role = "host"
	RoleClient Role = "client"
)

// Message type constants for websocket traffic between endpoints and the relay.
const (
	// endpoint -> relay
	TypeCheckRoom = "check-room"
	TypeJoinRoom  = "join-room"
	TypeSignal    = "signal"
	TypeInput     = "input"

	// relay -> endpoint
	TypeWelcome     = "welcome"
	TypeRoomStatus  = "room-status"
	TypeJoinSuccess = "join-success"
	TypePeerJoined  = "peer-joined"
	TypePeerLeft    = "peer-left"
	TypeError       = "error"
)

// Message is the envelope for all websocket messages in both directions.
type Message struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	Role    Role            `json:"role,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds a Message with the payload marshalled in place.
func NewMessage(msgType string, payload any) (*Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: msgType, Payload: b}, nil
}

// DecodePayload decodes the message payload into the provided struct.
func (m *Message) DecodePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// WelcomePayload carries the relay-assigned endpoint id, sent once on connect.
type WelcomePayload struct {
	EndpointID string `json:"endpoint_id"`
}

// RoomStatusPayload answers a check-room request.
type RoomStatusPayload struct {
	RoomID string `json:"room_id"`
	Exists bool   `json:"exists"`
}

// PeerPayload identifies the peer a peer-joined or peer-left message refers to.
type PeerPayload struct {
	PeerID string `json:"peer_id"`
	Role   Role   `json:"role,omitempty"`
}

// ErrorPayload carries error text from the relay.
type ErrorPayload struct {
	Error string `json:"error"`
}

// SignalEnvelope is the negotiation payload passthrough. Data is opaque to
// the relay; its structure is owned entirely by the negotiation driver.
type SignalEnvelope struct {
	To   string          `json:"to"`
	From string          `json:"from"`
	Data json.RawMessage `json:"data"`
}
