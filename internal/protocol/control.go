package protocol

import "github.com/vmihailenco/msgpack/v5"

// Control message types carried over the WebRTC data channel once a session
// is connected. The data channel is the preferred input path; the websocket
// relay only carries input before the channel opens.
const (
	ControlTypeInput = "input"
	ControlTypeBye   = "bye"
)

// ControlMessage is the envelope for all data channel traffic.
type ControlMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload,omitempty"`
}

// NewControlMessage builds a ControlMessage with the payload marshalled in place.
func NewControlMessage(msgType string, payload any) (*ControlMessage, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &ControlMessage{Type: msgType, Payload: b}, nil
}

// DecodePayload decodes the message payload into the provided struct.
func (m *ControlMessage) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// EncodeControl marshals a control message for the wire.
func EncodeControl(m *ControlMessage) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeControl parses a raw data channel frame.
func DecodeControl(data []byte) (*ControlMessage, error) {
	var m ControlMessage
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
