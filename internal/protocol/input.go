package protocol

import (
	"errors"
	"fmt"
	"math"
)

// EventKind discriminates the closed set of remote input events.
type EventKind string

const (
	EventMouseMove         EventKind = "mouse-move"
	EventMouseMoveAbsolute EventKind = "mouse-move-absolute"
	EventMouseClick        EventKind = "mouse-click"
	EventKeyDown           EventKind = "key-down"
	EventKeyUp             EventKind = "key-up"
)

var ErrInvalidEvent = errors.New("invalid input event")

// InputEvent is one remote input action sent client -> host. Mouse movement
// uses pointer-lock relative deltas; key events carry W3C KeyboardEvent.code
// strings. Events are transient and never queued: a non-conforming event is
// dropped by the consumer.
//
// JSON tags cover the websocket fallback path, msgpack tags the data channel
// path.
type InputEvent struct {
	Kind   EventKind `json:"kind" msgpack:"kind"`
	RoomID string    `json:"room_id,omitempty" msgpack:"roomId,omitempty"`

	// mouse-move
	DeltaX float64 `json:"dx,omitempty" msgpack:"dx,omitempty"`
	DeltaY float64 `json:"dy,omitempty" msgpack:"dy,omitempty"`

	// mouse-move-absolute
	X float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y float64 `json:"y,omitempty" msgpack:"y,omitempty"`

	// mouse-click
	Button int `json:"button,omitempty" msgpack:"button,omitempty"`

	// key-down / key-up
	Code string `json:"code,omitempty" msgpack:"code,omitempty"`
}

// Validate checks the structural invariants of the event: a known kind and
// finite numeric fields. Key events must carry a code; unmapped codes are a
// pipeline concern, not a validation failure.
func (e *InputEvent) Validate() error {
	switch e.Kind {
	case EventMouseMove:
		if !finite(e.DeltaX) || !finite(e.DeltaY) {
			return fmt.Errorf("%w: non-finite mouse delta", ErrInvalidEvent)
		}
	case EventMouseMoveAbsolute:
		if !finite(e.X) || !finite(e.Y) {
			return fmt.Errorf("%w: non-finite coordinates", ErrInvalidEvent)
		}
	case EventMouseClick:
		// Button discrimination is out of scope; any finite value passes.
	case EventKeyDown, EventKeyUp:
		if e.Code == "" {
			return fmt.Errorf("%w: missing key code", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
