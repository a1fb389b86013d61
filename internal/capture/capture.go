// Package capture produces the host's screen tracks. The negotiation layer
// only ever sees webrtc.TrackLocal values; everything about how frames are
// grabbed and encoded stays behind this boundary.
package capture

import (
	"errors"

	pion "github.com/pion/webrtc/v4"
)

// ErrUnavailable means this build has no screen capture backend. The host
// can still run a control-only session.
var ErrUnavailable = errors.New("screen capture unavailable on this platform")

// Capturer is a live screen capture: its tracks are attached to the peer
// connection before the offer is created, and Close releases the grab.
type Capturer interface {
	Tracks() []pion.TrackLocal
	// EngineHook registers the capture codecs on a media engine; the peer
	// connection carrying the tracks must be built with it.
	EngineHook() func(*pion.MediaEngine) error
	Close() error
}

// Start begins capturing the primary screen.
func Start() (Capturer, error) {
	return newCapturer()
}
