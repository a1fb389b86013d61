package session

import (
	"context"
	"encoding/json"
	"sync/atomic"

	pion "github.com/pion/webrtc/v4"

	"github.com/remotix/remotix/internal/config"
)

const controlChannelLabel = "control"

// Handlers receives transport callbacks. All fields are optional.
type Handlers struct {
	// OnConnected fires when the underlying channel reaches its connected
	// state.
	OnConnected func()
	// OnClosed fires on transport failure or close.
	OnClosed func()
	// OnControl receives raw control channel frames.
	OnControl func(data []byte)
	// OnTrack fires when remote media arrives (client side).
	OnTrack func(kind string)
}

// Transport is the opaque negotiable channel underneath a Session. The
// description payloads it produces and consumes are exactly the signal
// envelope data the relay ferries: the state machine never looks inside
// them, which keeps it testable without ICE.
type Transport interface {
	// CreateOffer produces the complete local description, after candidate
	// gathering finishes (trickle-less: one payload carries everything).
	CreateOffer(ctx context.Context) ([]byte, error)
	// CreateAnswer applies the remote offer and produces the complete
	// local answer.
	CreateAnswer(ctx context.Context, remote []byte) ([]byte, error)
	// ApplyAnswer applies the remote answer on the offerer side.
	ApplyAnswer(remote []byte) error
	// SendControl sends one frame over the control channel.
	SendControl(data []byte) error
	Close() error
}

// TransportFactory builds the Transport for a new session. The role is fixed
// for the session's lifetime.
type TransportFactory func(role Role, h Handlers) (Transport, error)

// pionTransport adapts a pion PeerConnection to the Transport interface.
type pionTransport struct {
	pc          *pion.PeerConnection
	control     *pion.DataChannel
	controlOpen atomic.Bool
	handlers    Handlers
}

// NewPionFactory returns a TransportFactory producing real WebRTC
// transports. Tracks (screen capture on the host) are attached before the
// offer is created; hook registers their codecs.
func NewPionFactory(cfg *config.Config, tracks []pion.TrackLocal, hook EngineHook) TransportFactory {
	return func(role Role, h Handlers) (Transport, error) {
		pc, err := NewPeerConnection(cfg, hook)
		if err != nil {
			return nil, err
		}

		t := &pionTransport{pc: pc, handlers: h}

		pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
			switch state {
			case pion.PeerConnectionStateConnected:
				if h.OnConnected != nil {
					h.OnConnected()
				}
			case pion.PeerConnectionStateFailed,
				pion.PeerConnectionStateClosed,
				pion.PeerConnectionStateDisconnected:
				if h.OnClosed != nil {
					h.OnClosed()
				}
			}
		})

		pc.OnTrack(func(remote *pion.TrackRemote, receiver *pion.RTPReceiver) {
			if h.OnTrack != nil {
				h.OnTrack(remote.Codec().MimeType)
			}
		})

		for _, track := range tracks {
			if _, err := pc.AddTrack(track); err != nil {
				pc.Close()
				return nil, NewError("add track", err)
			}
		}

		if role == Offerer {
			ordered := true
			dc, err := pc.CreateDataChannel(controlChannelLabel, &pion.DataChannelInit{Ordered: &ordered})
			if err != nil {
				pc.Close()
				return nil, NewError("create control channel", err)
			}
			t.bindControl(dc)
		} else {
			pc.OnDataChannel(func(dc *pion.DataChannel) {
				if dc.Label() == controlChannelLabel {
					t.bindControl(dc)
				}
			})
		}

		return t, nil
	}
}

func (t *pionTransport) bindControl(dc *pion.DataChannel) {
	t.control = dc
	dc.OnOpen(func() { t.controlOpen.Store(true) })
	dc.OnClose(func() { t.controlOpen.Store(false) })
	dc.OnMessage(func(msg pion.DataChannelMessage) {
		if t.handlers.OnControl != nil {
			t.handlers.OnControl(msg.Data)
		}
	})
}

func (t *pionTransport) CreateOffer(ctx context.Context) ([]byte, error) {
	offer, err := t.pc.CreateOffer(nil)
	if err != nil {
		return nil, NewError("create offer", err)
	}

	gathered := pion.GatheringCompletePromise(t.pc)
	if err := t.pc.SetLocalDescription(offer); err != nil {
		return nil, NewError("set local description", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return json.Marshal(t.pc.LocalDescription())
}

func (t *pionTransport) CreateAnswer(ctx context.Context, remote []byte) ([]byte, error) {
	var offer pion.SessionDescription
	if err := json.Unmarshal(remote, &offer); err != nil {
		return nil, NewError("parse remote description", err)
	}
	if err := t.pc.SetRemoteDescription(offer); err != nil {
		return nil, NewError("set remote description", err)
	}

	answer, err := t.pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewError("create answer", err)
	}

	gathered := pion.GatheringCompletePromise(t.pc)
	if err := t.pc.SetLocalDescription(answer); err != nil {
		return nil, NewError("set local description", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return json.Marshal(t.pc.LocalDescription())
}

func (t *pionTransport) ApplyAnswer(remote []byte) error {
	var answer pion.SessionDescription
	if err := json.Unmarshal(remote, &answer); err != nil {
		return NewError("parse remote description", err)
	}
	if err := t.pc.SetRemoteDescription(answer); err != nil {
		return NewError("set remote description", err)
	}
	return nil
}

func (t *pionTransport) SendControl(data []byte) error {
	if t.control == nil || !t.controlOpen.Load() {
		return ErrChannelNotOpen
	}
	return t.control.Send(data)
}

func (t *pionTransport) Close() error {
	return t.pc.Close()
}
