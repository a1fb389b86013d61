package control

import (
	"context"
	"fmt"

	"github.com/remotix/remotix/internal/protocol"
	"github.com/remotix/remotix/internal/session"
	"github.com/remotix/remotix/internal/signaling"
)

// Client is the controlling side of a session: it answers the host's offer,
// receives the screen track, and sends input events toward the host: over
// the data channel once connected, over the websocket relay before.
type Client struct {
	client   *signaling.Client
	handler  *signaling.Handler
	sessions *session.Manager

	roomID  string
	localID string

	notices chan Notice
}

type ClientOptions struct {
	Client  *signaling.Client
	Handler *signaling.Handler
	LocalID string
	RoomID  string
	Factory session.TransportFactory
}

func NewClient(opts ClientOptions) *Client {
	c := &Client{
		client:  opts.Client,
		handler: opts.Handler,
		roomID:  opts.RoomID,
		localID: opts.LocalID,
		notices: make(chan Notice, 32),
	}

	c.sessions = session.NewManager(opts.LocalID, relaySender{client: opts.Client}, opts.Factory)
	c.sessions.OnState = func(remoteID string, st session.State) {
		switch st {
		case session.StateConnected:
			c.notify("info", "connected to host")
		case session.StateClosed:
			c.notify("warn", "host session closed")
		}
	}
	c.sessions.OnTrack = func(remoteID, kind string) {
		c.notify("info", fmt.Sprintf("receiving media (%s)", kind))
	}
	return c
}

func (c *Client) Notices() <-chan Notice {
	return c.notices
}

// Connected reports whether the session to the host is up.
func (c *Client) Connected() bool {
	return c.sessions.HasConnected()
}

// Run is the client event loop. The first inbound signal envelope from the
// host implicitly creates the answerer session.
func (c *Client) Run(ctx context.Context) error {
	defer c.teardown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case env := <-c.handler.Signal:
			c.sessions.HandleSignal(ctx, env)

		case <-c.handler.PeerJoined:
			// Other clients joining the room are none of our business,
			// but the channel must be drained or the handler's fan-out
			// stalls and takes signal delivery down with it.

		case peer := <-c.handler.PeerLeft:
			c.notify("warn", "host left the room")
			c.sessions.ClosePeer(peer.PeerID)
			if peer.Role == protocol.RoleHost {
				return session.ErrPeerDisconnected
			}

		case errText := <-c.handler.Error:
			c.notify("error", errText)

		case <-c.handler.Disconnected:
			c.notify("error", "lost connection to signaling relay")
			return session.ErrSignalingError
		}
	}
}

// SendInput ships one input event to the host: data channel when open,
// websocket relay otherwise. Best effort either way; input is never
// queued or retried.
func (c *Client) SendInput(ev *protocol.InputEvent) {
	ev.RoomID = c.roomID

	cm, err := protocol.NewControlMessage(protocol.ControlTypeInput, ev)
	if err == nil {
		if data, err := protocol.EncodeControl(cm); err == nil {
			if c.sessions.SendControl(data) == nil {
				return
			}
		}
	}

	msg, err := protocol.NewMessage(protocol.TypeInput, ev)
	if err != nil {
		return
	}
	msg.RoomID = c.roomID
	c.client.Send(msg)
}

func (c *Client) teardown() {
	c.sessions.CloseAll()
	c.client.Close()
}

func (c *Client) notify(level, text string) {
	select {
	case c.notices <- Notice{Level: level, Text: text}:
	default:
	}
}
