package control

import "github.com/remotix/remotix/internal/protocol"

// Notice is a user-facing status update consumed by the terminal panels.
type Notice struct {
	Level string // "info", "warn", "error"
	Text  string
}

// relaySender adapts the signaling client to the negotiation driver's
// SignalSender. Fire and forget, like the relay itself.
type relaySender struct {
	client interface {
		Send(msg *protocol.Message)
	}
}

func (s relaySender) SendSignal(env *protocol.SignalEnvelope) {
	msg, err := protocol.NewMessage(protocol.TypeSignal, env)
	if err != nil {
		return
	}
	s.client.Send(msg)
}
