package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/remotix/remotix/internal/protocol"
)

// Role is fixed at session creation and immutable for the session's
// lifetime: the host offers, the client answers, exactly one trickle-less
// exchange per side.
type Role int

const (
	Offerer Role = iota
	Answerer
)

func (r Role) String() string {
	if r == Offerer {
		return "offerer"
	}
	return "answerer"
}

// State is the negotiation state of one session.
type State int32

const (
	// StateIdle: created, nothing exchanged yet.
	StateIdle State = iota
	// StateLocalDescriptionPending: the local description is being
	// produced (candidate gathering in progress).
	StateLocalDescriptionPending
	// StateAwaitingRemoteDescription: the local description went out; the
	// offerer awaits the answer, the answerer awaits channel establishment.
	StateAwaitingRemoteDescription
	// StateConnected: the underlying channel is up.
	StateConnected
	// StateClosed is terminal. Reconnection requires a brand-new session
	// and a new room-join handshake.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocalDescriptionPending:
		return "local-description-pending"
	case StateAwaitingRemoteDescription:
		return "awaiting-remote-description"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SignalSender delivers one signal envelope toward the remote endpoint,
// fire and forget.
type SignalSender interface {
	SendSignal(env *protocol.SignalEnvelope)
}

// Session drives one trickle-less offer/answer exchange with a single
// remote peer. It owns its negotiation state exclusively; the Manager
// guarantees at most one Session per peer pairing.
type Session struct {
	role     Role
	localID  string
	remoteID string

	mu    sync.Mutex
	state State

	tr      Transport
	sender  SignalSender
	onState func(State)
	log     *slog.Logger
}

func New(role Role, localID, remoteID string, tr Transport, sender SignalSender, onState func(State)) *Session {
	return &Session{
		role:     role,
		localID:  localID,
		remoteID: remoteID,
		state:    StateIdle,
		tr:       tr,
		sender:   sender,
		onState:  onState,
		log:      slog.With("peer", remoteID, "role", role.String()),
	}
}

func (s *Session) Role() Role       { return s.role }
func (s *Session) RemoteID() string { return s.remoteID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition moves to next only when the current state matches from.
// Closed is terminal: nothing transitions out of it.
func (s *Session) transition(from, next State) bool {
	s.mu.Lock()
	if s.state != from || s.state == StateClosed {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.mu.Unlock()

	s.log.Debug("session state", "state", next.String())
	if s.onState != nil {
		s.onState(next)
	}
	return true
}

// Start runs the offerer side: produce the single complete offer and send
// it toward the remote peer through the relay.
func (s *Session) Start(ctx context.Context) error {
	if s.role != Offerer {
		return WrapError("start", ErrUnexpectedSignal, "answerer sessions start on the first inbound signal")
	}
	if !s.transition(StateIdle, StateLocalDescriptionPending) {
		return WrapError("start", ErrUnexpectedSignal, "session already started")
	}

	desc, err := s.tr.CreateOffer(ctx)
	if err != nil {
		s.Close()
		return err
	}

	s.emit(desc)
	s.transition(StateLocalDescriptionPending, StateAwaitingRemoteDescription)
	return nil
}

// HandleSignal applies one inbound description. For the answerer the first
// signal is the offer and triggers emission of the answer; for the offerer
// the signal is the answer. Extra envelopes before Connected are applied to
// this same session, never to a second one; a duplicate description in a
// trickle-less exchange is dropped with a log, not an error.
func (s *Session) HandleSignal(ctx context.Context, data json.RawMessage) error {
	switch s.role {
	case Answerer:
		if !s.transition(StateIdle, StateLocalDescriptionPending) {
			s.log.Debug("dropping extra signal", "state", s.State().String())
			return nil
		}
		answer, err := s.tr.CreateAnswer(ctx, data)
		if err != nil {
			s.Close()
			return err
		}
		s.emit(answer)
		s.transition(StateLocalDescriptionPending, StateAwaitingRemoteDescription)
		return nil

	case Offerer:
		if s.State() != StateAwaitingRemoteDescription {
			s.log.Debug("dropping extra signal", "state", s.State().String())
			return nil
		}
		if err := s.tr.ApplyAnswer(data); err != nil {
			s.Close()
			return err
		}
		return nil
	}
	return nil
}

// emit hands the local description to the relay addressed at the remote
// endpoint. Delivery is best effort; a dropped envelope stalls this
// negotiation attempt and nothing else.
func (s *Session) emit(desc []byte) {
	s.sender.SendSignal(&protocol.SignalEnvelope{
		To:   s.remoteID,
		From: s.localID,
		Data: desc,
	})
}

// SendControl sends one control frame over the session's data channel.
func (s *Session) SendControl(data []byte) error {
	if s.State() != StateConnected {
		return ErrNotConnected
	}
	return s.tr.SendControl(data)
}

// connected is wired to the transport's OnConnected callback.
func (s *Session) connected() {
	if s.transition(StateAwaitingRemoteDescription, StateConnected) {
		s.log.Info("session connected")
	}
}

// Close tears the session down. Idempotent; Closed is terminal.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	if err := s.tr.Close(); err != nil {
		s.log.Debug("transport close", "err", err)
	}
	s.log.Info("session closed")
	if s.onState != nil {
		s.onState(StateClosed)
	}
}
