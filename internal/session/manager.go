package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/remotix/remotix/internal/protocol"
)

// Manager owns every negotiation session of one endpoint and enforces the
// pairing invariant: exactly one session per remote peer, no matter how many
// signal envelopes arrive before the session connects.
type Manager struct {
	localID string
	sender  SignalSender
	factory TransportFactory

	// OnControl receives decoded control channel frames from any session.
	OnControl func(remoteID string, data []byte)
	// OnState observes session state changes.
	OnState func(remoteID string, st State)
	// OnTrack observes remote media arrival.
	OnTrack func(remoteID, kind string)

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(localID string, sender SignalSender, factory TransportFactory) *Manager {
	return &Manager{
		localID:  localID,
		sender:   sender,
		factory:  factory,
		sessions: make(map[string]*Session),
	}
}

// Offer creates (or returns) the offerer session for the remote peer and
// starts its negotiation. The host calls this on peer-joined.
func (m *Manager) Offer(ctx context.Context, remoteID string) (*Session, error) {
	sess, created, err := m.getOrCreate(remoteID, Offerer)
	if err != nil {
		return nil, err
	}
	if !created {
		return sess, nil
	}

	// Gathering the complete description can take a moment; never block
	// the caller's event loop on it.
	go func() {
		if err := sess.Start(ctx); err != nil {
			slog.Warn("negotiation failed", "peer", remoteID, "err", err)
		}
	}()
	return sess, nil
}

// HandleSignal routes an inbound envelope to the peer's session. An
// envelope from an unknown peer implicitly creates the answerer-role
// session: that is how the client learns the host started negotiating.
func (m *Manager) HandleSignal(ctx context.Context, env *protocol.SignalEnvelope) {
	sess, _, err := m.getOrCreate(env.From, Answerer)
	if err != nil {
		slog.Warn("cannot create session", "peer", env.From, "err", err)
		return
	}

	go func(data json.RawMessage) {
		if err := sess.HandleSignal(ctx, data); err != nil {
			slog.Warn("negotiation failed", "peer", env.From, "err", err)
		}
	}(env.Data)
}

// getOrCreate returns the existing session for the peer or builds a new one
// with the given role. A live session is never replaced.
func (m *Manager) getOrCreate(remoteID string, role Role) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[remoteID]; ok {
		return sess, false, nil
	}

	var sess *Session
	tr, err := m.factory(role, Handlers{
		OnConnected: func() { sess.connected() },
		OnClosed:    func() { sess.Close() },
		OnControl: func(data []byte) {
			if m.OnControl != nil {
				m.OnControl(remoteID, data)
			}
		},
		OnTrack: func(kind string) {
			if m.OnTrack != nil {
				m.OnTrack(remoteID, kind)
			}
		},
	})
	if err != nil {
		return nil, false, err
	}

	sess = New(role, m.localID, remoteID, tr, m.sender, func(st State) {
		if m.OnState != nil {
			m.OnState(remoteID, st)
		}
	})
	m.sessions[remoteID] = sess
	return sess, true, nil
}

// Get returns the session for the peer, or nil.
func (m *Manager) Get(remoteID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[remoteID]
}

// SendControl sends one control frame over every connected session. For
// the one-host-one-client pairing this is the single control channel.
func (m *Manager) SendControl(data []byte) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	var lastErr error = ErrNotConnected
	sent := false
	for _, sess := range sessions {
		if sess.State() != StateConnected {
			continue
		}
		if err := sess.SendControl(data); err != nil {
			lastErr = err
			continue
		}
		sent = true
	}
	if sent {
		return nil
	}
	return lastErr
}

// HasConnected reports whether any session is currently connected.
func (m *Manager) HasConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if sess.State() == StateConnected {
			return true
		}
	}
	return false
}

// ClosePeer closes and forgets the session for a departed peer. Closed is
// terminal: a returning peer gets a brand-new session via a new room join.
func (m *Manager) ClosePeer(remoteID string) {
	m.mu.Lock()
	sess, ok := m.sessions[remoteID]
	if ok {
		delete(m.sessions, remoteID)
	}
	m.mu.Unlock()

	if ok {
		sess.Close()
	}
}

// CloseAll tears down every session; used on disconnect and shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
