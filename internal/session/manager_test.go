package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/remotix/remotix/internal/protocol"
)

// chanSender signals each outbound envelope on a channel so tests can wait
// for the manager's negotiation goroutines.
type chanSender struct {
	envs chan *protocol.SignalEnvelope
}

func newChanSender() *chanSender {
	return &chanSender{envs: make(chan *protocol.SignalEnvelope, 8)}
}

func (s *chanSender) SendSignal(env *protocol.SignalEnvelope) {
	s.envs <- env
}

func (s *chanSender) wait(t *testing.T) *protocol.SignalEnvelope {
	t.Helper()
	select {
	case env := <-s.envs:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an envelope")
		return nil
	}
}

func fakeFactory(transports map[string]*fakeTransport) TransportFactory {
	n := 0
	return func(role Role, h Handlers) (Transport, error) {
		tr := &fakeTransport{handlers: h}
		transports[role.String()+string(rune('0'+n))] = tr
		n++
		return tr, nil
	}
}

func TestManager_OneSessionPerPeer(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	first, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("Offer() error: ", err)
	}
	sender.wait(t) // offer emitted

	second, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("second Offer() error: ", err)
	}
	if first != second {
		t.Fatal("a second offer for the same peer must reuse the session")
	}
	if len(transports) != 1 {
		t.Fatal("exactly one transport per peer, got ", len(transports))
	}
}

func TestManager_ImplicitAnswererCreation(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	if m.Get("host") != nil {
		t.Fatal("no session should exist before any signal")
	}

	m.HandleSignal(context.Background(), &protocol.SignalEnvelope{
		From: "host",
		Data: json.RawMessage(`{"type":"offer"}`),
	})
	env := sender.wait(t) // answer emitted

	if env.To != "host" {
		t.Fatalf("answer misaddressed: %+v", env)
	}
	sess := m.Get("host")
	if sess == nil {
		t.Fatal("an inbound signal from an unknown peer must create the session")
	}
	if sess.Role() != Answerer {
		t.Fatal("implicitly created sessions answer, got ", sess.Role())
	}
}

func TestManager_SignalRoutedToExistingSession(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	sess, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("Offer() error: ", err)
	}
	sender.wait(t)

	m.HandleSignal(context.Background(), &protocol.SignalEnvelope{
		From: "peer",
		Data: json.RawMessage(`{"type":"answer"}`),
	})

	// The answer lands on the offerer session, not a new answerer one.
	tr := transports["offerer0"]
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tr.mu.Lock()
		applied := len(tr.applied)
		tr.mu.Unlock()
		if applied == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	tr.mu.Lock()
	if len(tr.applied) != 1 {
		tr.mu.Unlock()
		t.Fatal("the answer was never applied to the offerer's transport")
	}
	tr.mu.Unlock()

	if got := m.Get("peer"); got != sess {
		t.Fatal("inbound signal must not replace a live session")
	}
	if sess.Role() != Offerer {
		t.Fatal("session role must be unchanged")
	}
}

func TestManager_SendControlBroadcast(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	if err := m.SendControl([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Fatal("SendControl with no sessions should fail, got ", err)
	}

	sess, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("Offer() error: ", err)
	}
	sender.wait(t)
	sess.HandleSignal(context.Background(), json.RawMessage(`{"type":"answer"}`))
	sess.connected()

	if !m.HasConnected() {
		t.Fatal("HasConnected() should see the connected session")
	}
	if err := m.SendControl([]byte("x")); err != nil {
		t.Fatal("SendControl error: ", err)
	}
}

func TestManager_ClosePeerAllowsReconnect(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	first, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("Offer() error: ", err)
	}
	sender.wait(t)

	m.ClosePeer("peer")
	if first.State() != StateClosed {
		t.Fatal("ClosePeer must close the session")
	}
	if m.Get("peer") != nil {
		t.Fatal("closed sessions are removed from the manager")
	}

	// A fresh join creates a brand-new session.
	second, err := m.Offer(context.Background(), "peer")
	if err != nil {
		t.Fatal("re-Offer() error: ", err)
	}
	sender.wait(t)
	if second == first {
		t.Fatal("reconnection requires a new session")
	}
}

func TestManager_CloseAll(t *testing.T) {
	sender := newChanSender()
	transports := map[string]*fakeTransport{}
	m := NewManager("local", sender, fakeFactory(transports))

	a, _ := m.Offer(context.Background(), "a")
	sender.wait(t)
	b, _ := m.Offer(context.Background(), "b")
	sender.wait(t)

	m.CloseAll()
	if a.State() != StateClosed || b.State() != StateClosed {
		t.Fatal("CloseAll must close every session")
	}
	if m.HasConnected() {
		t.Fatal("no session should remain")
	}
}
