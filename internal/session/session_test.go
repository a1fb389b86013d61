package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/remotix/remotix/internal/protocol"
)

// fakeTransport implements Transport without any ICE machinery so the
// state machine can be driven deterministically.
type fakeTransport struct {
	mu        sync.Mutex
	offers    int
	answers   int
	applied   [][]byte
	sent      [][]byte
	closed    bool
	offerErr  error
	answerErr error
	applyErr  error
	handlers  Handlers
}

func (f *fakeTransport) CreateOffer(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offerErr != nil {
		return nil, f.offerErr
	}
	f.offers++
	return []byte(`{"type":"offer","sdp":"o"}`), nil
}

func (f *fakeTransport) CreateAnswer(ctx context.Context, remote []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	f.answers++
	return []byte(`{"type":"answer","sdp":"a"}`), nil
}

func (f *fakeTransport) ApplyAnswer(remote []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, remote)
	return nil
}

func (f *fakeTransport) SendControl(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// envelopeRecorder captures outbound signal envelopes.
type envelopeRecorder struct {
	mu   sync.Mutex
	envs []*protocol.SignalEnvelope
}

func (r *envelopeRecorder) SendSignal(env *protocol.SignalEnvelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envs = append(r.envs, env)
}

func (r *envelopeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.envs)
}

func TestSession_OffererFlow(t *testing.T) {
	tr := &fakeTransport{}
	rec := &envelopeRecorder{}
	var states []State
	sess := New(Offerer, "local", "remote", tr, rec, func(st State) { states = append(states, st) })

	if sess.State() != StateIdle {
		t.Fatal("new session should be idle")
	}

	if err := sess.Start(context.Background()); err != nil {
		t.Fatal("Start() error: ", err)
	}
	if sess.State() != StateAwaitingRemoteDescription {
		t.Fatal("offerer should await the answer after emitting, got ", sess.State())
	}
	if rec.count() != 1 {
		t.Fatal("the offer must go out exactly once")
	}
	if rec.envs[0].To != "remote" || rec.envs[0].From != "local" {
		t.Fatalf("envelope misaddressed: %+v", rec.envs[0])
	}

	if err := sess.HandleSignal(context.Background(), json.RawMessage(`{"type":"answer"}`)); err != nil {
		t.Fatal("HandleSignal() error: ", err)
	}
	if len(tr.applied) != 1 {
		t.Fatal("the answer must be applied to the transport")
	}

	sess.connected()
	if sess.State() != StateConnected {
		t.Fatal("expected connected, got ", sess.State())
	}

	want := []State{StateLocalDescriptionPending, StateAwaitingRemoteDescription, StateConnected}
	if len(states) != len(want) {
		t.Fatalf("state observations: got %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("state observations: got %v, want %v", states, want)
		}
	}
}

func TestSession_AnswererFlow(t *testing.T) {
	tr := &fakeTransport{}
	rec := &envelopeRecorder{}
	sess := New(Answerer, "local", "remote", tr, rec, nil)

	if err := sess.HandleSignal(context.Background(), json.RawMessage(`{"type":"offer"}`)); err != nil {
		t.Fatal("HandleSignal() error: ", err)
	}
	if tr.answers != 1 {
		t.Fatal("the answer must be created exactly once")
	}
	if rec.count() != 1 {
		t.Fatal("the answer must be emitted exactly once")
	}
	if sess.State() != StateAwaitingRemoteDescription {
		t.Fatal("answerer awaits channel establishment after answering, got ", sess.State())
	}

	sess.connected()
	if sess.State() != StateConnected {
		t.Fatal("expected connected, got ", sess.State())
	}
}

func TestSession_AnswererStartRefused(t *testing.T) {
	sess := New(Answerer, "local", "remote", &fakeTransport{}, &envelopeRecorder{}, nil)
	if err := sess.Start(context.Background()); !errors.Is(err, ErrUnexpectedSignal) {
		t.Fatal("answerer Start() should be refused, got ", err)
	}
}

func TestSession_DuplicateSignalDropped(t *testing.T) {
	tr := &fakeTransport{}
	rec := &envelopeRecorder{}
	sess := New(Answerer, "local", "remote", tr, rec, nil)

	offer := json.RawMessage(`{"type":"offer"}`)
	if err := sess.HandleSignal(context.Background(), offer); err != nil {
		t.Fatal("first signal error: ", err)
	}
	// A re-sent offer must not produce a second answer.
	if err := sess.HandleSignal(context.Background(), offer); err != nil {
		t.Fatal("duplicate signal should be dropped silently, got ", err)
	}
	if tr.answers != 1 || rec.count() != 1 {
		t.Fatal("duplicate signal must not re-run negotiation")
	}
}

func TestSession_SignalBeforeOfferDropped(t *testing.T) {
	tr := &fakeTransport{}
	sess := New(Offerer, "local", "remote", tr, &envelopeRecorder{}, nil)

	// An answer arriving before Start must not be applied.
	if err := sess.HandleSignal(context.Background(), json.RawMessage(`{"type":"answer"}`)); err != nil {
		t.Fatal("premature signal should be dropped silently, got ", err)
	}
	if len(tr.applied) != 0 {
		t.Fatal("nothing should be applied before the offer went out")
	}
}

func TestSession_OfferFailureCloses(t *testing.T) {
	tr := &fakeTransport{offerErr: errors.New("no codecs")}
	sess := New(Offerer, "local", "remote", tr, &envelopeRecorder{}, nil)

	if err := sess.Start(context.Background()); err == nil {
		t.Fatal("Start() should surface the transport error")
	}
	if sess.State() != StateClosed {
		t.Fatal("a failed negotiation must close the session, got ", sess.State())
	}
	if !tr.closed {
		t.Fatal("the transport must be torn down")
	}
}

func TestSession_ClosedIsTerminal(t *testing.T) {
	tr := &fakeTransport{}
	sess := New(Offerer, "local", "remote", tr, &envelopeRecorder{}, nil)

	sess.Close()
	sess.Close() // idempotent

	if err := sess.Start(context.Background()); err == nil {
		t.Fatal("Start() after Close() should fail")
	}
	if err := sess.HandleSignal(context.Background(), json.RawMessage(`{}`)); err != nil {
		t.Fatal("signals after Close() are dropped, not errors: ", err)
	}
	sess.connected()
	if sess.State() != StateClosed {
		t.Fatal("nothing may transition out of closed")
	}
}

func TestSession_SendControlRequiresConnected(t *testing.T) {
	tr := &fakeTransport{}
	sess := New(Offerer, "local", "remote", tr, &envelopeRecorder{}, nil)

	if err := sess.SendControl([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Fatal("SendControl before connected should fail, got ", err)
	}

	sess.Start(context.Background())
	sess.HandleSignal(context.Background(), json.RawMessage(`{"type":"answer"}`))
	sess.connected()

	if err := sess.SendControl([]byte("x")); err != nil {
		t.Fatal("SendControl when connected error: ", err)
	}
	if len(tr.sent) != 1 {
		t.Fatal("frame should reach the transport")
	}
}
