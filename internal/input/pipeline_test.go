package input

import (
	"errors"
	"testing"

	"github.com/remotix/remotix/internal/protocol"
)

// fakeInjector records every call so tests can assert both what was
// injected and that nothing was.
type fakeInjector struct {
	x, y     int
	posErr   error
	clicks   []Button
	pressed  []Key
	released []Key
	failSet  bool
}

func (f *fakeInjector) PointerPosition() (int, int, error) {
	if f.posErr != nil {
		return 0, 0, f.posErr
	}
	return f.x, f.y, nil
}

func (f *fakeInjector) SetPointerPosition(x, y int) error {
	if f.failSet {
		return errors.New("injection failed")
	}
	f.x, f.y = x, y
	return nil
}

func (f *fakeInjector) Click(b Button) error {
	f.clicks = append(f.clicks, b)
	return nil
}

func (f *fakeInjector) PressKey(k Key) error {
	f.pressed = append(f.pressed, k)
	return nil
}

func (f *fakeInjector) ReleaseKey(k Key) error {
	f.released = append(f.released, k)
	return nil
}

func (f *fakeInjector) calls() int {
	return len(f.clicks) + len(f.pressed) + len(f.released)
}

func TestPipeline_GateBlocksEverything(t *testing.T) {
	inj := &fakeInjector{x: 100, y: 100}
	p := NewPipeline(inj)

	events := []*protocol.InputEvent{
		{Kind: protocol.EventMouseMove, DeltaX: 10, DeltaY: 10},
		{Kind: protocol.EventMouseMoveAbsolute, X: 500, Y: 500},
		{Kind: protocol.EventMouseClick},
		{Kind: protocol.EventKeyDown, Code: "KeyA"},
		{Kind: protocol.EventKeyUp, Code: "KeyA"},
	}
	for _, ev := range events {
		p.Handle(ev)
	}

	if inj.calls() != 0 || inj.x != 100 || inj.y != 100 {
		t.Fatal("no event may reach the injector before authorization")
	}
}

func TestPipeline_GateRevocable(t *testing.T) {
	inj := &fakeInjector{}
	p := NewPipeline(inj)

	p.Authorize(true)
	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseClick})
	p.Authorize(false)
	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseClick})

	if len(inj.clicks) != 1 {
		t.Fatal("expected exactly the click from the authorized window, got ", len(inj.clicks))
	}
}

func TestPipeline_RelativeMovesCompose(t *testing.T) {
	inj := &fakeInjector{x: 100, y: 100}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseMove, DeltaX: 5, DeltaY: -3})
	if inj.x != 105 || inj.y != 97 {
		t.Fatalf("expected (105, 97), got (%d, %d)", inj.x, inj.y)
	}

	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseMove, DeltaX: -2, DeltaY: 10})
	if inj.x != 103 || inj.y != 107 {
		t.Fatalf("deltas must compose against the moved position, got (%d, %d)", inj.x, inj.y)
	}
}

func TestPipeline_FractionalDeltaRounded(t *testing.T) {
	inj := &fakeInjector{x: 10, y: 10}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseMove, DeltaX: 2.6, DeltaY: -1.4})
	if inj.x != 13 || inj.y != 9 {
		t.Fatalf("expected rounded (13, 9), got (%d, %d)", inj.x, inj.y)
	}
}

func TestPipeline_KeyTranslation(t *testing.T) {
	inj := &fakeInjector{}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: protocol.EventKeyDown, Code: "KeyA"})
	p.Handle(&protocol.InputEvent{Kind: protocol.EventKeyUp, Code: "KeyA"})

	if len(inj.pressed) != 1 || inj.pressed[0] != "a" {
		t.Fatalf("expected press of %q, got %v", "a", inj.pressed)
	}
	if len(inj.released) != 1 || inj.released[0] != "a" {
		t.Fatalf("expected release of %q, got %v", "a", inj.released)
	}
}

func TestPipeline_UnmappedCodeDropped(t *testing.T) {
	inj := &fakeInjector{}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: protocol.EventKeyDown, Code: "Quux"})
	if inj.calls() != 0 {
		t.Fatal("unmapped code must not reach the injector")
	}
}

func TestPipeline_InvalidEventDropped(t *testing.T) {
	inj := &fakeInjector{}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: "teleport"})
	p.Handle(&protocol.InputEvent{Kind: protocol.EventKeyDown})
	if inj.calls() != 0 {
		t.Fatal("invalid events must not reach the injector")
	}
}

func TestPipeline_InjectionErrorsSwallowed(t *testing.T) {
	inj := &fakeInjector{failSet: true}
	p := NewPipeline(inj)
	p.Authorize(true)

	// Must not panic; later events still flow.
	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseMoveAbsolute, X: 5, Y: 5})
	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseClick})
	if len(inj.clicks) != 1 {
		t.Fatal("events after a failed injection must still be processed")
	}
}

func TestPipeline_PositionErrorSkipsMove(t *testing.T) {
	inj := &fakeInjector{posErr: errors.New("no display")}
	p := NewPipeline(inj)
	p.Authorize(true)

	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseMove, DeltaX: 5, DeltaY: 5})
	if inj.x != 0 || inj.y != 0 {
		t.Fatal("move must be skipped when the current position is unknown")
	}
}

func TestPipeline_NoInjector(t *testing.T) {
	p := NewPipeline(nil)
	p.Authorize(true)

	// Must not panic.
	p.Handle(&protocol.InputEvent{Kind: protocol.EventMouseClick})
}
