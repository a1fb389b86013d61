package input

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/remotix/remotix/internal/protocol"
)

// Pipeline turns remote input events into local OS actions. Every event
// passes the authorization gate first: the gate defaults to denied and is
// flipped only by explicit host action, so a session that never authorizes
// control injects nothing regardless of what the client sends.
//
// All failures here are local. A dropped event, an unmapped code or an
// injector error is logged and swallowed; nothing propagates back to the
// transport and nothing terminates the session.
type Pipeline struct {
	inj        Injector
	authorized atomic.Bool
	log        *slog.Logger
}

func NewPipeline(inj Injector) *Pipeline {
	return &Pipeline{inj: inj, log: slog.With("component", "input")}
}

// Authorize flips the gate. Host UI action only.
func (p *Pipeline) Authorize(allow bool) {
	p.authorized.Store(allow)
	p.log.Info("remote control authorization changed", "allowed", allow)
}

func (p *Pipeline) Authorized() bool {
	return p.authorized.Load()
}

// Handle processes one remote input event. The gate check comes before any
// inspection of the event: no event kind can bypass it.
func (p *Pipeline) Handle(ev *protocol.InputEvent) {
	if !p.authorized.Load() {
		p.log.Debug("input dropped, control not authorized", "kind", ev.Kind)
		return
	}
	if p.inj == nil {
		p.log.Debug("input dropped, no injector on this host")
		return
	}

	if err := ev.Validate(); err != nil {
		p.log.Warn("input dropped", "err", err)
		return
	}

	switch ev.Kind {
	case protocol.EventMouseMove:
		p.moveRelative(ev.DeltaX, ev.DeltaY)
	case protocol.EventMouseMoveAbsolute:
		p.inject("set pointer", p.inj.SetPointerPosition(round(ev.X), round(ev.Y)))
	case protocol.EventMouseClick:
		// Button discrimination beyond the primary button is out of scope.
		p.inject("click", p.inj.Click(ButtonLeft))
	case protocol.EventKeyDown:
		p.key(ev.Code, true)
	case protocol.EventKeyUp:
		p.key(ev.Code, false)
	}
}

// moveRelative applies a pointer-lock delta: read the current absolute
// position, add the delta, set the result. The client only has movement
// deltas once pointer lock engages, so this is the one movement model the
// wire carries.
func (p *Pipeline) moveRelative(dx, dy float64) {
	x, y, err := p.inj.PointerPosition()
	if err != nil {
		p.log.Warn("pointer position unavailable", "err", err)
		return
	}
	p.inject("move pointer", p.inj.SetPointerPosition(x+round(dx), y+round(dy)))
}

func (p *Pipeline) key(code string, down bool) {
	key, ok := LookupKey(code)
	if !ok {
		p.log.Warn("unmapped key code dropped", "code", code)
		return
	}
	if down {
		p.inject("press key", p.inj.PressKey(key))
	} else {
		p.inject("release key", p.inj.ReleaseKey(key))
	}
}

// inject logs an injection failure and moves on. Losing one input event is
// preferable to losing the session.
func (p *Pipeline) inject(op string, err error) {
	if err != nil {
		p.log.Warn("injection failed", "op", op, "err", err)
	}
}

func round(f float64) int {
	return int(math.Round(f))
}
