package input

import "errors"

// ErrUnavailable is returned by injector constructors when no OS input
// backend exists on this system.
var ErrUnavailable = errors.New("input injection unavailable")

// Button identifies a pointer button. Only the primary button is ever
// injected today; the type exists so the capability surface stays stable.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Key is an injectable key, produced by the code lookup table. The value is
// an X keysym name, the vocabulary the system injector speaks.
type Key string

// Injector is the OS-level capability that performs pointer and key
// actions. Implementations are expected to be slow (subprocess or syscall
// per action); callers must never invoke them from a loop that also relays
// network messages.
type Injector interface {
	PointerPosition() (x, y int, err error)
	SetPointerPosition(x, y int) error
	Click(button Button) error
	PressKey(key Key) error
	ReleaseKey(key Key) error
}
