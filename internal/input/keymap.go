package input

import "fmt"

// keyByCode is the fixed translation table from W3C KeyboardEvent.code
// strings to injectable keys. Letters and digits are filled in by init;
// everything else is listed explicitly. Codes outside the table are
// dropped by the pipeline with a warning, never injected.
var keyByCode = map[string]Key{
	// navigation
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"Home":       "Home",
	"End":        "End",
	"PageUp":     "Prior",
	"PageDown":   "Next",

	// editing
	"Enter":     "Return",
	"Tab":       "Tab",
	"Space":     "space",
	"Backspace": "BackSpace",
	"Delete":    "Delete",
	"Insert":    "Insert",
	"Escape":    "Escape",

	// modifiers, left/right distinguished
	"ShiftLeft":    "Shift_L",
	"ShiftRight":   "Shift_R",
	"ControlLeft":  "Control_L",
	"ControlRight": "Control_R",
	"AltLeft":      "Alt_L",
	"AltRight":     "Alt_R",
	"MetaLeft":     "Super_L",
	"MetaRight":    "Super_R",
	"CapsLock":     "Caps_Lock",

	// punctuation
	"Minus":        "minus",
	"Equal":        "equal",
	"BracketLeft":  "bracketleft",
	"BracketRight": "bracketright",
	"Semicolon":    "semicolon",
	"Quote":        "apostrophe",
	"Backquote":    "grave",
	"Backslash":    "backslash",
	"Comma":        "comma",
	"Period":       "period",
	"Slash":        "slash",
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		code := fmt.Sprintf("Key%c", c-'a'+'A')
		keyByCode[code] = Key(c)
	}
	for d := '0'; d <= '9'; d++ {
		keyByCode[fmt.Sprintf("Digit%c", d)] = Key(d)
	}
}

// LookupKey translates a platform-neutral key code into an injectable key.
func LookupKey(code string) (Key, bool) {
	k, ok := keyByCode[code]
	return k, ok
}
