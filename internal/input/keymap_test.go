package input

import "testing"

func TestLookupKey(t *testing.T) {
	tests := []struct {
		code string
		want Key
	}{
		{"KeyA", "a"},
		{"KeyZ", "z"},
		{"Digit0", "0"},
		{"Digit9", "9"},
		{"Enter", "Return"},
		{"Backspace", "BackSpace"},
		{"Space", "space"},
		{"ArrowUp", "Up"},
		{"ArrowLeft", "Left"},
		{"PageUp", "Prior"},
		{"PageDown", "Next"},
		{"ShiftLeft", "Shift_L"},
		{"ControlRight", "Control_R"},
		{"MetaLeft", "Super_L"},
		{"Escape", "Escape"},
		{"Tab", "Tab"},
	}

	for _, tt := range tests {
		got, ok := LookupKey(tt.code)
		if !ok {
			t.Errorf("LookupKey(%q) not found", tt.code)
			continue
		}
		if got != tt.want {
			t.Errorf("LookupKey(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLookupKey_Unknown(t *testing.T) {
	for _, code := range []string{"", "Quux", "keya", "KeyAA"} {
		if _, ok := LookupKey(code); ok {
			t.Errorf("LookupKey(%q) should not resolve", code)
		}
	}
}
