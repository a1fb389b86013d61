package input

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// XdoInjector drives the local pointer and keyboard through the xdotool
// command. It is the X11 system backend; on systems without xdotool the
// constructor fails and the host runs with injection unavailable.
type XdoInjector struct {
	path string
}

// NewSystemInjector locates an OS input backend. Currently that means
// xdotool on X11; Wayland and other platforms report ErrUnavailable.
func NewSystemInjector() (Injector, error) {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, ErrUnavailable
	}
	return &XdoInjector{path: path}, nil
}

func (x *XdoInjector) run(args ...string) error {
	out, err := exec.Command(x.path, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("xdotool %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// PointerPosition parses `xdotool getmouselocation --shell`, which prints
// X=..., Y=..., SCREEN=..., WINDOW=... one per line.
func (x *XdoInjector) PointerPosition() (int, int, error) {
	out, err := exec.Command(x.path, "getmouselocation", "--shell").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("xdotool getmouselocation: %w", err)
	}

	px, py := -1, -1
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "X="); ok {
			px, _ = strconv.Atoi(strings.TrimSpace(v))
		} else if v, ok := strings.CutPrefix(line, "Y="); ok {
			py, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}
	if px < 0 || py < 0 {
		return 0, 0, fmt.Errorf("xdotool getmouselocation: unparseable output")
	}
	return px, py, nil
}

func (x *XdoInjector) SetPointerPosition(px, py int) error {
	return x.run("mousemove", strconv.Itoa(px), strconv.Itoa(py))
}

func (x *XdoInjector) Click(button Button) error {
	// xdotool buttons are 1-based: 1 left, 2 middle, 3 right.
	return x.run("click", strconv.Itoa(int(button)+1))
}

func (x *XdoInjector) PressKey(key Key) error {
	return x.run("keydown", string(key))
}

func (x *XdoInjector) ReleaseKey(key Key) error {
	return x.run("keyup", string(key))
}
