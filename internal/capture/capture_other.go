//go:build !linux

package capture

func newCapturer() (Capturer, error) {
	return nil, ErrUnavailable
}
