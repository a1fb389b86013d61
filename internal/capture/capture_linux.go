//go:build linux

package capture

import (
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/screen"
	"github.com/pion/mediadevices/pkg/prop"
	pion "github.com/pion/webrtc/v4"
)

type screenCapturer struct {
	stream   mediadevices.MediaStream
	selector *mediadevices.CodecSelector
}

// newCapturer grabs the primary screen via pion/mediadevices and encodes
// VP8. Frame rate is capped at 30: screen content rarely benefits from
// more and the encoder load matters on the host.
func newCapturer() (Capturer, error) {
	vpxParams, err := vpx.NewVP8Params()
	if err != nil {
		return nil, err
	}
	vpxParams.BitRate = 2_000_000

	selector := mediadevices.NewCodecSelector(
		mediadevices.WithVideoEncoders(&vpxParams),
	)

	stream, err := mediadevices.GetDisplayMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {
			c.FrameRate = prop.Float(30)
		},
		Codec: selector,
	})
	if err != nil {
		return nil, err
	}

	return &screenCapturer{stream: stream, selector: selector}, nil
}

func (c *screenCapturer) Tracks() []pion.TrackLocal {
	mdTracks := c.stream.GetTracks()
	tracks := make([]pion.TrackLocal, 0, len(mdTracks))
	for _, t := range mdTracks {
		tracks = append(tracks, t)
	}
	return tracks
}

func (c *screenCapturer) EngineHook() func(*pion.MediaEngine) error {
	return func(me *pion.MediaEngine) error {
		c.selector.Populate(me)
		return nil
	}
}

func (c *screenCapturer) Close() error {
	for _, t := range c.stream.GetTracks() {
		t.Close()
	}
	return nil
}
