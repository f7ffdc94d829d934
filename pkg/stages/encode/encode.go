// Package encode implements the wire frame encoding stage.
package encode

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/ftcast/pkg/pipeline"
)

// magic is the binary pixmap raster tag of the wire format.
const magic = "P6"

// maxChannelValue is the fixed maximum value of each color channel.
const maxChannelValue = 255

// ErrDimensionMismatch indicates a capture whose dimensions do not match
// the configured screen size. This is a configuration error, not a
// transient condition, and terminates the pipeline.
var ErrDimensionMismatch = errors.New("capture dimensions do not match screen size")

// Stage converts raw captures into wire frames for a screen of fixed
// dimensions. The transformation is pure: identical input always yields
// byte-identical output.
type Stage struct {
	screen pipeline.Dimension
}

// NewStage creates an encode stage for the given screen dimensions.
func NewStage(screen pipeline.Dimension) *Stage {
	return &Stage{screen: screen}
}

// Execute encodes one capture as a wire frame: the ASCII header
// "P6 <width> <height> 255\n" followed by width*height*3 interleaved
// RGB bytes, row-major, top-to-bottom. The capture's alpha channel is
// discarded.
func (s *Stage) Execute(_ context.Context, capture pipeline.RawCapture) (pipeline.WireFrame, error) {
	w, h := s.screen.Width, s.screen.Height

	if capture.Width != w || capture.Height != h {
		return pipeline.WireFrame{}, fmt.Errorf("%w: capture is %dx%d, screen is %dx%d",
			ErrDimensionMismatch, capture.Width, capture.Height, w, h)
	}
	if len(capture.Pix) != w*h*4 {
		return pipeline.WireFrame{}, fmt.Errorf("%w: pixel buffer is %d bytes, expected %d",
			ErrDimensionMismatch, len(capture.Pix), w*h*4)
	}

	header := fmt.Sprintf("%s %d %d %d\n", magic, w, h, maxChannelValue)
	data := make([]byte, len(header)+w*h*3)
	copy(data, header)

	di := len(header)
	for si := 0; si < len(capture.Pix); si += 4 {
		data[di] = capture.Pix[si]
		data[di+1] = capture.Pix[si+1]
		data[di+2] = capture.Pix[si+2]
		di += 3
	}

	return pipeline.WireFrame{Width: w, Height: h, Data: data}, nil
}
