// Package testpattern provides a synthetic rendering surface that draws
// an animated test card, for bringing up a display without a browser.
package testpattern

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/user/ftcast/pkg/ports"
)

// defaultInterval is used when the options leave the cadence unset.
const defaultInterval = 100 * time.Millisecond

// barColors are the classic color bars, left to right.
var barColors = [][3]float64{
	{1, 1, 1}, // white
	{1, 1, 0}, // yellow
	{0, 1, 1}, // cyan
	{0, 1, 0}, // green
	{1, 0, 1}, // magenta
	{1, 0, 0}, // red
	{0, 0, 1}, // blue
	{0, 0, 0}, // black
}

// Source implements ports.Browser without any browser: it renders color
// bars with a moving marker and a frame counter.
type Source struct {
	width    int
	height   int
	quality  int
	interval time.Duration

	mu     sync.Mutex
	active bool
	frames chan ports.ScreenFrame
	stop   chan struct{}
}

// New creates a new Source.
func New() *Source {
	return &Source{}
}

// Launch records the pattern dimensions and cadence.
func (s *Source) Launch(_ context.Context, opts ports.BrowserOptions) error {
	if opts.WindowWidth <= 0 || opts.WindowHeight <= 0 {
		return fmt.Errorf("pattern dimensions must be positive, got %dx%d",
			opts.WindowWidth, opts.WindowHeight)
	}
	s.width = opts.WindowWidth
	s.height = opts.WindowHeight
	s.interval = opts.PollInterval
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return nil
}

// Navigate is a no-op; the pattern has no page to load.
func (s *Source) Navigate(url string) error {
	return nil
}

// StartScreencast begins producing pattern frames at the configured
// cadence.
func (s *Source) StartScreencast(quality, maxWidth, maxHeight int) (<-chan ports.ScreenFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil, fmt.Errorf("screencast already active")
	}
	if s.width == 0 {
		return nil, fmt.Errorf("pattern source not launched")
	}

	s.quality = quality
	if s.quality <= 0 || s.quality > 100 {
		s.quality = 100
	}
	s.frames = make(chan ports.ScreenFrame, 1)
	s.stop = make(chan struct{})
	s.active = true

	go s.drawLoop()

	return s.frames, nil
}

func (s *Source) drawLoop() {
	defer close(s.frames)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	startTime := time.Now()
	n := 0

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			data, err := s.renderFrame(n)
			if err != nil {
				return
			}
			n++

			frame := ports.ScreenFrame{
				TimestampMs: int(time.Since(startTime).Milliseconds()),
				Data:        data,
			}
			select {
			case s.frames <- frame:
			default:
				// Consumer busy, skip frame
			}
		}
	}
}

// renderFrame draws frame n of the pattern and encodes it as JPEG.
func (s *Source) renderFrame(n int) ([]byte, error) {
	dc := gg.NewContext(s.width, s.height)

	// Color bars
	barWidth := float64(s.width) / float64(len(barColors))
	for i, c := range barColors {
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(float64(i)*barWidth, 0, barWidth+1, float64(s.height))
		dc.Fill()
	}

	// Moving marker along the bottom row proves the stream is live.
	markerSize := float64(s.height) / 8
	if markerSize < 2 {
		markerSize = 2
	}
	x := float64(n % s.width)
	dc.SetRGB(1, 0.5, 0)
	dc.DrawRectangle(x, float64(s.height)-markerSize, markerSize, markerSize)
	dc.Fill()

	// Frame counter, when there is room for text
	if s.height >= 24 {
		dc.SetRGB(0, 0, 0)
		dc.DrawString(fmt.Sprintf("%d", n), 2, float64(s.height)/2)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StopScreencast stops frame production.
func (s *Source) StopScreencast() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return nil
	}
	s.active = false
	close(s.stop)

	return nil
}

// Close is equivalent to StopScreencast; there is nothing else to
// release.
func (s *Source) Close() error {
	return s.StopScreencast()
}

var _ ports.Browser = (*Source)(nil)
