// Package capture implements the frame source stage: it turns the
// screencast of a rendering surface into screen-sized raw captures.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"

	"github.com/user/ftcast/pkg/pipeline"
	"github.com/user/ftcast/pkg/ports"
)

// ErrSourceUnavailable indicates that the rendering surface stopped
// producing frames. A stale image held on the display indefinitely is
// worse than stopping, so this error is fatal to the pipeline.
var ErrSourceUnavailable = errors.New("rendering surface is no longer producing frames")

// maxDecodeFailures is the number of consecutive undecodable frames
// tolerated before the source is considered unavailable.
const maxDecodeFailures = 30

// Options configures a frame source.
type Options struct {
	URL     string             // Page to render; ignored by synthetic surfaces
	Screen  pipeline.Dimension // Target display dimensions
	Fit     FitMode            // How to map captures onto the screen
	Quality int                // JPEG capture quality (1-100)
	Browser ports.BrowserOptions
}

// Source produces a time-ordered sequence of screen-sized raw captures
// from a rendering surface.
type Source struct {
	browser ports.Browser
	logger  ports.Logger
	opts    Options

	frames         <-chan ports.ScreenFrame
	decodeFailures int
}

// NewSource creates a frame source backed by the given rendering surface.
func NewSource(browser ports.Browser, logger ports.Logger, opts Options) *Source {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 100
	}
	return &Source{
		browser: browser,
		logger:  logger.WithComponent("capture"),
		opts:    opts,
	}
}

// Start launches the rendering surface, navigates to the configured URL
// and begins the screencast.
func (s *Source) Start(ctx context.Context) error {
	browserOpts := s.opts.Browser
	browserOpts.WindowWidth = s.opts.Screen.Width
	browserOpts.WindowHeight = s.opts.Screen.Height

	s.logger.Debug("Launching rendering surface at %dx%d",
		s.opts.Screen.Width, s.opts.Screen.Height)
	if err := s.browser.Launch(ctx, browserOpts); err != nil {
		return fmt.Errorf("launch rendering surface: %w", err)
	}

	if s.opts.URL != "" {
		s.logger.Debug("Navigating to %s", s.opts.URL)
		if err := s.browser.Navigate(s.opts.URL); err != nil {
			s.browser.Close()
			return fmt.Errorf("navigate: %w", err)
		}
	}

	frames, err := s.browser.StartScreencast(s.opts.Quality, s.opts.Screen.Width, s.opts.Screen.Height)
	if err != nil {
		s.browser.Close()
		return fmt.Errorf("start screencast: %w", err)
	}
	s.frames = frames

	return nil
}

// NextFrame blocks until a new frame is available and returns it fitted
// to exactly the configured screen dimensions. It returns
// ErrSourceUnavailable when the surface stops producing frames, and the
// context error when ctx is done.
func (s *Source) NextFrame(ctx context.Context) (pipeline.RawCapture, error) {
	for {
		select {
		case <-ctx.Done():
			return pipeline.RawCapture{}, ctx.Err()
		case frame, ok := <-s.frames:
			if !ok {
				return pipeline.RawCapture{}, ErrSourceUnavailable
			}

			img, err := jpeg.Decode(bytes.NewReader(frame.Data))
			if err != nil {
				s.decodeFailures++
				s.logger.Warn("Skipping undecodable frame (%d consecutive): %s", s.decodeFailures, err)
				if s.decodeFailures >= maxDecodeFailures {
					return pipeline.RawCapture{}, fmt.Errorf("%w: %d consecutive decode failures",
						ErrSourceUnavailable, s.decodeFailures)
				}
				continue
			}
			s.decodeFailures = 0

			return Fit(img, s.opts.Screen, s.opts.Fit), nil
		}
	}
}

// Close stops the screencast and shuts down the rendering surface.
func (s *Source) Close() error {
	s.browser.StopScreencast()
	return s.browser.Close()
}
