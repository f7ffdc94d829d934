// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"time"
)

// Browser abstracts the rendering surface that produces screen frames.
// Implementations drive a real browser (CDP screencast, Playwright
// polling) or synthesize frames without one.
type Browser interface {
	// Launch starts the rendering surface with the given options.
	Launch(ctx context.Context, opts BrowserOptions) error

	// Navigate loads the specified URL.
	Navigate(url string) error

	// StartScreencast begins frame capture and returns a channel that
	// receives encoded screen frames. The channel is closed when the
	// surface stops producing frames, either on shutdown or because the
	// surface crashed.
	StartScreencast(quality, maxWidth, maxHeight int) (<-chan ScreenFrame, error)

	// StopScreencast stops frame capture.
	StopScreencast() error

	// Close shuts down the rendering surface.
	Close() error
}

// BrowserOptions configures rendering surface launch settings.
type BrowserOptions struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	WindowWidth       int // Initial window width (drives capture dimensions)
	WindowHeight      int // Initial window height (drives capture dimensions)
	IgnoreHTTPSErrors bool
	ProxyServer       string        // HTTP proxy server (e.g., "http://proxy:8080")
	Incognito         bool          // Run browser in incognito mode
	PollInterval      time.Duration // Capture cadence for polling implementations
}

// ScreenFrame is a single captured frame as produced by the surface.
type ScreenFrame struct {
	TimestampMs int    // Milliseconds since capture started
	Data        []byte // JPEG image data
}
