// Package mocks provides hand-written test doubles for the ports
// interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/user/ftcast/pkg/ports"
)

// Browser is a scripted ports.Browser. Tests push frames into Frames and
// close the stream with CloseFrames to simulate a surface crash.
type Browser struct {
	LaunchErr     error
	NavigateErr   error
	ScreencastErr error

	LaunchCalled bool
	LaunchedOpts ports.BrowserOptions
	NavigatedURL string
	StopCalled   bool
	CloseCalled  bool

	Frames chan ports.ScreenFrame

	closeOnce sync.Once
}

// NewBrowser creates a mock browser with a buffered frame stream.
func NewBrowser() *Browser {
	return &Browser{Frames: make(chan ports.ScreenFrame, 16)}
}

// Launch records the launch options.
func (b *Browser) Launch(_ context.Context, opts ports.BrowserOptions) error {
	b.LaunchCalled = true
	b.LaunchedOpts = opts
	return b.LaunchErr
}

// Navigate records the URL.
func (b *Browser) Navigate(url string) error {
	b.NavigatedURL = url
	return b.NavigateErr
}

// StartScreencast returns the scripted frame stream.
func (b *Browser) StartScreencast(quality, maxWidth, maxHeight int) (<-chan ports.ScreenFrame, error) {
	if b.ScreencastErr != nil {
		return nil, b.ScreencastErr
	}
	return b.Frames, nil
}

// StopScreencast records the call.
func (b *Browser) StopScreencast() error {
	b.StopCalled = true
	return nil
}

// Close records the call and ends the frame stream.
func (b *Browser) Close() error {
	b.CloseCalled = true
	b.CloseFrames()
	return nil
}

// CloseFrames ends the frame stream. Safe to call more than once.
func (b *Browser) CloseFrames() {
	b.closeOnce.Do(func() { close(b.Frames) })
}
