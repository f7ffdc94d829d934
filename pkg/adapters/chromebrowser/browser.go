// Package chromebrowser provides a rendering surface implementation
// using chromedp and the CDP screencast.
package chromebrowser

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/ftcast/pkg/ports"
)

// minWindowWidth is the minimum window width for Chrome headless mode.
const minWindowWidth = 500

// frameBuffer is the screencast channel capacity. The downstream
// pipeline keeps only the newest frame anyway, so a small buffer is
// enough to decouple the CDP event handler from the consumer.
const frameBuffer = 8

// Browser implements ports.Browser using chromedp.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	screencastChan   chan ports.ScreenFrame
	screencastMu     sync.Mutex
	screencastActive bool

	ackChan chan int64
}

// New creates a new Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts the browser with the given options.
func (b *Browser) Launch(ctx context.Context, opts ports.BrowserOptions) error {
	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("safebrowsing-disable-auto-update", true),
		chromedp.Flag("hide-scrollbars", true),
	}

	if opts.Headless {
		// Use new headless mode for better compatibility
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}

	// Resolve Chrome path: config option → CHROME_PATH env → system defaults
	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return fmt.Errorf("chrome not found: please install Chrome/Chromium, set CHROME_PATH environment variable, or use --chrome-path")
	}
	chromedpOpts = append(chromedpOpts, chromedp.ExecPath(chromePath))

	if opts.Incognito {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("incognito", true))
	}

	if opts.UserAgent != "" {
		chromedpOpts = append(chromedpOpts, chromedp.UserAgent(opts.UserAgent))
	}

	// The window drives the rendered page size; the screencast's
	// maxWidth/maxHeight downscale it to the display. Chrome headless
	// refuses very small windows, so scale up preserving aspect.
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		w, h := opts.WindowWidth, opts.WindowHeight
		if w < minWindowWidth {
			scale := float64(minWindowWidth) / float64(w)
			w = minWindowWidth
			h = int(float64(opts.WindowHeight)*scale + 0.5)
		}
		chromedpOpts = append(chromedpOpts,
			chromedp.WindowSize(w, h),
			chromedp.Flag("window-size", fmt.Sprintf("%d,%d", w, h)))
	}

	if opts.IgnoreHTTPSErrors {
		chromedpOpts = append(chromedpOpts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("ignore-certificate-errors-spki-list", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}

	if opts.ProxyServer != "" {
		chromedpOpts = append(chromedpOpts,
			chromedp.Flag("proxy-server", opts.ProxyServer))
	}

	// Flags for server/background/container execution
	chromedpOpts = append(chromedpOpts,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-namespace-sandbox", true),
		chromedp.Flag("disable-seccomp-filter-sandbox", true),
		chromedp.Flag("no-zygote", true),
	)

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	b.ctx, b.cancel = chromedp.NewContext(b.allocCtx)

	// Start the browser process so a crashed launch fails here, not on
	// the first navigation.
	if err := chromedp.Run(b.ctx, network.Enable()); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}

	return nil
}

// Navigate loads the specified URL.
func (b *Browser) Navigate(url string) error {
	return chromedp.Run(b.ctx, chromedp.Navigate(url))
}

// StartScreencast begins the CDP screencast and returns the frame
// channel. Frames arrive at the page's own repaint cadence; each one is
// acknowledged so Chrome keeps producing.
func (b *Browser) StartScreencast(quality, maxWidth, maxHeight int) (<-chan ports.ScreenFrame, error) {
	b.screencastMu.Lock()
	defer b.screencastMu.Unlock()

	if b.screencastActive {
		return nil, fmt.Errorf("screencast already active")
	}

	b.screencastChan = make(chan ports.ScreenFrame, frameBuffer)
	b.screencastActive = true
	b.ackChan = make(chan int64, frameBuffer)

	startTime := time.Now()

	chromedp.ListenTarget(b.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *inspector.EventTargetCrashed:
			// Renderer is gone; closing the channel tells the consumer
			// the surface is lost instead of leaving it waiting.
			b.closeScreencast()

		case *page.EventScreencastFrame:
			data, err := base64.StdEncoding.DecodeString(e.Data)
			if err != nil {
				return
			}

			frame := ports.ScreenFrame{
				TimestampMs: int(time.Since(startTime).Milliseconds()),
				Data:        data,
			}

			b.screencastMu.Lock()
			if b.screencastActive {
				select {
				case b.screencastChan <- frame:
				default:
					// Channel full, skip frame
				}
			}
			b.screencastMu.Unlock()

			// Acknowledge frame (do this even if the frame was skipped)
			b.enqueueAck(e.SessionID)
		}
	})

	// A dropped CDP connection cancels the tab context without any
	// further events, so watch it separately.
	go b.watchSurface(b.ctx)
	go b.ackLoop(b.ctx)

	err := chromedp.Run(b.ctx,
		page.StartScreencast().
			WithFormat(page.ScreencastFormatJpeg).
			WithQuality(int64(quality)).
			WithMaxWidth(int64(maxWidth)).
			WithMaxHeight(int64(maxHeight)).
			WithEveryNthFrame(1),
	)
	if err != nil {
		b.screencastActive = false
		close(b.screencastChan)
		return nil, fmt.Errorf("start screencast: %w", err)
	}

	return b.screencastChan, nil
}

// closeScreencast closes the frame channel exactly once. Stop, browser
// crash and connection loss all funnel through here.
func (b *Browser) closeScreencast() {
	b.screencastMu.Lock()
	defer b.screencastMu.Unlock()

	if !b.screencastActive {
		return
	}
	b.screencastActive = false
	close(b.screencastChan)
}

// watchSurface closes the frame channel when the tab context ends.
// Chrome dying takes the CDP connection down with it, which cancels
// the context without delivering any crash event.
func (b *Browser) watchSurface(ctx context.Context) {
	<-ctx.Done()
	b.closeScreencast()
}

// enqueueAck hands a frame ack to the ack worker without blocking the
// event handler. A full queue means the connection is already stalled,
// so dropping the ack loses nothing.
func (b *Browser) enqueueAck(sessionID int64) {
	select {
	case b.ackChan <- sessionID:
	default:
	}
}

// ackLoop acknowledges screencast frames from a single goroutine so a
// stalled CDP connection cannot pile up ack senders.
func (b *Browser) ackLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sessionID := <-b.ackChan:
			chromedp.Run(ctx, page.ScreencastFrameAck(sessionID))
		}
	}
}

// StopScreencast stops the screencast capture.
func (b *Browser) StopScreencast() error {
	b.screencastMu.Lock()
	active := b.screencastActive
	b.screencastMu.Unlock()

	if !active {
		return nil
	}

	if b.ctx != nil {
		// Stop screencast with timeout to prevent hanging
		stopCtx, cancel := context.WithTimeout(b.ctx, 5*time.Second)
		chromedp.Run(stopCtx, page.StopScreencast())
		cancel()
	}

	b.closeScreencast()

	return nil
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	b.StopScreencast()

	// Cancel browser context first
	if b.cancel != nil {
		b.cancel()
	}

	// Give Chrome a moment to shut down gracefully, then force kill
	time.Sleep(100 * time.Millisecond)

	if b.allocCancel != nil {
		b.allocCancel()
	}

	return nil
}

var _ ports.Browser = (*Browser)(nil)
