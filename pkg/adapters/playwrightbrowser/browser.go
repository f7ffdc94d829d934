// Package playwrightbrowser provides a rendering surface implementation
// that drives Chromium through Playwright and captures frames by
// polling screenshots at a fixed interval.
package playwrightbrowser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/user/ftcast/pkg/ports"
)

// defaultPollInterval is used when the options leave the cadence unset.
const defaultPollInterval = 100 * time.Millisecond

// Browser implements ports.Browser using playwright-go.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	pollInterval time.Duration

	mu     sync.Mutex
	active bool
	frames chan ports.ScreenFrame
	stop   chan struct{}
}

// New creates a new Browser.
func New() *Browser {
	return &Browser{}
}

// Launch starts Playwright and a Chromium instance with a viewport
// matching the requested window size.
func (b *Browser) Launch(_ context.Context, opts ports.BrowserOptions) error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	b.pw = pw

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ProxyServer != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}
	b.browser = browser

	pageOpts := playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{
			Width:  opts.WindowWidth,
			Height: opts.WindowHeight,
		},
	}
	if opts.UserAgent != "" {
		pageOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.IgnoreHTTPSErrors {
		pageOpts.IgnoreHttpsErrors = playwright.Bool(true)
	}

	page, err := browser.NewPage(pageOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("open page: %w", err)
	}
	b.page = page

	b.pollInterval = opts.PollInterval
	if b.pollInterval <= 0 {
		b.pollInterval = defaultPollInterval
	}

	return nil
}

// Navigate loads the specified URL.
func (b *Browser) Navigate(url string) error {
	if _, err := b.page.Goto(url); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

// StartScreencast begins polling screenshots at the configured interval.
func (b *Browser) StartScreencast(quality, maxWidth, maxHeight int) (<-chan ports.ScreenFrame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active {
		return nil, fmt.Errorf("screencast already active")
	}

	b.frames = make(chan ports.ScreenFrame, 1)
	b.stop = make(chan struct{})
	b.active = true

	go b.pollLoop(quality)

	return b.frames, nil
}

// pollLoop captures one screenshot per tick until stopped. Screenshot
// failures end the loop and close the frame channel, which downstream
// treats as source loss.
func (b *Browser) pollLoop(quality int) {
	defer close(b.frames)

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	startTime := time.Now()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			data, err := b.page.Screenshot(playwright.PageScreenshotOptions{
				Type:    playwright.ScreenshotTypeJpeg,
				Quality: playwright.Int(quality),
			})
			if err != nil {
				return
			}

			frame := ports.ScreenFrame{
				TimestampMs: int(time.Since(startTime).Milliseconds()),
				Data:        data,
			}
			select {
			case b.frames <- frame:
			default:
				// Consumer busy, skip frame
			}
		}
	}
}

// StopScreencast stops the polling loop.
func (b *Browser) StopScreencast() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return nil
	}
	b.active = false
	close(b.stop)

	return nil
}

// Close shuts down the page, the browser and the Playwright driver.
func (b *Browser) Close() error {
	b.StopScreencast()

	if b.page != nil {
		b.page.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
	if b.pw != nil {
		return b.pw.Stop()
	}
	return nil
}

var _ ports.Browser = (*Browser)(nil)
