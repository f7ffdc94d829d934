// Package main provides the CLI entry point for ftcast.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/ftcast/pkg/adapters/chromebrowser"
	"github.com/user/ftcast/pkg/adapters/logger"
	"github.com/user/ftcast/pkg/adapters/playwrightbrowser"
	"github.com/user/ftcast/pkg/adapters/testpattern"
	"github.com/user/ftcast/pkg/config"
	"github.com/user/ftcast/pkg/orchestrator"
	"github.com/user/ftcast/pkg/ports"
	"github.com/user/ftcast/pkg/stages/capture"
	"github.com/user/ftcast/pkg/stages/encode"
	"github.com/user/ftcast/pkg/stages/transmit"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Cast    CastCmd    `cmd:"" default:"withargs" help:"Stream a web page to a pixel-matrix display."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// CastCmd defines the cast subcommand.
type CastCmd struct {
	// Required arguments (the URL may come from the config file or be
	// omitted for the pattern source)
	URL string `arg:"" optional:"" help:"URL of the page to stream."`

	// Display
	Endpoint *string `short:"e" help:"Display endpoint address (host:port), e.g. localhost:1337."`
	Width    *int    `short:"W" help:"Display width in pixels (default: 64)."`
	Height   *int    `short:"H" help:"Display height in pixels (default: 32)."`
	Fit      *string `help:"How to fit captures to the display: letterbox or crop."`

	// Capture
	Source     *string `short:"s" help:"Frame source backend: chrome, playwright or pattern."`
	Quality    *int    `short:"q" help:"JPEG capture quality 1-100 (default: 100)."`
	IntervalMs *int    `help:"Capture interval for polling sources in milliseconds."`

	// Transmission
	DialTimeoutMs    *int `help:"Connection attempt timeout in milliseconds."`
	WriteTimeoutMs   *int `help:"Frame write timeout in milliseconds."`
	InitialBackoffMs *int `help:"First reconnect delay in milliseconds."`
	MaxBackoffMs     *int `help:"Reconnect delay cap in milliseconds."`

	// Browser options
	NoHeadless        bool   `help:"Run browser in non-headless mode."`
	ChromePath        string `help:"Path to Chrome executable (falls back to CHROME_PATH env, then system default)."`
	UserAgent         string `help:"Custom User-Agent header."`
	IgnoreHTTPSErrors bool   `help:"Ignore HTTPS certificate errors."`
	ProxyServer       string `help:"HTTP proxy server (e.g., http://proxy:8080)."`

	// Configuration file
	Config string `short:"c" type:"existingfile" help:"YAML configuration file."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("ftcast"),
		kong.Description("Stream the live rendering of a web page to a flaschen-taschen style pixel-matrix display."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the cast command.
func (cmd *CastCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	// Pick the frame source backend
	var browser ports.Browser
	switch cfg.Source {
	case config.SourcePlaywright:
		browser = playwrightbrowser.New()
	case config.SourcePattern:
		browser = testpattern.New()
	default:
		browser = chromebrowser.New()
	}

	source := capture.NewSource(browser, log, capture.Options{
		URL:     cfg.URL,
		Screen:  cfg.Screen(),
		Fit:     capture.ParseFitMode(cfg.Fit),
		Quality: cfg.Quality,
		Browser: ports.BrowserOptions{
			Headless:          cfg.Headless,
			ChromePath:        cfg.ChromePath,
			UserAgent:         cfg.UserAgent,
			IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
			ProxyServer:       cfg.ProxyServer,
			Incognito:         true,
			PollInterval:      cfg.PollInterval(),
		},
	})
	encoder := encode.NewStage(cfg.Screen())
	sink := transmit.New(log, cfg.TransmitOptions())
	orch := orchestrator.New(source, encoder, sink, log)

	target := cfg.URL
	if cfg.Source == config.SourcePattern {
		target = "test pattern"
	}
	log.Info(l10n.F("Streaming %s to %s", target, cfg.Endpoint))

	return orch.Run(ctx)
}

// buildConfig merges the optional config file with CLI overrides.
func (cmd *CastCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		loaded, err := config.Load(cmd.Config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.URL != "" {
		cfg.URL = cmd.URL
	}
	if cmd.Endpoint != nil {
		cfg.Endpoint = *cmd.Endpoint
	}
	if cmd.Width != nil {
		cfg.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Height = *cmd.Height
	}
	if cmd.Fit != nil {
		cfg.Fit = *cmd.Fit
	}
	if cmd.Source != nil {
		cfg.Source = *cmd.Source
	}
	if cmd.Quality != nil {
		cfg.Quality = *cmd.Quality
	}
	if cmd.IntervalMs != nil {
		cfg.PollIntervalMs = *cmd.IntervalMs
	}
	if cmd.DialTimeoutMs != nil {
		cfg.DialTimeoutMs = *cmd.DialTimeoutMs
	}
	if cmd.WriteTimeoutMs != nil {
		cfg.WriteTimeoutMs = *cmd.WriteTimeoutMs
	}
	if cmd.InitialBackoffMs != nil {
		cfg.InitialBackoffMs = *cmd.InitialBackoffMs
	}
	if cmd.MaxBackoffMs != nil {
		cfg.MaxBackoffMs = *cmd.MaxBackoffMs
	}
	if cmd.NoHeadless {
		cfg.Headless = false
	}
	if cmd.ChromePath != "" {
		cfg.ChromePath = cmd.ChromePath
	}
	if cmd.UserAgent != "" {
		cfg.UserAgent = cmd.UserAgent
	}
	if cmd.IgnoreHTTPSErrors {
		cfg.IgnoreHTTPSErrors = true
	}
	if cmd.ProxyServer != "" {
		cfg.ProxyServer = cmd.ProxyServer
	}

	return cfg, nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Printf("ftcast %s\n", version)
	return nil
}
