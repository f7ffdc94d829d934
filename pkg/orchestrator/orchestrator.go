// Package orchestrator runs the capture-to-wire streaming pipeline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ideamans/go-l10n"

	"github.com/user/ftcast/pkg/pipeline"
	"github.com/user/ftcast/pkg/ports"
	"github.com/user/ftcast/pkg/stages/transmit"
)

// FrameSource produces screen-sized raw captures.
type FrameSource interface {
	Start(ctx context.Context) error
	NextFrame(ctx context.Context) (pipeline.RawCapture, error)
	Close() error
}

// FrameSink delivers encoded frames to the display endpoint.
type FrameSink interface {
	Send(ctx context.Context, frame pipeline.WireFrame) transmit.SendResult
	Close() error
}

// Orchestrator wires the frame source, the encoder and the sink into two
// concurrent activities joined by a capacity-1 latest-wins mailbox:
// the pipeline always prefers freshness over completeness and never
// accumulates a backlog of stale frames.
type Orchestrator struct {
	source  FrameSource
	encoder pipeline.Stage[pipeline.RawCapture, pipeline.WireFrame]
	sink    FrameSink
	logger  ports.Logger
}

// New creates a new Orchestrator.
func New(
	source FrameSource,
	encoder pipeline.Stage[pipeline.RawCapture, pipeline.WireFrame],
	sink FrameSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:  source,
		encoder: encoder,
		sink:    sink,
		logger:  logger,
	}
}

// Run starts the pipeline and blocks until ctx is cancelled or a fatal
// error occurs. Cancellation is cooperative: the source stops producing,
// any in-flight send completes or fails, and the connection is released
// before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.logger.Info(l10n.T("Starting pipeline"))

	if err := o.source.Start(ctx); err != nil {
		o.logger.Error(l10n.F("Failed to start frame source: %s", err))
		return fmt.Errorf("start frame source: %w", err)
	}
	defer o.source.Close()
	defer o.sink.Close()

	mailbox := pipeline.NewMailbox[pipeline.WireFrame]()
	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	// Capture and encode. A fatal source or encoder error cancels the
	// whole pipeline.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			capture, err := o.source.NextFrame(ctx)
			if err != nil {
				errCh <- filterCancel(err, "frame source")
				return
			}
			frame, err := o.encoder.Execute(ctx, capture)
			if err != nil {
				errCh <- fmt.Errorf("encode frame: %w", err)
				return
			}
			mailbox.Put(frame)
		}
	}()

	// Transmit. Drops are observable through logging only and never
	// terminate the pipeline.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			frame, err := mailbox.Get(ctx)
			if err != nil {
				errCh <- nil
				return
			}
			o.sink.Send(ctx, frame)
		}
	}()

	wg.Wait()
	close(errCh)

	if dropped := mailbox.Drops(); dropped > 0 {
		o.logger.Debug("Dropped %d stale frames before transmission", dropped)
	}

	for err := range errCh {
		if err != nil {
			o.logger.Error(l10n.F("Pipeline failed: %s", err))
			return err
		}
	}

	o.logger.Info(l10n.T("Pipeline stopped"))
	return nil
}

// filterCancel maps cooperative-shutdown errors to nil so that Run
// reports a clean stop, and wraps everything else.
func filterCancel(err error, stage string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("%s: %w", stage, err)
}
