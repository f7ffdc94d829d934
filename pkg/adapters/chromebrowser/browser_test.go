package chromebrowser

import (
	"context"
	"testing"
	"time"

	"github.com/user/ftcast/pkg/ports"
)

// castingBrowser returns a Browser in the state StartScreencast leaves
// it in, without a live Chrome process behind it.
func castingBrowser(ctx context.Context) *Browser {
	return &Browser{
		ctx:              ctx,
		screencastChan:   make(chan ports.ScreenFrame, frameBuffer),
		screencastActive: true,
		ackChan:          make(chan int64, frameBuffer),
	}
}

func TestWatchSurface_ClosesFrameChannelOnContextLoss(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := castingBrowser(ctx)

	go b.watchSurface(ctx)

	// Losing the tab context (browser died, connection dropped) must
	// close the channel so consumers stop waiting for frames.
	cancel()

	select {
	case _, ok := <-b.screencastChan:
		if ok {
			t.Error("expected closed channel, got a frame")
		}
	case <-time.After(time.Second):
		t.Fatal("frame channel not closed after context loss")
	}
}

func TestCloseScreencast_Idempotent(t *testing.T) {
	b := castingBrowser(context.Background())

	b.closeScreencast()
	// The crash event and the context watcher can both fire; the
	// second close must be a no-op, not a panic.
	b.closeScreencast()

	if _, ok := <-b.screencastChan; ok {
		t.Error("expected closed channel")
	}
}

func TestStopScreencast_AfterSurfaceLoss(t *testing.T) {
	b := castingBrowser(context.Background())

	b.closeScreencast()

	if err := b.StopScreencast(); err != nil {
		t.Errorf("StopScreencast after surface loss: %v", err)
	}
}

func TestEnqueueAck_DoesNotBlock(t *testing.T) {
	b := castingBrowser(context.Background())
	b.ackChan = make(chan int64, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.enqueueAck(int64(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueueAck blocked with a full queue")
	}

	if got := len(b.ackChan); got != 2 {
		t.Errorf("expected 2 queued acks, got %d", got)
	}
}
