package testpattern

import (
	"bytes"
	"context"
	"image/jpeg"
	"testing"
	"time"

	"github.com/user/ftcast/pkg/ports"
)

func TestSource_ProducesDecodableFrames(t *testing.T) {
	s := New()
	err := s.Launch(context.Background(), ports.BrowserOptions{
		WindowWidth:  64,
		WindowHeight: 32,
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	frames, err := s.StartScreencast(90, 64, 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case frame := <-frames:
		img, err := jpeg.Decode(bytes.NewReader(frame.Data))
		if err != nil {
			t.Fatalf("frame is not valid JPEG: %v", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != 64 || bounds.Dy() != 32 {
			t.Errorf("expected 64x32 frame, got %dx%d", bounds.Dx(), bounds.Dy())
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a pattern frame")
	}
}

func TestSource_LaunchValidatesDimensions(t *testing.T) {
	s := New()
	err := s.Launch(context.Background(), ports.BrowserOptions{WindowWidth: 0, WindowHeight: 32})
	if err == nil {
		t.Error("expected error for zero width")
	}
}

func TestSource_StopEndsStream(t *testing.T) {
	s := New()
	if err := s.Launch(context.Background(), ports.BrowserOptions{
		WindowWidth:  16,
		WindowHeight: 16,
		PollInterval: time.Millisecond,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames, err := s.StartScreencast(80, 16, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.StopScreencast()

	// The channel must close shortly after stopping.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-frames:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("frame channel not closed after stop")
		}
	}
}
