package encode

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/user/ftcast/pkg/pipeline"
)

// solidCapture builds a capture filled with a single RGBA color.
func solidCapture(w, h int, r, g, b byte) pipeline.RawCapture {
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i] = r
		pix[i+1] = g
		pix[i+2] = b
		pix[i+3] = 0xff
	}
	return pipeline.RawCapture{Width: w, Height: h, Pix: pix}
}

func TestStage_Execute_Header(t *testing.T) {
	stage := NewStage(pipeline.Dimension{Width: 64, Height: 32})

	frame, err := stage.Execute(context.Background(), solidCapture(64, 32, 255, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	header := []byte("P6 64 32 255\n")
	if !bytes.HasPrefix(frame.Data, header) {
		t.Errorf("expected header %q, got %q", header, frame.Data[:len(header)])
	}
	if got, want := len(frame.Data), len(header)+64*32*3; got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
}

func TestStage_Execute_SolidColors(t *testing.T) {
	stage := NewStage(pipeline.Dimension{Width: 64, Height: 32})

	tests := []struct {
		name    string
		r, g, b byte
	}{
		{"red", 255, 0, 0},
		{"green", 0, 255, 0},
		{"blue", 0, 0, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := stage.Execute(context.Background(), solidCapture(64, 32, tt.r, tt.g, tt.b))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			payload := frame.Data[len("P6 64 32 255\n"):]
			if len(payload) != 64*32*3 {
				t.Fatalf("expected payload of %d bytes, got %d", 64*32*3, len(payload))
			}
			for i := 0; i < len(payload); i += 3 {
				if payload[i] != tt.r || payload[i+1] != tt.g || payload[i+2] != tt.b {
					t.Fatalf("pixel %d: expected (%d,%d,%d), got (%d,%d,%d)",
						i/3, tt.r, tt.g, tt.b, payload[i], payload[i+1], payload[i+2])
				}
			}
		})
	}
}

func TestStage_Execute_Deterministic(t *testing.T) {
	stage := NewStage(pipeline.Dimension{Width: 16, Height: 16})

	capture := solidCapture(16, 16, 10, 20, 30)
	// Sprinkle in some structure so determinism is not trivially a
	// property of uniform input.
	for i := 0; i < len(capture.Pix); i += 4 {
		capture.Pix[i] = byte(i)
	}

	first, err := stage.Execute(context.Background(), capture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := stage.Execute(context.Background(), capture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first.Data, second.Data) {
		t.Error("expected byte-identical output for identical input")
	}
}

func TestStage_Execute_AlphaDiscarded(t *testing.T) {
	stage := NewStage(pipeline.Dimension{Width: 2, Height: 1})

	capture := pipeline.RawCapture{
		Width:  2,
		Height: 1,
		Pix: []byte{
			1, 2, 3, 0x80, // alpha must not leak into the payload
			4, 5, 6, 0x00,
		},
	}

	frame, err := stage.Execute(context.Background(), capture)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := frame.Data[len("P6 2 1 255\n"):]
	want := []byte{1, 2, 3, 4, 5, 6}
	if !bytes.Equal(payload, want) {
		t.Errorf("expected payload %v, got %v", want, payload)
	}
}

func TestStage_Execute_DimensionMismatch(t *testing.T) {
	stage := NewStage(pipeline.Dimension{Width: 64, Height: 32})

	tests := []struct {
		name    string
		capture pipeline.RawCapture
	}{
		{"wrong width", solidCapture(63, 32, 0, 0, 0)},
		{"wrong height", solidCapture(64, 33, 0, 0, 0)},
		{"transposed", solidCapture(32, 64, 0, 0, 0)},
		{"short buffer", pipeline.RawCapture{Width: 64, Height: 32, Pix: make([]byte, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stage.Execute(context.Background(), tt.capture)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}
