package capture

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/ftcast/pkg/pipeline"
)

// solidImage builds a uniformly colored test image.
func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFit_ExactDimensions(t *testing.T) {
	screen := pipeline.Dimension{Width: 64, Height: 32}
	red := color.RGBA{R: 255, A: 255}

	capture := Fit(solidImage(64, 32, red), screen, FitLetterbox)

	if capture.Width != 64 || capture.Height != 32 {
		t.Fatalf("expected 64x32 capture, got %dx%d", capture.Width, capture.Height)
	}
	if len(capture.Pix) != 64*32*4 {
		t.Fatalf("expected %d pixel bytes, got %d", 64*32*4, len(capture.Pix))
	}
	for i := 0; i < len(capture.Pix); i += 4 {
		if capture.Pix[i] != 255 || capture.Pix[i+1] != 0 || capture.Pix[i+2] != 0 {
			t.Fatalf("pixel %d: expected solid red, got (%d,%d,%d)",
				i/4, capture.Pix[i], capture.Pix[i+1], capture.Pix[i+2])
		}
	}
}

func TestFit_OutputAlwaysScreenSized(t *testing.T) {
	screen := pipeline.Dimension{Width: 64, Height: 32}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	tests := []struct {
		name   string
		w, h   int
		mode   FitMode
	}{
		{"wider than screen, letterbox", 640, 100, FitLetterbox},
		{"taller than screen, letterbox", 100, 640, FitLetterbox},
		{"wider than screen, crop", 640, 100, FitCrop},
		{"taller than screen, crop", 100, 640, FitCrop},
		{"smaller than screen", 10, 10, FitLetterbox},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture := Fit(solidImage(tt.w, tt.h, white), screen, tt.mode)
			if capture.Width != screen.Width || capture.Height != screen.Height {
				t.Errorf("expected %dx%d, got %dx%d",
					screen.Width, screen.Height, capture.Width, capture.Height)
			}
			if len(capture.Pix) != screen.Width*screen.Height*4 {
				t.Errorf("expected %d pixel bytes, got %d",
					screen.Width*screen.Height*4, len(capture.Pix))
			}
		})
	}
}

func TestFit_LetterboxPadsWithBlack(t *testing.T) {
	// A 32x32 white square on a 64x32 screen: 16-pixel black bars left
	// and right.
	screen := pipeline.Dimension{Width: 64, Height: 32}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	capture := Fit(solidImage(32, 32, white), screen, FitLetterbox)

	at := func(x, y int) (byte, byte, byte) {
		i := (y*screen.Width + x) * 4
		return capture.Pix[i], capture.Pix[i+1], capture.Pix[i+2]
	}

	if r, g, b := at(0, 16); r != 0 || g != 0 || b != 0 {
		t.Errorf("expected black bar at left edge, got (%d,%d,%d)", r, g, b)
	}
	if r, g, b := at(63, 16); r != 0 || g != 0 || b != 0 {
		t.Errorf("expected black bar at right edge, got (%d,%d,%d)", r, g, b)
	}
	if r, g, b := at(32, 16); r != 255 || g != 255 || b != 255 {
		t.Errorf("expected white content at center, got (%d,%d,%d)", r, g, b)
	}
}

func TestFit_CropCoversScreen(t *testing.T) {
	// A 32x32 white square cropped onto a 64x32 screen: no black bars.
	screen := pipeline.Dimension{Width: 64, Height: 32}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	capture := Fit(solidImage(32, 32, white), screen, FitCrop)

	for _, x := range []int{0, 32, 63} {
		i := (16*screen.Width + x) * 4
		if capture.Pix[i] != 255 {
			t.Errorf("expected content at x=%d, got channel value %d", x, capture.Pix[i])
		}
	}
}

func TestParseFitMode(t *testing.T) {
	if ParseFitMode("crop") != FitCrop {
		t.Error("expected crop to parse as FitCrop")
	}
	if ParseFitMode("letterbox") != FitLetterbox {
		t.Error("expected letterbox to parse as FitLetterbox")
	}
	if ParseFitMode("") != FitLetterbox {
		t.Error("expected empty string to fall back to FitLetterbox")
	}
}
