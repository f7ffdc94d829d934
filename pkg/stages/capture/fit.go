package capture

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/user/ftcast/pkg/pipeline"
)

// FitMode selects how a capture is mapped onto the screen when the
// aspect ratios differ.
type FitMode int

const (
	// FitLetterbox scales the capture to fit entirely inside the screen,
	// padding the remainder with black.
	FitLetterbox FitMode = iota
	// FitCrop scales the capture to cover the whole screen, cropping the
	// overflowing edges.
	FitCrop
)

// ParseFitMode parses a string into a FitMode. Unknown strings fall back
// to FitLetterbox.
func ParseFitMode(s string) FitMode {
	if s == "crop" {
		return FitCrop
	}
	return FitLetterbox
}

// String returns the string representation of the fit mode.
func (m FitMode) String() string {
	if m == FitCrop {
		return "crop"
	}
	return "letterbox"
}

// Fit scales img onto a screen-sized canvas according to mode and
// returns the result as a raw capture of exactly the screen dimensions.
func Fit(img image.Image, screen pipeline.Dimension, mode FitMode) pipeline.RawCapture {
	dst := image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))

	src := img.Bounds()
	sw, sh := src.Dx(), src.Dy()
	if sw > 0 && sh > 0 {
		draw.CatmullRom.Scale(dst, targetRect(sw, sh, screen, mode), img, src, draw.Src, nil)
	}

	return pipeline.RawCapture{
		Width:  screen.Width,
		Height: screen.Height,
		Pix:    dst.Pix,
	}
}

// targetRect computes the destination rectangle for a sw x sh source,
// centered on the screen. For letterbox the rectangle fits inside the
// screen; for crop it covers it and the scaler clips the overflow.
func targetRect(sw, sh int, screen pipeline.Dimension, mode FitMode) image.Rectangle {
	sx := float64(screen.Width) / float64(sw)
	sy := float64(screen.Height) / float64(sh)

	var scale float64
	if mode == FitCrop {
		scale = max(sx, sy)
	} else {
		scale = min(sx, sy)
	}

	w := int(float64(sw)*scale + 0.5)
	h := int(float64(sh)*scale + 0.5)
	x := (screen.Width - w) / 2
	y := (screen.Height - h) / 2

	return image.Rect(x, y, x+w, y+h)
}
