package pipeline

// Dimension represents width and height in pixels.
type Dimension struct {
	Width  int
	Height int
}

// RawCapture is a decoded bitmap produced by the frame source and
// consumed by the encoder. Pix holds RGBA samples, 4 bytes per pixel,
// row-major, top-to-bottom, with no padding between rows.
//
// A RawCapture is owned by exactly one stage at a time and is discarded
// after encoding.
type RawCapture struct {
	Width  int
	Height int
	Pix    []byte
}

// WireFrame is an encoded frame ready for transmission: an ASCII header
// followed by Width*Height*3 packed RGB bytes. Data is sent to the
// display endpoint verbatim and must not be modified after construction.
type WireFrame struct {
	Width  int
	Height int
	Data   []byte
}
