package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const defaultJPEGQuality = 95

// Frame is a decoded image as delivered by the workflow engine: height rows
// of width pixels, three bytes per pixel in BGR channel order (the OpenCV
// convention the engine uses for its image buffers).
type Frame struct {
	Width  int
	Height int

	// Pix holds interleaved BGR samples, row-major, len == Width*Height*3.
	Pix []byte
}

// FrameFromImage converts a decoded image into the engine's BGR frame layout.
func FrameFromImage(img image.Image) *Frame {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()

	frame := &Frame{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pix:    make([]byte, bounds.Dx()*bounds.Dy()*3),
	}
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			src := nrgba.PixOffset(x, y)
			dst := (y*frame.Width + x) * 3
			frame.Pix[dst+0] = nrgba.Pix[src+2]
			frame.Pix[dst+1] = nrgba.Pix[src+1]
			frame.Pix[dst+2] = nrgba.Pix[src+0]
		}
	}
	return frame
}

// EncodeJPEG reverses the channel order back to RGB and encodes the frame
// as JPEG, which is what the remote service expects as upload payload.
// A quality of zero selects the default.
func (f *Frame) EncodeJPEG(quality int) ([]byte, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if quality == 0 {
		quality = defaultJPEGQuality
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			src := (y*f.Width + x) * 3
			dst := rgba.PixOffset(x, y)
			rgba.Pix[dst+0] = f.Pix[src+2]
			rgba.Pix[dst+1] = f.Pix[src+1]
			rgba.Pix[dst+2] = f.Pix[src+0]
			rgba.Pix[dst+3] = 0xff
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgba, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encoding frame to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *Frame) validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions: %dx%d", f.Width, f.Height)
	}
	if len(f.Pix) != f.Width*f.Height*3 {
		return fmt.Errorf("frame buffer has %d bytes, expected %d for %dx%dx3",
			len(f.Pix), f.Width*f.Height*3, f.Width, f.Height)
	}
	return nil
}
