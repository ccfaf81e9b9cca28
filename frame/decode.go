package frame

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DecodeDepth shapes a flat, row major depth buffer into a matrix.
// The samples are copied; buf may be reused by the caller afterwards.
// NaN samples are preserved.
func DecodeDepth(buf []float32, s Shape) (*mat.Dense, error) {
	if s.Channels != 1 || len(buf) != s.Len() {
		return nil, errors.Wrapf(ErrShapeMismatch, "depth buffer holds %d samples, shape %v needs %d", len(buf), s, s.Len())
	}
	data := make([]float64, len(buf))
	for idx, v := range buf {
		data[idx] = float64(v)
	}
	return mat.NewDense(s.Rows, s.Cols, data), nil
}

// DecodeVisible shapes a flat interleaved RGB buffer into an RGB image.
// The bytes are copied.
func DecodeVisible(buf []uint8, s Shape) (*RGB, error) {
	if s.Channels != 3 || len(buf) != s.Len() {
		return nil, errors.Wrapf(ErrShapeMismatch, "visible buffer holds %d bytes, shape %v needs %d", len(buf), s, s.Len())
	}
	pix := make([]uint8, len(buf))
	copy(pix, buf)
	return &RGB{Pix: pix, Width: s.Cols, Height: s.Rows}, nil
}

// DecodeInfrared shapes a flat infrared buffer into a 16-bit gray image.
// image.Gray16 stores big-endian pixels, so this is a copy with a byte swap
// on little-endian hosts.
func DecodeInfrared(buf []uint16, s Shape) (*image.Gray16, error) {
	if s.Channels != 1 || len(buf) != s.Len() {
		return nil, errors.Wrapf(ErrShapeMismatch, "infrared buffer holds %d samples, shape %v needs %d", len(buf), s, s.Len())
	}
	im := image.NewGray16(image.Rect(0, 0, s.Cols, s.Rows))
	for idx, v := range buf {
		im.Pix[2*idx] = uint8(v >> 8)
		im.Pix[2*idx+1] = uint8(v)
	}
	return im, nil
}

// SplitDual splits a RightLeft infrared frame into its two cameras.
// The right camera occupies the left half of the buffer.
// The returned images share pixels with im.
func SplitDual(im *image.Gray16) (left, right *image.Gray16) {
	b := im.Bounds()
	mid := b.Min.X + b.Dx()/2
	right = im.SubImage(image.Rect(b.Min.X, b.Min.Y, mid, b.Max.Y)).(*image.Gray16)
	left = im.SubImage(image.Rect(mid, b.Min.Y, b.Max.X, b.Max.Y)).(*image.Gray16)
	return left, right
}

// RGB is an 8-bit, 3 channel image with interleaved samples, the layout the
// visible camera produces.  It implements image.Image.
type RGB struct {
	// Pix holds R, G, B for each pixel, row major
	Pix []uint8

	// Width is the width in pixels
	Width int

	// Height is the height in pixels
	Height int
}

// ColorModel satisfies image.Image
func (r *RGB) ColorModel() color.Model { return color.RGBAModel }

// Bounds satisfies image.Image
func (r *RGB) Bounds() image.Rectangle { return image.Rect(0, 0, r.Width, r.Height) }

// At satisfies image.Image
func (r *RGB) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return color.RGBA{}
	}
	i := (y*r.Width + x) * 3
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 255}
}

// BGR returns a copy of the pixels with the channel order swapped, which is
// what OpenCV expects.
func (r *RGB) BGR() []uint8 {
	out := make([]uint8, len(r.Pix))
	for i := 0; i+2 < len(r.Pix); i += 3 {
		out[i], out[i+1], out[i+2] = r.Pix[i+2], r.Pix[i+1], r.Pix[i]
	}
	return out
}
