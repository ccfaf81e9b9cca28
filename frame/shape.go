/*Package frame holds the in-memory frame types produced by the Structure
camera and the shape table used to turn the driver's flat buffers into them.

The driver fills caller-owned, fixed-size, row major buffers:

	depth     float32, millimeters, NaN where the sensor has no estimate
	visible   uint8, interleaved RGB
	infrared  uint16

Depth frames become gonum *mat.Dense (rows = height), visible frames *RGB and
infrared frames *image.Gray16.  The shape of each buffer is fixed by the
resolution or infrared mode that was configured before streaming started:

	stream    selector             rows  cols  channels
	depth     VGA                   480   640  1
	depth     SXGA                  960  1280  1
	visible   (fixed)               480   640  3
	infrared  Left, Right           960  1280  1
	infrared  RightLeft             960  2560  1
*/
package frame

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedResolution is generated when a depth resolution has no entry in the shape table
	ErrUnsupportedResolution = errors.New("not supported resolution")

	// ErrUnsupportedInfraredMode is generated when an infrared mode has no entry in the shape table
	ErrUnsupportedInfraredMode = errors.New("not supported infrared mode")

	// ErrShapeMismatch is generated when a buffer does not hold exactly the samples its shape needs
	ErrShapeMismatch = errors.New("buffer length does not match frame shape")
)

// Shape is the geometry of a frame buffer
type Shape struct {
	// Rows is the frame height in pixels
	Rows int `json:"rows"`

	// Cols is the frame width in pixels
	Cols int `json:"cols"`

	// Channels is the number of interleaved samples per pixel
	Channels int `json:"channels"`
}

// Len is the number of samples a buffer of this shape holds
func (s Shape) Len() int {
	return s.Rows * s.Cols * s.Channels
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Rows, s.Cols, s.Channels)
}

var (
	depthShapes = map[Resolution]Shape{
		VGA:  {Rows: 480, Cols: 640, Channels: 1},
		SXGA: {Rows: 960, Cols: 1280, Channels: 1},
	}

	infraredShapes = map[InfraredMode]Shape{
		InfraredLeft:      {Rows: 960, Cols: 1280, Channels: 1},
		InfraredRight:     {Rows: 960, Cols: 1280, Channels: 1},
		InfraredRightLeft: {Rows: 960, Cols: 2560, Channels: 1},
	}

	// VisibleShape is the fixed shape of the visible (color) stream
	VisibleShape = Shape{Rows: 480, Cols: 640, Channels: 3}
)

// DepthShape returns the depth frame shape for a resolution
func DepthShape(r Resolution) (Shape, error) {
	s, ok := depthShapes[r]
	if !ok {
		return Shape{}, errors.Wrapf(ErrUnsupportedResolution, "resolution %d", int(r))
	}
	return s, nil
}

// InfraredShape returns the infrared frame shape for a mode
func InfraredShape(m InfraredMode) (Shape, error) {
	s, ok := infraredShapes[m]
	if !ok {
		return Shape{}, errors.Wrapf(ErrUnsupportedInfraredMode, "mode %d", int(m))
	}
	return s, nil
}

// MaxDepthLen is the largest depth buffer any resolution needs.
// A buffer this large can be reused across resolution changes.
func MaxDepthLen() int {
	max := 0
	for _, s := range depthShapes {
		if l := s.Len(); l > max {
			max = l
		}
	}
	return max
}

// MaxInfraredLen is the largest infrared buffer any mode needs
func MaxInfraredLen() int {
	max := 0
	for _, s := range infraredShapes {
		if l := s.Len(); l > max {
			max = l
		}
	}
	return max
}
