package depthproc

import (
	"encoding/json"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Gray renders a normalized matrix as an 8-bit image.  Samples are scaled from
// [0, 1] to [0, 255]; values outside are saturated and NaN is black.
func Gray(m mat.Matrix) *image.Gray {
	rows, cols := m.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := m.At(y, x)
			if math.IsNaN(v) {
				continue
			}
			img.Pix[y*img.Stride+x] = to8(v)
		}
	}
	return img
}

// Colorize renders a normalized matrix with a hue ramp, near samples warm and
// far samples blue.  NaN samples are left transparent.
func Colorize(m mat.Matrix) *image.RGBA {
	rows, cols := m.Dims()
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := m.At(y, x)
			if math.IsNaN(v) {
				continue
			}
			v = math.Max(0, math.Min(1, v))
			r, g, b := colorful.Hsv(30+200*v, 1, 1).RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// Thumbnail scales img to the given width, preserving aspect ratio.
// width <= 0 returns img as is.
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || width == img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Box)
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Summary describes the valid samples of a frame
type Summary struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	Valid   int     `json:"valid"`
	Invalid int     `json:"invalid"`
}

// Stats summarizes m ignoring NaN.  With no valid samples Min, Max, and Mean
// are NaN.
func Stats(m mat.Matrix) Summary {
	rows, cols := m.Dims()
	valid := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := m.At(i, j); !math.IsNaN(v) {
				valid = append(valid, v)
			}
		}
	}
	s := Summary{Valid: len(valid), Invalid: rows*cols - len(valid)}
	if len(valid) == 0 {
		s.Min, s.Max, s.Mean = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(valid)
	s.Max = floats.Max(valid)
	s.Mean = stat.Mean(valid, nil)
	return s
}

// MarshalJSON writes NaN statistics as null, JSON has no NaN
func (s Summary) MarshalJSON() ([]byte, error) {
	orNull := func(f float64) *float64 {
		if math.IsNaN(f) {
			return nil
		}
		return &f
	}
	return json.Marshal(struct {
		Min     *float64 `json:"min"`
		Max     *float64 `json:"max"`
		Mean    *float64 `json:"mean"`
		Valid   int      `json:"valid"`
		Invalid int      `json:"invalid"`
	}{orNull(s.Min), orNull(s.Max), orNull(s.Mean), s.Valid, s.Invalid})
}
