/*Package depthproc post-processes depth frames for display.

Frames are gonum matrices of millimeters with NaN marking pixels the sensor
could not measure.  The display pipeline is

	crop (optional) -> FillInvalid -> Clip -> NormalizeMinMax

after which every sample lies in [0, 1] and can be rendered with Gray or
Colorize.

NaN handling: FillInvalid is the only step that removes NaN.  Clip and
NormalizeMinMax propagate NaN unchanged, because every comparison against
NaN is false.  A Normal fill may land outside [min, max]; the Clip that
follows it in the pipeline brings it back in range.
*/
package depthproc

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nasa-jpl/structurecam/mathx"
)

// FillMode is the way invalid (NaN) samples are replaced
type FillMode int

const (
	// Uniform draws each replacement from U[min, max]
	Uniform FillMode = iota

	// Normal draws each replacement from N(mid, (max-mid)/4), where mid is
	// the center of the range.  About 98% of draws fall in [min, max];
	// the rest are left for Clip.
	Normal

	// Constant sets every invalid sample to Filler.Constant
	Constant
)

func (f FillMode) String() string {
	switch f {
	case Uniform:
		return "uniform"
	case Normal:
		return "normal"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// ParseFillMode converts a config string to a FillMode.  "random" is
// accepted as an alias of "uniform".
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform", "random", "":
		return Uniform, nil
	case "normal", "gaussian":
		return Normal, nil
	case "constant":
		return Constant, nil
	default:
		return 0, errors.Errorf("unknown fill mode %q, must be one of uniform, normal, constant", s)
	}
}

// Filler describes how FillInvalid replaces NaN samples
type Filler struct {
	// Mode selects the distribution
	Mode FillMode

	// Constant is the replacement value in Constant mode
	Constant float64

	// Src is the random source for Uniform and Normal.  If nil, the global
	// math/rand/v2 source is used.  Tests inject a seeded *rand.PCG.
	Src rand.Source
}

// FillInvalid replaces every NaN in m, in place, and returns how many were
// replaced.  Other samples are not touched.
//
// Uniform and Normal draw one value per invalid sample.  Normal draws are not
// clipped to [lo, hi].  Unknown modes replace nothing.
func FillInvalid(m *mat.Dense, lo, hi float64, f Filler) int {
	var draw func() float64
	switch f.Mode {
	case Uniform:
		dist := distuv.Uniform{Min: lo, Max: hi, Src: f.Src}
		draw = dist.Rand
	case Normal:
		mean := (lo + hi) / 2
		dist := distuv.Normal{Mu: mean, Sigma: (hi - mean) / 4, Src: f.Src}
		draw = dist.Rand
	case Constant:
		c := f.Constant
		draw = func() float64 { return c }
	default:
		return 0
	}

	raw := m.RawMatrix()
	n := 0
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = draw()
				n++
			}
		}
	}
	return n
}

// Clip returns a new matrix with every sample of m clamped to [lo, hi].
// m is not modified.  NaN samples stay NaN.
func Clip(m mat.Matrix, lo, hi float64) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return mathx.Clamp(v, lo, hi)
	}, m)
	return &out
}

// NormalizeMinMax returns a new matrix holding (v-lo)/(hi-lo) for every
// sample v of m.  Results are in [0, 1] only when m is already within
// [lo, hi], i.e. after Clip.  lo == hi is a caller error and produces
// Inf or NaN samples.
func NormalizeMinMax(m mat.Matrix, lo, hi float64) *mat.Dense {
	span := hi - lo
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return (v - lo) / span
	}, m)
	return &out
}

// CropCenter keeps floor(dim*ratio) rows and columns from the middle of m.
// The margin is split with integer division, so when it is odd the extra
// pixel is removed from the bottom / right.  The result is a view sharing
// storage with m.
//
// ratio is capped at 1.  gonum has no empty matrix, so when ratio is not
// positive (or NaN), or either kept dimension floors to zero, ok is false and
// the returned matrix is nil.
func CropCenter(m *mat.Dense, ratio float64) (cropped *mat.Dense, ok bool) {
	if !(ratio > 0) {
		return nil, false
	}
	if ratio > 1 {
		ratio = 1
	}
	rows, cols := m.Dims()
	keptRows := int(math.Floor(float64(rows) * ratio))
	keptCols := int(math.Floor(float64(cols) * ratio))
	if keptRows == 0 || keptCols == 0 {
		return nil, false
	}
	top := (rows - keptRows) / 2
	left := (cols - keptCols) / 2
	return m.Slice(top, top+keptRows, left, left+keptCols).(*mat.Dense), true
}
