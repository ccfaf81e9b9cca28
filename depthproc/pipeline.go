package depthproc

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultMin is the display floor in millimeters
	DefaultMin = 300

	// DefaultMax is the display ceiling in millimeters
	DefaultMax = 1500
)

// Pipeline is the display chain applied to each depth frame
type Pipeline struct {
	// Min and Max are the display range in millimeters
	Min, Max float64

	// Fill is how invalid samples are replaced
	Fill Filler

	// CropRatio keeps this fraction of each axis from the center of the
	// frame.  Zero or >= 1 disables cropping.
	CropRatio float64
}

// NewPipeline returns a Pipeline with the default display range and a Uniform
// fill from the global random source
func NewPipeline() Pipeline {
	return Pipeline{Min: DefaultMin, Max: DefaultMax, Fill: Filler{Mode: Uniform}}
}

// Validate checks the display range and crop ratio
func (p Pipeline) Validate() error {
	if !(p.Min < p.Max) {
		return errors.Errorf("pipeline min %v must be less than max %v", p.Min, p.Max)
	}
	if p.CropRatio < 0 {
		return errors.Errorf("pipeline crop ratio %v must not be negative", p.CropRatio)
	}
	return nil
}

// Process runs crop, FillInvalid, Clip, and NormalizeMinMax over depth and
// returns a new matrix with every sample in [0, 1].  depth is not modified.
func (p Pipeline) Process(depth *mat.Dense) (*mat.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := depth
	if p.CropRatio > 0 && p.CropRatio < 1 {
		var ok bool
		src, ok = CropCenter(depth, p.CropRatio)
		if !ok {
			r, c := depth.Dims()
			return nil, errors.Errorf("crop ratio %v leaves no pixels of a %dx%d frame", p.CropRatio, r, c)
		}
	}
	work := mat.DenseCopyOf(src)
	FillInvalid(work, p.Min, p.Max, p.Fill)
	return NormalizeMinMax(Clip(work, p.Min, p.Max), p.Min, p.Max), nil
}
