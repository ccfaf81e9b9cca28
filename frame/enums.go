package frame

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Resolution selects the depth frame shape.  Values match the driver's SC_RESOLUTION_* constants.
type Resolution int

const (
	// VGA is 640x480 depth
	VGA Resolution = 1

	// SXGA is 1280x960 depth
	SXGA Resolution = 2
)

func (r Resolution) String() string {
	switch r {
	case VGA:
		return "VGA"
	case SXGA:
		return "SXGA"
	default:
		return "Resolution(" + strconv.Itoa(int(r)) + ")"
	}
}

// ParseResolution accepts the name ("vga", "sxga", case insensitive) or the driver integer
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vga":
		return VGA, nil
	case "sxga":
		return SXGA, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrUnsupportedResolution, "%q", s)
	}
	return Resolution(i), nil
}

// DepthRange is a depth range preset.  Values match SC_DEPTH_RANGE_*.
type DepthRange int

const (
	// RangeVeryShort is an estimated range of 0.35m to 0.92m
	RangeVeryShort DepthRange = iota
	// RangeShort is an estimated range of 0.41m to 1.36m
	RangeShort
	// RangeMedium is an estimated range of 0.52m to 5.23m
	RangeMedium
	// RangeLong is an estimated range of 0.58m to 8.0m
	RangeLong
	// RangeVeryLong is an estimated range of 0.58m to 10.0m
	RangeVeryLong
	// RangeHybrid is an estimated range of 0.35m to 10.0m
	RangeHybrid
	// RangeDefault does not use a preset; the driver uses the provided configuration options
	RangeDefault
)

var depthRangeNames = [...]string{
	"VeryShort",
	"Short",
	"Medium",
	"Long",
	"VeryLong",
	"Hybrid",
	"Default",
}

// estimated working range of each preset in millimeters
var depthRangeBounds = [...][2]float64{
	{350, 920},
	{410, 1360},
	{520, 5230},
	{580, 8000},
	{580, 10000},
	{350, 10000},
}

func (d DepthRange) String() string {
	if d >= 0 && int(d) < len(depthRangeNames) {
		return depthRangeNames[d]
	}
	return "DepthRange(" + strconv.Itoa(int(d)) + ")"
}

// Bounds returns the estimated (min, max) distance in millimeters covered by the preset.
// ok is false for RangeDefault and unknown values, which have no fixed range.
func (d DepthRange) Bounds() (lo, hi float64, ok bool) {
	if d < 0 || int(d) >= len(depthRangeBounds) {
		return 0, 0, false
	}
	b := depthRangeBounds[d]
	return b[0], b[1], true
}

// ParseDepthRange accepts a preset name ("hybrid", "very-short", "VeryShort", ...) or the driver integer
func ParseDepthRange(s string) (DepthRange, error) {
	key := normalizeName(s)
	for i, name := range depthRangeNames {
		if normalizeName(name) == key {
			return DepthRange(i), nil
		}
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 || i >= len(depthRangeNames) {
		return 0, errors.Errorf("unknown depth range %q", s)
	}
	return DepthRange(i), nil
}

// CalibrationMode is the driver's dynamic calibration schedule.  Values match SC_CALIBRATION_*.
type CalibrationMode int

const (
	// CalibrationOff performs no dynamic calibration.  If misalignment of the
	// stereo infrared cameras exceeds 0.1 mm, depth quality may be reduced.
	CalibrationOff CalibrationMode = iota

	// CalibrationOneShot performs a single calibration cycle when depth
	// streaming starts and stores the result on the sensor.
	CalibrationOneShot

	// CalibrationContinuous calibrates continuously while streaming.  The
	// result is not stored on the sensor.
	CalibrationContinuous
)

var calibrationNames = [...]string{"Off", "OneShot", "Continuous"}

func (c CalibrationMode) String() string {
	if c >= 0 && int(c) < len(calibrationNames) {
		return calibrationNames[c]
	}
	return "CalibrationMode(" + strconv.Itoa(int(c)) + ")"
}

// ParseCalibrationMode accepts "off", "oneshot"/"one-shot", "continuous" or the driver integer
func ParseCalibrationMode(s string) (CalibrationMode, error) {
	key := normalizeName(s)
	for i, name := range calibrationNames {
		if normalizeName(name) == key {
			return CalibrationMode(i), nil
		}
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 || i >= len(calibrationNames) {
		return 0, errors.Errorf("unknown calibration mode %q", s)
	}
	return CalibrationMode(i), nil
}

// InfraredMode selects which infrared camera(s) are streamed.  Values match SC_INFRARED_MODE_*.
type InfraredMode int

const (
	// InfraredLeft streams the left infrared camera
	InfraredLeft InfraredMode = iota

	// InfraredRight streams the right infrared camera
	InfraredRight

	// InfraredRightLeft streams both side by side in one frame of doubled width
	InfraredRightLeft
)

var infraredNames = [...]string{"Left", "Right", "RightLeft"}

func (m InfraredMode) String() string {
	if m >= 0 && int(m) < len(infraredNames) {
		return infraredNames[m]
	}
	return "InfraredMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseInfraredMode accepts "left", "right", "rightleft"/"right-left" or the driver integer
func ParseInfraredMode(s string) (InfraredMode, error) {
	key := normalizeName(s)
	for i, name := range infraredNames {
		if normalizeName(name) == key {
			return InfraredMode(i), nil
		}
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(ErrUnsupportedInfraredMode, "%q", s)
	}
	return InfraredMode(i), nil
}

// normalizeName lowercases and drops separators so "Very-Short", "very_short" and "VeryShort" compare equal
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
