/*Package structure exposes control of Structure Core depth cameras in Go.

The vendor SDK is reached through a small C shim (libstructure_camera) which
keeps the capture session and its settings.  Driver is that shim's surface;
Native calls the real library and Mock simulates a camera for tests and for
hosts without the SDK.

A Session owns the started/stopped state on top of a Driver.  Settings which
shape the stream (resolution, range, calibration, correction toggles, enabled
sensors, infrared mode) may only be changed while stopped, and frames may only
be read while started.  Breaking either rule is a programming error and
panics with a *ContractViolation.  Exposure and gain may be changed at any
time.

*/
package structure

import "github.com/pkg/errors"

// ErrNativeUnavailable is returned by NewNative when the binary was built
// without the structurecore tag
var ErrNativeUnavailable = errors.New("built without the structurecore tag, the native driver is unavailable")

// Driver is the C shim's interface.  Integer settings use the shim's
// SC_* constant values; exposures are seconds.
//
// The Last*Frame methods copy the most recent frame into out, which must be
// exactly as long as the active shape needs, and return false if no frame
// has arrived yet.
type Driver interface {
	Start() bool
	Stop()

	LastDepthFrame(out []float32) bool
	LastVisibleFrame(out []uint8) bool
	LastInfraredFrame(out []uint16) bool

	VisibleExposure() float32
	SetVisibleExposure(seconds float32)
	VisibleGain() float32
	SetVisibleGain(multiplier float32)
	InfraredExposure() float32
	SetInfraredExposure(seconds float32)
	InfraredGain() float32
	SetInfraredGain(multiplier float32)

	DepthResolution() int
	SetDepthResolution(int)
	DepthRange() int
	SetDepthRange(int)
	CalibrationMode() int
	SetCalibrationMode(int)
	InfraredMode() int
	SetInfraredMode(int)

	DepthCorrection() bool
	SetDepthCorrection(bool)
	GammaCorrection() bool
	SetGammaCorrection(bool)
	InfraredAutoExposure() bool
	SetInfraredAutoExposure(bool)
	VisibleEnabled() bool
	SetVisibleEnabled(bool)
	InfraredEnabled() bool
	SetInfraredEnabled(bool)
}
