/*Package camera describes a standard set of interfaces for control of depth
cameras

Lifecycle and the Source interfaces contain the basics needed by a viewer,
while ExposureController contains the sensor controls most rigs also expose.
DepthCamera is the union that the structure Session satisfies.

*/
package camera

import (
	"image"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/frame"
)

// Lifecycle describes a camera which must be started before it streams
type Lifecycle interface {
	// Start asks the driver to begin streaming.  It returns false if the
	// driver refused, in which case the camera remains stopped.
	Start() bool

	// Stop ends streaming.  Stopping a stopped camera is not an error.
	Stop()

	// Started reports if the camera is streaming
	Started() bool
}

// DepthSource produces depth frames in millimeters with NaN holes
type DepthSource interface {
	DepthFrame() (*mat.Dense, error)
}

// VisibleSource produces color frames
type VisibleSource interface {
	VisibleFrame() (*frame.RGB, error)
}

// InfraredSource produces 16-bit infrared frames
type InfraredSource interface {
	InfraredFrame() (*image.Gray16, error)
}

// ExposureController describes the visible and infrared sensor controls.
// These may be used whether or not the camera is streaming.
type ExposureController interface {
	VisibleExposure() time.Duration
	SetVisibleExposure(time.Duration)
	VisibleGain() float64
	SetVisibleGain(float64)

	InfraredExposure() time.Duration
	SetInfraredExposure(time.Duration)
	InfraredGain() float64
	SetInfraredGain(float64)
}

// DepthCamera is a streaming depth camera with companion visible and infrared
// sensors
type DepthCamera interface {
	Lifecycle
	DepthSource
	VisibleSource
	InfraredSource
	ExposureController
}
