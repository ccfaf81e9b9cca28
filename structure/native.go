//go:build structurecore

package structure

/*
#cgo LDFLAGS: -lstructure_camera
#include <stdbool.h>
#include <stdint.h>

bool startCamera();
void stopCamera();
bool lastDepthFrame(float *out);
bool lastVisibleFrame(uint8_t *out);
bool lastInfraredFrame(uint16_t *out);

void setVisibleExposure(float seconds);
float getVisibleExposure();
void setVisibleGain(float multiplier);
float getVisibleGain();
void setInfraredExposure(float seconds);
float getInfraredExposure();
void setInfraredGain(float multiplier);
float getInfraredGain();

void setDepthResolution(int resolution);
int getDepthResolution();
void setDepthRange(int mode);
int getDepthRange();
void setCalibrationMode(int mode);
int getCalibrationMode();
void setInfraredMode(int value);
int getInfraredMode();

void setDepthCorrection(bool value);
bool getDepthCorrection();
void setInfraredAutoExposure(bool value);
bool getInfraredAutoExposure();
void setGammaCorrection(bool value);
bool getGammaCorrection();
void setVisibleEnabled(bool value);
bool getVisibleEnabled();
void setInfraredEnabled(bool value);
bool getInfraredEnabled();
*/
import "C"

// Native is the Driver backed by libstructure_camera.  The library holds a
// single capture session per process, so all Natives share it.
type Native struct{}

// NewNative returns the native driver
func NewNative() (Driver, error) {
	return Native{}, nil
}

// Start starts monitoring; false if the SDK could not open a sensor
func (Native) Start() bool { return bool(C.startCamera()) }

// Stop stops streaming
func (Native) Stop() { C.stopCamera() }

// the shim memcpys into out and does not keep the pointer
func (Native) LastDepthFrame(out []float32) bool {
	if len(out) == 0 {
		return false
	}
	return bool(C.lastDepthFrame((*C.float)(&out[0])))
}

func (Native) LastVisibleFrame(out []uint8) bool {
	if len(out) == 0 {
		return false
	}
	return bool(C.lastVisibleFrame((*C.uint8_t)(&out[0])))
}

func (Native) LastInfraredFrame(out []uint16) bool {
	if len(out) == 0 {
		return false
	}
	return bool(C.lastInfraredFrame((*C.uint16_t)(&out[0])))
}

func (Native) VisibleExposure() float32     { return float32(C.getVisibleExposure()) }
func (Native) SetVisibleExposure(s float32) { C.setVisibleExposure(C.float(s)) }
func (Native) VisibleGain() float32         { return float32(C.getVisibleGain()) }
func (Native) SetVisibleGain(g float32)     { C.setVisibleGain(C.float(g)) }

func (Native) InfraredExposure() float32     { return float32(C.getInfraredExposure()) }
func (Native) SetInfraredExposure(s float32) { C.setInfraredExposure(C.float(s)) }
func (Native) InfraredGain() float32         { return float32(C.getInfraredGain()) }
func (Native) SetInfraredGain(g float32)     { C.setInfraredGain(C.float(g)) }

func (Native) DepthResolution() int     { return int(C.getDepthResolution()) }
func (Native) SetDepthResolution(r int) { C.setDepthResolution(C.int(r)) }
func (Native) DepthRange() int          { return int(C.getDepthRange()) }
func (Native) SetDepthRange(r int)      { C.setDepthRange(C.int(r)) }
func (Native) CalibrationMode() int     { return int(C.getCalibrationMode()) }
func (Native) SetCalibrationMode(m int) { C.setCalibrationMode(C.int(m)) }
func (Native) InfraredMode() int        { return int(C.getInfraredMode()) }
func (Native) SetInfraredMode(m int)    { C.setInfraredMode(C.int(m)) }

func (Native) DepthCorrection() bool          { return bool(C.getDepthCorrection()) }
func (Native) SetDepthCorrection(b bool)      { C.setDepthCorrection(C.bool(b)) }
func (Native) GammaCorrection() bool          { return bool(C.getGammaCorrection()) }
func (Native) SetGammaCorrection(b bool)      { C.setGammaCorrection(C.bool(b)) }
func (Native) InfraredAutoExposure() bool     { return bool(C.getInfraredAutoExposure()) }
func (Native) SetInfraredAutoExposure(b bool) { C.setInfraredAutoExposure(C.bool(b)) }
func (Native) VisibleEnabled() bool           { return bool(C.getVisibleEnabled()) }
func (Native) SetVisibleEnabled(b bool)       { C.setVisibleEnabled(C.bool(b)) }
func (Native) InfraredEnabled() bool          { return bool(C.getInfraredEnabled()) }
func (Native) SetInfraredEnabled(b bool)      { C.setInfraredEnabled(C.bool(b)) }
