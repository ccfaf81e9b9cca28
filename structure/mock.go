package structure

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/nasa-jpl/structurecam/frame"
)

// Mock is a simulated camera.  It keeps settings the way the shim does and
// produces synthetic frames: a depth ramp across the frame with a fraction of
// NaN holes, a color gradient, and infrared noise.  It is safe for concurrent
// use.
type Mock struct {
	mu sync.Mutex

	// Refuse makes Start fail, as when no sensor is connected
	Refuse bool

	// Dry makes every frame read report that no frame has arrived
	Dry bool

	// HoleFraction is the fraction of depth pixels reported as NaN
	HoleFraction float64

	rng       *rand.Rand
	streaming bool
	frames    uint64

	visibleExposure, visibleGain   float32
	infraredExposure, infraredGain float32

	resolution, depthRange, calibration, infraredMode int

	depthCorrection, gamma, autoExposure bool
	visibleEnabled, infraredEnabled      bool
}

// NewMock returns a Mock with the SDK's default settings and 5% depth holes
func NewMock() *Mock {
	return &Mock{
		HoleFraction:     0.05,
		rng:              rand.New(rand.NewPCG(0x5ca1ab1e, 0xdecade)),
		visibleExposure:  0.016,
		visibleGain:      2,
		infraredExposure: 0.014,
		infraredGain:     1,
		resolution:       int(frame.VGA),
		depthRange:       int(frame.RangeDefault),
		calibration:      int(frame.CalibrationOneShot),
		infraredMode:     int(frame.InfraredLeft),
		gamma:            true,
		visibleEnabled:   true,
		infraredEnabled:  true,
	}
}

// Streaming reports if Start succeeded more recently than Stop was called
func (m *Mock) Streaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// Start begins the simulated stream unless Refuse is set
func (m *Mock) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Refuse {
		return false
	}
	m.streaming = true
	m.frames = 0
	return true
}

// Stop ends the simulated stream
func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaming = false
}

func (m *Mock) ready() bool {
	return m.streaming && !m.Dry
}

// LastDepthFrame writes a ramp from 400 mm on the left to 1400 mm on the
// right, offset a little each frame
func (m *Mock) LastDepthFrame(out []float32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	shape, err := frame.DepthShape(frame.Resolution(m.resolution))
	if !m.ready() || err != nil || len(out) != shape.Len() {
		return false
	}
	m.frames++
	offset := float32(m.frames % 100)
	for i := 0; i < shape.Rows; i++ {
		for j := 0; j < shape.Cols; j++ {
			idx := i*shape.Cols + j
			if m.rng.Float64() < m.HoleFraction {
				out[idx] = float32(math.NaN())
				continue
			}
			out[idx] = 400 + 1000*float32(j)/float32(shape.Cols) + offset
		}
	}
	return true
}

// LastVisibleFrame writes a gradient, red across and green down
func (m *Mock) LastVisibleFrame(out []uint8) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := frame.VisibleShape
	if !m.ready() || !m.visibleEnabled || len(out) != s.Len() {
		return false
	}
	for i := 0; i < s.Rows; i++ {
		for j := 0; j < s.Cols; j++ {
			px := out[(i*s.Cols+j)*3:]
			px[0] = uint8(255 * j / s.Cols)
			px[1] = uint8(255 * i / s.Rows)
			px[2] = 128
		}
	}
	return true
}

// LastInfraredFrame writes noise scaled by the infrared gain
func (m *Mock) LastInfraredFrame(out []uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := frame.InfraredShape(frame.InfraredMode(m.infraredMode))
	if !m.ready() || !m.infraredEnabled || err != nil || len(out) != s.Len() {
		return false
	}
	scale := 1000 * float64(m.infraredGain+1)
	for idx := range out {
		out[idx] = uint16(scale * m.rng.Float64())
	}
	return true
}

// the shim sets exposure and gain as a pair, so the mock does too

func (m *Mock) setVisible(exposure, gain float32) {
	m.visibleExposure, m.visibleGain = exposure, gain
}

func (m *Mock) setInfrared(exposure, gain float32) {
	m.infraredExposure, m.infraredGain = exposure, gain
}

// VisibleExposure returns the visible exposure in seconds
func (m *Mock) VisibleExposure() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleExposure
}

// SetVisibleExposure sets the visible exposure in seconds, keeping the gain
func (m *Mock) SetVisibleExposure(s float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setVisible(s, m.visibleGain)
}

// VisibleGain returns the visible gain
func (m *Mock) VisibleGain() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleGain
}

// SetVisibleGain sets the visible gain, keeping the exposure
func (m *Mock) SetVisibleGain(g float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setVisible(m.visibleExposure, g)
}

// InfraredExposure returns the infrared exposure in seconds
func (m *Mock) InfraredExposure() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infraredExposure
}

// SetInfraredExposure sets the infrared exposure in seconds, keeping the gain
func (m *Mock) SetInfraredExposure(s float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setInfrared(s, m.infraredGain)
}

// InfraredGain returns the infrared gain
func (m *Mock) InfraredGain() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infraredGain
}

// SetInfraredGain sets the infrared gain, keeping the exposure
func (m *Mock) SetInfraredGain(g float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setInfrared(m.infraredExposure, g)
}

// DepthResolution returns the resolution code
func (m *Mock) DepthResolution() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolution
}

// SetDepthResolution stores any code, unknown ones fail at frame read
func (m *Mock) SetDepthResolution(r int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolution = r
}

// DepthRange returns the depth range preset
func (m *Mock) DepthRange() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthRange
}

// SetDepthRange sets the depth range preset
func (m *Mock) SetDepthRange(r int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depthRange = r
}

// CalibrationMode returns the calibration mode
func (m *Mock) CalibrationMode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calibration
}

// SetCalibrationMode sets the calibration mode
func (m *Mock) SetCalibrationMode(c int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calibration = c
}

// InfraredMode returns the infrared mode code
func (m *Mock) InfraredMode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infraredMode
}

// SetInfraredMode stores any code, unknown ones fail at frame read
func (m *Mock) SetInfraredMode(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infraredMode = i
}

// DepthCorrection returns the depth correction toggle
func (m *Mock) DepthCorrection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthCorrection
}

// SetDepthCorrection sets the depth correction toggle
func (m *Mock) SetDepthCorrection(b bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depthCorrection = b
}

// GammaCorrection returns the gamma correction toggle
func (m *Mock) GammaCorrection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamma
}

// SetGammaCorrection sets the gamma correction toggle
func (m *Mock) SetGammaCorrection(b bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamma = b
}

// InfraredAutoExposure returns the infrared auto exposure toggle
func (m *Mock) InfraredAutoExposure() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoExposure
}

// SetInfraredAutoExposure sets the infrared auto exposure toggle
func (m *Mock) SetInfraredAutoExposure(b bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoExposure = b
}

// VisibleEnabled reports if the visible stream is on
func (m *Mock) VisibleEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibleEnabled
}

// SetVisibleEnabled turns the visible stream on or off
func (m *Mock) SetVisibleEnabled(b bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visibleEnabled = b
}

// InfraredEnabled reports if the infrared stream is on
func (m *Mock) InfraredEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infraredEnabled
}

// SetInfraredEnabled turns the infrared stream on or off
func (m *Mock) SetInfraredEnabled(b bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infraredEnabled = b
}
