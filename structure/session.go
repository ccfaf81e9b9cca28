package structure

import (
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/frame"
	"github.com/nasa-jpl/structurecam/mathx"
	"github.com/nasa-jpl/structurecam/util"
)

const (
	// MinVisibleGain is the lowest visible sensor gain the SDK accepts
	MinVisibleGain = 1

	// MaxVisibleGain is the highest visible sensor gain the SDK accepts
	MaxVisibleGain = 8

	// MinInfraredGain is the lowest infrared sensor gain the SDK accepts
	MinInfraredGain = 0

	// MaxInfraredGain is the highest infrared sensor gain the SDK accepts
	MaxInfraredGain = 3
)

// Session is one camera session.  It is created stopped.
//
// Session is not safe for concurrent use; callers which share one between
// goroutines must serialize access themselves.
type Session struct {
	// ID identifies the session in logs and FITS headers
	ID uuid.UUID

	d       Driver
	log     *zap.SugaredLogger
	started bool

	// frame buffers are owned by the session and reused between reads.
	// They are sized for the largest shape and resliced per read.
	depthBuf    []float32
	visibleBuf  []uint8
	infraredBuf []uint16
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger.  The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession returns a stopped session on top of d
func NewSession(d Driver, opts ...Option) *Session {
	s := &Session{ID: uuid.New(), d: d, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.ID.String())
	return s
}

func (s *Session) mustBeStarted(op string) {
	if !s.started {
		panic(&ContractViolation{Op: op, Reason: reasonNotStreaming})
	}
}

func (s *Session) mustBeStopped(op string) {
	if s.started {
		panic(&ContractViolation{Op: op, Reason: reasonStreaming})
	}
}

// Started reports if the session is streaming
func (s *Session) Started() bool {
	return s.started
}

// Start asks the driver to begin streaming and returns its answer.  A false
// return (no sensor, sensor busy) leaves the session stopped.  Start on a
// started session is a contract violation.
func (s *Session) Start() bool {
	s.mustBeStopped("Start")
	s.started = s.d.Start()
	if s.started {
		s.log.Infow("streaming started",
			"resolution", s.DepthResolution().String(),
			"range", s.DepthRange().String(),
			"calibration", s.CalibrationMode().String())
	} else {
		s.log.Warnw("driver refused to start streaming")
	}
	return s.started
}

// Stop ends streaming.  It always succeeds, including on a stopped session.
func (s *Session) Stop() {
	s.d.Stop()
	if s.started {
		s.log.Infow("streaming stopped")
	}
	s.started = false
}

// DepthFrame returns the most recent depth frame in millimeters, shaped by the
// active resolution.  Pixels without a depth estimate are NaN.
//
// A resolution with no entry in the shape table returns an error wrapping
// frame.ErrUnsupportedResolution.  ErrNoFrame is returned if the driver has
// not produced a depth frame yet.
func (s *Session) DepthFrame() (*mat.Dense, error) {
	s.mustBeStarted("DepthFrame")
	shape, err := frame.DepthShape(s.DepthResolution())
	if err != nil {
		return nil, err
	}
	if s.depthBuf == nil {
		s.depthBuf = make([]float32, frame.MaxDepthLen())
	}
	buf := s.depthBuf[:shape.Len()]
	if !s.d.LastDepthFrame(buf) {
		return nil, errors.Wrap(ErrNoFrame, "depth")
	}
	return frame.DecodeDepth(buf, shape)
}

// VisibleFrame returns the most recent color frame
func (s *Session) VisibleFrame() (*frame.RGB, error) {
	s.mustBeStarted("VisibleFrame")
	shape := frame.VisibleShape
	if s.visibleBuf == nil {
		s.visibleBuf = make([]uint8, shape.Len())
	}
	if !s.d.LastVisibleFrame(s.visibleBuf) {
		return nil, errors.Wrap(ErrNoFrame, "visible")
	}
	return frame.DecodeVisible(s.visibleBuf, shape)
}

// InfraredFrame returns the most recent infrared frame, shaped by the infrared
// mode.  In RightLeft mode the frame is double width; see frame.SplitDual.
func (s *Session) InfraredFrame() (*image.Gray16, error) {
	s.mustBeStarted("InfraredFrame")
	shape, err := frame.InfraredShape(s.InfraredMode())
	if err != nil {
		return nil, err
	}
	if s.infraredBuf == nil {
		s.infraredBuf = make([]uint16, frame.MaxInfraredLen())
	}
	buf := s.infraredBuf[:shape.Len()]
	if !s.d.LastInfraredFrame(buf) {
		return nil, errors.Wrap(ErrNoFrame, "infrared")
	}
	return frame.DecodeInfrared(buf, shape)
}

// exposures cross the shim as float32 seconds, round to the microsecond
// so float32 noise does not leak into the duration
func secsToDuration(secs float32) time.Duration {
	return util.SecsToDuration(mathx.Round(float64(secs), 1e-6))
}

// VisibleExposure gets the visible sensor exposure time
func (s *Session) VisibleExposure() time.Duration {
	return secsToDuration(s.d.VisibleExposure())
}

// SetVisibleExposure sets the visible sensor exposure time.  The gain is kept.
func (s *Session) SetVisibleExposure(d time.Duration) {
	s.d.SetVisibleExposure(float32(d.Seconds()))
}

// VisibleGain gets the visible sensor gain
func (s *Session) VisibleGain() float64 {
	return float64(s.d.VisibleGain())
}

// SetVisibleGain sets the visible sensor gain, clamped to [1, 8].
// The exposure time is kept.
func (s *Session) SetVisibleGain(g float64) {
	c := mathx.Clamp(g, MinVisibleGain, MaxVisibleGain)
	if c != g {
		s.log.Warnw("visible gain out of range, clamped", "requested", g, "used", c)
	}
	s.d.SetVisibleGain(float32(c))
}

// InfraredExposure gets the infrared sensors' exposure time
func (s *Session) InfraredExposure() time.Duration {
	return secsToDuration(s.d.InfraredExposure())
}

// SetInfraredExposure sets the infrared sensors' exposure time.  The gain is
// kept.
func (s *Session) SetInfraredExposure(d time.Duration) {
	s.d.SetInfraredExposure(float32(d.Seconds()))
}

// InfraredGain gets the infrared sensors' gain
func (s *Session) InfraredGain() float64 {
	return float64(s.d.InfraredGain())
}

// SetInfraredGain sets the infrared sensors' gain, clamped to [0, 3].
// The exposure time is kept.
func (s *Session) SetInfraredGain(g float64) {
	c := mathx.Clamp(g, MinInfraredGain, MaxInfraredGain)
	if c != g {
		s.log.Warnw("infrared gain out of range, clamped", "requested", g, "used", c)
	}
	s.d.SetInfraredGain(float32(c))
}

// DepthResolution gets the depth resolution
func (s *Session) DepthResolution() frame.Resolution {
	return frame.Resolution(s.d.DepthResolution())
}

// SetDepthResolution sets the depth resolution.  Stopped only.
//
// The value is not validated; a resolution outside the shape table is
// reported by DepthFrame.
func (s *Session) SetDepthResolution(r frame.Resolution) {
	s.mustBeStopped("SetDepthResolution")
	s.d.SetDepthResolution(int(r))
}

// DepthRange gets the depth range preset
func (s *Session) DepthRange() frame.DepthRange {
	return frame.DepthRange(s.d.DepthRange())
}

// SetDepthRange sets the depth range preset.  Stopped only.
func (s *Session) SetDepthRange(r frame.DepthRange) {
	s.mustBeStopped("SetDepthRange")
	s.d.SetDepthRange(int(r))
}

// CalibrationMode gets the dynamic calibration mode
func (s *Session) CalibrationMode() frame.CalibrationMode {
	return frame.CalibrationMode(s.d.CalibrationMode())
}

// SetCalibrationMode sets the dynamic calibration mode.  Stopped only.
func (s *Session) SetCalibrationMode(c frame.CalibrationMode) {
	s.mustBeStopped("SetCalibrationMode")
	s.d.SetCalibrationMode(int(c))
}

// InfraredMode gets which infrared sensors stream
func (s *Session) InfraredMode() frame.InfraredMode {
	return frame.InfraredMode(s.d.InfraredMode())
}

// SetInfraredMode sets which infrared sensors stream.  Stopped only.
func (s *Session) SetInfraredMode(m frame.InfraredMode) {
	s.mustBeStopped("SetInfraredMode")
	s.d.SetInfraredMode(int(m))
}

// DepthCorrection gets if the SDK's expensive depth correction is applied
func (s *Session) DepthCorrection() bool {
	return s.d.DepthCorrection()
}

// SetDepthCorrection turns the expensive depth correction on or off.
// Stopped only.
func (s *Session) SetDepthCorrection(b bool) {
	s.mustBeStopped("SetDepthCorrection")
	s.d.SetDepthCorrection(b)
}

// GammaCorrection gets if gamma correction is applied to visible frames
func (s *Session) GammaCorrection() bool {
	return s.d.GammaCorrection()
}

// SetGammaCorrection turns visible gamma correction on or off.  Stopped only.
func (s *Session) SetGammaCorrection(b bool) {
	s.mustBeStopped("SetGammaCorrection")
	s.d.SetGammaCorrection(b)
}

// InfraredAutoExposure gets if the infrared sensors expose automatically
func (s *Session) InfraredAutoExposure() bool {
	return s.d.InfraredAutoExposure()
}

// SetInfraredAutoExposure turns infrared auto exposure on or off.
// Stopped only.
func (s *Session) SetInfraredAutoExposure(b bool) {
	s.mustBeStopped("SetInfraredAutoExposure")
	s.d.SetInfraredAutoExposure(b)
}

// VisibleEnabled gets if the visible sensor streams
func (s *Session) VisibleEnabled() bool {
	return s.d.VisibleEnabled()
}

// SetVisibleEnabled enables or disables the visible stream.  Stopped only.
func (s *Session) SetVisibleEnabled(b bool) {
	s.mustBeStopped("SetVisibleEnabled")
	s.d.SetVisibleEnabled(b)
}

// InfraredEnabled gets if the infrared sensors stream
func (s *Session) InfraredEnabled() bool {
	return s.d.InfraredEnabled()
}

// SetInfraredEnabled enables or disables the infrared stream.  Stopped only.
func (s *Session) SetInfraredEnabled(b bool) {
	s.mustBeStopped("SetInfraredEnabled")
	s.d.SetInfraredEnabled(b)
}
