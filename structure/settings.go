package structure

import (
	"time"

	"github.com/nasa-jpl/structurecam/frame"
)

// Settings is a snapshot of every camera parameter
type Settings struct {
	Resolution           frame.Resolution      `json:"resolution"`
	DepthRange           frame.DepthRange      `json:"depthRange"`
	CalibrationMode      frame.CalibrationMode `json:"calibrationMode"`
	DepthCorrection      bool                  `json:"depthCorrection"`
	GammaCorrection      bool                  `json:"gammaCorrection"`
	InfraredAutoExposure bool                  `json:"infraredAutoExposure"`
	VisibleEnabled       bool                  `json:"visibleEnabled"`
	InfraredEnabled      bool                  `json:"infraredEnabled"`
	InfraredMode         frame.InfraredMode    `json:"infraredMode"`

	VisibleExposure  time.Duration `json:"visibleExposure"`
	VisibleGain      float64       `json:"visibleGain"`
	InfraredExposure time.Duration `json:"infraredExposure"`
	InfraredGain     float64       `json:"infraredGain"`
}

// Settings reads every parameter from the driver
func (s *Session) Settings() Settings {
	return Settings{
		Resolution:           s.DepthResolution(),
		DepthRange:           s.DepthRange(),
		CalibrationMode:      s.CalibrationMode(),
		DepthCorrection:      s.DepthCorrection(),
		GammaCorrection:      s.GammaCorrection(),
		InfraredAutoExposure: s.InfraredAutoExposure(),
		VisibleEnabled:       s.VisibleEnabled(),
		InfraredEnabled:      s.InfraredEnabled(),
		InfraredMode:         s.InfraredMode(),
		VisibleExposure:      s.VisibleExposure(),
		VisibleGain:          s.VisibleGain(),
		InfraredExposure:     s.InfraredExposure(),
		InfraredGain:         s.InfraredGain(),
	}
}

// Configure applies every field of st.  Stopped only, because most of the
// fields are.  Zero exposures leave the driver's exposure unchanged.
func (s *Session) Configure(st Settings) {
	s.mustBeStopped("Configure")
	s.SetDepthResolution(st.Resolution)
	s.SetDepthRange(st.DepthRange)
	s.SetCalibrationMode(st.CalibrationMode)
	s.SetDepthCorrection(st.DepthCorrection)
	s.SetGammaCorrection(st.GammaCorrection)
	s.SetInfraredAutoExposure(st.InfraredAutoExposure)
	s.SetVisibleEnabled(st.VisibleEnabled)
	s.SetInfraredEnabled(st.InfraredEnabled)
	s.SetInfraredMode(st.InfraredMode)
	if st.VisibleExposure > 0 {
		s.SetVisibleExposure(st.VisibleExposure)
	}
	s.SetVisibleGain(st.VisibleGain)
	if st.InfraredExposure > 0 {
		s.SetInfraredExposure(st.InfraredExposure)
	}
	s.SetInfraredGain(st.InfraredGain)
	s.log.Infow("configured", "settings", st)
}
