// Package config loads the YAML configuration shared by the structure
// programs.  Defaults come from Default, and any keys present in the file
// override them.  Keys are not case-sensitive.
package config

import (
	"io"
	"io/fs"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/frame"
	"github.com/nasa-jpl/structurecam/structure"
)

// FileName is the default config file name
const FileName = "structurecam.yml"

// Camera holds the parameters applied to the session before it starts
type Camera struct {
	Resolution           string        `koanf:"Resolution" yaml:"Resolution"`
	DepthRange           string        `koanf:"DepthRange" yaml:"DepthRange"`
	CalibrationMode      string        `koanf:"CalibrationMode" yaml:"CalibrationMode"`
	DepthCorrection      bool          `koanf:"DepthCorrection" yaml:"DepthCorrection"`
	GammaCorrection      bool          `koanf:"GammaCorrection" yaml:"GammaCorrection"`
	InfraredAutoExposure bool          `koanf:"InfraredAutoExposure" yaml:"InfraredAutoExposure"`
	VisibleEnabled       bool          `koanf:"VisibleEnabled" yaml:"VisibleEnabled"`
	InfraredEnabled      bool          `koanf:"InfraredEnabled" yaml:"InfraredEnabled"`
	InfraredMode         string        `koanf:"InfraredMode" yaml:"InfraredMode"`
	VisibleExposure      time.Duration `koanf:"VisibleExposure" yaml:"VisibleExposure"`
	VisibleGain          float64       `koanf:"VisibleGain" yaml:"VisibleGain"`
	InfraredExposure     time.Duration `koanf:"InfraredExposure" yaml:"InfraredExposure"`
	InfraredGain         float64       `koanf:"InfraredGain" yaml:"InfraredGain"`
}

// Pipeline holds the depth display parameters
type Pipeline struct {
	// Min and Max are the display range in mm
	Min float64 `koanf:"Min" yaml:"Min"`
	Max float64 `koanf:"Max" yaml:"Max"`

	// Fill is uniform, normal, or constant
	Fill         string  `koanf:"Fill" yaml:"Fill"`
	FillConstant float64 `koanf:"FillConstant" yaml:"FillConstant"`

	// CropRatio of 0 disables cropping
	CropRatio float64 `koanf:"CropRatio" yaml:"CropRatio"`

	// Colormap renders depth in color instead of grayscale
	Colormap bool `koanf:"Colormap" yaml:"Colormap"`
}

// Recorder configures the FITS recorder
type Recorder struct {
	// Root is the root folder to write to
	Root string `koanf:"Root" yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `koanf:"Prefix" yaml:"Prefix"`

	// Enabled turns recording on at bootup
	Enabled bool `koanf:"Enabled" yaml:"Enabled"`
}

// MQTT configures the frame publisher.  An empty Broker disables it.
type MQTT struct {
	Broker   string        `koanf:"Broker" yaml:"Broker"`
	ClientID string        `koanf:"ClientID" yaml:"ClientID"`
	Topic    string        `koanf:"Topic" yaml:"Topic"`
	Interval time.Duration `koanf:"Interval" yaml:"Interval"`
}

// Config is the complete configuration
type Config struct {
	Addr  string `koanf:"Addr" yaml:"Addr"`
	Root  string `koanf:"Root" yaml:"Root"`
	Mock  bool   `koanf:"Mock" yaml:"Mock"`
	Debug bool   `koanf:"Debug" yaml:"Debug"`

	// StartTimeout bounds how long the driver is retried at bootup
	StartTimeout time.Duration `koanf:"StartTimeout" yaml:"StartTimeout"`

	Camera   Camera   `koanf:"Camera" yaml:"Camera"`
	Pipeline Pipeline `koanf:"Pipeline" yaml:"Pipeline"`
	Recorder Recorder `koanf:"Recorder" yaml:"Recorder"`
	MQTT     MQTT     `koanf:"MQTT" yaml:"MQTT"`
}

// Default returns the built in configuration, which matches the settings of
// the reference viewer: hybrid range at SXGA, gamma corrected visible, and a
// 300 to 1500 mm display range
func Default() Config {
	return Config{
		Addr:         ":8000",
		Root:         "/",
		StartTimeout: 10 * time.Second,
		Camera: Camera{
			Resolution:           frame.SXGA.String(),
			DepthRange:           frame.RangeHybrid.String(),
			CalibrationMode:      frame.CalibrationOneShot.String(),
			GammaCorrection:      true,
			InfraredAutoExposure: true,
			VisibleEnabled:       true,
			InfraredEnabled:      true,
			InfraredMode:         frame.InfraredLeft.String(),
			VisibleExposure:      16 * time.Millisecond,
			VisibleGain:          2,
			InfraredExposure:     14 * time.Millisecond,
			InfraredGain:         1,
		},
		Pipeline: Pipeline{
			Min:  depthproc.DefaultMin,
			Max:  depthproc.DefaultMax,
			Fill: depthproc.Uniform.String(),
		},
		Recorder: Recorder{Prefix: "structure"},
		MQTT: MQTT{
			ClientID: "structurecam",
			Topic:    "structurecam",
			Interval: time.Second,
		},
	}
}

// Load reads the defaults and then fn on top of them.  A missing file is not
// an error.
func Load(fn string) (Config, error) {
	k := koanf.New(".")
	c := Config{}
	err := k.Load(structs.Provider(Default(), "koanf"), nil)
	if err != nil {
		return c, errors.Wrap(err, "loading defaults")
	}
	if err = k.Load(file.Provider(fn), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return c, errors.Wrapf(err, "loading %s", fn)
	}
	err = k.Unmarshal("", &c)
	return c, err
}

// Write encodes c as YAML to w
func Write(w io.Writer, c Config) error {
	return yml.NewEncoder(w).Encode(c)
}

// Settings converts the camera section to session settings
func (c Camera) Settings() (structure.Settings, error) {
	st := structure.Settings{
		DepthCorrection:      c.DepthCorrection,
		GammaCorrection:      c.GammaCorrection,
		InfraredAutoExposure: c.InfraredAutoExposure,
		VisibleEnabled:       c.VisibleEnabled,
		InfraredEnabled:      c.InfraredEnabled,
		VisibleExposure:      c.VisibleExposure,
		VisibleGain:          c.VisibleGain,
		InfraredExposure:     c.InfraredExposure,
		InfraredGain:         c.InfraredGain,
	}
	var err error
	if st.Resolution, err = frame.ParseResolution(c.Resolution); err != nil {
		return st, err
	}
	if st.DepthRange, err = frame.ParseDepthRange(c.DepthRange); err != nil {
		return st, err
	}
	if st.CalibrationMode, err = frame.ParseCalibrationMode(c.CalibrationMode); err != nil {
		return st, err
	}
	if st.InfraredMode, err = frame.ParseInfraredMode(c.InfraredMode); err != nil {
		return st, err
	}
	return st, nil
}

// Build converts the pipeline section to a depthproc.Pipeline
func (p Pipeline) Build() (depthproc.Pipeline, error) {
	mode, err := depthproc.ParseFillMode(p.Fill)
	if err != nil {
		return depthproc.Pipeline{}, err
	}
	out := depthproc.Pipeline{
		Min:       p.Min,
		Max:       p.Max,
		Fill:      depthproc.Filler{Mode: mode, Constant: p.FillConstant},
		CropRatio: p.CropRatio,
	}
	return out, out.Validate()
}

// Logger builds a development logger when debug is set and a production
// logger otherwise
func Logger(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
