package structure

import (
	"encoding/binary"
	"encoding/json"
	"go/types"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/frame"
	"github.com/nasa-jpl/structurecam/generichttp"
	"github.com/nasa-jpl/structurecam/imgrec"
)

// HTTPWrapper provides an HTTP interface to a camera session.
//
// Requests are serialized with a mutex, so the session is only ever touched
// by one request at a time.  Contract violations are answered with 409.
type HTTPWrapper struct {
	mu sync.Mutex

	// Session is the camera session being wrapped
	Session *Session

	// Pipeline turns depth frames into displayable images
	Pipeline depthproc.Pipeline

	// Colormap renders depth with a hue ramp instead of grayscale
	Colormap bool

	// Recorder, if active, receives a copy of every FITS response
	Recorder *imgrec.Recorder

	RouteTable generichttp.RouteTable
}

// NewHTTPWrapper returns a new wrapper with the route table populated
func NewHTTPWrapper(s *Session, p depthproc.Pipeline, rec *imgrec.Recorder) *HTTPWrapper {
	h := &HTTPWrapper{Session: s, Pipeline: p, Recorder: rec}
	get := func(path string) generichttp.MethodPath {
		return generichttp.MethodPath{Method: http.MethodGet, Path: path}
	}
	post := func(path string) generichttp.MethodPath {
		return generichttp.MethodPath{Method: http.MethodPost, Path: path}
	}
	h.RouteTable = generichttp.RouteTable{
		// lifecycle
		post("/start"):  h.Start,
		post("/stop"):   h.Stop,
		get("/started"): generichttp.GetBool(func() (bool, error) { return s.Started(), nil }),

		// exposure and gain, any state
		get("/visible/exposure"):   getSeconds(s.VisibleExposure),
		post("/visible/exposure"):  setSeconds(s.SetVisibleExposure),
		get("/visible/gain"):       getFloat(s.VisibleGain),
		post("/visible/gain"):      setFloat(s.SetVisibleGain),
		get("/infrared/exposure"):  getSeconds(s.InfraredExposure),
		post("/infrared/exposure"): setSeconds(s.SetInfraredExposure),
		get("/infrared/gain"):      getFloat(s.InfraredGain),
		post("/infrared/gain"):     setFloat(s.SetInfraredGain),

		// stream settings, stopped only
		get("/depth/resolution"):  getName(func() string { return s.DepthResolution().String() }),
		post("/depth/resolution"): setParsed(frame.ParseResolution, s.SetDepthResolution),
		get("/depth/range"):       getName(func() string { return s.DepthRange().String() }),
		post("/depth/range"):      setParsed(frame.ParseDepthRange, s.SetDepthRange),
		get("/calibration"):       getName(func() string { return s.CalibrationMode().String() }),
		post("/calibration"):      setParsed(frame.ParseCalibrationMode, s.SetCalibrationMode),
		get("/infrared/mode"):     getName(func() string { return s.InfraredMode().String() }),
		post("/infrared/mode"):    setParsed(frame.ParseInfraredMode, s.SetInfraredMode),

		get("/depth/correction"):        getBool(s.DepthCorrection),
		post("/depth/correction"):       setBool(s.SetDepthCorrection),
		get("/gamma-correction"):        getBool(s.GammaCorrection),
		post("/gamma-correction"):       setBool(s.SetGammaCorrection),
		get("/infrared/auto-exposure"):  getBool(s.InfraredAutoExposure),
		post("/infrared/auto-exposure"): setBool(s.SetInfraredAutoExposure),
		get("/visible/enabled"):         getBool(s.VisibleEnabled),
		post("/visible/enabled"):        setBool(s.SetVisibleEnabled),
		get("/infrared/enabled"):        getBool(s.InfraredEnabled),
		post("/infrared/enabled"):       setBool(s.SetInfraredEnabled),

		get("/settings"):  h.GetSettings,
		post("/settings"): h.SetSettings,

		// frames
		get("/depth/frame"):    h.GetDepthFrame,
		get("/depth/stats"):    h.GetDepthStats,
		get("/visible/frame"):  h.GetVisibleFrame,
		get("/infrared/frame"): h.GetInfraredFrame,
	}
	for k, fn := range h.RouteTable {
		h.RouteTable[k] = h.guard(fn)
	}
	if rec != nil {
		imgrec.NewHTTPWrapper(rec).Inject(h)
	}
	return h
}

// RT satisfies generichttp.HTTPer
func (h *HTTPWrapper) RT() generichttp.RouteTable {
	return h.RouteTable
}

// Do runs fn with exclusive use of the session, the way a request does.
// A contract violation inside fn is returned as an error.
func (h *HTTPWrapper) Do(fn func(*Session)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Recover(func() { fn(h.Session) })
}

// guard serializes a handler and answers contract violations with 409
func (h *HTTPWrapper) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		defer h.mu.Unlock()
		err := Recover(func() { next(w, r) })
		if err != nil {
			h.Session.log.Warnw("rejected request", "path", r.URL.Path, "err", err)
			http.Error(w, err.Error(), http.StatusConflict)
		}
	}
}

// the getters and setters below adapt the session's error-free accessors to
// the generichttp handler factories

func getSeconds(fn func() time.Duration) http.HandlerFunc {
	return generichttp.GetFloat(func() (float64, error) { return fn().Seconds(), nil })
}

func setSeconds(fn func(time.Duration)) http.HandlerFunc {
	return generichttp.SetFloat(func(f float64) error {
		if f < 0 || math.IsNaN(f) {
			return errors.Wrapf(generichttp.ErrBadInput, "exposure %v s", f)
		}
		fn(time.Duration(f * float64(time.Second)))
		return nil
	})
}

func getFloat(fn func() float64) http.HandlerFunc {
	return generichttp.GetFloat(func() (float64, error) { return fn(), nil })
}

func setFloat(fn func(float64)) http.HandlerFunc {
	return generichttp.SetFloat(func(f float64) error {
		fn(f)
		return nil
	})
}

func getBool(fn func() bool) http.HandlerFunc {
	return generichttp.GetBool(func() (bool, error) { return fn(), nil })
}

func setBool(fn func(bool)) http.HandlerFunc {
	return generichttp.SetBool(func(b bool) error {
		fn(b)
		return nil
	})
}

func getName(fn func() string) http.HandlerFunc {
	return generichttp.GetString(func() (string, error) { return fn(), nil })
}

// setParsed parses a {"str": value} body with parse before calling set
func setParsed[T any](parse func(string) (T, error), set func(T)) http.HandlerFunc {
	return generichttp.SetString(func(s string) error {
		v, err := parse(s)
		if err != nil {
			return errors.Wrap(generichttp.ErrBadInput, err.Error())
		}
		set(v)
		return nil
	})
}

// Start starts streaming and responds {"bool": started}
func (h *HTTPWrapper) Start(w http.ResponseWriter, r *http.Request) {
	ok := h.Session.Start()
	hp := generichttp.HumanPayload{T: types.Bool, Bool: ok}
	hp.EncodeAndRespond(w, r)
}

// Stop stops streaming
func (h *HTTPWrapper) Stop(w http.ResponseWriter, r *http.Request) {
	h.Session.Stop()
	w.WriteHeader(http.StatusOK)
}

// GetSettings responds with every camera parameter as JSON
func (h *HTTPWrapper) GetSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(h.Session.Settings())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetSettings applies a (possibly partial) Settings JSON body.  Fields not in
// the body keep their current values.
func (h *HTTPWrapper) SetSettings(w http.ResponseWriter, r *http.Request) {
	st := h.Session.Settings()
	err := json.NewDecoder(r.Body).Decode(&st)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Session.Configure(st)
	w.WriteHeader(http.StatusOK)
}

// frameError answers a frame read error
func frameError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, ErrNoFrame) {
		code = http.StatusServiceUnavailable
	}
	http.Error(w, err.Error(), code)
}

// scale reads the optional width query parameter for previews
func scale(r *http.Request) (int, error) {
	str := r.URL.Query().Get("scale")
	if str == "" {
		return 0, nil
	}
	return strconv.Atoi(str)
}

// GetDepthFrame returns the latest depth frame.
//
// fmt=png or jpg (default png) runs the frame through the pipeline and renders
// it, with the colormap if color=true or the wrapper's Colormap is set.
// scale=N resizes the rendering to N pixels wide.  fmt=fits returns the raw
// millimeters with the session header, and fmt=raw the raw millimeters as
// little endian float32 with the shape in the X-Rows and X-Cols headers.
func (h *HTTPWrapper) GetDepthFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := scale(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	depth, err := h.Session.DepthFrame()
	if err != nil {
		frameError(w, err)
		return
	}
	format := q.Get("fmt")
	switch format {
	case "fits":
		h.writeFITS(w, func(wr io.Writer) error {
			return WriteDepthFITS(wr, h.Session.HeaderMetadata(), depth)
		})
	case "raw":
		writeRawDepth(w, depth)
	case "", "png", "jpg":
		processed, err := h.Pipeline.Process(depth)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var img image.Image
		if h.Colormap || q.Get("color") == "true" {
			img = depthproc.Colorize(processed)
		} else {
			img = depthproc.Gray(processed)
		}
		writeImage(w, format, depthproc.Thumbnail(img, width))
	default:
		http.Error(w, "unknown format "+format, http.StatusBadRequest)
	}
}

// GetDepthStats returns depthproc.Stats of the latest raw depth frame
func (h *HTTPWrapper) GetDepthStats(w http.ResponseWriter, r *http.Request) {
	depth, err := h.Session.DepthFrame()
	if err != nil {
		frameError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(depthproc.Stats(depth))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetVisibleFrame returns the latest color frame as png or jpg
func (h *HTTPWrapper) GetVisibleFrame(w http.ResponseWriter, r *http.Request) {
	width, err := scale(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("fmt")
	if format != "" && format != "png" && format != "jpg" {
		http.Error(w, "unknown format "+format, http.StatusBadRequest)
		return
	}
	img, err := h.Session.VisibleFrame()
	if err != nil {
		frameError(w, err)
		return
	}
	writeImage(w, format, depthproc.Thumbnail(img, width))
}

// GetInfraredFrame returns the latest infrared frame as 16-bit png or fits
func (h *HTTPWrapper) GetInfraredFrame(w http.ResponseWriter, r *http.Request) {
	width, err := scale(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	img, err := h.Session.InfraredFrame()
	if err != nil {
		frameError(w, err)
		return
	}
	format := r.URL.Query().Get("fmt")
	switch format {
	case "fits":
		h.writeFITS(w, func(wr io.Writer) error {
			return WriteInfraredFITS(wr, h.Session.HeaderMetadata(), img)
		})
	case "", "png":
		writeImage(w, "png", depthproc.Thumbnail(img, width))
	default:
		http.Error(w, "unknown format "+format, http.StatusBadRequest)
	}
}

// writeFITS streams a FITS file to the client, teeing it to the recorder
// when one is active
func (h *HTTPWrapper) writeFITS(w http.ResponseWriter, write func(io.Writer) error) {
	hdr := w.Header()
	hdr.Set("Content-Type", "image/fits")
	hdr.Set("Content-Disposition", "attachment; filename=image.fits")
	var err error
	if h.Recorder.Active() {
		_, err = h.Recorder.Record(func(f io.Writer) error {
			return write(io.MultiWriter(w, f))
		})
	} else {
		err = write(w)
	}
	if err != nil {
		h.Session.log.Errorw("writing fits", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeImage(w http.ResponseWriter, format string, img image.Image) {
	var err error
	switch format {
	case "jpg":
		w.Header().Set("Content-Type", "image/jpeg")
		err = jpeg.Encode(w, img, nil)
	default:
		w.Header().Set("Content-Type", "image/png")
		err = png.Encode(w, img)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeRawDepth(w http.ResponseWriter, m *mat.Dense) {
	rows, cols := m.Dims()
	buf := make([]byte, 4*rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint32(buf[4*(i*cols+j):], math.Float32bits(float32(m.At(i, j))))
		}
	}
	hdr := w.Header()
	hdr.Set("Content-Type", "application/octet-stream")
	hdr.Set("X-Rows", strconv.Itoa(rows))
	hdr.Set("X-Cols", strconv.Itoa(cols))
	w.Write(buf)
}
