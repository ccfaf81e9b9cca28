package structure

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/imgrec"
)

type testServer struct {
	t    *testing.T
	mock *Mock
	w    *HTTPWrapper
	mux  chi.Router
}

func newTestServer(t *testing.T, rec *imgrec.Recorder) *testServer {
	m := NewMock()
	s := NewSession(m)
	p := depthproc.NewPipeline()
	p.Fill = depthproc.Filler{Mode: depthproc.Constant, Constant: 900}
	w := NewHTTPWrapper(s, p, rec)
	mux := chi.NewRouter()
	w.RT().Bind(mux)
	return &testServer{t: t, mock: m, w: w, mux: mux}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func TestHTTPStartStop(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodPost, "/start", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"bool":true}`, resp.Body.String())

	resp = ts.do(http.MethodGet, "/started", "")
	assert.JSONEq(t, `{"bool":true}`, resp.Body.String())

	resp = ts.do(http.MethodPost, "/start", "")
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.do(http.MethodPost, "/stop", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, ts.mock.Streaming())
}

func TestHTTPRefusedStart(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mock.Refuse = true
	resp := ts.do(http.MethodPost, "/start", "")
	assert.JSONEq(t, `{"bool":false}`, resp.Body.String())
}

func TestHTTPStoppedOnlySettingIsConflictWhileStarted(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodPost, "/depth/resolution", `{"str":"sxga"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "has been streaming")

	ts.do(http.MethodPost, "/stop", "")
	resp = ts.do(http.MethodPost, "/depth/resolution", `{"str":"sxga"}`)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = ts.do(http.MethodGet, "/depth/resolution", "")
	assert.JSONEq(t, `{"str":"SXGA"}`, resp.Body.String())
}

func TestHTTPBadEnumIsBadRequest(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodPost, "/depth/range", `{"str":"far-far-away"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = ts.do(http.MethodPost, "/infrared/mode", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTPGainClamped(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodPost, "/visible/gain", `{"f64":20}`)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.do(http.MethodGet, "/visible/gain", "")
	assert.JSONEq(t, `{"f64":8}`, resp.Body.String())
}

func TestHTTPExposure(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodPost, "/infrared/exposure", `{"f64":0.002}`)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.do(http.MethodGet, "/infrared/exposure", "")
	assert.JSONEq(t, `{"f64":0.002}`, resp.Body.String())

	resp = ts.do(http.MethodPost, "/infrared/exposure", `{"f64":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTPSettings(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodPost, "/settings", `{"infraredMode":2,"depthCorrection":true}`)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.do(http.MethodGet, "/settings", "")
	st := Settings{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &st))
	assert.True(t, st.DepthCorrection)
	assert.EqualValues(t, 2, st.InfraredMode)
	assert.True(t, st.GammaCorrection, "fields missing from the body must keep their value")
}

func TestHTTPDepthFrameWhileStopped(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(http.MethodGet, "/depth/frame", "")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestHTTPDepthFramePNG(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/depth/frame?fmt=png", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())

	resp = ts.do(http.MethodGet, "/depth/frame?fmt=png&scale=320&color=true", "")
	require.Equal(t, http.StatusOK, resp.Code)
	img, err = png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestHTTPDepthFrameRaw(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/depth/frame?fmt=raw", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "480", resp.Header().Get("X-Rows"))
	assert.Equal(t, "640", resp.Header().Get("X-Cols"))
	assert.Equal(t, 4*480*640, resp.Body.Len())
}

func TestHTTPDepthFrameBadFormat(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/depth/frame?fmt=bmp", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHTTPNoFrameIsUnavailable(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.mock.Dry = true
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/visible/frame", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHTTPDepthStats(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/depth/stats", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var s struct {
		Valid   int `json:"valid"`
		Invalid int `json:"invalid"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &s))
	assert.Equal(t, 480*640, s.Valid+s.Invalid)
}

func TestHTTPInfraredFITSIsRecorded(t *testing.T) {
	root := t.TempDir()
	rec := &imgrec.Recorder{Root: root, Prefix: "ir", Enabled: true}
	ts := newTestServer(t, rec)
	ts.do(http.MethodPost, "/start", "")
	resp := ts.do(http.MethodGet, "/infrared/frame?fmt=fits", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/fits", resp.Header().Get("Content-Type"))

	matches, err := filepath.Glob(filepath.Join(root, "*", "ir*.fits"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	onDisk, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, bytes.Equal(resp.Body.Bytes(), onDisk), "expected the recorded file to match the response")
}

func TestHTTPEndpointsAndRecorderRoutes(t *testing.T) {
	ts := newTestServer(t, &imgrec.Recorder{})
	resp := ts.do(http.MethodGet, "/endpoints", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var routes []string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &routes))
	assert.Contains(t, routes, "POST /start")
	assert.Contains(t, routes, "GET /depth/frame")
	assert.Contains(t, routes, "POST /autowrite/enabled")
}

func TestDoRecoversViolation(t *testing.T) {
	ts := newTestServer(t, nil)
	err := ts.w.Do(func(s *Session) { s.DepthFrame() })
	assert.Error(t, err)
}

func TestHTTPFitsWhileTogglingRecorder(t *testing.T) {
	root := t.TempDir()
	ts := newTestServer(t, &imgrec.Recorder{Root: root, Prefix: "depth", Enabled: true})
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/start", "").Code)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			resp := ts.do(http.MethodGet, "/depth/frame?fmt=fits", "")
			assert.Equal(t, http.StatusOK, resp.Code)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			body := `{"bool":false}`
			if i%2 == 1 {
				body = `{"bool":true}`
			}
			resp := ts.do(http.MethodPost, "/autowrite/enabled", body)
			assert.Equal(t, http.StatusOK, resp.Code)
		}
	}()
	wg.Wait()
	assert.True(t, ts.w.Recorder.Active())
}
