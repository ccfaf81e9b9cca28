package locker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/structurecam/generichttp"
)

type table generichttp.RouteTable

func (t table) RT() generichttp.RouteTable { return generichttp.RouteTable(t) }

func newRouter(l *Locker) chi.Router {
	rt := table{
		{Method: http.MethodPost, Path: "/start"}:   func(w http.ResponseWriter, r *http.Request) {},
		{Method: http.MethodGet, Path: "/settings"}: func(w http.ResponseWriter, r *http.Request) {},
	}
	Inject(rt, l)
	mux := chi.NewRouter()
	mux.Use(l.Check)
	generichttp.RouteTable(rt).Bind(mux)
	return mux
}

func serve(h http.Handler, method, path, owner, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	h.ServeHTTP(w, req)
	return w
}

func TestAnonymousLockHoldsEveryone(t *testing.T) {
	l := New()
	mux := newRouter(l)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/start", "", "").Code)

	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/lock", "", `{"bool":true}`).Code)
	assert.True(t, l.Locked())
	assert.Equal(t, http.StatusLocked, serve(mux, http.MethodPost, "/start", "", "").Code)
	assert.Equal(t, http.StatusLocked, serve(mux, http.MethodGet, "/settings", "ada", "").Code)

	// the lock route itself is never protected
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/lock", "", `{"bool":false}`).Code)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/start", "", "").Code)
}

func TestOwnerPassesThrough(t *testing.T) {
	l := New()
	mux := newRouter(l)
	require.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/lock", "ada", `{"bool":true}`).Code)

	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/start", "ada", "").Code)
	w := serve(mux, http.MethodPost, "/start", "bob", "")
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "ada")

	// only the holder may release
	assert.Equal(t, http.StatusConflict, serve(mux, http.MethodPost, "/lock", "bob", `{"bool":false}`).Code)
	assert.Equal(t, http.StatusConflict, serve(mux, http.MethodPost, "/lock", "bob", `{"bool":true}`).Code)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodPost, "/lock", "ada", `{"bool":false}`).Code)
	assert.False(t, l.Locked())
}

func TestLockErrors(t *testing.T) {
	l := New()
	require.NoError(t, l.Lock("ada"))
	since := l.Status().Since
	require.NoError(t, l.Lock("ada"))
	assert.Equal(t, since, l.Status().Since)
	assert.True(t, errors.Is(l.Unlock("bob"), ErrHeld))
	assert.True(t, errors.Is(l.Lock("bob"), ErrHeld))
}

func TestGetLockStatus(t *testing.T) {
	l := New()
	mux := newRouter(l)
	require.NoError(t, l.Lock("ada"))
	w := serve(mux, http.MethodGet, "/lock", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var st Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	assert.True(t, st.Locked)
	assert.Equal(t, "ada", st.Owner)
	assert.False(t, st.Since.IsZero())
}

func TestReadOnlyLetsGetsThrough(t *testing.T) {
	l := New()
	l.ReadOnly = true
	require.NoError(t, l.Lock(""))
	mux := newRouter(l)
	assert.Equal(t, http.StatusOK, serve(mux, http.MethodGet, "/settings", "", "").Code)
	assert.Equal(t, http.StatusLocked, serve(mux, http.MethodPost, "/start", "", "").Code)
}
