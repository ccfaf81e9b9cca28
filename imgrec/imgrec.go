// Package imgrec contains an image recorder used to automatically save frames to disk.
package imgrec

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/structurecam/generichttp"
	"github.com/nasa-jpl/structurecam/server"
)

// Recorder records FITS files with incrementing filenames in yyyy-mm-dd
// subfolders of Root.  The zero value with a Root is usable.
type Recorder struct {
	mu sync.Mutex

	// counter is the number of the next file
	counter int

	// last is the path of the most recent recording
	last string

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// Enabled is not used by the recorder, it lets consumers switch
	// recording on and off
	Enabled bool

	// now is time.Now, replaced in tests
	now func() time.Time
}

// Active is true if the recorder is enabled and has somewhere to write
func (r *Recorder) Active() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Enabled && r.Root != ""
}

// folder is the dated subfolder for today
func (r *Recorder) folder() string {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return filepath.Join(r.Root, now().Format("2006-01-02"))
}

// Record creates the next file and passes it to write.  The counter is
// advanced past any file already in the folder, so restarting a program does
// not overwrite earlier recordings.  The path of the file is returned.  If
// write fails the file is removed and the counter is not advanced.
func (r *Recorder) Record(write func(io.Writer) error) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fldr := r.folder()
	err := os.MkdirAll(fldr, 0777)
	if err != nil {
		return "", errors.Wrap(err, "making recorder folder")
	}
	next, err := r.scan(fldr)
	if err != nil {
		return "", err
	}
	if next > r.counter {
		r.counter = next
	}
	fn := filepath.Join(fldr, fmt.Sprintf("%s%06d.fits", r.Prefix, r.counter))
	f, err := os.OpenFile(fn, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0666)
	if err != nil {
		return "", err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(fn)
		return "", errors.Wrapf(err, "recording %s", fn)
	}
	r.counter++
	r.last = fn
	return fn, nil
}

// Last is the path of the most recent recording, or "" if there is none
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// scan returns one more than the highest counter in fldr for this prefix
func (r *Recorder) scan(fldr string) (int, error) {
	entries, err := os.ReadDir(fldr)
	if err != nil {
		return 0, err
	}
	count := -1
	for _, e := range entries {
		// skip directories, non-fits, and wrong prefix
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		if !strings.HasSuffix(fn, ".fits") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), ".fits")
		n, err := strconv.Atoi(bit)
		if err != nil {
			continue
		}
		if n > count {
			count = n
		}
	}
	return count + 1, nil
}

// locked runs fn under the recorder's lock, resetting the counter when
// the destination changes so the next Record rescans
func (r *Recorder) locked(fn func(), moved bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
	if moved {
		r.counter = 0
	}
}

// HTTPWrapper exposes a recorder's destination and switch over HTTP.  It is
// not an HTTPer of its own; Inject adds its routes to one.
type HTTPWrapper struct {
	*Recorder
}

// NewHTTPWrapper returns an HTTP wrapper around a recorder
func NewHTTPWrapper(r *Recorder) HTTPWrapper {
	return HTTPWrapper{r}
}

func (h HTTPWrapper) root() (out string, err error) {
	h.locked(func() { out = h.Root }, false)
	return
}

// setRoot creates the folder first so a bad path is rejected up front
func (h HTTPWrapper) setRoot(dir string) error {
	if dir == "" {
		return errors.Wrap(generichttp.ErrBadInput, "empty root")
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return errors.Wrap(generichttp.ErrBadInput, err.Error())
	}
	h.locked(func() { h.Root = dir }, true)
	return nil
}

func (h HTTPWrapper) prefix() (out string, err error) {
	h.locked(func() { out = h.Prefix }, false)
	return
}

func (h HTTPWrapper) setPrefix(p string) error {
	if strings.ContainsAny(p, `/\`) {
		return errors.Wrapf(generichttp.ErrBadInput, "prefix %q contains a path separator", p)
	}
	h.locked(func() { h.Prefix = p }, true)
	return nil
}

func (h HTTPWrapper) enabled() (out bool, err error) {
	h.locked(func() { out = h.Enabled }, false)
	return
}

func (h HTTPWrapper) setEnabled(b bool) error {
	h.locked(func() { h.Enabled = b }, false)
	return nil
}

// GetLast serves the most recently recorded file
func (h HTTPWrapper) GetLast(w http.ResponseWriter, r *http.Request) {
	fn := h.Recorder.Last()
	if fn == "" {
		http.Error(w, "nothing has been recorded", http.StatusNotFound)
		return
	}
	server.ReplyWithFile(w, r, fn, "image/fits")
}

// Inject adds the /autowrite/* routes to the HTTPer
func (h HTTPWrapper) Inject(other generichttp.HTTPer) {
	rt := other.RT()
	get := func(path string) generichttp.MethodPath {
		return generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/" + path}
	}
	post := func(path string) generichttp.MethodPath {
		return generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/" + path}
	}
	rt[get("root")] = generichttp.GetString(h.root)
	rt[post("root")] = generichttp.SetString(h.setRoot)
	rt[get("prefix")] = generichttp.GetString(h.prefix)
	rt[post("prefix")] = generichttp.SetString(h.setPrefix)
	rt[get("enabled")] = generichttp.GetBool(h.enabled)
	rt[post("enabled")] = generichttp.SetBool(h.setEnabled)
	rt[get("last")] = h.GetLast
}
