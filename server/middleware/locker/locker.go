// Package locker provides an HTTP middleware which allows a handler to be locked, returning 423 (locked).
//
// An operator running a long acquisition locks the camera so other clients
// cannot restart it or change its settings mid-sequence.  Requests that carry
// the lock holder's name in the OwnerHeader pass through, so the operator
// keeps full control while everyone else is held off.
package locker

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/structurecam/generichttp"
)

// OwnerHeader names the operator making a request
const OwnerHeader = "X-Operator"

// ErrHeld is returned when another operator holds the lock
var ErrHeld = errors.New("lock held by another operator")

// Inject adds a lock route to a generichttp.HTTPer which is used to manipulate the locker
func Inject(other generichttp.HTTPer, l *Locker) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/lock"}] = l.HTTPGet
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/lock"}] = l.HTTPSet
}

// Status describes the state of the lock
type Status struct {
	Locked bool      `json:"locked"`
	Owner  string    `json:"owner,omitempty"`
	Since  time.Time `json:"since,omitempty"`
}

// Locker is a non-blocking lock with an owner, and holds a list of paths to
// not protect
type Locker struct {
	mu     sync.Mutex
	status Status

	// DoNotProtect is a list of path fragments not to apply the lock to
	DoNotProtect []string

	// ReadOnly lets GET requests through while locked
	ReadOnly bool
}

// New returns a new Locker with DoNotProtect prepopulated with "lock"
func New() *Locker {
	return &Locker{DoNotProtect: []string{"lock"}}
}

// holds is true if owner may act on the lock as it is.  An anonymous lock
// may be taken over or released by anyone.
func (l *Locker) holds(owner string) bool {
	return !l.status.Locked || l.status.Owner == "" || l.status.Owner == owner
}

// Lock takes the lock for owner.  Locking again as the holder keeps the
// original time.
func (l *Locker) Lock(owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.holds(owner) {
		return errors.Wrapf(ErrHeld, "held by %s", l.status.Owner)
	}
	if l.status.Locked && l.status.Owner == owner {
		return nil
	}
	l.status = Status{Locked: true, Owner: owner, Since: time.Now()}
	return nil
}

// Unlock releases the lock held by owner
func (l *Locker) Unlock(owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.holds(owner) {
		return errors.Wrapf(ErrHeld, "held by %s", l.status.Owner)
	}
	l.status = Status{}
	return nil
}

// Locked returns true if the locker is locked
func (l *Locker) Locked() bool {
	return l.Status().Locked
}

// Status returns a snapshot of the lock
func (l *Locker) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Check is an HTTP middleware that returns http.StatusLocked if the request
// is protected and not from the lock holder, otherwise passes down the line
func (l *Locker) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := l.Status()
		if st.Locked && l.protects(r) && (st.Owner == "" || r.Header.Get(OwnerHeader) != st.Owner) {
			msg := "camera is locked"
			if st.Owner != "" {
				msg += " by " + st.Owner
			}
			http.Error(w, msg, http.StatusLocked)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Locker) protects(r *http.Request) bool {
	if l.ReadOnly && r.Method == http.MethodGet {
		return false
	}
	for _, str := range l.DoNotProtect {
		if strings.Contains(r.URL.Path, str) {
			return false
		}
	}
	return true
}

// HTTPSet locks or unlocks based on json:bool on the request body, as the
// operator named in OwnerHeader.  409 if someone else holds the lock.
func (l *Locker) HTTPSet(w http.ResponseWriter, r *http.Request) {
	b := generichttp.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&b)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owner := r.Header.Get(OwnerHeader)
	if b.Bool {
		err = l.Lock(owner)
	} else {
		err = l.Unlock(owner)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HTTPGet returns the Status over HTTP as JSON
func (l *Locker) HTTPGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(l.Status())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
