// Package server contains misc server utilities.
package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// ReplyWithFile replies to the client request by serving the file at path.
// The content type is taken from ctype when not empty, otherwise sniffed.
func ReplyWithFile(w http.ResponseWriter, r *http.Request, path, ctype string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s", path, err)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}
	f, err := os.Open(abs)
	if err != nil {
		fstr := fmt.Sprintf("source file missing %s", abs)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	if ctype != "" {
		w.Header().Set("Content-Type", ctype)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(abs)))
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}
