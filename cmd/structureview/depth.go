//go:build gocv

package main

import (
	"errors"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/camera"
	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/structure"
)

// depthFeed pulls depth frames for the display loop.  Failures are logged
// and the loop carries on, so the session is still stopped on the way out.
// A failure repeating every pass is logged once until it changes.
type depthFeed struct {
	src  camera.DepthSource
	pipe depthproc.Pipeline
	log  *zap.SugaredLogger

	lastErr string
}

// next returns the raw and processed frame, or nils when there is nothing
// to show this pass
func (d *depthFeed) next() (raw, processed *mat.Dense) {
	raw, err := d.src.DepthFrame()
	if err != nil {
		if !errors.Is(err, structure.ErrNoFrame) {
			d.warn("depth frame", err)
		}
		return nil, nil
	}
	processed, err = d.pipe.Process(raw)
	if err != nil {
		d.warn("processing depth", err)
		return raw, nil
	}
	d.lastErr = ""
	return raw, processed
}

func (d *depthFeed) warn(msg string, err error) {
	if err.Error() == d.lastErr {
		return
	}
	d.lastErr = err.Error()
	d.log.Warnw(msg, "err", err)
}
