//go:build gocv

package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/structure"
)

type fakeDepth struct {
	frame *mat.Dense
	err   error
}

func (f *fakeDepth) DepthFrame() (*mat.Dense, error) { return f.frame, f.err }

func newFeed(src *fakeDepth, p depthproc.Pipeline) (*depthFeed, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return &depthFeed{src: src, pipe: p, log: zap.New(core).Sugar()}, logs
}

func TestDepthFeedWarnsOnceOnBadResolution(t *testing.T) {
	src := &fakeDepth{err: errors.New("unsupported depth resolution 42")}
	feed, logs := newFeed(src, depthproc.NewPipeline())
	for i := 0; i < 3; i++ {
		raw, processed := feed.next()
		assert.Nil(t, raw)
		assert.Nil(t, processed)
	}
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "depth frame", logs.All()[0].Message)
}

func TestDepthFeedQuietWhileWaitingForFrames(t *testing.T) {
	src := &fakeDepth{err: errors.Wrap(structure.ErrNoFrame, "depth")}
	feed, logs := newFeed(src, depthproc.NewPipeline())
	feed.next()
	assert.Equal(t, 0, logs.Len())
}

func TestDepthFeedKeepsRunningOnPipelineError(t *testing.T) {
	src := &fakeDepth{frame: mat.NewDense(2, 2, []float64{400, 500, 600, 700})}
	bad := depthproc.NewPipeline()
	bad.Min, bad.Max = 1500, 300
	feed, logs := newFeed(src, bad)
	raw, processed := feed.next()
	assert.NotNil(t, raw)
	assert.Nil(t, processed)
	assert.Equal(t, 1, logs.Len())

	feed.pipe = depthproc.NewPipeline()
	_, processed = feed.next()
	require.NotNil(t, processed)
	assert.InDelta(t, (400.-300.)/1200., processed.At(0, 0), 1e-12)
}
