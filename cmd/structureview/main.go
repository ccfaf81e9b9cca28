//go:build gocv

// Command structureview is a local live view of a Structure Core camera.
//
// The visible stream and the processed depth stream are shown side by side.
// Keys:
//
//	Esc  quit
//	c    toggle the depth colormap
//	s    save the current raw depth frame as FITS to the recorder root
package main

import (
	"errors"
	"image"
	"io"
	"log"
	"os"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/nasa-jpl/structurecam/camera"
	"github.com/nasa-jpl/structurecam/config"
	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/imgrec"
	"github.com/nasa-jpl/structurecam/structure"
)

const (
	keyEsc = 27

	// previewWidth matches the VGA visible stream
	previewWidth = 640
)

func main() {
	fn := config.FileName
	if len(os.Args) > 1 {
		fn = os.Args[1]
	}
	cfg, err := config.Load(fn)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.Logger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var d structure.Driver
	if cfg.Mock {
		d = structure.NewMock()
	} else if d, err = structure.NewNative(); err != nil {
		logger.Fatalw("opening the driver", "err", err)
	}
	sess := structure.NewSession(d, structure.WithLogger(logger))
	settings, err := cfg.Camera.Settings()
	if err != nil {
		logger.Fatalw("bad camera config", "err", err)
	}
	sess.Configure(settings)
	pipe, err := cfg.Pipeline.Build()
	if err != nil {
		logger.Fatalw("bad pipeline config", "err", err)
	}
	if !sess.Start() {
		logger.Fatalw("driver refused to start")
	}
	defer sess.Stop()

	rec := &imgrec.Recorder{Root: cfg.Recorder.Root, Prefix: cfg.Recorder.Prefix, Enabled: true}
	colormap := cfg.Pipeline.Colormap

	visWin := gocv.NewWindow("visible")
	defer visWin.Close()
	depWin := gocv.NewWindow("depth")
	defer depWin.Close()

	var cam camera.DepthCamera = sess
	feed := &depthFeed{src: cam, pipe: pipe, log: logger}
	for {
		showVisible(visWin, cam, logger)
		depth, processed := feed.next()
		if processed != nil {
			show(depWin, func() (gocv.Mat, error) {
				var img image.Image = depthproc.Gray(processed)
				if colormap {
					img = depthproc.Colorize(processed)
				}
				return gocv.ImageToMatRGB(depthproc.Thumbnail(img, previewWidth))
			})
		}

		switch depWin.WaitKey(50) {
		case keyEsc:
			return
		case 'c':
			colormap = !colormap
		case 's':
			if depth == nil {
				logger.Warnw("no depth frame to save")
				continue
			}
			meta := sess.HeaderMetadata()
			fn, err := rec.Record(func(w io.Writer) error {
				return structure.WriteDepthFITS(w, meta, depth)
			})
			if err != nil {
				logger.Errorw("saving depth frame", "err", err)
				continue
			}
			logger.Infow("saved depth frame", "file", fn)
		}
	}
}

func showVisible(w *gocv.Window, src camera.VisibleSource, logger *zap.SugaredLogger) {
	rgb, err := src.VisibleFrame()
	if err != nil {
		if !errors.Is(err, structure.ErrNoFrame) {
			logger.Debugw("visible frame", "err", err)
		}
		return
	}
	show(w, func() (gocv.Mat, error) {
		return gocv.NewMatFromBytes(rgb.Height, rgb.Width, gocv.MatTypeCV8UC3, rgb.BGR())
	})
}

func show(w *gocv.Window, build func() (gocv.Mat, error)) {
	m, err := build()
	if err != nil {
		log.Println(err)
		return
	}
	defer m.Close()
	w.IMShow(m)
}
