package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/theckman/yacspin"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/config"
	"github.com/nasa-jpl/structurecam/imgrec"
	"github.com/nasa-jpl/structurecam/publish"
	"github.com/nasa-jpl/structurecam/server/middleware/locker"
	"github.com/nasa-jpl/structurecam/structure"
	"github.com/nasa-jpl/structurecam/usbprobe"
	"github.com/nasa-jpl/structurecam/util"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = config.FileName
)

func root() {
	str := `structure-http exposes control of Structure Core depth cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of linking the vendor SDK.

Usage:
	structure-http <command> [args]

Commands:
	run
	help
	mkconf
	conf
	devices
	version`
	fmt.Println(str)
}

func help() {
	str := `structure-http is amenable to configuration via its .yml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.
There is no need to do this unless you want to start from the prepopulated defaults when making
a config file.

The Camera section is applied before streaming starts.  Those settings can only be changed
over HTTP after POST /stop, and requests which try to change them while streaming get 409.

If the driver refuses to start, structure-http retries for StartTimeout before giving up.
Use the devices command to check that the sensor is visible on the USB bus.
devices takes an optional vendor ID in hex, such as 'devices 2959', to narrow
the list.

Mock: true runs against a simulated camera, no sensor or SDK needed.

MQTT.Broker, if not empty, is a broker URL such as tcp://localhost:1883.  Processed depth
frames are published as PNG on <Topic>/depth and their statistics as JSON on <Topic>/stats,
no more often than Interval.`
	fmt.Println(str)
}

func mkconf() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = config.Write(f, c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	err = config.Write(os.Stdout, c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("structure-http version %v\n", Version)
}

// devices lists USB devices, only those of the vendor ID in args if given
func devices(args []string) {
	devs, err := usbprobe.List()
	if err != nil {
		log.Println(err)
	}
	if len(args) > 0 {
		vid, err := usbprobe.ParseID(args[0])
		if err != nil {
			log.Fatal(err)
		}
		devs = usbprobe.Filter(devs, vid)
	}
	usbprobe.Print(os.Stdout, devs)
}

// startWithRetry starts the session, retrying with exponential backoff until
// timeout while the driver refuses
func startWithRetry(sess *structure.Session, timeout time.Duration) error {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[11],
		Suffix:            " starting camera",
		StopCharacter:     "✓",
		StopFailCharacter: "✗",
		StopMessage:       "streaming",
		StopFailMessage:   "driver refused to start",
	})
	if err == nil {
		spinner.Start()
	}
	attempts := 0
	op := func() error {
		attempts++
		if sess.Start() {
			return nil
		}
		if spinner != nil {
			spinner.Message(fmt.Sprintf("attempt %d refused", attempts))
		}
		return errors.New("driver refused to start")
	}
	err = backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     250 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         2 * time.Second,
		MaxElapsedTime:      timeout,
		Clock:               backoff.SystemClock})
	if spinner != nil {
		if err != nil {
			spinner.StopFail()
		} else {
			spinner.Stop()
		}
	}
	return errors.Wrapf(err, "after %d attempts", attempts)
}

func run() {
	cfg, err := config.Load(ConfigFileName)
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
		logger.Infow("using the simulated camera")
		d = structure.NewMock()
	} else {
		d, err = structure.NewNative()
		if err != nil {
			logger.Fatalw("opening the driver", "err", err)
		}
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

	err = startWithRetry(sess, cfg.StartTimeout)
	if err != nil {
		logger.Fatalw("could not start the camera, run the devices command to check it is connected", "err", err)
	}

	rc := cfg.Recorder
	rec := &imgrec.Recorder{Root: rc.Root, Prefix: rc.Prefix, Enabled: rc.Enabled}
	w := structure.NewHTTPWrapper(sess, pipe, rec)
	w.Colormap = cfg.Pipeline.Colormap
	lock := locker.New()
	locker.Inject(w, lock)

	// clean up the submux string
	hndlrS := util.SubMuxSanitize(cfg.Root)
	root := chi.NewRouter()
	mux := chi.NewRouter()
	mux.Use(lock.Check)
	w.RT().Bind(mux)
	root.Mount(hndlrS, mux)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.MQTT.Broker != "" {
		go publishLoop(ctx, cfg.MQTT, w, logger)
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: root}
	go func() {
		logger.Infow("now listening for requests", "addr", cfg.Addr+hndlrS)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("http server", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	srv.Shutdown(shutdown)
	w.Do(func(s *structure.Session) { s.Stop() })
}

// publishLoop feeds depth frames from the HTTP wrapper's session to MQTT
// until ctx is done
func publishLoop(ctx context.Context, c config.MQTT, w *structure.HTTPWrapper, logger *zap.SugaredLogger) {
	pub, err := publish.Connect(c.Broker, c.ClientID, c.Topic, w.Pipeline, logger)
	if err != nil {
		logger.Errorw("mqtt publisher disabled", "err", err)
		return
	}
	defer pub.Close()
	pub.Colormap = w.Colormap
	src := func() (*mat.Dense, error) {
		var (
			depth *mat.Dense
			ferr  error
		)
		err := w.Do(func(s *structure.Session) {
			depth, ferr = s.DepthFrame()
		})
		if err != nil {
			return nil, err
		}
		return depth, ferr
	}
	logger.Infow("publishing depth frames", "broker", c.Broker, "topic", c.Topic, "interval", c.Interval)
	pub.Run(ctx, c.Interval, src)
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "devices":
		devices(args[2:])
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
