// Package publish sends processed depth frames and their statistics to an
// MQTT broker
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"

	"github.com/nasa-jpl/structurecam/camera"
	"github.com/nasa-jpl/structurecam/depthproc"
)

// PublishTimeout bounds how long a single publish may wait on the broker
const PublishTimeout = 5 * time.Second

// Client is the part of mqtt.Client the publisher uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Source returns the next raw depth frame
type Source func() (*mat.Dense, error)

// FromCamera adapts a depth source which is safe to poll without further
// locking
func FromCamera(d camera.DepthSource) Source {
	return d.DepthFrame
}

// Publisher publishes depth frames as PNG on <Topic>/depth and their
// depthproc.Summary as JSON on <Topic>/stats
type Publisher struct {
	client Client

	// Topic is the topic prefix
	Topic string

	// QoS is the MQTT quality of service for every message
	QoS byte

	// Pipeline renders the depth frames
	Pipeline depthproc.Pipeline

	// Colormap publishes colorized instead of grayscale frames
	Colormap bool

	log *zap.SugaredLogger
}

// New returns a publisher using an already connected client
func New(c Client, topic string, p depthproc.Pipeline, log *zap.SugaredLogger) *Publisher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Publisher{client: c, Topic: topic, QoS: 1, Pipeline: p, log: log}
}

// Connect dials broker and returns a publisher on top of the connection
func Connect(broker, clientID, topic string, p depthproc.Pipeline, log *zap.SugaredLogger) (*Publisher, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "connecting to %s", broker)
	}
	return New(c, topic, p, log), nil
}

// Close disconnects from the broker, waiting up to 250 ms for in flight
// messages
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (p *Publisher) send(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.QoS, false, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return errors.Errorf("publishing to %s timed out", topic)
	}
	return token.Error()
}

// Stats publishes a summary as JSON
func (p *Publisher) Stats(s depthproc.Summary) error {
	msg, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.send(p.Topic+"/stats", msg)
}

// Depth runs depth through the pipeline and publishes the rendering as PNG
func (p *Publisher) Depth(depth *mat.Dense) error {
	processed, err := p.Pipeline.Process(depth)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if p.Colormap {
		err = png.Encode(&buf, depthproc.Colorize(processed))
	} else {
		err = png.Encode(&buf, depthproc.Gray(processed))
	}
	if err != nil {
		return err
	}
	return p.send(p.Topic+"/depth", buf.Bytes())
}

// Frame publishes the stats and the rendering of one raw depth frame
func (p *Publisher) Frame(depth *mat.Dense) error {
	if err := p.Stats(depthproc.Stats(depth)); err != nil {
		return err
	}
	return p.Depth(depth)
}

// Run polls src no more often than every interval and publishes each frame
// until ctx is done.  Errors from src or the broker are logged and the loop
// continues; only the end of ctx stops it.
func (p *Publisher) Run(ctx context.Context, interval time.Duration, src Source) error {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		depth, err := src()
		if err != nil {
			p.log.Debugw("no depth frame to publish", "err", err)
			continue
		}
		if err = p.Frame(depth); err != nil {
			p.log.Warnw("publishing depth frame", "err", err)
		}
	}
}
