package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nasa-jpl/structurecam/depthproc"
	"github.com/nasa-jpl/structurecam/structure"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

type message struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	sync.Mutex
	msgs []message
	fail error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.Lock()
	defer f.Unlock()
	f.msgs = append(f.msgs, message{topic, payload.([]byte)})
	return doneToken{f.fail}
}

func (f *fakeClient) Disconnect(uint) {}

func (f *fakeClient) messages() []message {
	f.Lock()
	defer f.Unlock()
	return append([]message(nil), f.msgs...)
}

func testPipeline() depthproc.Pipeline {
	p := depthproc.NewPipeline()
	p.Fill = depthproc.Filler{Mode: depthproc.Constant, Constant: 900}
	return p
}

func depth() *mat.Dense {
	return mat.NewDense(2, 2, []float64{300, math.NaN(), 1500, 900})
}

func TestFramePublishesStatsThenDepth(t *testing.T) {
	c := &fakeClient{}
	p := New(c, "lab/cam", testPipeline(), nil)
	require.NoError(t, p.Frame(depth()))

	msgs := c.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "lab/cam/stats", msgs[0].topic)
	assert.Equal(t, "lab/cam/depth", msgs[1].topic)

	var s struct {
		Min     float64 `json:"min"`
		Invalid int     `json:"invalid"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].payload, &s))
	assert.Equal(t, 300.0, s.Min)
	assert.Equal(t, 1, s.Invalid)

	img, err := png.Decode(bytes.NewReader(msgs[1].payload))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestBrokerErrorIsReturned(t *testing.T) {
	c := &fakeClient{fail: errors.New("not connected")}
	p := New(c, "lab/cam", testPipeline(), nil)
	assert.Error(t, p.Frame(depth()))
}

func TestRunStopsWithContext(t *testing.T) {
	c := &fakeClient{}
	p := New(c, "cam", testPipeline(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	src := func() (*mat.Dense, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("no frame yet")
		}
		if calls >= 3 {
			cancel()
		}
		return depth(), nil
	}
	err := p.Run(ctx, time.Millisecond, src)
	assert.True(t, errors.Is(err, context.Canceled))
	// frames 1 and 3 published, frame 2 skipped
	assert.Len(t, c.messages(), 4)
}

func TestFromCameraPublishesSessionFrames(t *testing.T) {
	sess := structure.NewSession(structure.NewMock())
	require.True(t, sess.Start())
	defer sess.Stop()

	c := &fakeClient{}
	p := New(c, "cam", testPipeline(), nil)
	d, err := FromCamera(sess)()
	require.NoError(t, err)
	require.NoError(t, p.Frame(d))
	assert.Len(t, c.messages(), 2)
}
