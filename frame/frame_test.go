package frame_test

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasa-jpl/structurecam/frame"
)

func TestDepthShapeTable(t *testing.T) {
	vga, err := frame.DepthShape(frame.VGA)
	require.NoError(t, err)
	sxga, err := frame.DepthShape(frame.SXGA)
	require.NoError(t, err)

	got := []frame.Shape{vga, sxga}
	want := []frame.Shape{
		{Rows: 480, Cols: 640, Channels: 1},
		{Rows: 960, Cols: 1280, Channels: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("depth shapes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1280*960, frame.MaxDepthLen())
}

func TestDepthShapeUnsupported(t *testing.T) {
	_, err := frame.DepthShape(frame.Resolution(7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, frame.ErrUnsupportedResolution))
}

func TestInfraredDualModeDoublesWidth(t *testing.T) {
	single, err := frame.InfraredShape(frame.InfraredLeft)
	require.NoError(t, err)
	dual, err := frame.InfraredShape(frame.InfraredRightLeft)
	require.NoError(t, err)
	assert.Equal(t, single.Rows, dual.Rows)
	assert.Equal(t, 2*single.Cols, dual.Cols)
	assert.Equal(t, dual.Len(), frame.MaxInfraredLen())

	_, err = frame.InfraredShape(frame.InfraredMode(9))
	assert.True(t, errors.Is(err, frame.ErrUnsupportedInfraredMode))
}

func TestDecodeDepthKeepsLayoutAndNaN(t *testing.T) {
	s := frame.Shape{Rows: 2, Cols: 3, Channels: 1}
	nan := float32(math.NaN())
	buf := []float32{1, 2, 3, 4, nan, 6}
	m, err := frame.DecodeDepth(buf, s)
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 3., m.At(0, 2))
	assert.Equal(t, 4., m.At(1, 0))
	assert.True(t, math.IsNaN(m.At(1, 1)))

	// the matrix must not alias the driver buffer
	buf[0] = 100
	assert.Equal(t, 1., m.At(0, 0))
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	s := frame.Shape{Rows: 2, Cols: 2, Channels: 1}
	_, err := frame.DecodeDepth(make([]float32, 3), s)
	assert.True(t, errors.Is(err, frame.ErrShapeMismatch))

	_, err = frame.DecodeInfrared(make([]uint16, 5), s)
	assert.True(t, errors.Is(err, frame.ErrShapeMismatch))

	_, err = frame.DecodeVisible(make([]uint8, 4), frame.Shape{Rows: 2, Cols: 2, Channels: 3})
	assert.True(t, errors.Is(err, frame.ErrShapeMismatch))
}

func TestDecodeVisible(t *testing.T) {
	s := frame.Shape{Rows: 1, Cols: 2, Channels: 3}
	im, err := frame.DecodeVisible([]uint8{10, 20, 30, 40, 50, 60}, s)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 40, G: 50, B: 60, A: 255}, im.At(1, 0))
	assert.Equal(t, []uint8{30, 20, 10, 60, 50, 40}, im.BGR())
}

func TestDecodeInfraredAndSplit(t *testing.T) {
	s := frame.Shape{Rows: 1, Cols: 4, Channels: 1}
	im, err := frame.DecodeInfrared([]uint16{1, 2, 0x0300, 0xffff}, s)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0300), im.Gray16At(2, 0).Y)

	left, right := frame.SplitDual(im)
	assert.Equal(t, 2, right.Bounds().Dx())
	assert.Equal(t, 2, left.Bounds().Dx())
	assert.Equal(t, uint16(1), right.Gray16At(0, 0).Y)
	assert.Equal(t, uint16(0xffff), left.Gray16At(3, 0).Y)
}

func TestParseEnums(t *testing.T) {
	r, err := frame.ParseResolution("sxga")
	require.NoError(t, err)
	assert.Equal(t, frame.SXGA, r)

	r, err = frame.ParseResolution("2")
	require.NoError(t, err)
	assert.Equal(t, frame.SXGA, r)

	d, err := frame.ParseDepthRange("very-short")
	require.NoError(t, err)
	assert.Equal(t, frame.RangeVeryShort, d)
	lo, hi, ok := frame.RangeHybrid.Bounds()
	assert.True(t, ok)
	assert.Equal(t, 350., lo)
	assert.Equal(t, 10000., hi)
	_, _, ok = frame.RangeDefault.Bounds()
	assert.False(t, ok)

	c, err := frame.ParseCalibrationMode("one_shot")
	require.NoError(t, err)
	assert.Equal(t, frame.CalibrationOneShot, c)
	_, err = frame.ParseCalibrationMode("sometimes")
	assert.Error(t, err)

	m, err := frame.ParseInfraredMode("RightLeft")
	require.NoError(t, err)
	assert.Equal(t, frame.InfraredRightLeft, m)
	assert.Equal(t, "RightLeft", m.String())
}
