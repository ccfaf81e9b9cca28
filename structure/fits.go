package structure

import (
	"encoding/binary"
	"image"
	"io"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// WRAPVER is the version of this package's FITS header layout.
// Increment it when the cards written by HeaderMetadata change.
const WRAPVER = 1

// HeaderMetadata returns FITS cards describing the session's configuration
func (s *Session) HeaderMetadata() []fitsio.Card {
	return []fitsio.Card{
		{Name: "WRAPVER", Value: WRAPVER, Comment: "structure header version"},
		{Name: "SESSION", Value: s.ID.String(), Comment: "camera session id"},
		{Name: "DEPRES", Value: s.DepthResolution().String(), Comment: "depth resolution"},
		{Name: "DEPRANGE", Value: s.DepthRange().String(), Comment: "depth range preset"},
		{Name: "CALMODE", Value: s.CalibrationMode().String(), Comment: "dynamic calibration mode"},
		{Name: "DEPCORR", Value: s.DepthCorrection(), Comment: "expensive depth correction"},
		{Name: "IRMODE", Value: s.InfraredMode().String(), Comment: "infrared sensors streamed"},
		{Name: "VISEXP", Value: s.VisibleExposure().Seconds(), Comment: "visible exposure, s"},
		{Name: "VISGAIN", Value: s.VisibleGain(), Comment: "visible gain"},
		{Name: "IREXP", Value: s.InfraredExposure().Seconds(), Comment: "infrared exposure, s"},
		{Name: "IRGAIN", Value: s.InfraredGain(), Comment: "infrared gain"},
		{Name: "IRAUTO", Value: s.InfraredAutoExposure(), Comment: "infrared auto exposure"},
	}
}

// WriteDepthFITS streams a depth frame to w as a 32-bit float FITS image in
// millimeters.  NaN holes are kept.
func WriteDepthFITS(w io.Writer, metadata []fitsio.Card, m mat.Matrix) error {
	rows, cols := m.Dims()
	metadata = append(metadata, fitsio.Card{Name: "BUNIT", Value: "mm", Comment: "depth unit"})
	data := make([]float32, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data = append(data, float32(m.At(i, j)))
		}
	}
	return writeFITS(w, -32, cols, rows, metadata, data)
}

// WriteInfraredFITS streams an infrared frame to w as a 16-bit FITS image.
// FITS has no unsigned 16-bit type, so samples are offset by BZERO.
func WriteInfraredFITS(w io.Writer, metadata []fitsio.Card, im *image.Gray16) error {
	b := im.Bounds()
	width, height := b.Dx(), b.Dy()
	metadata = append(metadata,
		fitsio.Card{Name: "BZERO", Value: 32768},
		fitsio.Card{Name: "BSCALE", Value: 1.0})
	data := make([]int16, 0, width*height)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := im.Pix[im.PixOffset(b.Min.X, y):]
		for x := 0; x < width; x++ {
			u := binary.BigEndian.Uint16(row[2*x:])
			data = append(data, int16(int32(u)-32768))
		}
	}
	return writeFITS(w, 16, width, height, metadata, data)
}

func writeFITS(w io.Writer, bitpix, width, height int, metadata []fitsio.Card, data interface{}) error {
	fits, err := fitsio.Create(w)
	if err != nil {
		return errors.Wrap(err, "creating fits stream")
	}
	defer fits.Close()
	im := fitsio.NewImage(bitpix, []int{width, height})
	defer im.Close()
	err = im.Header().Append(metadata...)
	if err != nil {
		return err
	}
	err = im.Write(data)
	if err != nil {
		return err
	}
	return fits.Write(im)
}
