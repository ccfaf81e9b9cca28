package usbprobe

import (
	"bytes"
	"testing"

	"github.com/google/gousb"
	"github.com/stretchr/testify/assert"
)

func devices() []Device {
	return []Device{
		{Bus: 2, Address: 1, Vendor: 0x1d6b, Product: 0x0003, Speed: gousb.SpeedSuper},
		{Bus: 1, Address: 7, Vendor: 0x2959, Product: 0x3001, Speed: gousb.SpeedSuper},
		{Bus: 1, Address: 2, Vendor: 0x1d6b, Product: 0x0002, Speed: gousb.SpeedHigh},
	}
}

func TestSortDevices(t *testing.T) {
	devs := devices()
	sortDevices(devs)
	assert.Equal(t, []int{2, 7, 1}, []int{devs[0].Address, devs[1].Address, devs[2].Address})
}

func TestFilter(t *testing.T) {
	got := Filter(devices(), 0x1d6b)
	assert.Len(t, got, 2)
	assert.Empty(t, Filter(devices(), 0xffff))
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, devices()[1:2])
	assert.Contains(t, buf.String(), "bus 001 device 007: ID 2959:3001")

	buf.Reset()
	Print(&buf, nil)
	assert.Equal(t, "no USB devices found\n", buf.String())
}

func TestParseID(t *testing.T) {
	for _, in := range []string{"2959", "0x2959", " 0X2959 "} {
		id, err := ParseID(in)
		assert.NoError(t, err, in)
		assert.Equal(t, gousb.ID(0x2959), id, in)
	}
	_, err := ParseID("12345")
	assert.Error(t, err)
	_, err = ParseID("zz")
	assert.Error(t, err)
}

func TestParsedIDNarrowsList(t *testing.T) {
	id, err := ParseID("0x2959")
	assert.NoError(t, err)
	got := Filter(devices(), id)
	assert.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Address)
}
