/*Package usbprobe lists the USB devices visible to libusb.

When the driver refuses to start, the first question is whether the host can
see the sensor at all; this answers it without the vendor SDK.
*/
package usbprobe

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

// Device describes one attached USB device
type Device struct {
	Bus     int
	Address int
	Vendor  gousb.ID
	Product gousb.ID
	Speed   gousb.Speed
}

func (d Device) String() string {
	return fmt.Sprintf("bus %03d device %03d: ID %s:%s %s", d.Bus, d.Address, d.Vendor, d.Product, d.Speed)
}

// List returns every device on the host, sorted by bus and address.
// No device is opened.
func List() ([]Device, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()
	var out []Device
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		out = append(out, Device{
			Bus:     desc.Bus,
			Address: desc.Address,
			Vendor:  desc.Vendor,
			Product: desc.Product,
			Speed:   desc.Speed,
		})
		return false
	})
	for _, d := range devs {
		d.Close()
	}
	sortDevices(out)
	return out, err
}

func sortDevices(devs []Device) {
	sort.Slice(devs, func(i, j int) bool {
		if devs[i].Bus != devs[j].Bus {
			return devs[i].Bus < devs[j].Bus
		}
		return devs[i].Address < devs[j].Address
	})
}

// Filter returns the devices made by vendor
func Filter(devs []Device, vendor gousb.ID) []Device {
	var out []Device
	for _, d := range devs {
		if d.Vendor == vendor {
			out = append(out, d)
		}
	}
	return out
}

// ParseID parses a vendor or product ID as printed by lsusb, with or
// without a 0x prefix
func ParseID(s string) (gousb.ID, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "USB ID %q", s)
	}
	return gousb.ID(v), nil
}

// Print writes one line per device to w
func Print(w io.Writer, devs []Device) {
	if len(devs) == 0 {
		fmt.Fprintln(w, "no USB devices found")
		return
	}
	for _, d := range devs {
		fmt.Fprintln(w, d)
	}
}
