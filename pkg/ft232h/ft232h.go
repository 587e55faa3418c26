package ft232h

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/yunginnanet/ft232h"
	"go.uber.org/multierr"
)

// DeviceInfo is a snapshot of an open adapter's USB identity.
type DeviceInfo struct {
	Index       int
	Serial      string
	Description string
	ProductID   string
	VendorID    string
	IsOpen      bool
	IsHighSpeed bool
}

func (di DeviceInfo) String() string {
	return fmt.Sprintf(
		"DeviceInfo{Index:%d, Serial:%s, Description:%s, ProductID:%s, VendorID:%s, IsOpen:%t, IsHighSpeed:%t}",
		di.Index, di.Serial, di.Description, di.ProductID, di.VendorID, di.IsOpen, di.IsHighSpeed,
	)
}

// FT232H is an adapter whose ACBUS (port C) pins drive LED control lines.
type FT232H struct {
	*ft232h.FT232H
	pins []*Pin
}

// Connect opens the first adapter found, or the one matching choice.
func Connect(choice ...Descriptor) (ft *FT232H, err error) {
	ft = &FT232H{}

	switch len(choice) {
	case 0:
		ft.FT232H, err = ft232h.New()
	case 1:
		if err = choice[0].Validate(); err != nil {
			return nil, err
		}
		ft.FT232H, err = ft232h.OpenMask(choice[0].Mask())
	default:
		return nil, fmt.Errorf("expected at most one descriptor, got %d", len(choice))
	}
	if err != nil {
		return nil, fmt.Errorf("open FT232H: %w", err)
	}
	return ft, nil
}

// Info returns a snapshot of the device information.
func (ft *FT232H) Info() DeviceInfo {
	vid, pid := ft.vidPid()
	return DeviceInfo{
		Index:       ft.Index(),
		Serial:      ft.Serial(),
		Description: ft.Desc(),
		ProductID:   pid,
		VendorID:    vid,
		IsOpen:      ft.IsOpen(),
		IsHighSpeed: ft.IsHiSpeed(),
	}
}

func (ft *FT232H) String() string {
	info := ft.Info()
	return fmt.Sprintf("FT232H[%s:%s]: %s", info.VendorID, info.ProductID, info.Description)
}

// Output configures ACBUS pin (0-7) as an output driven low.
func (ft *FT232H) Output(pin uint) (*Pin, error) {
	if pin > 7 {
		return nil, fmt.Errorf("%w: C%d", ErrBadPin, pin)
	}
	p := &Pin{gpio: ft.GPIO, pin: ft232h.CPin(1 << pin), pos: pin}
	if err := ft.GPIO.ConfigPin(p.pin, ft232h.Output, false); err != nil {
		return nil, fmt.Errorf("configure C%d: %w", pin, err)
	}
	ft.pins = append(ft.pins, p)
	return p, nil
}

// Outputs configures each pin as an output.
func (ft *FT232H) Outputs(pins ...uint) ([]*Pin, error) {
	out := make([]*Pin, 0, len(pins))
	for _, pin := range pins {
		p, err := ft.Output(pin)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Close drives every configured pin low and closes the adapter.
func (ft *FT232H) Close() error {
	var err error
	for _, p := range ft.pins {
		err = multierr.Append(err, p.Set(false))
	}
	ft.pins = nil
	return multierr.Append(err, ft.FT232H.Close())
}

func (ft *FT232H) vidPid() (vid string, pid string) {
	vid = strconv.Itoa(int(ft.VID()))
	pid = strconv.Itoa(int(ft.PID()))

	b := bytes.NewBuffer(nil)
	h := hex.NewEncoder(b)

	if err := binary.Write(h, binary.BigEndian, ft.VID()); err == nil && len(b.String()) > 5 {
		vid = b.String()[4:]
	}

	b.Reset()

	if err := binary.Write(h, binary.BigEndian, ft.PID()); err == nil && len(b.String()) > 5 {
		pid = b.String()[4:]
	}

	return vid, pid
}
