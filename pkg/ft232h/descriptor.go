package ft232h

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/yunginnanet/ft232h"
)

var (
	ErrBadDescriptor = errors.New("invalid FT232H descriptor provided")
	ErrBadPin        = errors.New("FT232H ACBUS pin out of range")
)

// Descriptor identifies which adapter to open when several are attached.
type Descriptor struct {
	Index  int
	Serial string
	mask   *ft232h.Mask
}

// Validate checks if [Descriptor] selects anything at all.
func (d Descriptor) Validate() error {
	if d.Index < 0 && d.Serial == "" && emptyMask(d.mask) {
		return ErrBadDescriptor
	}
	return nil
}

// Mask returns the [ft232h.Mask] form of the descriptor.
func (d Descriptor) Mask() *ft232h.Mask {
	m := new(ft232h.Mask)
	if d.mask != nil {
		*m = *d.mask
	}
	if d.Serial != "" {
		m.Serial = d.Serial
	}
	if d.Index >= 0 {
		m.Index = strconv.Itoa(d.Index)
	}
	return m
}

func (d Descriptor) String() string {
	return fmt.Sprintf("Descriptor{Index:%d, Serial:%s, mask:%v}", d.Index, d.Serial, d.mask)
}

func ByIndex(index int) Descriptor {
	return Descriptor{Index: index}
}

func BySerial(serial string) Descriptor {
	return Descriptor{Serial: serial, Index: -1}
}

func ByMask(mask *ft232h.Mask) Descriptor {
	return Descriptor{mask: mask, Index: -1}
}

// FromConfig picks a descriptor from optional serial and index settings.
// A serial wins over an index; a negative index with no serial selects the
// first adapter found.
func FromConfig(serial string, index int) (Descriptor, bool) {
	switch {
	case serial != "":
		return BySerial(serial), true
	case index >= 0:
		return ByIndex(index), true
	default:
		return Descriptor{Index: -1}, false
	}
}

func emptyMask(mask *ft232h.Mask) bool {
	return mask == nil || (mask.Serial == "" && mask.PID == "" && mask.VID == "" && mask.Desc == "" && mask.Index == "")
}
