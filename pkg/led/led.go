// Package led switches the eight illumination LEDs of the scan head.
//
// The LEDs hang off a TLC59210 8-bit latched sink driver. Its D1..D8 inputs are
// fed either directly from eight GPIO lines ([Parallel]) or from the outputs of
// a 74HC595 shift register ([ShiftRegister]); both are a [DataBus].
package led

import (
	"errors"
	"fmt"
)

// Channels is the number of LED channels.
const Channels = 8

// ErrInvalidChannel is returned for channel indexes outside 0..7.
var ErrInvalidChannel = errors.New("invalid LED channel")

// Controller switches a single LED channel. SetChannel is synchronous: the
// channel state has taken effect when it returns.
type Controller interface {
	SetChannel(index int, on bool) error
}

// Line is a single digital output.
type Line interface {
	Set(high bool) error
}

// DataBus presents a byte on eight parallel outputs, bit i on output i.
type DataBus interface {
	WriteByte(b byte) error
}

func checkChannel(index int) error {
	if index < 0 || index >= Channels {
		return fmt.Errorf("%w: %d, must be 0..%d", ErrInvalidChannel, index, Channels-1)
	}
	return nil
}

// Parallel drives eight GPIO lines directly, lines[i] carrying bit i.
type Parallel [Channels]Line

// NewParallel builds a Parallel bus from exactly eight lines.
func NewParallel(lines ...Line) (*Parallel, error) {
	if len(lines) != Channels {
		return nil, fmt.Errorf("parallel data bus needs %d lines, got %d", Channels, len(lines))
	}
	p := new(Parallel)
	copy(p[:], lines)
	return p, nil
}

func (p *Parallel) WriteByte(b byte) error {
	for i, l := range p {
		if err := l.Set(b>>i&1 == 1); err != nil {
			return fmt.Errorf("data line D%d: %w", i+1, err)
		}
	}
	return nil
}
