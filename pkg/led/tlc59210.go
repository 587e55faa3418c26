package led

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	clearPulse = 10 * time.Millisecond
	clockPulse = time.Microsecond
)

// TLC59210 drives the 8-bit DMOS sink driver with latch. A set bit in the
// latched byte pulls the matching Y output low, turning its LED on.
type TLC59210 struct {
	data DataBus
	clk  Line
	clr  Line

	activeLowClear bool
	latched        byte

	log   zerolog.Logger
	sleep func(time.Duration)
}

// TLCOption configures a [TLC59210].
type TLCOption func(*TLC59210)

// WithActiveHighClear is for boards that invert the CLR line.
func WithActiveHighClear() TLCOption {
	return func(t *TLC59210) {
		t.activeLowClear = false
	}
}

func WithTLCLogger(l zerolog.Logger) TLCOption {
	return func(t *TLC59210) {
		t.log = l
	}
}

// NewTLC59210 wires the driver to its data inputs, CLK and CLR lines.
func NewTLC59210(data DataBus, clk, clr Line, opts ...TLCOption) *TLC59210 {
	t := &TLC59210{
		data:           data,
		clk:            clk,
		clr:            clr,
		activeLowClear: true,
		log:            zerolog.Nop(),
		sleep:          time.Sleep,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Begin idles the clock line and clears all outputs.
func (t *TLC59210) Begin() error {
	if err := t.clk.Set(false); err != nil {
		return fmt.Errorf("CLK: %w", err)
	}
	return t.ClearOutputs()
}

// ClearOutputs pulses CLR, resetting the latch so every LED is off.
func (t *TLC59210) ClearOutputs() error {
	if err := t.clr.Set(!t.activeLowClear); err != nil {
		return fmt.Errorf("CLR: %w", err)
	}
	t.sleep(clearPulse)
	if err := t.clr.Set(t.activeLowClear); err != nil {
		return fmt.Errorf("CLR: %w", err)
	}
	t.latched = 0
	t.log.Debug().Msg("TLC59210 outputs cleared")
	return nil
}

// LatchData presents b on D1..D8 and latches it on a CLK rising edge.
func (t *TLC59210) LatchData(b byte) error {
	if err := t.data.WriteByte(b); err != nil {
		return err
	}

	for _, level := range []bool{false, true, false} {
		if err := t.clk.Set(level); err != nil {
			return fmt.Errorf("CLK: %w", err)
		}
		t.sleep(clockPulse)
	}

	t.latched = b
	t.log.Trace().Str("latched", fmt.Sprintf("%08b", b)).Msg("TLC59210 latch")
	return nil
}

// SetChannel turns one LED on or off, leaving the other channels as latched.
func (t *TLC59210) SetChannel(index int, on bool) error {
	if err := checkChannel(index); err != nil {
		return err
	}
	v := t.latched
	if on {
		v |= 1 << index
	} else {
		v &^= 1 << index
	}
	return t.LatchData(v)
}

// Latched returns the byte currently held in the output latch.
func (t *TLC59210) Latched() byte {
	return t.latched
}
