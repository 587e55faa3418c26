package led

import (
	"fmt"
	"time"
)

const shiftClearPulse = time.Millisecond

// ShiftRegister drives a 74HC595 serial-in, parallel-out register. After
// WriteByte, output QA carries bit 0 and QH carries bit 7.
type ShiftRegister struct {
	ser   Line // serial data
	srclk Line // shift clock
	rclk  Line // latch clock
	clr   Line // /SRCLR, active low
	oe    Line // /OE, active low

	sleep func(time.Duration)
}

func NewShiftRegister(ser, srclk, rclk, clr, oe Line) *ShiftRegister {
	return &ShiftRegister{
		ser:   ser,
		srclk: srclk,
		rclk:  rclk,
		clr:   clr,
		oe:    oe,
		sleep: time.Sleep,
	}
}

// Begin enables the outputs and clears the register.
func (s *ShiftRegister) Begin() error {
	lines := []struct {
		name string
		line Line
	}{{"SER", s.ser}, {"SRCLK", s.srclk}, {"RCLK", s.rclk}, {"OE", s.oe}}
	for _, l := range lines {
		if err := l.line.Set(false); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return s.ClearOutputs()
}

// ClearOutputs pulses /SRCLR and latches the cleared register.
func (s *ShiftRegister) ClearOutputs() error {
	if err := s.clr.Set(false); err != nil {
		return fmt.Errorf("SRCLR: %w", err)
	}
	s.sleep(shiftClearPulse)
	if err := s.clr.Set(true); err != nil {
		return fmt.Errorf("SRCLR: %w", err)
	}
	return s.latch()
}

// WriteByte shifts b out MSB first and latches it onto QA..QH.
func (s *ShiftRegister) WriteByte(b byte) error {
	for i := 7; i >= 0; i-- {
		if err := s.ser.Set(b>>i&1 == 1); err != nil {
			return fmt.Errorf("SER: %w", err)
		}
		if err := pulse(s.srclk); err != nil {
			return fmt.Errorf("SRCLK: %w", err)
		}
	}
	return s.latch()
}

func (s *ShiftRegister) latch() error {
	if err := pulse(s.rclk); err != nil {
		return fmt.Errorf("RCLK: %w", err)
	}
	return nil
}

func pulse(l Line) error {
	if err := l.Set(true); err != nil {
		return err
	}
	return l.Set(false)
}
