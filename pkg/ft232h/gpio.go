package ft232h

import (
	"fmt"

	"github.com/yunginnanet/ft232h"
)

// Pin is one ACBUS output. It satisfies the LED driver's Line interface.
type Pin struct {
	gpio *ft232h.GPIO
	pin  ft232h.CPin
	pos  uint
}

func (p *Pin) Set(high bool) error {
	if err := p.gpio.Set(p.pin, high); err != nil {
		return fmt.Errorf("set C%d: %w", p.pos, err)
	}
	return nil
}

func (p *Pin) String() string {
	return fmt.Sprintf("C%d", p.pos)
}
