package led

import (
	"fmt"

	"github.com/warthog618/gpiod"
	"go.uber.org/multierr"
)

// GPIOChip hands out output lines from a Linux GPIO character device.
type GPIOChip struct {
	chip  *gpiod.Chip
	lines []*gpiod.Line
}

// OpenGPIOChip opens a chip such as "gpiochip0".
func OpenGPIOChip(name, consumer string) (*GPIOChip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &GPIOChip{chip: c}, nil
}

// Output requests offset as an output, initially low.
func (g *GPIOChip) Output(offset int) (Line, error) {
	l, err := g.chip.RequestLine(offset, gpiod.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}
	g.lines = append(g.lines, l)
	return gpiodLine{l}, nil
}

// Outputs requests each offset as an output.
func (g *GPIOChip) Outputs(offsets ...int) ([]Line, error) {
	out := make([]Line, 0, len(offsets))
	for _, o := range offsets {
		l, err := g.Output(o)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Close releases every requested line and the chip.
func (g *GPIOChip) Close() error {
	var err error
	for _, l := range g.lines {
		err = multierr.Append(err, l.Close())
	}
	g.lines = nil
	return multierr.Append(err, g.chip.Close())
}

type gpiodLine struct {
	*gpiod.Line
}

func (l gpiodLine) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	return l.SetValue(v)
}
