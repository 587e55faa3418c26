package regbus

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Periph talks to a device through a periph.io I²C bus.
type Periph struct {
	dev    *i2c.Dev
	closer io.Closer
}

// OpenPeriph initializes the periph host drivers, opens the named I²C bus (""
// selects the first available one) and binds it to addr.
func OpenPeriph(name string, addr uint16) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: periph host init: %w", ErrBusFault, err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c bus %q: %w", ErrBusFault, name, err)
	}
	p := NewPeriph(b, addr)
	p.closer = b
	return p, nil
}

// NewPeriph wraps an existing bus. Close on the result does not close b.
func NewPeriph(b i2c.Bus, addr uint16) *Periph {
	return &Periph{dev: &i2c.Dev{Bus: b, Addr: addr}}
}

func (p *Periph) ReadRegister(reg byte) (byte, error) {
	var r [1]byte
	if err := p.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, NewFault(OpRead, reg, err)
	}
	return r[0], nil
}

func (p *Periph) WriteRegister(reg, value byte) error {
	return NewFault(OpWrite, reg, p.dev.Tx([]byte{reg, value}, nil))
}

func (p *Periph) ReadBlock(reg byte, block []byte) error {
	return NewFault(OpBlockRead, reg, p.dev.Tx([]byte{reg}, block))
}

func (p *Periph) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

func (p *Periph) String() string {
	return p.dev.String()
}
