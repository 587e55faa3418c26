package regbus

import (
	"fmt"

	"github.com/go-daq/smbus"
)

// SMBus talks to a device through the Linux i2c-dev SMBus interface.
type SMBus struct {
	conn *smbus.Conn
	addr uint8
}

// OpenSMBus opens /dev/i2c-<bus> and binds it to the 7-bit address addr.
func OpenSMBus(bus int, addr uint8) (*SMBus, error) {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c-%d at 0x%02X: %w", ErrBusFault, bus, addr, err)
	}
	return &SMBus{conn: conn, addr: addr}, nil
}

// NewSMBus wraps an already opened connection.
func NewSMBus(conn *smbus.Conn, addr uint8) (*SMBus, error) {
	if err := conn.SetAddr(addr); err != nil {
		return nil, fmt.Errorf("%w: set address 0x%02X: %w", ErrBusFault, addr, err)
	}
	return &SMBus{conn: conn, addr: addr}, nil
}

func (s *SMBus) ReadRegister(reg byte) (byte, error) {
	v, err := s.conn.ReadReg(s.addr, reg)
	if err != nil {
		return 0, NewFault(OpRead, reg, err)
	}
	return v, nil
}

func (s *SMBus) WriteRegister(reg, value byte) error {
	return NewFault(OpWrite, reg, s.conn.WriteReg(s.addr, reg, value))
}

func (s *SMBus) ReadBlock(reg byte, p []byte) error {
	return NewFault(OpBlockRead, reg, s.conn.ReadBlockData(s.addr, reg, p))
}

func (s *SMBus) Close() error {
	return s.conn.Close()
}

func (s *SMBus) String() string {
	return fmt.Sprintf("SMBus{addr:0x%02X}", s.addr)
}
