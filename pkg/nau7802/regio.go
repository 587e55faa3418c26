package nau7802

import (
	"github.com/yunginnanet/nirscan/pkg/regbus"
)

// LastReadRegister returns the value of reg as of its last successful read.
func (d *Device) LastReadRegister(reg Register) byte {
	return d.regLR[reg&(NumRegisters-1)]
}

// LastWrittenRegister returns the value last written to reg.
func (d *Device) LastWrittenRegister(reg Register) byte {
	return d.regLW[reg&(NumRegisters-1)]
}

// Registers returns the last value read from every register.
func (d *Device) Registers() map[Register]byte {
	r := make(map[Register]byte, NumRegisters)
	for reg, val := range d.regLR {
		r[Register(reg)] = val
	}
	return r
}

// GetRegister reads a single register.
func (d *Device) GetRegister(reg Register) (byte, error) {
	v, err := d.bus.ReadRegister(byte(reg))
	if err != nil {
		return 0, regbus.NewFault(regbus.OpRead, byte(reg), err)
	}
	d.regLR[reg&(NumRegisters-1)] = v
	return v, nil
}

// SetRegister writes a single register.
func (d *Device) SetRegister(reg Register, value byte) error {
	if err := d.bus.WriteRegister(byte(reg), value); err != nil {
		return regbus.NewFault(regbus.OpWrite, byte(reg), err)
	}
	d.regLW[reg&(NumRegisters-1)] = value
	return nil
}

// GetBit reads the register containing b and reports whether b is set.
// A bus fault is returned as an error, never as a cleared bit.
func (d *Device) GetBit(b Bit) (bool, error) {
	v, err := d.GetRegister(b.Reg)
	if err != nil {
		return false, err
	}
	return v&b.mask() != 0, nil
}

// SetBit sets b with a read-modify-write of its register.
func (d *Device) SetBit(b Bit) error {
	v, err := d.GetRegister(b.Reg)
	if err != nil {
		return err
	}
	return d.SetRegister(b.Reg, v|b.mask())
}

// ClearBit clears b with a read-modify-write of its register.
func (d *Device) ClearBit(b Bit) error {
	v, err := d.GetRegister(b.Reg)
	if err != nil {
		return err
	}
	return d.SetRegister(b.Reg, v&^b.mask())
}

// setField writes a 3-bit code into reg, saturating codes above 0b111.
func (d *Device) setField(reg Register, mask byte, shift uint8, code byte) error {
	if code > fieldMax {
		code = fieldMax
	}
	v, err := d.GetRegister(reg)
	if err != nil {
		return err
	}
	v &^= mask
	v |= code << shift
	return d.SetRegister(reg, v)
}

// SetGain selects the PGA gain. Codes above 0b111 are clamped to Gain128.
func (d *Device) SetGain(g Gain) error {
	return d.setField(RegCtrl1, gainMask, gainShift, byte(g))
}

// SetSampleRate selects the conversion rate. Codes above 0b111 are clamped.
func (d *Device) SetSampleRate(r SampleRate) error {
	return d.setField(RegCtrl2, rateMask, rateShift, byte(r))
}

// SetLDO selects the internal regulator voltage and enables it as the AVDD
// source. Codes above 0b111 are clamped to LDO2V4.
func (d *Device) SetLDO(v LDO) error {
	if err := d.setField(RegCtrl1, ldoMask, ldoShift, byte(v)); err != nil {
		return err
	}
	return d.SetBit(BitAVDDS)
}

// SetChannel selects the differential input converted by the ADC.
func (d *Device) SetChannel(ch InputChannel) error {
	if ch == Channel1 {
		return d.ClearBit(BitCHS)
	}
	return d.SetBit(BitCHS)
}

// SetIntPolarityHigh makes DRDY active high (the default).
func (d *Device) SetIntPolarityHigh() error {
	return d.ClearBit(BitCRP)
}

// SetIntPolarityLow makes DRDY active low.
func (d *Device) SetIntPolarityLow() error {
	return d.SetBit(BitCRP)
}

// RevisionCode returns the low nibble of the device revision register.
func (d *Device) RevisionCode() (byte, error) {
	v, err := d.GetRegister(RegDeviceRev)
	if err != nil {
		return 0, err
	}
	return v & 0x0F, nil
}

// readSample reads the three output registers as one block.
func (d *Device) readSample() (Sample, error) {
	buf := get3Bytes()
	defer put3Bytes(buf)

	if err := d.bus.ReadBlock(byte(RegADCOB2), buf); err != nil {
		return 0, regbus.NewFault(regbus.OpBlockRead, byte(RegADCOB2), err)
	}
	copy(d.regLR[RegADCOB2:RegADCOB0+1], buf)
	return DecodeSample(buf), nil
}
