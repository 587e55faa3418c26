package nau7802

// Constants from the datasheet

// DefaultAddress is the fixed 7-bit I²C address of the NAU7802.
const DefaultAddress = 0x2A

// Register is a device register offset.
type Register byte

// Register Addresses
const (
	// RegPUCtrl is the power-up control register
	RegPUCtrl Register = 0x00
	// RegCtrl1 holds gain, LDO voltage and DRDY configuration
	RegCtrl1 Register = 0x01
	// RegCtrl2 holds calibration control, conversion rate and channel select
	RegCtrl2 Register = 0x02

	RegOCAL1B2 Register = 0x03
	RegOCAL1B1 Register = 0x04
	RegOCAL1B0 Register = 0x05
	RegGCAL1B3 Register = 0x06
	RegGCAL1B2 Register = 0x07
	RegGCAL1B1 Register = 0x08
	RegGCAL1B0 Register = 0x09
	RegOCAL2B2 Register = 0x0A
	RegOCAL2B1 Register = 0x0B
	RegOCAL2B0 Register = 0x0C
	RegGCAL2B3 Register = 0x0D
	RegGCAL2B2 Register = 0x0E
	RegGCAL2B1 Register = 0x0F
	RegGCAL2B0 Register = 0x10

	RegI2CControl Register = 0x11

	// RegADCOB2 is ADC output bits 23:16, followed by RegADCOB1 (15:8) and RegADCOB0 (7:0)
	RegADCOB2 Register = 0x12
	RegADCOB1 Register = 0x13
	RegADCOB0 Register = 0x14

	// RegADC is shared between ADC control and OTP bits 32:24
	RegADC    Register = 0x15
	RegOTPB1  Register = 0x16
	RegOTPB0  Register = 0x17
	RegPGA    Register = 0x1B
	RegPGAPwr Register = 0x1C

	// RegDeviceRev holds the revision code in its low nibble
	RegDeviceRev Register = 0x1F

	// NumRegisters is the size of the register address space.
	NumRegisters = 0x20
)

// SampleBytes is the width of one conversion result.
const SampleBytes = 3

// adcChopperOff turns off CLK_CHP, the power-on sequencing recommendation of
// datasheet section 9.1.
const adcChopperOff = 0x30

// Bit is a single bit-field within a register.
type Bit struct {
	Reg  Register
	Pos  uint8
	Name string
}

func (b Bit) mask() byte {
	return 1 << b.Pos
}

func (b Bit) String() string {
	return b.Name
}

// PU_CTRL bits
var (
	BitRR    = Bit{RegPUCtrl, 0, "RR"}    // register reset
	BitPUD   = Bit{RegPUCtrl, 1, "PUD"}   // power up digital
	BitPUA   = Bit{RegPUCtrl, 2, "PUA"}   // power up analog
	BitPUR   = Bit{RegPUCtrl, 3, "PUR"}   // power up ready (read only)
	BitCS    = Bit{RegPUCtrl, 4, "CS"}    // cycle start
	BitCR    = Bit{RegPUCtrl, 5, "CR"}    // cycle ready (read only)
	BitOSCS  = Bit{RegPUCtrl, 6, "OSCS"}  // external crystal select
	BitAVDDS = Bit{RegPUCtrl, 7, "AVDDS"} // internal LDO select
)

// CTRL1 bits
var (
	BitDRDYSel = Bit{RegCtrl1, 6, "DRDY_SEL"}
	BitCRP     = Bit{RegCtrl1, 7, "CRP"} // conversion ready polarity, 1 = active low
)

// CTRL2 bits
var (
	BitCALMOD   = Bit{RegCtrl2, 0, "CALMOD"}
	BitCALS     = Bit{RegCtrl2, 2, "CALS"}    // calibration start, self-clearing
	BitCalError = Bit{RegCtrl2, 3, "CAL_ERR"} // calibration error
	BitCHS      = Bit{RegCtrl2, 7, "CHS"}     // input channel select
)

// PGA bits
var (
	BitPGAChpDis   = Bit{RegPGA, 0, "PGA_CHP_DIS"}
	BitPGAInv      = Bit{RegPGA, 3, "PGA_INV"}
	BitPGABypassEn = Bit{RegPGA, 4, "PGA_BYPASS_EN"}
	BitPGAOutEn    = Bit{RegPGA, 5, "PGA_OUT_EN"}
	BitPGALDOMode  = Bit{RegPGA, 6, "PGA_LDOMODE"}
	BitPGARdOTPSel = Bit{RegPGA, 7, "RD_OTP_SEL"}
)

// PGA_PWR bits
var (
	BitPGACapEn = Bit{RegPGAPwr, 7, "PGA_CAP_EN"} // channel 2 decoupling capacitor
)

// 3-bit field layout
const (
	fieldMax = 0b111

	gainShift = 0
	gainMask  = 0b00000111
	ldoShift  = 3
	ldoMask   = 0b00111000
	rateShift = 4
	rateMask  = 0b01110000
)

// Gain is the CTRL1 GAINS code.
type Gain byte

const (
	Gain1 Gain = iota
	Gain2
	Gain4
	Gain8
	Gain16
	Gain32
	Gain64
	Gain128
)

// Factor returns the amplification selected by g.
func (g Gain) Factor() int {
	if g > fieldMax {
		g = fieldMax
	}
	return 1 << g
}

// SampleRate is the CTRL2 CRS code.
type SampleRate byte

const (
	SPS10  SampleRate = 0b000
	SPS20  SampleRate = 0b001
	SPS40  SampleRate = 0b010
	SPS80  SampleRate = 0b011
	SPS320 SampleRate = 0b111
)

// LDO is the CTRL1 VLDO code.
type LDO byte

const (
	LDO4V5 LDO = iota
	LDO4V2
	LDO3V9
	LDO3V6
	LDO3V3
	LDO3V0
	LDO2V7
	LDO2V4
)

// Millivolts returns the regulator output selected by v.
func (v LDO) Millivolts() int {
	if v > fieldMax {
		v = fieldMax
	}
	return 4500 - 300*int(v)
}

// InputChannel selects one of the two differential inputs.
type InputChannel byte

const (
	Channel1 InputChannel = iota
	Channel2
)
