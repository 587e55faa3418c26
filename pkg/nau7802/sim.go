package nau7802

import (
	"errors"
	"fmt"

	"github.com/yunginnanet/nirscan/pkg/regbus"
)

// SimWrite is one register write observed by a [Sim].
type SimWrite struct {
	Reg   Register
	Value byte
}

func (w SimWrite) String() string {
	return fmt.Sprintf("0x%02X<-0x%02X", byte(w.Reg), w.Value)
}

// Sim is an in-memory NAU7802 implementing [regbus.Bus]. It models the
// power-up ready delay, self-clearing AFE calibration and the cycle ready flag,
// which is enough to run Begin, sampling and scans without hardware.
type Sim struct {
	// PowerUpPolls is the number of PU_CTRL reads, after PUD and PUA are set,
	// that still report PUR clear.
	PowerUpPolls int
	// CalibrationPolls is the number of CTRL2 reads that still report CALS set
	// after a calibration is started. Negative keeps CALS set forever.
	CalibrationPolls int
	// CalibrationError makes a finished calibration report CAL_ERR.
	CalibrationError bool
	// Stall keeps the cycle ready bit clear.
	Stall bool
	// Input returns the next conversion result. Nil reads zero.
	Input func() Sample
	// Revision is reported in the low nibble of the revision register.
	Revision byte

	Writes []SimWrite

	regs       [NumRegisters]byte
	faults     map[Register]error
	puReads    int
	calPending int
	closed     bool
}

// NewSim returns a simulator that powers up and calibrates immediately.
func NewSim() *Sim {
	return &Sim{Revision: 0x0F}
}

// FailOn makes every operation touching reg fail with err. A nil err clears it.
func (s *Sim) FailOn(reg Register, err error) {
	if s.faults == nil {
		s.faults = make(map[Register]error)
	}
	if err == nil {
		delete(s.faults, reg)
		return
	}
	s.faults[reg] = err
}

// Register returns the current register content without side effects.
func (s *Sim) Register(reg Register) byte {
	return s.regs[reg&(NumRegisters-1)]
}

func (s *Sim) check(op string, reg Register) error {
	if s.closed {
		return regbus.NewFault(op, byte(reg), errors.New("simulator closed"))
	}
	if err, ok := s.faults[reg]; ok {
		return regbus.NewFault(op, byte(reg), err)
	}
	if reg >= NumRegisters {
		return regbus.NewFault(op, byte(reg), fmt.Errorf("invalid register address 0x%02X", byte(reg)))
	}
	return nil
}

func (s *Sim) powered() bool {
	return s.regs[RegPUCtrl]&(BitPUD.mask()|BitPUA.mask()) == BitPUD.mask()|BitPUA.mask()
}

func (s *Sim) ReadRegister(reg byte) (byte, error) {
	r := Register(reg)
	if err := s.check(regbus.OpRead, r); err != nil {
		return 0, err
	}

	switch r {
	case RegPUCtrl:
		v := s.regs[RegPUCtrl] &^ (BitPUR.mask() | BitCR.mask())
		if s.powered() {
			if s.puReads >= s.PowerUpPolls {
				v |= BitPUR.mask()
			}
			s.puReads++
		}
		if v&BitPUR.mask() != 0 && s.regs[RegPUCtrl]&BitCS.mask() != 0 && !s.Stall {
			v |= BitCR.mask()
		}
		return v, nil
	case RegCtrl2:
		if s.regs[RegCtrl2]&BitCALS.mask() != 0 {
			if s.calPending != 0 {
				if s.calPending > 0 {
					s.calPending--
				}
				return s.regs[RegCtrl2], nil
			}
			s.regs[RegCtrl2] &^= BitCALS.mask()
			if s.CalibrationError {
				s.regs[RegCtrl2] |= BitCalError.mask()
			}
		}
		return s.regs[RegCtrl2], nil
	case RegDeviceRev:
		return s.Revision & 0x0F, nil
	case RegADCOB2, RegADCOB1, RegADCOB0:
		var buf [SampleBytes]byte
		EncodeSample(s.sample(), buf[:])
		return buf[r-RegADCOB2], nil
	}
	return s.regs[r], nil
}

func (s *Sim) WriteRegister(reg, value byte) error {
	r := Register(reg)
	if err := s.check(regbus.OpWrite, r); err != nil {
		return err
	}
	s.Writes = append(s.Writes, SimWrite{Reg: r, Value: value})

	switch r {
	case RegPUCtrl:
		if value&BitRR.mask() != 0 {
			s.regs = [NumRegisters]byte{}
			s.puReads = 0
			s.calPending = 0
		}
		if value&(BitPUD.mask()|BitPUA.mask()) == 0 {
			s.puReads = 0
		}
		s.regs[RegPUCtrl] = value &^ (BitPUR.mask() | BitCR.mask())
		return nil
	case RegCtrl2:
		started := value&BitCALS.mask() != 0 && s.regs[RegCtrl2]&BitCALS.mask() == 0
		s.regs[RegCtrl2] = value
		if started {
			s.regs[RegCtrl2] &^= BitCalError.mask()
			s.calPending = s.CalibrationPolls
		}
		return nil
	case RegADCOB2, RegADCOB1, RegADCOB0, RegDeviceRev:
		// read only
		return nil
	}
	s.regs[r] = value
	return nil
}

func (s *Sim) ReadBlock(reg byte, p []byte) error {
	r := Register(reg)
	if err := s.check(regbus.OpBlockRead, r); err != nil {
		return err
	}
	if r != RegADCOB2 || len(p) != SampleBytes {
		for i := range p {
			v, err := s.ReadRegister(reg + byte(i))
			if err != nil {
				return err
			}
			p[i] = v
		}
		return nil
	}
	EncodeSample(s.sample(), p)
	return nil
}

func (s *Sim) sample() Sample {
	if s.Input == nil {
		return 0
	}
	return s.Input()
}

func (s *Sim) Close() error {
	s.closed = true
	return nil
}
