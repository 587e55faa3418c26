// Package nau7802 drives a Nuvoton NAU7802 24-bit ADC over a register bus.
//
// A [Device] owns the power-up and calibration state machine, the register
// bit-field view and the zero-offset baseline. It is not safe for concurrent
// use: exactly one goroutine may own a Device and its [regbus.Bus].
package nau7802

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/yunginnanet/nirscan/pkg/regbus"
)

// State is the position of a [Device] in its power-up sequence.
type State int

const (
	StateUninitialized State = iota
	StateReset
	StatePoweredUp
	StateAnalogConfigured
	StateCalibrating
	StateReady
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReset:
		return "Reset"
	case StatePoweredUp:
		return "PoweredUp"
	case StateAnalogConfigured:
		return "AnalogConfigured"
	case StateCalibrating:
		return "Calibrating"
	case StateReady:
		return "Ready"
	case StateFaulted:
		return "Faulted"
	default:
		return "(invalid state)"
	}
}

const (
	powerUpPolls              = 100
	defaultPollInterval       = time.Millisecond
	defaultSampleBudget       = time.Second
	defaultCalibrationTimeout = time.Second // typically completes in ~344ms
	resetSettle               = time.Millisecond
)

// Config represents the device configuration written by Begin.
type Config struct {
	Gain       Gain
	SampleRate SampleRate
	LDO        LDO

	// CalibrationTimeout bounds the AFE calibration wait. Zero or negative
	// waits until the device leaves the in-progress state.
	CalibrationTimeout time.Duration
}

// DefaultConfig provides default config. You can adjust as needed
func DefaultConfig() Config {
	return Config{
		Gain:               Gain128,
		SampleRate:         SPS320,
		LDO:                LDO3V3,
		CalibrationTimeout: defaultCalibrationTimeout,
	}
}

// Device provides high-level control over a NAU7802.
type Device struct {
	bus regbus.Bus
	cfg Config
	log zerolog.Logger

	state             State
	zeroOffset        Sample
	calibrationFactor float64

	// Last read or written register states (for reference or debugging)
	regLR [NumRegisters]byte
	regLW [NumRegisters]byte

	pollInterval time.Duration
	sampleBudget time.Duration
	sleep        func(time.Duration)
	now          func() time.Time
}

// Option configures a [Device].
type Option func(*Device)

// WithLogger sets the logger used for state transitions and faults.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Device) {
		d.log = l
	}
}

// WithPollInterval sets the spacing of the power-up and calibration polls.
func WithPollInterval(interval time.Duration) Option {
	return func(d *Device) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}

// WithSampleBudget sets the wall-clock budget for Average.
func WithSampleBudget(budget time.Duration) Option {
	return func(d *Device) {
		if budget > 0 {
			d.sampleBudget = budget
		}
	}
}

// NewNAU7802 constructs a Device on bus. The bus stays owned by the caller.
func NewNAU7802(bus regbus.Bus, cfg Config, opts ...Option) *Device {
	d := &Device{
		bus:          bus,
		cfg:          cfg,
		log:          zerolog.Nop(),
		pollInterval: defaultPollInterval,
		sampleBudget: defaultSampleBudget,
		sleep:        time.Sleep,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current power-up state.
func (d *Device) State() State {
	return d.state
}

// Config returns the configuration Begin writes.
func (d *Device) Config() Config {
	return d.cfg
}

func (d *Device) setState(s State) {
	if s == d.state {
		return
	}
	d.log.Debug().Stringer("from", d.state).Stringer("to", s).Msg("state change")
	d.state = s
}

// fail moves the device to StateFaulted and annotates err with the step.
func (d *Device) fail(step string, err error) error {
	d.log.Warn().Err(err).Str("step", step).Stringer("state", d.state).Msg("nau7802 fault")
	d.setState(StateFaulted)
	return fmt.Errorf("%s: %w", step, err)
}

// IsConnected reports whether the device acknowledges a register read.
func (d *Device) IsConnected() error {
	_, err := d.GetRegister(RegPUCtrl)
	return err
}

// Begin resets, powers up, configures and calibrates the device.
//
// Any failing step aborts with the device in StateFaulted. Steps that already
// completed are not rolled back.
func (d *Device) Begin() error {
	if err := d.IsConnected(); err != nil {
		if err = d.IsConnected(); err != nil {
			return d.fail("connect", fmt.Errorf("%w: %w", ErrNotConnected, err))
		}
	}

	if err := d.Reset(); err != nil {
		return d.fail("reset", err)
	}
	if err := d.PowerUp(); err != nil {
		return d.fail("power up", err)
	}

	if err := d.SetLDO(d.cfg.LDO); err != nil {
		return d.fail("set LDO", err)
	}
	if err := d.SetGain(d.cfg.Gain); err != nil {
		return d.fail("set gain", err)
	}
	if err := d.SetSampleRate(d.cfg.SampleRate); err != nil {
		return d.fail("set sample rate", err)
	}
	if err := d.SetRegister(RegADC, adcChopperOff); err != nil {
		return d.fail("disable clock chopper", err)
	}
	if err := d.SetBit(BitPGACapEn); err != nil {
		return d.fail("enable PGA decoupling cap", err)
	}
	d.setState(StateAnalogConfigured)

	if err := d.CalibrateAFE(d.cfg.CalibrationTimeout); err != nil {
		return err
	}

	d.log.Info().
		Int("gain", d.cfg.Gain.Factor()).
		Int("ldo_mv", d.cfg.LDO.Millivolts()).
		Uint8("sample_rate_code", uint8(d.cfg.SampleRate)).
		Msg("nau7802 ready")
	return nil
}

// Reset returns all registers to their power-on defaults.
func (d *Device) Reset() error {
	if err := d.SetBit(BitRR); err != nil {
		return err
	}
	d.sleep(resetSettle)
	if err := d.ClearBit(BitRR); err != nil {
		return err
	}
	d.setState(StateReset)
	return nil
}

// PowerUp powers the digital and analog sections and waits for the power-up
// ready bit, polling at most 100 times.
func (d *Device) PowerUp() error {
	if err := d.SetBit(BitPUD); err != nil {
		return err
	}
	if err := d.SetBit(BitPUA); err != nil {
		return err
	}

	for i := 0; i < powerUpPolls; i++ {
		ready, err := d.GetBit(BitPUR)
		if err != nil {
			return err
		}
		if ready {
			d.setState(StatePoweredUp)
			return nil
		}
		d.sleep(d.pollInterval)
	}
	return ErrPowerUpTimeout
}

// PowerDown puts the device into its low-power state. Begin must be called
// again before sampling.
func (d *Device) PowerDown() error {
	err := multierr.Combine(d.ClearBit(BitPUD), d.ClearBit(BitPUA))
	if err == nil {
		d.setState(StateUninitialized)
	}
	return err
}
