package main

import (
	"fmt"
	"io"

	"go.uber.org/multierr"

	"github.com/yunginnanet/nirscan/pkg/config"
	"github.com/yunginnanet/nirscan/pkg/ft232h"
	"github.com/yunginnanet/nirscan/pkg/led"
	"github.com/yunginnanet/nirscan/pkg/nau7802"
	"github.com/yunginnanet/nirscan/pkg/regbus"
)

// hardware is everything main opens, closed in reverse order.
type hardware struct {
	bus  regbus.Bus
	adc  *nau7802.Device
	leds led.Controller
	// clear switches every LED off, nil for the mock.
	clear   func() error
	closers []io.Closer
}

func openHardware(cfg *config.Config) (hw *hardware, err error) {
	hw = &hardware{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, hw.Close())
			hw = nil
		}
	}()

	if err = hw.openLEDs(cfg.LED); err != nil {
		return hw, err
	}
	if hw.bus, err = openBus(cfg.Bus, hw.leds); err != nil {
		return hw, err
	}

	devCfg, err := cfg.ADC.DeviceConfig()
	if err != nil {
		return hw, err
	}
	hw.adc = nau7802.NewNAU7802(hw.bus, devCfg,
		nau7802.WithLogger(log.With().Str("component", "nau7802").Logger()))
	return hw, nil
}

func openBus(bc config.BusConfig, leds led.Controller) (regbus.Bus, error) {
	switch bc.Backend {
	case config.BusSMBus:
		b, err := regbus.OpenSMBus(bc.Number, uint8(bc.Address))
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BusPeriph:
		b, err := regbus.OpenPeriph(bc.Name, bc.Address)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BusSim:
		sim := nau7802.NewSim()
		sim.PowerUpPolls = 3
		sim.CalibrationPolls = 5
		if m, ok := leds.(*led.Mock); ok {
			sim.Input = simulatedSpectrum(m)
		}
		return sim, nil
	default:
		return nil, fmt.Errorf("unknown bus backend %q", bc.Backend)
	}
}

// simulatedSpectrum answers each conversion with a reading that depends on the
// lit channel, so mock scans produce a recognizable curve.
func simulatedSpectrum(m *led.Mock) func() nau7802.Sample {
	response := [led.Channels]nau7802.Sample{1200, 2600, 4100, 5200, 4800, 3900, 2500, 1400}
	const dark = 15000
	var n nau7802.Sample
	return func() nau7802.Sample {
		n = (n + 7) % 31 // deterministic noise
		lit := m.Lit()
		if len(lit) == 0 {
			return dark + n - 15
		}
		return dark + response[lit[0]] + n - 15
	}
}

func (hw *hardware) openLEDs(lc config.LEDConfig) error {
	var output func(pin int) (led.Line, error)

	switch lc.Backend {
	case config.LEDMock:
		hw.leds = led.NewMock(log.With().Str("component", "leds").Logger())
		return nil
	case config.LEDGPIOD:
		chip, err := led.OpenGPIOChip(lc.Chip, "nirscan")
		if err != nil {
			return err
		}
		hw.closers = append(hw.closers, chip)
		output = chip.Output
	case config.LEDFT232H:
		var desc []ft232h.Descriptor
		if d, ok := ft232h.FromConfig(lc.FT232H.Serial, lc.FT232H.Index); ok {
			desc = append(desc, d)
		}
		ft, err := ft232h.Connect(desc...)
		if err != nil {
			return err
		}
		log.Info().Any("info", ft.Info()).Msgf("connected to %s", ft)
		hw.closers = append(hw.closers, ft)
		output = func(pin int) (led.Line, error) {
			p, err := ft.Output(uint(pin))
			if err != nil {
				return nil, err
			}
			return p, nil
		}
	default:
		return fmt.Errorf("unknown LED backend %q", lc.Backend)
	}

	outputs := func(pins ...int) ([]led.Line, error) {
		lines := make([]led.Line, 0, len(pins))
		for _, p := range pins {
			l, err := output(p)
			if err != nil {
				return nil, err
			}
			lines = append(lines, l)
		}
		return lines, nil
	}

	ctl, err := outputs(lc.ClockPin, lc.ClearPin)
	if err != nil {
		return err
	}

	var data led.DataBus
	switch lc.Topology {
	case config.TopologyShift:
		s := lc.Shift
		l, err := outputs(s.Data, s.Clock, s.Latch, s.Clear, s.Enable)
		if err != nil {
			return err
		}
		sr := led.NewShiftRegister(l[0], l[1], l[2], l[3], l[4])
		if err = sr.Begin(); err != nil {
			return fmt.Errorf("74HC595: %w", err)
		}
		data = sr
	default:
		l, err := outputs(lc.DataPins...)
		if err != nil {
			return err
		}
		if data, err = led.NewParallel(l...); err != nil {
			return err
		}
	}

	opts := []led.TLCOption{led.WithTLCLogger(log.With().Str("component", "tlc59210").Logger())}
	if !lc.ActiveLowClear {
		opts = append(opts, led.WithActiveHighClear())
	}
	tlc := led.NewTLC59210(data, ctl[0], ctl[1], opts...)
	if err = tlc.Begin(); err != nil {
		return fmt.Errorf("TLC59210: %w", err)
	}
	hw.leds = tlc
	hw.clear = tlc.ClearOutputs
	return nil
}

// begin brings the ADC up and takes the dark reference with every LED off.
func (hw *hardware) begin(cfg *config.Config) error {
	if err := hw.adc.Begin(); err != nil {
		return err
	}
	if rev, err := hw.adc.RevisionCode(); err == nil {
		log.Info().Str("revision", fmt.Sprintf("0x%X", rev)).Msg("NAU7802 ready")
	}
	return hw.zero(cfg.ADC.ZeroSamples)
}

func (hw *hardware) zero(samples int) error {
	if err := hw.adc.CalculateZeroOffset(samples); err != nil {
		return fmt.Errorf("zero offset: %w", err)
	}
	log.Info().Int32("offset", hw.adc.ZeroOffset()).Msg("zero offset captured")
	return nil
}

// Close switches the LEDs off, powers the ADC down and releases every handle.
func (hw *hardware) Close() error {
	var err error
	if hw.clear != nil {
		err = multierr.Append(err, hw.clear())
	}
	if hw.adc != nil {
		err = multierr.Append(err, hw.adc.PowerDown())
	}
	if hw.bus != nil {
		err = multierr.Append(err, hw.bus.Close())
	}
	for i := len(hw.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, hw.closers[i].Close())
	}
	return err
}
