package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/yunginnanet/nirscan/pkg/led"
	"github.com/yunginnanet/nirscan/pkg/nau7802"
	"github.com/yunginnanet/nirscan/pkg/scan"
)

const (
	BusSMBus  = "smbus"
	BusPeriph = "periph"
	BusSim    = "sim"

	LEDGPIOD  = "gpiod"
	LEDFT232H = "ft232h"
	LEDMock   = "mock"

	TopologyParallel = "parallel"
	TopologyShift    = "shift"
)

var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration.
type Config struct {
	Bus    BusConfig    `yaml:"bus"`
	ADC    ADCConfig    `yaml:"adc"`
	LED    LEDConfig    `yaml:"led"`
	Scan   ScanConfig   `yaml:"scan"`
	Output OutputConfig `yaml:"output"`
}

// BusConfig selects the I2C adapter the NAU7802 sits on.
type BusConfig struct {
	Backend string `yaml:"backend"` // smbus, periph or sim
	Number  int    `yaml:"number"`  // /dev/i2c-N, smbus backend
	Name    string `yaml:"name"`    // periph bus name, empty for the first bus
	Address uint16 `yaml:"address"`
}

type ADCConfig struct {
	Gain               int           `yaml:"gain"`        // 1, 2, 4 ... 128
	SampleRate         int           `yaml:"sample_rate"` // samples per second
	LDOMillivolts      int           `yaml:"ldo_millivolts"`
	CalibrationTimeout time.Duration `yaml:"calibration_timeout"`
	ZeroSamples        int           `yaml:"zero_samples"`
	RezeroEachScan     bool          `yaml:"rezero_each_scan"`
	AllowNegative      bool          `yaml:"allow_negative"`
}

// LEDConfig describes how the TLC59210 is wired. Pin numbers are gpiod line
// offsets or FT232H ACBUS pin numbers depending on Backend.
type LEDConfig struct {
	Backend        string       `yaml:"backend"`  // gpiod, ft232h or mock
	Topology       string       `yaml:"topology"` // parallel or shift
	Chip           string       `yaml:"chip"`
	DataPins       []int        `yaml:"data_pins"` // D1..D8, parallel topology
	ClockPin       int          `yaml:"clock_pin"`
	ClearPin       int          `yaml:"clear_pin"`
	ActiveLowClear bool         `yaml:"active_low_clear"`
	Shift          ShiftConfig  `yaml:"shift"`
	FT232H         FT232HConfig `yaml:"ft232h"`
}

// ShiftConfig holds the 74HC595 pins used by the shift topology.
type ShiftConfig struct {
	Data   int `yaml:"data"`
	Clock  int `yaml:"clock"`
	Latch  int `yaml:"latch"`
	Clear  int `yaml:"clear"`
	Enable int `yaml:"enable"`
}

type FT232HConfig struct {
	Index  int    `yaml:"index"` // negative selects the first adapter found
	Serial string `yaml:"serial"`
}

type ScanConfig struct {
	Settle   time.Duration `yaml:"settle"`
	Interval time.Duration `yaml:"interval"`
	Count    int           `yaml:"count"` // zero or less scans until interrupted
}

// OutputConfig controls CSV export. An empty CSV path disables it.
type OutputConfig struct {
	CSV    string `yaml:"csv"`
	Label  string `yaml:"label"`
	Sample string `yaml:"sample"`
}

// Default returns a configuration for a Raspberry Pi with the TLC59210 data
// inputs wired straight to GPIO.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Backend: BusSMBus,
			Number:  1,
			Address: nau7802.DefaultAddress,
		},
		ADC: ADCConfig{
			Gain:               128,
			SampleRate:         320,
			LDOMillivolts:      3300,
			CalibrationTimeout: time.Second,
			ZeroSamples:        10,
			AllowNegative:      true,
		},
		LED: LEDConfig{
			Backend:        LEDGPIOD,
			Topology:       TopologyParallel,
			Chip:           "gpiochip0",
			DataPins:       []int{5, 6, 13, 19, 26, 16, 20, 21},
			ClockPin:       12,
			ClearPin:       18,
			ActiveLowClear: true,
			Shift: ShiftConfig{
				Data:   22,
				Clock:  27,
				Latch:  17,
				Clear:  5,
				Enable: 6,
			},
			FT232H: FT232HConfig{Index: -1},
		},
		Scan: ScanConfig{
			Settle:   scan.MinSettle,
			Interval: time.Second,
			Count:    1,
		},
		Output: OutputConfig{
			Label:  "unknown",
			Sample: "1",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; fields absent from the file keep their default values. The result
// is not validated, so callers can apply overrides before calling Validate.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var err error
	bad := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Bus.Backend {
	case BusSMBus, BusPeriph, BusSim:
	default:
		bad("bus.backend %q", c.Bus.Backend)
	}
	if c.Bus.Address == 0 || c.Bus.Address > 0x7F {
		bad("bus.address 0x%X is not a 7-bit address", c.Bus.Address)
	}

	if _, e := c.ADC.DeviceConfig(); e != nil {
		bad("adc: %v", e)
	}
	if c.ADC.ZeroSamples <= 0 {
		bad("adc.zero_samples must be positive, got %d", c.ADC.ZeroSamples)
	}

	switch c.LED.Backend {
	case LEDGPIOD, LEDFT232H, LEDMock:
	default:
		bad("led.backend %q", c.LED.Backend)
	}
	switch c.LED.Topology {
	case TopologyParallel:
		if len(c.LED.DataPins) != led.Channels {
			bad("led.data_pins needs %d pins, got %d", led.Channels, len(c.LED.DataPins))
		}
	case TopologyShift:
	default:
		bad("led.topology %q", c.LED.Topology)
	}
	if c.LED.Backend == LEDFT232H {
		for _, p := range c.LED.Pins() {
			if p < 0 || p > 7 {
				bad("led pin %d is not an FT232H ACBUS pin", p)
			}
		}
	}

	if c.Scan.Settle < scan.MinSettle {
		bad("scan.settle %s is below %s", c.Scan.Settle, scan.MinSettle)
	}
	if c.Scan.Interval < 0 {
		bad("scan.interval %s is negative", c.Scan.Interval)
	}

	return err
}

// DeviceConfig converts the ADC section to a [nau7802.Config].
func (a ADCConfig) DeviceConfig() (nau7802.Config, error) {
	cfg := nau7802.Config{CalibrationTimeout: a.CalibrationTimeout}
	var err, e error
	if cfg.Gain, e = nau7802.GainFromFactor(a.Gain); e != nil {
		err = multierr.Append(err, e)
	}
	if cfg.SampleRate, e = nau7802.SampleRateFromSPS(a.SampleRate); e != nil {
		err = multierr.Append(err, e)
	}
	if cfg.LDO, e = nau7802.LDOFromMillivolts(a.LDOMillivolts); e != nil {
		err = multierr.Append(err, e)
	}
	return cfg, err
}

// Pins lists every line the configured topology drives.
func (l LEDConfig) Pins() []int {
	pins := []int{l.ClockPin, l.ClearPin}
	if l.Topology == TopologyShift {
		s := l.Shift
		return append(pins, s.Data, s.Clock, s.Latch, s.Clear, s.Enable)
	}
	return append(pins, l.DataPins...)
}
