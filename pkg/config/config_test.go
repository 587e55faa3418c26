package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunginnanet/nirscan/pkg/nau7802"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, BusSMBus, cfg.Bus.Backend)
	assert.Equal(t, 1, cfg.Bus.Number)
	assert.Equal(t, uint16(0x2A), cfg.Bus.Address)
	assert.Equal(t, []int{5, 6, 13, 19, 26, 16, 20, 21}, cfg.LED.DataPins)
	assert.Equal(t, 5*time.Millisecond, cfg.Scan.Settle)
	assert.Equal(t, 10, cfg.ADC.ZeroSamples)

	dc, err := cfg.ADC.DeviceConfig()
	require.NoError(t, err)
	assert.Equal(t, nau7802.DefaultConfig(), dc)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nirscan.yaml")
	yamlContent := `
bus:
  backend: periph
  name: "I2C1"
  address: 0x2B

adc:
  gain: 64
  sample_rate: 80
  calibration_timeout: 2s
  rezero_each_scan: true

led:
  backend: ft232h
  topology: shift
  clock_pin: 5
  clear_pin: 6
  shift:
    data: 0
    clock: 1
    latch: 2
    clear: 3
    enable: 4
  ft232h:
    serial: FT55AA

scan:
  settle: 50ms
  interval: 2s
  count: 0

output:
  csv: NIR_data.csv
  label: PET
  sample: "7"
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BusPeriph, cfg.Bus.Backend)
	assert.Equal(t, "I2C1", cfg.Bus.Name)
	assert.Equal(t, uint16(0x2B), cfg.Bus.Address)

	assert.Equal(t, 64, cfg.ADC.Gain)
	assert.Equal(t, 80, cfg.ADC.SampleRate)
	assert.Equal(t, 3300, cfg.ADC.LDOMillivolts, "unset fields keep defaults")
	assert.Equal(t, 2*time.Second, cfg.ADC.CalibrationTimeout)
	assert.True(t, cfg.ADC.RezeroEachScan)

	assert.Equal(t, LEDFT232H, cfg.LED.Backend)
	assert.Equal(t, TopologyShift, cfg.LED.Topology)
	assert.Equal(t, []int{5, 6, 0, 1, 2, 3, 4}, cfg.LED.Pins())
	assert.Equal(t, "FT55AA", cfg.LED.FT232H.Serial)
	assert.Equal(t, -1, cfg.LED.FT232H.Index)

	assert.Equal(t, 50*time.Millisecond, cfg.Scan.Settle)
	assert.Equal(t, 2*time.Second, cfg.Scan.Interval)
	assert.Zero(t, cfg.Scan.Count)

	assert.Equal(t, "NIR_data.csv", cfg.Output.CSV)
	assert.Equal(t, "PET", cfg.Output.Label)
	assert.Equal(t, "7", cfg.Output.Sample)

	dc, err := cfg.ADC.DeviceConfig()
	require.NoError(t, err)
	assert.Equal(t, nau7802.Gain64, dc.Gain)
	assert.Equal(t, nau7802.SPS80, dc.SampleRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"BusBackend", func(c *Config) { c.Bus.Backend = "uart" }},
		{"Address", func(c *Config) { c.Bus.Address = 0x80 }},
		{"Gain", func(c *Config) { c.ADC.Gain = 3 }},
		{"SampleRate", func(c *Config) { c.ADC.SampleRate = 160 }},
		{"LDO", func(c *Config) { c.ADC.LDOMillivolts = 5000 }},
		{"ZeroSamples", func(c *Config) { c.ADC.ZeroSamples = 0 }},
		{"LEDBackend", func(c *Config) { c.LED.Backend = "sysfs" }},
		{"Topology", func(c *Config) { c.LED.Topology = "matrix" }},
		{"DataPins", func(c *Config) { c.LED.DataPins = c.LED.DataPins[:7] }},
		{"FT232HPins", func(c *Config) { c.LED.Backend = LEDFT232H }},
		{"Settle", func(c *Config) { c.Scan.Settle = time.Millisecond }},
		{"Interval", func(c *Config) { c.Scan.Interval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := Default()
	cfg.Output.Label = "HDPE"
	cfg.LED.Backend = LEDMock

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_DefersValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus:\n  backend: uart\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.Bus.Backend = BusSim
	assert.NoError(t, cfg.Validate())
}
