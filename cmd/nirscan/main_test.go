package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunginnanet/nirscan/pkg/config"
	"github.com/yunginnanet/nirscan/pkg/dataset"
	"github.com/yunginnanet/nirscan/pkg/led"
	"github.com/yunginnanet/nirscan/pkg/scan"
)

func mockSetup(t *testing.T) (*hardware, *scan.Sequencer, *config.Config) {
	t.Helper()
	log = zerolog.Nop()

	cfg := config.Default()
	cfg.Bus.Backend = config.BusSim
	cfg.LED.Backend = config.LEDMock
	cfg.Scan.Interval = 0
	cfg.Output.CSV = filepath.Join(t.TempDir(), "NIR_data.csv")
	require.NoError(t, cfg.Validate())

	hw, err := openHardware(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, hw.Close()) })
	require.NoError(t, hw.begin(cfg))

	return hw, scan.NewSequencer(hw.leds, hw.adc, scan.WithSettle(cfg.Scan.Settle)), cfg
}

// spectrum checks a scan against the simulated per-channel response, allowing
// for the simulator's noise.
func spectrum(t *testing.T, r scan.Result) {
	t.Helper()
	want := [led.Channels]float64{1200, 2600, 4100, 5200, 4800, 3900, 2500, 1400}
	for i, v := range r {
		assert.InDelta(t, want[i], float64(v), 40, "channel %d", i)
	}
}

func TestRun(t *testing.T) {
	hw, seq, cfg := mockSetup(t)
	cfg.Scan.Count = 2
	cfg.Output.Label, cfg.Output.Sample = "PP", "4"
	cfg.ADC.RezeroEachScan = true

	require.NoError(t, run(context.Background(), hw, seq, cfg))

	rows, err := dataset.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "PP", r.Label)
		assert.Equal(t, "4", r.Sample)
		spectrum(t, r.Values)
	}
	assert.Equal(t, 1, hw.leds.(*led.Mock).MaxLit())
}

func TestInteractive(t *testing.T) {
	hw, seq, cfg := mockSetup(t)
	in := strings.NewReader("PET\n1\nr\nx\nr\nc\nHDPE\n2\nR\nq\nr\n")
	var out bytes.Buffer

	require.NoError(t, interactive(context.Background(), in, &out, hw, seq, cfg))
	assert.Contains(t, out.String(), "unknown command")

	rows, err := dataset.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	require.Len(t, rows, 3, "the scan after q must not run")
	assert.Equal(t, []string{"PET", "PET", "HDPE"}, []string{rows[0].Label, rows[1].Label, rows[2].Label})
	assert.Equal(t, "2", rows[2].Sample)
	spectrum(t, rows[2].Values)

	t.Run("EndOfInputSaves", func(t *testing.T) {
		cfg.Output.CSV = filepath.Join(t.TempDir(), "eof.csv")
		require.NoError(t, interactive(context.Background(), strings.NewReader("ABS\n9\nr\n"), &out, hw, seq, cfg))
		rows, err := dataset.ReadFile(cfg.Output.CSV)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestInteractive_ScanErrorSaves(t *testing.T) {
	hw, seq, cfg := mockSetup(t)
	boom := errors.New("gpio gone")
	hw.leds.(*led.Mock).FailAfter(2*led.Channels, boom)

	in := strings.NewReader("PET\n1\nr\nr\nq\n")
	err := interactive(context.Background(), in, &bytes.Buffer{}, hw, seq, cfg)
	assert.ErrorIs(t, err, boom)

	rows, err := dataset.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	require.Len(t, rows, 1, "rows buffered before the failure are kept")
	assert.Equal(t, "PET", rows[0].Label)
}

func TestInteractive_CancelSaves(t *testing.T) {
	hw, seq, cfg := mockSetup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the second r arrives together with the interrupt
	in := &cancelAfter{r: bufio.NewReader(strings.NewReader("HDPE\n3\nr\nr\n")), lines: 4, cancel: cancel}
	err := interactive(ctx, in, &bytes.Buffer{}, hw, seq, cfg)
	assert.ErrorIs(t, err, context.Canceled)

	rows, err := dataset.ReadFile(cfg.Output.CSV)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// cancelAfter hands out one line per Read and cancels after the given number
// of lines.
type cancelAfter struct {
	r      *bufio.Reader
	lines  int
	cancel context.CancelFunc
}

func (c *cancelAfter) Read(p []byte) (int, error) {
	line, err := c.r.ReadString('\n')
	if c.lines--; c.lines == 0 {
		c.cancel()
	}
	return copy(p, line), err
}
