package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/yunginnanet/nirscan/pkg/config"
	"github.com/yunginnanet/nirscan/pkg/dataset"
	"github.com/yunginnanet/nirscan/pkg/nau7802"
	"github.com/yunginnanet/nirscan/pkg/scan"
)

var log zerolog.Logger

func init() {
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	log = zerolog.New(cw).With().Timestamp().Logger()
}

type options struct {
	config      string
	debug       bool
	interactive bool
}

// flags parses the command line and applies any overrides onto cfg.
func flags() (options, *config.Config) {
	var opts options
	flag.StringVar(&opts.config, "config", "nirscan.yaml", "YAML configuration file")
	flag.BoolVar(&opts.debug, "debug", false, "debug logging")
	flag.BoolVar(&opts.interactive, "i", false, "interactive collector: r scans, c changes the sample, q saves and quits")
	bus := flag.Int("bus", 1, "I2C bus number (smbus backend)")
	addr := flag.Uint("addr", nau7802.DefaultAddress, "NAU7802 I2C address")
	mock := flag.Bool("mock", false, "simulate the ADC and the LEDs")
	count := flag.Int("count", 1, "scans to take, 0 for continuous")
	label := flag.String("label", "", "sample label, e.g. PET or HDPE")
	sample := flag.String("sample", "", "sample number")
	csvPath := flag.String("csv", "", "append results to this CSV file")
	flag.Parse()

	cfg, err := config.Load(opts.config)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.config).Msg("failed to load config")
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bus":
			cfg.Bus.Number = *bus
		case "addr":
			cfg.Bus.Address = uint16(*addr)
		case "mock":
			if *mock {
				cfg.Bus.Backend = config.BusSim
				cfg.LED.Backend = config.LEDMock
			}
		case "count":
			cfg.Scan.Count = *count
		case "label":
			cfg.Output.Label = *label
		case "sample":
			cfg.Output.Sample = *sample
		case "csv":
			cfg.Output.CSV = *csvPath
		}
	})

	if err = cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return opts, cfg
}

func main() {
	opts, cfg := flags()
	if opts.debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hw, err := openHardware(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open hardware")
	}
	defer func() {
		if err := hw.Close(); err != nil {
			log.Error().Err(err).Msg("failed to release hardware")
		}
		log.Info().Msg("closed")
	}()

	if err = hw.begin(cfg); err != nil {
		log.Error().Err(err).Msg("initialization failed")
		return
	}

	seq := scan.NewSequencer(hw.leds, hw.adc,
		scan.WithSettle(cfg.Scan.Settle),
		scan.WithAllowNegative(cfg.ADC.AllowNegative),
		scan.WithLogger(log.With().Str("component", "scan").Logger()),
	)

	if opts.interactive {
		err = interactive(ctx, os.Stdin, os.Stdout, hw, seq, cfg)
	} else {
		err = run(ctx, hw, seq, cfg)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("scan failed")
	}
}

func run(ctx context.Context, hw *hardware, seq *scan.Sequencer, cfg *config.Config) error {
	return seq.Repeat(ctx, cfg.Scan.Count, cfg.Scan.Interval, func(n int, r scan.Result) error {
		log.Info().Int("scan", n+1).Ints32("values", r[:]).Msg("scan")

		if cfg.Output.CSV != "" {
			row := dataset.Row{Label: cfg.Output.Label, Sample: cfg.Output.Sample, Values: r}
			if err := dataset.Append(cfg.Output.CSV, row); err != nil {
				return err
			}
		}
		if cfg.ADC.RezeroEachScan {
			return hw.zero(cfg.ADC.ZeroSamples)
		}
		return nil
	})
}
