package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"

	"github.com/yunginnanet/nirscan/pkg/config"
	"github.com/yunginnanet/nirscan/pkg/dataset"
	"github.com/yunginnanet/nirscan/pkg/scan"
)

const defaultDataset = "NIR_data.csv"

// session buffers labelled scans until the operator quits.
type session struct {
	in   *bufio.Scanner
	out  io.Writer
	rows []dataset.Row

	label, sample string
}

func (s *session) prompt(q string) (string, bool) {
	fmt.Fprint(s.out, q)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) collectSample() bool {
	label, ok := s.prompt("label (e.g. PET, HDPE): ")
	if !ok {
		return false
	}
	sample, ok := s.prompt("sample number: ")
	if !ok {
		return false
	}
	s.label, s.sample = label, sample
	return true
}

// interactive runs the collector loop: r scans and buffers a row, c changes
// the label and sample number, q writes the buffered rows and exits. End of
// input behaves like q. On a scan error or cancellation the rows buffered so
// far are still written.
func interactive(ctx context.Context, in io.Reader, out io.Writer, hw *hardware, seq *scan.Sequencer, cfg *config.Config) error {
	s := &session{in: bufio.NewScanner(in), out: out}
	path := cfg.Output.CSV
	if path == "" {
		path = defaultDataset
	}

	if !s.collectSample() {
		return s.save(path)
	}
	fmt.Fprintln(out, "commands: [r] scan  [c] change sample  [q] save and quit")

	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(err, s.save(path))
		}
		cmd, ok := s.prompt("(r/c/q): ")
		if !ok {
			return s.save(path)
		}

		switch strings.ToLower(cmd) {
		case "r":
			res, err := seq.Scan(ctx)
			if err != nil {
				return multierr.Append(err, s.save(path))
			}
			for i, v := range res {
				fmt.Fprintf(out, "  channel %d -> %d\n", i, v)
			}
			s.rows = append(s.rows, dataset.Row{Label: s.label, Sample: s.sample, Values: res})
			if cfg.ADC.RezeroEachScan {
				if err = hw.zero(cfg.ADC.ZeroSamples); err != nil {
					return multierr.Append(err, s.save(path))
				}
			}
		case "c":
			if !s.collectSample() {
				return s.save(path)
			}
		case "q":
			return s.save(path)
		default:
			fmt.Fprintln(out, "unknown command, use r, c or q")
		}
	}
}

func (s *session) save(path string) error {
	if len(s.rows) == 0 {
		fmt.Fprintln(s.out, "nothing to save")
		return nil
	}
	if err := dataset.Append(path, s.rows...); err != nil {
		return err
	}
	log.Info().Int("rows", len(s.rows)).Str("path", path).Msg("dataset saved")
	return nil
}
