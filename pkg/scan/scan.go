// Package scan lights the LED channels one at a time and records the ADC
// reading under each.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/yunginnanet/nirscan/pkg/led"
	"github.com/yunginnanet/nirscan/pkg/nau7802"
)

// MinSettle is the shortest settle delay a Sequencer will use.
const MinSettle = 5 * time.Millisecond

var ErrScanAborted = errors.New("scan aborted")

// Result holds one zero-corrected reading per channel, indexed by channel.
type Result [led.Channels]int32

// Sensor takes one zero-corrected reading. [nau7802.Device] implements it.
type Sensor interface {
	LedContext(ctx context.Context, allowNegative bool) (nau7802.Sample, error)
}

// Sequencer owns the LED controller and the sensor for the duration of a scan.
// It is not safe for concurrent use.
type Sequencer struct {
	leds          led.Controller
	adc           Sensor
	settle        time.Duration
	allowNegative bool
	log           zerolog.Logger
}

type Option func(*Sequencer)

// WithSettle sets the delay between switching a channel on and reading it.
// Values below MinSettle are raised to MinSettle.
func WithSettle(d time.Duration) Option {
	return func(s *Sequencer) {
		s.settle = max(d, MinSettle)
	}
}

// WithAllowNegative controls whether readings below the zero offset are kept
// (true, the default) or reported as zero.
func WithAllowNegative(allow bool) Option {
	return func(s *Sequencer) {
		s.allowNegative = allow
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sequencer) {
		s.log = l
	}
}

func NewSequencer(leds led.Controller, adc Sensor, opts ...Option) *Sequencer {
	s := &Sequencer{
		leds:          leds,
		adc:           adc,
		settle:        MinSettle,
		allowNegative: true,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settle returns the settle delay in use.
func (s *Sequencer) Settle() time.Duration {
	return s.settle
}

// Scan measures channels 0 through 7 in order. Each channel is switched on,
// left to settle, read, and switched off before the next one is touched.
//
// On any failure the zero Result is returned along with the error; a channel
// that was switched on is switched off first. Cancelling ctx aborts the scan
// with an error matching ErrScanAborted.
func (s *Sequencer) Scan(ctx context.Context) (Result, error) {
	var res Result
	start := time.Now()

	for i := range res {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w before channel %d: %w", ErrScanAborted, i, err)
		}
		v, err := s.channel(ctx, i)
		if err != nil {
			s.log.Warn().Err(err).Int("channel", i).Msg("scan failed")
			return Result{}, err
		}
		res[i] = v
	}

	s.log.Debug().Dur("took", time.Since(start)).Ints32("values", res[:]).Msg("scan complete")
	return res, nil
}

func (s *Sequencer) channel(ctx context.Context, i int) (v int32, err error) {
	defer func() {
		if offErr := s.leds.SetChannel(i, false); offErr != nil {
			err = multierr.Append(err, fmt.Errorf("channel %d off: %w", i, offErr))
		}
	}()

	if err = s.leds.SetChannel(i, true); err != nil {
		return 0, fmt.Errorf("channel %d on: %w", i, err)
	}

	if err = wait(ctx, s.settle); err != nil {
		return 0, fmt.Errorf("%w settling channel %d: %w", ErrScanAborted, i, err)
	}

	v, err = s.adc.LedContext(ctx, s.allowNegative)
	switch {
	case err != nil && ctx.Err() != nil:
		return 0, fmt.Errorf("%w reading channel %d: %w", ErrScanAborted, i, err)
	case err != nil:
		return 0, fmt.Errorf("channel %d: %w", i, err)
	}

	s.log.Trace().Int("channel", i).Int32("value", v).Msg("channel read")
	return v, nil
}

// Repeat runs count scans, waiting interval between them, and hands each
// result to fn along with its sequence number starting at zero. A count of
// zero or less scans until ctx is cancelled. Repeat stops at the first error
// from Scan or fn.
func (s *Sequencer) Repeat(ctx context.Context, count int, interval time.Duration, fn func(n int, r Result) error) error {
	for n := 0; count <= 0 || n < count; n++ {
		if n > 0 {
			if err := wait(ctx, interval); err != nil {
				return fmt.Errorf("%w after %d scans: %w", ErrScanAborted, n, err)
			}
		}
		res, err := s.Scan(ctx)
		if err != nil {
			return err
		}
		if err = fn(n, res); err != nil {
			return err
		}
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
