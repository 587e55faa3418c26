package nau7802

import (
	"context"
	"errors"
	"fmt"
)

// Available reports whether a fresh conversion result is latched.
func (d *Device) Available() (bool, error) {
	return d.GetBit(BitCR)
}

// Reading waits until a conversion is available and returns it.
//
// There is no time bound: if the device never signals cycle ready, Reading
// blocks forever. Use [Device.ReadingContext] to impose one.
func (d *Device) Reading() (Sample, error) {
	return d.ReadingContext(context.Background())
}

// ReadingContext is Reading with an outer cancellation. ctx is checked between
// polls of the cycle ready bit.
func (d *Device) ReadingContext(ctx context.Context) (Sample, error) {
	for {
		ready, err := d.Available()
		if err != nil {
			return 0, err
		}
		if ready {
			break
		}
		if err = ctx.Err(); err != nil {
			return 0, err
		}
	}
	return d.readSample()
}

// Average returns the mean of n consecutive readings. If the n readings are not
// gathered within the sampling budget (one second by default) it returns an
// error matching ErrSampleTimeout.
func (d *Device) Average(n int) (float64, error) {
	if n <= 0 {
		return 0, ErrInvalidSampleCount
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.sampleBudget)
	defer cancel()

	timeout := func(got int) error {
		return fmt.Errorf("%w: %d of %d samples in %s", ErrSampleTimeout, got, n, d.sampleBudget)
	}

	var total int64
	for i := 0; i < n; i++ {
		// checked here too: ReadingContext skips ctx when a conversion is ready
		if ctx.Err() != nil {
			return 0, timeout(i)
		}
		s, err := d.ReadingContext(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return 0, timeout(i)
		case err != nil:
			return 0, err
		}
		total += int64(s)
		if i < n-1 {
			d.sleep(d.pollInterval)
		}
	}
	return float64(total) / float64(n), nil
}

// Led takes one reading and subtracts the zero offset. With allowNegative set
// to false, readings below the offset are reported as zero.
func (d *Device) Led(allowNegative bool) (Sample, error) {
	return d.LedContext(context.Background(), allowNegative)
}

// LedContext is Led bounded by ctx.
func (d *Device) LedContext(ctx context.Context, allowNegative bool) (Sample, error) {
	r, err := d.ReadingContext(ctx)
	if err != nil {
		return 0, err
	}
	if !allowNegative && r < d.zeroOffset {
		r = d.zeroOffset
	}
	return r - d.zeroOffset, nil
}

// Value averages n readings and scales them by the calibration factor.
func (d *Device) Value(n int, allowNegative bool) (float64, error) {
	if d.calibrationFactor == 0 {
		return 0, ErrNotCalibrated
	}
	avg, err := d.Average(n)
	if err != nil {
		return 0, err
	}
	zero := float64(d.zeroOffset)
	if !allowNegative && avg < zero {
		avg = zero
	}
	return (avg - zero) / d.calibrationFactor, nil
}
