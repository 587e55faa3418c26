package nau7802

import (
	"math"
	"time"
)

// CalStatus is the AFE calibration status derived from CALS and CAL_ERR.
type CalStatus int

const (
	CalSuccess CalStatus = iota
	CalInProgress
	CalFailure
)

func (s CalStatus) String() string {
	switch s {
	case CalSuccess:
		return "Success"
	case CalInProgress:
		return "InProgress"
	case CalFailure:
		return "Failure"
	default:
		return "(invalid status)"
	}
}

// CalibrateAFE runs an analog front end self-calibration and waits for it for
// up to timeout. On success the conversion cycle is started and the device is
// Ready; on any failure it is Faulted.
//
// The AFE should be re-calibrated whenever gain, sample rate or channel change.
func (d *Device) CalibrateAFE(timeout time.Duration) error {
	if err := d.BeginCalibrateAFE(); err != nil {
		return d.fail("begin AFE calibration", err)
	}
	if err := d.WaitForCalibrateAFE(timeout); err != nil {
		return d.fail("AFE calibration", err)
	}
	if err := d.SetBit(BitCS); err != nil {
		return d.fail("start conversion", err)
	}
	d.setState(StateReady)
	d.log.Info().Msg("AFE calibration complete")
	return nil
}

// BeginCalibrateAFE sets the calibration start bit without waiting.
func (d *Device) BeginCalibrateAFE() error {
	if err := d.SetBit(BitCALS); err != nil {
		return err
	}
	d.setState(StateCalibrating)
	return nil
}

// CalAFEStatus derives the calibration status: CALS still set means in
// progress, otherwise CAL_ERR decides between failure and success.
func (d *Device) CalAFEStatus() (CalStatus, error) {
	inProgress, err := d.GetBit(BitCALS)
	if err != nil {
		return CalFailure, err
	}
	if inProgress {
		return CalInProgress, nil
	}
	calErr, err := d.GetBit(BitCalError)
	if err != nil {
		return CalFailure, err
	}
	if calErr {
		return CalFailure, nil
	}
	return CalSuccess, nil
}

// WaitForCalibrateAFE polls the calibration status every poll interval until it
// leaves CalInProgress. A positive timeout bounds the wait; zero or negative
// waits indefinitely.
func (d *Device) WaitForCalibrateAFE(timeout time.Duration) error {
	start := d.now()
	status := CalInProgress

	for status == CalInProgress {
		if timeout > 0 && d.now().Sub(start) > timeout {
			break
		}
		d.sleep(d.pollInterval)

		var err error
		if status, err = d.CalAFEStatus(); err != nil {
			return err
		}
	}

	switch status {
	case CalSuccess:
		return nil
	case CalFailure:
		return ErrCalibrationFailure
	default:
		return ErrCalibrationTimeout
	}
}

// CalculateZeroOffset averages n readings and stores the mean as the zero
// offset. The caller is responsible for the reference condition (all LEDs off).
func (d *Device) CalculateZeroOffset(n int) error {
	avg, err := d.Average(n)
	if err != nil {
		return err
	}
	d.SetZeroOffset(Sample(math.Round(avg)))
	return nil
}

// SetZeroOffset sets the baseline subtracted by Led and Value. Offsets outside
// the 24-bit conversion range are clamped to it.
func (d *Device) SetZeroOffset(offset Sample) {
	offset = min(max(offset, MinSample), MaxSample)
	d.log.Debug().Int32("zero_offset", offset).Msg("zero offset set")
	d.zeroOffset = offset
}

// ZeroOffset returns the baseline subtracted from readings.
func (d *Device) ZeroOffset() Sample {
	return d.zeroOffset
}

// CalculateCalibrationFactor averages n readings of a known reference and
// derives the counts-per-unit factor relative to the zero offset.
func (d *Device) CalculateCalibrationFactor(reference float64, n int) error {
	if reference == 0 {
		return ErrNotCalibrated
	}
	avg, err := d.Average(n)
	if err != nil {
		return err
	}
	d.SetCalibrationFactor((avg - float64(d.zeroOffset)) / reference)
	return nil
}

// SetCalibrationFactor sets the counts per unit used by Value.
func (d *Device) SetCalibrationFactor(factor float64) {
	d.calibrationFactor = factor
}

// CalibrationFactor returns the counts per unit used by Value.
func (d *Device) CalibrationFactor() float64 {
	return d.calibrationFactor
}
