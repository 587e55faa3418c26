package nau7802

import "errors"

var (
	// ErrNotConnected is returned by Begin when the device does not answer.
	ErrNotConnected = errors.New("nau7802 not connected")

	// ErrPowerUpTimeout is returned when the power-up ready bit never asserts.
	ErrPowerUpTimeout = errors.New("nau7802 power-up timed out")

	// ErrCalibrationTimeout is returned when AFE calibration is still in
	// progress after the timeout.
	ErrCalibrationTimeout = errors.New("nau7802 AFE calibration timed out")

	// ErrCalibrationFailure is returned when the device reports CAL_ERR.
	ErrCalibrationFailure = errors.New("nau7802 AFE calibration failed")

	// ErrSampleTimeout is returned when averaging cannot gather its samples
	// within the sampling budget.
	ErrSampleTimeout = errors.New("nau7802 sample timeout")

	// ErrNotCalibrated is returned by Value before a calibration factor is set.
	ErrNotCalibrated = errors.New("nau7802 calibration factor not set")

	ErrInvalidSampleCount = errors.New("sample count must be positive")
)
