package fitter

import "errors"

var (
	// ErrInvalidWindow is returned when the fit window holds no usable observation.
	ErrInvalidWindow = errors.New("fit window has no observations")

	// ErrNonConvergence is returned when the optimizer exhausts its iteration or
	// evaluation budget. The last iterate is discarded.
	ErrNonConvergence = errors.New("fit did not converge")

	// ErrPeakNotBracketed is returned when the peak locator cannot find a
	// turning point strictly inside its bracket.
	ErrPeakNotBracketed = errors.New("peak not bracketed")
)
