// Package interpolation provides audio interpolation and smoothing utilities.
package interpolation

// Linear performs linear interpolation between two samples.
// frac is the fractional position between y0 and y1 (0.0 to 1.0).
func Linear(y0, y1, frac float64) float64 {
	return y0 + (y1-y0)*frac
}

// Smooth performs one step of exponential smoothing of current toward target.
// Used for parameters that must not jump discontinuously between control-rate updates.
func Smooth(current, target, smoothingFactor float64) float64 {
	return current + (target-current)*smoothingFactor
}
