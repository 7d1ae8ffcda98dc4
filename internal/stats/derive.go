package stats

import "math"

// DefaultSmoothing is the pseudo-count added to the mis-priming denominator.
const DefaultSmoothing = 100.0

// MisPrimingPercent returns the percentage of read pairs whose primer sites
// do not match the amplicon. smoothing is added to the denominator so that
// amplicons with few observations do not report extreme ratios.
func MisPrimingPercent(correct, leftErr, rightErr, smoothing float64) float64 {
	bad := leftErr + rightErr
	denom := correct + bad + smoothing
	if denom <= 0 || bad <= 0 {
		return 0
	}
	return 100 * bad / denom
}

// ClippedLog10 returns log10(x) for positive x and 0 otherwise, so zero or
// missing counts plot at a fixed baseline.
func ClippedLog10(x float64) float64 {
	if x > 0 {
		return math.Log10(x)
	}
	return 0
}

// RunningMax returns the largest of current and candidates. NaN values are
// ignored.
func RunningMax(current float64, candidates ...float64) float64 {
	for _, c := range candidates {
		if math.IsNaN(c) {
			continue
		}
		if c > current {
			current = c
		}
	}
	return current
}

// CeilPow10 rounds x up to the next power of ten. Values at or below 1
// return 1.
func CeilPow10(x float64) float64 {
	if math.IsNaN(x) || x <= 1 {
		return 1
	}
	if math.IsInf(x, 1) {
		return x
	}
	p := math.Ceil(math.Log10(x))
	// Log10 is not exact at powers of ten.
	if math.Pow(10, p-1) >= x {
		p--
	}
	if math.Pow(10, p) < x {
		p++
	}
	return math.Pow(10, p)
}
