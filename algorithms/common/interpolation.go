package common

// ParabolicInterpolation refines a discrete extremum location to sub-sample
// precision by fitting a parabola through the point and its two neighbors.
// Returns the refined (fractional) index. Works for minima and maxima alike.
func ParabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y1 := data[peakIdx-1]
	y2 := data[peakIdx]
	y3 := data[peakIdx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if a == 0 {
		return float64(peakIdx)
	}

	xPeak := -b / (2 * a)

	// The vertex of the fitted parabola is at most half a sample away from
	// the discrete extremum; anything beyond that means the three points do
	// not bracket it.
	if xPeak < -0.5 {
		xPeak = -0.5
	} else if xPeak > 0.5 {
		xPeak = 0.5
	}

	return float64(peakIdx) + xPeak
}
