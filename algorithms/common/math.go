package common

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions shared across algorithms, using gonum for
// the non-trivial ones.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice using gonum
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// MaxAbs returns the largest absolute value in a slice
func MaxAbs(data []float64) float64 {
	maxVal := 0.0
	for _, val := range data {
		abs := math.Abs(val)
		if abs > maxVal {
			maxVal = abs
		}
	}
	return maxVal
}

// CentsBetween returns the signed pitch distance between two frequencies
// in cents (100 cents = one semitone).
func CentsBetween(freq, ref float64) float64 {
	if freq <= 0 || ref <= 0 {
		return 0.0
	}
	return 1200.0 * math.Log2(freq/ref)
}
