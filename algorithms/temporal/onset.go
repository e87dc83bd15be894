package temporal

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
)

// OnsetMethod selects the transient detection strategy
type OnsetMethod int

const (
	// OnsetEnergy flags a transient on a sharp rise in frame RMS energy
	OnsetEnergy OnsetMethod = iota
	// OnsetSpectralFlux flags a transient on positive spectral flux between
	// consecutive magnitude spectra
	OnsetSpectralFlux
)

// OnsetDetector detects attack transients in a stream of analysis frames.
// It is stateful: feed frames in capture order via Observe.
type OnsetDetector struct {
	method       OnsetMethod
	historyLen   int
	minLevel     float64
	riseFactor   float64
	fluxFloor    float64
	rmsHistory   []float64
	prevMagnSpec []float64
	window       *windowing.Hann
}

// NewOnsetDetector creates an energy-based onset detector with defaults
// suited to plucked-string attacks.
func NewOnsetDetector() *OnsetDetector {
	return &OnsetDetector{
		method:     OnsetEnergy,
		historyLen: 8,
		minLevel:   0.01,
		riseFactor: 2.5,
		fluxFloor:  0.08,
	}
}

// NewOnsetDetectorWithMethod creates an onset detector using the given method
func NewOnsetDetectorWithMethod(method OnsetMethod) *OnsetDetector {
	od := NewOnsetDetector()
	od.method = method
	return od
}

// Observe consumes the next frame and reports whether an attack transient
// was detected at it.
func (od *OnsetDetector) Observe(frame []float64) bool {
	switch od.method {
	case OnsetSpectralFlux:
		return od.observeFlux(frame)
	default:
		return od.observeEnergy(frame)
	}
}

// observeEnergy detects a transient as a frame whose RMS rises sharply over
// the recent history, with an adaptive guard so sustained loud playing does
// not retrigger.
func (od *OnsetDetector) observeEnergy(frame []float64) bool {
	rms := common.RMS(frame)

	detected := false
	if len(od.rmsHistory) > 0 && rms >= od.minLevel {
		mean := common.Mean(od.rmsHistory)
		stdDev := common.StandardDeviation(od.rmsHistory)

		// Adaptive threshold: mean + 2 sigma, floored by a plain rise factor
		// so the cold-start frames still behave
		threshold := mean + 2.0*stdDev
		if threshold < mean*od.riseFactor {
			threshold = mean * od.riseFactor
		}
		detected = rms > threshold
	}

	od.rmsHistory = append(od.rmsHistory, rms)
	if len(od.rmsHistory) > od.historyLen {
		od.rmsHistory = od.rmsHistory[len(od.rmsHistory)-od.historyLen:]
	}

	return detected
}

// observeFlux detects a transient via positive spectral flux between the
// current and previous frame spectra.
func (od *OnsetDetector) observeFlux(frame []float64) bool {
	if od.window == nil || od.window.Size() != len(frame) {
		od.window = windowing.NewHann(len(frame))
	}

	spectrum := fft.FFTReal(od.window.Apply(frame))

	half := len(spectrum) / 2
	magn := make([]float64, half)
	for i := range magn {
		magn[i] = math.Hypot(real(spectrum[i]), imag(spectrum[i]))
	}

	detected := false
	if od.prevMagnSpec != nil && len(od.prevMagnSpec) == half {
		flux := 0.0
		for i := range magn {
			diff := magn[i] - od.prevMagnSpec[i]
			if diff > 0 {
				flux += diff
			}
		}
		// Normalize by bin count so the floor is frame-size independent
		flux /= float64(half)
		detected = flux > od.fluxFloor
	}

	od.prevMagnSpec = magn
	return detected
}

// Reset clears detector state for a fresh session
func (od *OnsetDetector) Reset() {
	od.rmsHistory = od.rmsHistory[:0]
	od.prevMagnSpec = nil
}
