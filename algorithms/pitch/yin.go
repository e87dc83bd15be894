package pitch

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// Params contains parameters for the YIN fundamental frequency estimator
//
// Reference:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
type Params struct {
	SampleRate int     `json:"sample_rate"`
	FrameSize  int     `json:"frame_size"`
	MinFreq    float64 `json:"min_freq"` // Lower edge of the instrument band (Hz)
	MaxFreq    float64 `json:"max_freq"` // Upper edge of the instrument band (Hz)

	// Threshold is the absolute acceptance threshold on the cumulative mean
	// normalized difference. The first local minimum below it wins; the
	// global minimum is deliberately not used as a fallback, since a deeper
	// minimum at twice the true period is the classic octave error.
	Threshold float64 `json:"threshold"`

	// UseFFT selects the FFT-accelerated difference function. Both paths
	// compute the same quantity; the direct path exists as a reference.
	UseFFT bool `json:"use_fft"`
}

// DefaultParams returns estimator parameters for the standard tuner band
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate: sampleRate,
		FrameSize:  4096,
		MinFreq:    65.0,
		MaxFreq:    1100.0,
		Threshold:  0.15,
		UseFFT:     true,
	}
}

// Estimate is one fundamental frequency estimate for one analysis frame.
// A zero Frequency means no pitch was detected (silence or ambiguity).
type Estimate struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
}

// Voiced reports whether a fundamental was detected
func (e Estimate) Voiced() bool {
	return e.Frequency > 0
}

// Estimator implements the YIN autocorrelation-difference estimator for
// monophonic signals. It is not safe for concurrent use; each stream should
// own its estimator.
type Estimator struct {
	params Params

	tauMin int
	tauMax int
	winLen int // integration window length

	// Scratch buffers, reused across frames to avoid per-frame allocation
	diff       []float64
	cmndf      []float64
	prefixSq   []float64
	fftScratch []float64
}

// NewEstimator creates a YIN estimator, validating the band against the
// frame size.
func NewEstimator(params Params) (*Estimator, error) {
	if params.SampleRate <= 0 || params.FrameSize <= 0 {
		return nil, fmt.Errorf("invalid sample rate (%d) or frame size (%d)", params.SampleRate, params.FrameSize)
	}
	if params.MinFreq <= 0 || params.MaxFreq <= params.MinFreq {
		return nil, fmt.Errorf("invalid frequency band [%.1f, %.1f]", params.MinFreq, params.MaxFreq)
	}
	if params.Threshold <= 0 || params.Threshold >= 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1), got %.3f", params.Threshold)
	}

	tauMin := int(float64(params.SampleRate) / params.MaxFreq)
	tauMax := int(math.Ceil(float64(params.SampleRate) / params.MinFreq))
	if tauMin < 2 {
		tauMin = 2
	}

	winLen := params.FrameSize - tauMax
	if winLen <= tauMax {
		minDetectable := float64(params.SampleRate) / float64(params.FrameSize/2)
		return nil, fmt.Errorf("frame too short for %.1f Hz; minimum detectable is about %.1f Hz", params.MinFreq, minDetectable)
	}

	return &Estimator{
		params:   params,
		tauMin:   tauMin,
		tauMax:   tauMax,
		winLen:   winLen,
		diff:     make([]float64, tauMax+1),
		cmndf:    make([]float64, tauMax+1),
		prefixSq: make([]float64, params.FrameSize+1),
	}, nil
}

// Params returns the estimator parameters
func (es *Estimator) Params() Params {
	return es.params
}

// Estimate runs YIN over one frame and returns the fundamental estimate,
// or a zero estimate when no lag clears the threshold.
func (es *Estimator) Estimate(frame []float64) (Estimate, error) {
	if len(frame) != es.params.FrameSize {
		return Estimate{}, fmt.Errorf("frame size (%d) doesn't match configured size (%d)", len(frame), es.params.FrameSize)
	}

	// Digital silence short-circuits the whole lag scan
	if common.MaxAbs(frame) == 0 {
		return Estimate{}, nil
	}

	if es.params.UseFFT {
		es.differenceFFT(frame)
	} else {
		es.differenceDirect(frame)
	}

	es.normalizeDifference()

	tau := es.firstMinimumBelowThreshold()
	if tau < 0 {
		return Estimate{}, nil
	}

	// Refine on the raw difference function: the normalized curve is tilted
	// by its cumulative mean, which biases the parabola vertex.
	period := common.ParabolicInterpolation(es.diff, tau)
	frequency := float64(es.params.SampleRate) / period

	// A refined period can land a hair outside the band at the edges;
	// allow half a percent before calling it out-of-range.
	if frequency < es.params.MinFreq*0.995 || frequency > es.params.MaxFreq*1.005 {
		return Estimate{}, nil
	}

	confidence := 1.0 - es.cmndf[tau]
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return Estimate{Frequency: frequency, Confidence: confidence}, nil
}

// differenceDirect computes the squared-difference function
// d(tau) = sum_{j<W} (x[j] - x[j+tau])^2 by definition.
func (es *Estimator) differenceDirect(frame []float64) {
	es.diff[0] = 0
	for tau := 1; tau <= es.tauMax; tau++ {
		sum := 0.0
		for j := 0; j < es.winLen; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		es.diff[tau] = sum
	}
}

// differenceFFT computes the same d(tau) via the identity
// d(tau) = E(0) + E(tau) - 2*r(tau), with the cross term r obtained from a
// frequency-domain correlation. This keeps a 4096-sample frame well inside
// the hop budget.
func (es *Estimator) differenceFFT(frame []float64) {
	n := len(frame)

	// Prefix sums of squared samples for the energy terms
	es.prefixSq[0] = 0
	for i, v := range frame {
		es.prefixSq[i+1] = es.prefixSq[i] + v*v
	}
	e0 := es.prefixSq[es.winLen]

	// r(tau) = sum_{j<W} x[j]*x[j+tau]. The integration window is zero-padded
	// to the frame length, so circular correlation has no wraparound for
	// tau <= tauMax.
	if es.fftScratch == nil {
		es.fftScratch = make([]float64, n)
	}
	windowed := es.fftScratch
	copy(windowed, frame[:es.winLen])
	for i := es.winLen; i < n; i++ {
		windowed[i] = 0
	}

	specFrame := fft.FFTReal(frame)
	specWin := fft.FFTReal(windowed)

	cross := make([]complex128, n)
	for i := range cross {
		cross[i] = specFrame[i] * cmplx.Conj(specWin[i])
	}
	corr := fft.IFFT(cross)

	es.diff[0] = 0
	for tau := 1; tau <= es.tauMax; tau++ {
		eTau := es.prefixSq[tau+es.winLen] - es.prefixSq[tau]
		d := e0 + eTau - 2.0*real(corr[tau])
		// Guard against negative values from float cancellation
		if d < 0 {
			d = 0
		}
		es.diff[tau] = d
	}
}

// normalizeDifference computes the cumulative mean normalized difference
// d'(tau) = d(tau) / ((1/tau) * sum_{j=1..tau} d(j)).
func (es *Estimator) normalizeDifference() {
	es.cmndf[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau <= es.tauMax; tau++ {
		runningSum += es.diff[tau]
		if runningSum == 0 {
			// Perfectly flat signal so far (digital silence)
			es.cmndf[tau] = 1.0
			continue
		}
		es.cmndf[tau] = es.diff[tau] * float64(tau) / runningSum
	}
}

// firstMinimumBelowThreshold scans lags ascending and returns the first
// local minimum of the normalized difference that falls below the
// threshold, or -1 when none qualifies. Stopping at the first qualifying
// minimum rather than the global one is what avoids the octave error.
func (es *Estimator) firstMinimumBelowThreshold() int {
	tau := es.tauMin
	for tau <= es.tauMax {
		if es.cmndf[tau] < es.params.Threshold {
			for tau+1 <= es.tauMax && es.cmndf[tau+1] < es.cmndf[tau] {
				tau++
			}
			return tau
		}
		tau++
	}
	return -1
}
