package tuner

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/pitch"
	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
)

// ContinuityFilter suppresses estimator artifacts before classification:
//
//   - Confidence gate: estimates below the floor become silence.
//   - Onset blanking: for a short window after a detected amplitude
//     transient, all pitch output is suppressed; the attack phase of a
//     plucked string yields unstable estimates.
//   - Continuity tracking: an estimate far from the last accepted frequency
//     is only accepted immediately when its confidence clears a stricter
//     bar, or once it has persisted across consecutive frames.
//
// The filter is stateful and frame-ordered; one instance per stream.
type ContinuityFilter struct {
	confidenceFloor    float64
	overrideConfidence float64
	jumpThresholdCents float64
	persistenceFrames  int
	blankingFrames     int

	onset *temporal.OnsetDetector

	blankingLeft int
	lastAccepted float64
	pendingFreq  float64
	pendingCount int
}

// NewContinuityFilter builds a filter from pipeline configuration
func NewContinuityFilter(cfg *Config) *ContinuityFilter {
	method := temporal.OnsetEnergy
	if cfg.OnsetUseSpectralFlux {
		method = temporal.OnsetSpectralFlux
	}

	return &ContinuityFilter{
		confidenceFloor:    cfg.ConfidenceFloor,
		overrideConfidence: cfg.OverrideConfidence,
		jumpThresholdCents: cfg.JumpThresholdCents,
		persistenceFrames:  cfg.PersistenceFrames,
		blankingFrames:     cfg.OnsetBlankingFrames,
		onset:              temporal.NewOnsetDetectorWithMethod(method),
	}
}

// Filter consumes one frame's samples and raw estimate and returns the
// filtered estimate: unchanged when accepted, zero (silence) when rejected.
func (f *ContinuityFilter) Filter(samples []float64, est pitch.Estimate) pitch.Estimate {
	// Onset detection observes every frame, including ones that will be
	// rejected anyway, so the energy history stays continuous.
	if f.onset.Observe(samples) {
		f.blankingLeft = f.blankingFrames
		f.pendingCount = 0
	}

	if f.blankingLeft > 0 {
		f.blankingLeft--
		return pitch.Estimate{}
	}

	if !est.Voiced() || est.Confidence < f.confidenceFloor {
		f.pendingCount = 0
		return pitch.Estimate{}
	}

	// First accepted estimate of the stream
	if f.lastAccepted == 0 {
		f.accept(est.Frequency)
		return est
	}

	jump := math.Abs(1200.0 * math.Log2(est.Frequency/f.lastAccepted))
	if jump <= f.jumpThresholdCents {
		f.accept(est.Frequency)
		return est
	}

	// Implausible jump: accept immediately only on very high confidence
	if est.Confidence >= f.overrideConfidence {
		f.accept(est.Frequency)
		return est
	}

	// Otherwise require the jump target to persist across frames
	if f.pendingFreq > 0 && math.Abs(1200.0*math.Log2(est.Frequency/f.pendingFreq)) <= f.jumpThresholdCents {
		f.pendingCount++
	} else {
		f.pendingFreq = est.Frequency
		f.pendingCount = 1
	}

	if f.pendingCount >= f.persistenceFrames {
		f.accept(est.Frequency)
		return est
	}

	return pitch.Estimate{}
}

func (f *ContinuityFilter) accept(freq float64) {
	f.lastAccepted = freq
	f.pendingFreq = 0
	f.pendingCount = 0
}

// Reset clears tracking state for a fresh session
func (f *ContinuityFilter) Reset() {
	f.onset.Reset()
	f.blankingLeft = 0
	f.lastAccepted = 0
	f.pendingFreq = 0
	f.pendingCount = 0
}
