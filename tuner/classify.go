package tuner

// Classifier maps an accepted frequency and a target frequency to a tuning
// status and signed cents deviation. Pure and stateless: same inputs always
// produce the same output.
type Classifier struct {
	inTuneCents float64
	closeCents  float64
}

// NewClassifier builds a classifier from pipeline configuration
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{
		inTuneCents: cfg.InTuneCents,
		closeCents:  cfg.CloseCents,
	}
}

// Classify returns the tuning status and cents deviation for a measured
// frequency against a target. A zero frequency (silence) yields
// StatusSilent with zero cents.
func (c *Classifier) Classify(frequency float64, target TuningTarget) (TuningStatus, float64) {
	if frequency <= 0 || target.Frequency <= 0 {
		return StatusSilent, 0
	}

	cents := CentsOff(frequency, target.Frequency)

	abs := cents
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs <= c.inTuneCents:
		return StatusInTune, cents
	case abs <= c.closeCents:
		return StatusClose, cents
	case cents < 0:
		return StatusFlat, cents
	default:
		return StatusSharp, cents
	}
}
