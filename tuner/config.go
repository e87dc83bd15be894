package tuner

import (
	"fmt"
)

// Instrument selects a band-optimized configuration
type Instrument string

const (
	InstrumentGuitar  Instrument = "guitar"
	InstrumentBass    Instrument = "bass"
	InstrumentUkulele Instrument = "ukulele"
	InstrumentViolin  Instrument = "violin"
)

// Config is the full tuner pipeline configuration surface
type Config struct {
	// Windowing
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
	FrameSize  int `json:"frame_size" yaml:"frame_size"`
	HopSize    int `json:"hop_size" yaml:"hop_size"`

	// Estimator band and acceptance
	MinFreq          float64 `json:"min_freq" yaml:"min_freq"`
	MaxFreq          float64 `json:"max_freq" yaml:"max_freq"`
	YinThreshold     float64 `json:"yin_threshold" yaml:"yin_threshold"`
	UseFFTDifference bool    `json:"use_fft_difference" yaml:"use_fft_difference"`

	// Continuity and onset filtering. These are empirically tuned rather
	// than derived; the defaults come from plucked-string behavior.
	ConfidenceFloor      float64 `json:"confidence_floor" yaml:"confidence_floor"`
	OverrideConfidence   float64 `json:"override_confidence" yaml:"override_confidence"`
	JumpThresholdCents   float64 `json:"jump_threshold_cents" yaml:"jump_threshold_cents"`
	PersistenceFrames    int     `json:"persistence_frames" yaml:"persistence_frames"`
	OnsetBlankingFrames  int     `json:"onset_blanking_frames" yaml:"onset_blanking_frames"`
	OnsetUseSpectralFlux bool    `json:"onset_use_spectral_flux" yaml:"onset_use_spectral_flux"`

	// Classifier bands (cents)
	InTuneCents float64 `json:"in_tune_cents" yaml:"in_tune_cents"`
	CloseCents  float64 `json:"close_cents" yaml:"close_cents"`

	// Announcement throttling
	MinIntervalMs    int     `json:"min_interval_ms" yaml:"min_interval_ms"`
	InTuneIntervalMs int     `json:"in_tune_interval_ms" yaml:"in_tune_interval_ms"`
	CentsBucketSize  float64 `json:"cents_bucket_size" yaml:"cents_bucket_size"`
}

// DefaultConfig returns the standard tuner configuration: 4096-sample
// frames at 44.1 kHz with a 1024-sample hop (75% overlap, ~43 updates/s)
// over the 65-1100 Hz band.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 44100,
		FrameSize:  4096,
		HopSize:    1024,

		MinFreq:          65.0,
		MaxFreq:          1100.0,
		YinThreshold:     0.15,
		UseFFTDifference: true,

		ConfidenceFloor:     0.60,
		OverrideConfidence:  0.90,
		JumpThresholdCents:  250.0,
		PersistenceFrames:   2,
		OnsetBlankingFrames: 2, // ~46 ms at the default hop

		InTuneCents: 5.0,
		CloseCents:  30.0,

		MinIntervalMs:    2000,
		InTuneIntervalMs: 3000,
		CentsBucketSize:  5.0,
	}
}

// InstrumentOptimizedConfig returns a configuration with the frequency band
// narrowed for the given instrument. A narrower band shortens the lag scan
// and rejects neighboring-octave artifacts earlier.
func InstrumentOptimizedConfig(instrument Instrument) *Config {
	cfg := DefaultConfig()

	switch instrument {
	case InstrumentGuitar:
		cfg.MinFreq = 70.0 // below drop-D D2
		cfg.MaxFreq = 700.0

	case InstrumentBass:
		cfg.MinFreq = 65.0 // keeps low C on 6-string basses reachable via octave
		cfg.MaxFreq = 400.0
		cfg.FrameSize = 8192 // longer window for the low band
		cfg.HopSize = 2048

	case InstrumentUkulele:
		cfg.MinFreq = 250.0
		cfg.MaxFreq = 1100.0

	case InstrumentViolin:
		cfg.MinFreq = 190.0
		cfg.MaxFreq = 1100.0

	default:
		// Full band
	}

	return cfg
}

// Validate checks the configuration for internal consistency
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrameSize <= 0 || c.HopSize <= 0 || c.HopSize > c.FrameSize {
		return fmt.Errorf("invalid frame size %d / hop size %d", c.FrameSize, c.HopSize)
	}
	if c.MinFreq <= 0 || c.MaxFreq <= c.MinFreq {
		return fmt.Errorf("invalid frequency band [%.1f, %.1f]", c.MinFreq, c.MaxFreq)
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence floor must be in [0, 1], got %.3f", c.ConfidenceFloor)
	}
	if c.CentsBucketSize <= 0 {
		return fmt.Errorf("cents bucket size must be positive, got %.1f", c.CentsBucketSize)
	}
	if c.MinIntervalMs < 0 || c.InTuneIntervalMs < 0 {
		return fmt.Errorf("announcement intervals must be non-negative")
	}
	return nil
}
