// Package tuner implements the real-time instrument tuner pipeline:
// capture chunks are windowed into overlapping analysis frames, each frame
// runs through fundamental frequency estimation and artifact filtering, the
// accepted frequency is classified against a target, and a throttling layer
// decides when a reading deserves to be announced.
package tuner

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/pitch"
)

// TuningStatus classifies one accepted reading against its target
type TuningStatus int

const (
	StatusSilent TuningStatus = iota
	StatusFlat
	StatusSharp
	StatusClose
	StatusInTune
)

func (s TuningStatus) String() string {
	switch s {
	case StatusSilent:
		return "SILENT"
	case StatusFlat:
		return "FLAT"
	case StatusSharp:
		return "SHARP"
	case StatusClose:
		return "CLOSE"
	case StatusInTune:
		return "IN_TUNE"
	default:
		return "UNKNOWN"
	}
}

// AudioFrame is one fixed-size analysis window of normalized samples.
// The sample buffer is reused between emissions; consumers must not retain
// it past the callback that delivers it.
type AudioFrame struct {
	Samples    []float64
	SampleRate int
	Index      int
}

// TuningTarget is the expected frequency for the currently selected
// string or note. Immutable for the duration of a reading.
type TuningTarget struct {
	Note      string  `json:"note"`
	Frequency float64 `json:"frequency"`
}

// Reading is the per-frame pipeline output driving a visual meter:
// frequency-or-silence with its confidence, plus the classified status and
// cents deviation against the active target.
type Reading struct {
	FrameIndex int            `json:"frame_index"`
	Estimate   pitch.Estimate `json:"estimate"`
	Target     TuningTarget   `json:"target"`
	Status     TuningStatus   `json:"status"`
	Cents      float64        `json:"cents"`
}
