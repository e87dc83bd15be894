package tuner

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// Windower converts a stream of raw capture chunks into fixed-size
// overlapping analysis frames at a fixed hop. It never emits a short or
// malformed frame: partial chunks accumulate until a full frame plus hop
// boundary is reached.
//
// The emitted frame's sample buffer is owned by the Windower and reused;
// consumers must copy if they hold on to it.
type Windower struct {
	buffer     *common.CircularBuffer
	frame      AudioFrame
	frameSize  int
	hopSize    int
	sampleRate int

	sinceEmit  int  // samples accumulated since the last emission
	emittedAny bool // whether the first full frame has been emitted
}

// NewWindower creates a windower for the given geometry
func NewWindower(frameSize, hopSize, sampleRate int) *Windower {
	return &Windower{
		buffer: common.NewCircularBuffer(frameSize),
		frame: AudioFrame{
			Samples:    make([]float64, frameSize),
			SampleRate: sampleRate,
		},
		frameSize:  frameSize,
		hopSize:    hopSize,
		sampleRate: sampleRate,
	}
}

// Push consumes a capture chunk and invokes emit once per completed hop,
// in chronological order. Each emission carries the most recent frameSize
// samples, linearized from the internal circular buffer.
func (w *Windower) Push(chunk []float64, emit func(AudioFrame)) {
	remaining := chunk
	for len(remaining) > 0 {
		// Consume only up to the next emission boundary so emissions and
		// their sample positions stay exact even for oversized chunks.
		need := w.nextBoundary() - w.accumulated()
		take := len(remaining)
		if take > need {
			take = need
		}

		w.buffer.Write(remaining[:take])
		w.sinceEmit += take
		remaining = remaining[take:]

		if w.accumulated() >= w.nextBoundary() {
			w.emitFrame(emit)
		}
	}
}

// accumulated returns the samples consumed toward the next emission
func (w *Windower) accumulated() int {
	if !w.emittedAny {
		return w.buffer.Filled()
	}
	return w.sinceEmit
}

// nextBoundary returns how many samples must accumulate before the next
// emission: a full frame initially, one hop thereafter.
func (w *Windower) nextBoundary() int {
	if !w.emittedAny {
		return w.frameSize
	}
	return w.hopSize
}

func (w *Windower) emitFrame(emit func(AudioFrame)) {
	// CopyLatest cannot fail here: the buffer holds at least frameSize
	// samples once the first boundary is reached.
	if err := w.buffer.CopyLatest(w.frame.Samples); err != nil {
		return
	}

	emit(w.frame)

	w.frame.Index++
	w.emittedAny = true
	w.sinceEmit = 0
}

// FrameCount returns how many frames have been emitted so far
func (w *Windower) FrameCount() int {
	return w.frame.Index
}

// Reset clears all buffered samples and counters for a fresh session
func (w *Windower) Reset() {
	w.buffer.Reset()
	w.frame.Index = 0
	w.sinceEmit = 0
	w.emittedAny = false
}
