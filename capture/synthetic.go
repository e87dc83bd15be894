package capture

import (
	"context"
	"io"
	"math"
	"sync"
)

// SliceSource replays a fixed sample slice as a stream. It is the test and
// offline-analysis workhorse: deterministic, ctx-aware, and it counts Close
// calls so shutdown contracts can be asserted.
type SliceSource struct {
	samples    []float64
	sampleRate int

	mu         sync.Mutex
	pos        int
	closed     bool
	closeCalls int
}

// NewSliceSource creates a source that replays samples at the given rate
func NewSliceSource(samples []float64, sampleRate int) *SliceSource {
	return &SliceSource{
		samples:    samples,
		sampleRate: sampleRate,
	}
}

// ReadChunk copies the next run of samples into buf. Returns io.EOF once
// the slice is exhausted.
func (s *SliceSource) ReadChunk(ctx context.Context, buf []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSourceClosed
	}
	if s.pos >= len(s.samples) {
		return 0, io.EOF
	}

	n := copy(buf, s.samples[s.pos:])
	s.pos += n
	return n, nil
}

// SampleRate returns the stream sample rate
func (s *SliceSource) SampleRate() int {
	return s.sampleRate
}

// Close marks the source closed. Safe to call repeatedly.
func (s *SliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.closeCalls++
	return nil
}

// CloseCalls returns how many times Close has been invoked
func (s *SliceSource) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

// SineSamples generates amplitude-scaled sine samples, handy for feeding a
// SliceSource in tests and demos.
func SineSamples(freq float64, amplitude float64, sampleRate, count int) []float64 {
	samples := make([]float64, count)
	step := 2.0 * math.Pi * freq / float64(sampleRate)
	for i := range samples {
		samples[i] = amplitude * math.Sin(step*float64(i))
	}
	return samples
}
