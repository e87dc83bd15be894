// Package capture abstracts platform audio input behind a pull interface so
// the analysis pipeline stays platform-agnostic. Concrete push or blocking
// capture APIs are adapted underneath Source.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrDeviceUnavailable is returned when the capture device cannot be
	// opened or disappears mid-session.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrSourceClosed is returned by reads on a closed source.
	ErrSourceClosed = errors.New("capture source closed")
)

// Source delivers mono normalized PCM chunks at a fixed sample rate.
//
// ReadChunk blocks until samples are available, the context is cancelled,
// or the stream ends. It fills buf with up to len(buf) samples in [-1, 1]
// and returns the count; a short read is normal and must be buffered by the
// caller, never treated as a frame. io.EOF signals a clean end of stream.
//
// Close releases the underlying device. Implementations must make Close
// idempotent and must tolerate Close racing only with an already-unblocked
// read; callers are expected to cancel and drain before closing.
type Source interface {
	ReadChunk(ctx context.Context, buf []float64) (int, error)
	SampleRate() int
	Close() error
}

// ConvertPCM16 converts signed 16-bit PCM samples to normalized float64
// samples in [-1, 1]. dst and src must be the same length.
func ConvertPCM16(dst []float64, src []int16) {
	for i, s := range src {
		dst[i] = float64(s) / 32768.0
	}
}
