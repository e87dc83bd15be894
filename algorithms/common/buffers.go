package common

import (
	"fmt"
)

// CircularBuffer implements a fixed-size circular sample buffer for
// streaming audio processing. Writes overwrite the oldest samples once the
// buffer is full; CopyLatest linearizes (un-rotates) the contents so
// downstream analysis always sees strictly time-ordered samples.
type CircularBuffer struct {
	buffer   []float64
	size     int
	writePos int
	filled   int
}

// NewCircularBuffer creates a new circular buffer
func NewCircularBuffer(size int) *CircularBuffer {
	return &CircularBuffer{
		buffer: make([]float64, size),
		size:   size,
	}
}

// Write appends samples, overwriting the oldest data when full
func (cb *CircularBuffer) Write(data []float64) {
	n := len(data)

	// Only the last size samples can survive anyway
	if n >= cb.size {
		copy(cb.buffer, data[n-cb.size:])
		cb.writePos = 0
		cb.filled = cb.size
		return
	}

	tail := cb.size - cb.writePos
	if n <= tail {
		copy(cb.buffer[cb.writePos:], data)
	} else {
		copy(cb.buffer[cb.writePos:], data[:tail])
		copy(cb.buffer, data[tail:])
	}

	cb.writePos = (cb.writePos + n) % cb.size
	cb.filled += n
	if cb.filled > cb.size {
		cb.filled = cb.size
	}
}

// CopyLatest copies the most recent len(dst) samples into dst in
// chronological order. Fails if the buffer has not yet accumulated that
// many samples.
func (cb *CircularBuffer) CopyLatest(dst []float64) error {
	n := len(dst)
	if n > cb.filled {
		return fmt.Errorf("requested %d samples but only %d buffered", n, cb.filled)
	}
	if n > cb.size {
		return fmt.Errorf("requested %d samples from a buffer of size %d", n, cb.size)
	}

	// writePos is one past the newest sample
	start := cb.writePos - n
	if start >= 0 {
		copy(dst, cb.buffer[start:cb.writePos])
		return nil
	}

	start += cb.size
	head := cb.size - start
	copy(dst[:head], cb.buffer[start:])
	copy(dst[head:], cb.buffer[:cb.writePos])
	return nil
}

// Filled returns the number of valid samples currently buffered
func (cb *CircularBuffer) Filled() int {
	return cb.filled
}

// Size returns the buffer capacity
func (cb *CircularBuffer) Size() int {
	return cb.size
}

// Reset empties the buffer
func (cb *CircularBuffer) Reset() {
	cb.writePos = 0
	cb.filled = 0
	for i := range cb.buffer {
		cb.buffer[i] = 0.0
	}
}
