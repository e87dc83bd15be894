package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/RyanBlaney/sonido-tuner/logging"
)

// PortAudioSource adapts a blocking PortAudio input stream to the Source
// pull interface. The stream is opened in 16-bit mono and converted to
// normalized float64 on read.
type PortAudioSource struct {
	stream     *portaudio.Stream
	pcmBuf     []int16
	sampleRate int
	logger     logging.Logger

	closeOnce sync.Once
	closeErr  error
}

// OpenPortAudioSource initializes PortAudio and opens the default input
// device at the given rate. chunkSize is the number of samples delivered
// per read; it should be at most the pipeline hop size.
func OpenPortAudioSource(sampleRate, chunkSize int) (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	pcmBuf := make([]int16, chunkSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), chunkSize, pcmBuf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	logger := logging.WithFields(logging.Fields{
		"component":   "portaudio_source",
		"sample_rate": sampleRate,
		"chunk_size":  chunkSize,
	})
	logger.Debug("input stream opened")

	return &PortAudioSource{
		stream:     stream,
		pcmBuf:     pcmBuf,
		sampleRate: sampleRate,
		logger:     logger,
	}, nil
}

// ReadChunk blocks for the next capture buffer and converts it into buf.
// The context is polled between device reads; cancellation is observed at
// chunk granularity.
func (p *PortAudioSource) ReadChunk(ctx context.Context, buf []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := p.stream.Read(); err != nil {
		// Device gone or stream stopped underneath us
		return 0, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	n := len(p.pcmBuf)
	if n > len(buf) {
		n = len(buf)
	}
	ConvertPCM16(buf[:n], p.pcmBuf[:n])
	return n, nil
}

// SampleRate returns the configured capture rate
func (p *PortAudioSource) SampleRate() int {
	return p.sampleRate
}

// Close stops and releases the stream and tears down PortAudio. Idempotent.
func (p *PortAudioSource) Close() error {
	p.closeOnce.Do(func() {
		if err := p.stream.Stop(); err != nil {
			p.logger.Warn("stream stop failed", logging.Fields{"error": err.Error()})
		}
		p.closeErr = p.stream.Close()
		portaudio.Terminate()
		p.logger.Debug("input stream closed")
	})
	return p.closeErr
}
