package tuner

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-tuner/algorithms/pitch"
	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ReadingHandler receives every classified frame (~43 Hz at the default
// geometry), for driving a visual meter.
type ReadingHandler func(Reading)

// AnnounceHandler receives only readings the announcer decided to surface,
// for spoken or accessibility feedback.
type AnnounceHandler func(note string, status TuningStatus, cents float64)

// A read that fails this many times in a row is no longer transient; the
// capture loop gives up silently.
const maxConsecutiveReadErrors = 5

// Session owns the capture -> window -> estimate -> filter -> classify
// chain in a single background worker. The worker is the only goroutine
// touching pipeline state; announcer calls are therefore serialized by
// construction.
//
// The capture device is exclusive to one active session: calling Start
// while active is a no-op, not an error. Stopping is two-phase: cancel,
// await loop exit, then release the source exactly once.
type Session struct {
	cfg    *Config
	source capture.Source
	logger logging.Logger

	onReading  ReadingHandler
	onAnnounce AnnounceHandler

	mu          sync.Mutex
	active      bool
	cancel      context.CancelFunc
	group       *errgroup.Group
	releaseOnce *sync.Once

	targetMu sync.RWMutex
	targetFn func(frequency float64) TuningTarget

	justTuned atomic.Bool

	windower   *Windower
	estimator  *pitch.Estimator
	filter     *ContinuityFilter
	classifier *Classifier
	announcer  *Announcer
}

// NewSession creates a tuning session over an already-opened source.
// The configuration is validated up front so a bad config can never leave
// a partial session running.
func NewSession(cfg *Config, source capture.Source) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Session{
		cfg:    cfg,
		source: source,
		logger: logging.WithFields(logging.Fields{
			"component":   "tuner_session",
			"frame_size":  cfg.FrameSize,
			"hop_size":    cfg.HopSize,
			"sample_rate": cfg.SampleRate,
		}),
		releaseOnce: &sync.Once{},
	}, nil
}

// SetReadingHandler sets the per-frame callback. Must be called before Start.
func (s *Session) SetReadingHandler(h ReadingHandler) {
	s.onReading = h
}

// SetAnnounceHandler sets the announcement callback. Must be called before Start.
func (s *Session) SetAnnounceHandler(h AnnounceHandler) {
	s.onAnnounce = h
}

// SetTarget selects a fixed tuning target for subsequent readings
func (s *Session) SetTarget(target TuningTarget) {
	s.targetMu.Lock()
	s.targetFn = func(float64) TuningTarget { return target }
	s.targetMu.Unlock()
}

// SetTargetFunc installs a target resolver invoked per accepted frequency.
// Use this for chromatic (nearest-note) mode; see NearestNote.
func (s *Session) SetTargetFunc(fn func(frequency float64) TuningTarget) {
	s.targetMu.Lock()
	s.targetFn = fn
	s.targetMu.Unlock()
}

func (s *Session) resolveTarget(frequency float64) TuningTarget {
	s.targetMu.RLock()
	fn := s.targetFn
	s.targetMu.RUnlock()
	if fn == nil {
		return TuningTarget{}
	}
	return fn(frequency)
}

// JustTuned raises the just-tuned signal: the next classified reading is
// announced unconditionally, confirming a deliberate tuning action.
func (s *Session) JustTuned() {
	s.justTuned.Store(true)
}

// Active reports whether the capture worker is running
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start spins up the capture worker with fresh pipeline state. Starting an
// active session is a no-op. A configuration the estimator rejects fails
// here, before any capture happens.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.logger.Debug("start ignored: session already active")
		return nil
	}

	estimator, err := pitch.NewEstimator(pitch.Params{
		SampleRate: s.cfg.SampleRate,
		FrameSize:  s.cfg.FrameSize,
		MinFreq:    s.cfg.MinFreq,
		MaxFreq:    s.cfg.MaxFreq,
		Threshold:  s.cfg.YinThreshold,
		UseFFT:     s.cfg.UseFFTDifference,
	})
	if err != nil {
		return err
	}

	// Restart gets fresh windower, filter, and announcer state
	s.estimator = estimator
	s.windower = NewWindower(s.cfg.FrameSize, s.cfg.HopSize, s.cfg.SampleRate)
	s.filter = NewContinuityFilter(s.cfg)
	s.classifier = NewClassifier(s.cfg)
	s.announcer = NewAnnouncer(s.cfg, nil)
	s.releaseOnce = &sync.Once{}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	s.cancel = cancel
	s.group = group
	s.active = true

	group.Go(func() error {
		s.run(ctx)
		return nil
	})

	s.logger.Debug("session started")
	return nil
}

// Stop signals the worker, waits for the loop to fully exit, then releases
// the capture source exactly once. Idempotent and safe to invoke repeatedly.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	cancel := s.cancel
	group := s.group
	releaseOnce := s.releaseOnce
	s.mu.Unlock()

	// Two-phase shutdown: unblock any pending read, await loop exit, and
	// only then release the device. Releasing concurrently with an
	// in-flight read is the race this ordering exists to prevent.
	cancel()
	group.Wait()
	releaseOnce.Do(func() {
		if err := s.source.Close(); err != nil {
			s.logger.Warn("source close failed", logging.Fields{"error": err.Error()})
		}
	})

	s.logger.Debug("session stopped")
}

// run is the capture worker: the windower's wait for the next chunk is the
// only suspension point, and frames are processed strictly in capture order.
func (s *Session) run(ctx context.Context) {
	chunk := make([]float64, s.cfg.HopSize)
	readErrors := 0

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := s.source.ReadChunk(ctx, chunk)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
				return
			case errors.Is(err, capture.ErrSourceClosed),
				errors.Is(err, capture.ErrDeviceUnavailable):
				// Device revoked or disconnected mid-session: terminate
				// silently, per the capture contract.
				s.logger.Warn("capture ended", logging.Fields{"error": err.Error()})
				return
			default:
				readErrors++
				if readErrors >= maxConsecutiveReadErrors {
					s.logger.Warn("giving up after repeated read errors", logging.Fields{"error": err.Error()})
					return
				}
				s.logger.Debug("transient read error, frame dropped", logging.Fields{"error": err.Error()})
				continue
			}
		}
		readErrors = 0

		if n == 0 {
			continue
		}
		s.windower.Push(chunk[:n], s.processFrame)
	}
}

// processFrame runs one analysis frame through the rest of the chain
func (s *Session) processFrame(frame AudioFrame) {
	est, err := s.estimator.Estimate(frame.Samples)
	if err != nil {
		// Malformed frame: drop it and keep the loop alive
		s.logger.Debug("frame dropped", logging.Fields{"error": err.Error()})
		return
	}

	filtered := s.filter.Filter(frame.Samples, est)
	target := s.resolveTarget(filtered.Frequency)
	status, cents := s.classifier.Classify(filtered.Frequency, target)

	if s.onReading != nil {
		s.onReading(Reading{
			FrameIndex: frame.Index,
			Estimate:   filtered,
			Target:     target,
			Status:     status,
			Cents:      cents,
		})
	}

	if s.onAnnounce != nil {
		justTuned := s.justTuned.Swap(false)
		if s.announcer.ShouldAnnounce(target.Note, status, cents, justTuned) {
			s.onAnnounce(target.Note, status, cents)
		}
	}
}
