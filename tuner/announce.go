package tuner

import (
	"math"
	"time"
)

// Announcer decides whether a classified reading should be surfaced to the
// feedback layer now, balancing responsiveness against announcement
// fatigue. It deduplicates on a (note, status, cents bucket) triple and
// rate-limits everything else.
//
// Not safe for concurrent use: feedback delivery must serialize calls onto
// one goroutine or synchronize externally.
type Announcer struct {
	minInterval     time.Duration
	inTuneInterval  time.Duration
	centsBucketSize float64
	now             func() time.Time

	hasState   bool
	lastNote   string
	lastStatus TuningStatus
	lastBucket int
	lastAt     time.Time
}

// NewAnnouncer builds an announcer from pipeline configuration. The clock
// is injectable; pass nil for time.Now.
func NewAnnouncer(cfg *Config, clock func() time.Time) *Announcer {
	if clock == nil {
		clock = time.Now
	}
	return &Announcer{
		minInterval:     time.Duration(cfg.MinIntervalMs) * time.Millisecond,
		inTuneInterval:  time.Duration(cfg.InTuneIntervalMs) * time.Millisecond,
		centsBucketSize: cfg.CentsBucketSize,
		now:             clock,
	}
}

// ShouldAnnounce decides whether this reading should be surfaced, and
// records it as the last surfaced reading when it is. Rejected readings
// never touch the recorded state.
//
// justTuned bypasses every throttling rule: a deliberate tuning action gets
// immediate confirmation regardless of dedup or interval state.
func (a *Announcer) ShouldAnnounce(note string, status TuningStatus, cents float64, justTuned bool) bool {
	if justTuned {
		a.record(note, status, a.bucket(cents))
		return true
	}

	if status == StatusSilent {
		return false
	}

	bucket := a.bucket(cents)

	if !a.hasState {
		a.record(note, status, bucket)
		return true
	}

	// Exact duplicate of the last surfaced triple: suppressed permanently,
	// regardless of elapsed time, until something perceptible changes.
	if note == a.lastNote && status == a.lastStatus && bucket == a.lastBucket {
		return false
	}

	required := a.minInterval
	if status == StatusInTune {
		required = a.inTuneInterval
	}

	if a.now().Sub(a.lastAt) < required {
		return false
	}

	a.record(note, status, bucket)
	return true
}

// bucket quantizes cents so imperceptible fluctuations do not retrigger.
// Truncation toward zero, not floor: floor silently diverges for negative
// cents and the dedup logic depends on the symmetric behavior.
func (a *Announcer) bucket(cents float64) int {
	return int(math.Trunc(cents / a.centsBucketSize))
}

func (a *Announcer) record(note string, status TuningStatus, bucket int) {
	a.hasState = true
	a.lastNote = note
	a.lastStatus = status
	a.lastBucket = bucket
	a.lastAt = a.now()
}

// Reset unconditionally clears recorded state; the next call behaves as a
// first-ever call.
func (a *Announcer) Reset() {
	a.hasState = false
	a.lastNote = ""
	a.lastStatus = StatusSilent
	a.lastBucket = 0
	a.lastAt = time.Time{}
}
