package temporal

import (
	"math"
	"testing"
)

func sineAt(freq, amplitude float64, sampleRate, size int) []float64 {
	frame := make([]float64, size)
	step := 2.0 * math.Pi * freq / float64(sampleRate)
	for i := range frame {
		frame[i] = amplitude * math.Sin(step*float64(i))
	}
	return frame
}

func TestEnergyOnsetDetectsAttack(t *testing.T) {
	od := NewOnsetDetector()

	// Quiet history, then a pluck.
	for i := 0; i < 4; i++ {
		if od.Observe(make([]float64, 1024)) {
			t.Fatalf("quiet frame %d flagged as onset", i)
		}
	}
	if !od.Observe(sineAt(196.0, 0.5, 44100, 1024)) {
		t.Error("attack after quiet history not detected")
	}
}

func TestEnergyOnsetIgnoresSustain(t *testing.T) {
	od := NewOnsetDetector()

	for i := 0; i < 4; i++ {
		od.Observe(make([]float64, 1024))
	}
	od.Observe(sineAt(196.0, 0.5, 44100, 1024))

	// Sustained playing at the same level must not retrigger.
	for i := 0; i < 6; i++ {
		if od.Observe(sineAt(196.0, 0.5, 44100, 1024)) {
			t.Errorf("sustained frame %d flagged as onset", i)
		}
	}
}

func TestEnergyOnsetBelowMinLevel(t *testing.T) {
	od := NewOnsetDetector()

	for i := 0; i < 4; i++ {
		od.Observe(make([]float64, 1024))
	}
	// A rise that stays under the noise floor is not an attack.
	if od.Observe(sineAt(196.0, 0.005, 44100, 1024)) {
		t.Error("sub-floor frame flagged as onset")
	}
}

func TestSpectralFluxOnset(t *testing.T) {
	od := NewOnsetDetectorWithMethod(OnsetSpectralFlux)

	// First frame only primes the previous spectrum.
	if od.Observe(make([]float64, 1024)) {
		t.Error("priming frame flagged as onset")
	}
	if od.Observe(make([]float64, 1024)) {
		t.Error("silent frame flagged as onset")
	}

	// New spectral content appearing is the onset.
	if !od.Observe(sineAt(440.0, 0.5, 44100, 1024)) {
		t.Error("appearing tone not detected")
	}

	// The same tone sustained produces no positive flux.
	if od.Observe(sineAt(440.0, 0.5, 44100, 1024)) {
		t.Error("sustained tone flagged as onset")
	}
}

func TestOnsetReset(t *testing.T) {
	od := NewOnsetDetector()

	for i := 0; i < 4; i++ {
		od.Observe(make([]float64, 1024))
	}
	od.Reset()

	// With no history, the first frame after reset can never be an onset.
	if od.Observe(sineAt(196.0, 0.5, 44100, 1024)) {
		t.Error("first frame after reset flagged as onset")
	}
}
