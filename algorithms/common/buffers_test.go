package common

import (
	"math"
	"testing"
)

func TestCircularBufferOverwriteOldest(t *testing.T) {
	cb := NewCircularBuffer(4)

	cb.Write([]float64{1, 2, 3})
	cb.Write([]float64{4, 5})

	got := make([]float64, 4)
	if err := cb.CopyLatest(got); err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCircularBufferOversizedWrite(t *testing.T) {
	cb := NewCircularBuffer(4)

	// Only the tail of an oversized write survives.
	cb.Write([]float64{1, 2, 3, 4, 5, 6, 7})

	got := make([]float64, 4)
	if err := cb.CopyLatest(got); err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCircularBufferUnderfilled(t *testing.T) {
	cb := NewCircularBuffer(8)
	cb.Write([]float64{1, 2, 3})

	if err := cb.CopyLatest(make([]float64, 4)); err == nil {
		t.Error("CopyLatest succeeded with too few samples buffered")
	}

	got := make([]float64, 3)
	if err := cb.CopyLatest(got); err != nil {
		t.Fatal(err)
	}
	if got[0] != 1 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestCircularBufferPartialLatest(t *testing.T) {
	cb := NewCircularBuffer(6)
	cb.Write([]float64{1, 2, 3, 4, 5, 6})
	cb.Write([]float64{7, 8})

	// Requesting fewer samples than the capacity returns the newest run.
	got := make([]float64, 3)
	if err := cb.CopyLatest(got); err != nil {
		t.Fatal(err)
	}
	want := []float64{6, 7, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCircularBufferReset(t *testing.T) {
	cb := NewCircularBuffer(4)
	cb.Write([]float64{1, 2, 3, 4})
	cb.Reset()

	if cb.Filled() != 0 {
		t.Errorf("Filled() = %d after Reset", cb.Filled())
	}
	if err := cb.CopyLatest(make([]float64, 1)); err == nil {
		t.Error("CopyLatest succeeded on a reset buffer")
	}
}

func TestParabolicInterpolation(t *testing.T) {
	// Samples of (x - 5.3)^2: the vertex sits between indices 5 and 6.
	data := make([]float64, 10)
	for i := range data {
		d := float64(i) - 5.3
		data[i] = d * d
	}

	got := ParabolicInterpolation(data, 5)
	if math.Abs(got-5.3) > 1e-9 {
		t.Errorf("vertex = %.6f, want 5.3", got)
	}
}

func TestParabolicInterpolationEdges(t *testing.T) {
	data := []float64{3, 1, 2, 4}

	if got := ParabolicInterpolation(data, 0); got != 0 {
		t.Errorf("left edge = %.3f, want 0", got)
	}
	if got := ParabolicInterpolation(data, 3); got != 3 {
		t.Errorf("right edge = %.3f, want 3", got)
	}

	flat := []float64{2, 2, 2, 2}
	if got := ParabolicInterpolation(flat, 1); got != 1 {
		t.Errorf("flat data vertex = %.3f, want 1", got)
	}
}

func TestCentsBetween(t *testing.T) {
	if got := CentsBetween(880, 440); math.Abs(got-1200) > 1e-9 {
		t.Errorf("octave = %.4f cents, want 1200", got)
	}
	if got := CentsBetween(440, 880); math.Abs(got+1200) > 1e-9 {
		t.Errorf("octave down = %.4f cents, want -1200", got)
	}
	if got := CentsBetween(0, 440); got != 0 {
		t.Errorf("zero frequency = %.4f, want 0", got)
	}
}
