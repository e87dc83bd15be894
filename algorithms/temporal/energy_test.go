package temporal

import (
	"math"
	"testing"
)

func TestComputeShortTimeEnergy(t *testing.T) {
	e := NewEnergy(1024, 256)

	signal := make([]float64, 4096)
	for i := range signal {
		signal[i] = 0.5
	}

	energies := e.ComputeShortTimeEnergy(signal)
	wantFrames := (4096-1024)/256 + 1
	if len(energies) != wantFrames {
		t.Fatalf("got %d frames, want %d", len(energies), wantFrames)
	}
	for i, rms := range energies {
		if math.Abs(rms-0.5) > 1e-12 {
			t.Fatalf("frame %d RMS = %.6f, want 0.5", i, rms)
		}
	}
}

func TestComputeShortTimeEnergyShortSignal(t *testing.T) {
	e := NewEnergy(1024, 256)

	if got := e.ComputeShortTimeEnergy(make([]float64, 512)); len(got) != 0 {
		t.Errorf("short signal produced %d frames", len(got))
	}
}

func TestComputeLogEnergy(t *testing.T) {
	e := NewEnergy(512, 512)

	signal := make([]float64, 1024)
	for i := range signal {
		signal[i] = 0.1
	}

	logs := e.ComputeLogEnergy(signal, 1e-10)
	if len(logs) != 2 {
		t.Fatalf("got %d frames, want 2", len(logs))
	}
	for _, db := range logs {
		if math.Abs(db-(-20.0)) > 1e-9 {
			t.Errorf("log energy = %.4f dB, want -20", db)
		}
	}
}

func TestComputeLogEnergyFloor(t *testing.T) {
	e := NewEnergy(512, 512)

	logs := e.ComputeLogEnergy(make([]float64, 512), 1e-5)
	if len(logs) != 1 {
		t.Fatalf("got %d frames, want 1", len(logs))
	}
	if math.Abs(logs[0]-(-100.0)) > 1e-9 {
		t.Errorf("silent frame = %.4f dB, want floor at -100", logs[0])
	}
}
