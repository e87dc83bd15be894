package pitch

import (
	"fmt"
	"math"
	"testing"
)

func sineFrame(freq float64, sampleRate, size int) []float64 {
	frame := make([]float64, size)
	step := 2.0 * math.Pi * freq / float64(sampleRate)
	for i := range frame {
		frame[i] = 0.5 * math.Sin(step*float64(i))
	}
	return frame
}

func TestEstimateSines(t *testing.T) {
	// Chromatic spread across the band, including the low E-string region
	// and notes near the upper edge.
	frequencies := []float64{
		65.41,   // C2
		82.41,   // E2
		110.00,  // A2
		146.83,  // D3
		196.00,  // G3
		246.94,  // B3
		329.63,  // E4
		440.00,  // A4
		587.33,  // D5
		659.25,  // E5
		880.00,  // A5
		1046.50, // C6
	}

	for _, useFFT := range []bool{true, false} {
		params := DefaultParams(44100)
		params.UseFFT = useFFT

		es, err := NewEstimator(params)
		if err != nil {
			t.Fatal(err)
		}

		for _, freq := range frequencies {
			t.Run(fmt.Sprintf("fft=%v/%.2fHz", useFFT, freq), func(t *testing.T) {
				est, err := es.Estimate(sineFrame(freq, params.SampleRate, params.FrameSize))
				if err != nil {
					t.Fatal(err)
				}
				if !est.Voiced() {
					t.Fatalf("no pitch detected for %.2f Hz sine", freq)
				}
				if math.Abs(est.Frequency-freq) > 1.0 {
					t.Errorf("frequency = %.3f, want %.2f +/- 1.0", est.Frequency, freq)
				}
				if est.Confidence <= 0.6 {
					t.Errorf("confidence = %.3f for a clean sine", est.Confidence)
				}
			})
		}
	}
}

func TestEstimateSilence(t *testing.T) {
	es, err := NewEstimator(DefaultParams(44100))
	if err != nil {
		t.Fatal(err)
	}

	est, err := es.Estimate(make([]float64, 4096))
	if err != nil {
		t.Fatal(err)
	}
	if est.Voiced() {
		t.Errorf("silence produced estimate %+v", est)
	}
	if est.Confidence != 0 {
		t.Errorf("silence confidence = %.3f, want 0", est.Confidence)
	}
}

func TestEstimateOutOfBand(t *testing.T) {
	es, err := NewEstimator(DefaultParams(44100))
	if err != nil {
		t.Fatal(err)
	}

	// 2 kHz is nearly an octave above the band ceiling.
	est, err := es.Estimate(sineFrame(2000.0, 44100, 4096))
	if err != nil {
		t.Fatal(err)
	}
	if est.Voiced() && est.Frequency > 1100.0*1.005 {
		t.Errorf("out-of-band frequency reported: %+v", est)
	}
}

func TestEstimateFrameSizeMismatch(t *testing.T) {
	es, err := NewEstimator(DefaultParams(44100))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := es.Estimate(make([]float64, 2048)); err == nil {
		t.Error("wrong frame size accepted")
	}
}

func TestDifferencePathsAgree(t *testing.T) {
	direct := DefaultParams(44100)
	direct.UseFFT = false
	accel := DefaultParams(44100)
	accel.UseFFT = true

	esDirect, err := NewEstimator(direct)
	if err != nil {
		t.Fatal(err)
	}
	esAccel, err := NewEstimator(accel)
	if err != nil {
		t.Fatal(err)
	}

	for _, freq := range []float64{82.41, 220.0, 659.25} {
		frame := sineFrame(freq, 44100, 4096)

		a, err := esDirect.Estimate(frame)
		if err != nil {
			t.Fatal(err)
		}
		b, err := esAccel.Estimate(frame)
		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(a.Frequency-b.Frequency) > 1e-3 {
			t.Errorf("%.2f Hz: direct %.6f vs fft %.6f", freq, a.Frequency, b.Frequency)
		}
		if math.Abs(a.Confidence-b.Confidence) > 1e-6 {
			t.Errorf("%.2f Hz: confidence %.8f vs %.8f", freq, a.Confidence, b.Confidence)
		}
	}
}

func TestNewEstimatorValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero sample rate", func(p *Params) { p.SampleRate = 0 }},
		{"zero frame size", func(p *Params) { p.FrameSize = 0 }},
		{"inverted band", func(p *Params) { p.MinFreq = 500; p.MaxFreq = 100 }},
		{"threshold too high", func(p *Params) { p.Threshold = 1.0 }},
		{"frame too short for band", func(p *Params) { p.FrameSize = 1024 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams(44100)
			tt.mutate(&params)
			if _, err := NewEstimator(params); err == nil {
				t.Error("invalid params accepted")
			}
		})
	}
}
