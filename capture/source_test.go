package capture

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
)

func TestConvertPCM16(t *testing.T) {
	src := []int16{0, 16384, -16384, 32767, -32768}
	dst := make([]float64, len(src))
	ConvertPCM16(dst, src)

	want := []float64{0, 0.5, -0.5, 32767.0 / 32768.0, -1.0}
	for i := range want {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Errorf("sample %d: got %.6f, want %.6f", i, dst[i], want[i])
		}
	}
}

func TestSliceSourceReadsInOrder(t *testing.T) {
	src := NewSliceSource([]float64{1, 2, 3, 4, 5}, 44100)
	ctx := context.Background()

	buf := make([]float64, 3)
	n, err := src.ReadChunk(ctx, buf)
	if err != nil || n != 3 {
		t.Fatalf("first read: n=%d err=%v", n, err)
	}
	if buf[0] != 1 || buf[2] != 3 {
		t.Errorf("first chunk = %v", buf[:n])
	}

	n, err = src.ReadChunk(ctx, buf)
	if err != nil || n != 2 {
		t.Fatalf("second read: n=%d err=%v", n, err)
	}
	if buf[0] != 4 || buf[1] != 5 {
		t.Errorf("second chunk = %v", buf[:n])
	}

	if _, err = src.ReadChunk(ctx, buf); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted read err = %v, want io.EOF", err)
	}
}

func TestSliceSourceClosed(t *testing.T) {
	src := NewSliceSource([]float64{1, 2, 3}, 44100)
	if err := src.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := src.ReadChunk(context.Background(), make([]float64, 2)); !errors.Is(err, ErrSourceClosed) {
		t.Errorf("read after close err = %v, want ErrSourceClosed", err)
	}
}

func TestSliceSourceCancelledContext(t *testing.T) {
	src := NewSliceSource([]float64{1, 2, 3}, 44100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.ReadChunk(ctx, make([]float64, 2)); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled read err = %v, want context.Canceled", err)
	}
}

func TestSineSamples(t *testing.T) {
	samples := SineSamples(441.0, 0.5, 44100, 200) // period of exactly 100 samples

	if samples[0] != 0 {
		t.Errorf("first sample = %.6f, want 0", samples[0])
	}
	if math.Abs(samples[25]-0.5) > 1e-9 {
		t.Errorf("quarter period = %.6f, want 0.5", samples[25])
	}
	if math.Abs(samples[100]) > 1e-9 {
		t.Errorf("full period = %.6f, want 0", samples[100])
	}
}
