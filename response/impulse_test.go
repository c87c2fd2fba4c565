package response

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/internal/testutil"
)

func TestImpulseEstimateFlatSpectrum(t *testing.T) {
	// A flat spectrum is a delta at t = 0.
	h := make([]complex128, 65)
	for i := range h {
		h[i] = 1
	}

	ir, err := ImpulseEstimate(h)
	if err != nil {
		t.Fatal(err)
	}

	if len(ir) != 128 {
		t.Fatalf("len = %d, want 128", len(ir))
	}

	testutil.RequireFinite(t, ir)

	peak := math.Abs(ir[0])
	for i := 1; i < len(ir); i++ {
		if math.Abs(ir[i]) > peak*1e-9 {
			t.Fatalf("ir[%d] = %g, want ~0 relative to peak %g", i, ir[i], peak)
		}
	}

	if peak == 0 {
		t.Fatal("zero impulse from flat spectrum")
	}
}

func TestImpulseEstimateDelayedSpectrum(t *testing.T) {
	// exp(-j2πkd/N) over bins corresponds to a delta delayed by d samples.
	const (
		bins  = 65
		size  = 2 * (bins - 1)
		delay = 7
	)

	h := make([]complex128, bins)
	for k := range h {
		phi := -2 * math.Pi * float64(k) * delay / size
		h[k] = complex(math.Cos(phi), math.Sin(phi))
	}

	ir, err := ImpulseEstimate(h)
	if err != nil {
		t.Fatal(err)
	}

	maxIdx := 0
	maxVal := 0.0

	for i, v := range ir {
		if math.Abs(v) > maxVal {
			maxVal = math.Abs(v)
			maxIdx = i
		}
	}

	if maxIdx != delay {
		t.Errorf("impulse peak at %d, want %d", maxIdx, delay)
	}
}

func TestImpulseEstimateShortSpectrum(t *testing.T) {
	if _, err := ImpulseEstimate([]complex128{1}); err != ErrShortSpectrum {
		t.Errorf("error = %v, want ErrShortSpectrum", err)
	}
}
