package optimize

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
)

func testDriver(t *testing.T) *driver.Parameters {
	t.Helper()

	p, err := driver.New(driver.Spec{
		Mmd:  3.7817e-3,
		Cms:  9.5768e-4,
		Rms:  0.73861,
		Re:   2.6,
		Le:   0.35e-3,
		BL:   2.8613,
		Sd:   0.0086,
		Xmax: 3.0e-3,
	}, acoustic.Air())
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func TestNewSpaceValidation(t *testing.T) {
	if _, err := NewSpace(); err != ErrEmptySpace {
		t.Errorf("empty space error = %v, want ErrEmptySpace", err)
	}

	_, err := NewSpace(ParameterRange{Name: "x", Min: 2, Max: 2})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("degenerate range error = %v, want ErrInvalidRange", err)
	}

	_, err = NewSpace(ParameterRange{Name: "x", Min: 3, Max: 1})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidRange", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s, err := NewSpace(
		ParameterRange{Name: "Vb", Min: 0.002, Max: 0.030, Unit: "m³"},
		ParameterRange{Name: "Fb", Min: 16.5, Max: 33, Unit: "Hz"},
	)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))

	for range 100 {
		x := s.Random(rng)

		u, err := s.Encode(x)
		if err != nil {
			t.Fatal(err)
		}

		for _, v := range u {
			if v < 0 || v > 1 {
				t.Fatalf("encoded component %g outside unit interval", v)
			}
		}

		back, err := s.Decode(u)
		if err != nil {
			t.Fatal(err)
		}

		for i := range x {
			if math.Abs(back[i]-x[i]) > 1e-12*math.Abs(x[i]) {
				t.Fatalf("round trip: %g -> %g", x[i], back[i])
			}
		}
	}

	if _, err := s.Encode([]float64{1}); err != ErrDimension {
		t.Errorf("short vector error = %v, want ErrDimension", err)
	}
}

func TestClampAndContains(t *testing.T) {
	s, err := NewSpace(ParameterRange{Name: "x", Min: -1, Max: 1})
	if err != nil {
		t.Fatal(err)
	}

	x := []float64{3}
	s.Clamp(x)

	if x[0] != 1 {
		t.Errorf("Clamp(3) = %g, want 1", x[0])
	}

	if !s.Contains([]float64{0.5}) {
		t.Error("Contains(0.5) = false inside range")
	}

	if s.Contains([]float64{1.5}) || s.Contains([]float64{math.NaN()}) {
		t.Error("Contains accepted out-of-range vector")
	}
}

func TestSubrange(t *testing.T) {
	s, err := NewSpace(ParameterRange{Name: "Vb", Min: 0.002, Max: 0.030, Unit: "m³"})
	if err != nil {
		t.Fatal(err)
	}

	narrow, err := s.Subrange("Vb", 0.008, 0.012)
	if err != nil {
		t.Fatal(err)
	}

	r := narrow.Ranges()[0]
	if r.Min != 0.008 || r.Max != 0.012 {
		t.Errorf("Subrange = [%g, %g], want [0.008, 0.012]", r.Min, r.Max)
	}

	if r.Unit != "m³" {
		t.Errorf("Subrange dropped unit: %q", r.Unit)
	}

	if _, err := s.Subrange("Vb", 0.001, 0.012); !errors.Is(err, ErrOutsideParent) {
		t.Errorf("oversized subrange error = %v, want ErrOutsideParent", err)
	}

	if _, err := s.Subrange("Fb", 20, 30); !errors.Is(err, ErrUnknownName) {
		t.Errorf("unknown name error = %v, want ErrUnknownName", err)
	}
}

func TestEnclosureSpaces(t *testing.T) {
	drv := testDriver(t)

	sealed := SealedSpace(drv)
	if sealed.Dim() != 1 {
		t.Fatalf("sealed dim = %d, want 1", sealed.Dim())
	}

	r := sealed.Ranges()[0]
	if math.Abs(r.Min-0.2*drv.Vas()) > 1e-15 || math.Abs(r.Max-3*drv.Vas()) > 1e-15 {
		t.Errorf("sealed Vb range = [%g, %g]", r.Min, r.Max)
	}

	ported := PortedSpace(drv)
	if ported.Dim() != 2 {
		t.Fatalf("ported dim = %d, want 2", ported.Dim())
	}

	fb := ported.Ranges()[1]
	if fb.Min != 0.5*drv.Fs() || fb.Max != drv.Fs() {
		t.Errorf("ported Fb range = [%g, %g]", fb.Min, fb.Max)
	}

	horn := HornSpace(drv)
	if horn.Dim() != 6 {
		t.Fatalf("horn dim = %d, want 6", horn.Dim())
	}

	rng := rand.New(rand.NewSource(3))
	for range 20 {
		if x := horn.Random(rng); !horn.Contains(x) {
			t.Fatalf("Random produced out-of-space vector %v", x)
		}
	}
}
