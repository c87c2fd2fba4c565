package radiation

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-speaker/acoustic"
)

func TestNewPistonValidation(t *testing.T) {
	tests := []struct {
		name string
		area float64
	}{
		{"zero area", 0},
		{"negative area", -0.01},
		{"NaN area", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPiston(tt.area, acoustic.Air()); err != ErrInvalidArea {
				t.Errorf("NewPiston(%g) error = %v, want ErrInvalidArea", tt.area, err)
			}
		})
	}
}

func TestNegativeFrequencyRejected(t *testing.T) {
	p, err := NewPiston(0.02, acoustic.Air())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Acoustic(-1); err != ErrNegativeFrequency {
		t.Errorf("Acoustic(-1) error = %v, want ErrNegativeFrequency", err)
	}

	if _, err := p.Mechanical(math.NaN()); err != ErrNegativeFrequency {
		t.Errorf("Mechanical(NaN) error = %v, want ErrNegativeFrequency", err)
	}
}

func TestNormalizedLowFrequencyAsymptotics(t *testing.T) {
	// R₁ ~ (ka)²/2 and X₁ ~ 8ka/(3π) as ka → 0.
	for _, ka := range []float64{1e-6, 1e-4, 1e-2} {
		r, x := Normalized(ka)

		wantR := ka * ka / 2
		if math.Abs(r-wantR) > 1e-4*wantR {
			t.Errorf("R1(%g) = %g, want ~%g", ka, r, wantR)
		}

		wantX := 8 * ka / (3 * math.Pi)
		if math.Abs(x-wantX) > 1e-4*wantX {
			t.Errorf("X1(%g) = %g, want ~%g", ka, x, wantX)
		}
	}
}

func TestNormalizedHighFrequencyLimit(t *testing.T) {
	r, x := Normalized(100)

	if math.Abs(r-1) > 0.01 {
		t.Errorf("R1(100) = %g, want ~1", r)
	}

	if math.Abs(x) > 0.01 {
		t.Errorf("X1(100) = %g, want ~0", x)
	}
}

func TestAddedMassMatchesReactanceLimit(t *testing.T) {
	// The low-frequency mechanical reactance ωm must reproduce 8ρa³/3.
	p, err := NewPiston(0.0133, acoustic.Air())
	if err != nil {
		t.Fatal(err)
	}

	const freq = 1.0

	zm, err := p.Mechanical(freq)
	if err != nil {
		t.Fatal(err)
	}

	omega := acoustic.AngularFrequency(freq)
	massFromReactance := imag(zm) / omega

	if diff := math.Abs(massFromReactance-p.AddedMass()) / p.AddedMass(); diff > 1e-3 {
		t.Errorf("mass from reactance = %g, AddedMass = %g (rel diff %g)",
			massFromReactance, p.AddedMass(), diff)
	}
}

func TestAcousticMechanicalConsistency(t *testing.T) {
	// Za = Zm / S² for the same piston and frequency.
	p, err := NewPiston(0.021, acoustic.Air())
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []float64{10, 100, 1000, 10000} {
		za, err := p.Acoustic(f)
		if err != nil {
			t.Fatal(err)
		}

		zm, err := p.Mechanical(f)
		if err != nil {
			t.Fatal(err)
		}

		want := zm / complex(p.Area()*p.Area(), 0)
		if cmplx.Abs(za-want) > 1e-9*cmplx.Abs(want) {
			t.Errorf("f=%g: Za = %v, Zm/S² = %v", f, za, want)
		}
	}
}
