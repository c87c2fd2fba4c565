package enclosure

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/response"
)

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(
		WithVoltage(5.66),
		WithDistance(2),
		WithBoxQ(10),
		WithPortQ(12),
		WithStrategy(StrategySmall),
	)

	if cfg.Voltage != 5.66 || cfg.Distance != 2 || cfg.BoxQ != 10 || cfg.PortQ != 12 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if cfg.Strategy != StrategySmall {
		t.Errorf("Strategy = %v, want StrategySmall", cfg.Strategy)
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	cfg := ApplyOptions(WithVoltage(-1), WithDistance(0), nil)

	def := DefaultConfig()
	if cfg.Voltage != def.Voltage || cfg.Distance != def.Distance {
		t.Errorf("invalid options mutated config: %+v", cfg)
	}
}

func TestStrategyString(t *testing.T) {
	if StrategyCircuit.String() != "circuit" || StrategySmall.String() != "small" {
		t.Error("unexpected Strategy names")
	}

	if Strategy(99).String() != "unknown" {
		t.Error("out-of-range Strategy should stringify as unknown")
	}
}

func TestReflectMotional(t *testing.T) {
	// Ordinary case: BL²/Zmech.
	z := ReflectMotional(10, complex(4, 3))
	want := complex(100, 0) / complex(4, 3)

	if math.Abs(real(z-want)) > 1e-12 || math.Abs(imag(z-want)) > 1e-12 {
		t.Errorf("ReflectMotional = %v, want %v", z, want)
	}

	// Degenerate case: sentinel, not Inf/NaN.
	z = ReflectMotional(10, complex(0, 0))
	if real(z) != ImpedanceCeiling || imag(z) != 0 {
		t.Errorf("degenerate ReflectMotional = %v, want ceiling sentinel", z)
	}

	if math.IsNaN(real(z)) || math.IsInf(real(z), 0) {
		t.Error("sentinel must be finite")
	}
}

func TestFarFieldPressure(t *testing.T) {
	// |p| = ωρ|U|/(2πr): doubling distance halves pressure.
	m := acoustic.Air()
	p1 := FarFieldPressure(complex(1e-3, 0), 100, 1, m)
	p2 := FarFieldPressure(complex(1e-3, 0), 100, 2, m)

	if math.Abs(p1/p2-2) > 1e-12 {
		t.Errorf("pressure ratio = %g, want 2", p1/p2)
	}

	want := 2 * math.Pi * 100 * m.Density * 1e-3 / (2 * math.Pi)
	if math.Abs(p1-want) > 1e-12 {
		t.Errorf("p1 = %g, want %g", p1, want)
	}
}

func TestBuildSweep(t *testing.T) {
	freqs := []float64{10, 100, 1000}

	sweep, err := BuildSweep(func(f float64) (response.Point, error) {
		return response.Point{Frequency: f, SPL: 90}, nil
	}, freqs)
	if err != nil {
		t.Fatal(err)
	}

	if len(sweep.Points) != 3 {
		t.Fatalf("len = %d, want 3", len(sweep.Points))
	}

	for i, p := range sweep.Points {
		if p.Frequency != freqs[i] {
			t.Errorf("point %d frequency = %g, want %g", i, p.Frequency, freqs[i])
		}
	}

	if _, err := BuildSweep(nil, nil); err != ErrEmptyGrid {
		t.Errorf("empty grid error = %v, want ErrEmptyGrid", err)
	}
}
