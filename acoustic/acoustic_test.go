package acoustic

import (
	"math"
	"testing"
)

func TestAir(t *testing.T) {
	m := Air()

	if m.Density <= 0 || m.SpeedOfSound <= 0 {
		t.Fatalf("Air() = %+v, want positive properties", m)
	}

	if got := m.Impedance(); math.Abs(got-414.5) > 1 {
		t.Errorf("Impedance() = %g, want ~414.5", got)
	}
}

func TestWavenumber(t *testing.T) {
	m := Air()

	// At f = c/(2π), k should be exactly 1.
	f := m.SpeedOfSound / (2 * math.Pi)
	if got := m.Wavenumber(f); math.Abs(got-1) > 1e-12 {
		t.Errorf("Wavenumber(%g) = %g, want 1", f, got)
	}
}

func TestUnitConversions(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"liters to m3", LitersToCubicMeters(50), 0.05},
		{"m3 to liters", CubicMetersToLiters(0.094), 94},
		{"cm2 to m2", SquareCentimetersToSquareMeters(210), 0.021},
		{"m2 to cm2", SquareMetersToSquareCentimeters(0.0133), 133},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-12 {
				t.Errorf("got %g, want %g", tt.got, tt.want)
			}
		})
	}
}

func TestPressureToSPL(t *testing.T) {
	if got := PressureToSPL(RefPressure); math.Abs(got) > 1e-12 {
		t.Errorf("SPL at reference pressure = %g, want 0", got)
	}

	if got := PressureToSPL(1.0); math.Abs(got-93.979) > 0.01 {
		t.Errorf("SPL at 1 Pa = %g, want ~93.98", got)
	}

	if got := PressureToSPL(0); !math.IsInf(got, -1) {
		t.Errorf("SPL at 0 Pa = %g, want -Inf", got)
	}
}
