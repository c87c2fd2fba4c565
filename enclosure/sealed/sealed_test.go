package sealed

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/response"
)

// testDriver has Fs = 75 Hz, Qts = 0.57, Vas = 10.1 L, Re = 2.6 Ω in
// standard air.
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

func TestNewValidation(t *testing.T) {
	drv := testDriver(t)

	if _, err := New(drv, 0); err != ErrInvalidVolume {
		t.Errorf("New(drv, 0) error = %v, want ErrInvalidVolume", err)
	}

	if _, err := New(drv, -0.01); err != ErrInvalidVolume {
		t.Errorf("New(drv, -0.01) error = %v, want ErrInvalidVolume", err)
	}

	if _, err := New(nil, 0.01); err != ErrNilDriver {
		t.Errorf("New(nil, ...) error = %v, want ErrNilDriver", err)
	}
}

func TestAlignmentAtVbEqualsVas(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	// α = 1 → Fc = Fs·√2, Qtc = Qts·√2.
	if math.Abs(box.Fc()-drv.Fs()*math.Sqrt2) > 0.1 {
		t.Errorf("Fc = %g, want %g", box.Fc(), drv.Fs()*math.Sqrt2)
	}

	if math.Abs(box.Qtc()-drv.Qts()*math.Sqrt2) > 0.005 {
		t.Errorf("Qtc = %g, want %g", box.Qtc(), drv.Qts()*math.Sqrt2)
	}
}

func TestQtcMonotonicInVolume(t *testing.T) {
	drv := testDriver(t)

	prev := math.Inf(1)

	for _, liters := range []float64{2, 5, 10, 20, 40, 80} {
		box, err := New(drv, acoustic.LitersToCubicMeters(liters))
		if err != nil {
			t.Fatal(err)
		}

		if box.Qtc() >= prev {
			t.Errorf("Qtc(%g L) = %g, not decreasing (prev %g)", liters, box.Qtc(), prev)
		}

		prev = box.Qtc()
	}
}

func TestImpedancePeakAtResonance(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	freqs, err := response.LogGrid(20, 2000, 600)
	if err != nil {
		t.Fatal(err)
	}

	sweep, err := box.Response(freqs)
	if err != nil {
		t.Fatal(err)
	}

	mag := sweep.ImpedanceMagnitude()
	maxIdx := 0

	for i, m := range mag {
		if m > mag[maxIdx] {
			maxIdx = i
		}
	}

	peakFreq := freqs[maxIdx]
	if math.Abs(peakFreq-box.Fc())/box.Fc() > 0.03 {
		t.Errorf("impedance peak at %g Hz, want ~Fc = %g Hz", peakFreq, box.Fc())
	}

	// The end-to-end scenario: peak well above Re (several times 2.6 Ω).
	if mag[maxIdx] < 2*drv.Re() {
		t.Errorf("impedance peak = %g Ω, want well above Re = %g Ω", mag[maxIdx], drv.Re())
	}

	// Far above resonance, |Ze| returns towards Re (plus inductive rise).
	if mag[len(mag)-1] > mag[maxIdx]/2 {
		t.Errorf("|Ze| at top of band = %g, want well below peak %g", mag[len(mag)-1], mag[maxIdx])
	}
}

func TestStrategiesAgreeOnPeakLocation(t *testing.T) {
	drv := testDriver(t)

	circuit, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	small, err := New(drv, drv.Vas(), enclosure.WithStrategy(enclosure.StrategySmall))
	if err != nil {
		t.Fatal(err)
	}

	freqs, err := response.LogGrid(20, 2000, 800)
	if err != nil {
		t.Fatal(err)
	}

	peak := func(m enclosure.Model) float64 {
		sweep, err := m.Response(freqs)
		if err != nil {
			t.Fatal(err)
		}

		mag := sweep.ImpedanceMagnitude()
		maxIdx := 0

		for i, v := range mag {
			if v > mag[maxIdx] {
				maxIdx = i
			}
		}

		return freqs[maxIdx]
	}

	fCircuit := peak(circuit)
	fSmall := peak(small)

	if math.Abs(fCircuit-fSmall)/fSmall > 0.05 {
		t.Errorf("peak frequencies disagree: circuit %g Hz, small %g Hz", fCircuit, fSmall)
	}
}

func TestReferenceEfficiencyDimensionless(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	eta := box.ReferenceEfficiency()
	if eta <= 0 || eta >= 1 {
		t.Errorf("η₀ = %g, want within (0, 1)", eta)
	}

	// Direct-radiator efficiencies are fractions of a percent.
	if eta > 0.05 {
		t.Errorf("η₀ = %g, implausibly high for a direct radiator", eta)
	}
}

func TestF3MatchesButterworthAlignment(t *testing.T) {
	drv := testDriver(t)

	// Choose Vb so that Qtc = 1/√2: √(1+α) = 0.7071/Qts.
	root := 1 / (math.Sqrt2 * drv.Qts())
	alpha := root*root - 1
	vb := drv.Vas() / alpha

	box, err := New(drv, vb, enclosure.WithStrategy(enclosure.StrategySmall))
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(box.Qtc()-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("Qtc = %g, want 0.7071", box.Qtc())
	}

	freqs, err := response.LogGrid(10, 4000, 1200)
	if err != nil {
		t.Fatal(err)
	}

	sweep, err := box.Response(freqs)
	if err != nil {
		t.Fatal(err)
	}

	spl := sweep.SPL()

	ref, err := response.ReferenceLevel(freqs, spl, 800, 4000)
	if err != nil {
		t.Fatal(err)
	}

	f3, err := response.CutoffLow(freqs, spl, ref, 3)
	if err != nil {
		t.Fatal(err)
	}

	// Butterworth: F3 = Fc exactly.
	if math.Abs(f3-box.Fc())/box.Fc() > 0.01 {
		t.Errorf("F3 = %g, want Fc = %g ± 1%%", f3, box.Fc())
	}
}

func TestExcursionRisesTowardsLowFrequencies(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	low, err := box.Point(20)
	if err != nil {
		t.Fatal(err)
	}

	high, err := box.Point(1000)
	if err != nil {
		t.Fatal(err)
	}

	if low.Excursion <= high.Excursion {
		t.Errorf("excursion low %g <= high %g, want mass-controlled rolloff", low.Excursion, high.Excursion)
	}
}

func TestImpedanceRejectsBadFrequency(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []float64{0, -10, math.NaN()} {
		if _, err := box.Impedance(f); err != enclosure.ErrInvalidFrequency {
			t.Errorf("Impedance(%g) error = %v, want ErrInvalidFrequency", f, err)
		}
	}
}

func TestImpedancePhaseCrossesZeroAtResonance(t *testing.T) {
	drv := testDriver(t)

	box, err := New(drv, drv.Vas())
	if err != nil {
		t.Fatal(err)
	}

	// Just below Fc the motional branch is stiffness-controlled, just above
	// it is mass-controlled; the reactance of the motional term flips sign.
	below, err := box.Impedance(box.Fc() * 0.8)
	if err != nil {
		t.Fatal(err)
	}

	above, err := box.Impedance(box.Fc() * 1.2)
	if err != nil {
		t.Fatal(err)
	}

	if cmplx.Abs(below) == 0 || cmplx.Abs(above) == 0 {
		t.Fatal("degenerate impedance")
	}

	if !(imag(below) > 0 && imag(above) < 0) {
		t.Errorf("imag(Ze) below/above resonance = %g / %g, want +/-", imag(below), imag(above))
	}
}
