package optimize

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/enclosure/sealed"
	"github.com/cwbudde/algo-speaker/response"
)

// sealedBuilder decodes a one-dimensional vector [Vb] into a closed box.
func sealedBuilder(t *testing.T) Builder {
	t.Helper()

	drv := testDriver(t)

	return func(x []float64) (*Design, error) {
		box, err := sealed.New(drv, x[0], enclosure.WithStrategy(enclosure.StrategySmall))
		if err != nil {
			return nil, err
		}

		return &Design{
			Vector:     x,
			Model:      box,
			Volume:     x[0],
			Qtc:        box.Qtc(),
			Efficiency: box.ReferenceEfficiency(),
		}, nil
	}
}

func testEvaluator(t *testing.T, constraints ...Constraint) *Evaluator {
	t.Helper()

	freqs, err := response.LogGrid(10, 4000, 300)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := NewEvaluator(sealedBuilder(t), freqs,
		[]Objective{BassExtension(800, 4000), Size(), Efficiency()}, constraints)
	if err != nil {
		t.Fatal(err)
	}

	return ev
}

func TestEvaluatorScoresValidDesign(t *testing.T) {
	drv := testDriver(t)
	ev := testEvaluator(t)

	objs, violation := ev.Evaluate([]float64{drv.Vas()})

	if violation != 0 {
		t.Errorf("violation = %g, want 0 without constraints", violation)
	}

	f3 := objs[0]
	if f3 < 50 || f3 > 300 {
		t.Errorf("F3 objective = %g Hz, implausible for this driver", f3)
	}

	liters := objs[1]
	if math.Abs(liters-10.1) > 0.5 {
		t.Errorf("size objective = %g L, want ~10.1", liters)
	}

	if objs[2] >= 0 {
		t.Errorf("efficiency objective = %g, want negative (maximization)", objs[2])
	}
}

func TestBiggerBoxExtendsBass(t *testing.T) {
	drv := testDriver(t)
	ev := testEvaluator(t)

	small, _ := ev.Evaluate([]float64{0.3 * drv.Vas()})
	large, _ := ev.Evaluate([]float64{2.5 * drv.Vas()})

	if large[0] >= small[0] {
		t.Errorf("F3 large box %g >= small box %g, want deeper bass from more volume",
			large[0], small[0])
	}
}

func TestEvaluatorPenalizesInvalidDecode(t *testing.T) {
	ev := testEvaluator(t)

	objs, violation := ev.Evaluate([]float64{-1})

	for i, o := range objs {
		if o != InvalidPenalty {
			t.Errorf("objective %d = %g, want InvalidPenalty", i, o)
		}
	}

	if violation != InvalidPenalty {
		t.Errorf("violation = %g, want InvalidPenalty", violation)
	}
}

func TestQtcBandConstraint(t *testing.T) {
	drv := testDriver(t)
	ev := testEvaluator(t, QtcBand(0.5, 1.1))

	// Vb = Vas gives Qtc ≈ 0.81, inside the band.
	if _, violation := ev.Evaluate([]float64{drv.Vas()}); violation != 0 {
		t.Errorf("violation = %g at Qtc ~0.81, want 0", violation)
	}

	// A 0.2·Vas box pushes Qtc to ~1.4.
	_, violation := ev.Evaluate([]float64{0.2 * drv.Vas()})
	if violation <= 0 {
		t.Errorf("violation = %g for overdamped box, want positive", violation)
	}
}

func TestVolumeCapConstraint(t *testing.T) {
	drv := testDriver(t)
	ev := testEvaluator(t, VolumeCap(drv.Vas()))

	_, violation := ev.Evaluate([]float64{2 * drv.Vas()})
	if math.Abs(violation-drv.Vas()) > 1e-12 {
		t.Errorf("violation = %g, want excess volume %g", violation, drv.Vas())
	}
}

func TestExcursionConstraintSigned(t *testing.T) {
	drv := testDriver(t)

	generous := testEvaluator(t, ExcursionLimit(1))   // never exceeded
	strict := testEvaluator(t, ExcursionLimit(1e-12)) // always exceeded

	if _, v := generous.Evaluate([]float64{drv.Vas()}); v != 0 {
		t.Errorf("violation = %g under a generous limit, want 0", v)
	}

	if _, v := strict.Evaluate([]float64{drv.Vas()}); v <= 0 {
		t.Errorf("violation = %g under a strict limit, want positive", v)
	}
}

func TestRunOverSealedSpace(t *testing.T) {
	drv := testDriver(t)
	ev := testEvaluator(t, QtcBand(0.5, 1.2))

	res, err := Run(SealedSpace(drv), ev.Evaluate,
		WithPopulation(16), WithGenerations(8), WithSeed(4))
	if err != nil {
		t.Fatal(err)
	}

	if !res.Success {
		t.Fatalf("sealed search failed: %v", res.Warnings)
	}

	for _, ind := range res.Front {
		if !SealedSpace(drv).Contains(ind.X) {
			t.Errorf("front member %v escaped the space", ind.X)
		}
	}
}
