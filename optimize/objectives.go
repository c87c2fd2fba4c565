package optimize

import (
	"errors"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/response"
)

// InvalidPenalty is the finite objective value assigned to design vectors
// that decode to geometrically impossible enclosures. Finite so that sorting
// and crowding arithmetic stay well-defined, large enough that any valid
// design dominates.
const InvalidPenalty = 1e6

// ErrNilBuilder is returned by NewEvaluator without a design builder.
var ErrNilBuilder = errors.New("optimize: builder must not be nil")

// Design is a decoded candidate: the physical vector, the simulation model
// it builds and the scalar properties the objectives and constraints read
// without re-deriving them from geometry.
type Design struct {
	Vector     []float64
	Model      enclosure.Model
	Volume     float64 // total enclosure volume, m³
	Qtc        float64 // closed-box total Q, zero when not applicable
	Efficiency float64 // dimensionless reference efficiency
}

// Builder decodes a design vector into a Design. Vectors that violate
// geometric feasibility return an error; the evaluator converts that into
// the penalty, never into an aborted run.
type Builder func(x []float64) (*Design, error)

// Evaluation is the cached simulation output for one design, shared by all
// objectives and constraints so the sweep runs once per candidate.
type Evaluation struct {
	Design *Design
	Freqs  []float64
	Sweep  *response.Sweep
}

// Objective is a scalar criterion to minimize.
type Objective struct {
	Name string
	Eval func(e *Evaluation) float64
}

// BassExtension returns the F3 objective in Hz: the lower −3 dB cutoff
// relative to the passband reference level between refLo and refHi. Deeper
// bass means a smaller value. Responses with no crossing score the penalty.
func BassExtension(refLo, refHi float64) Objective {
	return Objective{
		Name: "f3",
		Eval: func(e *Evaluation) float64 {
			spl := e.Sweep.SPL()

			ref, err := response.ReferenceLevel(e.Freqs, spl, refLo, refHi)
			if err != nil {
				return InvalidPenalty
			}

			f3, err := response.CutoffLow(e.Freqs, spl, ref, 3)
			if err != nil {
				return InvalidPenalty
			}

			return f3
		},
	}
}

// Flatness returns the passband-ripple objective in dB: the standard
// deviation of the SPL curve between flo and fhi.
func Flatness(flo, fhi float64) Objective {
	return Objective{
		Name: "flatness",
		Eval: func(e *Evaluation) float64 {
			dev, err := response.Flatness(e.Freqs, e.Sweep.SPL(), flo, fhi)
			if err != nil {
				return InvalidPenalty
			}

			return dev
		},
	}
}

// Efficiency returns the negated reference efficiency in percent, so that
// minimizing it maximizes acoustic output per watt.
func Efficiency() Objective {
	return Objective{
		Name: "efficiency",
		Eval: func(e *Evaluation) float64 {
			return -100 * e.Design.Efficiency
		},
	}
}

// Size returns the enclosure volume objective in liters.
func Size() Objective {
	return Objective{
		Name: "size",
		Eval: func(e *Evaluation) float64 {
			return acoustic.CubicMetersToLiters(e.Design.Volume)
		},
	}
}

// Evaluator turns a builder, a frequency grid, objectives and constraints
// into the single vector-in, scores-out function the genetic algorithm
// consumes.
type Evaluator struct {
	builder     Builder
	freqs       []float64
	objectives  []Objective
	constraints []Constraint
}

// NewEvaluator returns an evaluator over the given grid.
func NewEvaluator(builder Builder, freqs []float64, objectives []Objective, constraints []Constraint) (*Evaluator, error) {
	if builder == nil {
		return nil, ErrNilBuilder
	}

	if len(freqs) == 0 {
		return nil, response.ErrInvalidGrid
	}

	if len(objectives) == 0 {
		return nil, errors.New("optimize: at least one objective is required")
	}

	return &Evaluator{
		builder:     builder,
		freqs:       freqs,
		objectives:  objectives,
		constraints: constraints,
	}, nil
}

// ObjectiveNames returns the objective names in evaluation order.
func (ev *Evaluator) ObjectiveNames() []string {
	names := make([]string, len(ev.objectives))
	for i, o := range ev.objectives {
		names[i] = o.Name
	}

	return names
}

// penalized fills the objective vector with the invalid-design penalty.
func (ev *Evaluator) penalized() ([]float64, float64) {
	objs := make([]float64, len(ev.objectives))
	for i := range objs {
		objs[i] = InvalidPenalty
	}

	return objs, InvalidPenalty
}

// Evaluate decodes, simulates and scores one design vector. The second
// return is the total constraint violation, zero when feasible.
func (ev *Evaluator) Evaluate(x []float64) ([]float64, float64) {
	design, err := ev.builder(x)
	if err != nil || design == nil || design.Model == nil {
		return ev.penalized()
	}

	sweep, err := design.Model.Response(ev.freqs)
	if err != nil {
		return ev.penalized()
	}

	e := &Evaluation{Design: design, Freqs: ev.freqs, Sweep: sweep}

	objs := make([]float64, len(ev.objectives))
	for i, o := range ev.objectives {
		objs[i] = o.Eval(e)
	}

	violation := 0.0

	for _, c := range ev.constraints {
		if v := c.Eval(e); v > 0 {
			violation += v
		}
	}

	return objs, violation
}
