// Package assistant turns a driver and an enclosure preference into concrete,
// ranked box designs. It assembles the design space, objectives and
// constraints for the chosen enclosure type, runs the multi-objective search
// and distills the Pareto front into a short list of recommendations.
package assistant

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/enclosure/horn"
	"github.com/cwbudde/algo-speaker/enclosure/ported"
	"github.com/cwbudde/algo-speaker/enclosure/sealed"
	"github.com/cwbudde/algo-speaker/optimize"
	"github.com/cwbudde/algo-speaker/response"
)

// Errors returned by the assistant.
var (
	ErrNilDriver     = errors.New("assistant: driver must not be nil")
	ErrUnknownType   = errors.New("assistant: unknown enclosure type")
	ErrInvalidWeight = errors.New("assistant: objective weights must not be negative")
)

// EnclosureType selects the box family to design.
type EnclosureType int

const (
	Sealed EnclosureType = iota
	Ported
	FrontHorn
)

func (e EnclosureType) String() string {
	switch e {
	case Sealed:
		return "sealed"
	case Ported:
		return "ported"
	case FrontHorn:
		return "horn"
	default:
		return "unknown"
	}
}

// Default search settings.
const (
	defaultGridMin    = 10.0
	defaultGridMax    = 4000.0
	defaultGridPoints = 300
	defaultTopN       = 3

	// defaultPortLimit is roughly 5 percent of the speed of sound, the
	// usual onset of audible port noise.
	defaultPortLimit = 17.0
)

// Request describes one design task.
type Request struct {
	Driver    *driver.Parameters
	Enclosure EnclosureType

	// MaxVolume caps the total enclosure volume in m³. Zero means no cap.
	MaxVolume float64

	// PortVelocityLimit in m/s; zero selects the default chuffing limit.
	// Only meaningful for ported designs.
	PortVelocityLimit float64

	// Weights rank the front by objective name (f3, flatness, efficiency,
	// size). Nil selects equal weights. Weights must not be negative.
	Weights map[string]float64

	// TopN limits the number of recommendations; zero selects the default.
	TopN int
}

// Recommendation is one ranked design from the Pareto front.
type Recommendation struct {
	// Parameters maps design-space names to decoded physical values.
	Parameters map[string]float64

	// Objectives maps objective names to their achieved values.
	Objectives map[string]float64

	// Model is the simulation model of the design, ready for Simulate.
	Model enclosure.Model

	// Score is the normalized weighted objective sum; lower ranks first.
	Score float64

	// Confidence is 1 for the best-scoring feasible design, decaying
	// towards 0 for the worst of the front, and 0 for infeasible fronts.
	Confidence float64
}

// Result is the outcome of a design run.
type Result struct {
	Recommendations []Recommendation
	Success         bool
	Warnings        []string
	Evaluations     int
}

// Recommend designs an enclosure for the request and returns the top ranked
// candidates. Search options (population, generations, seed) pass through to
// the optimizer.
func Recommend(req Request, opts ...optimize.Option) (*Result, error) {
	if req.Driver == nil {
		return nil, ErrNilDriver
	}

	for name, w := range req.Weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("assistant: weight %q: %w", name, ErrInvalidWeight)
		}
	}

	space, builder, err := problemFor(req)
	if err != nil {
		return nil, err
	}

	freqs, err := response.LogGrid(defaultGridMin, defaultGridMax, defaultGridPoints)
	if err != nil {
		return nil, err
	}

	objectives := []optimize.Objective{
		optimize.BassExtension(800, defaultGridMax),
		optimize.Flatness(40, 1000),
		optimize.Efficiency(),
		optimize.Size(),
	}

	ev, err := optimize.NewEvaluator(builder, freqs, objectives, constraintsFor(req))
	if err != nil {
		return nil, err
	}

	run, err := optimize.Run(space, ev.Evaluate, opts...)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Success:     run.Success,
		Warnings:    run.Warnings,
		Evaluations: run.Evaluations,
	}

	res.Recommendations = rank(run, space, builder, ev.ObjectiveNames(), req)

	return res, nil
}

// Simulate runs a full frequency sweep for a concrete design.
func Simulate(model enclosure.Model, fmin, fmax float64, points int) (*response.Sweep, error) {
	freqs, err := response.LogGrid(fmin, fmax, points)
	if err != nil {
		return nil, err
	}

	return model.Response(freqs)
}

// referenceEfficiency is the driver's dimensionless η₀ in the medium.
func referenceEfficiency(drv *driver.Parameters, medium acoustic.Medium) float64 {
	c := medium.SpeedOfSound
	fs := drv.Fs()

	return 4 * math.Pi * math.Pi / (c * c * c) * fs * fs * fs * drv.Vas() / drv.Qes()
}

// problemFor assembles the design space and the vector decoder for the
// requested enclosure family.
func problemFor(req Request) (*optimize.Space, optimize.Builder, error) {
	drv := req.Driver
	medium := drv.Medium()

	switch req.Enclosure {
	case Sealed:
		builder := func(x []float64) (*optimize.Design, error) {
			box, err := sealed.New(drv, x[0])
			if err != nil {
				return nil, err
			}

			return &optimize.Design{
				Vector:     x,
				Model:      box,
				Volume:     x[0],
				Qtc:        box.Qtc(),
				Efficiency: box.ReferenceEfficiency(),
			}, nil
		}

		return optimize.SealedSpace(drv), builder, nil

	case Ported:
		builder := func(x []float64) (*optimize.Design, error) {
			vb, fb := x[0], x[1]

			port, err := ported.SolvePort(vb, fb, ported.DefaultPortBounds(), medium)
			if err != nil {
				return nil, err
			}

			box, err := ported.New(drv, vb, fb, port)
			if err != nil {
				return nil, err
			}

			return &optimize.Design{
				Vector:     x,
				Model:      box,
				Volume:     vb,
				Efficiency: referenceEfficiency(drv, medium),
			}, nil
		}

		return optimize.PortedSpace(drv), builder, nil

	case FrontHorn:
		builder := func(x []float64) (*optimize.Design, error) {
			seg, err := horn.NewHyperbolic(x[0], x[1], x[2], x[3])
			if err != nil {
				return nil, err
			}

			h, err := horn.New(drv, []horn.Segment{seg}, x[4], x[5])
			if err != nil {
				return nil, err
			}

			return &optimize.Design{
				Vector:     x,
				Model:      h,
				Volume:     seg.Volume() + x[4] + x[5],
				Efficiency: hornEfficiency(drv, h, medium),
			}, nil
		}

		return optimize.HornSpace(drv), builder, nil

	default:
		return nil, nil, ErrUnknownType
	}
}

// hornEfficiency scales the driver's direct-radiator η₀ by the horn's
// passband resistance gain: the throat sees roughly ρc/St instead of the
// free-air radiation resistance, bounded by unity.
func hornEfficiency(drv *driver.Parameters, h *horn.Horn, medium acoustic.Medium) float64 {
	eta := referenceEfficiency(drv, medium)

	gain := drv.Sd() / h.ThroatArea()
	if gain < 1 {
		gain = 1
	}

	return math.Min(eta*gain, 1)
}

// constraintsFor assembles the constraint set for the request.
func constraintsFor(req Request) []optimize.Constraint {
	cs := []optimize.Constraint{
		optimize.ExcursionLimit(excursionLimit(req.Driver)),
	}

	if req.Enclosure == Ported {
		limit := req.PortVelocityLimit
		if limit <= 0 {
			limit = defaultPortLimit
		}

		cs = append(cs, optimize.PortVelocityLimit(limit))
	}

	if req.Enclosure == Sealed {
		cs = append(cs, optimize.QtcBand(0.5, 1.2))
	}

	if req.MaxVolume > 0 {
		cs = append(cs, optimize.VolumeCap(req.MaxVolume))
	}

	return cs
}

// excursionLimit falls back to a 5 mm peak when the driver spec omits Xmax.
func excursionLimit(drv *driver.Parameters) float64 {
	if x := drv.Xmax(); x > 0 {
		return x
	}

	return 5e-3
}

// rank orders the feasible front members by normalized weighted objectives
// and materializes the top-N recommendations.
func rank(run *optimize.Result, space *optimize.Space, builder optimize.Builder, names []string, req Request) []Recommendation {
	front := run.Front
	if len(front) == 0 {
		return nil
	}

	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = 1

		if req.Weights != nil {
			if w, ok := req.Weights[name]; ok {
				weights[i] = w
			}
		}
	}

	// Normalize each objective to [0, 1] across the front.
	lo := make([]float64, len(names))
	hi := make([]float64, len(names))

	for m := range names {
		lo[m], hi[m] = math.Inf(1), math.Inf(-1)

		for _, ind := range front {
			lo[m] = math.Min(lo[m], ind.Objectives[m])
			hi[m] = math.Max(hi[m], ind.Objectives[m])
		}
	}

	scores := make([]float64, len(front))
	minScore, maxScore := math.Inf(1), math.Inf(-1)

	for i, ind := range front {
		s := 0.0

		for m := range names {
			if hi[m] > lo[m] {
				s += weights[m] * (ind.Objectives[m] - lo[m]) / (hi[m] - lo[m])
			}
		}

		scores[i] = s
		minScore = math.Min(minScore, s)
		maxScore = math.Max(maxScore, s)
	}

	order := make([]int, len(front))
	for i := range order {
		order[i] = i
	}

	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && scores[order[j]] < scores[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	if topN > len(order) {
		topN = len(order)
	}

	ranges := space.Ranges()
	recs := make([]Recommendation, 0, topN)

	for _, idx := range order[:topN] {
		ind := front[idx]

		design, err := builder(ind.X)
		if err != nil {
			continue
		}

		params := make(map[string]float64, len(ranges))
		for d, r := range ranges {
			params[r.Name] = ind.X[d]
		}

		objs := make(map[string]float64, len(names))
		for m, name := range names {
			objs[name] = ind.Objectives[m]
		}

		confidence := 0.0
		if run.Success && ind.Violation <= 0 {
			confidence = 1.0
			if maxScore > minScore {
				confidence = 1 - (scores[idx]-minScore)/(maxScore-minScore)
			}
		}

		recs = append(recs, Recommendation{
			Parameters: params,
			Objectives: objs,
			Model:      design.Model,
			Score:      scores[idx],
			Confidence: confidence,
		})
	}

	return recs
}
