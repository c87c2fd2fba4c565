// Package optimize searches enclosure design spaces for Pareto-optimal
// trade-offs between bass extension, response flatness, efficiency and size
// using the NSGA-II multi-objective genetic algorithm.
package optimize

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-speaker/driver"
)

// Errors returned by space construction and vector codec operations.
var (
	ErrEmptySpace     = errors.New("optimize: space needs at least one parameter")
	ErrInvalidRange   = errors.New("optimize: parameter range must have min < max")
	ErrDimension      = errors.New("optimize: vector dimension does not match space")
	ErrUnknownName    = errors.New("optimize: no parameter with that name")
	ErrOutsideParent  = errors.New("optimize: sub-range must lie inside the parent range")
)

// ParameterRange is one axis of a design space.
type ParameterRange struct {
	Name string
	Min  float64
	Max  float64
	Unit string
}

// Space is an axis-aligned box of design parameters. Vectors are handled in
// physical units; Encode/Decode map losslessly to and from the unit cube
// used by the genetic operators.
type Space struct {
	ranges []ParameterRange
}

// NewSpace returns a space over the given parameter ranges.
func NewSpace(ranges ...ParameterRange) (*Space, error) {
	if len(ranges) == 0 {
		return nil, ErrEmptySpace
	}

	for _, r := range ranges {
		if !(r.Min < r.Max) || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return nil, fmt.Errorf("optimize: parameter %q: %w", r.Name, ErrInvalidRange)
		}
	}

	s := &Space{ranges: make([]ParameterRange, len(ranges))}
	copy(s.ranges, ranges)

	return s, nil
}

// Dim returns the number of parameters.
func (s *Space) Dim() int { return len(s.ranges) }

// Ranges returns a copy of the parameter ranges.
func (s *Space) Ranges() []ParameterRange {
	out := make([]ParameterRange, len(s.ranges))
	copy(out, s.ranges)

	return out
}

// Subrange returns a new space with the named parameter narrowed to
// [min, max], which must lie inside the current range. Used to restrict a
// search to a named alignment region, e.g. the Butterworth neighborhood of a
// sealed box.
func (s *Space) Subrange(name string, min, max float64) (*Space, error) {
	for i, r := range s.ranges {
		if r.Name != name {
			continue
		}

		if min < r.Min || max > r.Max || !(min < max) {
			return nil, fmt.Errorf("optimize: parameter %q: %w", name, ErrOutsideParent)
		}

		out := s.Ranges()
		out[i].Min = min
		out[i].Max = max

		return NewSpace(out...)
	}

	return nil, fmt.Errorf("optimize: %q: %w", name, ErrUnknownName)
}

// Encode maps a physical vector to the unit cube.
func (s *Space) Encode(x []float64) ([]float64, error) {
	if len(x) != len(s.ranges) {
		return nil, ErrDimension
	}

	u := make([]float64, len(x))
	for i, r := range s.ranges {
		u[i] = (x[i] - r.Min) / (r.Max - r.Min)
	}

	return u, nil
}

// Decode maps a unit-cube vector back to physical units. Decode inverts
// Encode up to floating-point rounding.
func (s *Space) Decode(u []float64) ([]float64, error) {
	if len(u) != len(s.ranges) {
		return nil, ErrDimension
	}

	x := make([]float64, len(u))
	for i, r := range s.ranges {
		x[i] = r.Min + u[i]*(r.Max-r.Min)
	}

	return x, nil
}

// Clamp limits each component to its range, in place.
func (s *Space) Clamp(x []float64) {
	for i, r := range s.ranges {
		if i >= len(x) {
			return
		}

		x[i] = math.Min(math.Max(x[i], r.Min), r.Max)
	}
}

// Contains reports whether the vector lies inside the space.
func (s *Space) Contains(x []float64) bool {
	if len(x) != len(s.ranges) {
		return false
	}

	for i, r := range s.ranges {
		if x[i] < r.Min || x[i] > r.Max || math.IsNaN(x[i]) {
			return false
		}
	}

	return true
}

// Random returns a uniformly distributed vector in physical units.
func (s *Space) Random(rng *rand.Rand) []float64 {
	x := make([]float64, len(s.ranges))
	for i, r := range s.ranges {
		x[i] = r.Min + rng.Float64()*(r.Max-r.Min)
	}

	return x
}

// SealedSpace returns the one-dimensional sealed-box design space for the
// driver: volume from a tight 0.2·Vas to a generous 3·Vas.
func SealedSpace(drv *driver.Parameters) *Space {
	s, _ := NewSpace(ParameterRange{
		Name: "Vb", Min: 0.2 * drv.Vas(), Max: 3 * drv.Vas(), Unit: "m³",
	})

	return s
}

// PortedSpace returns the two-dimensional ported-box design space for the
// driver: volume around Vas and tuning between Fs/2 and Fs, the region all
// classical vented alignments fall into.
func PortedSpace(drv *driver.Parameters) *Space {
	s, _ := NewSpace(
		ParameterRange{Name: "Vb", Min: 0.5 * drv.Vas(), Max: 2.5 * drv.Vas(), Unit: "m³"},
		ParameterRange{Name: "Fb", Min: 0.5 * drv.Fs(), Max: drv.Fs(), Unit: "Hz"},
	)

	return s
}

// HornSpace returns the six-dimensional front-loaded horn design space for
// the driver: throat and mouth areas relative to Sd, axial length, Salmon
// flare parameter and the two chamber volumes.
func HornSpace(drv *driver.Parameters) *Space {
	sd := drv.Sd()

	s, _ := NewSpace(
		ParameterRange{Name: "St", Min: 0.2 * sd, Max: sd, Unit: "m²"},
		ParameterRange{Name: "Sm", Min: 4 * sd, Max: 60 * sd, Unit: "m²"},
		ParameterRange{Name: "L", Min: 0.3, Max: 3.0, Unit: "m"},
		ParameterRange{Name: "T", Min: 0.3, Max: 1.0, Unit: ""},
		ParameterRange{Name: "Vtc", Min: 0, Max: 2e-3, Unit: "m³"},
		ParameterRange{Name: "Vrc", Min: 1e-3, Max: 0.1, Unit: "m³"},
	)

	return s
}
