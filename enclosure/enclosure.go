// Package enclosure defines the contracts shared by all enclosure models:
// the simulation configuration, the impedance-computation strategy selector
// and the Model interface implemented by sealed, ported and horn boxes.
package enclosure

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/response"
)

// Errors shared by the enclosure models.
var (
	ErrInvalidFrequency = errors.New("enclosure: frequency must be positive")
	ErrEmptyGrid        = errors.New("enclosure: frequency grid is empty")
)

// Strategy selects between the two independent impedance derivations. Both
// describe the same physics and agree approximately; keeping both allows
// cross-validation.
type Strategy int

const (
	// StrategyCircuit composes the coupled mechanical/acoustic resonators
	// directly and reflects them through the force factor.
	StrategyCircuit Strategy = iota

	// StrategySmall uses the closed-form normalized transfer functions of
	// Thiele and Small (2nd order sealed, 4th order ported).
	StrategySmall
)

func (s Strategy) String() string {
	switch s {
	case StrategyCircuit:
		return "circuit"
	case StrategySmall:
		return "small"
	default:
		return "unknown"
	}
}

// ImpedanceCeiling is the sentinel magnitude returned when a mechanical
// impedance becomes numerically degenerate (effectively infinite electrical
// impedance rather than NaN propagation).
const ImpedanceCeiling = 1e9

// ReflectMotional reflects a mechanical impedance through the force factor:
// BL²/Zmech. Near-singular mechanical impedances yield the ceiling sentinel.
func ReflectMotional(bl float64, zmech complex128) complex128 {
	if cmplx.Abs(zmech) < bl*bl/ImpedanceCeiling {
		return complex(ImpedanceCeiling, 0)
	}

	return complex(bl*bl, 0) / zmech
}

// SafeRatio divides num by den, substituting a finite ceiling-magnitude
// sentinel when the denominator is numerically degenerate. Transfer-function
// denominators can reach near-singular conditions at extreme Q values.
func SafeRatio(num, den complex128) complex128 {
	if den == 0 {
		if num == 0 {
			return 0
		}

		return complex(ImpedanceCeiling, 0)
	}

	if cmplx.Abs(den) < cmplx.Abs(num)/ImpedanceCeiling {
		return complex(ImpedanceCeiling, 0)
	}

	return num / den
}

// FarFieldPressure returns the half-space far-field pressure magnitude in Pa
// produced by a net volume velocity U at the given frequency and distance:
// |p| = ωρ|U|/(2πr).
func FarFieldPressure(volumeVelocity complex128, freq, distance float64, medium acoustic.Medium) float64 {
	omega := acoustic.AngularFrequency(freq)

	return omega * medium.Density * cmplx.Abs(volumeVelocity) / (2 * math.Pi * distance)
}

// Model is a frequency-domain enclosure simulation: a driver mounted in a
// specific box geometry under a fixed Config.
type Model interface {
	// Impedance returns the complex electrical input impedance at freq.
	Impedance(freq float64) (complex128, error)

	// Point returns the full simulation output at freq.
	Point(freq float64) (response.Point, error)

	// Response evaluates Point over a frequency grid.
	Response(freqs []float64) (*response.Sweep, error)
}

// BuildSweep evaluates a per-frequency Point function over a grid. Model
// implementations use it for their Response methods.
func BuildSweep(point func(freq float64) (response.Point, error), freqs []float64) (*response.Sweep, error) {
	if len(freqs) == 0 {
		return nil, ErrEmptyGrid
	}

	sweep := &response.Sweep{Points: make([]response.Point, len(freqs))}

	for i, f := range freqs {
		p, err := point(f)
		if err != nil {
			return nil, err
		}

		sweep.Points[i] = p
	}

	return sweep, nil
}
