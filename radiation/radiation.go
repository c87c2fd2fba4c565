// Package radiation computes the acoustic radiation impedance of a rigid
// circular piston in an infinite baffle, the standard front-load model for
// direct-radiating loudspeaker diaphragms and horn mouths.
//
// The impedance is expressed through the dimensionless functions
//
//	R₁(ka) = 1 - J₁(2ka)/ka
//	X₁(ka) = H₁(2ka)/ka
//
// where k is the wavenumber and a the piston radius. Near ka = 0 both are
// evaluated through numerically stable series (see internal/struve).
package radiation

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/internal/struve"
)

// Errors returned by radiation functions.
var (
	ErrInvalidArea       = errors.New("radiation: piston area must be positive")
	ErrNegativeFrequency = errors.New("radiation: frequency must be non-negative")
)

// Normalized returns the dimensionless piston radiation impedance components
// (R₁, X₁) at the given ka. R₁ rises as (ka)²/2 from zero and tends to 1;
// X₁ peaks near ka = 1 and falls off as 1/ka.
func Normalized(ka float64) (r, x float64) {
	z := 2 * ka

	return struve.PistonResistance(z), struve.PistonReactance(z)
}

// Piston is a rigid circular piston of a given effective area radiating into
// half space.
type Piston struct {
	area   float64
	radius float64
	medium acoustic.Medium
}

// NewPiston returns a piston with the given effective area in m².
func NewPiston(area float64, medium acoustic.Medium) (*Piston, error) {
	if area <= 0 || math.IsNaN(area) {
		return nil, ErrInvalidArea
	}

	return &Piston{
		area:   area,
		radius: math.Sqrt(area / math.Pi),
		medium: medium,
	}, nil
}

// Area returns the effective piston area in m².
func (p *Piston) Area() float64 { return p.area }

// Radius returns the equivalent piston radius in m.
func (p *Piston) Radius() float64 { return p.radius }

// KA returns the dimensionless product of wavenumber and piston radius.
func (p *Piston) KA(freq float64) float64 {
	return p.medium.Wavenumber(freq) * p.radius
}

// Acoustic returns the absolute acoustic radiation impedance in Pa·s/m³,
// i.e. (ρc/S)·(R₁ + jX₁).
func (p *Piston) Acoustic(freq float64) (complex128, error) {
	if freq < 0 || math.IsNaN(freq) {
		return 0, ErrNegativeFrequency
	}

	r, x := Normalized(p.KA(freq))
	scale := p.medium.Impedance() / p.area

	return complex(scale*r, scale*x), nil
}

// Mechanical returns the radiation impedance reflected to the mechanical
// side in N·s/m, i.e. ρc·S·(R₁ + jX₁).
func (p *Piston) Mechanical(freq float64) (complex128, error) {
	if freq < 0 || math.IsNaN(freq) {
		return 0, ErrNegativeFrequency
	}

	r, x := Normalized(p.KA(freq))
	scale := p.medium.Impedance() * p.area

	return complex(scale*r, scale*x), nil
}

// AddedMass returns the low-frequency mechanical radiation mass of one
// piston face, the classic 8ρa³/3, in kg.
func (p *Piston) AddedMass() float64 {
	return 8.0 / 3.0 * p.medium.Density * p.radius * p.radius * p.radius
}
