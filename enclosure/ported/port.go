package ported

import (
	"math"

	"github.com/cwbudde/algo-speaker/acoustic"
)

// PortBounds constrains the vent geometry the solver may pick.
type PortBounds struct {
	MinArea   float64 // m²
	MaxArea   float64 // m²
	MinLength float64 // m
	MaxLength float64 // m
}

// DefaultPortBounds covers vents from 2 to 200 cm² and 1 cm to 1 m length,
// a range that fits most hi-fi and PA boxes.
func DefaultPortBounds() PortBounds {
	return PortBounds{
		MinArea:   2e-4,
		MaxArea:   2e-2,
		MinLength: 1e-2,
		MaxLength: 1.0,
	}
}

// TuningFrequency returns the Helmholtz resonance of a port in a box of
// volume vb, using the effective length of the vent.
func TuningFrequency(vb float64, port Port, medium acoustic.Medium) float64 {
	if vb <= 0 || port.Area <= 0 || port.Length <= 0 {
		return 0
	}

	c := medium.SpeedOfSound

	return c / (2 * math.Pi) * math.Sqrt(port.Area/(vb*port.EffectiveLength()))
}

// SolvePort finds a vent geometry that tunes a box of volume vb to fb within
// the bounds. Areas are scanned from the largest downwards so the first
// realizable geometry also minimizes port air velocity; the physical length
// follows from the required effective length
//
//	Leff = c²·Sp / (ωb²·Vb)
//
// minus the end correction. ErrUnrealizable is returned when no area in the
// bounds yields a length in the bounds.
func SolvePort(vb, fb float64, bounds PortBounds, medium acoustic.Medium) (Port, error) {
	if vb <= 0 || math.IsNaN(vb) {
		return Port{}, ErrInvalidVolume
	}

	if fb <= 0 || math.IsNaN(fb) {
		return Port{}, ErrInvalidTuning
	}

	if bounds.MinArea <= 0 || bounds.MaxArea < bounds.MinArea ||
		bounds.MinLength <= 0 || bounds.MaxLength < bounds.MinLength {
		return Port{}, ErrInvalidPort
	}

	c := medium.SpeedOfSound
	omegaB := acoustic.AngularFrequency(fb)

	const steps = 64

	ratio := math.Pow(bounds.MinArea/bounds.MaxArea, 1.0/(steps-1))

	area := bounds.MaxArea
	for range steps {
		leff := c * c * area / (omegaB * omegaB * vb)
		length := leff - EndCorrection*math.Sqrt(area/math.Pi)

		if length >= bounds.MinLength && length <= bounds.MaxLength {
			return Port{Area: area, Length: length}, nil
		}

		area *= ratio
	}

	return Port{}, ErrUnrealizable
}
