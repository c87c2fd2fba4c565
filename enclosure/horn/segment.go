// Package horn models front-loaded horns as cascades of flare segments, each
// described by an analytic 2×2 transmission matrix of the Webster horn
// equation. Below the flare cutoff the wave parameter turns imaginary; all
// matrix arithmetic is carried out in complex form so the transition needs no
// special casing.
package horn

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/enclosure"
)

// Errors returned by segment construction and evaluation.
var (
	ErrInvalidSegment = errors.New("horn: segment areas and length must be positive")
	ErrInvalidFlare   = errors.New("horn: flare parameter T must be positive")
	ErrNotExpanding   = errors.New("horn: mouth area must exceed throat area")
	ErrInvalidMedium  = errors.New("horn: medium must have positive density and speed of sound")
)

// Profile identifies the flare law of a segment.
type Profile int

const (
	// Exponential flares as S(x) = S1·e^{m·x}.
	Exponential Profile = iota

	// Conical flares as S(x) = S1·(1 + x/x1)², a straight-walled cone.
	Conical

	// Hyperbolic flares as S(x) = S1·(cosh(x/x0) + T·sinh(x/x0))², the
	// Salmon family. T = 1 recovers the exponential, T → ∞ the conical.
	Hyperbolic
)

func (p Profile) String() string {
	switch p {
	case Exponential:
		return "exponential"
	case Conical:
		return "conical"
	case Hyperbolic:
		return "hyperbolic"
	default:
		return "unknown"
	}
}

// Matrix is a 2×2 complex transmission matrix relating throat-side pressure
// and volume velocity to the mouth-side pair: [p1; U1] = M·[p2; U2].
type Matrix struct {
	A, B, C, D complex128
}

// Identity returns the unit transmission matrix.
func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

// Mul returns m·n, the cascade of m followed (towards the mouth) by n.
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
	}
}

// Det returns the determinant, which is 1 for any reciprocal segment. Useful
// as a numerical self-check.
func (m Matrix) Det() complex128 {
	return m.A*m.D - m.B*m.C
}

// TransformImpedance maps a mouth-side load impedance to the throat side:
// Z1 = (A·Z2 + B)/(C·Z2 + D).
func (m Matrix) TransformImpedance(load complex128) complex128 {
	return (m.A*load + m.B) / (m.C*load + m.D)
}

// Segment is one flare section of a horn, throat area expanding to mouth
// area over the given axial length.
type Segment struct {
	profile Profile
	throat  float64 // m²
	mouth   float64 // m²
	length  float64 // m
	t       float64 // Salmon parameter, hyperbolic only

	// Webster parameters: f(x) is the square root of the normalized area,
	// f(0) = 1. The matrix only needs f'(0), f(L), f'(L) and the constant
	// curvature f''/f.
	slope     float64 // f'(0)
	curvature float64 // f''/f, 1/m²
	fl        float64 // f(L)
	flp       float64 // f'(L)
}

func validateSegment(throatArea, mouthArea, length float64) error {
	if throatArea <= 0 || mouthArea <= 0 || length <= 0 ||
		math.IsNaN(throatArea) || math.IsNaN(mouthArea) || math.IsNaN(length) {
		return ErrInvalidSegment
	}

	if mouthArea <= throatArea {
		return ErrNotExpanding
	}

	return nil
}

// NewExponential returns an exponential segment with flare constant
// m = ln(S2/S1)/L.
func NewExponential(throatArea, mouthArea, length float64) (Segment, error) {
	if err := validateSegment(throatArea, mouthArea, length); err != nil {
		return Segment{}, err
	}

	m := math.Log(mouthArea/throatArea) / length

	return Segment{
		profile:   Exponential,
		throat:    throatArea,
		mouth:     mouthArea,
		length:    length,
		slope:     m / 2,
		curvature: m * m / 4,
		fl:        math.Exp(m * length / 2),
		flp:       m / 2 * math.Exp(m*length/2),
	}, nil
}

// NewConical returns a straight-walled conical segment. The apex distance
// x1 = L/(√(S2/S1) − 1) follows from the two areas.
func NewConical(throatArea, mouthArea, length float64) (Segment, error) {
	if err := validateSegment(throatArea, mouthArea, length); err != nil {
		return Segment{}, err
	}

	x1 := length / (math.Sqrt(mouthArea/throatArea) - 1)

	return Segment{
		profile:   Conical,
		throat:    throatArea,
		mouth:     mouthArea,
		length:    length,
		slope:     1 / x1,
		curvature: 0,
		fl:        1 + length/x1,
		flp:       1 / x1,
	}, nil
}

// NewHyperbolic returns a Salmon-family segment with flare parameter t.
// The reference length x0 is recovered in closed form from
// cosh(L/x0) + t·sinh(L/x0) = √(S2/S1).
func NewHyperbolic(throatArea, mouthArea, length, t float64) (Segment, error) {
	if err := validateSegment(throatArea, mouthArea, length); err != nil {
		return Segment{}, err
	}

	if t <= 0 || math.IsNaN(t) {
		return Segment{}, ErrInvalidFlare
	}

	g := math.Sqrt(mouthArea / throatArea)

	// cosh(u) + t·sinh(u) = g with w = e^u reduces to a quadratic in w.
	w := (g + math.Sqrt(g*g-(1-t*t))) / (1 + t)
	x0 := length / math.Log(w)
	u := length / x0

	return Segment{
		profile:   Hyperbolic,
		throat:    throatArea,
		mouth:     mouthArea,
		length:    length,
		t:         t,
		slope:     t / x0,
		curvature: 1 / (x0 * x0),
		fl:        math.Cosh(u) + t*math.Sinh(u),
		flp:       (math.Sinh(u) + t*math.Cosh(u)) / x0,
	}, nil
}

// Profile returns the flare law of the segment.
func (s Segment) Profile() Profile { return s.profile }

// ThroatArea returns the entry area in m².
func (s Segment) ThroatArea() float64 { return s.throat }

// MouthArea returns the exit area in m².
func (s Segment) MouthArea() float64 { return s.mouth }

// Length returns the axial length in m.
func (s Segment) Length() float64 { return s.length }

// Volume returns the internal air volume of the segment in m³.
func (s Segment) Volume() float64 {
	l := s.length

	switch s.profile {
	case Conical:
		return s.throat * l * (1 + s.slope*l + s.slope*s.slope*l*l/3)
	case Hyperbolic:
		a := math.Sqrt(s.curvature)
		u := a * l
		sh, ch := math.Sinh(u), math.Cosh(u)

		return s.throat * ((1+s.t*s.t)/2*sh*ch/a + (1-s.t*s.t)/2*l + s.t*sh*sh/a)
	default:
		m := 2 * s.slope

		return s.throat * (math.Exp(m*l) - 1) / m
	}
}

// CutoffFrequency returns the flare cutoff in Hz. For an exponential flare
// S ∝ e^{m·x} this is c·m/(4π); the general value is c·√(f''/f)/(2π), which
// recovers the same expression and yields zero for a cone.
func (s Segment) CutoffFrequency(medium acoustic.Medium) float64 {
	return medium.SpeedOfSound * math.Sqrt(s.curvature) / (2 * math.Pi)
}

// Matrix returns the transmission matrix of the segment at freq. The wave
// parameter b = √(k² − f''/f) is taken as a complex root so evaluation below
// the flare cutoff stays well-defined.
func (s Segment) Matrix(freq float64, medium acoustic.Medium) (Matrix, error) {
	if freq <= 0 || math.IsNaN(freq) {
		return Matrix{}, enclosure.ErrInvalidFrequency
	}

	if medium.Density <= 0 || medium.SpeedOfSound <= 0 {
		return Matrix{}, ErrInvalidMedium
	}

	omega := acoustic.AngularFrequency(freq)
	k := medium.Wavenumber(freq)

	b := cmplx.Sqrt(complex(k*k-s.curvature, 0))
	bl := b * complex(s.length, 0)

	sinBL := cmplx.Sin(bl)
	cosBL := cmplx.Cos(bl)

	// sin(bL)/b with the b → 0 limit handled explicitly.
	sincBL := complex(s.length, 0)
	if b != 0 {
		sincBL = sinBL / b
	}

	fl := complex(s.fl, 0)
	flp := complex(s.flp, 0)
	slope := complex(s.slope, 0)
	jwr := complex(0, omega*medium.Density)
	s1 := complex(s.throat, 0)

	a := fl*cosBL - flp*sincBL
	bb := jwr * sincBL / (s1 * fl)
	c := -(s1 / jwr) * (fl*b*sinBL + flp*cosBL - slope*(fl*cosBL-flp*sincBL))
	d := (cosBL + slope*sincBL) / fl

	return Matrix{A: a, B: bb, C: c, D: d}, nil
}
