// Package driver models loudspeaker drivers through their Thiele-Small
// parameters. Primary electro-mechanical values are validated at
// construction; the derived resonance, Q and compliance-volume figures are
// computed exactly once and exposed read-only.
package driver

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/radiation"
)

// Spec holds the primary (measured) Thiele-Small parameters in SI units.
type Spec struct {
	Mmd  float64 // moving mass excluding radiation load, kg
	Cms  float64 // mechanical compliance, m/N
	Rms  float64 // mechanical resistance, N·s/m
	Re   float64 // voice coil DC resistance, Ω
	Le   float64 // voice coil inductance, H
	BL   float64 // force factor, T·m
	Sd   float64 // effective piston area, m²
	Xmax float64 // maximum linear excursion, m (0 if unknown)
}

// ValidationError reports a non-physical primary parameter. The field name
// is preserved so callers can surface the offending input.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("driver: invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

// Parameters is an immutable driver description: the validated Spec plus the
// derived small-signal parameters. Construct with New; the zero value is not
// usable.
type Parameters struct {
	spec   Spec
	medium acoustic.Medium
	piston *radiation.Piston

	mms float64
	fs  float64
	qms float64
	qes float64
	qts float64
	vas float64
}

// New validates spec and computes the derived parameters.
//
// The total moving mass Mms adds the low-frequency asymptotic radiation mass
// of both diaphragm faces (2·8ρa³/3) to Mmd, which resolves the circular
// dependency between Fs and the frequency-dependent radiation load.
func New(spec Spec, medium acoustic.Medium) (*Parameters, error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	piston, err := radiation.NewPiston(spec.Sd, medium)
	if err != nil {
		return nil, err
	}

	p := &Parameters{
		spec:   spec,
		medium: medium,
		piston: piston,
	}

	p.mms = spec.Mmd + 2*piston.AddedMass()
	p.fs = 1 / (2 * math.Pi * math.Sqrt(spec.Cms*p.mms))

	omegaS := acoustic.AngularFrequency(p.fs)
	p.qms = omegaS * p.mms / spec.Rms
	p.qes = omegaS * p.mms * spec.Re / (spec.BL * spec.BL)
	p.qts = p.qms * p.qes / (p.qms + p.qes)

	c := medium.SpeedOfSound
	p.vas = medium.Density * c * c * spec.Sd * spec.Sd * spec.Cms

	for _, d := range []struct {
		name  string
		value float64
	}{
		{"Fs", p.fs}, {"Qms", p.qms}, {"Qes", p.qes}, {"Qts", p.qts}, {"Vas", p.vas},
	} {
		if d.value <= 0 || math.IsInf(d.value, 0) || math.IsNaN(d.value) {
			return nil, &ValidationError{
				Field:  d.name,
				Value:  d.value,
				Reason: "derived value must be positive and finite",
			}
		}
	}

	return p, nil
}

func validate(spec Spec) error {
	checks := []struct {
		name     string
		value    float64
		optional bool // zero allowed
	}{
		{"Mmd", spec.Mmd, false},
		{"Cms", spec.Cms, false},
		{"Rms", spec.Rms, false},
		{"Re", spec.Re, false},
		{"Le", spec.Le, true},
		{"BL", spec.BL, false},
		{"Sd", spec.Sd, false},
		{"Xmax", spec.Xmax, true},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Field: c.name, Value: c.value, Reason: "must be finite"}
		}

		if c.value < 0 || (c.value == 0 && !c.optional) {
			return &ValidationError{Field: c.name, Value: c.value, Reason: "must be positive"}
		}
	}

	return nil
}

// Spec returns the primary parameter set.
func (p *Parameters) Spec() Spec { return p.spec }

// Medium returns the acoustic medium the derived values were computed in.
func (p *Parameters) Medium() acoustic.Medium { return p.medium }

// Piston returns the diaphragm radiation model.
func (p *Parameters) Piston() *radiation.Piston { return p.piston }

// Mms returns the total moving mass including radiation load, kg.
func (p *Parameters) Mms() float64 { return p.mms }

// Fs returns the free-air resonance frequency, Hz.
func (p *Parameters) Fs() float64 { return p.fs }

// Qms returns the mechanical quality factor at Fs.
func (p *Parameters) Qms() float64 { return p.qms }

// Qes returns the electrical quality factor at Fs.
func (p *Parameters) Qes() float64 { return p.qes }

// Qts returns the total quality factor at Fs.
func (p *Parameters) Qts() float64 { return p.qts }

// Vas returns the equivalent compliance air volume, m³.
func (p *Parameters) Vas() float64 { return p.vas }

// Re returns the voice coil DC resistance, Ω.
func (p *Parameters) Re() float64 { return p.spec.Re }

// Le returns the voice coil inductance, H.
func (p *Parameters) Le() float64 { return p.spec.Le }

// BL returns the force factor, T·m.
func (p *Parameters) BL() float64 { return p.spec.BL }

// Sd returns the effective piston area, m².
func (p *Parameters) Sd() float64 { return p.spec.Sd }

// Cms returns the mechanical suspension compliance, m/N.
func (p *Parameters) Cms() float64 { return p.spec.Cms }

// Rms returns the mechanical suspension resistance, N·s/m.
func (p *Parameters) Rms() float64 { return p.spec.Rms }

// Xmax returns the maximum linear excursion in m, or 0 if not specified.
func (p *Parameters) Xmax() float64 { return p.spec.Xmax }

// MechanicalImpedance returns the free-air mechanical impedance of the
// moving assembly (without radiation load) at the given frequency:
// Rms + jωMms + 1/(jωCms).
func (p *Parameters) MechanicalImpedance(freq float64) complex128 {
	omega := acoustic.AngularFrequency(freq)

	return complex(p.spec.Rms, omega*p.mms-1/(omega*p.spec.Cms))
}
