// Package sealed models a driver in a closed box: a single 2nd-order
// electro-mechanical high-pass resonator. The box air spring stiffens the
// suspension, shifting resonance to Fc = Fs·√(1+α) and the total quality
// factor to Qtc = Qts·√(1+α), with α = Vas/Vb.
package sealed

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/response"
)

// Errors returned by the sealed-box model.
var (
	ErrInvalidVolume = errors.New("sealed: box volume must be positive")
	ErrNilDriver     = errors.New("sealed: driver must not be nil")
)

// Box is a driver mounted in a sealed enclosure of a given internal volume.
type Box struct {
	drv *driver.Parameters
	cfg enclosure.Config
	vb  float64

	alpha float64
	fc    float64
	qtc   float64
	qmc   float64
	qec   float64
	cmt   float64 // combined suspension + air-spring compliance, m/N
	rmc   float64 // suspension + box loss resistance, N·s/m
}

// New returns a sealed-box model for the driver in a box of volume m³.
func New(drv *driver.Parameters, volume float64, opts ...enclosure.Option) (*Box, error) {
	if drv == nil {
		return nil, ErrNilDriver
	}

	if volume <= 0 || math.IsNaN(volume) {
		return nil, ErrInvalidVolume
	}

	b := &Box{
		drv: drv,
		cfg: enclosure.ApplyOptions(opts...),
		vb:  volume,
	}

	b.alpha = drv.Vas() / volume
	root := math.Sqrt(1 + b.alpha)
	b.fc = drv.Fs() * root
	b.qtc = drv.Qts() * root

	// Air-spring compliance reflected to the mechanical side, combined in
	// series with the suspension.
	medium := b.cfg.Medium
	c := medium.SpeedOfSound
	sd := drv.Sd()
	cmb := volume / (medium.Density * c * c * sd * sd)
	b.cmt = drv.Cms() * cmb / (drv.Cms() + cmb)

	// Box losses enter as extra mechanical resistance sized by Ql at Fc.
	omegaC := acoustic.AngularFrequency(b.fc)
	b.rmc = drv.Rms() + omegaC*drv.Mms()/b.cfg.BoxQ

	b.qmc = omegaC * drv.Mms() / b.rmc
	b.qec = omegaC * drv.Mms() * drv.Re() / (drv.BL() * drv.BL())

	return b, nil
}

// Volume returns the box volume in m³.
func (b *Box) Volume() float64 { return b.vb }

// Alpha returns the compliance ratio Vas/Vb.
func (b *Box) Alpha() float64 { return b.alpha }

// Fc returns the system resonance frequency in Hz.
func (b *Box) Fc() float64 { return b.fc }

// Qtc returns the lossless total system quality factor Qts·√(1+α).
func (b *Box) Qtc() float64 { return b.qtc }

// Qmc returns the mechanical system quality factor including box losses.
func (b *Box) Qmc() float64 { return b.qmc }

// Qec returns the electrical system quality factor at Fc.
func (b *Box) Qec() float64 { return b.qec }

// Config returns the simulation configuration.
func (b *Box) Config() enclosure.Config { return b.cfg }

// ReferenceEfficiency returns the dimensionless reference efficiency
//
//	η₀ = (4π²/c³)·Fs³·Vas/Qes
//
// of the driver in this medium. It is bounded in (0, 1) for physical
// parameters; no empirical calibration offsets are applied anywhere.
func (b *Box) ReferenceEfficiency() float64 {
	c := b.cfg.Medium.SpeedOfSound
	fs := b.drv.Fs()

	return 4 * math.Pi * math.Pi / (c * c * c) * fs * fs * fs * b.drv.Vas() / b.drv.Qes()
}

// ReferenceSPL returns the passband sensitivity in dB SPL at the configured
// voltage and distance: 112.02 + 10·log₁₀(η₀·V²/Re) - 20·log₁₀(r).
func (b *Box) ReferenceSPL() float64 {
	eta := b.ReferenceEfficiency()
	power := b.cfg.Voltage * b.cfg.Voltage / b.drv.Re()

	return 112.02 + 10*math.Log10(eta*power) - 20*math.Log10(b.cfg.Distance)
}

// mechanicalImpedance returns the total mechanical impedance seen by the
// voice coil: suspension + box losses, moving mass, combined compliance and
// the front radiation resistance. The radiation mass is already inside Mms,
// so only the resistive part of the front load is added here.
func (b *Box) mechanicalImpedance(freq float64) complex128 {
	omega := acoustic.AngularFrequency(freq)

	zm := complex(b.rmc, omega*b.drv.Mms()-1/(omega*b.cmt))

	if zr, err := b.drv.Piston().Mechanical(freq); err == nil {
		zm += complex(real(zr), 0)
	}

	return zm
}

// Impedance returns the complex electrical input impedance at freq using the
// configured strategy.
func (b *Box) Impedance(freq float64) (complex128, error) {
	if freq <= 0 || math.IsNaN(freq) {
		return 0, enclosure.ErrInvalidFrequency
	}

	omega := acoustic.AngularFrequency(freq)
	zvc := complex(b.drv.Re(), omega*b.drv.Le())

	if b.cfg.Strategy == enclosure.StrategySmall {
		return zvc + b.motionalSmall(freq), nil
	}

	return zvc + enclosure.ReflectMotional(b.drv.BL(), b.mechanicalImpedance(freq)), nil
}

// motionalSmall evaluates the closed-form 2nd-order motional impedance
//
//	Zmot(s) = Res·(sTc/Qmc) / (s²Tc² + sTc/Qmc + 1)
//
// with Res = BL²/Rmc, evaluated directly in complex s = jω.
func (b *Box) motionalSmall(freq float64) complex128 {
	res := b.drv.BL() * b.drv.BL() / b.rmc
	tc := 1 / acoustic.AngularFrequency(b.fc)
	s := complex(0, acoustic.AngularFrequency(freq))
	st := s * complex(tc, 0)

	num := st / complex(b.qmc, 0)
	den := st*st + st/complex(b.qmc, 0) + 1

	return complex(res, 0) * enclosure.SafeRatio(num, den)
}

// velocity returns the diaphragm velocity under the configured drive.
func (b *Box) velocity(freq float64) complex128 {
	omega := acoustic.AngularFrequency(freq)
	zvc := complex(b.drv.Re(), omega*b.drv.Le())
	bl := complex(b.drv.BL(), 0)
	den := zvc*b.mechanicalImpedance(freq) + bl*bl

	return enclosure.SafeRatio(complex(b.cfg.Voltage, 0)*bl, den)
}

// Point returns the full simulation output at freq. SPL follows the
// configured strategy: the circuit path radiates the diaphragm volume
// velocity, the small path evaluates the calibrated 2nd-order high-pass.
func (b *Box) Point(freq float64) (response.Point, error) {
	ze, err := b.Impedance(freq)
	if err != nil {
		return response.Point{}, err
	}

	omega := acoustic.AngularFrequency(freq)
	v := b.velocity(freq)
	u := v * complex(b.drv.Sd(), 0)

	var spl float64

	if b.cfg.Strategy == enclosure.StrategySmall {
		spl = b.ReferenceSPL() + b.highpassGain(freq)
	} else {
		spl = acoustic.PressureToSPL(
			enclosure.FarFieldPressure(u, freq, b.cfg.Distance, b.cfg.Medium))
	}

	return response.Point{
		Frequency:         freq,
		Impedance:         ze,
		SPL:               spl,
		DiaphragmVelocity: v,
		VolumeVelocity:    u,
		Excursion:         cmplx.Abs(v) / omega,
	}, nil
}

// highpassGain returns 20·log₁₀|G(jω)| of the normalized 2nd-order
// high-pass with corner Fc and quality Qtc.
func (b *Box) highpassGain(freq float64) float64 {
	tc := 1 / acoustic.AngularFrequency(b.fc)
	s := complex(0, acoustic.AngularFrequency(freq))
	st := s * complex(tc, 0)

	g := enclosure.SafeRatio(st*st, st*st+st/complex(b.qtc, 0)+1)

	return 20 * math.Log10(cmplx.Abs(g))
}

// Response evaluates Point over the grid.
func (b *Box) Response(freqs []float64) (*response.Sweep, error) {
	return enclosure.BuildSweep(b.Point, freqs)
}
