// Package ported models a driver in a bass-reflex (vented) box: two coupled
// resonators forming a 4th-order high-pass system. The port mass resonates
// with the box compliance at the tuning frequency Fb, producing the
// characteristic impedance dip at Fb flanked by two peaks.
package ported

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/response"
)

// Errors returned by the ported-box model.
var (
	ErrNilDriver     = errors.New("ported: driver must not be nil")
	ErrInvalidVolume = errors.New("ported: box volume must be positive")
	ErrInvalidTuning = errors.New("ported: tuning frequency must be positive")
	ErrInvalidPort   = errors.New("ported: port area and length must be positive")
	ErrUnrealizable  = errors.New("ported: no port geometry satisfies the bounds")
)

// EndCorrection is the effective acoustic length added to a port in units of
// port radius, accounting for the radiation mass at both port ends.
const EndCorrection = 1.2

// Port describes a cylindrical vent.
type Port struct {
	Area   float64 // m²
	Length float64 // m
}

// EffectiveLength returns the physical length plus end correction.
func (p Port) EffectiveLength() float64 {
	return p.Length + EndCorrection*math.Sqrt(p.Area/math.Pi)
}

// Box is a driver mounted in a ported enclosure. Tuning is taken from Fb;
// the port geometry feeds the port air-velocity report and must be tuned
// consistently (see SolvePort).
type Box struct {
	drv  *driver.Parameters
	cfg  enclosure.Config
	vb   float64
	fb   float64
	port Port

	alpha float64
	cab   float64 // box acoustic compliance, m³/Pa
	mapt  float64 // port acoustic mass, kg/m⁴
	rap   float64 // port acoustic loss resistance, Pa·s/m³
	ral   float64 // box leakage loss resistance, Pa·s/m³
}

// New returns a ported-box model. A zero-valued Port is allowed and models
// an ideal lossless vent of the given tuning; port air velocity is then
// reported as zero.
func New(drv *driver.Parameters, volume, fb float64, port Port, opts ...enclosure.Option) (*Box, error) {
	if drv == nil {
		return nil, ErrNilDriver
	}

	if volume <= 0 || math.IsNaN(volume) {
		return nil, ErrInvalidVolume
	}

	if fb <= 0 || math.IsNaN(fb) {
		return nil, ErrInvalidTuning
	}

	if (port != Port{}) && (port.Area <= 0 || port.Length <= 0) {
		return nil, ErrInvalidPort
	}

	b := &Box{
		drv:  drv,
		cfg:  enclosure.ApplyOptions(opts...),
		vb:   volume,
		fb:   fb,
		port: port,
	}

	medium := b.cfg.Medium
	c := medium.SpeedOfSound
	b.alpha = drv.Vas() / volume
	b.cab = volume / (medium.Density * c * c)

	omegaB := acoustic.AngularFrequency(fb)
	b.mapt = 1 / (omegaB * omegaB * b.cab)
	b.rap = omegaB * b.mapt / b.cfg.PortQ
	b.ral = b.cfg.BoxQ / (omegaB * b.cab)

	return b, nil
}

// Volume returns the box volume in m³.
func (b *Box) Volume() float64 { return b.vb }

// Fb returns the tuning frequency in Hz.
func (b *Box) Fb() float64 { return b.fb }

// Alpha returns the compliance ratio Vas/Vb.
func (b *Box) Alpha() float64 { return b.alpha }

// Port returns the vent geometry.
func (b *Box) Port() Port { return b.port }

// Config returns the simulation configuration.
func (b *Box) Config() enclosure.Config { return b.cfg }

// rearImpedance returns the acoustic impedance loading the rear of the
// diaphragm: box compliance in parallel with the port branch and the
// leakage loss.
func (b *Box) rearImpedance(freq float64) complex128 {
	omega := acoustic.AngularFrequency(freq)

	yBox := complex(0, omega*b.cab)           // compliance admittance
	yPort := 1 / complex(b.rap, omega*b.mapt) // mass + loss branch
	yLeak := complex(1/b.ral, 0)              // leakage

	return enclosure.SafeRatio(1, yBox+yPort+yLeak)
}

// mechanicalImpedance is the total mechanical load on the voice coil.
func (b *Box) mechanicalImpedance(freq float64) complex128 {
	sd2 := complex(b.drv.Sd()*b.drv.Sd(), 0)
	zm := b.drv.MechanicalImpedance(freq) + sd2*b.rearImpedance(freq)

	if zr, err := b.drv.Piston().Mechanical(freq); err == nil {
		zm += complex(real(zr), 0)
	}

	return zm
}

// Impedance returns the complex electrical input impedance at freq using
// the configured strategy.
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

// motionalSmall evaluates the closed-form 4th-order motional impedance
//
//	Zmot(s) = Res·(sTs/Qms)·(s²Tb² + sTb/Qp + 1) / D(s)
//
// with Res = BL²/Rms and the denominator polynomial
//
//	D(s) = s⁴Ts²Tb² + s³(Tb²Ts/Qp + TbTs²/Qes)
//	     + s²((α+1)Tb² + TsTb/(Qp·Qes) + Ts²) + s(Tb/Qp + Ts/Qes) + 1
//
// evaluated directly in complex s = jω.
func (b *Box) motionalSmall(freq float64) complex128 {
	ts := 1 / acoustic.AngularFrequency(b.drv.Fs())
	tb := 1 / acoustic.AngularFrequency(b.fb)
	qes := b.drv.Qes()
	qms := b.drv.Qms()
	qp := b.cfg.PortQ

	s := complex(0, acoustic.AngularFrequency(freq))
	num := s * complex(ts/qms, 0) * b.portResonator(s, tb, qp)
	den := b.denominator(s, ts, tb, qes, qp)

	res := b.drv.BL() * b.drv.BL() / b.drv.Rms()

	return complex(res, 0) * enclosure.SafeRatio(num, den)
}

func (b *Box) portResonator(s complex128, tb, qp float64) complex128 {
	stb := s * complex(tb, 0)

	return stb*stb + stb/complex(qp, 0) + 1
}

func (b *Box) denominator(s complex128, ts, tb, qes, qp float64) complex128 {
	a4 := ts * ts * tb * tb
	a3 := tb*tb*ts/qp + tb*ts*ts/qes
	a2 := (b.alpha+1)*tb*tb + ts*tb/(qp*qes) + ts*ts
	a1 := tb/qp + ts/qes

	// Horner evaluation keeps the complex arithmetic direct.
	d := complex(a4, 0)
	d = d*s + complex(a3, 0)
	d = d*s + complex(a2, 0)
	d = d*s + complex(a1, 0)
	d = d*s + 1

	return d
}

// velocity returns the diaphragm velocity under the configured drive.
func (b *Box) velocity(freq float64) complex128 {
	omega := acoustic.AngularFrequency(freq)
	zvc := complex(b.drv.Re(), omega*b.drv.Le())
	bl := complex(b.drv.BL(), 0)
	den := zvc*b.mechanicalImpedance(freq) + bl*bl

	return enclosure.SafeRatio(complex(b.cfg.Voltage, 0)*bl, den)
}

// Point returns the full simulation output at freq. The net radiated volume
// velocity is the diaphragm output minus the port output, which cancel
// towards DC (the 4th-order rolloff) and add through the passband.
func (b *Box) Point(freq float64) (response.Point, error) {
	ze, err := b.Impedance(freq)
	if err != nil {
		return response.Point{}, err
	}

	omega := acoustic.AngularFrequency(freq)
	v := b.velocity(freq)
	uc := v * complex(b.drv.Sd(), 0)

	pBox := uc * b.rearImpedance(freq)
	up := enclosure.SafeRatio(pBox, complex(b.rap, omega*b.mapt))
	uNet := uc - up

	var spl float64

	if b.cfg.Strategy == enclosure.StrategySmall {
		spl = b.referenceSPL() + b.highpassGain(freq)
	} else {
		spl = acoustic.PressureToSPL(
			enclosure.FarFieldPressure(uNet, freq, b.cfg.Distance, b.cfg.Medium))
	}

	portVel := 0.0
	if b.port.Area > 0 {
		portVel = cmplx.Abs(up) / b.port.Area
	}

	return response.Point{
		Frequency:         freq,
		Impedance:         ze,
		SPL:               spl,
		DiaphragmVelocity: v,
		VolumeVelocity:    uNet,
		PortAirVelocity:   portVel,
		Excursion:         cmplx.Abs(v) / omega,
	}, nil
}

// referenceSPL is the passband sensitivity at the configured voltage and
// distance, from the dimensionless reference efficiency
// η₀ = (4π²/c³)·Fs³·Vas/Qes.
func (b *Box) referenceSPL() float64 {
	c := b.cfg.Medium.SpeedOfSound
	fs := b.drv.Fs()
	eta := 4 * math.Pi * math.Pi / (c * c * c) * fs * fs * fs * b.drv.Vas() / b.drv.Qes()
	power := b.cfg.Voltage * b.cfg.Voltage / b.drv.Re()

	return 112.02 + 10*math.Log10(eta*power) - 20*math.Log10(b.cfg.Distance)
}

// highpassGain returns 20·log₁₀|G(jω)| of the normalized 4th-order
// high-pass G(s) = s⁴Ts²Tb²/D(s).
func (b *Box) highpassGain(freq float64) float64 {
	ts := 1 / acoustic.AngularFrequency(b.drv.Fs())
	tb := 1 / acoustic.AngularFrequency(b.fb)

	s := complex(0, acoustic.AngularFrequency(freq))
	num := s * s * s * s * complex(ts*ts*tb*tb, 0)
	den := b.denominator(s, ts, tb, b.drv.Qes(), b.cfg.PortQ)

	g := enclosure.SafeRatio(num, den)

	return 20 * math.Log10(cmplx.Abs(g))
}

// Response evaluates Point over the grid.
func (b *Box) Response(freqs []float64) (*response.Sweep, error) {
	return enclosure.BuildSweep(b.Point, freqs)
}
