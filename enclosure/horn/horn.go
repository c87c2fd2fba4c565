package horn

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-speaker/acoustic"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/enclosure"
	"github.com/cwbudde/algo-speaker/radiation"
	"github.com/cwbudde/algo-speaker/response"
)

// Errors returned by the horn model.
var (
	ErrNilDriver       = errors.New("horn: driver must not be nil")
	ErrNoSegments      = errors.New("horn: at least one segment is required")
	ErrSegmentMismatch = errors.New("horn: segment areas must be continuous")
	ErrInvalidChamber  = errors.New("horn: chamber volumes must not be negative")
)

// areaTolerance is the allowed relative mismatch between adjacent segment
// areas before the cascade is rejected.
const areaTolerance = 1e-9

// Horn is a driver front-loading a cascade of flare segments, optionally with
// a compression chamber between diaphragm and throat and a sealed rear
// chamber. The mouth radiates into half space through a piston load.
type Horn struct {
	drv      *driver.Parameters
	cfg      enclosure.Config
	segments []Segment
	vtc      float64 // throat (compression) chamber volume, m³
	vrc      float64 // rear chamber volume, m³
	mouth    *radiation.Piston

	ctc float64 // throat chamber acoustic compliance, m³/Pa
	crc float64 // rear chamber acoustic compliance, m³/Pa
}

// New returns a horn model. Segments run throat to mouth and must be
// area-continuous. Zero chamber volumes disable the respective chamber: a
// zero throat chamber couples the diaphragm directly to the throat, a zero
// rear chamber leaves the rear of the diaphragm unloaded.
func New(drv *driver.Parameters, segments []Segment, throatVolume, rearVolume float64, opts ...enclosure.Option) (*Horn, error) {
	if drv == nil {
		return nil, ErrNilDriver
	}

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	for i := 1; i < len(segments); i++ {
		prev, next := segments[i-1].MouthArea(), segments[i].ThroatArea()
		if math.Abs(prev-next) > areaTolerance*prev {
			return nil, ErrSegmentMismatch
		}
	}

	if throatVolume < 0 || rearVolume < 0 ||
		math.IsNaN(throatVolume) || math.IsNaN(rearVolume) {
		return nil, ErrInvalidChamber
	}

	h := &Horn{
		drv:      drv,
		cfg:      enclosure.ApplyOptions(opts...),
		segments: segments,
		vtc:      throatVolume,
		vrc:      rearVolume,
	}

	medium := h.cfg.Medium
	last := segments[len(segments)-1]

	mouth, err := radiation.NewPiston(last.MouthArea(), medium)
	if err != nil {
		return nil, err
	}

	h.mouth = mouth

	rhoc2 := medium.Density * medium.SpeedOfSound * medium.SpeedOfSound
	h.ctc = throatVolume / rhoc2
	h.crc = rearVolume / rhoc2

	return h, nil
}

// Segments returns the flare cascade, throat to mouth.
func (h *Horn) Segments() []Segment { return h.segments }

// ThroatArea returns the entry area of the first segment in m².
func (h *Horn) ThroatArea() float64 { return h.segments[0].ThroatArea() }

// MouthArea returns the exit area of the last segment in m².
func (h *Horn) MouthArea() float64 { return h.segments[len(h.segments)-1].MouthArea() }

// CutoffFrequency returns the highest flare cutoff among the segments, the
// frequency below which the horn stops loading effectively.
func (h *Horn) CutoffFrequency() float64 {
	fc := 0.0

	for _, s := range h.segments {
		if c := s.CutoffFrequency(h.cfg.Medium); c > fc {
			fc = c
		}
	}

	return fc
}

// CompressionRatio returns Sd over throat area.
func (h *Horn) CompressionRatio() float64 {
	return h.drv.Sd() / h.ThroatArea()
}

// Config returns the simulation configuration.
func (h *Horn) Config() enclosure.Config { return h.cfg }

// chain returns the cascade transmission matrix at freq.
func (h *Horn) chain(freq float64) (Matrix, error) {
	m := Identity()

	for _, s := range h.segments {
		sm, err := s.Matrix(freq, h.cfg.Medium)
		if err != nil {
			return Matrix{}, err
		}

		m = m.Mul(sm)
	}

	return m, nil
}

// throatImpedance returns the acoustic impedance at the horn throat: the
// mouth radiation load transformed back through the cascade.
func (h *Horn) throatImpedance(freq float64) (complex128, error) {
	m, err := h.chain(freq)
	if err != nil {
		return 0, err
	}

	zm, err := h.mouth.Acoustic(freq)
	if err != nil {
		return 0, err
	}

	return m.TransformImpedance(zm), nil
}

// frontImpedance returns the acoustic load on the front of the diaphragm:
// the throat impedance shunted by the throat-chamber compliance.
func (h *Horn) frontImpedance(freq float64) (complex128, error) {
	zt, err := h.throatImpedance(freq)
	if err != nil {
		return 0, err
	}

	if h.ctc == 0 {
		return zt, nil
	}

	omega := acoustic.AngularFrequency(freq)
	zc := complex(0, -1/(omega*h.ctc))

	return enclosure.SafeRatio(zt*zc, zt+zc), nil
}

// rearImpedance returns the acoustic load on the rear of the diaphragm.
func (h *Horn) rearImpedance(freq float64) complex128 {
	if h.crc == 0 {
		return 0
	}

	omega := acoustic.AngularFrequency(freq)

	return complex(0, -1/(omega*h.crc))
}

// mechanicalImpedance is the total mechanical load on the voice coil.
func (h *Horn) mechanicalImpedance(freq float64) (complex128, error) {
	zfront, err := h.frontImpedance(freq)
	if err != nil {
		return 0, err
	}

	sd2 := complex(h.drv.Sd()*h.drv.Sd(), 0)

	return h.drv.MechanicalImpedance(freq) + sd2*(zfront+h.rearImpedance(freq)), nil
}

// Impedance returns the complex electrical input impedance at freq.
func (h *Horn) Impedance(freq float64) (complex128, error) {
	if freq <= 0 || math.IsNaN(freq) {
		return 0, enclosure.ErrInvalidFrequency
	}

	zmech, err := h.mechanicalImpedance(freq)
	if err != nil {
		return 0, err
	}

	omega := acoustic.AngularFrequency(freq)
	zvc := complex(h.drv.Re(), omega*h.drv.Le())

	return zvc + enclosure.ReflectMotional(h.drv.BL(), zmech), nil
}

// velocity returns the diaphragm velocity under the configured drive.
func (h *Horn) velocity(freq float64) (complex128, error) {
	zmech, err := h.mechanicalImpedance(freq)
	if err != nil {
		return 0, err
	}

	omega := acoustic.AngularFrequency(freq)
	zvc := complex(h.drv.Re(), omega*h.drv.Le())
	bl := complex(h.drv.BL(), 0)
	den := zvc*zmech + bl*bl

	return enclosure.SafeRatio(complex(h.cfg.Voltage, 0)*bl, den), nil
}

// Point returns the full simulation output at freq. The radiated output is
// the mouth volume velocity: the diaphragm output split at the throat
// chamber, then propagated through the cascade against the mouth load.
func (h *Horn) Point(freq float64) (response.Point, error) {
	ze, err := h.Impedance(freq)
	if err != nil {
		return response.Point{}, err
	}

	v, err := h.velocity(freq)
	if err != nil {
		return response.Point{}, err
	}

	omega := acoustic.AngularFrequency(freq)
	uc := v * complex(h.drv.Sd(), 0)

	zt, err := h.throatImpedance(freq)
	if err != nil {
		return response.Point{}, err
	}

	// Current divider between throat chamber compliance and the horn.
	ut := uc

	if h.ctc > 0 {
		zc := complex(0, -1/(omega*h.ctc))
		ut = uc * enclosure.SafeRatio(zc, zc+zt)
	}

	m, err := h.chain(freq)
	if err != nil {
		return response.Point{}, err
	}

	zm, err := h.mouth.Acoustic(freq)
	if err != nil {
		return response.Point{}, err
	}

	um := enclosure.SafeRatio(ut, m.C*zm+m.D)

	spl := acoustic.PressureToSPL(
		enclosure.FarFieldPressure(um, freq, h.cfg.Distance, h.cfg.Medium))

	return response.Point{
		Frequency:         freq,
		Impedance:         ze,
		SPL:               spl,
		DiaphragmVelocity: v,
		VolumeVelocity:    um,
		Excursion:         cmplx.Abs(v) / omega,
	}, nil
}

// Response evaluates Point over the grid.
func (h *Horn) Response(freqs []float64) (*response.Sweep, error) {
	return enclosure.BuildSweep(h.Point, freqs)
}
