// Package response holds frequency-response results produced by the
// enclosure models and the analysis helpers that reduce them: impedance
// magnitude/phase extraction, -3 dB cutoff detection, passband flatness and
// group delay.
package response

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by response functions.
var (
	ErrInvalidGrid = errors.New("response: grid needs fmin < fmax, both positive, and n >= 2")
	ErrEmptySweep  = errors.New("response: sweep is empty")
	ErrInvalidBand = errors.New("response: band is empty or outside the sweep")
	ErrNoCrossing  = errors.New("response: no cutoff crossing found")
)

// LogGrid returns n logarithmically spaced frequencies from fmin to fmax
// inclusive.
func LogGrid(fmin, fmax float64, n int) ([]float64, error) {
	if fmin <= 0 || fmax <= fmin || n < 2 {
		return nil, ErrInvalidGrid
	}

	return floats.LogSpan(make([]float64, n), fmin, fmax), nil
}

// Point is the simulation output at a single frequency.
type Point struct {
	Frequency         float64    // Hz
	Impedance         complex128 // electrical impedance, Ω
	SPL               float64    // dB re 20 µPa at the configured distance
	DiaphragmVelocity complex128 // m/s
	VolumeVelocity    complex128 // net radiated volume velocity, m³/s
	PortAirVelocity   float64    // peak air speed in the port, m/s (0 if none)
	Excursion         float64    // peak diaphragm excursion, m
}

// Sweep is a frequency response: one Point per grid frequency.
type Sweep struct {
	Points []Point
}

// Frequencies returns the frequency axis.
func (s *Sweep) Frequencies() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Frequency
	}

	return out
}

// SPL returns the sound pressure levels.
func (s *Sweep) SPL() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.SPL
	}

	return out
}

// ImpedanceMagnitude returns |Ze| for every point.
func (s *Sweep) ImpedanceMagnitude() []float64 {
	n := len(s.Points)
	re := make([]float64, n)
	im := make([]float64, n)

	for i, p := range s.Points {
		re[i] = real(p.Impedance)
		im[i] = imag(p.Impedance)
	}

	out := make([]float64, n)
	vecmath.Magnitude(out, re, im)

	return out
}

// ImpedancePhase returns the impedance phase in radians for every point.
func (s *Sweep) ImpedancePhase() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = cmplx.Phase(p.Impedance)
	}

	return out
}

// MaxExcursion returns the largest diaphragm excursion in the sweep, m.
func (s *Sweep) MaxExcursion() float64 {
	max := 0.0
	for _, p := range s.Points {
		if p.Excursion > max {
			max = p.Excursion
		}
	}

	return max
}

// MaxPortVelocity returns the largest port air speed in the sweep, m/s.
func (s *Sweep) MaxPortVelocity() float64 {
	max := 0.0
	for _, p := range s.Points {
		if p.PortAirVelocity > max {
			max = p.PortAirVelocity
		}
	}

	return max
}

// bandIndices returns the index range [lo, hi) of frequencies inside
// [flo, fhi].
func bandIndices(freqs []float64, flo, fhi float64) (int, int, error) {
	lo, hi := -1, -1

	for i, f := range freqs {
		if f >= flo && f <= fhi {
			if lo == -1 {
				lo = i
			}

			hi = i + 1
		}
	}

	if lo == -1 || hi-lo < 2 {
		return 0, 0, ErrInvalidBand
	}

	return lo, hi, nil
}

// ReferenceLevel returns the mean SPL across [flo, fhi], the passband level
// the cutoff search is referenced to.
func ReferenceLevel(freqs, spl []float64, flo, fhi float64) (float64, error) {
	if len(freqs) == 0 || len(freqs) != len(spl) {
		return 0, ErrEmptySweep
	}

	lo, hi, err := bandIndices(freqs, flo, fhi)
	if err != nil {
		return 0, err
	}

	return stat.Mean(spl[lo:hi], nil), nil
}

// CutoffLow finds the low-frequency cutoff: the highest frequency below the
// passband at which SPL crosses ref-drop on a falling (towards low
// frequencies) trend. Responses with peaks below the passband (ported and
// horn systems) are handled by walking downwards from the passband and
// taking the first crossing encountered.
func CutoffLow(freqs, spl []float64, ref, drop float64) (float64, error) {
	if len(freqs) < 2 || len(freqs) != len(spl) {
		return 0, ErrEmptySweep
	}

	threshold := ref - drop

	// Start from the highest-frequency point at or above the threshold.
	start := -1

	for i := len(spl) - 1; i >= 0; i-- {
		if spl[i] >= threshold {
			start = i
			break
		}
	}

	if start <= 0 {
		return 0, ErrNoCrossing
	}

	for i := start; i > 0; i-- {
		if spl[i-1] < threshold && spl[i] >= threshold {
			return interpolateCrossing(freqs[i-1], freqs[i], spl[i-1], spl[i], threshold), nil
		}
	}

	return 0, ErrNoCrossing
}

// CutoffHigh finds the high-frequency cutoff: the first crossing below
// ref-drop when walking upwards from the passband.
func CutoffHigh(freqs, spl []float64, ref, drop float64) (float64, error) {
	if len(freqs) < 2 || len(freqs) != len(spl) {
		return 0, ErrEmptySweep
	}

	threshold := ref - drop
	start := -1

	for i, v := range spl {
		if v >= threshold {
			start = i
			break
		}
	}

	if start == -1 || start == len(spl)-1 {
		return 0, ErrNoCrossing
	}

	for i := start; i < len(spl)-1; i++ {
		if spl[i] >= threshold && spl[i+1] < threshold {
			return interpolateCrossing(freqs[i], freqs[i+1], spl[i], spl[i+1], threshold), nil
		}
	}

	return 0, ErrNoCrossing
}

// interpolateCrossing finds the threshold crossing between two points by
// linear interpolation in (log f, dB) coordinates.
func interpolateCrossing(f0, f1, v0, v1, threshold float64) float64 {
	if v1 == v0 {
		return f1
	}

	t := (threshold - v0) / (v1 - v0)

	return math.Exp(math.Log(f0) + t*(math.Log(f1)-math.Log(f0)))
}

// Flatness returns the standard deviation of SPL across [flo, fhi] in dB.
// Lower is flatter.
func Flatness(freqs, spl []float64, flo, fhi float64) (float64, error) {
	if len(freqs) == 0 || len(freqs) != len(spl) {
		return 0, ErrEmptySweep
	}

	lo, hi, err := bandIndices(freqs, flo, fhi)
	if err != nil {
		return 0, err
	}

	return stat.StdDev(spl[lo:hi], nil), nil
}

// PeakToPeak returns the SPL span across [flo, fhi] in dB.
func PeakToPeak(freqs, spl []float64, flo, fhi float64) (float64, error) {
	if len(freqs) == 0 || len(freqs) != len(spl) {
		return 0, ErrEmptySweep
	}

	lo, hi, err := bandIndices(freqs, flo, fhi)
	if err != nil {
		return 0, err
	}

	band := spl[lo:hi]

	return floats.Max(band) - floats.Min(band), nil
}

// GroupDelay estimates group delay -dφ/dω from the unwrapped phase of a
// complex response. Returns one value per frequency (endpoints use one-sided
// differences).
func GroupDelay(freqs []float64, h []complex128) ([]float64, error) {
	if len(freqs) < 2 || len(freqs) != len(h) {
		return nil, ErrEmptySweep
	}

	phase := make([]float64, len(h))
	for i, v := range h {
		phase[i] = cmplx.Phase(v)
	}

	unwrap(phase)

	out := make([]float64, len(h))
	for i := range out {
		lo, hi := i-1, i+1

		if lo < 0 {
			lo = 0
		}

		if hi > len(h)-1 {
			hi = len(h) - 1
		}

		dw := 2 * math.Pi * (freqs[hi] - freqs[lo])
		out[i] = -(phase[hi] - phase[lo]) / dw
	}

	return out, nil
}

// unwrap removes 2π discontinuities in place.
func unwrap(phase []float64) {
	offset := 0.0

	for i := 1; i < len(phase); i++ {
		d := phase[i] + offset - phase[i-1]

		for d > math.Pi {
			offset -= 2 * math.Pi
			d -= 2 * math.Pi
		}

		for d < -math.Pi {
			offset += 2 * math.Pi
			d += 2 * math.Pi
		}

		phase[i] += offset
	}
}
