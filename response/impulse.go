package response

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ErrShortSpectrum is returned when a one-sided spectrum has fewer than two
// bins.
var ErrShortSpectrum = errors.New("response: spectrum needs at least two bins")

// ImpulseEstimate synthesizes a time-domain impulse-response estimate from a
// one-sided complex frequency response sampled on a linear grid (bin 0 = DC,
// last bin = Nyquist). The spectrum is mirrored with conjugate symmetry and
// transformed with an inverse FFT; the result is real by construction.
//
// This is a preview facility for plotting layers, not a measurement: the
// models produce steady-state responses and the linear grid resolution
// bounds the usable time window.
func ImpulseEstimate(h []complex128) ([]float64, error) {
	if len(h) < 2 {
		return nil, ErrShortSpectrum
	}

	fftSize := 2 * (len(h) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("response: failed to create FFT plan: %w", err)
	}

	full := make([]complex128, fftSize)
	copy(full, h)

	for i := 1; i < len(h)-1; i++ {
		full[fftSize-i] = complex(real(h[i]), -imag(h[i]))
	}

	out := make([]complex128, fftSize)
	if err := plan.Inverse(out, full); err != nil {
		return nil, fmt.Errorf("response: inverse FFT failed: %w", err)
	}

	result := make([]float64, fftSize)
	for i, v := range out {
		result[i] = real(v)
	}

	return result, nil
}
