// Package struve provides the Struve function H₁ and the normalized baffled
// piston impedance functions built from it. The direct Bessel/Struve forms of
// the piston functions cancel catastrophically near zero argument, so the
// small-argument paths use power series instead.
package struve

import "math"

// H1 returns the Struve function of order one, H₁(x), for x >= 0.
// Negative arguments use the even symmetry H₁(-x) = H₁(x).
//
// The ascending power series is used up to x = 16; beyond that the
// asymptotic expansion H₁(x) ≈ Y₁(x) + (2/π)(1 + 1/x² - 3/x⁴) takes over.
func H1(x float64) float64 {
	x = math.Abs(x)

	if x <= 16 {
		return h1Series(x)
	}

	ix2 := 1 / (x * x)

	return math.Y1(x) + (2/math.Pi)*(1+ix2-3*ix2*ix2)
}

// h1Series evaluates the ascending series
//
//	H₁(x) = Σ_k (-1)^k (x/2)^(2k+2) / (Γ(k+3/2)·Γ(k+5/2))
//
// via the term recurrence t_{k+1} = -t_k·(x/2)²/((k+3/2)(k+5/2)). The
// alternating series is fully converged in double precision for x <= 16.
func h1Series(x float64) float64 {
	term := 2 * x * x / (3 * math.Pi)
	sum := term
	q := x * x / 4

	for k := 0; k < 60; k++ {
		term *= -q / ((float64(k) + 1.5) * (float64(k) + 2.5))
		sum += term

		if math.Abs(term) < 1e-17*math.Abs(sum) {
			break
		}
	}

	return sum
}

// PistonResistance returns 1 - 2·J₁(z)/z, the normalized resistive part of
// the baffled piston radiation impedance evaluated at z = 2ka.
//
// For small z the direct form cancels (2·J₁(z)/z → 1), so the series
// z²/8 - z⁴/192 + z⁶/9216 - ... is used instead.
func PistonResistance(z float64) float64 {
	z = math.Abs(z)

	if z == 0 {
		return 0
	}

	if z < 1 {
		q := z * z / 4
		term := q / 2
		sum := term

		for k := 2; k < 30; k++ {
			term *= -q / (float64(k) * float64(k+1))
			sum += term

			if math.Abs(term) < 1e-17*math.Abs(sum) {
				break
			}
		}

		return sum
	}

	return 1 - 2*math.J1(z)/z
}

// PistonReactance returns 2·H₁(z)/z, the normalized reactive part of the
// baffled piston radiation impedance evaluated at z = 2ka. Its small-z limit
// 8z/(3π) corresponds to the classic 8ρa³/3 radiation mass.
func PistonReactance(z float64) float64 {
	z = math.Abs(z)

	if z == 0 {
		return 0
	}

	return 2 * H1(z) / z
}
