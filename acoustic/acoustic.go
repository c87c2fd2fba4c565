// Package acoustic provides the physical constants, medium properties and
// unit conversions shared by the enclosure simulation packages.
package acoustic

import "math"

// RefPressure is the reference sound pressure for SPL in Pa (20 µPa).
const RefPressure = 20e-6

// Medium describes the acoustic propagation medium. All models take a Medium
// so that tests can pin air properties instead of relying on ambient
// conditions.
type Medium struct {
	Density      float64 // kg/m³
	SpeedOfSound float64 // m/s
}

// Air returns standard air at 20 °C and 1 atm.
func Air() Medium {
	return Medium{
		Density:      1.205,
		SpeedOfSound: 344.0,
	}
}

// Wavenumber returns k = 2πf/c in rad/m.
func (m Medium) Wavenumber(freq float64) float64 {
	return 2 * math.Pi * freq / m.SpeedOfSound
}

// Impedance returns the characteristic impedance ρc in Pa·s/m.
func (m Medium) Impedance() float64 {
	return m.Density * m.SpeedOfSound
}

// AngularFrequency returns ω = 2πf.
func AngularFrequency(freq float64) float64 {
	return 2 * math.Pi * freq
}

// LitersToCubicMeters converts a volume in liters to m³.
func LitersToCubicMeters(liters float64) float64 {
	return liters * 1e-3
}

// CubicMetersToLiters converts a volume in m³ to liters.
func CubicMetersToLiters(volume float64) float64 {
	return volume * 1e3
}

// SquareCentimetersToSquareMeters converts an area in cm² to m².
func SquareCentimetersToSquareMeters(area float64) float64 {
	return area * 1e-4
}

// SquareMetersToSquareCentimeters converts an area in m² to cm².
func SquareMetersToSquareCentimeters(area float64) float64 {
	return area * 1e4
}

// PressureToSPL converts a pressure magnitude in Pa to dB SPL.
// Returns -Inf for zero pressure.
func PressureToSPL(pressure float64) float64 {
	if pressure <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(pressure/RefPressure)
}
