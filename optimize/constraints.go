package optimize

// Constraint is a signed design requirement: Eval returns the violation
// amount, zero or negative when satisfied. The evaluator sums the positive
// parts into the total violation used by constraint domination.
type Constraint struct {
	Name string
	Eval func(e *Evaluation) float64
}

// ExcursionLimit keeps the peak diaphragm excursion across the sweep within
// limit meters, typically the driver Xmax.
func ExcursionLimit(limit float64) Constraint {
	return Constraint{
		Name: "excursion",
		Eval: func(e *Evaluation) float64 {
			return e.Sweep.MaxExcursion() - limit
		},
	}
}

// PortVelocityLimit keeps the peak port air velocity below limit m/s, the
// usual chuffing threshold being 5 to 10 percent of the speed of sound.
func PortVelocityLimit(limit float64) Constraint {
	return Constraint{
		Name: "port velocity",
		Eval: func(e *Evaluation) float64 {
			return e.Sweep.MaxPortVelocity() - limit
		},
	}
}

// QtcBand keeps the closed-box total Q between min and max. Designs without
// a Qtc (ported, horn) satisfy it trivially.
func QtcBand(min, max float64) Constraint {
	return Constraint{
		Name: "qtc",
		Eval: func(e *Evaluation) float64 {
			qtc := e.Design.Qtc
			if qtc == 0 {
				return 0
			}

			low := min - qtc
			high := qtc - max

			if low > high {
				return low
			}

			return high
		},
	}
}

// VolumeCap keeps the total enclosure volume below limit m³.
func VolumeCap(limit float64) Constraint {
	return Constraint{
		Name: "volume",
		Eval: func(e *Evaluation) float64 {
			return e.Design.Volume - limit
		},
	}
}
