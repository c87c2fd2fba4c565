package enclosure

import "github.com/cwbudde/algo-speaker/acoustic"

// Config defines the simulation conditions common to all enclosure models.
// Calibration lives here explicitly; there are no package-level tuning
// globals.
type Config struct {
	Voltage  float64 // drive voltage, V RMS
	Distance float64 // measuring distance, m
	BoxQ     float64 // enclosure loss quality factor Ql
	PortQ    float64 // port loss quality factor Qp
	Strategy Strategy
	Medium   acoustic.Medium
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the conventional simulation conditions: 2.83 V
// (1 W into 8 Ω) at 1 m, Ql = Qp = 7, circuit strategy, standard air.
func DefaultConfig() Config {
	return Config{
		Voltage:  2.83,
		Distance: 1,
		BoxQ:     7,
		PortQ:    7,
		Strategy: StrategyCircuit,
		Medium:   acoustic.Air(),
	}
}

// WithVoltage sets the drive voltage in V RMS.
func WithVoltage(voltage float64) Option {
	return func(cfg *Config) {
		if voltage > 0 {
			cfg.Voltage = voltage
		}
	}
}

// WithDistance sets the measuring distance in m.
func WithDistance(distance float64) Option {
	return func(cfg *Config) {
		if distance > 0 {
			cfg.Distance = distance
		}
	}
}

// WithBoxQ sets the enclosure loss quality factor Ql.
func WithBoxQ(q float64) Option {
	return func(cfg *Config) {
		if q > 0 {
			cfg.BoxQ = q
		}
	}
}

// WithPortQ sets the port loss quality factor Qp.
func WithPortQ(q float64) Option {
	return func(cfg *Config) {
		if q > 0 {
			cfg.PortQ = q
		}
	}
}

// WithStrategy selects the impedance-computation strategy.
func WithStrategy(s Strategy) Option {
	return func(cfg *Config) {
		cfg.Strategy = s
	}
}

// WithMedium sets the acoustic medium.
func WithMedium(m acoustic.Medium) Option {
	return func(cfg *Config) {
		if m.Density > 0 && m.SpeedOfSound > 0 {
			cfg.Medium = m
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
