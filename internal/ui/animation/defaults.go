package animation

import "time"

// DefaultConfig returns the stage animation timings.
func DefaultConfig() Config {
	return Config{
		RippleLifetime:    time.Second,
		RippleStartRadius: 4,
		RippleEndRadius:   28,
		PulseOn: Range{
			Min: 450 * time.Millisecond,
			Max: 550 * time.Millisecond,
		},
		PulseOff: Range{
			Min: 150 * time.Millisecond,
			Max: 250 * time.Millisecond,
		},
	}
}
