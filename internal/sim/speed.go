package sim

import "time"

const (
	MinSpeed = 0
	MaxSpeed = 100

	// DefaultSpeed gives a 500ms interval.
	DefaultSpeed = 90

	slowestInterval = 5000 * time.Millisecond
	speedStep       = 50 * time.Millisecond
)

// IntervalForSpeed maps a speed in [MinSpeed, MaxSpeed] to the pause between
// generations. 0 is the slowest (5s); each unit shaves 50ms, so MaxSpeed runs
// with no delay at all. Values outside the range are clamped.
func IntervalForSpeed(speed int) time.Duration {
	speed = min(max(speed, MinSpeed), MaxSpeed)
	if speed == 0 {
		return slowestInterval
	}
	return slowestInterval - time.Duration(speed)*speedStep
}
