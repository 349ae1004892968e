// Package cost prices transcription work by billed audio minutes.
package cost

import (
	"errors"
	"time"
)

// Parameter errors.
var (
	ErrNegativeDuration = errors.New("cost: negative duration")
	ErrNegativeRate     = errors.New("cost: negative rate")
)

// Estimate is the projected spend for a set of recordings.
type Estimate struct {
	TotalMinutes  float64
	RatePerMinute float64
	TotalCost     float64
}

// Compute sums the given durations and prices them at ratePerMinute
// dollars per audio minute. Cost scales linearly with total duration; a
// zero rate yields a zero cost.
func Compute(durations []time.Duration, ratePerMinute float64) (Estimate, error) {
	if ratePerMinute < 0 {
		return Estimate{}, ErrNegativeRate
	}

	var total time.Duration
	for _, d := range durations {
		if d < 0 {
			return Estimate{}, ErrNegativeDuration
		}
		total += d
	}

	minutes := total.Minutes()
	return Estimate{
		TotalMinutes:  minutes,
		RatePerMinute: ratePerMinute,
		TotalCost:     minutes * ratePerMinute,
	}, nil
}

// Hours returns the total duration in hours.
func (e Estimate) Hours() float64 {
	return e.TotalMinutes / 60
}
