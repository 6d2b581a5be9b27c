// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips value to [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval clips value to an interval
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// MovingAverage returns the trailing moving averages of values over a
// window. The first window-1 averages are over the values seen so far.
// A window below 1 is treated as 1.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	avg := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		avg[i] = sum / math.Min(float64(i+1), float64(window))
	}
	return avg
}
