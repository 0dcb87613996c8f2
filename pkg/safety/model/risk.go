package model

import "math"

// RiskBands holds the lower bounds of the LOW, MEDIUM, HIGH and CRITICAL bands.
// Bands are contiguous: a score below Low is SAFE and every other score falls
// into exactly one band.
type RiskBands struct {
	Low      float64
	Medium   float64
	High     float64
	Critical float64
}

// Band maps a score onto a RiskLevel, evaluating the highest band first.
func (b RiskBands) Band(score float64) RiskLevel {
	switch {
	case score >= b.Critical:
		return RiskCritical
	case score >= b.High:
		return RiskHigh
	case score >= b.Medium:
		return RiskMedium
	case score >= b.Low:
		return RiskLow
	default:
		return RiskSafe
	}
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
