package domain

import "strings"

// CongestionLevel is the four-band city congestion label.
type CongestionLevel string

const (
	CongestionGood     CongestionLevel = "GOOD"
	CongestionNormal   CongestionLevel = "NORMAL"
	CongestionHigh     CongestionLevel = "HIGH"
	CongestionCritical CongestionLevel = "CRITICAL"
)

// JamSpeedThreshold is the km/h cutoff below which a road counts as jammed.
const JamSpeedThreshold = 20.0

// ClassifyCongestion maps an average speed to a congestion level. Thresholds
// are exclusive lower bounds: boundary values fall to the next lower band
// (20 km/h classifies HIGH, not CRITICAL).
func ClassifyCongestion(avgSpeed float64) CongestionLevel {
	switch {
	case avgSpeed < 20:
		return CongestionCritical
	case avgSpeed < 35:
		return CongestionHigh
	case avgSpeed < 50:
		return CongestionNormal
	default:
		return CongestionGood
	}
}

// Jammed reports whether a single sample speed counts as heavy traffic.
func Jammed(speed float64) bool {
	return speed < JamSpeedThreshold
}

// EfficiencySeverity labels surfaced efficiency-loss records. Records at or
// above 50% efficiency are excluded upstream and never classified.
type EfficiencySeverity string

const (
	EfficiencyCritical EfficiencySeverity = "Critical"
	EfficiencyHigh     EfficiencySeverity = "High"
	EfficiencyModerate EfficiencySeverity = "Moderate"
)

// EfficiencyCutoffPct is the surfacing cutoff: only records below it appear
// in the efficiency-loss view.
const EfficiencyCutoffPct = 50.0

// ClassifyEfficiency maps an efficiency percentage to its severity label.
func ClassifyEfficiency(pct float64) EfficiencySeverity {
	switch {
	case pct < 25:
		return EfficiencyCritical
	case pct < 35:
		return EfficiencyHigh
	default:
		return EfficiencyModerate
	}
}

// ForecastDanger labels the predicted speed change for the next hour.
type ForecastDanger string

const (
	ForecastCriticalDrop ForecastDanger = "Critical Drop"
	ForecastModerateDrop ForecastDanger = "Moderate Drop"
	ForecastSlightDrop   ForecastDanger = "Slight Drop"
	ForecastStable       ForecastDanger = "Stable"
	// ForecastUnknown is the neutral classification when the current speed is
	// zero and a drop percentage cannot be computed.
	ForecastUnknown ForecastDanger = "Unknown"
)

// ForecastDelta returns the percentage drop from current to predicted speed
// and its danger classification. A zero current speed yields (0, Unknown)
// rather than a division fault.
func ForecastDelta(current, predicted float64) (float64, ForecastDanger) {
	if current == 0 {
		return 0, ForecastUnknown
	}
	drop := (current - predicted) / current * 100
	switch {
	case drop > 50:
		return drop, ForecastCriticalDrop
	case drop > 20:
		return drop, ForecastModerateDrop
	case drop > 5:
		return drop, ForecastSlightDrop
	default:
		return drop, ForecastStable
	}
}

// PercentChange returns the signed percent change from current to predicted
// speed, or 0 when current is zero.
func PercentChange(current, predicted float64) float64 {
	if current == 0 {
		return 0
	}
	return (predicted - current) / current * 100
}

// Reliability is the closed set of road reliability states. The backend
// transports free-form status strings; ParseReliability folds them into this
// enum once so downstream code never pattern-matches substrings.
type Reliability int

const (
	ReliabilityUnknown Reliability = iota
	ReliabilityFastReliable
	ReliabilityReliable
	ReliabilityUnstable
)

// ParseReliability classifies an upstream status string. Dispatch is by
// substring containment, matching upstream conventions: a status mentioning
// both "Reliable" and "fast" outranks a plain "Reliable".
func ParseReliability(status string) Reliability {
	switch {
	case strings.Contains(status, "Reliable") && strings.Contains(status, "fast"):
		return ReliabilityFastReliable
	case strings.Contains(status, "Reliable"):
		return ReliabilityReliable
	case strings.Contains(status, "Unstable"):
		return ReliabilityUnstable
	default:
		return ReliabilityUnknown
	}
}

func (r Reliability) String() string {
	switch r {
	case ReliabilityFastReliable:
		return "fast_reliable"
	case ReliabilityReliable:
		return "reliable"
	case ReliabilityUnstable:
		return "unstable"
	default:
		return "unknown"
	}
}

// IntensityBand is the heat-map legend band for a point's intensity.
type IntensityBand string

const (
	IntensityHigh     IntensityBand = "high"
	IntensityMedium   IntensityBand = "medium"
	IntensityModerate IntensityBand = "moderate"
	IntensityLow      IntensityBand = "low"
)

// ClassifyIntensity maps a raw intensity value to its legend band.
func ClassifyIntensity(intensity float64) IntensityBand {
	switch {
	case intensity > 15:
		return IntensityHigh
	case intensity > 10:
		return IntensityMedium
	case intensity > 5:
		return IntensityModerate
	default:
		return IntensityLow
	}
}
