package domain

import "math"

// Default viewport envelope (central Ho Chi Minh City). The computed bounds
// always contain this box, so an empty point set still yields a sane map.
const (
	DefaultMinLat  = 10.776
	DefaultMaxLat  = 10.820
	DefaultMinLong = 106.680
	DefaultMaxLong = 106.700

	// minCoordRange floors a degenerate axis range so projection never
	// divides by zero.
	minCoordRange = 0.1
)

// Bounds is the lat/long envelope of a heat-map batch.
type Bounds struct {
	MinLat  float64 `json:"min_lat"`
	MaxLat  float64 `json:"max_lat"`
	MinLong float64 `json:"min_long"`
	MaxLong float64 `json:"max_long"`
}

// LatRange returns the latitude span, floored at minCoordRange.
func (b Bounds) LatRange() float64 {
	if r := b.MaxLat - b.MinLat; r > 0 {
		return r
	}
	return minCoordRange
}

// LongRange returns the longitude span, floored at minCoordRange.
func (b Bounds) LongRange() float64 {
	if r := b.MaxLong - b.MinLong; r > 0 {
		return r
	}
	return minCoordRange
}

// HeatBounds computes the envelope of all points, expanded to contain the
// default viewport box.
func HeatBounds(points []HeatmapPoint) Bounds {
	b := Bounds{
		MinLat:  DefaultMinLat,
		MaxLat:  DefaultMaxLat,
		MinLong: DefaultMinLong,
		MaxLong: DefaultMaxLong,
	}
	for _, p := range points {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLong = math.Min(b.MinLong, p.Long)
		b.MaxLong = math.Max(b.MaxLong, p.Long)
	}
	return b
}

// MappedPoint is a heat-map point with its display-normalized intensity
// ratio and legend band.
type MappedPoint struct {
	HeatmapPoint
	Ratio float64       `json:"ratio"`
	Band  IntensityBand `json:"band"`
}

// HeatField is the complete derived heat-intensity field for one batch.
type HeatField struct {
	Bounds Bounds        `json:"bounds"`
	Points []MappedPoint `json:"points"`
}

// BuildHeatField maps raw points into a display-normalized field: one output
// point per input sample, intensity ratio relative to the batch maximum. The
// denominator floors at 1 so an all-zero batch normalizes without dividing
// by zero. No binning or clustering is performed.
func BuildHeatField(points []HeatmapPoint) HeatField {
	maxIntensity := 1.0
	for _, p := range points {
		maxIntensity = math.Max(maxIntensity, p.Intensity)
	}

	mapped := make([]MappedPoint, 0, len(points))
	for _, p := range points {
		mapped = append(mapped, MappedPoint{
			HeatmapPoint: p,
			Ratio:        p.Intensity / maxIntensity,
			Band:         ClassifyIntensity(p.Intensity),
		})
	}

	return HeatField{Bounds: HeatBounds(points), Points: mapped}
}
