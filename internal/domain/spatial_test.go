package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeatBounds(t *testing.T) {
	t.Run("empty set yields default viewport", func(t *testing.T) {
		b := HeatBounds(nil)
		assert.Equal(t, DefaultMinLat, b.MinLat)
		assert.Equal(t, DefaultMaxLat, b.MaxLat)
		assert.Equal(t, DefaultMinLong, b.MinLong)
		assert.Equal(t, DefaultMaxLong, b.MaxLong)
	})

	t.Run("bounds expand beyond default box", func(t *testing.T) {
		points := []HeatmapPoint{
			{Lat: 10.700, Long: 106.650},
			{Lat: 10.900, Long: 106.750},
		}
		b := HeatBounds(points)
		assert.Equal(t, 10.700, b.MinLat)
		assert.Equal(t, 10.900, b.MaxLat)
		assert.Equal(t, 106.650, b.MinLong)
		assert.Equal(t, 106.750, b.MaxLong)
	})

	t.Run("points inside box keep default envelope", func(t *testing.T) {
		points := []HeatmapPoint{{Lat: 10.800, Long: 106.690}}
		b := HeatBounds(points)
		assert.Equal(t, DefaultMinLat, b.MinLat)
		assert.Equal(t, DefaultMaxLat, b.MaxLat)
	})
}

func TestBounds_RangeFloors(t *testing.T) {
	b := Bounds{MinLat: 10.8, MaxLat: 10.8, MinLong: 106.7, MaxLong: 106.7}
	assert.Equal(t, 0.1, b.LatRange())
	assert.Equal(t, 0.1, b.LongRange())

	b = HeatBounds(nil)
	assert.InDelta(t, 0.044, b.LatRange(), 1e-9)
	assert.InDelta(t, 0.020, b.LongRange(), 1e-9)
}

func TestBuildHeatField(t *testing.T) {
	t.Run("ratios normalized to batch max", func(t *testing.T) {
		points := []HeatmapPoint{
			{Lat: 10.78, Long: 106.69, Speed: 12, Intensity: 20},
			{Lat: 10.79, Long: 106.69, Speed: 30, Intensity: 10},
			{Lat: 10.80, Long: 106.69, Speed: 50, Intensity: 4},
		}

		field := BuildHeatField(points)

		require.Len(t, field.Points, 3)
		assert.Equal(t, 1.0, field.Points[0].Ratio)
		assert.Equal(t, 0.5, field.Points[1].Ratio)
		assert.Equal(t, 0.2, field.Points[2].Ratio)
		for _, p := range field.Points {
			assert.GreaterOrEqual(t, p.Ratio, 0.0)
			assert.LessOrEqual(t, p.Ratio, 1.0)
		}

		assert.Equal(t, IntensityHigh, field.Points[0].Band)
		assert.Equal(t, IntensityModerate, field.Points[1].Band)
		assert.Equal(t, IntensityLow, field.Points[2].Band)
	})

	t.Run("all-zero intensities divide safely", func(t *testing.T) {
		points := []HeatmapPoint{
			{Lat: 10.78, Long: 106.69},
			{Lat: 10.79, Long: 106.69},
		}

		field := BuildHeatField(points)

		require.Len(t, field.Points, 2)
		for _, p := range field.Points {
			assert.Equal(t, 0.0, p.Ratio)
		}
	})

	t.Run("one output point per input sample", func(t *testing.T) {
		points := make([]HeatmapPoint, 7)
		field := BuildHeatField(points)
		assert.Len(t, field.Points, len(points))
	})
}
