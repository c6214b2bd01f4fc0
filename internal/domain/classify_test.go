package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCongestion(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		expected CongestionLevel
	}{
		{"standstill", 0, CongestionCritical},
		{"below critical band", 19.9, CongestionCritical},
		{"boundary 20 falls to HIGH", 20, CongestionHigh},
		{"mid high band", 30, CongestionHigh},
		{"boundary 35 falls to NORMAL", 35, CongestionNormal},
		{"mid normal band", 49.9, CongestionNormal},
		{"boundary 50 falls to GOOD", 50, CongestionGood},
		{"free flow", 80, CongestionGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyCongestion(tt.speed))
		})
	}
}

func TestJammed(t *testing.T) {
	assert.True(t, Jammed(19.99))
	assert.True(t, Jammed(0))
	assert.False(t, Jammed(20))
	assert.False(t, Jammed(55))
}

func TestClassifyEfficiency(t *testing.T) {
	tests := []struct {
		name     string
		pct      float64
		expected EfficiencySeverity
	}{
		{"deep loss", 10, EfficiencyCritical},
		{"boundary 25 falls to High", 25, EfficiencyHigh},
		{"high band", 30, EfficiencyHigh},
		{"boundary 35 falls to Moderate", 35, EfficiencyModerate},
		{"just under cutoff", 49.9, EfficiencyModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyEfficiency(tt.pct))
		})
	}
}

func TestForecastDelta(t *testing.T) {
	t.Run("critical drop", func(t *testing.T) {
		drop, danger := ForecastDelta(40, 15)
		assert.InDelta(t, 62.5, drop, 1e-9)
		assert.Equal(t, ForecastCriticalDrop, danger)
	})

	t.Run("moderate drop", func(t *testing.T) {
		drop, danger := ForecastDelta(50, 35)
		assert.InDelta(t, 30, drop, 1e-9)
		assert.Equal(t, ForecastModerateDrop, danger)
	})

	t.Run("slight drop", func(t *testing.T) {
		drop, danger := ForecastDelta(50, 45)
		assert.InDelta(t, 10, drop, 1e-9)
		assert.Equal(t, ForecastSlightDrop, danger)
	})

	t.Run("stable on improvement", func(t *testing.T) {
		drop, danger := ForecastDelta(30, 40)
		assert.Less(t, drop, 0.0)
		assert.Equal(t, ForecastStable, danger)
	})

	t.Run("boundary drops fall to lower band", func(t *testing.T) {
		_, danger := ForecastDelta(100, 50) // exactly 50%
		assert.Equal(t, ForecastModerateDrop, danger)
		_, danger = ForecastDelta(100, 80) // exactly 20%
		assert.Equal(t, ForecastSlightDrop, danger)
		_, danger = ForecastDelta(100, 95) // exactly 5%
		assert.Equal(t, ForecastStable, danger)
	})

	t.Run("zero current yields neutral classification", func(t *testing.T) {
		drop, danger := ForecastDelta(0, 25)
		assert.Zero(t, drop)
		assert.Equal(t, ForecastUnknown, danger)
	})
}

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, -62.5, PercentChange(40, 15), 1e-9)
	assert.InDelta(t, 25, PercentChange(40, 50), 1e-9)
	assert.Zero(t, PercentChange(0, 50))
}

func TestParseReliability(t *testing.T) {
	tests := []struct {
		status   string
		expected Reliability
	}{
		{"Reliable and fast", ReliabilityFastReliable},
		{"Reliable but slow", ReliabilityReliable},
		{"Unstable - erratic speeds", ReliabilityUnstable},
		{"fast", ReliabilityUnknown},
		{"", ReliabilityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseReliability(tt.status))
		})
	}
}

func TestClassifyIntensity(t *testing.T) {
	assert.Equal(t, IntensityHigh, ClassifyIntensity(15.1))
	assert.Equal(t, IntensityMedium, ClassifyIntensity(15))
	assert.Equal(t, IntensityModerate, ClassifyIntensity(10))
	assert.Equal(t, IntensityLow, ClassifyIntensity(5))
	assert.Equal(t, IntensityLow, ClassifyIntensity(0))
}
