package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TrafficSample is one raw per-road, per-hour speed measurement as delivered
// by the backend. Samples are immutable; every derived view is recomputed
// from the latest batch on each refresh cycle.
type TrafficSample struct {
	StreetName string  `json:"street_name"`
	Hour       int     `json:"hour"`
	Velocity   float64 `json:"velocity"`
	Lat        float64 `json:"lat"`
	Long       float64 `json:"long"`
}

// SeriesPoint is one (street, hour) cell of the speed-trend series.
type SeriesPoint struct {
	StreetName       string  `json:"street_name"`
	Hour             int     `json:"hour"`
	AvgSpeed         float64 `json:"avg_speed"`
	MaxSpeedObserved float64 `json:"max_speed_observed,omitempty"`
}

// CongestionSnapshot summarizes city-wide traffic for a single hour.
type CongestionSnapshot struct {
	Hour             int             `json:"hour"`
	CityAvgSpeed     float64         `json:"city_avg_speed"`
	TotalActiveRoads int             `json:"total_active_roads"`
	JammedRoadsCount int             `json:"jammed_roads_count"`
	CongestionLevel  CongestionLevel `json:"congestion_level"`
}

// EfficiencyRecord compares a road's current speed against its estimated
// maximum potential. Only records below the surfacing cutoff (50%) are kept;
// the severity label is derived at read time, never stored.
type EfficiencyRecord struct {
	StreetName    string  `json:"street_name"`
	Hour          int     `json:"hour"`
	Velocity      float64 `json:"velocity"`
	MaxPotential  float64 `json:"max_potential"`
	EfficiencyPct float64 `json:"efficiency_pct"`
}

// AnomalyRecord flags a road whose current speed deviates from its daily
// average. Only rows for the current hour are surfaced.
type AnomalyRecord struct {
	StreetName string  `json:"street_name"`
	Hour       int     `json:"hour"`
	Velocity   float64 `json:"velocity"`
	DailyAvg   float64 `json:"daily_avg"`
	Alert      string  `json:"alert"`
}

// ForecastRecord carries the backend's next-hour speed prediction for a road.
// Danger classification and percent change are derived, not stored.
type ForecastRecord struct {
	StreetName             string  `json:"street_name"`
	Hour                   int     `json:"hour"`
	Velocity               float64 `json:"velocity"`
	PredictedSpeedNextHour float64 `json:"predicted_speed_next_hour"`
}

// VolatilityRecord describes how erratic a road's speed samples are.
type VolatilityRecord struct {
	StreetName        string  `json:"street_name"`
	StdDev            float64 `json:"std_dev"`
	Avg               float64 `json:"avg"`
	ReliabilityStatus string  `json:"reliability_status"`
}

// Peak period labels as emitted by the backend. Matching trims surrounding
// whitespace; see BuildPeakTable.
const (
	PeriodMorningPeak = "Morning Peak"
	PeriodEveningPeak = "Evening Peak"
	PeriodOffPeak     = "Off-Peak"
)

// PeakRecord is one (street, period) average produced by the backend.
type PeakRecord struct {
	StreetName     string  `json:"street_name"`
	Period         string  `json:"period"`
	PeriodAvgSpeed float64 `json:"period_avg_speed"`
}

// WeekdayRecord is one (street, weekend-flag) average.
type WeekdayRecord struct {
	StreetName string      `json:"street_name"`
	Hour       int         `json:"hour"`
	IsWeekend  WeekendFlag `json:"is_weekend"`
	AvgSpeed   float64     `json:"avg_speed"`
}

// WeekendFlag is a boolean that also accepts the string encodings "Weekend"
// and "Weekday" seen in one of the upstream sources.
type WeekendFlag bool

// UnmarshalJSON accepts true/false as well as "Weekend"/"Weekday".
func (w *WeekendFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*w = WeekendFlag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse weekend flag %q: %w", data, err)
	}
	switch strings.TrimSpace(s) {
	case "Weekend":
		*w = true
	case "Weekday":
		*w = false
	default:
		return fmt.Errorf("parse weekend flag: unknown value %q", s)
	}
	return nil
}

// MarshalJSON always emits the boolean encoding.
func (w WeekendFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(w))
}

// HeatmapPoint is one raw spatial sample for the heat-intensity field.
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
	Speed     float64 `json:"speed"`
	Intensity float64 `json:"intensity"`
}

// RankedCongestionItem is one row of the most-congested-roads ranking.
type RankedCongestionItem struct {
	StreetName string  `json:"street_name"`
	Hour       int     `json:"hour"`
	Velocity   float64 `json:"velocity"`
	Rank       int     `json:"rank"`
	Lat        float64 `json:"lat"`
	Long       float64 `json:"long"`
}

// StreetHourKey implementations identify records by the natural composite key
// used for deduplication.

func (p SeriesPoint) StreetHourKey() (string, int)          { return p.StreetName, p.Hour }
func (r EfficiencyRecord) StreetHourKey() (string, int)     { return r.StreetName, r.Hour }
func (a AnomalyRecord) StreetHourKey() (string, int)        { return a.StreetName, a.Hour }
func (f ForecastRecord) StreetHourKey() (string, int)       { return f.StreetName, f.Hour }
func (i RankedCongestionItem) StreetHourKey() (string, int) { return i.StreetName, i.Hour }
