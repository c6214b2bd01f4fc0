package domain

import (
	"fmt"
	"sort"
	"strings"
)

// StreetHourKeyed is implemented by records whose natural identity is the
// composite (street_name, hour) key.
type StreetHourKeyed interface {
	StreetHourKey() (string, int)
}

// Dedup keeps the first record seen per (street_name, hour) key, preserving
// input order. Rows with a blank street name are malformed and dropped before
// keying. Dedup is idempotent: applying it to its own output is a no-op.
func Dedup[T StreetHourKeyed](rows []T) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		street, hour := row.StreetHourKey()
		if strings.TrimSpace(street) == "" {
			continue
		}
		key := fmt.Sprintf("%s|%d", street, hour)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// TrendRow is one hour of the speed-trend matrix: the average speed per
// street, with absent (street, hour) cells zero-filled.
type TrendRow struct {
	Hour   int                `json:"hour"`
	Speeds map[string]float64 `json:"speeds"`
}

// TrendMatrix is the dense hour×street speed matrix for trend charts.
type TrendMatrix struct {
	Streets []string   `json:"streets"`
	Rows    []TrendRow `json:"rows"`
}

// BuildTrendMatrix reshapes flat series points into a dense matrix over the
// distinct hours (ascending) and distinct streets (first-seen order) present
// in the input. Duplicate (street, hour) cells collapse first-wins.
func BuildTrendMatrix(points []SeriesPoint) TrendMatrix {
	points = Dedup(points)

	var streets []string
	seenStreet := make(map[string]struct{})
	hourSet := make(map[int]struct{})
	cells := make(map[string]float64, len(points))

	for _, p := range points {
		if _, ok := seenStreet[p.StreetName]; !ok {
			seenStreet[p.StreetName] = struct{}{}
			streets = append(streets, p.StreetName)
		}
		hourSet[p.Hour] = struct{}{}
		cells[fmt.Sprintf("%s|%d", p.StreetName, p.Hour)] = p.AvgSpeed
	}

	hours := make([]int, 0, len(hourSet))
	for h := range hourSet {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	rows := make([]TrendRow, 0, len(hours))
	for _, h := range hours {
		speeds := make(map[string]float64, len(streets))
		for _, s := range streets {
			speeds[s] = cells[fmt.Sprintf("%s|%d", s, h)]
		}
		rows = append(rows, TrendRow{Hour: h, Speeds: speeds})
	}

	return TrendMatrix{Streets: streets, Rows: rows}
}

// PeakRow is one street's average speed per labeled period. A street missing
// a period keeps that field unset, which is distinct from zero.
type PeakRow struct {
	StreetName string   `json:"street_name"`
	Morning    *float64 `json:"morning,omitempty"`
	Evening    *float64 `json:"evening,omitempty"`
	OffPeak    *float64 `json:"off_peak,omitempty"`
}

// BuildPeakTable groups per-period records into one row per street. Period
// labels are matched after trimming surrounding whitespace.
func BuildPeakTable(records []PeakRecord) []PeakRow {
	var streets []string
	byStreet := make(map[string]*PeakRow)

	for _, rec := range records {
		if strings.TrimSpace(rec.StreetName) == "" {
			continue
		}
		row, ok := byStreet[rec.StreetName]
		if !ok {
			row = &PeakRow{StreetName: rec.StreetName}
			byStreet[rec.StreetName] = row
			streets = append(streets, rec.StreetName)
		}
		speed := rec.PeriodAvgSpeed
		switch strings.TrimSpace(rec.Period) {
		case PeriodMorningPeak:
			row.Morning = &speed
		case PeriodEveningPeak:
			row.Evening = &speed
		case PeriodOffPeak:
			row.OffPeak = &speed
		}
	}

	out := make([]PeakRow, 0, len(streets))
	for _, s := range streets {
		out = append(out, *byStreet[s])
	}
	return out
}

// WeekdayRow is one street's weekday and weekend average speeds.
type WeekdayRow struct {
	StreetName string   `json:"street_name"`
	Weekday    *float64 `json:"weekday,omitempty"`
	Weekend    *float64 `json:"weekend,omitempty"`
}

// BuildWeekdayTable groups weekday/weekend records into one row per street,
// dropping rows with a blank street name.
func BuildWeekdayTable(records []WeekdayRecord) []WeekdayRow {
	var streets []string
	byStreet := make(map[string]*WeekdayRow)

	for _, rec := range records {
		if strings.TrimSpace(rec.StreetName) == "" {
			continue
		}
		row, ok := byStreet[rec.StreetName]
		if !ok {
			row = &WeekdayRow{StreetName: rec.StreetName}
			byStreet[rec.StreetName] = row
			streets = append(streets, rec.StreetName)
		}
		speed := rec.AvgSpeed
		if rec.IsWeekend {
			row.Weekend = &speed
		} else {
			row.Weekday = &speed
		}
	}

	out := make([]WeekdayRow, 0, len(streets))
	for _, s := range streets {
		out = append(out, *byStreet[s])
	}
	return out
}

// TopCongested deduplicates ranked items, orders them by rank ascending, and
// truncates to the top n.
func TopCongested(items []RankedCongestionItem, n int) []RankedCongestionItem {
	out := Dedup(items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// RankVolatility orders volatility records by standard deviation descending
// and truncates to the top n.
func RankVolatility(records []VolatilityRecord, n int) []VolatilityRecord {
	out := make([]VolatilityRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StdDev > out[j].StdDev })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// FilterEfficiencyLoss deduplicates efficiency records and keeps only those
// below the surfacing cutoff.
func FilterEfficiencyLoss(records []EfficiencyRecord) []EfficiencyRecord {
	deduped := Dedup(records)
	out := make([]EfficiencyRecord, 0, len(deduped))
	for _, rec := range deduped {
		if rec.EfficiencyPct < EfficiencyCutoffPct {
			out = append(out, rec)
		}
	}
	return out
}

// FilterAnomalies keeps only deduplicated anomaly rows for the given hour.
func FilterAnomalies(records []AnomalyRecord, hour int) []AnomalyRecord {
	deduped := Dedup(records)
	out := make([]AnomalyRecord, 0, len(deduped))
	for _, rec := range deduped {
		if rec.Hour == hour {
			out = append(out, rec)
		}
	}
	return out
}

// SortGreenRoutes orders free-flow route samples by velocity descending.
func SortGreenRoutes(samples []TrafficSample) []TrafficSample {
	out := make([]TrafficSample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Velocity > out[j].Velocity })
	return out
}
