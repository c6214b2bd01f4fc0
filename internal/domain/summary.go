package domain

import (
	"sort"
	"strings"
)

// CitySummary is the derived city-health view: one snapshot per hour present
// in the input plus the current (most recent hour) snapshot.
type CitySummary struct {
	Hours   []CongestionSnapshot `json:"hours"`
	Current CongestionSnapshot   `json:"current"`
}

// SummarizeCity aggregates raw samples into per-hour congestion snapshots,
// ordered by hour ascending. The city average is the mean sample velocity,
// active roads the number of distinct streets observed that hour, and the
// jammed count includes every sample below the jam threshold. Samples with a
// blank street name are dropped as malformed.
func SummarizeCity(samples []TrafficSample) []CongestionSnapshot {
	type bucket struct {
		total   float64
		count   int
		jammed  int
		streets map[string]struct{}
	}

	byHour := make(map[int]*bucket)
	for _, s := range samples {
		if strings.TrimSpace(s.StreetName) == "" {
			continue
		}
		b, ok := byHour[s.Hour]
		if !ok {
			b = &bucket{streets: make(map[string]struct{})}
			byHour[s.Hour] = b
		}
		b.total += s.Velocity
		b.count++
		b.streets[s.StreetName] = struct{}{}
		if Jammed(s.Velocity) {
			b.jammed++
		}
	}

	hours := make([]int, 0, len(byHour))
	for h := range byHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)

	out := make([]CongestionSnapshot, 0, len(hours))
	for _, h := range hours {
		b := byHour[h]
		avg := b.total / float64(b.count)
		out = append(out, CongestionSnapshot{
			Hour:             h,
			CityAvgSpeed:     avg,
			TotalActiveRoads: len(b.streets),
			JammedRoadsCount: b.jammed,
			CongestionLevel:  ClassifyCongestion(avg),
		})
	}
	return out
}

// BuildCitySummary derives the full city-health view from raw samples.
// The second return is false when no snapshot could be computed.
func BuildCitySummary(samples []TrafficSample) (CitySummary, bool) {
	snaps := SummarizeCity(samples)
	current, ok := CurrentSnapshot(snaps)
	if !ok {
		return CitySummary{}, false
	}
	return CitySummary{Hours: snaps, Current: current}, true
}

// CurrentSnapshot selects the snapshot for the most recent hour present.
func CurrentSnapshot(snaps []CongestionSnapshot) (CongestionSnapshot, bool) {
	if len(snaps) == 0 {
		return CongestionSnapshot{}, false
	}
	current := snaps[0]
	for _, s := range snaps[1:] {
		if s.Hour > current.Hour {
			current = s
		}
	}
	return current, true
}
