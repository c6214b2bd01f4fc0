// Package domain models urban road-traffic telemetry and the pure derivation
// algorithms behind the operational dashboard.
//
// # Data Source
//
// Raw rows arrive from the traffic backend once per refresh cycle, one
// logical resource per dashboard view (speed series, heat-map points, peak
// and weekday aggregates, forecasts, anomaly and volatility reports). Every
// derived view is recomputed wholesale from the latest batch; there is no
// incremental merge.
//
// # Keys and Deduplication
//
// The natural identity of nearly every record is the composite
// (street_name, hour) key, or (street_name, period) for peak data. Duplicate
// keys in raw input collapse to the first record seen, never averaged or
// summed. Rows with a blank street name are malformed and silently dropped.
//
// # Classification Bands
//
// All classifiers are total step functions with exclusive lower bounds;
// boundary values fall to the next lower band:
//
//	Congestion (avg km/h):   <20 CRITICAL | <35 HIGH | <50 NORMAL | else GOOD
//	Jammed road:             sample speed < 20 km/h
//	Efficiency (% of max):   <25 Critical | <35 High | else Moderate (view cutoff <50)
//	Forecast drop (%):       >50 Critical | >20 Moderate | >5 Slight | else Stable
//	Heat intensity:          >15 high | >10 medium | >5 moderate | else low
//
// A zero current speed makes the forecast drop undefined; classification
// falls back to the neutral Unknown state instead of propagating NaN.
//
// # Reliability Status
//
// The backend transports road reliability as a free-form string ("Reliable
// but slow", "Unstable", "Reliable and fast"). ParseReliability folds it into
// a closed enum by substring containment ("Reliable" plus "fast" outranks
// plain "Reliable") so downstream code compares enum values, not substrings.
//
// # Spatial Field
//
// The heat-map bounds always contain the default central Ho Chi Minh City
// envelope (lat 10.776-10.820, long 106.680-106.700), so an empty batch
// still produces a usable viewport. Point intensity is normalized against
// the batch maximum with the denominator floored at 1.
package domain
