package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/citypulse/traffic-dashboard/internal/domain"
	"github.com/citypulse/traffic-dashboard/internal/observability"
)

// FallbackStore is the secondary source queried when the primary API fails
// or returns no rows.
type FallbackStore interface {
	QueryView(ctx context.Context, q FallbackQuery) ([]json.RawMessage, error)
}

// Fetcher runs the dual-source fetch protocol: primary API first, fallback
// store second, Empty last. It never lets a failure escape as an error; the
// boolean result distinguishes "rows (possibly none)" from "no update this
// cycle".
type Fetcher struct {
	client   *Client
	fallback FallbackStore // nil disables the fallback path
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewFetcher wires a primary client and an optional fallback store.
func NewFetcher(client *Client, fallback FallbackStore, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		client:   client,
		fallback: fallback,
		logger:   logger,
		metrics:  metrics,
	}
}

// fetchView implements the protocol shared by all views:
//
//   - primary success with rows        -> rows, true
//   - primary empty, fallback success  -> fallback rows (may be none), true
//   - primary empty, no fallback       -> no rows, true
//   - both sources failed              -> Empty: nil, false (keep previous)
//
// Individual rows that fail to decode are malformed and dropped, never fatal
// to the batch.
func fetchView[T any](ctx context.Context, f *Fetcher, view View, filter Filter) ([]T, bool) {
	rows, err := fetchPrimary[T](ctx, f, view, filter)
	if err == nil && len(rows) > 0 {
		f.metrics.RowsFetched.WithLabelValues(string(view)).Observe(float64(len(rows)))
		return rows, true
	}
	if err != nil {
		f.metrics.SourceFetches.WithLabelValues(string(view), "primary", "error").Inc()
		f.logger.Warn("primary fetch failed", "view", view, "error", err)
	} else {
		f.metrics.SourceFetches.WithLabelValues(string(view), "primary", "empty").Inc()
	}

	if f.fallback == nil {
		if err != nil {
			return nil, false
		}
		return rows, true
	}

	fbRows, fbErr := fetchFallback[T](ctx, f, view)
	if fbErr != nil {
		f.metrics.SourceFetches.WithLabelValues(string(view), "fallback", "error").Inc()
		f.logger.Warn("fallback fetch failed", "view", view, "error", fbErr)
		return nil, false
	}
	f.metrics.RowsFetched.WithLabelValues(string(view)).Observe(float64(len(fbRows)))
	return fbRows, true
}

func fetchPrimary[T any](ctx context.Context, f *Fetcher, view View, filter Filter) ([]T, error) {
	start := time.Now()
	body, err := f.client.Get(ctx, view, filter)
	f.metrics.FetchDuration.WithLabelValues("primary").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}
	rows := decodeRows[T](f, view, raws)
	f.metrics.SourceFetches.WithLabelValues(string(view), "primary", "success").Inc()
	return rows, nil
}

func fetchFallback[T any](ctx context.Context, f *Fetcher, view View) ([]T, error) {
	start := time.Now()
	raws, err := f.fallback.QueryView(ctx, fallbackQueries[view])
	f.metrics.FetchDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	rows := decodeRows[T](f, view, raws)
	f.metrics.SourceFetches.WithLabelValues(string(view), "fallback", "success").Inc()
	return rows, nil
}

// decodeRows unmarshals each row independently so one malformed row cannot
// poison the batch.
func decodeRows[T any](f *Fetcher, view View, raws []json.RawMessage) []T {
	rows := make([]T, 0, len(raws))
	for _, raw := range raws {
		var row T
		if err := json.Unmarshal(raw, &row); err != nil {
			f.logger.Warn("dropping malformed row", "view", view, "error", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Typed fetchers, one per view. All share fetchView.

func FetchSeries(ctx context.Context, f *Fetcher, filter Filter) ([]domain.SeriesPoint, bool) {
	return fetchView[domain.SeriesPoint](ctx, f, ViewAvgSpeedKPI, filter)
}

func FetchCitySamples(ctx context.Context, f *Fetcher, filter Filter) ([]domain.TrafficSample, bool) {
	return fetchView[domain.TrafficSample](ctx, f, ViewCityHealthSummary, filter)
}

func FetchTopCongestion(ctx context.Context, f *Fetcher, filter Filter) ([]domain.RankedCongestionItem, bool) {
	return fetchView[domain.RankedCongestionItem](ctx, f, ViewTopCongestionList, filter)
}

func FetchEfficiency(ctx context.Context, f *Fetcher, filter Filter) ([]domain.EfficiencyRecord, bool) {
	return fetchView[domain.EfficiencyRecord](ctx, f, ViewEfficiencyLoss, filter)
}

func FetchAnomalies(ctx context.Context, f *Fetcher, filter Filter) ([]domain.AnomalyRecord, bool) {
	return fetchView[domain.AnomalyRecord](ctx, f, ViewTrafficAnomalies, filter)
}

func FetchForecast(ctx context.Context, f *Fetcher, filter Filter) ([]domain.ForecastRecord, bool) {
	return fetchView[domain.ForecastRecord](ctx, f, ViewTrafficForecast, filter)
}

func FetchGreenRoutes(ctx context.Context, f *Fetcher, filter Filter) ([]domain.TrafficSample, bool) {
	return fetchView[domain.TrafficSample](ctx, f, ViewGreenRoutes, filter)
}

func FetchVolatility(ctx context.Context, f *Fetcher, filter Filter) ([]domain.VolatilityRecord, bool) {
	return fetchView[domain.VolatilityRecord](ctx, f, ViewRoadVolatility, filter)
}

func FetchPeak(ctx context.Context, f *Fetcher, filter Filter) ([]domain.PeakRecord, bool) {
	return fetchView[domain.PeakRecord](ctx, f, ViewPeakAnalysis, filter)
}

func FetchWeekday(ctx context.Context, f *Fetcher, filter Filter) ([]domain.WeekdayRecord, bool) {
	return fetchView[domain.WeekdayRecord](ctx, f, ViewWeekendVsWeekday, filter)
}

func FetchHeatmap(ctx context.Context, f *Fetcher, filter Filter) ([]domain.HeatmapPoint, bool) {
	return fetchView[domain.HeatmapPoint](ctx, f, ViewHeatmapData, filter)
}
