package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/citypulse/traffic-dashboard/internal/adapter/http"
	"github.com/citypulse/traffic-dashboard/internal/domain"
	"github.com/citypulse/traffic-dashboard/internal/store"
)

func newTestServer() (*httpadapter.Server, *store.Store) {
	st := store.New(clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 8, 0, 0, 0, time.UTC)))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", st, logger), st
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer()

	rec := get(srv, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns503BeforeFirstCycle(t *testing.T) {
	srv, _ := newTestServer()

	rec := get(srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyzReturns200AfterAnyCycle(t *testing.T) {
	srv, st := newTestServer()
	st.GreenRoutes.PublishEmpty()

	rec := get(srv, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer()

	rec := get(srv, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestViewUnknownReturns404(t *testing.T) {
	srv, _ := newTestServer()

	rec := get(srv, "/views/speed_kpi")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewLoadingState(t *testing.T) {
	srv, _ := newTestServer()

	rec := get(srv, "/views/green_routes")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "loading", body.Status)
}

func TestViewEfficiencyLossDecoration(t *testing.T) {
	srv, st := newTestServer()
	st.Efficiency.Publish([]domain.EfficiencyRecord{
		{StreetName: "Nguyen Hue", Hour: 8, Velocity: 12, MaxPotential: 60, EfficiencyPct: 20},
		{StreetName: "Le Loi", Hour: 8, Velocity: 20, MaxPotential: 60, EfficiencyPct: 33.3},
	})

	rec := get(srv, "/views/efficiency_loss")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Data   []struct {
			StreetName string  `json:"street_name"`
			LossPct    float64 `json:"loss_pct"`
			Severity   string  `json:"severity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Critical", body.Data[0].Severity)
	assert.InDelta(t, 80.0, body.Data[0].LossPct, 1e-9)
	assert.Equal(t, "High", body.Data[1].Severity)
}

func TestViewForecastDecoration(t *testing.T) {
	srv, st := newTestServer()
	st.Forecast.Publish([]domain.ForecastRecord{
		{StreetName: "Nguyen Hue", Hour: 8, Velocity: 40, PredictedSpeedNextHour: 15},
		{StreetName: "Dead End", Hour: 8, Velocity: 0, PredictedSpeedNextHour: 10},
	})

	rec := get(srv, "/views/traffic_forecast")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			StreetName string  `json:"street_name"`
			ChangePct  float64 `json:"change_pct"`
			Danger     string  `json:"danger"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Critical Drop", body.Data[0].Danger, "a 62.5%% drop classifies as critical")
	assert.InDelta(t, -62.5, body.Data[0].ChangePct, 1e-9)
	assert.Equal(t, "Unknown", body.Data[1].Danger, "zero current speed cannot be classified")
	assert.Zero(t, body.Data[1].ChangePct)
}

func TestViewVolatilityDecoration(t *testing.T) {
	srv, st := newTestServer()
	st.Volatility.Publish([]domain.VolatilityRecord{
		{StreetName: "A", StdDev: 9.4, Avg: 22, ReliabilityStatus: "Unstable - avoid at peak"},
		{StreetName: "B", StdDev: 2.1, Avg: 48, ReliabilityStatus: "Reliable and fast"},
		{StreetName: "C", StdDev: 5.0, Avg: 31, ReliabilityStatus: "Reliable but slow"},
	})

	rec := get(srv, "/views/road_volatility")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []struct {
			StreetName  string `json:"street_name"`
			Reliability string `json:"reliability"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	assert.Equal(t, "unstable", body.Data[0].Reliability)
	assert.Equal(t, "fast_reliable", body.Data[1].Reliability)
	assert.Equal(t, "reliable", body.Data[2].Reliability)
}

func TestViewNoDataState(t *testing.T) {
	srv, st := newTestServer()
	st.Heatmap.PublishEmpty()

	rec := get(srv, "/views/heatmap_data")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string    `json:"status"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_data", body.Status)
	assert.False(t, body.UpdatedAt.IsZero())
}

func TestViewCityHealth(t *testing.T) {
	srv, st := newTestServer()
	summary, ok := domain.BuildCitySummary([]domain.TrafficSample{
		{StreetName: "A", Hour: 8, Velocity: 10},
		{StreetName: "B", Hour: 8, Velocity: 15},
		{StreetName: "C", Hour: 8, Velocity: 29},
	})
	require.True(t, ok)
	st.CityHealth.Publish(summary)

	rec := get(srv, "/views/city_health_summary")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Current struct {
				CityAvgSpeed     float64 `json:"city_avg_speed"`
				CongestionLevel  string  `json:"congestion_level"`
				JammedRoadsCount int     `json:"jammed_roads_count"`
				TotalActiveRoads int     `json:"total_active_roads"`
			} `json:"current"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 18.0, body.Data.Current.CityAvgSpeed, 1e-9)
	assert.Equal(t, "CRITICAL", body.Data.Current.CongestionLevel)
	assert.Equal(t, 2, body.Data.Current.JammedRoadsCount)
	assert.Equal(t, 3, body.Data.Current.TotalActiveRoads)
}
