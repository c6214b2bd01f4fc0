package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/traffic-dashboard/internal/observability"
)

type fakeFallback struct {
	rows    []json.RawMessage
	err     error
	lastQ   FallbackQuery
	queried bool
}

func (f *fakeFallback) QueryView(_ context.Context, q FallbackQuery) ([]json.RawMessage, error) {
	f.queried = true
	f.lastQ = q
	return f.rows, f.err
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc, fallback FallbackStore) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, time.Second, testLogger())
	return NewFetcher(client, fallback, testLogger(), observability.NewMetricsForTesting())
}

func TestFetcher_PrimarySuccess(t *testing.T) {
	fb := &fakeFallback{}
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"street_name":"A","std_dev":4.2,"avg":30,"reliability_status":"Reliable but slow"}]`))
	}, fb)

	rows, ok := FetchVolatility(context.Background(), f, Filter{})

	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].StreetName)
	assert.False(t, fb.queried, "fallback must not run when the primary has rows")
}

func TestFetcher_FallbackOnPrimaryFailure(t *testing.T) {
	// Primary down, fallback returns 3 rows ordered std_dev descending: the
	// result is exactly those rows in that order.
	fb := &fakeFallback{rows: []json.RawMessage{
		[]byte(`{"street_name":"B","std_dev":9.4,"avg":22,"reliability_status":"Unstable"}`),
		[]byte(`{"street_name":"C","std_dev":5.0,"avg":31,"reliability_status":"Reliable but slow"}`),
		[]byte(`{"street_name":"A","std_dev":2.1,"avg":48,"reliability_status":"Reliable and fast"}`),
	}}
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}, fb)

	rows, ok := FetchVolatility(context.Background(), f, Filter{})

	require.True(t, ok)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{rows[0].StreetName, rows[1].StreetName, rows[2].StreetName})
	assert.Equal(t, "road_volatility", fb.lastQ.Table)
	assert.Equal(t, "std_dev", fb.lastQ.OrderBy)
	assert.True(t, fb.lastQ.Desc)
	assert.Equal(t, 50, fb.lastQ.Limit)
}

func TestFetcher_FallbackOnPrimaryEmpty(t *testing.T) {
	fb := &fakeFallback{rows: []json.RawMessage{
		[]byte(`{"street_name":"A","hour":8,"velocity":12,"rank":1,"lat":10.78,"long":106.69}`),
	}}
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}, fb)

	rows, ok := FetchTopCongestion(context.Background(), f, HourFilter(8))

	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Rank)
}

func TestFetcher_BothSourcesFail(t *testing.T) {
	fb := &fakeFallback{err: errors.New("store offline")}
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}, fb)

	rows, ok := FetchVolatility(context.Background(), f, Filter{})

	assert.False(t, ok, "Empty result, not an error: caller keeps the previous snapshot")
	assert.Nil(t, rows)
}

func TestFetcher_EmptyWithoutFallback(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}, nil)

	rows, ok := FetchGreenRoutes(context.Background(), f, Filter{})

	assert.True(t, ok, "a well-formed empty response is no-data, not a failure")
	assert.Empty(t, rows)
}

func TestFetcher_PrimaryFailureWithoutFallback(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}, nil)

	_, ok := FetchGreenRoutes(context.Background(), f, Filter{})

	assert.False(t, ok)
}

func TestFetcher_MalformedRowsDropped(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[
			{"street_name":"A","hour":8,"velocity":40,"predicted_speed_next_hour":15},
			{"street_name":"B","hour":"not a number"},
			{"street_name":"C","hour":9,"velocity":30,"predicted_speed_next_hour":28}
		]`))
	}, nil)

	rows, ok := FetchForecast(context.Background(), f, Filter{})

	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].StreetName)
	assert.Equal(t, "C", rows[1].StreetName)
}

func TestFetcher_InvalidBodyFallsBack(t *testing.T) {
	fb := &fakeFallback{rows: []json.RawMessage{
		[]byte(`{"street_name":"A","hour":8,"velocity":22,"lat":10.78,"long":106.69}`),
	}}
	f := newTestFetcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"not an array"}`))
	}, fb)

	rows, ok := FetchCitySamples(context.Background(), f, Filter{})

	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.True(t, fb.queried)
}
