// Package http exposes the derived dashboard views over a read-only JSON API,
// plus health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/citypulse/traffic-dashboard/internal/domain"
	"github.com/citypulse/traffic-dashboard/internal/source"
	"github.com/citypulse/traffic-dashboard/internal/store"
)

// Server serves the derived view snapshots. All data access is read-only;
// the refresh layer is the only writer.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	logger     *slog.Logger
}

// NewServer creates the API server. Routes:
//
//	GET /healthz        liveness
//	GET /readyz         ready once at least one refresh cycle completed
//	GET /metrics        prometheus
//	GET /views/{view}   snapshot of one derived view
func NewServer(addr string, st *store.Store, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  st,
		logger: logger,
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/views/{view}", s.handleView).Methods(http.MethodGet)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no refresh cycle has completed yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// efficiencyView decorates a stored efficiency record with its read-time
// severity label and loss percentage.
type efficiencyView struct {
	domain.EfficiencyRecord
	LossPct  float64                   `json:"loss_pct"`
	Severity domain.EfficiencySeverity `json:"severity"`
}

// forecastView decorates a forecast record with the derived percent change
// and danger classification.
type forecastView struct {
	domain.ForecastRecord
	ChangePct float64               `json:"change_pct"`
	Danger    domain.ForecastDanger `json:"danger"`
}

// volatilityView decorates a volatility record with its parsed reliability
// state.
type volatilityView struct {
	domain.VolatilityRecord
	Reliability string `json:"reliability"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view := source.View(mux.Vars(r)["view"])
	if !view.Valid() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown view " + string(view)})
		return
	}

	switch view {
	case source.ViewAvgSpeedKPI:
		writeJSON(w, http.StatusOK, s.store.Trends.Get())
	case source.ViewCityHealthSummary:
		writeJSON(w, http.StatusOK, s.store.CityHealth.Get())
	case source.ViewTopCongestionList:
		writeJSON(w, http.StatusOK, s.store.TopCongestion.Get())
	case source.ViewEfficiencyLoss:
		writeJSON(w, http.StatusOK, decorate(s.store.Efficiency.Get(), func(rec domain.EfficiencyRecord) efficiencyView {
			return efficiencyView{
				EfficiencyRecord: rec,
				LossPct:          100 - rec.EfficiencyPct,
				Severity:         domain.ClassifyEfficiency(rec.EfficiencyPct),
			}
		}))
	case source.ViewTrafficAnomalies:
		writeJSON(w, http.StatusOK, s.store.Anomalies.Get())
	case source.ViewTrafficForecast:
		writeJSON(w, http.StatusOK, decorate(s.store.Forecast.Get(), func(rec domain.ForecastRecord) forecastView {
			_, danger := domain.ForecastDelta(rec.Velocity, rec.PredictedSpeedNextHour)
			return forecastView{
				ForecastRecord: rec,
				ChangePct:      domain.PercentChange(rec.Velocity, rec.PredictedSpeedNextHour),
				Danger:         danger,
			}
		}))
	case source.ViewGreenRoutes:
		writeJSON(w, http.StatusOK, s.store.GreenRoutes.Get())
	case source.ViewRoadVolatility:
		writeJSON(w, http.StatusOK, decorate(s.store.Volatility.Get(), func(rec domain.VolatilityRecord) volatilityView {
			return volatilityView{
				VolatilityRecord: rec,
				Reliability:      domain.ParseReliability(rec.ReliabilityStatus).String(),
			}
		}))
	case source.ViewPeakAnalysis:
		writeJSON(w, http.StatusOK, s.store.Peak.Get())
	case source.ViewWeekendVsWeekday:
		writeJSON(w, http.StatusOK, s.store.Weekday.Get())
	case source.ViewHeatmapData:
		writeJSON(w, http.StatusOK, s.store.Heatmap.Get())
	}
}

// decorate maps a slice snapshot's rows through fn, carrying status and
// timestamp unchanged.
func decorate[T, U any](snap store.Snapshot[[]T], fn func(T) U) store.Snapshot[[]U] {
	rows := make([]U, 0, len(snap.Data))
	for _, rec := range snap.Data {
		rows = append(rows, fn(rec))
	}
	return store.Snapshot[[]U]{Data: rows, Status: snap.Status, UpdatedAt: snap.UpdatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
