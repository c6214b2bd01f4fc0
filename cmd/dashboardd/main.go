package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/citypulse/traffic-dashboard/internal/adapter/http"
	"github.com/citypulse/traffic-dashboard/internal/config"
	"github.com/citypulse/traffic-dashboard/internal/domain"
	"github.com/citypulse/traffic-dashboard/internal/observability"
	"github.com/citypulse/traffic-dashboard/internal/refresh"
	"github.com/citypulse/traffic-dashboard/internal/source"
	"github.com/citypulse/traffic-dashboard/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:          "dashboardd",
		Short:        "Traffic dashboard derivation service",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Poll the traffic backend and serve derived dashboard views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clk := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := source.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)

	var fallback source.FallbackStore
	if cfg.DatabaseURL != "" {
		pg, err := source.NewPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect fallback store: %w", err)
		}
		defer pg.Close()
		fallback = pg
		logger.Info("fallback store enabled")
	} else {
		logger.Info("fallback store disabled, primary API only")
	}

	fetcher := source.NewFetcher(client, fallback, logger, metrics)
	st := store.New(clk)
	pollers := buildPollers(cfg, clk, fetcher, st, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, st, logger)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range pollers {
		g.Go(func() error { return p.Run(gctx) })
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := g.Wait(); err != nil {
		logger.Error("poller error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// currentHourFilter stamps the filter with the hour read from the clock at
// fetch time. The hour is re-read every cycle; a long-lived daemon must not
// pin the hour it happened to start in.
func currentHourFilter(clk clockwork.Clock, f source.Filter) source.Filter {
	h := clk.Now().Hour()
	f.Hour = &h
	return f
}

// buildPollers wires one poller per view: fetch through the dual-source
// protocol, derive, publish into the view's slot. An empty batch publishes
// the explicit no-data state; a failed cycle publishes nothing.
func buildPollers(
	cfg *config.Config,
	clk clockwork.Clock,
	fetcher *source.Fetcher,
	st *store.Store,
	logger *slog.Logger,
	metrics *observability.Metrics,
) []refresh.Runner {
	return []refresh.Runner{
		refresh.NewPoller(string(source.ViewAvgSpeedKPI), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.SeriesPoint, bool) {
				return source.FetchSeries(ctx, fetcher, f)
			},
			func(rows []domain.SeriesPoint) {
				if len(rows) == 0 {
					st.Trends.PublishEmpty()
					return
				}
				st.Trends.Publish(domain.BuildTrendMatrix(rows))
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewCityHealthSummary), cfg.SummaryRefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.TrafficSample, bool) {
				return source.FetchCitySamples(ctx, fetcher, f)
			},
			func(rows []domain.TrafficSample) {
				summary, ok := domain.BuildCitySummary(rows)
				if !ok {
					st.CityHealth.PublishEmpty()
					return
				}
				st.CityHealth.Publish(summary)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewTopCongestionList), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.RankedCongestionItem, bool) {
				return source.FetchTopCongestion(ctx, fetcher, currentHourFilter(clk, f))
			},
			func(rows []domain.RankedCongestionItem) {
				top := domain.TopCongested(rows, cfg.TopCongestionLimit)
				if len(top) == 0 {
					st.TopCongestion.PublishEmpty()
					return
				}
				st.TopCongestion.Publish(top)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewEfficiencyLoss), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.EfficiencyRecord, bool) {
				return source.FetchEfficiency(ctx, fetcher, f)
			},
			func(rows []domain.EfficiencyRecord) {
				kept := domain.FilterEfficiencyLoss(rows)
				if len(kept) == 0 {
					st.Efficiency.PublishEmpty()
					return
				}
				st.Efficiency.Publish(kept)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewTrafficAnomalies), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.AnomalyRecord, bool) {
				return source.FetchAnomalies(ctx, fetcher, currentHourFilter(clk, f))
			},
			func(rows []domain.AnomalyRecord) {
				kept := domain.FilterAnomalies(rows, clk.Now().Hour())
				if len(kept) == 0 {
					st.Anomalies.PublishEmpty()
					return
				}
				st.Anomalies.Publish(kept)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewTrafficForecast), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.ForecastRecord, bool) {
				return source.FetchForecast(ctx, fetcher, f)
			},
			func(rows []domain.ForecastRecord) {
				kept := domain.Dedup(rows)
				if len(kept) == 0 {
					st.Forecast.PublishEmpty()
					return
				}
				st.Forecast.Publish(kept)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewGreenRoutes), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.TrafficSample, bool) {
				return source.FetchGreenRoutes(ctx, fetcher, f)
			},
			func(rows []domain.TrafficSample) {
				if len(rows) == 0 {
					st.GreenRoutes.PublishEmpty()
					return
				}
				st.GreenRoutes.Publish(domain.SortGreenRoutes(rows))
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewRoadVolatility), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.VolatilityRecord, bool) {
				return source.FetchVolatility(ctx, fetcher, f)
			},
			func(rows []domain.VolatilityRecord) {
				if len(rows) == 0 {
					st.Volatility.PublishEmpty()
					return
				}
				st.Volatility.Publish(domain.RankVolatility(rows, 10))
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewPeakAnalysis), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.PeakRecord, bool) {
				return source.FetchPeak(ctx, fetcher, f)
			},
			func(rows []domain.PeakRecord) {
				table := domain.BuildPeakTable(rows)
				if len(table) == 0 {
					st.Peak.PublishEmpty()
					return
				}
				st.Peak.Publish(table)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewWeekendVsWeekday), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.WeekdayRecord, bool) {
				return source.FetchWeekday(ctx, fetcher, f)
			},
			func(rows []domain.WeekdayRecord) {
				table := domain.BuildWeekdayTable(rows)
				if len(table) == 0 {
					st.Weekday.PublishEmpty()
					return
				}
				st.Weekday.Publish(table)
			},
			logger, metrics),

		refresh.NewPoller(string(source.ViewHeatmapData), cfg.RefreshInterval, source.Filter{}, clk,
			func(ctx context.Context, f source.Filter) ([]domain.HeatmapPoint, bool) {
				return source.FetchHeatmap(ctx, fetcher, f)
			},
			func(rows []domain.HeatmapPoint) {
				if len(rows) == 0 {
					st.Heatmap.PublishEmpty()
					return
				}
				st.Heatmap.Publish(domain.BuildHeatField(rows))
			},
			logger, metrics),
	}
}
