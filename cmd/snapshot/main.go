// Command snapshot fetches a single dashboard view through the dual-source
// path and prints the derived records as JSON. Useful for smoke checks
// against a live backend without running the full service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/citypulse/traffic-dashboard/internal/domain"
	"github.com/citypulse/traffic-dashboard/internal/observability"
	"github.com/citypulse/traffic-dashboard/internal/source"
)

func main() {
	var (
		baseURL     string
		databaseURL string
		date        string
		hour        int
		limit       int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:          "snapshot <view>",
		Short:        "Fetch one dashboard view and print its derived form",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := source.View(args[0])
			if !view.Valid() {
				return fmt.Errorf("unknown view %q, want one of %v", args[0], source.AllViews())
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			metrics := observability.NewMetrics()

			ctx := cmd.Context()
			client := source.NewClient(baseURL, timeout, logger)

			var fallback source.FallbackStore
			if databaseURL != "" {
				pg, err := source.NewPostgres(ctx, databaseURL, logger)
				if err != nil {
					return fmt.Errorf("connect fallback store: %w", err)
				}
				defer pg.Close()
				fallback = pg
			}

			fetcher := source.NewFetcher(client, fallback, logger, metrics)

			filter := source.Filter{Date: date}
			if hour >= 0 {
				filter.Hour = &hour
			}

			out, err := fetchDerived(ctx, fetcher, view, filter, limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8000", "Primary API base URL")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Fallback store DSN (empty disables the fallback)")
	cmd.Flags().StringVar(&date, "date", "", "Date filter (YYYY-MM-DD)")
	cmd.Flags().IntVar(&hour, "hour", -1, "Hour filter, 0-23 (-1 omits it)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Row limit for ranked views")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Primary API request timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var errNoData = errors.New("no source produced data")

// fetchDerived runs the view's fetch and the same derivation the service
// applies before publishing.
func fetchDerived(ctx context.Context, f *source.Fetcher, view source.View, filter source.Filter, limit int) (any, error) {
	currentHour := time.Now().Hour()
	if filter.Hour != nil {
		currentHour = *filter.Hour
	}

	switch view {
	case source.ViewAvgSpeedKPI:
		rows, ok := source.FetchSeries(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.BuildTrendMatrix(rows), nil
	case source.ViewCityHealthSummary:
		rows, ok := source.FetchCitySamples(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		summary, _ := domain.BuildCitySummary(rows)
		return summary, nil
	case source.ViewTopCongestionList:
		rows, ok := source.FetchTopCongestion(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.TopCongested(rows, limit), nil
	case source.ViewEfficiencyLoss:
		rows, ok := source.FetchEfficiency(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.FilterEfficiencyLoss(rows), nil
	case source.ViewTrafficAnomalies:
		rows, ok := source.FetchAnomalies(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.FilterAnomalies(rows, currentHour), nil
	case source.ViewTrafficForecast:
		rows, ok := source.FetchForecast(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.Dedup(rows), nil
	case source.ViewGreenRoutes:
		rows, ok := source.FetchGreenRoutes(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.SortGreenRoutes(rows), nil
	case source.ViewRoadVolatility:
		rows, ok := source.FetchVolatility(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.RankVolatility(rows, limit), nil
	case source.ViewPeakAnalysis:
		rows, ok := source.FetchPeak(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.BuildPeakTable(rows), nil
	case source.ViewWeekendVsWeekday:
		rows, ok := source.FetchWeekday(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.BuildWeekdayTable(rows), nil
	case source.ViewHeatmapData:
		rows, ok := source.FetchHeatmap(ctx, f, filter)
		if !ok {
			return nil, errNoData
		}
		return domain.BuildHeatField(rows), nil
	default:
		return nil, fmt.Errorf("unknown view %q", view)
	}
}
