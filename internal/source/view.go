package source

// View identifies one logical backend resource feeding a dashboard view.
type View string

const (
	ViewAvgSpeedKPI       View = "avg_speed_kpi"
	ViewHeatmapData       View = "heatmap_data"
	ViewPeakAnalysis      View = "peak_analysis"
	ViewTrafficForecast   View = "traffic_forecast"
	ViewGreenRoutes       View = "green_routes"
	ViewTrafficAnomalies  View = "traffic_anomalies"
	ViewCityHealthSummary View = "city_health_summary"
	ViewTopCongestionList View = "top_congestion_list"
	ViewRoadVolatility    View = "road_volatility"
	ViewWeekendVsWeekday  View = "weekend_vs_weekday"
	ViewEfficiencyLoss    View = "efficiency_loss"
)

// AllViews lists every view in a stable order.
func AllViews() []View {
	return []View{
		ViewAvgSpeedKPI,
		ViewHeatmapData,
		ViewPeakAnalysis,
		ViewTrafficForecast,
		ViewGreenRoutes,
		ViewTrafficAnomalies,
		ViewCityHealthSummary,
		ViewTopCongestionList,
		ViewRoadVolatility,
		ViewWeekendVsWeekday,
		ViewEfficiencyLoss,
	}
}

// Valid reports whether v names a known view.
func (v View) Valid() bool {
	_, ok := fallbackQueries[v]
	return ok
}

// FallbackQuery describes the fallback store query equivalent for a view:
// its table, natural ordering key, and row limit. A zero Limit means no
// limit; an empty OrderBy means store order.
type FallbackQuery struct {
	Table   string
	OrderBy string
	Desc    bool
	Limit   int
}

// Table and order identifiers below are fixed program data, never user
// input; they are interpolated into SQL by the fallback store.
var fallbackQueries = map[View]FallbackQuery{
	ViewAvgSpeedKPI:       {Table: "avg_speed_kpi", OrderBy: "hour"},
	ViewHeatmapData:       {Table: "heatmap_data", OrderBy: "created_at", Desc: true, Limit: 50},
	ViewPeakAnalysis:      {Table: "peak_analysis"},
	ViewTrafficForecast:   {Table: "traffic_forecast", OrderBy: "hour"},
	ViewGreenRoutes:       {Table: "green_routes", OrderBy: "velocity", Desc: true},
	ViewTrafficAnomalies:  {Table: "traffic_anomalies", OrderBy: "velocity"},
	ViewCityHealthSummary: {Table: "city_health_summary", OrderBy: "hour"},
	ViewTopCongestionList: {Table: "top_congestion_list", OrderBy: "rank", Limit: 10},
	ViewRoadVolatility:    {Table: "road_volatility", OrderBy: "std_dev", Desc: true, Limit: 50},
	ViewWeekendVsWeekday:  {Table: "weekend_vs_weekday"},
	ViewEfficiencyLoss:    {Table: "efficiency_loss", OrderBy: "efficiency_pct"},
}
