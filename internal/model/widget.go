package model

import (
	"time"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

const (
	ProviderObjective = "objective"
	ProviderExternal  = "external"
)

// The six widget styles. Value-only styles use ValuePeriod, plot styles use
// PlotPeriod/PlotInterval, heatmap styles use HeatmapPeriod/HeatmapInterval.
const (
	StyleBaseValue     = "base-value"
	StyleTrendValue    = "trend-value"
	StyleBasePlot      = "base-plot"
	StylePlotMetric    = "plot-metric"
	StyleBaseHeatmap   = "base-heatmap"
	StyleHeatmapMetric = "heatmap-metric"
)

type Widget struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Visibility string    `db:"visibility"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	Metrics []*WidgetMetric `db:"-"`
}

// WidgetMetric configures one data source on a widget. Exactly one provider's
// reference fields are populated; the caller enforces this before persisting.
type WidgetMetric struct {
	ID       string `db:"id"`
	WidgetID string `db:"widget_id"`
	Provider string `db:"provider"`
	Style    string `db:"style"`

	ValuePeriod     string `db:"value_period"`
	PlotPeriod      string `db:"plot_period"`
	PlotInterval    string `db:"plot_interval"`
	HeatmapPeriod   string `db:"heatmap_period"`
	HeatmapInterval string `db:"heatmap_interval"`

	ObjectiveID      *string `db:"objective_id"`
	ExternalUsername *string `db:"external_username"`
	ExternalStatKind *string `db:"external_stat_kind"`
}

// IsPublic reports whether the widget may be served to viewers other than its owner.
func (w *Widget) IsPublic() bool {
	return w.Visibility == VisibilityPublic
}
