package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
)

// StatFetcher is the fetch-on-miss boundary behind the stat cache.
type StatFetcher interface {
	Count(ctx context.Context, username, statKind, timeRange string) (float64, error)
}

// externalProvider serves widget metrics from the external stat API through
// the TTL cache. Plot and Heatmap degrade to a single-point approximation:
// the stat API has no historical series for these kinds, so one cached value
// stands in for the whole shape. That is reduced fidelity by contract, not
// something to paper over with invented history.
type externalProvider struct {
	stats   *cache.StatCache
	fetcher StatFetcher
}

func NewExternalProvider(stats *cache.StatCache, fetcher StatFetcher) Provider {
	return &externalProvider{stats: stats, fetcher: fetcher}
}

func externalRef(metric *model.WidgetMetric) (username, statKind string) {
	if metric.ExternalUsername == nil || metric.ExternalStatKind == nil {
		panic(fmt.Sprintf("provider: external metric %s has no username/stat kind", metric.ID))
	}
	return *metric.ExternalUsername, *metric.ExternalStatKind
}

// rangeQualifier turns a look-back period into the date-bounded query the
// commit search supports. Point-in-time stat kinds ignore it.
func rangeQualifier(period string, ref time.Time) string {
	var cutoff time.Time
	switch period {
	case metrics.PeriodDay:
		cutoff = ref.AddDate(0, 0, -1)
	case metrics.PeriodWeek:
		cutoff = ref.AddDate(0, 0, -7)
	case metrics.PeriodMonth:
		cutoff = ref.AddDate(0, -1, 0)
	case metrics.PeriodYear:
		cutoff = ref.AddDate(-1, 0, 0)
	default:
		return ""
	}
	return ">=" + cutoff.Format("2006-01-02")
}

func (p *externalProvider) value(ctx context.Context, metric *model.WidgetMetric, period string, ref time.Time) (float64, error) {
	username, statKind := externalRef(metric)

	cached, ok, err := p.stats.Get(ctx, username, statKind, period)
	if err != nil {
		return 0, err
	}
	if ok {
		return cached, nil
	}

	value, err := p.fetcher.Count(ctx, username, statKind, rangeQualifier(period, ref))
	if err != nil {
		return 0, err
	}

	err = p.stats.Put(ctx, username, statKind, period, value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (p *externalProvider) Value(ctx context.Context, _ string, metric *model.WidgetMetric, ref time.Time) (float64, error) {
	return p.value(ctx, metric, metric.ValuePeriod, ref)
}

func (p *externalProvider) Plot(ctx context.Context, _ string, metric *model.WidgetMetric, ref time.Time) ([]metrics.SeriesPoint, error) {
	value, err := p.value(ctx, metric, metric.PlotPeriod, ref)
	if err != nil {
		return nil, err
	}

	// Single-point approximation (see type comment).
	single := []*model.LedgerEntry{{Delta: value, LoggedAt: ref}}
	return metrics.CumulativeSeries(single, metrics.PeriodAllTime, metric.PlotInterval, ref), nil
}

func (p *externalProvider) Heatmap(ctx context.Context, _ string, metric *model.WidgetMetric, ref time.Time) (metrics.Heatmap, error) {
	value, err := p.value(ctx, metric, metric.HeatmapPeriod, ref)
	if err != nil {
		return metrics.Heatmap{}, err
	}

	// Single-point approximation (see type comment).
	single := []*model.LedgerEntry{{Delta: value, LoggedAt: ref}}
	return metrics.CalendarHeatmap(single, ref), nil
}
