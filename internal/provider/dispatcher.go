package provider

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
)

// MetricData is the merged result for one widget metric: a scalar, a series,
// a heatmap, or a pairwise combination, depending on the style.
type MetricData struct {
	MetricID string                `json:"metric_id"`
	Style    string                `json:"style"`
	Value    *float64              `json:"value,omitempty"`
	Series   []metrics.SeriesPoint `json:"series,omitempty"`
	Heatmap  *metrics.Heatmap      `json:"heatmap,omitempty"`
}

// Dispatcher maps each widget style to provider calls. Styles combining two
// shapes fetch both concurrently and fail fast: either both succeed or the
// dispatch fails with the first error, never partial data.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

func (d *Dispatcher) Fetch(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) (*MetricData, error) {
	p, err := d.registry.ForMetric(metric)
	if err != nil {
		return nil, err
	}

	data := &MetricData{MetricID: metric.ID, Style: metric.Style}

	switch metric.Style {
	case model.StyleBaseValue, model.StyleTrendValue:
		value, err := p.Value(ctx, owner, metric, ref)
		if err != nil {
			return nil, err
		}
		data.Value = &value

	case model.StyleBasePlot:
		series, err := p.Plot(ctx, owner, metric, ref)
		if err != nil {
			return nil, err
		}
		data.Series = series

	case model.StylePlotMetric:
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			value, err := p.Value(ctx, owner, metric, ref)
			if err != nil {
				return err
			}
			data.Value = &value
			return nil
		})
		g.Go(func() error {
			series, err := p.Plot(ctx, owner, metric, ref)
			if err != nil {
				return err
			}
			data.Series = series
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

	case model.StyleBaseHeatmap:
		heatmap, err := p.Heatmap(ctx, owner, metric, ref)
		if err != nil {
			return nil, err
		}
		data.Heatmap = &heatmap

	case model.StyleHeatmapMetric:
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			value, err := p.Value(ctx, owner, metric, ref)
			if err != nil {
				return err
			}
			data.Value = &value
			return nil
		})
		g.Go(func() error {
			heatmap, err := p.Heatmap(ctx, owner, metric, ref)
			if err != nil {
				return err
			}
			data.Heatmap = &heatmap
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("provider: unknown widget style %q on metric %s", metric.Style, metric.ID)
	}

	return data, nil
}
