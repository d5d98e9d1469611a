// Package provider resolves widget metrics to data. Two providers share one
// three-operation contract: the objective provider aggregates the user's own
// ledger, the external provider serves cached stat-API values. The dispatcher
// maps each widget style onto provider calls and merges the results.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
)

// Provider is the shared contract over metric data sources. owner is the
// widget owner's user id; ref is the reference instant all look-back windows
// are computed against.
type Provider interface {
	Value(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) (float64, error)
	Plot(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) ([]metrics.SeriesPoint, error)
	Heatmap(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) (metrics.Heatmap, error)
}

// Registry holds the closed provider set, selected purely by the metric's
// provider tag.
type Registry struct {
	objective Provider
	external  Provider
}

func NewRegistry(objective, external Provider) *Registry {
	return &Registry{objective: objective, external: external}
}

// ForMetric selects the provider for a metric. An unknown tag is a
// configuration error, not a contract violation: metrics are user data.
func (r *Registry) ForMetric(metric *model.WidgetMetric) (Provider, error) {
	switch metric.Provider {
	case model.ProviderObjective:
		return r.objective, nil
	case model.ProviderExternal:
		return r.external, nil
	}
	return nil, fmt.Errorf("provider: unknown provider %q on metric %s", metric.Provider, metric.ID)
}
