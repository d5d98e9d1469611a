package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/repository"
)

// objectiveProvider aggregates the owner's ledger entries through the
// metrics engine.
type objectiveProvider struct {
	ledger repository.LedgerEntryRepository
}

func NewObjectiveProvider(ledger repository.LedgerEntryRepository) Provider {
	return &objectiveProvider{ledger: ledger}
}

// objectiveID asserts the provider-specific reference is present. A nil
// objective id on an objective-provider metric means the caller persisted an
// invalid configuration; failing loudly beats silently serving zeros.
func objectiveID(metric *model.WidgetMetric) string {
	if metric.ObjectiveID == nil {
		panic(fmt.Sprintf("provider: objective metric %s has no objective id", metric.ID))
	}
	return *metric.ObjectiveID
}

func (p *objectiveProvider) entries(ctx context.Context, owner string, metric *model.WidgetMetric) ([]*model.LedgerEntry, error) {
	return p.ledger.Entries(ctx, owner, objectiveID(metric))
}

func (p *objectiveProvider) Value(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) (float64, error) {
	entries, err := p.entries(ctx, owner, metric)
	if err != nil {
		return 0, err
	}
	return metrics.WindowedSum(entries, metric.ValuePeriod, ref), nil
}

func (p *objectiveProvider) Plot(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) ([]metrics.SeriesPoint, error) {
	entries, err := p.entries(ctx, owner, metric)
	if err != nil {
		return nil, err
	}
	return metrics.CumulativeSeries(entries, metric.PlotPeriod, metric.PlotInterval, ref), nil
}

func (p *objectiveProvider) Heatmap(ctx context.Context, owner string, metric *model.WidgetMetric, ref time.Time) (metrics.Heatmap, error) {
	entries, err := p.entries(ctx, owner, metric)
	if err != nil {
		return metrics.Heatmap{}, err
	}
	return metrics.CalendarHeatmap(entries, ref), nil
}
