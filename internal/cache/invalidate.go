package cache

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/strideapp/stride/internal/repository"
)

// invalidateConcurrency bounds the fan-out; the key set per widget is the
// fixed format x theme grid, so this stays small.
const invalidateConcurrency = 8

// Invalidator purges render snapshots when the data behind them changes. It
// runs after every ledger mutation and widget-definition update, and is
// awaited before the mutating request returns so the next read never sees a
// stale snapshot.
type Invalidator struct {
	widgets   repository.WidgetRepository
	snapshots *SnapshotCache
}

func NewInvalidator(widgets repository.WidgetRepository, snapshots *SnapshotCache) *Invalidator {
	return &Invalidator{widgets: widgets, snapshots: snapshots}
}

// InvalidateObjective purges the snapshots of every widget referencing the
// objective. The fan-out detaches from the caller's cancellation: once
// started it must complete even if the surrounding request is aborted.
func (i *Invalidator) InvalidateObjective(ctx context.Context, objectiveID string) error {
	ctx = context.WithoutCancel(ctx)

	widgets, err := i.widgets.ByObjective(ctx, objectiveID)
	if err != nil {
		return err
	}

	// Plain group, not WithContext: one failed delete must not cancel the
	// remaining purges.
	var g errgroup.Group
	g.SetLimit(invalidateConcurrency)

	for _, widget := range widgets {
		for _, format := range Formats {
			for _, theme := range Themes {
				widgetID, format, theme := widget.ID, format, theme
				g.Go(func() error {
					return i.snapshots.Delete(ctx, widgetID, format, theme)
				})
			}
		}
	}

	err = g.Wait()
	if err != nil {
		slog.Error("snapshot invalidation incomplete", "error", err, "objective_id", objectiveID)
	}
	return err
}

// InvalidateWidget purges all snapshots of one widget, e.g. after its
// definition changed.
func (i *Invalidator) InvalidateWidget(ctx context.Context, widgetID string) error {
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(invalidateConcurrency)

	for _, format := range Formats {
		for _, theme := range Themes {
			format, theme := format, theme
			g.Go(func() error {
				return i.snapshots.Delete(ctx, widgetID, format, theme)
			})
		}
	}

	err := g.Wait()
	if err != nil {
		slog.Error("snapshot invalidation incomplete", "error", err, "widget_id", widgetID)
	}
	return err
}
