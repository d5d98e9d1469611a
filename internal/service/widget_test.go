package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/provider"
	"github.com/strideapp/stride/internal/repository"
)

type stubWidgetRepo struct {
	widgets map[string]*model.Widget
}

func (r *stubWidgetRepo) ByID(_ context.Context, widgetID string) (*model.Widget, error) {
	widget, ok := r.widgets[widgetID]
	if !ok {
		return nil, &repository.StoreError{Kind: repository.KindNotFound, Op: "widget.by_id"}
	}
	return widget, nil
}

func (r *stubWidgetRepo) ByObjective(context.Context, string) ([]*model.Widget, error) {
	return nil, nil
}

type stubMetricProvider struct {
	value float64
	err   error
}

func (s *stubMetricProvider) Value(context.Context, string, *model.WidgetMetric, time.Time) (float64, error) {
	return s.value, s.err
}

func (s *stubMetricProvider) Plot(context.Context, string, *model.WidgetMetric, time.Time) ([]metrics.SeriesPoint, error) {
	return []metrics.SeriesPoint{{Bucket: "2024-05-12", Value: s.value}}, s.err
}

func (s *stubMetricProvider) Heatmap(context.Context, string, *model.WidgetMetric, time.Time) (metrics.Heatmap, error) {
	return metrics.Heatmap{Columns: metrics.HeatmapColumns, Points: []float64{s.value}}, s.err
}

type widgetHarness struct {
	service  *WidgetService
	repo     *stubWidgetRepo
	provider *stubMetricProvider
}

func newWidgetHarness(t *testing.T) *widgetHarness {
	t.Helper()

	stub := &stubMetricProvider{value: 50}
	repo := &stubWidgetRepo{widgets: map[string]*model.Widget{}}
	snapshots := cache.NewSnapshotCache(cache.NewMemoryStore())
	dispatcher := provider.NewDispatcher(provider.NewRegistry(stub, stub))
	invalidator := cache.NewInvalidator(repo, snapshots)

	return &widgetHarness{
		service:  NewWidgetService(repo, dispatcher, snapshots, invalidator),
		repo:     repo,
		provider: stub,
	}
}

func (h *widgetHarness) addWidget(id, owner, visibility string, styles ...string) {
	widget := &model.Widget{
		ID:         id,
		UserID:     owner,
		Title:      "my widget",
		Visibility: visibility,
	}
	for i, style := range styles {
		widget.Metrics = append(widget.Metrics, &model.WidgetMetric{
			ID:       fmt.Sprintf("%s-m%d", id, i+1),
			WidgetID: id,
			Provider: model.ProviderObjective,
			Style:    style,
		})
	}
	h.repo.widgets[id] = widget
}

func TestWidgetData(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2024, time.May, 12, 12, 0, 0, 0, time.UTC)

	t.Run("assembles metrics in order", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue, model.StyleBasePlot, model.StyleBaseHeatmap)

		data, err := h.service.Data(ctx, "anyone", "w1", ref)
		require.NoError(t, err)
		require.Len(t, data.Metrics, 3)
		assert.Equal(t, model.StyleBaseValue, data.Metrics[0].Style)
		assert.Equal(t, model.StyleBasePlot, data.Metrics[1].Style)
		assert.Equal(t, model.StyleBaseHeatmap, data.Metrics[2].Style)
	})

	t.Run("private widgets are owner-only", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPrivate, model.StyleBaseValue)

		_, err := h.service.Data(ctx, "stranger", "w1", ref)
		assert.ErrorIs(t, err, ErrWidgetNotViewable)

		_, err = h.service.Data(ctx, "owner", "w1", ref)
		assert.NoError(t, err)
	})

	t.Run("missing widget is not found", func(t *testing.T) {
		h := newWidgetHarness(t)

		_, err := h.service.Data(ctx, "anyone", "w-missing", ref)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("a failing metric fails the whole assembly", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue)
		h.provider.err = errors.New("source down")

		_, err := h.service.Data(ctx, "anyone", "w1", ref)
		assert.Error(t, err)
	})
}

func TestWidgetDataEtag(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2024, time.May, 12, 12, 0, 0, 0, time.UTC)

	h := newWidgetHarness(t)
	h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue, model.StyleBasePlot)

	first, err := h.service.Data(ctx, "anyone", "w1", ref)
	require.NoError(t, err)
	second, err := h.service.Data(ctx, "anyone", "w1", ref)
	require.NoError(t, err)

	t.Run("identical data hashes identically", func(t *testing.T) {
		assert.Equal(t, first.Etag(), second.Etag())
	})

	t.Run("changing one metric changes the etag", func(t *testing.T) {
		h.provider.value = 51
		changed, err := h.service.Data(ctx, "anyone", "w1", ref)
		require.NoError(t, err)
		assert.NotEqual(t, first.Etag(), changed.Etag())
	})
}

func TestWidgetRender(t *testing.T) {
	ctx := context.Background()

	countingRender := func(payload string) (RenderFunc, *int) {
		calls := 0
		return func(_ context.Context, _ *WidgetData) (string, error) {
			calls++
			return payload, nil
		}, &calls
	}

	t.Run("miss renders and stores, identical data then hits", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue)
		render, calls := countingRender("<svg>50</svg>")

		result, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)
		assert.Equal(t, "<svg>50</svg>", result.Payload)
		assert.False(t, result.FromCache)
		assert.Equal(t, 1, *calls)

		result, err = h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)
		assert.Equal(t, "<svg>50</svg>", result.Payload)
		assert.True(t, result.FromCache)
		assert.Equal(t, 1, *calls, "unchanged data must not re-render")
	})

	t.Run("changed data re-renders and overwrites", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue)
		render, calls := countingRender("<svg/>")

		first, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)

		h.provider.value = 51
		second, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)
		assert.NotEqual(t, first.Etag, second.Etag)
		assert.Equal(t, 2, *calls)
	})

	t.Run("matching caller etag short-circuits to not modified", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue)
		render, calls := countingRender("<svg/>")

		first, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)

		result, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, first.Etag, render)
		require.NoError(t, err)
		assert.True(t, result.NotModified)
		assert.Empty(t, result.Payload)
		assert.Equal(t, 1, *calls)
	})

	t.Run("conditional match on a private widget requires the owner", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPrivate, model.StyleBaseValue)
		render, _ := countingRender("<svg/>")

		first, err := h.service.Render(ctx, "owner", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)

		// A stranger presenting a valid etag must not learn it matches.
		_, err = h.service.Render(ctx, "stranger", "w1", cache.FormatSVG, cache.ThemeDark, first.Etag, render)
		assert.ErrorIs(t, err, ErrWidgetNotViewable)

		result, err := h.service.Render(ctx, "owner", "w1", cache.FormatSVG, cache.ThemeDark, first.Etag, render)
		require.NoError(t, err)
		assert.True(t, result.NotModified)
	})

	t.Run("render failure leaves no snapshot behind", func(t *testing.T) {
		h := newWidgetHarness(t)
		h.addWidget("w1", "owner", model.VisibilityPublic, model.StyleBaseValue)

		broken := func(context.Context, *WidgetData) (string, error) {
			return "", errors.New("renderer crashed")
		}
		_, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", broken)
		require.Error(t, err)

		render, calls := countingRender("<svg/>")
		result, err := h.service.Render(ctx, "anyone", "w1", cache.FormatSVG, cache.ThemeDark, "", render)
		require.NoError(t, err)
		assert.False(t, result.FromCache)
		assert.Equal(t, 1, *calls)
	})
}
