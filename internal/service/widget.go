package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/provider"
	"github.com/strideapp/stride/internal/repository"
)

var (
	ErrWidgetNotViewable = errors.New("widget is private")
)

// WidgetData is the plain data object handed to the rendering collaborator:
// resolved metric data plus the presentation fields the renderer needs. It
// deliberately carries no timestamps so its etag is stable across renders of
// identical data.
type WidgetData struct {
	WidgetID   string                 `json:"widget_id"`
	Title      string                 `json:"title"`
	Visibility string                 `json:"visibility"`
	Metrics    []*provider.MetricData `json:"metrics"`
}

// Etag returns the content hash of the assembled data.
func (d *WidgetData) Etag() string {
	b, err := json.Marshal(d)
	if err != nil {
		// WidgetData is plain values; marshalling cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// RenderFunc is the rendering collaborator: it turns assembled data into an
// opaque payload for one format/theme. The engine never touches markup.
type RenderFunc func(ctx context.Context, data *WidgetData) (string, error)

// RenderResult is what the caller serves. NotModified means the caller's
// etag still matches and no payload is attached.
type RenderResult struct {
	Payload     string
	Etag        string
	NotModified bool
	FromCache   bool
}

// WidgetService assembles widget data and runs the snapshot-cache read path.
type WidgetService struct {
	widgets     repository.WidgetRepository
	dispatcher  *provider.Dispatcher
	snapshots   *cache.SnapshotCache
	invalidator *cache.Invalidator
	now         func() time.Time
}

func NewWidgetService(
	widgets repository.WidgetRepository,
	dispatcher *provider.Dispatcher,
	snapshots *cache.SnapshotCache,
	invalidator *cache.Invalidator,
) *WidgetService {
	return &WidgetService{
		widgets:     widgets,
		dispatcher:  dispatcher,
		snapshots:   snapshots,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// Data assembles the widget's metric data at the reference instant. Metric
// sub-fetches run concurrently and fail fast; results keep metric order.
func (s *WidgetService) Data(ctx context.Context, viewerID, widgetID string, ref time.Time) (*WidgetData, error) {
	widget, err := s.viewableWidget(ctx, viewerID, widgetID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, widget, ref)
}

func (s *WidgetService) viewableWidget(ctx context.Context, viewerID, widgetID string) (*model.Widget, error) {
	widget, err := s.widgets.ByID(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	if !widget.IsPublic() && viewerID != widget.UserID {
		return nil, ErrWidgetNotViewable
	}
	return widget, nil
}

func (s *WidgetService) assemble(ctx context.Context, widget *model.Widget, ref time.Time) (*WidgetData, error) {
	data := &WidgetData{
		WidgetID:   widget.ID,
		Title:      widget.Title,
		Visibility: widget.Visibility,
		Metrics:    make([]*provider.MetricData, len(widget.Metrics)),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, metric := range widget.Metrics {
		i, metric := i, metric
		g.Go(func() error {
			md, err := s.dispatcher.Fetch(ctx, widget.UserID, metric, ref)
			if err != nil {
				return err
			}
			data.Metrics[i] = md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}

// Render runs the full read path for one (widget, format, theme):
//
//  1. Conditional fast path: a caller etag matching the stored snapshot
//     short-circuits to NotModified before any data is recomputed.
//  2. Fresh data is assembled and hashed; a stored snapshot with the same
//     etag is served without rendering.
//  3. Otherwise render is invoked and the snapshot overwritten.
func (s *WidgetService) Render(ctx context.Context, viewerID, widgetID, format, theme, callerEtag string, render RenderFunc) (*RenderResult, error) {
	if callerEtag != "" {
		snapshot, err := s.snapshots.Get(ctx, widgetID, format, theme)
		if err != nil {
			return nil, err
		}
		if snapshot != nil && snapshot.Etag == callerEtag && snapshot.Viewable(viewerID) {
			return &RenderResult{Etag: snapshot.Etag, NotModified: true}, nil
		}
	}

	widget, err := s.viewableWidget(ctx, viewerID, widgetID)
	if err != nil {
		return nil, err
	}
	data, err := s.assemble(ctx, widget, s.now())
	if err != nil {
		return nil, err
	}
	etag := data.Etag()

	snapshot, err := s.snapshots.Get(ctx, widgetID, format, theme)
	if err != nil {
		return nil, err
	}
	if snapshot != nil && snapshot.Etag == etag && snapshot.Viewable(viewerID) {
		return &RenderResult{Payload: snapshot.Payload, Etag: etag, FromCache: true}, nil
	}

	payload, err := render(ctx, data)
	if err != nil {
		return nil, err
	}

	err = s.snapshots.Set(ctx, widgetID, format, theme, &cache.Snapshot{
		Payload:    payload,
		Etag:       etag,
		Visibility: widget.Visibility,
		UserID:     widget.UserID,
	})
	if err != nil {
		return nil, err
	}

	return &RenderResult{Payload: payload, Etag: etag}, nil
}

// Invalidate purges the widget's snapshots after a definition update.
func (s *WidgetService) Invalidate(ctx context.Context, widgetID string) error {
	return s.invalidator.InvalidateWidget(ctx, widgetID)
}
