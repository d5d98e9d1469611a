package cache

import (
	"context"
	"fmt"
)

// Output formats and themes a widget can be rendered in. Every combination
// gets its own snapshot entry and is purged as a unit on invalidation.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"

	ThemeLight = "light"
	ThemeDark  = "dark"
)

var (
	Formats = []string{FormatHTML, FormatSVG}
	Themes  = []string{ThemeLight, ThemeDark}
)

const (
	metaVisibility = "visibility"
	metaUserID     = "user_id"

	visibilityPublic = "public"
)

// Snapshot is a previously rendered widget output. Etag hashes the assembled
// metric data that produced the payload, not the rendered bytes, so two
// renders of identical data collide on etag even if rendering is
// nondeterministic. Visibility and owner gate conditional responses.
type Snapshot struct {
	Payload    string
	Etag       string
	Visibility string
	UserID     string
}

// Viewable reports whether the snapshot may be served to the viewer: the
// widget is public or the viewer owns it.
func (s *Snapshot) Viewable(viewerID string) bool {
	return s.Visibility == visibilityPublic || (viewerID != "" && viewerID == s.UserID)
}

// SnapshotCache is the content-addressed render cache keyed by
// (widget, format, theme).
type SnapshotCache struct {
	store Store
}

func NewSnapshotCache(store Store) *SnapshotCache {
	return &SnapshotCache{store: store}
}

func SnapshotKey(widgetID, format, theme string) string {
	return fmt.Sprintf("widget:%s:%s:%s", widgetID, format, theme)
}

// Get returns the stored snapshot, or nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context, widgetID, format, theme string) (*Snapshot, error) {
	entry, err := c.store.Get(ctx, SnapshotKey(widgetID, format, theme))
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	return &Snapshot{
		Payload:    entry.Value,
		Etag:       entry.Etag,
		Visibility: entry.Metadata[metaVisibility],
		UserID:     entry.Metadata[metaUserID],
	}, nil
}

// Set overwrites the snapshot for the key, including its etag and the
// visibility/owner metadata used to gate conditional responses.
func (c *SnapshotCache) Set(ctx context.Context, widgetID, format, theme string, snapshot *Snapshot) error {
	entry := &Entry{
		Value: snapshot.Payload,
		Etag:  snapshot.Etag,
		Metadata: map[string]string{
			metaVisibility: snapshot.Visibility,
			metaUserID:     snapshot.UserID,
		},
	}
	return c.store.Set(ctx, SnapshotKey(widgetID, format, theme), entry)
}

func (c *SnapshotCache) Delete(ctx context.Context, widgetID, format, theme string) error {
	return c.store.Delete(ctx, SnapshotKey(widgetID, format, theme))
}
