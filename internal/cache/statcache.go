package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultStatTTL is the fixed freshness window for external stat values,
// independent of the render snapshot cache.
const DefaultStatTTL = time.Hour

type statEntry struct {
	Value       float64   `json:"value"`
	LastUpdated time.Time `json:"last_updated"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatCache is passive storage for values fetched from the external stat
// API, with expiry on read. The fetch-on-miss path lives with the API client;
// the cache never refreshes itself.
type StatCache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewStatCache(store Store, ttl time.Duration) *StatCache {
	if ttl <= 0 {
		ttl = DefaultStatTTL
	}
	return &StatCache{store: store, ttl: ttl, now: time.Now}
}

func statKey(username, statKind, timeRange string) string {
	return fmt.Sprintf("stat:%s:%s:%s", username, statKind, timeRange)
}

// Get returns the cached value, or ok=false when missing or expired.
func (c *StatCache) Get(ctx context.Context, username, statKind, timeRange string) (float64, bool, error) {
	entry, err := c.store.Get(ctx, statKey(username, statKind, timeRange))
	if err != nil {
		return 0, false, err
	}
	if entry == nil {
		return 0, false, nil
	}

	var stat statEntry
	if err := json.Unmarshal([]byte(entry.Value), &stat); err != nil {
		return 0, false, err
	}
	if !c.now().Before(stat.ExpiresAt) {
		return 0, false, nil
	}

	return stat.Value, true, nil
}

// Put upserts the value with a fresh expiry.
func (c *StatCache) Put(ctx context.Context, username, statKind, timeRange string, value float64) error {
	now := c.now()
	stat := statEntry{
		Value:       value,
		LastUpdated: now,
		ExpiresAt:   now.Add(c.ttl),
	}

	b, err := json.Marshal(stat)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, statKey(username, statKind, timeRange), &Entry{Value: string(b)})
}
