// Package catalog owns the in-memory snapshot of available listings that
// search requests are filtered against.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/filters"
	"github.com/dcode-github/property_tours/models"
)

type Source interface {
	ListAvailable(ctx context.Context) ([]models.Listing, error)
}

// SnapshotCache is the shared cache in front of Source. It may be nil.
type SnapshotCache interface {
	Available(ctx context.Context) ([]models.Listing, bool, error)
	SetAvailable(ctx context.Context, listings []models.Listing) error
	Invalidate(ctx context.Context) (int, error)
}

type Result struct {
	Listings []models.Listing `json:"listings"`
	Total    int              `json:"total"`
	Criteria filters.Criteria `json:"criteria"`
}

type Catalog struct {
	source Source
	cache  SnapshotCache
	logger *slog.Logger

	// loadMu serializes reloads so an older read can never replace a newer
	// snapshot or write it back to the cache after an invalidation.
	loadMu sync.Mutex

	mu       sync.RWMutex
	listings []models.Listing
	loadedAt time.Time
}

func New(source Source, cache SnapshotCache, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		source: source,
		cache:  cache,
		logger: logger.With(slog.String("component", "catalog")),
	}
}

// Load replaces the snapshot, reading through the cache when one is set.
func (c *Catalog) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.load(ctx)
}

// Invalidate drops cached listing data and reloads from the source.
func (c *Catalog) Invalidate(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if c.cache != nil {
		n, err := c.cache.Invalidate(ctx)
		if err != nil {
			c.logger.Warn("Listing cache invalidation failed", slog.Any("error", err))
		} else {
			c.logger.Debug("Listing cache invalidated", slog.Int("keys", n))
		}
	}
	return c.load(ctx)
}

func (c *Catalog) load(ctx context.Context) error {
	listings, fromCache := c.readCache(ctx)
	if !fromCache {
		var err error
		listings, err = c.source.ListAvailable(ctx)
		if err != nil {
			return fmt.Errorf("loading available listings: %w", err)
		}
		c.writeCache(ctx, listings)
	}

	c.mu.Lock()
	c.listings = listings
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("Catalog loaded", slog.Int("listings", len(listings)), slog.Bool("from_cache", fromCache))
	return nil
}

// HandleEvent reloads the snapshot whenever a listing changed elsewhere.
func (c *Catalog) HandleEvent(ctx context.Context, ev events.Event) error {
	if !strings.HasPrefix(ev.Type, "listing.") {
		return nil
	}
	c.logger.Debug("Reloading catalog after event", slog.String("event", ev.Type), slog.String("event_id", ev.ID))
	return c.Invalidate(ctx)
}

// Snapshot returns the current listings. Callers must not modify them.
func (c *Catalog) Snapshot() []models.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.listings
}

func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Catalog) Search(criteria filters.Criteria) Result {
	matched := filters.Apply(c.Snapshot(), criteria)
	return Result{
		Listings: matched,
		Total:    len(matched),
		Criteria: criteria.Normalize(),
	}
}

func (c *Catalog) readCache(ctx context.Context) ([]models.Listing, bool) {
	if c.cache == nil {
		return nil, false
	}
	listings, ok, err := c.cache.Available(ctx)
	if err != nil {
		c.logger.Warn("Listing cache read failed", slog.Any("error", err))
		return nil, false
	}
	return listings, ok
}

func (c *Catalog) writeCache(ctx context.Context, listings []models.Listing) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetAvailable(ctx, listings); err != nil {
		c.logger.Warn("Listing cache write failed", slog.Any("error", err))
	}
}
