// Package cache keeps listing snapshots and session state in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dcode-github/property_tours/models"
	"github.com/redis/go-redis/v9"
)

const (
	listingKeyPattern = "property:*"
	availableKey      = "property:available"
	featuredKey       = "property:featured"
	similarKeyPrefix  = "property:similar:"
	scanCount         = 100
)

type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListingCache(rdb *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: rdb, ttl: ttl}
}

// Available returns the cached available-listing snapshot. ok is false on a
// cache miss.
func (c *ListingCache) Available(ctx context.Context) ([]models.Listing, bool, error) {
	return c.getListings(ctx, availableKey)
}

func (c *ListingCache) SetAvailable(ctx context.Context, listings []models.Listing) error {
	return c.setJSON(ctx, availableKey, listings)
}

func (c *ListingCache) Featured(ctx context.Context) ([]models.Listing, bool, error) {
	return c.getListings(ctx, featuredKey)
}

func (c *ListingCache) SetFeatured(ctx context.Context, listings []models.Listing) error {
	return c.setJSON(ctx, featuredKey, listings)
}

func (c *ListingCache) Similar(ctx context.Context, id string) ([]models.Listing, bool, error) {
	return c.getListings(ctx, similarKeyPrefix+id)
}

func (c *ListingCache) SetSimilar(ctx context.Context, id string, listings []models.Listing) error {
	return c.setJSON(ctx, similarKeyPrefix+id, listings)
}

// Invalidate deletes every listing key and returns how many were removed.
func (c *ListingCache) Invalidate(ctx context.Context) (int, error) {
	var keysToDelete []string
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, listingKeyPattern, scanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("scanning %q: %w", listingKeyPattern, err)
		}
		keysToDelete = append(keysToDelete, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return 0, nil
	}

	pipe := c.rdb.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("deleting %d listing keys: %w", len(keysToDelete), err)
	}
	return len(keysToDelete), nil
}

func (c *ListingCache) getListings(ctx context.Context, key string) ([]models.Listing, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %s: %w", key, err)
	}

	var listings []models.Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return listings, true, nil
}

func (c *ListingCache) setJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}
