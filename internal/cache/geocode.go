package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/geocoding"
	"github.com/UnknownOlympus/cellmap/internal/metrics"
	"github.com/UnknownOlympus/cellmap/internal/models"
)

const keyPrefix = "geocode:"

// GeocodeCache is a geocoding.Provider answering from Store before asking the wrapped provider.
// Only successful answers are cached. Store failures are logged and bypassed.
type GeocodeCache struct {
	next    geocoding.Provider
	store   Store
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewGeocodeCache wraps next with a cache of the given ttl.
func NewGeocodeCache(
	next geocoding.Provider,
	store Store,
	ttl time.Duration,
	log *slog.Logger,
	appMetrics *metrics.Metrics,
) *GeocodeCache {
	return &GeocodeCache{next: next, store: store, ttl: ttl, log: log, metrics: appMetrics}
}

// Key returns the cache key of an address: whitespace collapsed, lower case.
func Key(address string) string {
	return keyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (c *GeocodeCache) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	key := Key(address)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var coords *models.Coordinates
		if errDecode := json.Unmarshal(data, &coords); errDecode == nil && coords != nil {
			c.metrics.CacheRequests.WithLabelValues(metrics.CacheHit).Inc()
			c.log.DebugContext(ctx, "Geocoding cache hit", "key", key)
			return coords, nil
		}
		c.metrics.CacheRequests.WithLabelValues(metrics.CacheError).Inc()
		c.log.WarnContext(ctx, "Discarding undecodable cache entry", "key", key)
	case errors.Is(err, ErrMiss):
		c.metrics.CacheRequests.WithLabelValues(metrics.CacheMiss).Inc()
	default:
		c.metrics.CacheRequests.WithLabelValues(metrics.CacheError).Inc()
		c.log.WarnContext(ctx, "Geocoding cache unavailable", "error", err)
	}

	coords, err := c.next.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, geocoding.ErrNoMatch
	}

	data, err = json.Marshal(coords)
	if err == nil {
		err = c.store.Set(ctx, key, data, c.ttl)
	}
	if err != nil {
		c.log.WarnContext(ctx, "Failed to cache geocoding result", "key", key, "error", err)
	}

	return coords, nil
}
