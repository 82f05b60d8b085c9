// Package service orchestrates coverage lookups and keeps the served dataset fresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/geocoding"
	"github.com/UnknownOlympus/cellmap/internal/metrics"
	"github.com/UnknownOlympus/cellmap/internal/models"
)

var (
	// ErrMissingQuery is returned for an absent or blank address.
	ErrMissingQuery = errors.New("missing query")
	// ErrNoResult is returned when the address cannot be turned into a location.
	ErrNoResult = errors.New("address could not be located")
	// ErrGeocodeTimeout is returned when the provider does not answer in time.
	ErrGeocodeTimeout = errors.New("geocoding timed out")
)

// CoverageFinder resolves the nearest coverage per operator around a location.
type CoverageFinder interface {
	Nearest(ctx context.Context, coords models.Coordinates) ([]models.Match, error)
	Operators(ctx context.Context) ([]models.Operator, error)
}

// CoverageService turns an address into per-operator network availability.
type CoverageService struct {
	log            *slog.Logger
	provider       geocoding.Provider
	providerName   string
	finder         CoverageFinder
	metrics        *metrics.Metrics
	geocodeTimeout time.Duration
}

// NewCoverageService creates a CoverageService. A zero geocodeTimeout leaves the provider unbounded.
func NewCoverageService(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	finder CoverageFinder,
	appMetrics *metrics.Metrics,
	geocodeTimeout time.Duration,
) *CoverageService {
	return &CoverageService{
		log:            log,
		provider:       provider,
		providerName:   providerName,
		finder:         finder,
		metrics:        appMetrics,
		geocodeTimeout: geocodeTimeout,
	}
}

// Lookup geocodes query and returns, per operator name, the capabilities of its nearest
// coverage point within range. Operators without such a point are absent; an empty map is a valid answer.
func (cs *CoverageService) Lookup(ctx context.Context, query string) (map[string]models.Capabilities, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusMissingQuery).Inc()
		return nil, ErrMissingQuery
	}

	coords, err := cs.geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	matches, err := cs.finder.Nearest(ctx, *coords)
	cs.metrics.ResolveSeconds.Observe(time.Since(startTime).Seconds())
	if err != nil {
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, fmt.Errorf("failed to resolve coverage: %w", err)
	}

	result := make(map[string]models.Capabilities, len(matches))
	for _, m := range matches {
		result[m.Operator.Name] = m.Point.Capabilities
	}

	status := metrics.StatusFound
	if len(result) == 0 {
		status = metrics.StatusEmpty
	}
	cs.metrics.LookupsTotal.WithLabelValues(status).Inc()
	cs.log.DebugContext(ctx, "Coverage resolved", "query", query, "lat", coords.Latitude, "lon", coords.Longitude,
		"operators", len(result))

	return result, nil
}

// Operators lists the operators of the served dataset.
func (cs *CoverageService) Operators(ctx context.Context) ([]models.Operator, error) {
	ops, err := cs.finder.Operators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}
	return ops, nil
}

func (cs *CoverageService) geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	geoCtx := ctx
	if cs.geocodeTimeout > 0 {
		var cancel context.CancelFunc
		geoCtx, cancel = context.WithTimeout(ctx, cs.geocodeTimeout)
		defer cancel()
	}

	startTime := time.Now()
	coords, err := cs.provider.Geocode(geoCtx, query)
	cs.metrics.GeocodeSeconds.WithLabelValues(cs.providerName).Observe(time.Since(startTime).Seconds())

	if err == nil && coords != nil {
		return coords, nil
	}
	if err == nil {
		err = geocoding.ErrNoMatch
	}

	switch {
	case ctx.Err() != nil:
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, fmt.Errorf("lookup aborted: %w", ctx.Err())
	case errors.Is(geoCtx.Err(), context.DeadlineExceeded):
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusTimeout).Inc()
		cs.metrics.GeocodeErrors.Inc()
		cs.log.WarnContext(ctx, "Geocoding timed out", "query", query, "timeout", cs.geocodeTimeout)
		return nil, fmt.Errorf("%w: %w", ErrGeocodeTimeout, err)
	case errors.Is(err, geocoding.ErrNoMatch):
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusNoResult).Inc()
		cs.log.DebugContext(ctx, "Address not found", "query", query)
		return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
	default:
		cs.metrics.LookupsTotal.WithLabelValues(metrics.StatusNoResult).Inc()
		cs.metrics.GeocodeErrors.Inc()
		cs.log.ErrorContext(ctx, "Failed to geocode", "query", query, "provider", cs.providerName, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoResult, err)
	}
}
