package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/geocoding"
	"github.com/UnknownOlympus/cellmap/internal/metrics"
	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/resolver"
	"github.com/UnknownOlympus/cellmap/internal/service"
	"github.com/UnknownOlympus/cellmap/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const address = "8 bd du Port, Amiens"

var (
	amiens  = &models.Coordinates{Latitude: 49.897443, Longitude: 2.290084}
	orange  = models.Operator{ID: 20801, Name: "Orange"}
	free    = models.Operator{ID: 20815, Name: "Free"}
	matches = []models.Match{
		{Operator: orange, Point: models.CoveragePoint{ID: 1, OperatorID: orange.ID,
			Capabilities: models.Capabilities{G2: true, G3: true}}, Distance: 12},
		{Operator: free, Point: models.CoveragePoint{ID: 7, OperatorID: free.ID,
			Capabilities: models.Capabilities{G4: true}}, Distance: 180},
	}
)

func lookups(m *metrics.Metrics, status string) float64 {
	return testutil.ToFloat64(m.LookupsTotal.WithLabelValues(status))
}

func newService(
	t *testing.T,
	timeout time.Duration,
) (*service.CoverageService, *mocks.Provider, *mocks.CoverageFinder, *metrics.Metrics) {
	t.Helper()
	provider := mocks.NewProvider(t)
	finder := mocks.NewCoverageFinder(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	svc := service.NewCoverageService(slog.Default(), provider, "adresse", finder, appMetrics, timeout)
	return svc, provider, finder, appMetrics
}

func TestCoverageService_Lookup(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("capabilities keyed by operator name", func(t *testing.T) {
		t.Parallel()
		svc, provider, finder, appMetrics := newService(t, time.Second)
		provider.On("Geocode", mock.Anything, address).Return(amiens, nil).Once()
		finder.On("Nearest", ctx, *amiens).Return(matches, nil).Once()

		got, err := svc.Lookup(ctx, "  "+address+" ")

		require.NoError(t, err)
		assert.Equal(t, map[string]models.Capabilities{
			"Orange": {G2: true, G3: true},
			"Free":   {G4: true},
		}, got)
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusFound), 0)
	})

	t.Run("nothing in range is an empty answer", func(t *testing.T) {
		t.Parallel()
		svc, provider, finder, appMetrics := newService(t, time.Second)
		provider.On("Geocode", mock.Anything, address).Return(amiens, nil).Once()
		finder.On("Nearest", ctx, *amiens).Return(nil, nil).Once()

		got, err := svc.Lookup(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusEmpty), 0)
	})

	t.Run("blank query", func(t *testing.T) {
		t.Parallel()
		svc, _, _, appMetrics := newService(t, time.Second)

		_, err := svc.Lookup(ctx, " \t ")

		require.ErrorIs(t, err, service.ErrMissingQuery)
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusMissingQuery), 0)
	})

	t.Run("unknown address", func(t *testing.T) {
		t.Parallel()
		svc, provider, _, appMetrics := newService(t, time.Second)
		provider.On("Geocode", mock.Anything, "zzzz").Return(nil, geocoding.ErrNoMatch).Once()

		_, err := svc.Lookup(ctx, "zzzz")

		require.ErrorIs(t, err, service.ErrNoResult)
		require.ErrorIs(t, err, geocoding.ErrNoMatch)
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusNoResult), 0)
		assert.InDelta(t, 0.0, testutil.ToFloat64(appMetrics.GeocodeErrors), 0)
	})

	t.Run("provider without answer nor error", func(t *testing.T) {
		t.Parallel()
		svc, provider, _, _ := newService(t, time.Second)
		provider.On("Geocode", mock.Anything, address).Return(nil, nil).Once()

		_, err := svc.Lookup(ctx, address)

		require.ErrorIs(t, err, service.ErrNoResult)
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()
		svc, provider, _, appMetrics := newService(t, time.Second)
		provider.On("Geocode", mock.Anything, address).Return(nil, assert.AnError).Once()

		_, err := svc.Lookup(ctx, address)

		require.ErrorIs(t, err, service.ErrNoResult)
		require.ErrorIs(t, err, assert.AnError)
		assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.GeocodeErrors), 0)
	})

	t.Run("provider too slow", func(t *testing.T) {
		t.Parallel()
		svc, provider, _, appMetrics := newService(t, 20*time.Millisecond)
		provider.On("Geocode", mock.Anything, address).
			Return(func(ctx context.Context, _ string) (*models.Coordinates, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}).Once()

		_, err := svc.Lookup(ctx, address)

		require.ErrorIs(t, err, service.ErrGeocodeTimeout)
		require.NotErrorIs(t, err, service.ErrNoResult)
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusTimeout), 0)
	})

	t.Run("caller gone", func(t *testing.T) {
		t.Parallel()
		svc, provider, _, _ := newService(t, time.Second)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		provider.On("Geocode", mock.Anything, address).
			Return(func(ctx context.Context, _ string) (*models.Coordinates, error) {
				return nil, ctx.Err()
			}).Once()

		_, err := svc.Lookup(cancelled, address)

		require.ErrorIs(t, err, context.Canceled)
		require.NotErrorIs(t, err, service.ErrGeocodeTimeout)
		require.NotErrorIs(t, err, service.ErrNoResult)
	})

	t.Run("resolver failure", func(t *testing.T) {
		t.Parallel()
		svc, provider, finder, appMetrics := newService(t, 0)
		provider.On("Geocode", ctx, address).Return(amiens, nil).Once()
		finder.On("Nearest", ctx, *amiens).Return(nil, resolver.ErrNoSnapshot).Once()

		_, err := svc.Lookup(ctx, address)

		require.ErrorIs(t, err, resolver.ErrNoSnapshot)
		require.ErrorContains(t, err, "failed to resolve coverage")
		assert.InDelta(t, 1.0, lookups(appMetrics, metrics.StatusError), 0)
	})
}

func TestCoverageService_Operators(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc, _, finder, _ := newService(t, time.Second)
		finder.On("Operators", ctx).Return([]models.Operator{orange, free}, nil).Once()

		got, err := svc.Operators(ctx)

		require.NoError(t, err)
		assert.Equal(t, []models.Operator{orange, free}, got)
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		svc, _, finder, _ := newService(t, time.Second)
		finder.On("Operators", ctx).Return(nil, assert.AnError).Once()

		_, err := svc.Operators(ctx)

		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestCoverageService_WithSnapshot(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	provider := mocks.NewProvider(t)
	res := resolver.New(resolver.DefaultMaxDistance)
	snap, err := resolver.NewSnapshot(
		[]models.Operator{orange, free},
		[]models.CoveragePoint{
			{ID: 1, OperatorID: orange.ID, Location: *amiens, Capabilities: models.Capabilities{G4: true}},
			{ID: 2, OperatorID: free.ID, Location: models.Coordinates{Latitude: 49.9, Longitude: 2.4},
				Capabilities: models.Capabilities{G2: true}},
		})
	require.NoError(t, err)
	res.Publish(snap)
	provider.On("Geocode", mock.Anything, address).Return(amiens, nil).Once()

	svc := service.NewCoverageService(slog.Default(), provider, "adresse", res,
		metrics.NewMetrics(prometheus.NewRegistry()), time.Second)
	got, err := svc.Lookup(ctx, address)

	require.NoError(t, err)
	assert.Equal(t, map[string]models.Capabilities{"Orange": {G4: true}}, got)
}
