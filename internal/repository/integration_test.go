//go:build integration

package repository_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
	"github.com/UnknownOlympus/cellmap/internal/repository"
	"github.com/UnknownOlympus/cellmap/internal/resolver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostGIS(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := t.Context()

	container, err := postgres.Run(ctx, "postgis/postgis:16-3.4",
		postgres.WithDatabase("cellmap"),
		postgres.WithUsername("cellmap"),
		postgres.WithPassword("cellmap"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// offset returns the point lying dx Mercator meters east of origin.
func offset(origin models.Coordinates, dx float64) models.Coordinates {
	x, y := projection.GeographicToPlanar(origin.Latitude, origin.Longitude)
	p := project.Mercator.ToWGS84(orb.Point{x + dx, y})
	return models.Coordinates{Latitude: p.Lat(), Longitude: p.Lon()}
}

func TestPostGIS_MatchesInMemoryResolver(t *testing.T) {
	pool := startPostGIS(t)
	ctx := t.Context()
	repo := repository.NewRepository(pool, slog.Default())

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema must be idempotent")

	initialised, err := repo.HasOperators(ctx)
	require.NoError(t, err)
	assert.False(t, initialised)

	origin := models.Coordinates{Latitude: 48.8686, Longitude: 2.3294}
	ops := []models.Operator{{ID: 20801, Name: "Orange"}, {ID: 20810, Name: "SFR"}, {ID: 20815, Name: "Free"}}
	pts := []models.CoveragePoint{
		{ID: 1, OperatorID: 20801, Location: offset(origin, 50), Capabilities: models.Capabilities{G4: true}},
		{ID: 2, OperatorID: 20801, Location: offset(origin, 20), Capabilities: models.Capabilities{G2: true}},
		{ID: 3, OperatorID: 20810, Location: offset(origin, 199.5), Capabilities: models.Capabilities{G3: true}},
		{ID: 4, OperatorID: 20815, Location: offset(origin, 200.5), Capabilities: models.Capabilities{G4: true}},
		{ID: 5, OperatorID: 20815, Location: offset(origin, -30), Capabilities: models.Capabilities{G2: true}},
		{ID: 6, OperatorID: 20815, Location: offset(origin, 40), Capabilities: models.Capabilities{G3: true}},
	}

	count, err := repo.ReplaceDataset(ctx, ops, pts)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pts)), count)

	loaded, err := repo.LoadCoverage(ctx)
	require.NoError(t, err)
	snapshot, err := resolver.NewSnapshot(ops, loaded)
	require.NoError(t, err)

	fromSQL, err := repo.NearestWithin(ctx, origin, resolver.DefaultMaxDistance)
	require.NoError(t, err)
	fromMemory, err := snapshot.Nearest(origin, resolver.DefaultMaxDistance)
	require.NoError(t, err)

	require.Len(t, fromSQL, 3)
	require.Len(t, fromMemory, 3)
	for i := range fromSQL {
		assert.Equal(t, fromMemory[i].Operator, fromSQL[i].Operator)
		assert.Equal(t, fromMemory[i].Point.ID, fromSQL[i].Point.ID)
		assert.InDelta(t, fromMemory[i].Distance, fromSQL[i].Distance, 1e-3)
	}
	assert.Equal(t, int64(2), fromSQL[0].Point.ID)
	assert.Equal(t, int64(5), fromSQL[2].Point.ID)

	initialised, err = repo.HasOperators(ctx)
	require.NoError(t, err)
	assert.True(t, initialised)

	count, err = repo.ReplaceDataset(ctx, ops[:1], pts[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	listed, err := repo.ListOperators(ctx)
	require.NoError(t, err)
	assert.Equal(t, ops[:1], listed)
}
