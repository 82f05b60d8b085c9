package resolver_test

import (
	"math/rand"
	"testing"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/UnknownOlympus/cellmap/internal/projection"
	"github.com/UnknownOlympus/cellmap/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var operators = []models.Operator{
	{ID: 20801, Name: "Orange"},
	{ID: 20810, Name: "SFR"},
	{ID: 20815, Name: "Free"},
	{ID: 20820, Name: "Bouygue"},
}

// Around Place Vendôme. 0.001 degree of longitude is ~111.3 planar meters.
var query = models.Coordinates{Latitude: 48.868, Longitude: 2.329}

func at(id int64, op int, dLon float64, caps models.Capabilities) models.CoveragePoint {
	return models.CoveragePoint{
		ID:           id,
		OperatorID:   op,
		Location:     models.Coordinates{Latitude: query.Latitude, Longitude: query.Longitude + dLon},
		Capabilities: caps,
	}
}

func TestSnapshot_Nearest(t *testing.T) {
	t.Parallel()

	t.Run("each operator gets the flags of its own nearest point", func(t *testing.T) {
		t.Parallel()
		points := []models.CoveragePoint{
			at(1, 20801, 0.0003, models.Capabilities{G2: true, G3: true}),
			at(2, 20801, 0.0012, models.Capabilities{G4: true}),
			at(3, 20810, -0.0004, models.Capabilities{}),
			at(4, 20815, 0.0004, models.Capabilities{G2: true, G4: true}),
			at(5, 20815, 0.0015, models.Capabilities{G3: true}),
			at(6, 20820, 0.0025, models.Capabilities{G2: true, G3: true, G4: true}),
		}
		snap, err := resolver.NewSnapshot(operators, points)
		require.NoError(t, err)

		matches, err := snap.Nearest(query, resolver.DefaultMaxDistance)

		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, "Orange", matches[0].Operator.Name)
		assert.Equal(t, models.Capabilities{G2: true, G3: true}, matches[0].Point.Capabilities)
		assert.Equal(t, "SFR", matches[1].Operator.Name)
		assert.Equal(t, models.Capabilities{}, matches[1].Point.Capabilities)
		assert.Equal(t, "Free", matches[2].Operator.Name)
		assert.Equal(t, models.Capabilities{G2: true, G4: true}, matches[2].Point.Capabilities)
		for _, m := range matches {
			assert.Less(t, m.Distance, 50.0)
		}
	})

	t.Run("query far from every point returns nothing", func(t *testing.T) {
		t.Parallel()
		snap, err := resolver.NewSnapshot(operators, []models.CoveragePoint{at(1, 20801, 0, models.Capabilities{G4: true})})
		require.NoError(t, err)

		far := models.Coordinates{Latitude: query.Latitude, Longitude: query.Longitude + 0.1}
		matches, err := snap.Nearest(far, resolver.DefaultMaxDistance)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("empty dataset", func(t *testing.T) {
		t.Parallel()
		snap, err := resolver.NewSnapshot(operators, nil)
		require.NoError(t, err)

		matches, err := snap.Nearest(query, resolver.DefaultMaxDistance)
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Equal(t, 0, snap.Size())
	})

	t.Run("unknown operator is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.NewSnapshot(operators, []models.CoveragePoint{at(1, 99999, 0, models.Capabilities{})})
		require.ErrorIs(t, err, resolver.ErrUnknownOperator)
	})

	t.Run("duplicate point id is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.NewSnapshot(operators, []models.CoveragePoint{
			at(1, 20801, 0, models.Capabilities{}),
			at(1, 20810, 0, models.Capabilities{}),
		})
		require.ErrorContains(t, err, "duplicate coverage point id 1")
	})
}

func TestSnapshot_MatchesFullScan(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewSource(42))

	points := make([]models.CoveragePoint, 0, 3000)
	for i := range 3000 {
		points = append(points, models.CoveragePoint{
			ID:         int64(i + 1),
			OperatorID: operators[rnd.Intn(len(operators))].ID,
			Location: models.Coordinates{
				Latitude:  48.86 + rnd.Float64()*0.02,
				Longitude: 2.32 + rnd.Float64()*0.02,
			},
			Capabilities: models.Capabilities{G2: rnd.Intn(2) == 1, G3: rnd.Intn(2) == 1, G4: rnd.Intn(2) == 1},
		})
	}
	snap, err := resolver.NewSnapshot(operators, points)
	require.NoError(t, err)

	all := make([]resolver.Candidate, 0, len(points))
	for _, pt := range points {
		x, y := projection.GeographicToPlanar(pt.Location.Latitude, pt.Location.Longitude)
		all = append(all, resolver.Candidate{PointID: pt.ID, OperatorID: pt.OperatorID, Location: mercator(x, y)})
	}

	for range 200 {
		q := models.Coordinates{Latitude: 48.86 + rnd.Float64()*0.02, Longitude: 2.32 + rnd.Float64()*0.02}
		x, y := projection.GeographicToPlanar(q.Latitude, q.Longitude)

		expected, err := resolver.GroupNearest(mercator(x, y), all, resolver.DefaultMaxDistance)
		require.NoError(t, err)
		got, err := snap.Nearest(q, resolver.DefaultMaxDistance)
		require.NoError(t, err)

		require.Len(t, got, len(expected))
		for _, m := range got {
			assert.Equal(t, expected[m.Operator.ID].PointID, m.Point.ID)
		}
		again, err := snap.Nearest(q, resolver.DefaultMaxDistance)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestSnapshot_Operators(t *testing.T) {
	t.Parallel()
	reversed := []models.Operator{operators[3], operators[2], operators[1], operators[0]}

	snap, err := resolver.NewSnapshot(reversed, nil)
	require.NoError(t, err)

	assert.Equal(t, operators, snap.Operators())
}
