package projection_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/cellmap/internal/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambert93_ProjectedToGeographic(t *testing.T) {
	t.Parallel()
	proj := projection.MustLambert(projection.Lambert93)

	t.Run("false origin maps to projection origin", func(t *testing.T) {
		t.Parallel()
		coords, err := proj.ProjectedToGeographic(700000, 6600000)

		require.NoError(t, err)
		assert.InDelta(t, 46.5, coords.Latitude, 1e-9)
		assert.InDelta(t, 3.0, coords.Longitude, 1e-9)
	})

	t.Run("survey point in Brittany", func(t *testing.T) {
		t.Parallel()
		coords, err := proj.ProjectedToGeographic(102980, 6847973)

		require.NoError(t, err)
		assert.InDelta(t, 48.45657455882987, coords.Latitude, 1e-8)
		assert.InDelta(t, -5.088856115301349, coords.Longitude, 1e-8)
	})

	t.Run("far point outside the region is still computed", func(t *testing.T) {
		t.Parallel()
		coords, err := proj.ProjectedToGeographic(0, 3)

		require.NoError(t, err)
		assert.InDelta(t, -5.983837626281218, coords.Latitude, 1e-6)
		assert.InDelta(t, -1.3630822422782436, coords.Longitude, 1e-6)
	})
}

func TestLambert93_RoundTrip(t *testing.T) {
	t.Parallel()
	proj := projection.MustLambert(projection.Lambert93)

	points := [][2]float64{
		{700000, 6600000},
		{652469, 6862035},
		{102980, 6847973},
		{1234567, 6123456},
		{350000, 7100000},
	}

	for _, pt := range points {
		coords, err := proj.ProjectedToGeographic(pt[0], pt[1])
		require.NoError(t, err)

		x, y := proj.GeographicToProjected(coords.Latitude, coords.Longitude)
		assert.InDelta(t, pt[0], x, 1e-4, "x for %v", pt)
		assert.InDelta(t, pt[1], y, 1e-4, "y for %v", pt)

		again, err := proj.ProjectedToGeographic(x, y)
		require.NoError(t, err)
		assert.InDelta(t, coords.Latitude, again.Latitude, 1e-9)
		assert.InDelta(t, coords.Longitude, again.Longitude, 1e-9)
	}
}

// Lambert-93 constants as published by IGN (NTG_71, ALG0003).
const (
	ignN  = 0.7256077650532670
	ignC  = 11754255.426096
	ignXs = 700000.0
	ignYs = 12655612.049876
	ignE  = 0.0818191910428158
	ignL0 = 3 * math.Pi / 180
)

// ignForward is the IGN geographic to Lambert-93 algorithm, written from the published
// constants so it shares nothing with the projector under test.
func ignForward(lat, lon float64) (float64, float64) {
	phi := lat * math.Pi / 180
	sinPhi := math.Sin(phi)
	iso := math.Log(math.Tan(math.Pi/4+phi/2) * math.Pow((1-ignE*sinPhi)/(1+ignE*sinPhi), ignE/2))

	r := ignC * math.Exp(-ignN*iso)
	gamma := ignN * (lon*math.Pi/180 - ignL0)

	return ignXs + r*math.Sin(gamma), ignYs - r*math.Cos(gamma)
}

func TestLambert93_AgainstIGNForward(t *testing.T) {
	t.Parallel()
	proj := projection.MustLambert(projection.Lambert93)

	testCases := []struct {
		name     string
		x, y     float64
		lat, lon float64
	}{
		{name: "false origin", x: 700000, y: 6600000, lat: 46.5, lon: 3},
		{name: "Brittany", x: 102980, y: 6847973, lat: 48.45657455882987, lon: -5.088856115301349},
		{name: "Corsica south east", x: 1242000, y: 6049000, lat: 41.34319567329461, lon: 9.463528925922585},
		{name: "Finistere west", x: 160000, y: 6860000, lat: 48.614271283704255, lon: -4.3360639383247115},
		{name: "north east beyond the border", x: 1000000, y: 7110000, lat: 51.01279731864074, lon: 7.267459101922986},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			coords, err := proj.ProjectedToGeographic(tc.x, tc.y)
			require.NoError(t, err)

			assert.InDelta(t, tc.lat, coords.Latitude, 1e-8)
			assert.InDelta(t, tc.lon, coords.Longitude, 1e-8)

			x, y := ignForward(coords.Latitude, coords.Longitude)
			assert.InDelta(t, tc.x, x, 1e-3, "easting back through the IGN forward")
			assert.InDelta(t, tc.y, y, 1e-3, "northing back through the IGN forward")
		})
	}
}

func TestLambert_Strict(t *testing.T) {
	t.Parallel()
	cfg := projection.Lambert93
	cfg.Strict = true
	proj := projection.MustLambert(cfg)

	_, err := proj.ProjectedToGeographic(0, 3)
	require.ErrorIs(t, err, projection.ErrOutOfRegion)

	coords, err := proj.ProjectedToGeographic(652469, 6862035)
	require.NoError(t, err)
	assert.InDelta(t, 48.85, coords.Latitude, 0.05)
	assert.InDelta(t, 2.35, coords.Longitude, 0.05)
}

func TestNewLambert_InvalidConfig(t *testing.T) {
	t.Parallel()

	t.Run("equal parallels", func(t *testing.T) {
		t.Parallel()
		cfg := projection.Lambert93
		cfg.StandardParallel2 = cfg.StandardParallel1

		_, err := projection.NewLambert(cfg)
		require.Error(t, err)
	})

	t.Run("missing ellipsoid", func(t *testing.T) {
		t.Parallel()
		cfg := projection.Lambert93
		cfg.Ellipsoid = projection.Ellipsoid{}

		_, err := projection.NewLambert(cfg)
		require.ErrorContains(t, err, "invalid ellipsoid")
	})

	t.Run("must panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			projection.MustLambert(projection.LambertConfig{})
		})
	})
}
