// Package projection converts coordinates between the regional Lambert conformal conic
// system used by survey data, geographic WGS84 and the planar Web Mercator system used
// for distance measurement.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

const (
	maxInverseIterations = 15
	inverseTolerance     = 1e-12
)

// ErrOutOfRegion is returned by a strict projector when the input lies outside the configured bounds.
var ErrOutOfRegion = errors.New("coordinates outside the projection region")

// Ellipsoid describes a reference ellipsoid by its semi-major axis and inverse flattening.
type Ellipsoid struct {
	SemiMajor         float64 // meters
	InverseFlattening float64
}

// GRS80 is the ellipsoid of RGF93 / Lambert-93. It is WGS84-compatible without datum shift.
var GRS80 = Ellipsoid{SemiMajor: 6378137.0, InverseFlattening: 298.257222101}

// Eccentricity returns the first eccentricity of the ellipsoid.
func (e Ellipsoid) Eccentricity() float64 {
	f := 1 / e.InverseFlattening
	return math.Sqrt(2*f - f*f)
}

// Bounds is a projected rectangle in meters.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// LambertConfig holds the parameters of a two standard parallels Lambert conformal conic projection.
// Angles are decimal degrees, offsets meters.
type LambertConfig struct {
	StandardParallel1 float64
	StandardParallel2 float64
	OriginLatitude    float64
	CentralMeridian   float64
	FalseEasting      float64
	FalseNorthing     float64
	Ellipsoid         Ellipsoid
	Bounds            Bounds // Region of validity, only enforced when Strict is set.
	Strict            bool
}

// Lambert93 is the official projection of metropolitan France (EPSG:2154).
var Lambert93 = LambertConfig{
	StandardParallel1: 49,
	StandardParallel2: 44,
	OriginLatitude:    46.5,
	CentralMeridian:   3,
	FalseEasting:      700000,
	FalseNorthing:     6600000,
	Ellipsoid:         GRS80,
	Bounds:            Bounds{MinX: -357823.24, MinY: 6037008.69, MaxX: 1313632.36, MaxY: 7230727.37},
}

// Lambert is a ready to use Lambert conformal conic projector. Constants derived from the
// configuration are computed once; the projector is immutable and safe for concurrent use.
type Lambert struct {
	cfg  LambertConfig
	a    float64
	e    float64
	n    float64
	aF   float64 // a * F
	rho0 float64
	lon0 float64
}

// NewLambert validates cfg and precomputes the cone constants.
func NewLambert(cfg LambertConfig) (*Lambert, error) {
	if cfg.Ellipsoid.SemiMajor <= 0 || cfg.Ellipsoid.InverseFlattening <= 0 {
		return nil, fmt.Errorf("invalid ellipsoid: %+v", cfg.Ellipsoid)
	}
	if cfg.StandardParallel1 == cfg.StandardParallel2 {
		return nil, errors.New("standard parallels must differ")
	}
	if cfg.StandardParallel1 == -cfg.StandardParallel2 {
		return nil, errors.New("standard parallels must not be symmetric about the equator")
	}

	e := cfg.Ellipsoid.Eccentricity()
	phi1 := toRadians(cfg.StandardParallel1)
	phi2 := toRadians(cfg.StandardParallel2)
	phi0 := toRadians(cfg.OriginLatitude)

	m1, m2 := mFactor(phi1, e), mFactor(phi2, e)
	t1, t2, t0 := tFactor(phi1, e), tFactor(phi2, e), tFactor(phi0, e)

	n := (math.Log(m1) - math.Log(m2)) / (math.Log(t1) - math.Log(t2))
	aF := cfg.Ellipsoid.SemiMajor * m1 / (n * math.Pow(t1, n))

	return &Lambert{
		cfg:  cfg,
		a:    cfg.Ellipsoid.SemiMajor,
		e:    e,
		n:    n,
		aF:   aF,
		rho0: aF * math.Pow(t0, n),
		lon0: toRadians(cfg.CentralMeridian),
	}, nil
}

// MustLambert is NewLambert that panics on an invalid configuration.
func MustLambert(cfg LambertConfig) *Lambert {
	l, err := NewLambert(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// ProjectedToGeographic converts projected meters to WGS84 degrees (inverse projection).
// Unless the projector is strict, inputs outside the region of validity are computed anyway.
func (l *Lambert) ProjectedToGeographic(x, y float64) (models.Coordinates, error) {
	if l.cfg.Strict && !l.cfg.Bounds.Contains(x, y) {
		return models.Coordinates{}, fmt.Errorf("%w: (%.2f, %.2f)", ErrOutOfRegion, x, y)
	}

	dx := x - l.cfg.FalseEasting
	dy := l.rho0 - (y - l.cfg.FalseNorthing)
	if l.n < 0 {
		dx, dy = -dx, -dy
	}

	rho := math.Copysign(math.Hypot(dx, dy), l.n)
	theta := math.Atan2(dx, dy)
	lon := theta/l.n + l.lon0

	if rho == 0 {
		return models.Coordinates{Latitude: math.Copysign(90, l.n), Longitude: toDegrees(lon)}, nil
	}

	t := math.Pow(rho/l.aF, 1/l.n)
	halfE := l.e / 2
	phi := math.Pi/2 - 2*math.Atan(t)
	for range maxInverseIterations {
		esin := l.e * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-esin)/(1+esin), halfE))
		if math.Abs(next-phi) < inverseTolerance {
			phi = next
			break
		}
		phi = next
	}

	return models.Coordinates{Latitude: toDegrees(phi), Longitude: toDegrees(lon)}, nil
}

// GeographicToProjected converts WGS84 degrees to projected meters (forward projection).
func (l *Lambert) GeographicToProjected(lat, lon float64) (float64, float64) {
	phi := toRadians(lat)
	rho := l.aF * math.Pow(tFactor(phi, l.e), l.n)
	theta := l.n * (toRadians(lon) - l.lon0)

	x := l.cfg.FalseEasting + rho*math.Sin(theta)
	y := l.cfg.FalseNorthing + l.rho0 - rho*math.Cos(theta)
	return x, y
}

func mFactor(phi, e float64) float64 {
	sin := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-e*e*sin*sin)
}

func tFactor(phi, e float64) float64 {
	esin := e * math.Sin(phi)
	return math.Tan(math.Pi/4-phi/2) / math.Pow((1-esin)/(1+esin), e/2)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
