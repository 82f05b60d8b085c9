package projection

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// CRS identifies a coordinate reference system by its EPSG code.
type CRS int

const (
	WGS84        CRS = 4326
	WebMercator  CRS = 3857
	RGF93Lambert CRS = 2154
)

// ErrCRSMismatch is returned when distances are requested between points of different systems.
var ErrCRSMismatch = errors.New("points are in different coordinate systems")

// ErrNotPlanar is returned when a distance is requested between geographic points.
var ErrNotPlanar = errors.New("distance requires a planar coordinate system")

// GeoPoint is a coordinate pair tagged with its reference system.
// For WGS84 X is the longitude and Y the latitude.
type GeoPoint struct {
	X, Y float64
	CRS  CRS
}

// Geographic builds a WGS84 point.
func Geographic(lat, lon float64) GeoPoint {
	return GeoPoint{X: lon, Y: lat, CRS: WGS84}
}

// Orb returns the point as an orb.Point.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// GeographicToPlanar projects WGS84 degrees into spherical Web Mercator meters (EPSG:3857).
func GeographicToPlanar(lat, lon float64) (float64, float64) {
	p := project.Point(orb.Point{lon, lat}, project.WGS84.ToMercator)
	return p.X(), p.Y()
}

// ToPlanar converts a geographic point into Web Mercator. Planar points are returned unchanged.
func ToPlanar(p GeoPoint) (GeoPoint, error) {
	switch p.CRS {
	case WebMercator:
		return p, nil
	case WGS84:
		x, y := GeographicToPlanar(p.Y, p.X)
		return GeoPoint{X: x, Y: y, CRS: WebMercator}, nil
	default:
		return GeoPoint{}, fmt.Errorf("unsupported conversion from EPSG:%d to EPSG:%d", p.CRS, WebMercator)
	}
}

// Distance is the Euclidean distance between two points of the same projected system.
// Geographic degrees are never compared directly.
func Distance(a, b GeoPoint) (float64, error) {
	if a.CRS != b.CRS {
		return 0, fmt.Errorf("%w: EPSG:%d and EPSG:%d", ErrCRSMismatch, a.CRS, b.CRS)
	}
	if a.CRS == WGS84 {
		return 0, ErrNotPlanar
	}
	return planar.Distance(a.Orb(), b.Orb()), nil
}
