// Package geocoding resolves free text French addresses to WGS84 coordinates.
package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/cellmap/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the coordinates of the best match. ErrNoMatch is returned
// when the provider knows no place for the address.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var (
	// ErrNoMatch is returned when a provider answers without any result.
	ErrNoMatch = errors.New("no geocoding match")
	// ErrInvalidCoords is returned when a provider answers with unusable coordinates.
	ErrInvalidCoords = errors.New("provider returned invalid coordinates")
)

const userAgent = "Cellmap-Coverage-Service/1.0 (https://github.com/UnknownOlympus/cellmap)"
