package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleAPIClient is the subset of *maps.Client used by GoogleProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

const (
	googleRegion   = "fr"
	googleLanguage = "fr"
	googleCountry  = "FR"
)

// GoogleProvider geocodes with the Google Maps API restricted to France.
type GoogleProvider struct {
	client GoogleAPIClient
	log    *slog.Logger
}

func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// GoogleRequest builds the request sent for address.
func GoogleRequest(address string) *maps.GeocodingRequest {
	return &maps.GeocodingRequest{
		Address:    address,
		Region:     googleRegion,
		Language:   googleLanguage,
		Components: map[maps.Component]string{maps.ComponentCountry: googleCountry},
	}
}

// Geocode returns the first exact Google result for address, or the first result when all are partial.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	results, err := gp.client.Geocode(ctx, GoogleRequest(address))
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	best := results[0]
	for _, res := range results {
		if !res.PartialMatch {
			best = res
			break
		}
	}
	if best.PartialMatch {
		gp.log.DebugContext(ctx, "Only partial matches from Google Maps", "address", address,
			"formatted", best.FormattedAddress)
	}

	loc := best.Geometry.Location
	if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoords, loc)
	}

	return &models.Coordinates{Longitude: loc.Lng, Latitude: loc.Lat}, nil
}
