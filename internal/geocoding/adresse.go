package geocoding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/time/rate"
)

// AdresseBaseURL is the search endpoint of the French national address database.
const AdresseBaseURL = "https://api-adresse.data.gouv.fr/search/"

// AdresseProvider geocodes with api-adresse.data.gouv.fr. The service answers
// with a GeoJSON feature collection ordered by relevance.
type AdresseProvider struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
	limiter *rate.Limiter
}

// NewAdresseProvider creates a provider sending at most rateLimit requests per second.
func NewAdresseProvider(rateLimit int, log *slog.Logger) *AdresseProvider {
	const timeout = 10

	return NewAdresseProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewAdresseProviderWithClient allows injecting a custom HTTP client and limiter.
func NewAdresseProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *AdresseProvider {
	return &AdresseProvider{
		client:  client,
		baseURL: AdresseBaseURL,
		log:     log,
		limiter: limiter,
	}
}

// Geocode returns the position of the first feature matching address.
func (ap *AdresseProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, ErrNoMatch
	}

	if err := ap.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	ap.log.DebugContext(ctx, "Geocoding using api-adresse", "address", address)

	reqURL, err := url.Parse(ap.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("q", address)
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := ap.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		ap.log.ErrorContext(ctx, "api-adresse error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("api-adresse returned status %d: %s", resp.StatusCode, string(body))
	}

	collection, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode api-adresse response: %w", err)
	}
	if len(collection.Features) == 0 {
		return nil, ErrNoMatch
	}

	feature := collection.Features[0]
	point, ok := feature.Geometry.(orb.Point)
	if !ok {
		return nil, fmt.Errorf("%w: geometry %T", ErrInvalidCoords, feature.Geometry)
	}

	ap.log.DebugContext(ctx, "api-adresse found result",
		"label", feature.Properties.MustString("label", ""),
		"lat", point.Lat(),
		"lon", point.Lon())

	return &models.Coordinates{Latitude: point.Lat(), Longitude: point.Lon()}, nil
}
