package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/UnknownOlympus/cellmap/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL is the public OpenStreetMap search endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// The public instance allows 1 request/second for fair use.
type NominatimProvider struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
	limiter *rate.Limiter
}

type nominatimResponse struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewNominatimProvider creates a Nominatim provider on the public endpoint.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom HTTP client and limiter.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: NominatimBaseURL,
		log:     log,
		limiter: limiter,
	}
}

// Geocode converts an address to coordinates, retrying with simpler forms of the
// address when Nominatim finds nothing:
// 1. the full address
// 2. the address without its house number ("8 bd du Port, Amiens" -> "bd du Port, Amiens")
// 3. the locality only, everything after the first comma
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	variations := addressFallbacks(address)
	for idx, variation := range variations {
		coords, err := np.search(ctx, variation)
		if err == nil {
			if idx > 0 {
				np.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", address,
					"fallback", variation,
					"fallback_level", idx)
			}
			return coords, nil
		}
		if !errors.Is(err, ErrNoMatch) {
			return nil, err
		}
	}

	np.log.DebugContext(ctx, "All address fallbacks exhausted", "address", address, "variations_tried", len(variations))
	return nil, ErrNoMatch
}

func addressFallbacks(address string) []string {
	seen := make(map[string]bool)
	var variations []string
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			variations = append(variations, v)
		}
	}

	add(address)

	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if street, ok := stripHouseNumber(parts[0]); ok {
		add(strings.Join(append([]string{street}, parts[1:]...), ", "))
	}
	if len(parts) > 1 {
		add(strings.Join(parts[1:], ", "))
	}

	return variations
}

// stripHouseNumber removes a leading "8", "8bis" or "8 ter" from a street part.
func stripHouseNumber(street string) (string, bool) {
	fields := strings.Fields(street)
	if len(fields) < 2 || !unicode.IsDigit(rune(fields[0][0])) {
		return street, false
	}
	rest := fields[1:]
	switch strings.ToLower(rest[0]) {
	case "bis", "ter", "quater":
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return street, false
	}
	return strings.Join(rest, " "), true
}

func (np *NominatimProvider) search(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("countrycodes", "fr")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fr,en")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
