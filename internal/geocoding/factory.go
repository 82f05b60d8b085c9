package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"googlemaps.github.io/maps"
)

// ProviderType names a geocoding backend in configuration.
type ProviderType string

const (
	// ProviderTypeAdresse is the French national address API, the default.
	ProviderTypeAdresse ProviderType = "adresse"
	// ProviderTypeGoogle is the Google Maps geocoding API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim is the OpenStreetMap Nominatim API.
	ProviderTypeNominatim ProviderType = "nominatim"
)

const defaultRateLimit = 10

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type      ProviderType
	APIKey    string // Google only.
	RateLimit int    // Requests per second, adresse and google. Nominatim keeps its fair use rate.
	Logger    *slog.Logger
}

type constructor func(config ProviderConfig) (Provider, error)

var constructors = map[ProviderType]constructor{
	ProviderTypeAdresse:   newAdresseProvider,
	ProviderTypeGoogle:    newGoogleProvider,
	ProviderTypeNominatim: newNominatimProvider,
}

// SupportedProviders lists the accepted provider types in name order.
func SupportedProviders() []ProviderType {
	types := make([]ProviderType, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// NewProvider creates the provider selected by config.Type.
func NewProvider(config ProviderConfig) (Provider, error) {
	build, ok := constructors[config.Type]
	if !ok {
		names := make([]string, 0, len(constructors))
		for _, t := range SupportedProviders() {
			names = append(names, string(t))
		}
		return nil, fmt.Errorf("unsupported provider type: %s (supported: %s)", config.Type, strings.Join(names, ", "))
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return build(config)
}

func newAdresseProvider(config ProviderConfig) (Provider, error) {
	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
		config.Logger.Warn("Rate limit for api-adresse not set, set a default value", "value", config.RateLimit)
	}
	return NewAdresseProvider(config.RateLimit, config.Logger), nil
}

func newNominatimProvider(config ProviderConfig) (Provider, error) {
	return NewNominatimProvider(config.Logger), nil
}

func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{maps.WithAPIKey(config.APIKey)}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}
