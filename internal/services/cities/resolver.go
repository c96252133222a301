package cities

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

var builtIn = map[string]models.Coordinates{
	"london":       {Latitude: 51.5074, Longitude: -0.1278},
	"paris":        {Latitude: 48.8566, Longitude: 2.3522},
	"tokyo":        {Latitude: 35.6762, Longitude: 139.6503},
	"new york":     {Latitude: 40.7128, Longitude: -74.0060},
	"madrid":       {Latitude: 40.4168, Longitude: -3.7038},
	"berlin":       {Latitude: 52.5200, Longitude: 13.4050},
	"rome":         {Latitude: 41.9028, Longitude: 12.4964},
	"sydney":       {Latitude: -33.8688, Longitude: 151.2093},
	"moscow":       {Latitude: 55.7558, Longitude: 37.6176},
	"beijing":      {Latitude: 39.9042, Longitude: 116.4074},
	"mumbai":       {Latitude: 19.0760, Longitude: 72.8777},
	"cairo":        {Latitude: 30.0444, Longitude: 31.2357},
	"buenos aires": {Latitude: -34.6118, Longitude: -58.3960},
	"toronto":      {Latitude: 43.6532, Longitude: -79.3832},
	"amsterdam":    {Latitude: 52.3676, Longitude: 4.9041},
}

// DefaultRegistry returns a copy of the built-in city table.
func DefaultRegistry() map[string]models.Coordinates {
	out := make(map[string]models.Coordinates, len(builtIn))
	for name, c := range builtIn {
		out[name] = c
	}
	return out
}

// Resolver maps city names to coordinates. It is read-only after
// construction and safe for concurrent use.
type Resolver struct {
	registry map[string]models.Coordinates
	names    []string
	logger   zerolog.Logger
}

// NewResolver copies registry, normalizing its keys.
func NewResolver(registry map[string]models.Coordinates, logger zerolog.Logger) *Resolver {
	logger = logger.With().Str("component", "CityResolver").Logger()

	normalized := make(map[string]models.Coordinates, len(registry))
	for name, c := range registry {
		key := models.NormalizeCity(name)
		if key == "" {
			continue
		}
		normalized[key] = c
	}

	names := make([]string, 0, len(normalized))
	for name := range normalized {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Resolver{registry: normalized, names: names, logger: logger}
}

// IsSupported reports whether name is in the registry, ignoring case and
// surrounding whitespace.
func (r *Resolver) IsSupported(name string) bool {
	key := models.NormalizeCity(name)
	if key == "" {
		return false
	}
	_, ok := r.registry[key]
	return ok
}

// CoordinatesFor returns false for empty or unsupported names.
func (r *Resolver) CoordinatesFor(name string) (models.Coordinates, bool) {
	key := models.NormalizeCity(name)
	if key == "" {
		r.logger.Warn().Msg("empty city name provided")
		return models.Coordinates{}, false
	}

	c, ok := r.registry[key]
	if !ok {
		r.logger.Warn().
			Str("city", name).
			Msg("city not found in supported cities")
		return models.Coordinates{}, false
	}

	r.logger.Debug().
		Str("city", key).
		Float64("latitude", c.Latitude).
		Float64("longitude", c.Longitude).
		Msg("resolved city coordinates")
	return c, true
}

// SupportedCities lists registry names in ascending order.
func (r *Resolver) SupportedCities() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
