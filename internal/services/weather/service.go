package weather

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const (
	kindCoordinates = "coordinates"
	kindCity        = "city"
)

type recordStore interface {
	Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error)
	GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error)
	Save(ctx context.Context, record models.WeatherRecord) error
}

type provider interface {
	Fetch(ctx context.Context, coords models.Coordinates, city *string) (*models.WeatherRecord, error)
}

type cityResolver interface {
	IsSupported(name string) bool
	CoordinatesFor(name string) (models.Coordinates, bool)
	SupportedCities() []string
}

type outcomeRecorder interface {
	ObserveLookup(kind string, lookup models.Lookup)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLookup(string, models.Lookup) {}

// Service resolves current weather through the record store first and the
// provider on a miss or an expired record.
type Service struct {
	store    recordStore
	provider provider
	cities   cityResolver
	recorder outcomeRecorder
	logger   zerolog.Logger
}

// NewService builds the retrieval service. recorder may be nil.
func NewService(
	store recordStore,
	p provider,
	cities cityResolver,
	recorder outcomeRecorder,
	logger zerolog.Logger,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	logger = logger.With().Str("component", "WeatherService").Logger()
	return &Service{store: store, provider: p, cities: cities, recorder: recorder, logger: logger}
}

// GetByCoordinates validates the pair and looks the weather up by exact
// coordinates.
func (s *Service) GetByCoordinates(ctx context.Context, latitude, longitude float64) models.Lookup {
	coords, err := models.NewCoordinates(latitude, longitude)
	if err != nil {
		s.logger.Warn().
			Ctx(ctx).
			Err(err).
			Float64("latitude", latitude).
			Float64("longitude", longitude).
			Msg("rejected coordinates")
		return s.observe(kindCoordinates, models.Invalid(err.Error()))
	}

	return s.observe(kindCoordinates, s.byCoordinates(ctx, coords))
}

func (s *Service) byCoordinates(ctx context.Context, coords models.Coordinates) models.Lookup {
	log := s.logger.With().
		Float64("latitude", coords.Latitude).
		Float64("longitude", coords.Longitude).
		Logger()

	cached, err := s.store.Get(ctx, coords)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("cache read failed")
		return models.NotAvailable()
	}
	if cached != nil && !cached.IsExpired() {
		log.Info().Ctx(ctx).Msg("returning cached weather data")
		return models.Found(*cached, models.SourceCache)
	}

	return s.fetchAndStore(ctx, log, coords, nil)
}

// GetByCity looks the weather up for a supported city. Blank or unsupported
// names never reach the store or the provider.
func (s *Service) GetByCity(ctx context.Context, city string) models.Lookup {
	if strings.TrimSpace(city) == "" {
		s.logger.Warn().Ctx(ctx).Msg("empty city name provided")
		return s.observe(kindCity, models.NotAvailable())
	}

	return s.observe(kindCity, s.byCity(ctx, models.NormalizeCity(city)))
}

func (s *Service) byCity(ctx context.Context, city string) models.Lookup {
	log := s.logger.With().Str("city", city).Logger()

	if !s.cities.IsSupported(city) {
		log.Warn().Ctx(ctx).Msg("city is not supported")
		return models.NotAvailable()
	}

	cached, err := s.store.GetByCity(ctx, city)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("cache read failed")
		return models.NotAvailable()
	}
	if cached != nil && !cached.IsExpired() {
		log.Info().Ctx(ctx).Msg("returning cached weather data")
		return models.Found(*cached, models.SourceCache)
	}

	coords, ok := s.cities.CoordinatesFor(city)
	if !ok {
		log.Error().Ctx(ctx).Msg("unable to get coordinates for supported city")
		return models.NotAvailable()
	}

	return s.fetchAndStore(ctx, log, coords, &city)
}

// SupportedCities lists the cities GetByCity accepts.
func (s *Service) SupportedCities() []string {
	return s.cities.SupportedCities()
}

func (s *Service) fetchAndStore(
	ctx context.Context,
	log zerolog.Logger,
	coords models.Coordinates,
	city *string,
) models.Lookup {
	if err := ctx.Err(); err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("request cancelled before provider call")
		return models.NotAvailable()
	}

	fresh, err := s.provider.Fetch(ctx, coords, city)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("provider fetch failed")
		return models.NotAvailable()
	}
	if fresh == nil {
		log.Warn().Ctx(ctx).Msg("failed to retrieve weather data")
		return models.NotAvailable()
	}

	if err := s.store.Save(ctx, *fresh); err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("cache write failed")
		return models.NotAvailable()
	}

	log.Info().
		Ctx(ctx).
		Float64("temperature", fresh.Temperature).
		Time("expires_at", fresh.ExpiresAt).
		Msg("fetched and stored weather data")
	return models.Found(*fresh, models.SourceExternal)
}

func (s *Service) observe(kind string, l models.Lookup) models.Lookup {
	s.recorder.ObserveLookup(kind, l)
	return l
}
