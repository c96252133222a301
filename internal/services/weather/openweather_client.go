package weather

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

type apiResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
	} `json:"sys"`
}

// ClientOpenWeatherMap fetches weather data from OpenWeatherMap API.
type ClientOpenWeatherMap struct {
	APIKey        string
	apiURL        string
	cacheDuration time.Duration
	client        HTTPClient
	logger        zerolog.Logger
}

// NewClientOpenWeatherMap constructs a new OpenWeatherMap client.
func NewClientOpenWeatherMap(apiKey, apiURL string, cacheDuration time.Duration,
	httpClient HTTPClient, logger zerolog.Logger,
) *ClientOpenWeatherMap {
	logger = logger.With().Str("client", "OpenWeatherMap").Logger()
	return &ClientOpenWeatherMap{
		APIKey:        apiKey,
		apiURL:        apiURL,
		cacheDuration: cacheDuration,
		client:        httpClient,
		logger:        logger,
	}
}

func (s *ClientOpenWeatherMap) Name() string {
	return "OpenWeatherMap"
}

// Fetch retrieves weather data for the given coordinates.
func (s *ClientOpenWeatherMap) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	start := time.Now()

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", coords.Latitude))
	query.Set("lon", fmt.Sprintf("%.6f", coords.Longitude))
	query.Set("appid", s.APIKey)
	query.Set("units", "metric")
	reqURL := fmt.Sprintf("%s?%s", s.apiURL, query.Encode())

	log := s.logger.With().Str("coordinates", coords.String()).Logger()
	log.Debug().
		Ctx(ctx).
		Msg("starting OpenWeatherMap request")

	var raw apiResponse
	if err := getJSON(ctx, s.client, log, "OpenWeatherMap", reqURL, &raw); err != nil {
		return nil, err
	}

	retrievedAt := time.Now().UTC()
	sunrise := retrievedAt
	// polar day and night report no sunrise
	if raw.Sys.Sunrise > 0 {
		sunrise = time.Unix(raw.Sys.Sunrise, 0).UTC()
	}

	record, err := models.NewWeatherRecord(models.RecordParams{
		Latitude:      coords.Latitude,
		Longitude:     coords.Longitude,
		Temperature:   raw.Main.Temp,
		WindDirection: raw.Wind.Deg,
		WindSpeed:     raw.Wind.Speed,
		Sunrise:       sunrise,
		City:          city,
	}, models.WithRetrievedAt(retrievedAt), models.WithCacheDuration(s.cacheDuration))
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("invalid data received from OpenWeatherMap API")
		return nil, fmt.Errorf("openweathermap: %w", err)
	}

	log.Info().
		Ctx(ctx).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched weather data")
	return &record, nil
}
