package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const weatherBitSunriseLayout = "15:04"

var errWeatherBitEmpty = errors.New("WeatherBit API returned empty data")

type bitWeatherAPIResponse struct {
	Data []struct {
		Temp    float64 `json:"temp"`
		WindSpd float64 `json:"wind_spd"`
		WindDir float64 `json:"wind_dir"`
		Sunrise string  `json:"sunrise"`
	} `json:"data"`
}

// ClientWeatherBit fetches weather data from WeatherBit API.
type ClientWeatherBit struct {
	APIKey        string
	apiURL        string
	cacheDuration time.Duration
	client        HTTPClient
	logger        zerolog.Logger
}

// NewClientWeatherBit constructs a new WeatherBit client.
func NewClientWeatherBit(
	apiKey, apiURL string,
	cacheDuration time.Duration,
	httpClient HTTPClient,
	logger zerolog.Logger,
) *ClientWeatherBit {
	logger = logger.With().Str("client", "WeatherBit").Logger()
	return &ClientWeatherBit{
		APIKey:        apiKey,
		apiURL:        apiURL,
		cacheDuration: cacheDuration,
		client:        httpClient,
		logger:        logger,
	}
}

func (s *ClientWeatherBit) Name() string {
	return "WeatherBit"
}

// Fetch retrieves weather data for the given coordinates. WeatherBit reports
// sunrise as HH:MM in UTC for the current day.
func (s *ClientWeatherBit) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	start := time.Now()

	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", coords.Latitude))
	query.Set("lon", fmt.Sprintf("%.6f", coords.Longitude))
	query.Set("key", s.APIKey)
	reqURL := fmt.Sprintf("%s?%s", s.apiURL, query.Encode())

	log := s.logger.With().Str("coordinates", coords.String()).Logger()
	log.Debug().
		Ctx(ctx).
		Msg("starting WeatherBit request")

	var raw bitWeatherAPIResponse
	if err := getJSON(ctx, s.client, log, "WeatherBit", reqURL, &raw); err != nil {
		return nil, err
	}

	if len(raw.Data) == 0 {
		log.Error().
			Ctx(ctx).
			Msg("no data in WeatherBit response")
		return nil, errWeatherBitEmpty
	}
	entry := raw.Data[0]

	retrievedAt := time.Now().UTC()
	sunrise := retrievedAt
	if t, err := time.Parse(weatherBitSunriseLayout, entry.Sunrise); err == nil {
		y, m, d := retrievedAt.Date()
		sunrise = time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
	}

	record, err := models.NewWeatherRecord(models.RecordParams{
		Latitude:      coords.Latitude,
		Longitude:     coords.Longitude,
		Temperature:   entry.Temp,
		WindDirection: entry.WindDir,
		WindSpeed:     entry.WindSpd,
		Sunrise:       sunrise,
		City:          city,
	}, models.WithRetrievedAt(retrievedAt), models.WithCacheDuration(s.cacheDuration))
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("invalid data received from WeatherBit API")
		return nil, fmt.Errorf("weatherbit: %w", err)
	}

	log.Info().
		Ctx(ctx).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched weather data from WeatherBit")
	return &record, nil
}
