package weather

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const openMeteoSunriseLayout = "2006-01-02T15:04"

type openMeteoResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          *struct {
		Temperature2m    float64 `json:"temperature_2m"`
		WindSpeed10m     float64 `json:"wind_speed_10m"`
		WindDirection10m float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Daily *struct {
		Sunrise []string `json:"sunrise"`
	} `json:"daily"`
}

// ClientOpenMeteo fetches current conditions from the keyless Open-Meteo
// forecast API.
type ClientOpenMeteo struct {
	apiURL        string
	cacheDuration time.Duration
	client        HTTPClient
	logger        zerolog.Logger
}

// NewClientOpenMeteo constructs a new Open-Meteo client. apiURL is the API
// base, e.g. https://api.open-meteo.com/v1.
func NewClientOpenMeteo(
	apiURL string,
	cacheDuration time.Duration,
	httpClient HTTPClient,
	logger zerolog.Logger,
) *ClientOpenMeteo {
	logger = logger.With().Str("client", "OpenMeteo").Logger()
	return &ClientOpenMeteo{apiURL: apiURL, cacheDuration: cacheDuration, client: httpClient, logger: logger}
}

func (s *ClientOpenMeteo) Name() string {
	return "OpenMeteo"
}

// Fetch retrieves current weather for coords. A response without a current
// block yields no record and no error.
func (s *ClientOpenMeteo) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	start := time.Now()

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.6f", coords.Latitude))
	query.Set("longitude", fmt.Sprintf("%.6f", coords.Longitude))
	query.Set("current", "temperature_2m,wind_speed_10m,wind_direction_10m")
	query.Set("daily", "sunrise")
	query.Set("timezone", "auto")
	reqURL := fmt.Sprintf("%s/forecast?%s", s.apiURL, query.Encode())

	log := s.logger.With().Str("coordinates", coords.String()).Logger()
	log.Debug().
		Ctx(ctx).
		Str("url", reqURL).
		Msg("starting Open-Meteo request")

	var raw openMeteoResponse
	if err := getJSON(ctx, s.client, log, "Open-Meteo", reqURL, &raw); err != nil {
		return nil, err
	}

	if raw.Current == nil {
		log.Warn().Ctx(ctx).Msg("invalid response from Open-Meteo API")
		return nil, nil
	}

	retrievedAt := time.Now().UTC()
	sunrise := retrievedAt
	if raw.Daily != nil && len(raw.Daily.Sunrise) > 0 {
		zone := time.FixedZone("", raw.UTCOffsetSeconds)
		if t, err := time.ParseInLocation(openMeteoSunriseLayout, raw.Daily.Sunrise[0], zone); err == nil {
			sunrise = t.UTC()
		} else {
			log.Warn().Ctx(ctx).Err(err).Msg("unparsable sunrise, using retrieval time")
		}
	}

	record, err := models.NewWeatherRecord(models.RecordParams{
		Latitude:      coords.Latitude,
		Longitude:     coords.Longitude,
		Temperature:   raw.Current.Temperature2m,
		WindDirection: raw.Current.WindDirection10m,
		WindSpeed:     raw.Current.WindSpeed10m,
		Sunrise:       sunrise,
		City:          city,
	}, models.WithRetrievedAt(retrievedAt), models.WithCacheDuration(s.cacheDuration))
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("invalid data received from Open-Meteo API")
		return nil, fmt.Errorf("open-meteo: %w", err)
	}

	log.Info().
		Ctx(ctx).
		Dur("duration_ms", time.Since(start)).
		Msg("successfully fetched weather data")
	return &record, nil
}
