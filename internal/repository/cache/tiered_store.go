package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const keyPrefix = "weather:"

type recordStore interface {
	Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error)
	GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error)
	Save(ctx context.Context, record models.WeatherRecord) error
}

// TieredStore fronts the persistent store with Redis. Redis is an
// accelerator only: its failures are logged and the persistent store answers.
type TieredStore struct {
	front  cache[models.WeatherRecord]
	back   recordStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewTieredStore(front cache[models.WeatherRecord], back recordStore, logger zerolog.Logger) *TieredStore {
	logger = logger.With().Str("component", "TieredStore").Logger()
	return &TieredStore{front: front, back: back, logger: logger, now: time.Now}
}

func CoordinatesKey(coords models.Coordinates) string {
	return keyPrefix + "coords:" +
		strconv.FormatFloat(coords.Latitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(coords.Longitude, 'f', -1, 64)
}

func CityKey(city string) string {
	return keyPrefix + "city:" + models.NormalizeCity(city)
}

func (t *TieredStore) Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error) {
	return t.read(ctx, CoordinatesKey(coords), func() (*models.WeatherRecord, error) {
		return t.back.Get(ctx, coords)
	})
}

func (t *TieredStore) GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error) {
	return t.read(ctx, CityKey(city), func() (*models.WeatherRecord, error) {
		return t.back.GetByCity(ctx, city)
	})
}

// Save persists record and then refreshes the Redis entries for its location
// and city.
func (t *TieredStore) Save(ctx context.Context, record models.WeatherRecord) error {
	if err := t.back.Save(ctx, record); err != nil {
		return err
	}

	t.fill(ctx, CoordinatesKey(record.Coordinates), record)
	if record.City != nil {
		t.fill(ctx, CityKey(*record.City), record)
	}
	return nil
}

func (t *TieredStore) read(
	ctx context.Context,
	key string,
	fromBack func() (*models.WeatherRecord, error),
) (*models.WeatherRecord, error) {
	cached, err := t.front.Get(ctx, key)
	switch {
	case err == nil && !cached.IsExpiredAt(t.now()):
		t.logger.Debug().Ctx(ctx).Str("key", key).Msg("redis hit")
		return &cached, nil
	case err == nil, errors.Is(err, ErrMiss):
	default:
		t.logger.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("redis read failed, falling back")
	}

	rec, err := fromBack()
	if err != nil || rec == nil {
		return rec, err
	}

	t.fill(ctx, key, *rec)
	return rec, nil
}

func (t *TieredStore) fill(ctx context.Context, key string, record models.WeatherRecord) {
	ttl := record.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return
	}
	if err := t.front.Set(ctx, key, record, ttl); err != nil {
		t.logger.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("redis write failed")
	}
}
