package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const selectColumns = `
	SELECT latitude, longitude, city, temperature, wind_direction, wind_speed,
	       sunrise, retrieved_at, expires_at
	FROM weather_records`

// Store persists weather records. Rows are append-only; the newest unexpired
// row for a location wins on read.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  zerolog.Logger
	now     func() time.Time
}

func NewStore(db *sql.DB, dialect Dialect, logger zerolog.Logger) *Store {
	logger = logger.With().Str("component", "SQLStore").Str("dialect", string(dialect)).Logger()
	return &Store{db: db, dialect: dialect, logger: logger, now: time.Now}
}

// Get returns the latest unexpired record stored for exactly these
// coordinates, or nil.
func (s *Store) Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error) {
	start := time.Now()

	q := selectColumns + `
	WHERE latitude = ? AND longitude = ? AND expires_at >= ?
	ORDER BY retrieved_at DESC
	LIMIT 1`

	rec, err := s.queryOne(ctx, q, coords.Latitude, coords.Longitude, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("get weather by coordinates %s: %w", coords, err)
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("coordinates", coords.String()).
		Bool("hit", rec != nil).
		Dur("duration", time.Since(start)).
		Msg("lookup by coordinates")
	return rec, nil
}

// GetByCity returns the latest unexpired record stored for city, or nil.
func (s *Store) GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error) {
	start := time.Now()
	city = models.NormalizeCity(city)

	q := selectColumns + `
	WHERE city = ? AND expires_at >= ?
	ORDER BY retrieved_at DESC
	LIMIT 1`

	rec, err := s.queryOne(ctx, q, city, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("get weather by city %q: %w", city, err)
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("city", city).
		Bool("hit", rec != nil).
		Dur("duration", time.Since(start)).
		Msg("lookup by city")
	return rec, nil
}

// Save inserts record as a new row.
func (s *Store) Save(ctx context.Context, record models.WeatherRecord) error {
	start := time.Now()

	var city sql.NullString
	if record.City != nil {
		city = sql.NullString{String: *record.City, Valid: true}
	}

	q := `
	INSERT INTO weather_records
	    (id, latitude, longitude, city, temperature, wind_direction, wind_speed,
	     sunrise, retrieved_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, s.rebind(q),
		id,
		record.Coordinates.Latitude,
		record.Coordinates.Longitude,
		city,
		record.Temperature,
		record.WindDirection,
		record.WindSpeed,
		record.Sunrise.UnixNano(),
		record.RetrievedAt.UnixNano(),
		record.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert weather record: %w", err)
	}

	s.logger.Debug().
		Ctx(ctx).
		Str("id", id).
		Str("coordinates", record.Coordinates.String()).
		Str("city", record.CityName()).
		Time("expires_at", record.ExpiresAt).
		Dur("duration", time.Since(start)).
		Msg("weather record saved")
	return nil
}

// PurgeExpired deletes rows that expired before now and reports how many
// were removed.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM weather_records WHERE expires_at < ?`),
		now.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("purge expired weather records: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired weather records: rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) queryOne(ctx context.Context, q string, args ...any) (*models.WeatherRecord, error) {
	var (
		p                               models.RecordParams
		city                            sql.NullString
		sunrise, retrievedAt, expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, s.rebind(q), args...).Scan(
		&p.Latitude,
		&p.Longitude,
		&city,
		&p.Temperature,
		&p.WindDirection,
		&p.WindSpeed,
		&sunrise,
		&retrievedAt,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if city.Valid {
		p.City = &city.String
	}
	p.Sunrise = time.Unix(0, sunrise).UTC()

	rec, err := models.RestoreWeatherRecord(p, time.Unix(0, retrievedAt).UTC(), time.Unix(0, expiresAt).UTC())
	if err != nil {
		return nil, fmt.Errorf("corrupt weather row: %w", err)
	}
	return &rec, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
