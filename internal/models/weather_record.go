package models

import (
	"math"
	"strings"
	"time"
)

const (
	// DefaultCacheDuration is how long a freshly fetched record stays valid.
	DefaultCacheDuration = time.Hour
	// DefaultLocationTolerance is the per-axis tolerance used by MatchesLocation.
	DefaultLocationTolerance = 0.001

	maxWindDirection = 360.0
)

// WeatherRecord is the current weather for one location. Records are values:
// once constructed they are never changed, only superseded by newer ones.
type WeatherRecord struct {
	Coordinates   Coordinates `json:"coordinates"`
	City          *string     `json:"city,omitempty"`
	Temperature   float64     `json:"temperature"`
	WindDirection float64     `json:"windDirection"`
	WindSpeed     float64     `json:"windSpeed"`
	Sunrise       time.Time   `json:"sunrise"`
	RetrievedAt   time.Time   `json:"retrievedAt"`
	ExpiresAt     time.Time   `json:"expiresAt"`
}

// RecordParams carries the raw measurements a record is built from.
type RecordParams struct {
	Latitude      float64
	Longitude     float64
	Temperature   float64
	WindDirection float64
	WindSpeed     float64
	Sunrise       time.Time
	City          *string
}

type recordOptions struct {
	cacheDuration time.Duration
	retrievedAt   time.Time
}

// RecordOption tunes NewWeatherRecord.
type RecordOption func(*recordOptions)

// WithCacheDuration overrides DefaultCacheDuration. Zero or negative values
// produce a record that is already expired.
func WithCacheDuration(d time.Duration) RecordOption {
	return func(o *recordOptions) { o.cacheDuration = d }
}

// WithRetrievedAt pins the retrieval time instead of reading the clock.
func WithRetrievedAt(t time.Time) RecordOption {
	return func(o *recordOptions) { o.retrievedAt = t }
}

// NewWeatherRecord validates params and stamps the record with its retrieval
// and expiry times.
func NewWeatherRecord(p RecordParams, opts ...RecordOption) (WeatherRecord, error) {
	o := recordOptions{cacheDuration: DefaultCacheDuration}
	for _, opt := range opts {
		opt(&o)
	}
	if o.retrievedAt.IsZero() {
		o.retrievedAt = time.Now().UTC()
	}

	return RestoreWeatherRecord(p, o.retrievedAt, o.retrievedAt.Add(o.cacheDuration))
}

// RestoreWeatherRecord rebuilds a persisted record, keeping its stored
// timestamps. The same invariants as NewWeatherRecord apply.
func RestoreWeatherRecord(p RecordParams, retrievedAt, expiresAt time.Time) (WeatherRecord, error) {
	coords, err := NewCoordinates(p.Latitude, p.Longitude)
	if err != nil {
		return WeatherRecord{}, err
	}
	if !(p.WindDirection >= 0 && p.WindDirection <= maxWindDirection) {
		return WeatherRecord{}, &ValidationError{
			Field:  "windDirection",
			Value:  p.WindDirection,
			Reason: "must be between 0 and 360 degrees",
		}
	}
	if !(p.WindSpeed >= 0) {
		return WeatherRecord{}, &ValidationError{
			Field:  "windSpeed",
			Value:  p.WindSpeed,
			Reason: "cannot be negative",
		}
	}
	if math.IsNaN(p.Temperature) {
		return WeatherRecord{}, &ValidationError{
			Field:  "temperature",
			Value:  p.Temperature,
			Reason: "must be a number",
		}
	}

	return WeatherRecord{
		Coordinates:   coords,
		City:          normalizeOptionalCity(p.City),
		Temperature:   p.Temperature,
		WindDirection: p.WindDirection,
		WindSpeed:     p.WindSpeed,
		Sunrise:       p.Sunrise,
		RetrievedAt:   retrievedAt,
		ExpiresAt:     expiresAt,
	}, nil
}

// IsExpired reports whether the record is stale at the current time.
func (r WeatherRecord) IsExpired() bool {
	return r.IsExpiredAt(time.Now())
}

// IsExpiredAt treats the expiry instant itself as stale, so a record built
// with a zero cache duration is never served.
func (r WeatherRecord) IsExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// MatchesLocation uses DefaultLocationTolerance.
func (r WeatherRecord) MatchesLocation(latitude, longitude float64) bool {
	return r.MatchesLocationWithin(latitude, longitude, DefaultLocationTolerance)
}

func (r WeatherRecord) MatchesLocationWithin(latitude, longitude, tolerance float64) bool {
	return r.Coordinates.IsNear(Coordinates{Latitude: latitude, Longitude: longitude}, tolerance)
}

// CityName returns the normalized city or an empty string when the record
// was fetched by coordinates.
func (r WeatherRecord) CityName() string {
	if r.City == nil {
		return ""
	}
	return *r.City
}

// NormalizeCity trims and lowercases a city name.
func NormalizeCity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func normalizeOptionalCity(city *string) *string {
	if city == nil {
		return nil
	}
	normalized := NormalizeCity(*city)
	if normalized == "" {
		return nil
	}
	return &normalized
}
