package models

import "time"

// Source tells where a found record came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceExternal Source = "external"
)

// Outcome tags a Lookup.
type Outcome int

const (
	OutcomeNotAvailable Outcome = iota
	OutcomeFound
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "not_available"
	}
}

// Lookup is the result of a weather retrieval. Record and Source are set only
// for OutcomeFound, Reason only for OutcomeInvalid.
type Lookup struct {
	Outcome Outcome
	Record  WeatherRecord
	Source  Source
	Reason  string
}

func Found(record WeatherRecord, source Source) Lookup {
	return Lookup{Outcome: OutcomeFound, Record: record, Source: source}
}

func NotAvailable() Lookup {
	return Lookup{Outcome: OutcomeNotAvailable}
}

func Invalid(reason string) Lookup {
	return Lookup{Outcome: OutcomeInvalid, Reason: reason}
}

// WeatherResponse is the JSON body returned for a found lookup.
type WeatherResponse struct {
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	City          string    `json:"city,omitempty"`
	Temperature   float64   `json:"temperature"`
	WindDirection float64   `json:"windDirection"`
	WindSpeed     float64   `json:"windSpeed"`
	Sunrise       time.Time `json:"sunriseDateTime"`
	RetrievedAt   time.Time `json:"retrievedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Source        Source    `json:"source"`
}

// NewWeatherResponse maps a found lookup to its response body.
func NewWeatherResponse(l Lookup) WeatherResponse {
	r := l.Record
	return WeatherResponse{
		Latitude:      r.Coordinates.Latitude,
		Longitude:     r.Coordinates.Longitude,
		City:          r.CityName(),
		Temperature:   r.Temperature,
		WindDirection: r.WindDirection,
		WindSpeed:     r.WindSpeed,
		Sunrise:       r.Sunrise,
		RetrievedAt:   r.RetrievedAt,
		ExpiresAt:     r.ExpiresAt,
		Source:        l.Source,
	}
}
