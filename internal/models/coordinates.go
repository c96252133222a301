package models

import (
	"errors"
	"fmt"
	"math"
)

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ErrOutOfRange is wrapped by every ValidationError.
var ErrOutOfRange = errors.New("value out of range")

// ValidationError describes a domain value rejected at construction.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrOutOfRange
}

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates validates the pair and returns it as Coordinates.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	c := Coordinates{Latitude: latitude, Longitude: longitude}
	if err := c.Validate(); err != nil {
		return Coordinates{}, err
	}
	return c, nil
}

// Validate reports whether both axes are inside their domain. NaN is rejected.
func (c Coordinates) Validate() error {
	if !(c.Latitude >= minLatitude && c.Latitude <= maxLatitude) {
		return &ValidationError{
			Field:  "latitude",
			Value:  c.Latitude,
			Reason: "must be between -90 and 90 degrees",
		}
	}
	if !(c.Longitude >= minLongitude && c.Longitude <= maxLongitude) {
		return &ValidationError{
			Field:  "longitude",
			Value:  c.Longitude,
			Reason: "must be between -180 and 180 degrees",
		}
	}
	return nil
}

// IsNear compares each axis independently; it is not a geodesic distance.
func (c Coordinates) IsNear(other Coordinates, toleranceDegrees float64) bool {
	return math.Abs(c.Latitude-other.Latitude) < toleranceDegrees &&
		math.Abs(c.Longitude-other.Longitude) < toleranceDegrees
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}
