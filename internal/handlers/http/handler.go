package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

const defaultTimeout = 10 * time.Second

type weatherGetterService interface {
	GetByCoordinates(ctx context.Context, latitude, longitude float64) models.Lookup
	GetByCity(ctx context.Context, city string) models.Lookup
	SupportedCities() []string
}

type coordinatesQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
}

type cityQuery struct {
	City string `form:"city" binding:"required"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	service weatherGetterService
	timeout time.Duration
}

// NewHandler builds the weather handler. A non-positive timeout selects the
// default of ten seconds.
func NewHandler(svc weatherGetterService, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Handler{service: svc, timeout: timeout}
}

// GetByCoordinates
// @Summary Get current weather by coordinates
// @Description Returns the current weather for an exact latitude/longitude pair
// @Tags weather
// @Produce json
// @Param latitude query number true "Latitude in degrees, -90..90"
// @Param longitude query number true "Longitude in degrees, -180..180"
// @Success 200 {object} models.WeatherResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/weather/coordinates [get]
func (h *Handler) GetByCoordinates(c *gin.Context) {
	var q coordinatesQuery
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude query parameters are required"})
		return
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "latitude and longitude query parameters must be numbers"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	h.respond(c, h.service.GetByCoordinates(ctx, *q.Latitude, *q.Longitude),
		"weather data not available for the given coordinates")
}

// GetByCity
// @Summary Get current weather by city
// @Description Returns the current weather for one of the supported cities
// @Tags weather
// @Produce json
// @Param city query string true "City name, case-insensitive"
// @Success 200 {object} models.WeatherResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/weather/city [get]
func (h *Handler) GetByCity(c *gin.Context) {
	var q cityQuery
	if err := c.ShouldBindQuery(&q); err != nil || strings.TrimSpace(q.City) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "city query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	h.respond(c, h.service.GetByCity(ctx, q.City),
		"weather data not available for city '"+strings.TrimSpace(q.City)+"'")
}

// SupportedCities
// @Summary List supported cities
// @Tags weather
// @Produce json
// @Success 200 {array} string
// @Router /api/weather/supported-cities [get]
func (h *Handler) SupportedCities(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.SupportedCities())
}

func (h *Handler) respond(c *gin.Context, l models.Lookup, notFound string) {
	switch l.Outcome {
	case models.OutcomeFound:
		c.JSON(http.StatusOK, models.NewWeatherResponse(l))
	case models.OutcomeInvalid:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: l.Reason})
	case models.OutcomeNotAvailable:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: notFound})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "an error occurred while processing your request"})
	}
}
