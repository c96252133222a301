package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"

	_ "github.com/Nazarious-ucu/weather-lookup-api/docs" // registers the swagger document
)

type RouterDeps struct {
	Handler        *Handler
	Logger         zerolog.Logger
	MetricsHandler http.Handler
	Middleware     []gin.HandlerFunc
}

// NewRouter mounts the public API, health, metrics and swagger routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(deps.Logger))
	router.Use(deps.Middleware...)

	router.GET("/health", Health)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))

	api := router.Group("/api/weather")
	api.GET("/coordinates", deps.Handler.GetByCoordinates)
	api.GET("/city", deps.Handler.GetByCity)
	api.GET("/supported-cities", deps.Handler.SupportedCities)

	return router
}
