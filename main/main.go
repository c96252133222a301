package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/app"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/config"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/services/metrics"
	"github.com/Nazarious-ucu/weather-lookup-api/pkg/logger"
)

// @title Weather Lookup API
// @version 1.0
// @description Current weather by coordinates or city, served through a read-through cache
// @host localhost:8080
// @BasePath /
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l, err := logger.NewLogger(cfg.LogsPath, cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		log.Panicf("failed to create logger: %v", err)
	}

	metr := metrics.NewMetrics(cfg.ServiceName)

	application := app.New(*cfg, l, metr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Error().Err(err).Msg("application stopped with error")
		log.Panic(err)
	}
}
