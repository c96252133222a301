package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcHandlers "github.com/Nazarious-ucu/weather-lookup-api/internal/handlers/grpc"
	httpHandlers "github.com/Nazarious-ucu/weather-lookup-api/internal/handlers/http"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/config"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/janitor"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/repository/cache"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/repository/sqlstore"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/services/cities"
	loggerT "github.com/Nazarious-ucu/weather-lookup-api/internal/services/logger"
	metricsSvc "github.com/Nazarious-ucu/weather-lookup-api/internal/services/metrics"
	serviceWeather "github.com/Nazarious-ucu/weather-lookup-api/internal/services/weather"
	fLogger "github.com/Nazarious-ucu/weather-lookup-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type recordStore interface {
	Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error)
	GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error)
	Save(ctx context.Context, record models.WeatherRecord) error
}

// ServiceContainer holds initialized dependencies for servers.
type ServiceContainer struct {
	WeatherService *serviceWeather.Service

	Router     *gin.Engine
	Srv        *http.Server
	GrpcServer *grpc.Server
	Health     *grpcHandlers.HealthServer
	Janitor    *janitor.Janitor

	db         *sql.DB
	redis      *redis.Client
	fileLogger *zap.Logger
}

// App ties together config, logger, and metrics for startup/shutdown.
type App struct {
	cfg config.Config
	l   zerolog.Logger
	m   *metricsSvc.Metrics
}

// New prepares a new App with given config, zerolog logger, and metrics.
func New(cfg config.Config, logger zerolog.Logger, met *metricsSvc.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   logger,
		m:   met,
	}
}

// Start builds every component, serves HTTP and gRPC and blocks until ctx is
// cancelled, then shuts everything down.
func (a *App) Start(ctx context.Context) error {
	srvContainer, err := a.Init(ctx)
	if err != nil {
		return err
	}

	if err := srvContainer.Janitor.Start(ctx); err != nil {
		a.closeStores(srvContainer)
		return err
	}

	grpcListener, err := net.Listen("tcp", a.cfg.GrpcAddress())
	if err != nil {
		srvContainer.Janitor.Stop()
		a.closeStores(srvContainer)
		return fmt.Errorf("listen on gRPC address: %w", err)
	}

	serveErr := make(chan error, 2)

	go func() {
		a.l.Info().Str("address", a.cfg.GrpcAddress()).Msg("gRPC server running")
		if err := srvContainer.GrpcServer.Serve(grpcListener); err != nil {
			serveErr <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	go func() {
		a.l.Info().Str("address", a.cfg.ServerAddress()).Msg("HTTP server running")
		if err := srvContainer.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	a.l.Info().Msg("weather lookup service started successfully")

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info().Msg("shutdown signal received, stopping weather lookup service")
	case runErr = <-serveErr:
		a.l.Error().Err(runErr).Msg("server failed, stopping weather lookup service")
	}

	if err := a.Shutdown(srvContainer); err != nil {
		a.l.Error().Err(err).Msg("failed to shutdown application")
		return errors.Join(runErr, err)
	}
	a.l.Info().Msg("application shutdown successfully")
	return runErr
}

// Shutdown stops servers and background jobs, then releases stores and
// syncs loggers.
func (a *App) Shutdown(srvContainer ServiceContainer) error {
	a.l.Info().Msg("stopping weather lookup service…")

	defer func(logger *zap.Logger) {
		if err := logger.Sync(); err != nil {
			a.l.Error().Err(err).Msg("failed to sync file logger")
		}
	}(srvContainer.fileLogger)

	srvContainer.Health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srvContainer.Srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown HTTP server: %w", err))
	}

	a.l.Info().Msg("shutting down gRPC server")
	srvContainer.GrpcServer.GracefulStop()

	srvContainer.Janitor.Stop()

	errs = append(errs, a.closeStores(srvContainer))
	a.l.Info().Msg("shutdown complete")
	return errors.Join(errs...)
}

// Init wires stores, providers, the retrieval service and both servers
// without starting them.
func (a *App) Init(ctx context.Context) (ServiceContainer, error) {
	a.l.Info().
		Str("db_dialect", a.cfg.DB.Dialect).
		Bool("redis_enabled", a.cfg.Redis.Enabled).
		Msg("initializing weather lookup service")

	dialect, err := sqlstore.ParseDialect(a.cfg.DB.Dialect)
	if err != nil {
		return ServiceContainer{}, err
	}

	db, err := sqlstore.Open(ctx, dialect, a.cfg.DB.Source)
	if err != nil {
		return ServiceContainer{}, err
	}
	if a.cfg.DB.Migrate {
		if err := sqlstore.Migrate(db, dialect); err != nil {
			_ = db.Close()
			return ServiceContainer{}, err
		}
	}
	sqlStore := sqlstore.NewStore(db, dialect, a.l)

	var (
		store       recordStore = sqlStore
		redisClient *redis.Client
	)
	if a.cfg.Redis.Enabled {
		redisClient = newRedisConnection(a.cfg.RedisAddress(), a.cfg.Redis.DbType)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			a.l.Warn().Err(err).Msg("redis unreachable, continuing with the SQL store answering misses")
		}
		front := cache.NewMetricsDecorator[models.WeatherRecord](
			cache.NewRedisClient[models.WeatherRecord](redisClient, a.l),
			metricsSvc.NewPromCollector(a.m.Registry(), a.cfg.ServiceName),
		)
		store = cache.NewTieredStore(front, sqlStore, a.l)
	}

	fileLogger, err := fLogger.NewFileLogger(a.cfg.HTTPLogsPath)
	if err != nil {
		a.l.Error().Err(err).Msg("failed to create file logger, outbound requests will not be logged")
		fileLogger = zap.NewNop()
	}

	httpLogClient := &http.Client{
		Transport: loggerT.NewRoundTripper(fileLogger),
		Timeout:   time.Duration(a.cfg.Providers.HTTPTimeout) * time.Second,
	}

	resolver := cities.NewResolver(cities.DefaultRegistry(), a.l)
	weatherService := serviceWeather.NewService(store, a.newProviderChain(httpLogClient), resolver, a.m, a.l)

	weatherHandler := httpHandlers.NewHandler(weatherService,
		time.Duration(a.cfg.Server.RequestTimeout)*time.Second)
	router := httpHandlers.NewRouter(httpHandlers.RouterDeps{
		Handler:        weatherHandler,
		Logger:         a.l,
		MetricsHandler: a.m.Handler(),
		Middleware:     []gin.HandlerFunc{a.m.HTTPMiddleware()},
	})

	httpServer := &http.Server{
		Addr:        a.cfg.ServerAddress(),
		Handler:     router,
		ReadTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(a.m.UnaryInterceptor()),
		grpc.StreamInterceptor(a.m.StreamInterceptor()),
	)
	healthServer := grpcHandlers.NewHealthServer(grpcServer)
	a.m.InitializeGRPC(grpcServer)

	return ServiceContainer{
		WeatherService: weatherService,
		Router:         router,
		Srv:            httpServer,
		GrpcServer:     grpcServer,
		Health:         healthServer,
		Janitor:        janitor.New(sqlStore, a.cfg.JanitorSpec, a.l),
		db:             db,
		redis:          redisClient,
		fileLogger:     fileLogger,
	}, nil
}

// newProviderChain puts the keyless Open-Meteo first; keyed providers join
// only when their API key is configured.
func (a *App) newProviderChain(httpClient *http.Client) *serviceWeather.ProviderChain {
	breakerCfg := serviceWeather.BreakerConfig{
		TimeInterval: time.Duration(a.cfg.Breaker.TimeInterval) * time.Second,
		TimeTimeOut:  time.Duration(a.cfg.Breaker.TimeTimeOut) * time.Second,
		RepeatNumber: a.cfg.Breaker.RepeatNumber,
	}
	ttl := a.cfg.CacheDuration()
	p := a.cfg.Providers

	clients := []serviceWeather.Client{
		serviceWeather.NewBreakerClient("OpenMeteo", breakerCfg,
			serviceWeather.NewClientOpenMeteo(p.OpenMeteoURL, ttl, httpClient, a.l)),
	}
	if p.OpenWeatherMapAPIKey != "" {
		clients = append(clients, serviceWeather.NewBreakerClient("OpenWeather", breakerCfg,
			serviceWeather.NewClientOpenWeatherMap(p.OpenWeatherMapAPIKey, p.OpenWeatherMapURL, ttl, httpClient, a.l)))
	}
	if p.WeatherBitAPIKey != "" {
		clients = append(clients, serviceWeather.NewBreakerClient("WeatherBit", breakerCfg,
			serviceWeather.NewClientWeatherBit(p.WeatherBitAPIKey, p.WeatherBitURL, ttl, httpClient, a.l)))
	}

	return serviceWeather.NewProviderChain(a.l, clients...)
}

func (a *App) closeStores(srvContainer ServiceContainer) error {
	var errs []error
	if srvContainer.redis != nil {
		if err := srvContainer.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := srvContainer.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

func newRedisConnection(connString string, dbType int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: connString, DB: dbType})
}
