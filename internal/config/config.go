package config

import (
	"net"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Host           string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port           string `envconfig:"SERVER_PORT" default:"8080"`
	GrpcPort       string `envconfig:"GRPC_PORT" default:"9090"`
	ReadTimeout    int    `envconfig:"SERVER_TIMEOUT" default:"10"`
	RequestTimeout int    `envconfig:"REQUEST_TIMEOUT" default:"10"`
}

type DB struct {
	Dialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source  string `envconfig:"DB_SOURCE" default:"./data/weather.db"`
	Migrate bool   `envconfig:"DB_MIGRATE" default:"true"`
}

type Redis struct {
	Enabled bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host    string `envconfig:"REDIS_HOST" default:"localhost"`
	Port    string `envconfig:"REDIS_PORT" default:"6379"`
	DbType  int    `envconfig:"REDIS_DB_TYPE" default:"0"`
}

type Providers struct {
	OpenMeteoURL string `envconfig:"OPEN_METEO_URL" default:"https://api.open-meteo.com/v1"`

	OpenWeatherMapAPIKey string `envconfig:"OPEN_WEATHER_MAP_API_KEY"`
	OpenWeatherMapURL    string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5/weather"`

	WeatherBitAPIKey string `envconfig:"WEATHER_BIT_API_KEY"`
	WeatherBitURL    string `envconfig:"WEATHER_BIT_URL" default:"https://api.weatherbit.io/v2.0/current"`

	CacheDurationMinutes int `envconfig:"CACHE_DURATION_MINUTES" default:"60"`
	HTTPTimeout          int `envconfig:"PROVIDER_HTTP_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"weather_lookup"`

	Server    Server
	DB        DB
	Redis     Redis
	Providers Providers
	Breaker   Breaker

	JanitorSpec string `envconfig:"JANITOR_SPEC" default:"0 */10 * * * *"`

	LogLevel     string `envconfig:"LOG_LEVEL" default:"debug"`
	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/weather-lookup-api.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/weather-lookup-http.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (c Config) GrpcAddress() string {
	return net.JoinHostPort(c.Server.Host, c.Server.GrpcPort)
}

func (c Config) RedisAddress() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

func (c Config) CacheDuration() time.Duration {
	return time.Duration(c.Providers.CacheDurationMinutes) * time.Minute
}
