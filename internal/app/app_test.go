package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/config"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/repository/cache"
	metricsSvc "github.com/Nazarious-ucu/weather-lookup-api/internal/services/metrics"
)

const openMeteoBody = `{
	"utc_offset_seconds": 0,
	"current": {"temperature_2m": 18.5, "wind_speed_10m": 4.4, "wind_direction_10m": 230},
	"daily": {"sunrise": ["2025-06-01T03:43"]}
}`

func fakeOpenMeteo(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/forecast" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, openMeteoBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(t *testing.T, openMeteoURL string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		ServiceName: "weather_app_test",
		Server:      config.Server{Host: "127.0.0.1", Port: "0", GrpcPort: "0", ReadTimeout: 5, RequestTimeout: 5},
		DB:          config.DB{Dialect: "sqlite", Source: filepath.Join(dir, "weather.db"), Migrate: true},
		Providers: config.Providers{
			OpenMeteoURL:         openMeteoURL,
			CacheDurationMinutes: 60,
			HTTPTimeout:          5,
		},
		Breaker:      config.Breaker{TimeInterval: 30, TimeTimeOut: 10, RepeatNumber: 5},
		JanitorSpec:  "@every 1h",
		HTTPLogsPath: filepath.Join(dir, "http.log"),
	}
}

func initApp(t *testing.T, cfg config.Config) ServiceContainer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a := New(cfg, zerolog.Nop(), metricsSvc.NewMetrics(cfg.ServiceName))
	container, err := a.Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.closeStores(container) })
	return container
}

func get(t *testing.T, router http.Handler, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestApp_CityLookupReadThrough(t *testing.T) {
	upstream, calls := fakeOpenMeteo(t)
	container := initApp(t, testConfig(t, upstream.URL))

	code, body := get(t, container.Router, "/api/weather/city?city=London")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "external", body["source"])
	assert.Equal(t, 18.5, body["temperature"])
	assert.Equal(t, "london", body["city"])

	code, body = get(t, container.Router, "/api/weather/city?city=LONDON")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cache", body["source"])

	assert.EqualValues(t, 1, calls.Load())
}

func TestApp_CoordinatesLookupReadThrough(t *testing.T) {
	upstream, calls := fakeOpenMeteo(t)
	container := initApp(t, testConfig(t, upstream.URL))

	target := "/api/weather/coordinates?latitude=49.8397&longitude=24.0297"

	code, body := get(t, container.Router, target)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "external", body["source"])

	code, body = get(t, container.Router, target)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cache", body["source"])
	assert.EqualValues(t, 1, calls.Load())

	code, _ = get(t, container.Router, "/api/weather/coordinates?latitude=95&longitude=0")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestApp_UnsupportedCityNeverReachesProvider(t *testing.T) {
	upstream, calls := fakeOpenMeteo(t)
	container := initApp(t, testConfig(t, upstream.URL))

	code, _ := get(t, container.Router, "/api/weather/city?city=Atlantis")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Zero(t, calls.Load())
}

func TestApp_ProviderDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(upstream.Close)

	container := initApp(t, testConfig(t, upstream.URL))

	code, _ := get(t, container.Router, "/api/weather/city?city=Paris")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestApp_RedisTier(t *testing.T) {
	upstream, calls := fakeOpenMeteo(t)
	mr := miniredis.RunT(t)

	cfg := testConfig(t, upstream.URL)
	cfg.Redis = config.Redis{Enabled: true, Host: mr.Host(), Port: mr.Port()}
	container := initApp(t, cfg)

	code, _ := get(t, container.Router, "/api/weather/city?city=Tokyo")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, mr.Exists(cache.CityKey("tokyo")))

	code, body := get(t, container.Router, "/api/weather/city?city=tokyo")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cache", body["source"])
	assert.EqualValues(t, 1, calls.Load())
}

func TestApp_MetricsAndHealth(t *testing.T) {
	upstream, _ := fakeOpenMeteo(t)
	container := initApp(t, testConfig(t, upstream.URL))

	code, body := get(t, container.Router, "/health")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Healthy", body["status"])

	_, _ = get(t, container.Router, "/api/weather/city?city=Rome")

	rec := httptest.NewRecorder()
	container.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `weather_app_test_weather_lookups_total{kind="city",outcome="found",source="external"} 1`)
}

func TestApp_InitRejectsUnknownDialect(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.DB.Dialect = "oracle"

	a := New(cfg, zerolog.Nop(), metricsSvc.NewMetrics(cfg.ServiceName))
	_, err := a.Init(context.Background())
	assert.Error(t, err)
}
