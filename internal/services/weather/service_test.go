package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/services/cities"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, coords models.Coordinates) (*models.WeatherRecord, error) {
	args := m.Called(ctx, coords)
	rec, _ := args.Get(0).(*models.WeatherRecord)
	return rec, args.Error(1)
}

func (m *mockStore) GetByCity(ctx context.Context, city string) (*models.WeatherRecord, error) {
	args := m.Called(ctx, city)
	rec, _ := args.Get(0).(*models.WeatherRecord)
	return rec, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, record models.WeatherRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	args := m.Called(ctx, coords, city)
	rec, _ := args.Get(0).(*models.WeatherRecord)
	return rec, args.Error(1)
}

type stubResolver struct {
	supported bool
	coords    models.Coordinates
	resolves  bool
}

func (s stubResolver) IsSupported(string) bool { return s.supported }

func (s stubResolver) CoordinatesFor(string) (models.Coordinates, bool) {
	return s.coords, s.resolves
}

func (s stubResolver) SupportedCities() []string { return []string{"london"} }

type recordingRecorder struct {
	kinds    []string
	outcomes []models.Outcome
}

func (r *recordingRecorder) ObserveLookup(kind string, l models.Lookup) {
	r.kinds = append(r.kinds, kind)
	r.outcomes = append(r.outcomes, l.Outcome)
}

var london = models.Coordinates{Latitude: 51.5074, Longitude: -0.1278}

func newRecord(t *testing.T, temperature float64, city *string, ttl time.Duration) *models.WeatherRecord {
	t.Helper()
	rec, err := models.NewWeatherRecord(models.RecordParams{
		Latitude:      london.Latitude,
		Longitude:     london.Longitude,
		Temperature:   temperature,
		WindDirection: 200,
		WindSpeed:     4.1,
		Sunrise:       time.Date(2025, 6, 1, 3, 43, 0, 0, time.UTC),
		City:          city,
	}, models.WithCacheDuration(ttl))
	require.NoError(t, err)
	return &rec
}

func cityPtr(s string) *string { return &s }

func newTestService(store *mockStore, p *mockProvider) *Service {
	resolver := cities.NewResolver(cities.DefaultRegistry(), zerolog.Nop())
	return NewService(store, p, resolver, nil, zerolog.Nop())
}

func TestService_GetByCoordinates(t *testing.T) {
	ctx := context.Background()

	t.Run("CacheHitUnexpired", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		cached := newRecord(t, 20.5, nil, time.Hour)

		store.On("Get", mock.Anything, london).Return(cached, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
			store.AssertNumberOfCalls(t, "Save", 0)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, 20.5, result.Record.Temperature)
		assert.Equal(t, models.SourceCache, result.Source)
	})

	t.Run("CacheMiss", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		fresh := newRecord(t, 18.5, nil, time.Hour)

		store.On("Get", mock.Anything, london).Return(nil, nil).Once()
		p.On("Fetch", mock.Anything, london, (*string)(nil)).Return(fresh, nil).Once()
		store.On("Save", mock.Anything, *fresh).Return(nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, 18.5, result.Record.Temperature)
		assert.Equal(t, models.SourceExternal, result.Source)
		store.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("ExpiredCacheEntry", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		stale := newRecord(t, 10, nil, -time.Hour)
		fresh := newRecord(t, 19, nil, time.Hour)

		store.On("Get", mock.Anything, london).Return(stale, nil).Once()
		p.On("Fetch", mock.Anything, london, (*string)(nil)).Return(fresh, nil).Once()
		store.On("Save", mock.Anything, *fresh).Return(nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, models.SourceExternal, result.Source)
		assert.Equal(t, 19.0, result.Record.Temperature)
		assert.NotEqual(t, stale.Temperature, result.Record.Temperature)
	})

	t.Run("ProviderReturnsNothing", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("Get", mock.Anything, london).Return(nil, nil).Once()
		p.On("Fetch", mock.Anything, london, (*string)(nil)).Return(nil, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
			store.AssertNumberOfCalls(t, "Save", 0)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("ProviderFails", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("Get", mock.Anything, london).Return(nil, nil).Once()
		p.On("Fetch", mock.Anything, london, (*string)(nil)).Return(nil, errors.New("timeout")).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
			store.AssertNumberOfCalls(t, "Save", 0)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("StoreReadFails", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("Get", mock.Anything, london).Return(nil, errors.New("connection refused")).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		var result models.Lookup
		assert.NotPanics(t, func() {
			result = newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)
		})
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("StoreWriteFails", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		fresh := newRecord(t, 18.5, nil, time.Hour)

		store.On("Get", mock.Anything, london).Return(nil, nil).Once()
		p.On("Fetch", mock.Anything, london, (*string)(nil)).Return(fresh, nil).Once()
		store.On("Save", mock.Anything, *fresh).Return(errors.New("disk full")).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 51.5074, -0.1278)
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("InvalidCoordinates", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		t.Cleanup(func() {
			store.AssertNumberOfCalls(t, "Get", 0)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		result := newTestService(store, p).GetByCoordinates(ctx, 91, 0)
		assert.Equal(t, models.OutcomeInvalid, result.Outcome)
		assert.Contains(t, result.Reason, "latitude")

		result = newTestService(store, p).GetByCoordinates(ctx, 0, -180.01)
		assert.Equal(t, models.OutcomeInvalid, result.Outcome)
		assert.Contains(t, result.Reason, "longitude")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		store.On("Get", mock.Anything, london).Return(nil, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		result := newTestService(store, p).GetByCoordinates(cancelled, 51.5074, -0.1278)
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})
}

func TestService_GetByCity(t *testing.T) {
	ctx := context.Background()

	t.Run("CacheHitUnexpired", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		cached := newRecord(t, 21, cityPtr("london"), time.Hour)

		store.On("GetByCity", mock.Anything, "london").Return(cached, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		result := newTestService(store, p).GetByCity(ctx, "  London ")

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, models.SourceCache, result.Source)
		assert.Equal(t, 21.0, result.Record.Temperature)
	})

	t.Run("CacheMiss", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		fresh := newRecord(t, 18.5, cityPtr("london"), time.Hour)

		store.On("GetByCity", mock.Anything, "london").Return(nil, nil).Once()
		p.On("Fetch", mock.Anything, london, cityPtr("london")).Return(fresh, nil).Once()
		store.On("Save", mock.Anything, *fresh).Return(nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
		})

		result := newTestService(store, p).GetByCity(ctx, "LONDON")

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, models.SourceExternal, result.Source)
		assert.Equal(t, "london", result.Record.CityName())
	})

	t.Run("ExpiredCacheEntry", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}
		stale := newRecord(t, 5, cityPtr("london"), 0)
		fresh := newRecord(t, 17, cityPtr("london"), time.Hour)

		store.On("GetByCity", mock.Anything, "london").Return(stale, nil).Once()
		p.On("Fetch", mock.Anything, london, cityPtr("london")).Return(fresh, nil).Once()
		store.On("Save", mock.Anything, *fresh).Return(nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
		})

		result := newTestService(store, p).GetByCity(ctx, "london")

		require.Equal(t, models.OutcomeFound, result.Outcome)
		assert.Equal(t, models.SourceExternal, result.Source)
		assert.Equal(t, 17.0, result.Record.Temperature)
	})

	t.Run("UnsupportedCity", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		t.Cleanup(func() {
			store.AssertNumberOfCalls(t, "GetByCity", 0)
			store.AssertNumberOfCalls(t, "Save", 0)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		result := newTestService(store, p).GetByCity(ctx, "Atlantis")
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("BlankCity", func(t *testing.T) {
		for _, city := range []string{"", "   "} {
			store := &mockStore{}
			p := &mockProvider{}

			result := newTestService(store, p).GetByCity(ctx, city)
			assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)

			assert.Empty(t, store.Calls)
			assert.Empty(t, p.Calls)
		}
	})

	t.Run("SupportedButUnresolvable", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("GetByCity", mock.Anything, "gotham").Return(nil, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		svc := NewService(store, p, stubResolver{supported: true}, nil, zerolog.Nop())
		result := svc.GetByCity(ctx, "Gotham")
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("ProviderReturnsNothing", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("GetByCity", mock.Anything, "paris").Return(nil, nil).Once()
		p.On("Fetch", mock.Anything,
			models.Coordinates{Latitude: 48.8566, Longitude: 2.3522},
			cityPtr("paris")).Return(nil, nil).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertExpectations(t)
			store.AssertNumberOfCalls(t, "Save", 0)
		})

		result := newTestService(store, p).GetByCity(ctx, "Paris")
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})

	t.Run("StoreReadFails", func(t *testing.T) {
		store := &mockStore{}
		p := &mockProvider{}

		store.On("GetByCity", mock.Anything, "tokyo").Return(nil, errors.New("boom")).Once()

		t.Cleanup(func() {
			store.AssertExpectations(t)
			p.AssertNumberOfCalls(t, "Fetch", 0)
		})

		result := newTestService(store, p).GetByCity(ctx, "Tokyo")
		assert.Equal(t, models.OutcomeNotAvailable, result.Outcome)
	})
}

func TestService_RecordsOutcomes(t *testing.T) {
	store := &mockStore{}
	p := &mockProvider{}
	rec := &recordingRecorder{}
	cached := newRecord(t, 20.5, nil, time.Hour)

	store.On("Get", mock.Anything, london).Return(cached, nil).Once()

	svc := NewService(store, p, cities.NewResolver(cities.DefaultRegistry(), zerolog.Nop()), rec, zerolog.Nop())
	svc.GetByCoordinates(context.Background(), 51.5074, -0.1278)
	svc.GetByCoordinates(context.Background(), 100, 0)
	svc.GetByCity(context.Background(), "")

	assert.Equal(t, []string{kindCoordinates, kindCoordinates, kindCity}, rec.kinds)
	assert.Equal(t, []models.Outcome{
		models.OutcomeFound,
		models.OutcomeInvalid,
		models.OutcomeNotAvailable,
	}, rec.outcomes)
}

func TestService_SupportedCities(t *testing.T) {
	svc := newTestService(&mockStore{}, &mockProvider{})
	names := svc.SupportedCities()

	assert.Contains(t, names, "london")
	assert.Len(t, names, 15)
}
