package cities_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
	"github.com/Nazarious-ucu/weather-lookup-api/internal/services/cities"
)

func newResolver() *cities.Resolver {
	return cities.NewResolver(cities.DefaultRegistry(), zerolog.Nop())
}

func TestResolver_IsSupported(t *testing.T) {
	r := newResolver()

	for _, name := range []string{"London", "LONDON", "  london  ", "new york", "Buenos Aires"} {
		assert.True(t, r.IsSupported(name), name)
	}
	for _, name := range []string{"", "   ", "Atlantis", "lond"} {
		assert.False(t, r.IsSupported(name), name)
	}
}

func TestResolver_CoordinatesFor(t *testing.T) {
	r := newResolver()
	want := models.Coordinates{Latitude: 51.5074, Longitude: -0.1278}

	for _, name := range []string{"London", "LONDON", "  london  "} {
		got, ok := r.CoordinatesFor(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}

	tokyo, ok := r.CoordinatesFor("Tokyo")
	require.True(t, ok)
	assert.Equal(t, 35.6762, tokyo.Latitude)
	assert.Equal(t, 139.6503, tokyo.Longitude)
}

func TestResolver_CoordinatesFor_Absent(t *testing.T) {
	r := newResolver()

	for _, name := range []string{"", "  ", "Atlantis"} {
		got, ok := r.CoordinatesFor(name)
		assert.False(t, ok, name)
		assert.Equal(t, models.Coordinates{}, got)
	}
}

func TestResolver_SupportedCities(t *testing.T) {
	r := newResolver()
	names := r.SupportedCities()

	require.NotEmpty(t, names)
	assert.Len(t, names, 15)
	assert.True(t, sort.StringsAreSorted(names))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i], "strictly ascending")
	}
	assert.Contains(t, names, "london")
	assert.Contains(t, names, "paris")
	assert.Contains(t, names, "tokyo")

	// callers get a copy
	names[0] = "mutated"
	assert.NotEqual(t, "mutated", r.SupportedCities()[0])
	assert.Equal(t, names[1:], r.SupportedCities()[1:])
}

func TestResolver_NormalizesRegistryKeys(t *testing.T) {
	r := cities.NewResolver(map[string]models.Coordinates{
		"  Lviv ": {Latitude: 49.8397, Longitude: 24.0297},
		"":        {Latitude: 1, Longitude: 1},
	}, zerolog.Nop())

	assert.Equal(t, []string{"lviv"}, r.SupportedCities())
	assert.True(t, r.IsSupported("LVIV"))
}

func TestResolver_RegistryIsCopied(t *testing.T) {
	registry := cities.DefaultRegistry()
	r := cities.NewResolver(registry, zerolog.Nop())

	delete(registry, "london")
	registry["atlantis"] = models.Coordinates{}

	assert.True(t, r.IsSupported("london"))
	assert.False(t, r.IsSupported("atlantis"))
	assert.True(t, cities.NewResolver(cities.DefaultRegistry(), zerolog.Nop()).IsSupported("london"))
}

func TestResolver_ConcurrentReads(t *testing.T) {
	r := newResolver()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, r.IsSupported("paris"))
			_, ok := r.CoordinatesFor("Berlin")
			assert.True(t, ok)
			assert.NotEmpty(t, r.SupportedCities())
		}()
	}
	wg.Wait()
}
