package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

type BreakerConfig struct {
	TimeInterval time.Duration
	TimeTimeOut  time.Duration
	RepeatNumber uint32
}

// BreakerClient stops calling a provider after RepeatNumber consecutive
// failures until TimeTimeOut passes.
type BreakerClient struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	wrapped Client
}

func NewBreakerClient(name string, cfg BreakerConfig, wrapped Client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.TimeInterval,
		Timeout:     cfg.TimeTimeOut,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.RepeatNumber
		},
	}
	return &BreakerClient{
		name:    name,
		cb:      gobreaker.NewCircuitBreaker(settings),
		wrapped: wrapped,
	}
}

func (b *BreakerClient) Name() string {
	return b.name
}

func (b *BreakerClient) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerClient) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.wrapped.Fetch(ctx, coords, city)
	})
	if err != nil {
		return nil, fmt.Errorf("%s unavailable: %w", b.name, err)
	}
	res, ok := result.(*models.WeatherRecord)
	if !ok {
		return nil, fmt.Errorf("%s returned unexpected result", b.name)
	}
	return res, nil
}
