package weather

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-lookup-api/internal/models"
)

var errAllProvidersFailed = errors.New("all weather providers failed to fetch data")

// Client is one weather provider the chain can ask.
type Client interface {
	Name() string
	Fetch(ctx context.Context, coords models.Coordinates, city *string) (*models.WeatherRecord, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProviderChain asks each client in turn and returns the first record.
type ProviderChain struct {
	logger  zerolog.Logger
	clients []Client
}

func NewProviderChain(logger zerolog.Logger, clients ...Client) *ProviderChain {
	logger = logger.With().Str("component", "ProviderChain").Logger()
	return &ProviderChain{clients: clients, logger: logger}
}

func (p *ProviderChain) Fetch(
	ctx context.Context,
	coords models.Coordinates,
	city *string,
) (*models.WeatherRecord, error) {
	for _, cl := range p.clients {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.logger.Debug().
			Ctx(ctx).
			Str("client", cl.Name()).
			Str("coordinates", coords.String()).
			Msg("calling Fetch")

		record, err := cl.Fetch(ctx, coords, city)
		if err != nil {
			p.logger.Error().
				Ctx(ctx).
				Str("client", cl.Name()).
				Err(err).
				Msg("fetch failed")
			continue
		}
		if record == nil {
			p.logger.Warn().
				Ctx(ctx).
				Str("client", cl.Name()).
				Msg("fetch returned no data")
			continue
		}

		p.logger.Info().
			Ctx(ctx).
			Str("client", cl.Name()).
			Msg("fetch succeeded")
		return record, nil
	}

	p.logger.Error().
		Ctx(ctx).
		Str("coordinates", coords.String()).
		Err(errAllProvidersFailed).
		Msg("Fetch giving up")
	return nil, errAllProvidersFailed
}
