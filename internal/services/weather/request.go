package weather

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// getJSON performs a GET against url and decodes a 200 response into out.
func getJSON(
	ctx context.Context,
	httpClient HTTPClient,
	logger zerolog.Logger,
	provider, url string,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		logger.Error().
			Ctx(ctx).
			Err(err).
			Msg("failed to create HTTP request")
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Error().
			Ctx(ctx).
			Err(err).
			Msgf("error sending HTTP request to %s", provider)
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error().
				Ctx(ctx).
				Err(cerr).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		logger.Error().
			Ctx(ctx).
			Int("status_code", resp.StatusCode).
			Msgf("%s API returned non-200 status", provider)
		return fmt.Errorf("%s API error: status %d", provider, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error().
			Ctx(ctx).
			Err(err).
			Msgf("failed to decode %s response", provider)
		return fmt.Errorf("decode %s response: %w", provider, err)
	}
	return nil
}
