package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const timeoutDuration = 30 * time.Second

type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Janitor periodically deletes expired weather records from the store.
type Janitor struct {
	store  expiredPurger
	logger zerolog.Logger
	cron   *cron.Cron
	cancel context.CancelFunc
	spec   string
	now    func() time.Time
}

// New builds a Janitor running on spec, a six-field cron expression with
// seconds.
func New(store expiredPurger, spec string, logger zerolog.Logger) *Janitor {
	logger = logger.With().Str("component", "Janitor").Logger()
	return &Janitor{
		store:  store,
		logger: logger,
		cron:   cron.New(cron.WithSeconds()),
		spec:   spec,
		now:    time.Now,
	}
}

// Start schedules the purge job.
func (j *Janitor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	if _, err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		cancel()
		j.logger.Error().Err(err).Str("spec", j.spec).Msg("failed to schedule purge job")
		return fmt.Errorf("schedule purge job %q: %w", j.spec, err)
	}

	j.cancel = cancel
	j.cron.Start()
	j.logger.Info().Str("spec", j.spec).Msg("janitor started")
	return nil
}

// Stop cancels the running purge, if any, and waits for it to finish.
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
	j.logger.Info().Msg("janitor stopped")
}

// RunOnce deletes every record expired at the current time.
func (j *Janitor) RunOnce(ctx context.Context) int64 {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()

	n, err := j.store.PurgeExpired(ctx, j.now())
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to purge expired weather records")
		return 0
	}

	j.logger.Info().
		Int64("purged", n).
		Dur("duration", time.Since(start)).
		Msg("expired weather records purged")
	return n
}
