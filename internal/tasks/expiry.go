package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const TypeListingExpire = "listing:expire"

// ListingExpirer is satisfied by *services.ListingService.
type ListingExpirer interface {
	ExpireStaleListings(ctx context.Context, maxAge time.Duration) (int, error)
}

// NewListingExpireTask carries no payload; each run sweeps every listing.
func NewListingExpireTask() *asynq.Task {
	return asynq.NewTask(TypeListingExpire, nil,
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(10*time.Minute),
	)
}

// EnableExpiry makes the processor handle listing expiry sweeps.
func (p *Processor) EnableExpiry(expirer ListingExpirer, maxAge time.Duration) {
	p.expirer = expirer
	p.maxAge = maxAge
}

func (p *Processor) HandleListingExpireTask(ctx context.Context, _ *asynq.Task) error {
	if p.expirer == nil {
		return fmt.Errorf("listing expiry not configured: %w", asynq.SkipRetry)
	}

	n, err := p.expirer.ExpireStaleListings(ctx, p.maxAge)
	if err != nil {
		return fmt.Errorf("expiring stale listings: %w", err)
	}

	p.log.Debug().Int("expired", n).Msg("listing expiry sweep finished")
	return nil
}

// NewScheduler builds the periodic task scheduler and registers the listing
// expiry sweep on cronspec.
func NewScheduler(opt asynq.RedisConnOpt, cronspec string, log zerolog.Logger) (*asynq.Scheduler, error) {
	log = log.With().Str("component", "asynq_scheduler").Logger()

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger:   &asynqLogger{log: log},
		LogLevel: asynq.InfoLevel,
	})

	if _, err := scheduler.Register(cronspec, NewListingExpireTask()); err != nil {
		return nil, fmt.Errorf("registering listing expiry on %q: %w", cronspec, err)
	}

	return scheduler, nil
}
