// Package tasks runs alert matching and listing expiry on the asynq
// background queue so listing writes never wait on notification delivery.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/repository"
	"carmarket-backend/internal/services"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TypeAlertMatch = "alert:match"

	QueueAlerts = "alerts"

	enqueueTimeout = 3 * time.Second
)

type AlertMatchPayload struct {
	ListingID string `json:"listing_id"`
}

func NewAlertMatchTask(listingID string) (*asynq.Task, error) {
	payload, err := json.Marshal(AlertMatchPayload{ListingID: listingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAlertMatch, payload,
		asynq.Queue(QueueAlerts),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	), nil
}

// RedisConnOpt converts go-redis options into asynq's connection options so
// the queue shares the cache's Redis settings.
func RedisConnOpt(opt *redis.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Network:      opt.Network,
		Addr:         opt.Addr,
		Username:     opt.Username,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  opt.DialTimeout,
		ReadTimeout:  opt.ReadTimeout,
		WriteTimeout: opt.WriteTimeout,
		PoolSize:     opt.PoolSize,
		TLSConfig:    opt.TLSConfig,
	}
}

// --- Enqueuing ---

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher queues alert matching for the worker. Enqueue failures are
// logged and dropped; the listing write has already succeeded.
type Dispatcher struct {
	client Enqueuer
	log    zerolog.Logger
}

func NewDispatcher(client Enqueuer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		log:    log.With().Str("component", "alert_dispatcher").Logger(),
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, listing *models.Listing) {
	id := listing.ID.Hex()

	task, err := NewAlertMatchTask(id)
	if err != nil {
		d.log.Error().Err(err).Str("listing_id", id).Msg("failed to build alert match task")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		d.log.Error().Err(err).Str("listing_id", id).Msg("failed to enqueue alert match task")
		return
	}

	d.log.Debug().Str("listing_id", id).Str("task_id", info.ID).Msg("alert match task enqueued")
}

// --- Processing ---

type ListingLoader interface {
	FindByID(ctx context.Context, id string) (*models.Listing, error)
}

// Matcher is satisfied by *services.AlertMatcher.
type Matcher interface {
	CheckAndNotify(ctx context.Context, listing *models.Listing) services.MatchReport
}

type Processor struct {
	listings ListingLoader
	matcher  Matcher
	log      zerolog.Logger

	expirer ListingExpirer
	maxAge  time.Duration
}

func NewProcessor(listings ListingLoader, matcher Matcher, log zerolog.Logger) *Processor {
	return &Processor{
		listings: listings,
		matcher:  matcher,
		log:      log.With().Str("component", "task_processor").Logger(),
	}
}

// HandleAlertMatchTask reloads the listing so the match sees its current
// state. A listing that is gone or no longer active is not announced.
func (p *Processor) HandleAlertMatchTask(ctx context.Context, t *asynq.Task) error {
	var payload AlertMatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal alert match payload: %v: %w", err, asynq.SkipRetry)
	}

	listing, err := p.listings.FindByID(ctx, payload.ListingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return fmt.Errorf("listing %s not found: %w", payload.ListingID, asynq.SkipRetry)
		}
		return fmt.Errorf("loading listing %s: %w", payload.ListingID, err)
	}

	if listing.Status != models.ListingStatusActive {
		p.log.Info().
			Str("listing_id", payload.ListingID).
			Str("status", listing.Status).
			Msg("listing no longer active, skipping alert match")
		return nil
	}

	p.matcher.CheckAndNotify(ctx, listing)
	return nil
}

func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAlertMatch, p.HandleAlertMatchTask)
	if p.expirer != nil {
		mux.HandleFunc(TypeListingExpire, p.HandleListingExpireTask)
	}
	return mux
}

// NewServer builds the worker server. Call Start(processor.Mux()) to run it.
func NewServer(opt asynq.RedisConnOpt, concurrency int, log zerolog.Logger) *asynq.Server {
	log = log.With().Str("component", "asynq").Logger()

	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueAlerts: 5,
			"default":   1,
		},
		Logger:   &asynqLogger{log: log},
		LogLevel: asynq.InfoLevel,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).
				Str("task_type", task.Type()).
				Bytes("payload", task.Payload()).
				Msg("task failed")
		}),
	})
}

// asynqLogger routes asynq's own logging through zerolog.
type asynqLogger struct {
	log zerolog.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
