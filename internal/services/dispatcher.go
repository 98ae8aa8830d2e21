package services

import (
	"context"
	"sync"

	"carmarket-backend/internal/models"

	"github.com/rs/zerolog"
)

// AlertDispatcher hands a newly visible listing to the alert matcher. It
// never reports failure to the seller's request.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, listing *models.Listing)
}

// InlineDispatcher runs the matcher in a background goroutine of the API
// process, detached from the request's cancellation.
type InlineDispatcher struct {
	matcher *AlertMatcher
	wg      sync.WaitGroup
	log     zerolog.Logger
}

func NewInlineDispatcher(matcher *AlertMatcher, log zerolog.Logger) *InlineDispatcher {
	return &InlineDispatcher{
		matcher: matcher,
		log:     log.With().Str("component", "inline_dispatcher").Logger(),
	}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, listing *models.Listing) {
	detached := context.WithoutCancel(ctx)
	snapshot := *listing

	d.log.Debug().Str("listing_id", listing.ID.Hex()).Msg("matching alerts in process")
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.matcher.CheckAndNotify(detached, &snapshot)
	}()
}

// Wait blocks until every in-flight matcher run has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// NopDispatcher drops every listing.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, *models.Listing) {}
