package services

import (
	"context"
	"fmt"
	"time"

	"carmarket-backend/internal/matching"
	"carmarket-backend/internal/metrics"
	"carmarket-backend/internal/models"
	"carmarket-backend/internal/notify"

	"github.com/rs/zerolog"
)

// MatchReport counts what happened during one matcher run.
type MatchReport struct {
	Evaluated int `json:"evaluated"`
	Matched   int `json:"matched"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// AlertMatcher notifies the owners of active alerts that a listing satisfies.
// It is best effort: a failure for one alert never stops the others, and
// nothing is returned to the caller beyond the report.
type AlertMatcher struct {
	alerts        ActiveAlertLister
	users         UserFinder
	notifier      notify.Notifier
	notifyTimeout time.Duration
	log           zerolog.Logger
}

func NewAlertMatcher(alerts ActiveAlertLister, users UserFinder, notifier notify.Notifier, notifyTimeout time.Duration, log zerolog.Logger) *AlertMatcher {
	if notifyTimeout <= 0 {
		notifyTimeout = 5 * time.Second
	}
	return &AlertMatcher{
		alerts:        alerts,
		users:         users,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		log:           log.With().Str("component", "alert_matcher").Logger(),
	}
}

// CheckAndNotify evaluates every active alert against the listing.
func (m *AlertMatcher) CheckAndNotify(ctx context.Context, listing *models.Listing) (report MatchReport) {
	log := m.log.With().Str("listing_id", listing.ID.Hex()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("alert matcher aborted")
		}
	}()

	alerts, err := m.alerts.FindActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load active alerts")
		return MatchReport{}
	}

	for _, alert := range alerts {
		report.Evaluated++
		if !matching.Matches(listing, alert) {
			continue
		}
		report.Matched++

		sent, err := m.notifyOwner(ctx, listing, alert)
		switch {
		case err != nil:
			report.Failed++
			metrics.AlertNotificationsTotal.WithLabelValues("failed").Inc()
			log.Warn().Err(err).
				Str("alert_id", alert.ID.Hex()).
				Str("user_id", alert.UserID.Hex()).
				Msg("alert notification failed")
		case sent:
			report.Sent++
			metrics.AlertNotificationsTotal.WithLabelValues("sent").Inc()
			log.Info().
				Str("alert_id", alert.ID.Hex()).
				Str("user_id", alert.UserID.Hex()).
				Msg("alert notification sent")
		default:
			report.Skipped++
			metrics.AlertNotificationsTotal.WithLabelValues("skipped").Inc()
		}
	}

	log.Info().
		Int("evaluated", report.Evaluated).
		Int("matched", report.Matched).
		Int("sent", report.Sent).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("alert matching finished")

	return report
}

// notifyOwner reports sent=false with no error when the owner cannot or does
// not want to be reached.
func (m *AlertMatcher) notifyOwner(ctx context.Context, listing *models.Listing, alert *models.Alert) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			sent, err = false, fmt.Errorf("panic while notifying: %v", r)
		}
	}()

	if !alert.NotifyViaWhatsApp {
		return false, nil
	}

	user, err := m.users.FindByID(ctx, alert.UserID.Hex())
	if err != nil {
		return false, fmt.Errorf("resolving alert owner: %w", err)
	}
	if user.PhoneNumber == "" {
		return false, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
	defer cancel()

	if err := m.notifier.Send(sendCtx, user.PhoneNumber, notify.FormatListingAlert(listing)); err != nil {
		return false, fmt.Errorf("sending notification: %w", err)
	}
	return true, nil
}
