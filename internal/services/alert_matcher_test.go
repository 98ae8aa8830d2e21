package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"carmarket-backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func bmwListing() *models.Listing {
	return &models.Listing{
		ID:           primitive.NewObjectID(),
		SellerID:     primitive.NewObjectID(),
		Make:         "BMW",
		Model:        "3 Series",
		Year:         2019,
		Price:        25000,
		Mileage:      40000,
		MileageUnit:  "km",
		Location:     "Dublin",
		FuelType:     "Diesel",
		Transmission: "Automatic",
		Status:       models.ListingStatusActive,
	}
}

func userWithPhone(phone string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Email: primitive.NewObjectID().Hex() + "@x.ie", PhoneNumber: phone}
}

func alertFor(user *models.User, brand string) *models.Alert {
	return &models.Alert{
		ID:                primitive.NewObjectID(),
		UserID:            user.ID,
		Make:              models.StringPtr(brand),
		NotifyViaWhatsApp: true,
		IsActive:          true,
	}
}

func TestCheckAndNotifySendsToMatchingOwners(t *testing.T) {
	alice := userWithPhone("+353871111111")
	bob := userWithPhone("+353872222222")

	alerts := newMemAlerts(alertFor(alice, "BMW"), alertFor(bob, "Audi"))
	users := newMemUsers(alice, bob)

	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, alice.PhoneNumber, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "2019 BMW 3 Series")
	})).Return(nil).Once()

	m := NewAlertMatcher(alerts, users, notifier, time.Second, zerolog.Nop())
	report := m.CheckAndNotify(context.Background(), bmwListing())

	assert.Equal(t, MatchReport{Evaluated: 2, Matched: 1, Sent: 1}, report)
	notifier.AssertExpectations(t)
}

func TestCheckAndNotifySkipsUnreachableOwners(t *testing.T) {
	noPhone := userWithPhone("")
	optedOut := userWithPhone("+353873333333")

	quiet := alertFor(optedOut, "BMW")
	quiet.NotifyViaWhatsApp = false

	alerts := newMemAlerts(alertFor(noPhone, "BMW"), quiet)
	users := newMemUsers(noPhone, optedOut)
	notifier := new(MockNotifier)

	m := NewAlertMatcher(alerts, users, notifier, time.Second, zerolog.Nop())
	report := m.CheckAndNotify(context.Background(), bmwListing())

	assert.Equal(t, MatchReport{Evaluated: 2, Matched: 2, Skipped: 2}, report)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckAndNotifyIsolatesFailures(t *testing.T) {
	first := userWithPhone("+353874444444")
	second := userWithPhone("+353875555555")
	ghost := &models.User{ID: primitive.NewObjectID()}

	alerts := newMemAlerts(alertFor(first, "BMW"), alertFor(second, "BMW"), alertFor(ghost, "BMW"))
	users := newMemUsers(first, second)

	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, first.PhoneNumber, mock.Anything).Return(errors.New("twilio down"))
	notifier.On("Send", mock.Anything, second.PhoneNumber, mock.Anything).Return(nil)

	m := NewAlertMatcher(alerts, users, notifier, time.Second, zerolog.Nop())
	report := m.CheckAndNotify(context.Background(), bmwListing())

	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 2, report.Failed)
	notifier.AssertNumberOfCalls(t, "Send", 2)
}

func TestCheckAndNotifyFetchFailure(t *testing.T) {
	alerts := newMemAlerts()
	alerts.err = errors.New("mongo unavailable")
	notifier := new(MockNotifier)

	m := NewAlertMatcher(alerts, newMemUsers(), notifier, time.Second, zerolog.Nop())

	assert.NotPanics(t, func() {
		report := m.CheckAndNotify(context.Background(), bmwListing())
		assert.Equal(t, MatchReport{}, report)
	})
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckAndNotifyRecoversFromNotifierPanic(t *testing.T) {
	alice := userWithPhone("+353876666666")
	alerts := newMemAlerts(alertFor(alice, "BMW"))

	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything).Panic("boom")

	m := NewAlertMatcher(alerts, newMemUsers(alice), notifier, time.Second, zerolog.Nop())

	var report MatchReport
	assert.NotPanics(t, func() {
		report = m.CheckAndNotify(context.Background(), bmwListing())
	})
	assert.Equal(t, 1, report.Failed)
}

func TestCheckAndNotifyIgnoresPausedAlerts(t *testing.T) {
	alice := userWithPhone("+353877777777")
	paused := alertFor(alice, "BMW")
	paused.IsActive = false

	notifier := new(MockNotifier)
	m := NewAlertMatcher(newMemAlerts(paused), newMemUsers(alice), notifier, time.Second, zerolog.Nop())

	report := m.CheckAndNotify(context.Background(), bmwListing())
	assert.Equal(t, 0, report.Evaluated)
}

func TestInlineDispatcherRunsMatcher(t *testing.T) {
	alice := userWithPhone("+353878888888")
	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, alice.PhoneNumber, mock.Anything).Return(nil).Once()

	m := NewAlertMatcher(newMemAlerts(alertFor(alice, "BMW")), newMemUsers(alice), notifier, time.Second, zerolog.Nop())
	d := NewInlineDispatcher(m, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, bmwListing())
	cancel()
	d.Wait()

	notifier.AssertExpectations(t)
}
